package web

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/jdekker/daybook/ledger"
)

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
func writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// MetadataResponse is the JSON response structure for the metadata endpoint.
type MetadataResponse struct {
	ledger.Metadata
	Version   string `json:"version,omitempty"`
	CommitSHA string `json:"commitSha,omitempty"`
}

// handleGetMetadata handles GET requests to /api/metadata.
func (s *Server) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	_, session := s.snapshot()
	writeJSONResponse(w, &MetadataResponse{
		Metadata:  session.Metadata(),
		Version:   s.Version,
		CommitSHA: s.CommitSHA,
	})
}

// AccountInfo represents one classified ledger account.
type AccountInfo struct {
	Name  string        `json:"name"`
	Kinds []ledger.Kind `json:"kinds"`
}

// AccountsResponse is the JSON response structure for the accounts endpoint.
type AccountsResponse struct {
	Accounts []AccountInfo `json:"accounts"`
}

// handleGetAccounts handles GET requests to /api/accounts. Returns all
// classified accounts, sorted alphabetically by name.
func (s *Server) handleGetAccounts(w http.ResponseWriter, r *http.Request) {
	_, session := s.snapshot()

	kinds, err := session.Store().AccountKinds(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	accounts := make([]AccountInfo, 0, len(kinds))
	for name, ks := range kinds {
		accounts = append(accounts, AccountInfo{Name: name, Kinds: ks})
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})

	writeJSONResponse(w, &AccountsResponse{Accounts: accounts})
}
