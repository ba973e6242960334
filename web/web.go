// Package web provides an HTTP server exposing computed reports over a JSON
// ledger file.
//
// The server reloads the ledger when the file changes on disk and notifies
// connected clients over Server-Sent Events. It has no authentication and
// should only be bound to localhost.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jdekker/daybook/ledger"
	"github.com/jdekker/daybook/loader"
	"github.com/jdekker/daybook/telemetry"
)

type Server struct {
	Port         int
	Host         string
	Version      string
	CommitSHA    string
	WatchEnabled bool

	mu      sync.RWMutex
	file    *loader.File
	session *ledger.Session

	// ledgerFile is resolved to an absolute path on Start.
	ledgerFile string

	sseClients map[chan string]struct{}
	sseMu      sync.Mutex
}

func New(port int, ledgerFile string) *Server {
	return NewWithVersion(port, ledgerFile, "", "")
}

func NewWithVersion(port int, ledgerFile, version, commitSHA string) *Server {
	return &Server{
		Port:       port,
		Host:       "127.0.0.1",
		Version:    version,
		CommitSHA:  commitSHA,
		ledgerFile: ledgerFile,
	}
}

func (s *Server) Start(ctx context.Context) error {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start(fmt.Sprintf("web.start %s:%d", s.Host, s.Port))
	defer timer.End()

	if s.ledgerFile == "" {
		return fmt.Errorf("ledger file is required")
	}
	absPath, err := filepath.Abs(s.ledgerFile)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	s.ledgerFile = absPath

	s.sseClients = make(map[chan string]struct{})

	loadTimer := timer.Child(fmt.Sprintf("web.load_ledger %s", filepath.Base(s.ledgerFile)))
	err = s.reloadLedger(ctx)
	loadTimer.End()
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	if s.WatchEnabled {
		if err := s.startWatcher(ctx); err != nil {
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	return http.ListenAndServe(addr, s.router())
}

func (s *Server) router() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/metadata", s.handleGetMetadata)
	mux.HandleFunc("GET /api/accounts", s.handleGetAccounts)
	mux.HandleFunc("GET /api/balances", s.handleGetBalances)
	mux.HandleFunc("GET /api/transactions", s.handleGetTransactions)
	mux.HandleFunc("GET /api/assertions", s.handleGetAssertions)
	mux.HandleFunc("GET /api/reports/{kind}", s.handleGetReport)
	mux.HandleFunc("GET /api/events", s.handleSSE)

	return mux
}

// snapshot returns the current session under the read lock. Handlers work
// against the snapshot so a concurrent reload never swaps state mid-request.
func (s *Server) snapshot() (*loader.File, *ledger.Session) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file, s.session
}

// reloadLedger loads or reloads the ledger from disk. Caller must NOT hold
// the mutex.
func (s *Server) reloadLedger(ctx context.Context) error {
	file, err := loader.New().Load(ctx, s.ledgerFile)
	if err != nil {
		return err
	}
	session, err := file.Session(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.file = file
	s.session = session
	s.mu.Unlock()

	return nil
}

// startWatcher watches the ledger file, reloading and broadcasting SSE
// events on change.
func (s *Server) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory rather than the file itself: atomic saves replace
	// the inode, which silently drops a file-level watch.
	if err := watcher.Add(filepath.Dir(s.ledgerFile)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.ledgerFile, err)
	}

	go s.runWatcher(ctx, watcher)
	return nil
}

// runWatcher processes file system events with debouncing.
func (s *Server) runWatcher(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	// Editors often write files in multiple steps.
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.ledgerFile {
				continue
			}
			// Remove/Rename are common in atomic saves.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				s.handleFileChange(ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// handleFileChange reloads the ledger and notifies SSE clients.
func (s *Server) handleFileChange(ctx context.Context) {
	if err := s.reloadLedger(ctx); err != nil {
		log.Printf("Failed to reload ledger: %v", err)
		return
	}
	s.broadcast("reload")
}

// handleSSE handles Server-Sent Events connections for reload notifications.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	clientChan := make(chan string, 10)

	s.sseMu.Lock()
	s.sseClients[clientChan] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseClients, clientChan)
		s.sseMu.Unlock()
		close(clientChan)
	}()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-clientChan:
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// broadcast sends an event to all connected SSE clients.
func (s *Server) broadcast(event string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- event:
		default:
			// Client buffer full, skip.
		}
	}
}
