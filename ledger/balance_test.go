package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestBalanceAdd(t *testing.T) {
	b := make(Balance)
	b.Add("$", 10000)
	b.Add("$", 5000)
	b.Add("USD {1.50}", 2000)

	assert.Equal(t, Balance{"$": 15000, "USD {1.50}": 2000}, b)
}

func TestBalanceClone(t *testing.T) {
	b := Balance{"$": 10000, "AUD": -3000}

	clone := b.Clone()
	clone.Add("$", 5000)

	assert.Equal(t, int64(10000), b["$"])
	assert.Equal(t, int64(15000), clone["$"])
	assert.Equal(t, int64(-3000), clone["AUD"])
}

func TestBalanceClean(t *testing.T) {
	b := Balance{"$": 10000, "AUD": 0, "USD {1.50}": 0}
	b.Clean()

	assert.Equal(t, Balance{"$": 10000}, b)
}

func TestBalanceCommodities(t *testing.T) {
	b := Balance{"USD {1.50}": 2000, "$": 10000, "AUD": -3000}

	assert.Equal(t, []string{"$", "AUD", "USD {1.50}"}, b.Commodities())
	assert.Equal(t, 0, len(Balance{}.Commodities()))
}
