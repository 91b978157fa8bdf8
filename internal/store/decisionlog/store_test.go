package decisionlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"verdict/internal/decision"
	"verdict/internal/rule"
	"verdict/internal/signal"
	"verdict/internal/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "decisions.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleDecision(id, symbol string, at time.Time) decision.Decision {
	return decision.Decision{
		ID:                  id,
		Symbol:              symbol,
		Type:                signal.TypeBuy,
		RecommendedAction:   "Buy 100 shares of " + symbol,
		Quantity:            100,
		Price:               50,
		ConfidenceLevel:     decision.ConfidenceHigh,
		ConfidenceScore:     0.72,
		RiskLevel:           types.RiskLow,
		RiskScore:           0.15,
		Reasoning:           "signal BUY strength 0.70 confidence 0.90",
		SupportingSignalIDs: []string{"sig-1", "sig-2"},
		MarketCondition:     types.BullMarket,
		RuleResults: []rule.ExecutionResult{
			{RuleID: "default-max-exposure", Symbol: symbol, Executed: true, Impact: rule.ImpactNone},
		},
		CreatedAt: at,
	}
}

func TestStore_RecordAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	want := sampleDecision("dec-1", "ACME", time.Now())
	assert.NoError(t, store.RecordDecision(ctx, want))

	got, err := store.GetDecision(ctx, "dec-1")
	assert.NoError(t, err)
	assert.Equal(t, want.Symbol, got.Symbol)
	assert.Equal(t, want.Type, got.Type)
	assert.Equal(t, want.Quantity, got.Quantity)
	assert.Equal(t, want.ConfidenceLevel, got.ConfidenceLevel)
	assert.InDelta(t, want.ConfidenceScore, got.ConfidenceScore, 1e-9)
	assert.Equal(t, want.RiskLevel, got.RiskLevel)
	assert.Equal(t, want.Reasoning, got.Reasoning)
	assert.Equal(t, want.SupportingSignalIDs, got.SupportingSignalIDs)
	assert.Len(t, got.RuleResults, 1)
	assert.Equal(t, rule.ImpactNone, got.RuleResults[0].Impact)
	assert.Equal(t, want.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())

	_, err = store.GetDecision(ctx, "no-such-id")
	assert.Error(t, err)
}

func TestStore_ListDecisions(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	assert.NoError(t, store.RecordDecision(ctx, sampleDecision("dec-1", "ACME", base)))
	assert.NoError(t, store.RecordDecision(ctx, sampleDecision("dec-2", "OTHER", base.Add(time.Minute))))
	assert.NoError(t, store.RecordDecision(ctx, sampleDecision("dec-3", "ACME", base.Add(2*time.Minute))))

	t.Run("newest first", func(t *testing.T) {
		out, err := store.ListDecisions(ctx, Query{})
		assert.NoError(t, err)
		assert.Len(t, out, 3)
		assert.Equal(t, "dec-3", out[0].ID)
		assert.Equal(t, "dec-1", out[2].ID)
	})

	t.Run("symbol filter", func(t *testing.T) {
		out, err := store.ListDecisions(ctx, Query{Symbol: " acme "})
		assert.NoError(t, err)
		assert.Len(t, out, 2)
		for _, d := range out {
			assert.Equal(t, "ACME", d.Symbol)
		}
	})

	t.Run("limit applies", func(t *testing.T) {
		out, err := store.ListDecisions(ctx, Query{Limit: 1})
		assert.NoError(t, err)
		assert.Len(t, out, 1)
		assert.Equal(t, "dec-3", out[0].ID)
	})
}

func TestStore_ClosedStoreErrors(t *testing.T) {
	store := openStore(t)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close(), "double close is safe")

	ctx := context.Background()
	assert.Error(t, store.RecordDecision(ctx, sampleDecision("dec-x", "ACME", time.Now())))
	_, err := store.ListDecisions(ctx, Query{})
	assert.Error(t, err)
}

func TestNew_RejectsEmptyPath(t *testing.T) {
	_, err := New("  ")
	assert.Error(t, err)
}
