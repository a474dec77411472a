package models

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestBaseRevenue(t *testing.T) {
	h := HistoricalFinancials{Revenue: []float64{100, 110, 121}}
	if got := h.BaseRevenue(); got != 121 {
		t.Errorf("expected newest revenue 121, got %f", got)
	}
	if got := (HistoricalFinancials{}).BaseRevenue(); got != 0 {
		t.Errorf("expected 0 for empty history, got %f", got)
	}
}

func TestHasPrice(t *testing.T) {
	cases := []struct {
		price float64
		want  bool
	}{
		{123.45, true},
		{0, false},
		{-1, false},
		{math.NaN(), false},
	}
	for _, c := range cases {
		m := MarketSnapshot{Price: c.price}
		if m.HasPrice() != c.want {
			t.Errorf("HasPrice(%v): expected %v", c.price, c.want)
		}
	}
}

// The NaN "no quote" sentinel can't go through encoding/json directly; it is
// carried as an absent field instead.
func TestMarketSnapshotJSONNoQuote(t *testing.T) {
	m := MarketSnapshot{Beta: 1.2, SharesOutstanding: 1e9, Price: math.NaN()}

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "price") {
		t.Errorf("expected price omitted without a quote, got %s", b)
	}

	var back MarketSnapshot
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !math.IsNaN(back.Price) {
		t.Errorf("expected NaN restored for absent price, got %f", back.Price)
	}
	if back.Beta != 1.2 {
		t.Errorf("beta did not round-trip: %f", back.Beta)
	}
}

func TestMarketSnapshotJSONWithQuote(t *testing.T) {
	m := MarketSnapshot{Price: 123.45}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back MarketSnapshot
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Price != 123.45 {
		t.Errorf("price did not round-trip: %f", back.Price)
	}
}

func TestDataErrorMessage(t *testing.T) {
	err := &DataError{Ticker: "NEWCO", Field: "revenue", Reason: "need at least 2 periods"}
	msg := err.Error()
	for _, want := range []string{"NEWCO", "revenue", "need at least 2 periods"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message missing %q: %s", want, msg)
		}
	}
}
