package quote

import (
	"testing"

	"github.com/freightline-io/freightline/pkg/model"
)

func q(name string, total int, rating float64) *model.Quote {
	return &model.Quote{CompanyName: name, Total: total, Rating: rating}
}

func TestRankOrdering(t *testing.T) {
	quotes := []*model.Quote{
		q("gamma", 900, 4.5),
		q("alpha", 500, 3.0),
		q("delta", 500, 4.8),
		q("beta", 500, 4.8),
	}

	Rank(quotes)

	want := []string{"beta", "delta", "alpha", "gamma"}
	for i, name := range want {
		if quotes[i].CompanyName != name {
			t.Fatalf("position %d = %s, want %s", i, quotes[i].CompanyName, name)
		}
	}

	for i := 1; i < len(quotes); i++ {
		if quotes[i].Total < quotes[i-1].Total {
			t.Errorf("total not non-decreasing at %d", i)
		}
	}
}

// Identical inputs must always rank identically.
func TestRankDeterministic(t *testing.T) {
	build := func() []*model.Quote {
		return []*model.Quote{
			q("v1", 700, 4.0),
			q("v2", 600, 4.0),
			q("v3", 600, 4.0),
			q("v4", 800, 2.0),
		}
	}

	first := build()
	Rank(first)
	for i := 0; i < 20; i++ {
		again := build()
		Rank(again)
		for j := range first {
			if first[j].CompanyName != again[j].CompanyName {
				t.Fatalf("run %d diverged at position %d", i, j)
			}
		}
	}
}

func TestAnnotateTiers(t *testing.T) {
	quotes := []*model.Quote{
		q("cheap", 500, 3.0),
		q("midrange", 700, 4.9),
		q("spendy", 900, 4.0),
	}

	AnnotateTiers(quotes)

	if quotes[0].Tier != TierBestValue {
		t.Errorf("cheapest tier = %q, want best-value", quotes[0].Tier)
	}
	if quotes[1].Tier != TierTopRated {
		t.Errorf("highest rated tier = %q, want top-rated", quotes[1].Tier)
	}
	if quotes[2].Tier != TierStandard {
		t.Errorf("remaining tier = %q, want standard", quotes[2].Tier)
	}
}

func TestAnnotateTiersCheapestIsAlsoTopRated(t *testing.T) {
	quotes := []*model.Quote{
		q("winner", 500, 4.9),
		q("other", 700, 3.0),
	}

	AnnotateTiers(quotes)

	// Best-value wins when one quote holds both titles.
	if quotes[0].Tier != TierBestValue {
		t.Errorf("tier = %q, want best-value", quotes[0].Tier)
	}
	if quotes[1].Tier != TierStandard {
		t.Errorf("tier = %q, want standard", quotes[1].Tier)
	}
}

func TestAnnotateTiersEmpty(t *testing.T) {
	AnnotateTiers(nil) // must not panic
}
