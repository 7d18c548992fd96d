package quote

import (
	"sort"

	"github.com/freightline-io/freightline/pkg/model"
)

// Tier labels assigned during result assembly.
const (
	TierBestValue = "best-value"
	TierTopRated  = "top-rated"
	TierStandard  = "standard"
)

// Rank orders quotes deterministically: total ascending, then rating
// descending, then company name ascending for stability.
func Rank(quotes []*model.Quote) {
	sort.SliceStable(quotes, func(i, j int) bool {
		a, b := quotes[i], quotes[j]
		if a.Total != b.Total {
			return a.Total < b.Total
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.CompanyName < b.CompanyName
	})
}

// AnnotateTiers labels a ranked list: the cheapest quote is best-value,
// the highest-rated (when it is a different quote) is top-rated, the
// rest are standard.
func AnnotateTiers(quotes []*model.Quote) {
	if len(quotes) == 0 {
		return
	}
	for _, q := range quotes {
		q.Tier = TierStandard
	}
	quotes[0].Tier = TierBestValue

	best := 0
	for i, q := range quotes {
		if q.Rating > quotes[best].Rating {
			best = i
		}
	}
	if best != 0 {
		quotes[best].Tier = TierTopRated
	}
}
