// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fusion

import (
	"math"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// expectedFields are the fields a complete citation is expected to carry.
var expectedFields = []string{
	types.FieldAuthors,
	types.FieldArticleTitle,
	types.FieldSource,
	types.FieldDate,
	types.FieldFirstPage,
	types.FieldPublicationType,
}

// Score rates how complete a candidate is: the share of expected fields it
// carries, scaled to 0-100 and rounded.
func Score(d *types.Description) int {
	present := 0
	for _, name := range expectedFields {
		if d.Has(name) {
			present++
		}
	}
	score := int(math.Round(100 * float64(present) / float64(len(expectedFields))))
	return min(score, 100)
}
