// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/citation-engine/pkg/types"
)

func descriptionWith(fields ...string) *types.Description {
	d := types.NewDescription()
	for _, f := range fields {
		d.Set(f, "x")
	}
	return d
}

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   int
	}{
		{"empty", nil, 0},
		{"one of six rounds up", []string{types.FieldArticleTitle}, 17},
		{"half", []string{types.FieldArticleTitle, types.FieldSource, types.FieldDate}, 50},
		{"four of six", []string{types.FieldAuthors, types.FieldArticleTitle, types.FieldSource, types.FieldDate}, 67},
		{"all expected", expectedFields, 100},
		{"unexpected fields ignored", []string{types.FieldVolume, types.FieldIssue, types.FieldURI}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(descriptionWith(tt.fields...)))
		})
	}
}

func TestScoreEmptyValueCounts(t *testing.T) {
	d := types.NewDescription()
	d.Set(types.FieldArticleTitle, "")
	d.Set(types.FieldSource, nil)
	assert.Equal(t, 33, Score(d), "presence counts, not value")
}

func TestScoreMonotonic(t *testing.T) {
	d := types.NewDescription()
	prev := Score(d)
	for _, f := range append([]string{types.FieldVolume}, expectedFields...) {
		d.Set(f, "x")
		got := Score(d)
		assert.GreaterOrEqual(t, got, prev, "adding %s lowered the score", f)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
		prev = got
	}
	assert.Equal(t, 100, prev)
}
