// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fusion merges candidate descriptions of one citation, each
// produced by a different parser or lookup service, into a single record
// with an overall parse score.
//
// Candidates are scored for completeness, grouped by score, and merged
// field by field: the most frequent value wins, ties go to the value seen
// with the highest score, and remaining ties go to the value seen first.
// "First" is always the order of a scan over score buckets from highest to
// lowest, candidates in input order within a bucket, fields in each
// candidate's own order. The merged record lists its fields in the same
// first-seen order.
package fusion

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/pdiddy/citation-engine/pkg/types"
)

var (
	// ErrInvalidInput reports that no usable candidate was supplied, or a
	// candidate is not a metadata description.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyResult reports that the score threshold excluded every candidate.
	ErrEmptyResult = errors.New("empty result")
)

// Scored pairs a candidate with its completeness score.
type Scored struct {
	Score       int
	Description *types.Description
}

// Fuse guesses missing publication types, scores every non-nil candidate,
// and merges them with FuseScored. Candidates are never modified; a
// candidate that gains a guessed type is cloned first.
func Fuse(candidates []*types.Description, cfg types.FusionConfig) (*types.Description, error) {
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if !c.Has(types.FieldPublicationType) {
			if pt, ok := GuessPublicationType(c); ok {
				c = c.Clone()
				c.Set(types.FieldPublicationType, string(pt))
			}
		}
		scored = append(scored, Scored{Score: Score(c), Description: c})
	}
	if len(scored) == 0 {
		return nil, fmt.Errorf("%w: no candidate descriptions to fuse", ErrInvalidInput)
	}
	return FuseScored(scored, cfg.ScoreThreshold)
}

// FuseScored merges pre-scored candidates. Candidates scoring below
// threshold take no part in the merge or the score.
//
// The merged score is the mean of the best retained score and the
// count-weighted average of all retained scores, so it always lies between
// the lowest and highest retained score.
func FuseScored(scored []Scored, threshold int) (*types.Description, error) {
	buckets := make(map[int][]*types.Description)
	var scores []int
	for _, s := range scored {
		if s.Description == nil {
			continue
		}
		if s.Score < 0 || s.Score > 100 {
			return nil, fmt.Errorf("%w: score %d outside 0-100", ErrInvalidInput, s.Score)
		}
		if _, ok := buckets[s.Score]; !ok {
			scores = append(scores, s.Score)
		}
		buckets[s.Score] = append(buckets[s.Score], s.Description)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: no candidate descriptions to fuse", ErrInvalidInput)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(scores)))

	var (
		fieldOrder []string
		tallies    = make(map[string]*fieldTally)
		retained   int
		scoreSum   int
		maxScore   = -1
	)
	for _, score := range scores {
		if score < threshold {
			break
		}
		if maxScore < 0 {
			maxScore = score
		}
		bucket := buckets[score]
		retained += len(bucket)
		scoreSum += score * len(bucket)

		for _, d := range bucket {
			for _, name := range d.Names() {
				t, ok := tallies[name]
				if !ok {
					t = &fieldTally{}
					tallies[name] = t
					fieldOrder = append(fieldOrder, name)
				}
				v, _ := d.Get(name)
				t.add(v, score)
			}
		}
	}
	if retained == 0 {
		return nil, fmt.Errorf("%w: threshold %d excludes all %d candidates", ErrEmptyResult, threshold, len(scored))
	}

	// The result owns its values; candidates stay untouched.
	target := types.NewDescription()
	for _, name := range fieldOrder {
		target.Set(name, types.CopyValue(tallies[name].best()))
	}

	// Deliberately simple: not a statistical confidence.
	average := float64(scoreSum) / float64(retained)
	target.Score = (float64(maxScore) + average) / 2
	target.State = types.StateParsed
	return target, nil
}

// fieldTally collects the distinct values seen for one field.
type fieldTally struct {
	values []valueTally
}

type valueTally struct {
	value    any
	count    int
	maxScore int
}

// add records one occurrence of v. Buckets are scanned from the highest
// score down, so the score recorded with a value's first occurrence is
// its maximum and is never overwritten.
func (t *fieldTally) add(v any, score int) {
	for i := range t.values {
		if reflect.DeepEqual(t.values[i].value, v) {
			t.values[i].count++
			return
		}
	}
	t.values = append(t.values, valueTally{value: v, count: 1, maxScore: score})
}

// best returns the most frequent value, preferring the higher max score and
// then the earlier occurrence.
func (t *fieldTally) best() any {
	win := 0
	for i := 1; i < len(t.values); i++ {
		c, w := t.values[i], t.values[win]
		if c.count > w.count || (c.count == w.count && c.maxScore > w.maxScore) {
			win = i
		}
	}
	return t.values[win].value
}
