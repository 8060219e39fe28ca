// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Citation is a raw bibliographic reference as it appears in a manuscript,
// the input every parser works from.
type Citation struct {
	// Key is the reference label in the citing document (e.g. "12", "Smith2020").
	Key string `json:"key,omitempty" yaml:"key,omitempty"`

	// Text is the unparsed reference string.
	Text string `json:"text" yaml:"text"`

	// DOI is an optional known identifier that lookups can use directly.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// IsEmpty reports whether the citation carries nothing to parse.
func (c Citation) IsEmpty() bool {
	return c.Text == "" && c.DOI == ""
}

// FusedCitation is a citation together with the description fusion chose
// for it. This is the record the store persists.
type FusedCitation struct {
	// ID is a stable identifier assigned by the store.
	ID string `json:"id" yaml:"id"`

	// Citation is the input the candidates were produced from.
	Citation Citation `json:"citation" yaml:"citation"`

	// Description is the merged record; its Score and State carry the
	// fusion outcome.
	Description *Description `json:"description" yaml:"description"`

	// Score duplicates Description.Score for serialized output.
	Score float64 `json:"score" yaml:"score"`

	// CandidateCount is the number of live candidates that went into fusion.
	CandidateCount int `json:"candidate_count" yaml:"candidate_count"`

	// Sources names the parsers that produced a candidate.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// CreatedAt is when the record was fused.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
