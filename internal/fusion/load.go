// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fusion

import (
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// CandidateSet holds the candidates produced for one citation. A null
// entry in Candidates stands for a parser that produced nothing.
type CandidateSet struct {
	Citation   types.Citation       `yaml:",inline"`
	Candidates []*types.Description `yaml:"candidates"`
}

// candidateFile is the YAML document read by LoadCandidateSets:
//
//	sets:
//	  - key: "12"
//	    text: "Smith, J. ..."
//	    candidates:
//	      - article-title: ...
//	      - null
type candidateFile struct {
	Sets []CandidateSet `yaml:"sets"`
}

// LoadCandidateSets decodes candidate sets from r. A candidate that is not
// a mapping fails with ErrInvalidInput.
func LoadCandidateSets(r io.Reader) ([]CandidateSet, error) {
	var f candidateFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty candidate file", ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(f.Sets) == 0 {
		return nil, fmt.Errorf("%w: candidate file has no sets", ErrInvalidInput)
	}
	return f.Sets, nil
}

// LiveCount returns the number of non-nil candidates.
func (s CandidateSet) LiveCount() int {
	n := 0
	for _, c := range s.Candidates {
		if c != nil {
			n++
		}
	}
	return n
}
