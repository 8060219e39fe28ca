// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-engine/pkg/types"
)

const candidateYAML = `
sets:
  - key: "1"
    text: "Vaswani A. Attention is all you need. NeurIPS 2017."
    candidates:
      - 'person-group[@person-group-type="author"]':
          - surname: Vaswani
            given-names: A.
        article-title: Attention is all you need
        source: NeurIPS
        date: "2017"
        fpage: "5998"
        '[@publication-type]': conf-proc
      - null
  - key: "2"
    text: "unparseable"
    candidates:
      - null
`

func writeCandidates(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candidates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestFuseFile(t *testing.T) {
	var progress bytes.Buffer
	got, err := fuseFile(writeCandidates(t, candidateYAML), types.FusionConfig{}, &progress)
	require.NoError(t, err)

	require.Len(t, got, 1)
	fc := got[0]
	assert.Equal(t, "1", fc.Citation.Key)
	assert.Equal(t, 1, fc.CandidateCount)
	assert.Equal(t, 100.0, fc.Score)
	assert.Equal(t, "NeurIPS", fc.Description.GetString(types.FieldSource))

	assert.Contains(t, progress.String(), "fused   1 (score 100.00)")
	assert.Contains(t, progress.String(), "skipped 2:")
}

func TestFuseFileThreshold(t *testing.T) {
	var progress bytes.Buffer
	_, err := fuseFile(writeCandidates(t, candidateYAML), types.FusionConfig{ScoreThreshold: 101}, &progress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could be fused")
}

func TestFuseFileInvalid(t *testing.T) {
	_, err := fuseFile(writeCandidates(t, "sets: []\n"), types.FusionConfig{}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = fuseFile(filepath.Join(t.TempDir(), "missing.yaml"), types.FusionConfig{}, &bytes.Buffer{})
	assert.Error(t, err)
}
