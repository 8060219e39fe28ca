// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-engine/internal/csl"
	"github.com/pdiddy/citation-engine/pkg/types"
)

func init() {
	color.NoColor = true
}

func sampleCitation() types.FusedCitation {
	d := types.NewDescription()
	d.Set(types.FieldAuthors, []types.Person{{Surname: "LeCun", GivenNames: "Yann"}})
	d.Set(types.FieldArticleTitle, "Deep learning")
	d.Set(types.FieldSource, "Nature")
	d.Set(types.FieldDate, "2015")
	d.Set(types.FieldPublicationType, "journal")
	d.Score = 83.5
	d.State = types.StateParsed
	return types.FusedCitation{
		ID:          "abc",
		Citation:    types.Citation{Key: "12", Text: "LeCun Y. Deep learning. Nature. 2015."},
		Description: d,
		Score:       83.5,
	}
}

func TestWriteCitationsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCitations(&buf, []types.FusedCitation{sampleCitation()}, "table"))

	out := buf.String()
	assert.Contains(t, out, "Deep learning")
	assert.Contains(t, out, "journal")
	assert.Contains(t, out, " 83.50")
	assert.Contains(t, out, "1 citations")
}

func TestWriteCitationsTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCitations(&buf, nil, "table"))
	assert.Equal(t, "No citations.\n", buf.String())
}

func TestWriteCitationsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCitations(&buf, []types.FusedCitation{sampleCitation()}, "json"))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "abc", got[0]["id"])
	assert.Equal(t, 83.5, got[0]["score"])

	buf.Reset()
	require.NoError(t, writeCitations(&buf, nil, "json"))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestWriteCitationsYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCitations(&buf, []types.FusedCitation{sampleCitation()}, "yaml"))

	var got []types.FusedCitation
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "12", got[0].Citation.Key)
	assert.Equal(t, "Nature", got[0].Description.GetString(types.FieldSource))
}

func TestWriteCitationsCSL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCitations(&buf, []types.FusedCitation{sampleCitation()}, "csl"))

	var items []csl.Item
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "12", items[0].ID, "reference label is the CSL id")
	assert.Equal(t, "article-journal", items[0].Type)
}

func TestWriteCitationsUnknownFormat(t *testing.T) {
	err := writeCitations(&bytes.Buffer{}, nil, "bibtex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title", 10, "a longe..."},
		{"Gödel, Escher, Bach", 8, "Gödel..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.n), tt.in)
	}
}

func TestScoreString(t *testing.T) {
	assert.Equal(t, "100.00", scoreString(100))
	assert.Equal(t, " 50.00", scoreString(50))
	assert.True(t, strings.HasSuffix(scoreString(3.14159), "3.14"))
}
