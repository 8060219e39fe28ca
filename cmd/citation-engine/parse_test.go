// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-engine/internal/fusion"
	"github.com/pdiddy/citation-engine/internal/parser"
	"github.com/pdiddy/citation-engine/pkg/types"
)

type fixedParser struct {
	name string
	desc *types.Description
	err  error
}

func (p fixedParser) Name() string { return p.name }

func (p fixedParser) Parse(ctx context.Context, c types.Citation) (*types.Description, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.desc.Clone(), nil
}

func conferencePaper() *types.Description {
	d := types.NewDescription()
	d.Set(types.FieldAuthors, []types.Person{{Surname: "Vaswani", GivenNames: "A."}})
	d.Set(types.FieldArticleTitle, "Attention is all you need")
	d.Set(types.FieldSource, "NeurIPS")
	d.Set(types.FieldDate, "2017")
	d.Set(types.FieldFirstPage, "5998")
	d.Set(types.FieldPublicationType, "conf-proc")
	return d
}

func TestParseCitation(t *testing.T) {
	parsers := []parser.Parser{
		fixedParser{name: "reference", desc: conferencePaper()},
		fixedParser{name: "openalex", err: parser.ErrNoMatch},
		fixedParser{name: "crossref", desc: conferencePaper()},
	}
	c := types.Citation{Key: "7", Text: "Vaswani A. Attention is all you need. NeurIPS 2017."}

	fc, err := parseCitation(context.Background(), parsers, c, types.FusionConfig{})
	require.NoError(t, err)

	assert.Equal(t, c, fc.Citation)
	assert.Equal(t, 2, fc.CandidateCount)
	assert.Equal(t, []string{"reference", "crossref"}, fc.Sources)
	assert.Equal(t, 100.0, fc.Score)
	assert.Equal(t, fc.Score, fc.Description.Score)
	assert.Equal(t, "Attention is all you need", fc.Description.GetString(types.FieldArticleTitle))
	assert.False(t, fc.CreatedAt.IsZero())
}

func TestParseCitationNoCandidates(t *testing.T) {
	parsers := []parser.Parser{
		fixedParser{name: "reference", err: parser.ErrNoMatch},
		fixedParser{name: "crossref", err: errors.New("HTTP 500")},
	}

	_, err := parseCitation(context.Background(), parsers, types.Citation{Text: "???"}, types.FusionConfig{})
	assert.ErrorIs(t, err, fusion.ErrInvalidInput)
}

func TestParseCitationCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	parsers := []parser.Parser{fixedParser{name: "reference", desc: conferencePaper()}}
	_, err := parseCitation(ctx, parsers, types.Citation{Text: "x"}, types.FusionConfig{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildCitations(t *testing.T) {
	t.Run("single takes key and doi", func(t *testing.T) {
		got, err := buildCitations([]string{"ref one"}, "k", "10.1/x")
		require.NoError(t, err)
		assert.Equal(t, []types.Citation{{Key: "k", Text: "ref one", DOI: "10.1/x"}}, got)
	})

	t.Run("doi only", func(t *testing.T) {
		got, err := buildCitations(nil, "", "10.1/x")
		require.NoError(t, err)
		assert.Equal(t, []types.Citation{{DOI: "10.1/x"}}, got)
	})

	t.Run("several are numbered", func(t *testing.T) {
		got, err := buildCitations([]string{"a", "b"}, "", "")
		require.NoError(t, err)
		assert.Equal(t, []types.Citation{{Key: "1", Text: "a"}, {Key: "2", Text: "b"}}, got)

		got, err = buildCitations([]string{"a", "b"}, "ch3", "")
		require.NoError(t, err)
		assert.Equal(t, "ch3-2", got[1].Key)
	})

	t.Run("nothing to parse", func(t *testing.T) {
		_, err := buildCitations(nil, "", "")
		assert.Error(t, err)
	})

	t.Run("doi with several", func(t *testing.T) {
		_, err := buildCitations([]string{"a", "b"}, "", "10.1/x")
		assert.Error(t, err)
	})
}

func TestReadReferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.txt")
	require.NoError(t, os.WriteFile(path, []byte("first ref\n\n   \n  second ref  \n"), 0o644))

	got, err := readReferences(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"first ref", "second ref"}, got)

	_, err = readReferences(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "12", label(types.Citation{Key: "12", DOI: "10.1/x"}))
	assert.Equal(t, "10.1/x", label(types.Citation{DOI: "10.1/x", Text: "t"}))
	assert.Equal(t, "short text", label(types.Citation{Text: "short text"}))
}
