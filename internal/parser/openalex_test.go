// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-engine/internal/fusion"
	"github.com/pdiddy/citation-engine/pkg/types"
)

const openAlexWorkJSON = `{
  "id": "https://openalex.org/W2919115771",
  "doi": "https://doi.org/10.1038/nature14539",
  "title": "Deep learning",
  "publication_year": 2015,
  "type_crossref": "journal-article",
  "authorships": [
    {"author": {"display_name": "Yann LeCun"}},
    {"author": {"display_name": "Yoshua Bengio"}},
    {"author": {"display_name": "Geoffrey E. Hinton"}}
  ],
  "biblio": {"volume": "521", "issue": "7553", "first_page": "436", "last_page": "444"},
  "primary_location": {"source": {"display_name": "Nature", "issn_l": "0028-0836", "type": "journal"}},
  "ids": {"pmid": "https://pubmed.ncbi.nlm.nih.gov/26017442"}
}`

func withOpenAlexBase(t *testing.T, url string) {
	t.Helper()
	orig := openAlexAPIBase
	openAlexAPIBase = url
	t.Cleanup(func() { openAlexAPIBase = orig })
}

func newOpenAlexParser(client *http.Client) *OpenAlexParser {
	return &OpenAlexParser{
		Client: client,
		Config: types.LookupConfig{
			HTTPConfig: types.HTTPConfig{UserAgent: "citation-engine-test/0.1"},
			Email:      "lib@example.edu",
		},
	}
}

func TestOpenAlexParserByDOI(t *testing.T) {
	var gotPath, gotMailto, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMailto = r.URL.Query().Get("mailto")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(openAlexWorkJSON))
	}))
	defer srv.Close()
	withOpenAlexBase(t, srv.URL+"/works")

	p := newOpenAlexParser(srv.Client())
	d, err := p.Parse(context.Background(), types.Citation{DOI: "https://doi.org/10.1038/NATURE14539"})
	require.NoError(t, err)

	assert.Equal(t, "/works/https://doi.org/10.1038/nature14539", gotPath)
	assert.Equal(t, "lib@example.edu", gotMailto)
	assert.Equal(t, "citation-engine-test/0.1", gotUA)

	assert.Equal(t, "journal", d.GetString(types.FieldPublicationType))
	assert.Equal(t, []types.Person{
		{Surname: "LeCun", GivenNames: "Yann"},
		{Surname: "Bengio", GivenNames: "Yoshua"},
		{Surname: "Hinton", GivenNames: "Geoffrey E."},
	}, d.GetPeople(types.FieldAuthors))
	assert.Equal(t, "Deep learning", d.GetString(types.FieldArticleTitle))
	assert.Equal(t, "Nature", d.GetString(types.FieldSource))
	assert.Equal(t, "2015", d.GetString(types.FieldDate))
	assert.Equal(t, "521", d.GetString(types.FieldVolume))
	assert.Equal(t, "7553", d.GetString(types.FieldIssue))
	assert.Equal(t, "436", d.GetString(types.FieldFirstPage))
	assert.Equal(t, "444", d.GetString(types.FieldLastPage))
	assert.Equal(t, "0028-0836", d.GetString(types.FieldISSNPrint))
	assert.Equal(t, "26017442", d.GetString(types.FieldPMID))
	assert.Equal(t, "10.1038/nature14539", d.GetString(types.FieldDOI))
	assert.Equal(t, 100, fusion.Score(d))
}

func TestOpenAlexParserSearch(t *testing.T) {
	var gotSearch, gotPerPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSearch = r.URL.Query().Get("search")
		gotPerPage = r.URL.Query().Get("per_page")
		w.Write([]byte(`{"results": [` + openAlexWorkJSON + `]}`))
	}))
	defer srv.Close()
	withOpenAlexBase(t, srv.URL+"/works")

	p := newOpenAlexParser(srv.Client())
	d, err := p.Parse(context.Background(), types.Citation{Text: "LeCun Y. Deep  learning.\nNature 2015"})
	require.NoError(t, err)

	assert.Equal(t, "LeCun Y. Deep learning. Nature 2015", gotSearch)
	assert.Equal(t, "1", gotPerPage)
	assert.Equal(t, "Deep learning", d.GetString(types.FieldArticleTitle))
}

func TestOpenAlexParserNoMatch(t *testing.T) {
	tests := []struct {
		name     string
		citation types.Citation
		status   int
		body     string
	}{
		{"empty search results", types.Citation{Text: "unknown work"}, http.StatusOK, `{"results": []}`},
		{"unknown DOI", types.Citation{DOI: "10.9999/missing"}, http.StatusNotFound, `{"error": "not found"}`},
		{"nothing to look up", types.Citation{}, http.StatusOK, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			withOpenAlexBase(t, srv.URL+"/works")

			_, err := newOpenAlexParser(srv.Client()).Parse(context.Background(), tt.citation)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoMatch), "got %v", err)
		})
	}
}

func TestOpenAlexParserServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	withOpenAlexBase(t, srv.URL+"/works")

	_, err := newOpenAlexParser(srv.Client()).Parse(context.Background(), types.Citation{DOI: "10.1038/nature14539"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoMatch))
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestOpenAlexParserBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()
	withOpenAlexBase(t, srv.URL+"/works")

	_, err := newOpenAlexParser(srv.Client()).Parse(context.Background(), types.Citation{DOI: "10.1038/nature14539"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing OpenAlex response")
}
