// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// openAlexAPIBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works"

// OpenAlexParser looks a citation up in OpenAlex, by DOI when one is known
// and by bibliographic search otherwise.
type OpenAlexParser struct {
	Client     *http.Client
	Config     types.LookupConfig
	Limiter    *rate.Limiter
	MaxRetries int
}

// Name returns the parser identifier.
func (p *OpenAlexParser) Name() string { return string(types.ParserOpenAlex) }

// Parse returns the description of the best-matching work.
func (p *OpenAlexParser) Parse(ctx context.Context, c types.Citation) (*types.Description, error) {
	params := url.Values{}
	if p.Config.Email != "" {
		params.Set("mailto", p.Config.Email)
	}

	var work openAlexWork
	if doi := lookupDOI(c); doi != "" {
		reqURL := openAlexAPIBase + "/https://doi.org/" + doi
		if len(params) > 0 {
			reqURL += "?" + params.Encode()
		}
		if err := getJSON(ctx, p.Client, p.Limiter, p.Config, p.MaxRetries, "OpenAlex", reqURL, &work); err != nil {
			return nil, err
		}
	} else {
		text := normalizeText(c.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: empty citation", ErrNoMatch)
		}
		params.Set("search", text)
		params.Set("per_page", "1")

		var resp openAlexResponse
		if err := getJSON(ctx, p.Client, p.Limiter, p.Config, p.MaxRetries, "OpenAlex", openAlexAPIBase+"?"+params.Encode(), &resp); err != nil {
			return nil, err
		}
		if len(resp.Results) == 0 {
			return nil, fmt.Errorf("%w: OpenAlex search returned no results", ErrNoMatch)
		}
		work = resp.Results[0]
	}

	return work.description(), nil
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	DOI             string               `json:"doi"`
	Title           string               `json:"title"`
	PublicationYear int                  `json:"publication_year"`
	TypeCrossref    string               `json:"type_crossref"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	Biblio          openAlexBiblio       `json:"biblio"`
	PrimaryLocation *openAlexLocation    `json:"primary_location"`
	IDs             openAlexIDs          `json:"ids"`
}

type openAlexAuthorship struct {
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type openAlexBiblio struct {
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	FirstPage string `json:"first_page"`
	LastPage  string `json:"last_page"`
}

type openAlexLocation struct {
	Source *openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName          string   `json:"display_name"`
	ISSNL                string   `json:"issn_l"`
	ISSN                 []string `json:"issn"`
	HostOrganizationName string   `json:"host_organization_name"`
	Type                 string   `json:"type"`
}

type openAlexIDs struct {
	PMID string `json:"pmid"`
}

// description maps a work onto citation fields.
func (w openAlexWork) description() *types.Description {
	d := types.NewDescription()

	if pt, ok := mapPublicationType(w.TypeCrossref); ok {
		d.Set(types.FieldPublicationType, string(pt))
	}

	var authors []types.Person
	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			authors = append(authors, splitName(a.Author.DisplayName))
		}
	}
	if len(authors) > 0 {
		d.Set(types.FieldAuthors, authors)
	}

	setIf(d, types.FieldArticleTitle, w.Title)

	var source *openAlexSource
	if w.PrimaryLocation != nil {
		source = w.PrimaryLocation.Source
	}
	if source != nil {
		setIf(d, types.FieldSource, source.DisplayName)
		if source.Type == "conference" {
			setIf(d, types.FieldConfName, source.DisplayName)
		}
	}

	if w.PublicationYear > 0 {
		d.Set(types.FieldDate, strconv.Itoa(w.PublicationYear))
	}
	setIf(d, types.FieldVolume, w.Biblio.Volume)
	setIf(d, types.FieldIssue, w.Biblio.Issue)
	setIf(d, types.FieldFirstPage, w.Biblio.FirstPage)
	setIf(d, types.FieldLastPage, w.Biblio.LastPage)

	if source != nil {
		issn := source.ISSNL
		if issn == "" && len(source.ISSN) > 0 {
			issn = source.ISSN[0]
		}
		setIf(d, types.FieldISSNPrint, issn)
		if source.Type == "book series" || source.Type == "ebook platform" {
			setIf(d, types.FieldPublisherName, source.HostOrganizationName)
		}
	}

	if w.IDs.PMID != "" {
		setIf(d, types.FieldPMID, w.IDs.PMID[strings.LastIndex(w.IDs.PMID, "/")+1:])
	}
	setIf(d, types.FieldDOI, normalizeDOI(w.DOI))
	return d
}
