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

// crossrefAPIBase is the Crossref Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// CrossrefParser looks a citation up in Crossref, by DOI when one is known
// and by bibliographic query otherwise.
type CrossrefParser struct {
	Client     *http.Client
	Config     types.LookupConfig
	Limiter    *rate.Limiter
	MaxRetries int
}

// Name returns the parser identifier.
func (p *CrossrefParser) Name() string { return string(types.ParserCrossref) }

// Parse returns the description of the best-matching work.
func (p *CrossrefParser) Parse(ctx context.Context, c types.Citation) (*types.Description, error) {
	params := url.Values{}
	if p.Config.Email != "" {
		params.Set("mailto", p.Config.Email)
	}

	var work crossrefWork
	if doi := lookupDOI(c); doi != "" {
		reqURL := crossrefAPIBase + "/" + url.PathEscape(doi)
		if len(params) > 0 {
			reqURL += "?" + params.Encode()
		}
		var resp crossrefWorkResponse
		if err := getJSON(ctx, p.Client, p.Limiter, p.Config, p.MaxRetries, "Crossref", reqURL, &resp); err != nil {
			return nil, err
		}
		work = resp.Message
	} else {
		text := normalizeText(c.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: empty citation", ErrNoMatch)
		}
		params.Set("query.bibliographic", text)
		params.Set("rows", "1")

		var resp crossrefSearchResponse
		if err := getJSON(ctx, p.Client, p.Limiter, p.Config, p.MaxRetries, "Crossref", crossrefAPIBase+"?"+params.Encode(), &resp); err != nil {
			return nil, err
		}
		if len(resp.Message.Items) == 0 {
			return nil, fmt.Errorf("%w: Crossref query returned no items", ErrNoMatch)
		}
		work = resp.Message.Items[0]
	}

	return work.description(), nil
}

// Crossref API JSON structures.
type crossrefWorkResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefSearchResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	DOI            string           `json:"DOI"`
	Type           string           `json:"type"`
	Title          []string         `json:"title"`
	ContainerTitle []string         `json:"container-title"`
	Author         []crossrefPerson `json:"author"`
	Editor         []crossrefPerson `json:"editor"`
	Volume         string           `json:"volume"`
	Issue          string           `json:"issue"`
	Page           string           `json:"page"`
	Issued         crossrefDate     `json:"issued"`
	ISSN           []string         `json:"ISSN"`
	ISBN           []string         `json:"ISBN"`
	Publisher      string           `json:"publisher"`
	PublisherLoc   string           `json:"publisher-location"`
	EditionNumber  string           `json:"edition-number"`
	Event          *crossrefEvent   `json:"event"`
}

type crossrefPerson struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefEvent struct {
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Sponsor  []string `json:"sponsor"`
}

// year returns the first date part, or 0.
func (d crossrefDate) year() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}

func people(ps []crossrefPerson) []types.Person {
	var out []types.Person
	for _, p := range ps {
		switch {
		case p.Family != "":
			out = append(out, types.Person{Surname: p.Family, GivenNames: p.Given})
		case p.Name != "":
			out = append(out, splitName(p.Name))
		}
	}
	return out
}

// description maps a work onto citation fields.
func (w crossrefWork) description() *types.Description {
	d := types.NewDescription()

	pt, ok := mapPublicationType(w.Type)
	if ok {
		d.Set(types.FieldPublicationType, string(pt))
	}

	if authors := people(w.Author); len(authors) > 0 {
		d.Set(types.FieldAuthors, authors)
	}
	if editors := people(w.Editor); len(editors) > 0 {
		d.Set(types.FieldEditors, editors)
	}

	if len(w.Title) > 0 {
		if w.Type == "book-chapter" || w.Type == "book-section" || w.Type == "book-part" {
			setIf(d, types.FieldChapterTitle, w.Title[0])
		}
		setIf(d, types.FieldArticleTitle, w.Title[0])
	}
	if len(w.ContainerTitle) > 0 {
		setIf(d, types.FieldSource, w.ContainerTitle[0])
	} else if pt == types.PublicationBook && len(w.Title) > 0 {
		setIf(d, types.FieldSource, w.Title[0])
	}

	if y := w.Issued.year(); y > 0 {
		d.Set(types.FieldDate, strconv.Itoa(y))
	}
	setIf(d, types.FieldVolume, w.Volume)
	setIf(d, types.FieldIssue, w.Issue)
	if first, last, found := strings.Cut(w.Page, "-"); found {
		setIf(d, types.FieldFirstPage, first)
		setIf(d, types.FieldLastPage, last)
	} else {
		setIf(d, types.FieldFirstPage, w.Page)
	}

	if len(w.ISSN) > 0 {
		setIf(d, types.FieldISSNPrint, w.ISSN[0])
	}
	if len(w.ISSN) > 1 {
		setIf(d, types.FieldISSNElectronic, w.ISSN[1])
	}
	if pt == types.PublicationBook {
		if len(w.ISBN) > 0 {
			setIf(d, types.FieldISBN, strings.ReplaceAll(w.ISBN[0], "-", ""))
		}
		setIf(d, types.FieldEdition, w.EditionNumber)
		setIf(d, types.FieldPublisherName, w.Publisher)
		setIf(d, types.FieldPublisherLoc, w.PublisherLoc)
	}

	if w.Event != nil {
		setIf(d, types.FieldConfName, w.Event.Name)
		setIf(d, types.FieldConfLoc, w.Event.Location)
		if len(w.Event.Sponsor) > 0 {
			setIf(d, types.FieldConfSponsor, strings.Join(w.Event.Sponsor, "; "))
		}
	}

	setIf(d, types.FieldDOI, normalizeDOI(w.DOI))
	return d
}
