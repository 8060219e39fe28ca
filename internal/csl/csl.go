// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csl converts fused descriptions to CSL (Citation Style Language)
// items so output is consumable by Pandoc and reference managers.
package csl

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Item is one bibliographic entry in CSL-YAML form.
type Item struct {
	ID             string `yaml:"id"`
	Type           string `yaml:"type"`
	Title          string `yaml:"title,omitempty"`
	ContainerTitle string `yaml:"container-title,omitempty"`
	Author         []Name `yaml:"author,omitempty"`
	Editor         []Name `yaml:"editor,omitempty"`
	Issued         *Date  `yaml:"issued,omitempty"`
	Volume         string `yaml:"volume,omitempty"`
	Issue          string `yaml:"issue,omitempty"`
	Page           string `yaml:"page,omitempty"`
	Edition        string `yaml:"edition,omitempty"`
	Publisher      string `yaml:"publisher,omitempty"`
	PublisherPlace string `yaml:"publisher-place,omitempty"`
	Event          string `yaml:"event,omitempty"`
	EventPlace     string `yaml:"event-place,omitempty"`
	DOI            string `yaml:"DOI,omitempty"`
	ISBN           string `yaml:"ISBN,omitempty"`
	ISSN           string `yaml:"ISSN,omitempty"`
	PMID           string `yaml:"PMID,omitempty"`
	URL            string `yaml:"URL,omitempty"`
}

// Name is a person's name in CSL form.
type Name struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// Date is a CSL date using date-parts.
type Date struct {
	DateParts [][]int `yaml:"date-parts"`
}

var yearRe = regexp.MustCompile(`\b(\d{4})\b`)

// FromDescription converts d to a CSL item with the given id.
func FromDescription(id string, d *types.Description) Item {
	item := Item{
		ID:             id,
		Type:           itemType(d),
		Title:          d.Text(types.FieldArticleTitle),
		ContainerTitle: d.Text(types.FieldSource),
		Author:         names(d.GetPeople(types.FieldAuthors)),
		Editor:         names(d.GetPeople(types.FieldEditors)),
		Volume:         d.Text(types.FieldVolume),
		Issue:          d.Text(types.FieldIssue),
		Edition:        d.Text(types.FieldEdition),
		Publisher:      d.Text(types.FieldPublisherName),
		PublisherPlace: d.Text(types.FieldPublisherLoc),
		Event:          d.Text(types.FieldConfName),
		EventPlace:     d.Text(types.FieldConfLoc),
		DOI:            d.Text(types.FieldDOI),
		ISBN:           d.Text(types.FieldISBN),
		ISSN:           d.Text(types.FieldISSNPrint),
		PMID:           d.Text(types.FieldPMID),
		URL:            d.Text(types.FieldURI),
	}
	if item.ISSN == "" {
		item.ISSN = d.Text(types.FieldISSNElectronic)
	}
	if item.Title == "" {
		item.Title = d.Text(types.FieldChapterTitle)
	}

	if m := yearRe.FindStringSubmatch(d.Text(types.FieldDate)); m != nil {
		year, _ := strconv.Atoi(m[1])
		item.Issued = &Date{DateParts: [][]int{{year}}}
	}

	first, last := d.Text(types.FieldFirstPage), d.Text(types.FieldLastPage)
	switch {
	case first != "" && last != "":
		item.Page = first + "-" + last
	case first != "":
		item.Page = first
	}

	return item
}

// Write encodes items as a CSL-YAML list to w.
func Write(w io.Writer, items []Item) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// itemType maps the publication type to a CSL type. A book description
// with editors or a chapter title is a chapter of an edited volume.
func itemType(d *types.Description) string {
	pt, _ := d.PublicationType()
	switch pt {
	case types.PublicationJournal:
		return "article-journal"
	case types.PublicationBook:
		if d.Has(types.FieldEditors) || d.Has(types.FieldChapterTitle) {
			return "chapter"
		}
		return "book"
	case types.PublicationConfProc:
		return "paper-conference"
	default:
		return "article"
	}
}

func names(people []types.Person) []Name {
	var out []Name
	for _, p := range people {
		switch {
		case p.GivenNames == "" && strings.Contains(p.Surname, " "):
			out = append(out, Name{Literal: p.Surname})
		default:
			out = append(out, Name{Family: p.Surname, Given: p.GivenNames})
		}
	}
	return out
}
