// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parser

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// ReferenceParser extracts citation fields from the raw reference string
// with regular expressions. It needs no network and always runs.
type ReferenceParser struct{}

// Name returns the parser identifier.
func (ReferenceParser) Name() string { return string(types.ParserReference) }

// Reference patterns.
var (
	// apaAuthorsRe matches "Authors (2015). Rest" (APA and Harvard).
	apaAuthorsRe = regexp.MustCompile(`^(.+?)\s*\(((?:19|20)\d{2})[a-z]?\)[.,]?\s+(.+)$`)

	// vancouverAuthorsRe matches "LeCun Y, Bengio Y, Hinton G. Rest".
	vancouverAuthorsRe = regexp.MustCompile(`^((?:\p{Lu}[\p{L}'\-]+(?:\s\p{Lu}[\p{L}'\-]+)*\s\p{Lu}{1,3},\s*)*\p{Lu}[\p{L}'\-]+(?:\s\p{Lu}[\p{L}'\-]+)*\s\p{Lu}{1,3}(?:,?\s*et al)?)\.\s+(.+)$`)

	// authorBlockRe matches "Smith, A. and Jones, B. Rest".
	authorBlockRe = regexp.MustCompile(`^((?:\p{Lu}[\p{L}'\-]+,\s+(?:\p{Lu}\.\s*)+(?:,?\s+(?:and|&)\s+|,\s+)?)+(?:\s*et\s+al\.)?)\s*(.+)$`)

	// editorsRe matches "In: Doe A, Roe B (Eds.)" or "In J. Doe (Ed.),".
	editorsRe = regexp.MustCompile(`\bIn:?\s+(.+?)\s*\(\s*[Ee]ds?\.?\s*\)[,.:]?`)

	yearRe      = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	volIssueRe  = regexp.MustCompile(`\b(\d+)\s*\((\d+(?:[-–/]\d+)?)\)`)
	volPagesRe  = regexp.MustCompile(`;\s*(\d+)\s*:\s*(\d+)\s*[-–]\s*(\d+)`)
	pagesRe     = regexp.MustCompile(`\b(\d+)\s*[-–]\s*(\d+)\b`)
	ppRe        = regexp.MustCompile(`\bpp?\.\s*(\d+)\s*[-–]\s*(\d+)\b`)
	doiRe       = regexp.MustCompile(`\b(10\.\d{4,9}/[^\s"<>]+)`)
	isbnRe      = regexp.MustCompile(`(?i)\bISBN(?:-1[03])?:?\s*([0-9][0-9\- ]{8,15}[0-9Xx])`)
	issnRe      = regexp.MustCompile(`(?i)\bISSN:?\s*(\d{4}-\d{3}[\dXx])`)
	pmidRe      = regexp.MustCompile(`(?i)\bPMID:?\s*(\d+)`)
	uriRe       = regexp.MustCompile(`https?://[^\s<>"]+`)
	editionRe   = regexp.MustCompile(`(?i)\b(\d+)(?:st|nd|rd|th)\s+ed(?:ition|n)?\b\.?`)
	publisherRe = regexp.MustCompile(`(?:^|[.;]\s+)(\p{Lu}[\p{L} ]+?):\s*(\p{Lu}[\p{L}&.' ]+?)\s*[;,]\s*(?:19|20)\d{2}`)

	// conferenceRe flags a source that names a meeting.
	conferenceRe = regexp.MustCompile(`(?i)\b(?:proceedings|conference|symposium|workshop)\b`)

	// inPrefixRe strips the "In:" that introduces a containing work.
	inPrefixRe = regexp.MustCompile(`^In:?\s+`)

	// abbrevRe matches abbreviations whose period does not end a segment.
	abbrevRe = regexp.MustCompile(`\b(et al|e\.g|i\.e|[Vv]ol|[Nn]o|pp?|[Ee]ds?)\.`)

	// sourceCutRe marks where volume, pages, or a year start after a
	// journal name.
	sourceCutRe = regexp.MustCompile(`(?i)[,;:]?\s*(?:\d|vol\.|pp?\.|\()`)
)

// Parse extracts a description from c.Text. It never sets the publication
// type; fusion guesses it from the fields found here.
func (ReferenceParser) Parse(_ context.Context, c types.Citation) (*types.Description, error) {
	text := normalizeText(c.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty reference text", ErrNoMatch)
	}

	d := types.NewDescription()

	authors, rest := splitAuthors(text)
	if len(authors) > 0 {
		d.Set(types.FieldAuthors, authors)
	}

	if m := editorsRe.FindStringSubmatchIndex(rest); m != nil {
		d.Set(types.FieldEditors, parsePeople(rest[m[2]:m[3]]))
		if title := firstSegment(rest[:m[0]]); title != "" {
			d.Set(types.FieldArticleTitle, title)
		}
		if book := firstSegment(rest[m[1]:]); book != "" {
			d.Set(types.FieldSource, cleanSource(book))
		}
	} else {
		parts := splitOnPeriods(rest)
		if len(parts) >= 1 {
			d.Set(types.FieldArticleTitle, parts[0])
		}
		if len(parts) >= 2 {
			if source := cleanSource(parts[1]); source != "" {
				d.Set(types.FieldSource, source)
			}
		}
	}

	if source := d.GetString(types.FieldSource); conferenceRe.MatchString(source) {
		d.Set(types.FieldConfName, source)
	}

	if m := yearRe.FindStringSubmatch(text); m != nil {
		d.Set(types.FieldDate, m[1])
	}
	extractNumbering(d, text)
	extractIdentifiers(d, text)

	if m := editionRe.FindStringSubmatch(text); m != nil {
		d.Set(types.FieldEdition, m[1])
	}
	for _, m := range publisherRe.FindAllStringSubmatch(text, -1) {
		// "In: Proceedings of X; 2017" has the same shape.
		if loc := strings.TrimSpace(m[1]); !isContainerIntro(loc) {
			d.Set(types.FieldPublisherLoc, loc)
			d.Set(types.FieldPublisherName, strings.TrimSpace(m[2]))
			break
		}
	}

	if d.Len() == 0 {
		return nil, fmt.Errorf("%w: no fields recognized", ErrNoMatch)
	}
	return d, nil
}

// isContainerIntro reports a publisher location that is really the "In"
// introducing a containing work.
func isContainerIntro(loc string) bool {
	return loc == "In" || strings.HasSuffix(loc, " In") || strings.Contains(loc, "In:")
}

// normalizeText composes Unicode and collapses whitespace so that the same
// reference typed or pasted differently parses the same way.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// splitAuthors separates the leading author block from the rest of the
// reference. It returns no authors when no known style matches.
func splitAuthors(text string) ([]types.Person, string) {
	if m := apaAuthorsRe.FindStringSubmatch(text); m != nil {
		if people := parsePeople(m[1]); len(people) > 0 {
			return people, m[3]
		}
	}
	if m := vancouverAuthorsRe.FindStringSubmatch(text); m != nil {
		return parsePeople(m[1]), m[2]
	}
	if m := authorBlockRe.FindStringSubmatch(text); m != nil {
		return parsePeople(m[1]), m[2]
	}
	return nil, text
}

// extractNumbering sets volume, issue, and page range.
func extractNumbering(d *types.Description, text string) {
	if m := volPagesRe.FindStringSubmatch(text); m != nil {
		d.Set(types.FieldVolume, m[1])
		d.Set(types.FieldFirstPage, m[2])
		d.Set(types.FieldLastPage, m[3])
		return
	}

	after := ""
	if m := volIssueRe.FindStringSubmatchIndex(text); m != nil {
		d.Set(types.FieldVolume, text[m[2]:m[3]])
		d.Set(types.FieldIssue, text[m[4]:m[5]])
		after = text[m[1]:]
	}

	if m := ppRe.FindStringSubmatch(text); m != nil {
		d.Set(types.FieldFirstPage, m[1])
		d.Set(types.FieldLastPage, m[2])
	} else if m := pagesRe.FindStringSubmatch(after); m != nil {
		d.Set(types.FieldFirstPage, m[1])
		d.Set(types.FieldLastPage, m[2])
	}
}

// extractIdentifiers sets DOI, ISBN, ISSN, PMID, and URI.
func extractIdentifiers(d *types.Description, text string) {
	if m := doiRe.FindStringSubmatch(text); m != nil {
		d.Set(types.FieldDOI, strings.ToLower(strings.TrimRight(m[1], ".,;")))
	}
	if m := isbnRe.FindStringSubmatch(text); m != nil {
		d.Set(types.FieldISBN, strings.NewReplacer("-", "", " ", "").Replace(m[1]))
	}
	if m := issnRe.FindStringSubmatch(text); m != nil {
		d.Set(types.FieldISSNPrint, strings.ToUpper(m[1]))
	}
	if m := pmidRe.FindStringSubmatch(text); m != nil {
		d.Set(types.FieldPMID, m[1])
	}
	if uri := uriRe.FindString(text); uri != "" && !strings.Contains(uri, "doi.org/") {
		d.Set(types.FieldURI, strings.TrimRight(uri, ".,;"))
	}
}

// firstSegment returns the first period-delimited segment of s.
func firstSegment(s string) string {
	parts := splitOnPeriods(s)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// cleanSource trims volume, pages, and year that follow a journal name.
func cleanSource(s string) string {
	s = inPrefixRe.ReplaceAllString(s, "")
	if loc := sourceCutRe.FindStringIndex(s); loc != nil && loc[0] > 0 {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(strings.TrimRight(s, "., "))
}

// splitOnPeriods splits a reference into segments at ". " boundaries,
// keeping common abbreviations intact.
func splitOnPeriods(text string) []string {
	safe := abbrevRe.ReplaceAllString(text, "${1}\x00")

	var result []string
	for _, p := range strings.Split(safe, ". ") {
		p = strings.ReplaceAll(p, "\x00", ".")
		p = strings.TrimSpace(strings.TrimRight(p, "."))
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
