// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// getJSON fetches reqURL, waiting on limiter first, and decodes a JSON
// body into v. HTTP 404 maps to ErrNoMatch.
func getJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, cfg types.LookupConfig, maxRetries int, service, reqURL string, v any) error {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, client, req, maxRetries)
	if err != nil {
		return fmt.Errorf("%s API request: %w", service, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s returned HTTP 404", ErrNoMatch, service)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s API returned HTTP %d", service, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing %s response: %w", service, err)
	}
	return nil
}

var bareDOIRe = regexp.MustCompile(`(?i)^(?:https?://(?:dx\.)?doi\.org/|doi:\s*)`)

// normalizeDOI strips URL and "doi:" prefixes and lowercases the DOI.
func normalizeDOI(doi string) string {
	return strings.ToLower(strings.TrimSpace(bareDOIRe.ReplaceAllString(strings.TrimSpace(doi), "")))
}

// lookupDOI returns the DOI to look up for c: the explicit one, else one
// found in the reference text.
func lookupDOI(c types.Citation) string {
	if c.DOI != "" {
		return normalizeDOI(c.DOI)
	}
	if m := doiRe.FindStringSubmatch(c.Text); m != nil {
		return normalizeDOI(strings.TrimRight(m[1], ".,;"))
	}
	return ""
}

// mapPublicationType converts a Crossref work type (also reported by
// OpenAlex as type_crossref) to a publication type. Unknown types are
// left for the guesser.
func mapPublicationType(workType string) (types.PublicationType, bool) {
	switch workType {
	case "journal-article", "journal-issue", "journal":
		return types.PublicationJournal, true
	case "book", "book-chapter", "monograph", "edited-book", "reference-book", "book-section", "book-part":
		return types.PublicationBook, true
	case "proceedings-article", "proceedings":
		return types.PublicationConfProc, true
	default:
		return types.PublicationUnknown, false
	}
}

// setIf sets name on d when value is not empty.
func setIf(d *types.Description, name, value string) {
	if value = strings.TrimSpace(value); value != "" {
		d.Set(name, value)
	}
}
