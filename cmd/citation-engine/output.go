// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-engine/internal/csl"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var (
	highScore = color.New(color.FgGreen, color.Bold)
	midScore  = color.New(color.FgYellow)
	lowScore  = color.New(color.FgRed)
)

// scoreString renders a score padded to six columns and colored by band.
func scoreString(score float64) string {
	s := fmt.Sprintf("%6.2f", score)
	switch {
	case score >= 80:
		return highScore.Sprint(s)
	case score >= 50:
		return midScore.Sprint(s)
	default:
		return lowScore.Sprint(s)
	}
}

// writeCitations renders citations in the requested format.
func writeCitations(w io.Writer, citations []types.FusedCitation, format string) error {
	switch format {
	case "table", "":
		return writeTable(w, citations)
	case "json":
		if citations == nil {
			citations = []types.FusedCitation{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(citations)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(citations)
	case "csl":
		items := make([]csl.Item, len(citations))
		for i, fc := range citations {
			items[i] = csl.FromDescription(cslID(fc), fc.Description)
		}
		return csl.Write(w, items)
	default:
		return fmt.Errorf("unsupported format %q: use table, json, yaml, or csl", format)
	}
}

// cslID prefers the reference label over the store ID.
func cslID(fc types.FusedCitation) string {
	if fc.Citation.Key != "" {
		return fc.Citation.Key
	}
	return fc.ID
}

func writeTable(w io.Writer, citations []types.FusedCitation) error {
	if len(citations) == 0 {
		fmt.Fprintln(w, "No citations.")
		return nil
	}

	fmt.Fprintf(w, "%-8s  %-9s  %6s  %-40s  %-24s  %-4s  %s\n",
		"Key", "Type", "Score", "Title", "Source", "Year", "ID")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, fc := range citations {
		d := fc.Description
		pt := "-"
		if t, ok := d.PublicationType(); ok {
			pt = string(t)
		}
		fmt.Fprintf(w, "%-8s  %-9s  %s  %-40s  %-24s  %-4s  %s\n",
			truncate(fc.Citation.Key, 8), pt, scoreString(fc.Score),
			truncate(d.Text(types.FieldArticleTitle), 40),
			truncate(d.Text(types.FieldSource), 24),
			truncate(d.Text(types.FieldDate), 4),
			fc.ID)
	}

	fmt.Fprintf(w, "\n%d citations\n", len(citations))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
