// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-engine/pkg/types"
)

const exportLimit = 100000

// ExportRow is the flat row written to Parquet. The full description is
// kept as YAML alongside the columns most analyses need.
type ExportRow struct {
	ID              string   `parquet:"id"`
	Key             string   `parquet:"key"`
	Text            string   `parquet:"text"`
	DOI             string   `parquet:"doi"`
	PublicationType string   `parquet:"publication_type"`
	Title           string   `parquet:"title"`
	Source          string   `parquet:"source"`
	Date            string   `parquet:"date"`
	Authors         []string `parquet:"authors,list"`
	Score           float64  `parquet:"score"`
	CandidateCount  int64    `parquet:"candidate_count"`
	Sources         []string `parquet:"sources,list"`
	Description     string   `parquet:"description"`
	CreatedAt       string   `parquet:"created_at"`
}

// ExportYAML writes the matching citations to <dir>/export.yaml and
// returns the path.
func (s *Store) ExportYAML(ctx context.Context, opts ListOptions) (string, error) {
	citations, err := s.exportCitations(ctx, opts)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(citations)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dir, "export.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the matching citations to <dir>/export.json and
// returns the path.
func (s *Store) ExportJSON(ctx context.Context, opts ListOptions) (string, error) {
	citations, err := s.exportCitations(ctx, opts)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(citations, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dir, "export.json")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportParquet writes the matching citations to <dir>/export.parquet and
// returns the path.
func (s *Store) ExportParquet(ctx context.Context, opts ListOptions) (string, error) {
	citations, err := s.exportCitations(ctx, opts)
	if err != nil {
		return "", err
	}

	rows := make([]ExportRow, len(citations))
	for i, fc := range citations {
		row, err := toExportRow(fc)
		if err != nil {
			return "", err
		}
		rows[i] = row
	}

	path := filepath.Join(s.dir, "export.parquet")
	if err := parquet.WriteFile(path, rows); err != nil {
		return "", fmt.Errorf("writing parquet: %w", err)
	}
	return path, nil
}

func (s *Store) exportCitations(ctx context.Context, opts ListOptions) ([]types.FusedCitation, error) {
	opts.MaxResults = exportLimit
	citations, err := s.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if citations == nil {
		citations = []types.FusedCitation{}
	}
	return citations, nil
}

func toExportRow(fc types.FusedCitation) (ExportRow, error) {
	d := fc.Description
	desc, err := yaml.Marshal(d)
	if err != nil {
		return ExportRow{}, fmt.Errorf("encoding description of %s: %w", fc.ID, err)
	}

	row := ExportRow{
		ID:             fc.ID,
		Key:            fc.Citation.Key,
		Text:           fc.Citation.Text,
		DOI:            d.Text(types.FieldDOI),
		Title:          d.Text(types.FieldArticleTitle),
		Source:         d.Text(types.FieldSource),
		Date:           d.Text(types.FieldDate),
		Score:          fc.Score,
		CandidateCount: int64(fc.CandidateCount),
		Sources:        fc.Sources,
		Description:    string(desc),
		CreatedAt:      fc.CreatedAt.UTC().Format(time.RFC3339),
	}
	if row.DOI == "" {
		row.DOI = fc.Citation.DOI
	}
	if pt, ok := d.PublicationType(); ok {
		row.PublicationType = string(pt)
	}
	for _, p := range d.GetPeople(types.FieldAuthors) {
		row.Authors = append(row.Authors, p.String())
	}
	return row, nil
}
