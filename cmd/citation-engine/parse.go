// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/fusion"
	"github.com/pdiddy/citation-engine/internal/parser"
	"github.com/pdiddy/citation-engine/internal/store"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse [reference...]",
	Short: "Parse references and fuse the candidates into one record each",
	Long: `Parse runs the configured parsers on each reference, fuses their
candidate descriptions, and prints the merged record. References come from
the arguments or, with --file, one per line from a file ("-" for stdin).

With --doi a single reference (or none) is looked up by DOI.`,
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	applyFusionFlags(cmd, &cfg.Fusion)

	key, _ := cmd.Flags().GetString("key")
	doi, _ := cmd.Flags().GetString("doi")
	file, _ := cmd.Flags().GetString("file")
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")

	refs := args
	if file != "" {
		lines, err := readReferences(file)
		if err != nil {
			return err
		}
		refs = append(refs, lines...)
	}

	citations, err := buildCitations(refs, key, doi)
	if err != nil {
		return err
	}

	parsers, err := parser.Build(cfg.Fusion.Parsers, cfg.Lookup, nil)
	if err != nil {
		return err
	}

	var st *store.Store
	if save {
		st, err = store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	ctx := cmd.Context()
	var results []types.FusedCitation
	failed := 0
	for _, c := range citations {
		fc, err := parseCitation(ctx, parsers, c, cfg.Fusion)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(os.Stderr, "failed  %s: %v\n", label(c), err)
			failed++
			continue
		}
		if st != nil {
			if err := st.Save(ctx, fc); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "saved   %s (score %.2f)\n", label(c), fc.Score)
		}
		results = append(results, *fc)
	}

	if err := writeCitations(os.Stdout, results, format); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d reference(s) could not be fused", failed)
	}
	return nil
}

// parseCitation fans c out to parsers and fuses the candidates.
func parseCitation(ctx context.Context, parsers []parser.Parser, c types.Citation, cfg types.FusionConfig) (*types.FusedCitation, error) {
	res, err := parser.Run(ctx, parsers, c, slog.Default())
	if err != nil {
		return nil, err
	}

	merged, err := fusion.Fuse(res.Candidates, cfg)
	if err != nil {
		return nil, err
	}
	slog.Debug("fused citation", "key", c.Key, "score", merged.Score, "candidates", res.Live(), "sources", res.Sources)

	return &types.FusedCitation{
		Citation:       c,
		Description:    merged,
		Score:          merged.Score,
		CandidateCount: res.Live(),
		Sources:        res.Sources,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// buildCitations pairs references with keys. A single reference takes key
// and doi; several references are numbered from 1.
func buildCitations(refs []string, key, doi string) ([]types.Citation, error) {
	if len(refs) == 0 {
		if doi == "" {
			return nil, fmt.Errorf("reference required: pass one as an argument, use --file, or --doi")
		}
		return []types.Citation{{Key: key, DOI: doi}}, nil
	}
	if len(refs) == 1 {
		return []types.Citation{{Key: key, Text: refs[0], DOI: doi}}, nil
	}
	if doi != "" {
		return nil, fmt.Errorf("--doi applies to a single reference, got %d", len(refs))
	}

	out := make([]types.Citation, len(refs))
	for i, ref := range refs {
		k := strconv.Itoa(i + 1)
		if key != "" {
			k = key + "-" + k
		}
		out[i] = types.Citation{Key: k, Text: ref}
	}
	return out, nil
}

// readReferences reads non-blank lines from path, or stdin for "-".
func readReferences(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening reference file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var refs []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			refs = append(refs, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading references: %w", err)
	}
	return refs, nil
}

// applyFusionFlags overrides configured fusion settings with flags the
// user set explicitly.
func applyFusionFlags(cmd *cobra.Command, cfg *types.FusionConfig) {
	if cmd.Flags().Changed("threshold") {
		cfg.ScoreThreshold, _ = cmd.Flags().GetInt("threshold")
	}
	if cmd.Flags().Changed("parsers") {
		names, _ := cmd.Flags().GetStringSlice("parsers")
		cfg.Parsers = nil
		for _, n := range names {
			cfg.Parsers = append(cfg.Parsers, types.ParserName(strings.TrimSpace(n)))
		}
	}
}

func label(c types.Citation) string {
	switch {
	case c.Key != "":
		return c.Key
	case c.DOI != "":
		return c.DOI
	default:
		return truncate(c.Text, 40)
	}
}

func init() {
	parseCmd.Flags().String("key", "", "reference label (numbered suffixes are added for several references)")
	parseCmd.Flags().String("doi", "", "known DOI for the reference")
	parseCmd.Flags().String("file", "", "read references one per line from a file (- for stdin)")
	parseCmd.Flags().StringSlice("parsers", nil, "parsers to run, in order: reference, openalex, crossref")
	parseCmd.Flags().Int("threshold", 0, "exclude candidates scoring below this (0-100)")
	parseCmd.Flags().String("format", "table", "output format: table, json, yaml, or csl")
	parseCmd.Flags().Bool("save", false, "save fused citations to the store")

	rootCmd.AddCommand(parseCmd)
}
