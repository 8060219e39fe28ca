// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/fusion"
	"github.com/pdiddy/citation-engine/internal/store"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var fuseCmd = &cobra.Command{
	Use:   "fuse <file>",
	Short: "Fuse candidate descriptions read from a YAML file",
	Long: `Fuse reads candidate sets from a YAML file and merges each set into one
record. This runs fusion alone, without any parser; it is how candidates
produced elsewhere are combined.

The file holds a list of sets, each with the reference and its candidates:

  sets:
    - key: "12"
      text: "LeCun Y, Bengio Y, Hinton G. Deep learning. Nature. 2015"
      candidates:
        - article-title: Deep learning
          source: Nature
        - null`,
	Args: cobra.ExactArgs(1),
	RunE: runFuse,
}

func runFuse(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	applyFusionFlags(cmd, &cfg.Fusion)
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")

	results, err := fuseFile(args[0], cfg.Fusion, os.Stderr)
	if err != nil {
		return err
	}

	if save {
		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		for i := range results {
			if err := st.Save(cmd.Context(), &results[i]); err != nil {
				return err
			}
		}
		fmt.Fprintf(os.Stderr, "saved %d citations to %s\n", len(results), st.Dir())
	}

	return writeCitations(os.Stdout, results, format)
}

// fuseFile fuses every set in path, reporting progress to w. Sets that
// cannot be fused are reported and skipped; it fails only when no set
// could be fused.
func fuseFile(path string, cfg types.FusionConfig, w io.Writer) ([]types.FusedCitation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening candidate file: %w", err)
	}
	defer f.Close()

	sets, err := fusion.LoadCandidateSets(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	var results []types.FusedCitation
	for i, set := range sets {
		name := label(set.Citation)
		if name == "" {
			name = fmt.Sprintf("set %d", i+1)
		}

		merged, err := fusion.Fuse(set.Candidates, cfg)
		if err != nil {
			fmt.Fprintf(w, "skipped %s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "fused   %s (score %.2f)\n", name, merged.Score)

		results = append(results, types.FusedCitation{
			Citation:       set.Citation,
			Description:    merged,
			Score:          merged.Score,
			CandidateCount: set.LiveCount(),
			CreatedAt:      time.Now().UTC(),
		})
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no candidate set in %s could be fused", path)
	}
	return results, nil
}

func init() {
	fuseCmd.Flags().Int("threshold", 0, "exclude candidates scoring below this (0-100)")
	fuseCmd.Flags().String("format", "table", "output format: table, json, yaml, or csl")
	fuseCmd.Flags().Bool("save", false, "save fused citations to the store")

	rootCmd.AddCommand(fuseCmd)
}
