// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/store"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Query, export, and prune saved citations",
	Long: `Store manages the local SQLite database of fused citations written by
parse --save and fuse --save. Use subcommands to list, fetch, export, or
delete records.`,
}

// --- list subcommand ---

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved citations, highest score first",
	RunE:  runStoreList,
}

func runStoreList(cmd *cobra.Command, args []string) error {
	opts, err := listOptsFromFlags(cmd)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if cmd.Flags().Changed("limit") {
		opts.MaxResults, _ = cmd.Flags().GetInt("limit")
	}

	citations, err := st.List(cmd.Context(), opts)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return writeCitations(os.Stdout, citations, format)
}

// --- get subcommand ---

var storeGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one saved citation",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreGet,
}

func runStoreGet(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	fc, err := st.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return writeCitations(os.Stdout, []types.FusedCitation{*fc}, format)
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved citations to YAML, JSON, or Parquet",
	Long: `Export writes saved citations (or a filtered subset) to export.yaml,
export.json, or export.parquet in the store directory and prints the path.
Supports the same filter flags as list.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	opts, err := listOptsFromFlags(cmd)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	format, _ := cmd.Flags().GetString("format")

	var path string
	switch format {
	case "yaml":
		path, err = st.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = st.ExportJSON(cmd.Context(), opts)
	case "parquet":
		path, err = st.ExportParquet(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported export format %q: use yaml, json, or parquet", format)
	}
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}

// --- delete subcommand ---

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved citation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "deleted %s\n", args[0])
		return nil
	},
}

// --- shared helpers ---

func openStore() (*store.Store, error) {
	return store.NewStore(loadConfig().Store)
}

func listOptsFromFlags(cmd *cobra.Command) (store.ListOptions, error) {
	pubType, _ := cmd.Flags().GetString("type")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	key, _ := cmd.Flags().GetString("key")

	opts := store.ListOptions{MinScore: minScore, Key: key}
	if pubType != "" {
		pt, err := publicationTypeFilter(pubType)
		if err != nil {
			return store.ListOptions{}, err
		}
		opts.Type = pt
	}
	return opts, nil
}

// publicationTypeFilter parses a --type value. Unrecognized names are
// rejected rather than matching nothing.
func publicationTypeFilter(s string) (types.PublicationType, error) {
	pt := types.ParsePublicationType(s)
	if pt == types.PublicationUnknown {
		return "", fmt.Errorf("unknown publication type %q: use journal, book, or conf-proc", s)
	}
	return pt, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "", "filter by publication type: journal, book, conf-proc")
	cmd.Flags().Float64("min-score", 0, "filter by minimum fusion score")
	cmd.Flags().String("key", "", "filter by reference label")
}

func init() {
	addFilterFlags(storeListCmd)
	storeListCmd.Flags().Int("limit", 0, "maximum number of results (default from store.max_results)")
	storeListCmd.Flags().String("format", "table", "output format: table, json, yaml, or csl")

	storeGetCmd.Flags().String("format", "yaml", "output format: table, json, yaml, or csl")

	addFilterFlags(storeExportCmd)
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml, json, or parquet")

	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeDeleteCmd)

	rootCmd.AddCommand(storeCmd)
}
