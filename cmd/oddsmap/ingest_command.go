package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"oddsmap/internal/ingest"
	"oddsmap/internal/workspace"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var inputPath string
	var outPath string
	var source string
	var doubles bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Map a bookmaker match listing to canonical ids",
		Long: "Read a JSON array of matches (use --file - for stdin), resolve every\n" +
			"tournament and competitor, queue unknown names for review and write one\n" +
			"row per market selection.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(source) == "" {
				return fmt.Errorf("--source is required")
			}
			matches, err := readMatches(cmd, inputPath)
			if err != nil {
				return err
			}
			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				runner := ingest.NewRunner(source, ws.Players().Resolver, ws.Tournaments().Resolver, ws.Logger())
				rows, stats, err := runner.Run(cmd.Context(), matches, ingest.Options{Doubles: doubles})
				if err != nil {
					return err
				}
				if path := strings.TrimSpace(outPath); path != "" {
					if err := writeRows(path, rows); err != nil {
						return err
					}
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"stats": stats, "rows": rows})
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"Run %s: %d matches (%d skipped), %d rows, players hit %d, pending %d\n",
					stats.RunID, stats.Matches, stats.MatchesSkipped, stats.Rows, stats.PlayersHit, stats.PlayersPending)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&inputPath, "file", "f", "", "JSON listing to ingest (- for stdin)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write mapped rows as JSON to this file")
	cmd.Flags().StringVar(&source, "source", "", "Bookmaker the listing came from")
	cmd.Flags().BoolVar(&doubles, "doubles", false, "Keep doubles matches instead of singles")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readMatches(cmd *cobra.Command, path string) ([]ingest.Match, error) {
	var r io.Reader
	if strings.TrimSpace(path) == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open listing: %w", err)
		}
		defer f.Close()
		r = f
	}
	var matches []ingest.Match
	if err := json.NewDecoder(r).Decode(&matches); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return matches, nil
}

func writeRows(path string, rows []ingest.Row) error {
	if rows == nil {
		rows = []ingest.Row{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
