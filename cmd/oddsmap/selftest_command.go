package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"oddsmap/internal/selftest"
	"oddsmap/internal/workspace"
)

func newSelftestCommand(ctx *commandContext) *cobra.Command {
	var opts selftest.Options
	var outPath string

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Check that bookmaker variants of every canonical player resolve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Start < 0 || opts.Count < 0 {
				return fmt.Errorf("--start and --count must not be negative")
			}
			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				errOut := cmd.ErrOrStderr()
				opts.OnProgress = func(p selftest.Progress) {
					fmt.Fprintf(errOut, "[%d/%d] variants=%d misses=%d rate=%.1f/s eta=%s\n",
						p.Tested, p.Total, p.VariantsChecked, p.Misses, p.Rate, p.ETA.Round(1e9))
				}
				players := ws.Players()
				summary, failures, err := selftest.Run(cmd.Context(), players.Corpus, players.Resolver, opts, ws.Logger())
				if err != nil {
					return err
				}
				if path := strings.TrimSpace(outPath); path != "" && len(failures) > 0 {
					if err := selftest.WriteFailuresCSV(path, failures); err != nil {
						return err
					}
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, summary)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Records %d..%d of %d: %d tested, %d variants, %d misses (%.2f%% hit rate) in %s\n",
					summary.Start, summary.End, summary.Records, summary.RecordsTested,
					summary.VariantsChecked, summary.Misses, summary.HitRate, summary.Elapsed.Round(1e6))
				if len(failures) > 0 && strings.TrimSpace(outPath) != "" {
					fmt.Fprintf(out, "Failures written to %s\n", outPath)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&opts.Start, "start", 0, "Index of the first record to test")
	cmd.Flags().IntVar(&opts.Count, "count", 0, "Number of records to test (0 = all)")
	cmd.Flags().IntVar(&opts.ProgressEvery, "progress", 2000, "Report progress every N records")
	cmd.Flags().StringVar(&outPath, "out", "", "Write failing variants to this CSV file")
	return cmd
}
