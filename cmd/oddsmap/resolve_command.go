package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"oddsmap/internal/entity"
	"oddsmap/internal/resolver"
	"oddsmap/internal/workspace"
)

// statusMiss marks a lookup-only result that found nothing.
const statusMiss resolver.Status = "miss"

type resolveResult struct {
	Raw string `json:"raw"`
	resolver.Outcome
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var register bool
	var source string

	cmd := &cobra.Command{
		Use:   "resolve <players|tournaments> <name>...",
		Short: "Resolve raw names to canonical ids",
		Long: "Resolve raw bookmaker names. Hits heal the alias cache. With --register,\n" +
			"misses are queued as proposals for review.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomainArg(args[0])
			if err != nil {
				return err
			}
			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				dom, err := ws.Domain(d)
				if err != nil {
					return err
				}
				results := make([]resolveResult, 0, len(args)-1)
				for _, raw := range args[1:] {
					var out resolver.Outcome
					if register {
						out, err = dom.Resolver.ResolveOrRegister(cmd.Context(), raw, entity.Sighting{Source: source})
						if err != nil {
							return err
						}
					} else {
						rec, err := dom.Resolver.LookupOnly(cmd.Context(), raw)
						if err != nil {
							return err
						}
						out = resolver.Outcome{Status: statusMiss}
						if rec != nil {
							out = resolver.Outcome{Status: resolver.StatusHit, ID: rec.ID, CanonicalName: rec.DisplayName()}
						}
					}
					results = append(results, resolveResult{Raw: raw, Outcome: out})
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, results)
				}
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					rows = append(rows, resolveRow(r))
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable("",
					[]string{"Raw", "Status", "ID", "Canonical / proposal"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&register, "register", false, "Queue unresolved names as proposals")
	cmd.Flags().StringVar(&source, "source", "cli", "Bookmaker recorded on new sightings")
	return cmd
}

func resolveRow(r resolveResult) []string {
	switch r.Status {
	case resolver.StatusHit:
		return []string{r.Raw, string(r.Status), strconv.FormatInt(r.ID, 10), r.CanonicalName}
	case resolver.StatusPending:
		return []string{r.Raw, string(r.Status), "-", fmt.Sprintf("%s (%s)", r.CanonicalGuess, r.ProposalID)}
	default:
		return []string{r.Raw, string(r.Status), "-", "-"}
	}
}
