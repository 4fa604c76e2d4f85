package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"oddsmap/internal/entity"
	"oddsmap/internal/review"
	"oddsmap/internal/workspace"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var variants bool

	cmd := &cobra.Command{
		Use:   "seed <players|tournaments>",
		Short: "Bind canonical names (and optionally variants) in the alias cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomainArg(args[0])
			if err != nil {
				return err
			}
			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				withVariants := ws.Config.Seeding.VariantsByDefault
				if cmd.Flags().Changed("variants") {
					withVariants = variants
				}
				seed := ws.Review().SeedCanonicals
				if withVariants {
					seed = ws.Review().SeedVariants
				}
				res, err := seed(cmd.Context(), d)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, res)
				}
				kind := "canonicals"
				if res.Variants {
					kind = "canonicals + variants"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s %s: %d aliases from %d records\n", d, kind, res.Aliases, res.Records)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&variants, "variants", false, "players only: also seed the bounded variant set")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <players|tournaments>",
		Short: "List pending proposals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomainArg(args[0])
			if err != nil {
				return err
			}
			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				pending, err := ws.Review().ListPending(cmd.Context(), d)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, pending)
				}
				out := cmd.OutOrStdout()
				if len(pending) == 0 {
					fmt.Fprintf(out, "No pending %s.\n", d)
					return nil
				}
				rows := make([][]string, 0, len(pending))
				for _, p := range pending {
					rows = append(rows, []string{
						p.ID,
						p.CanonicalGuess,
						strconv.Itoa(p.Sightings),
						strconv.Itoa(len(p.Aliases)),
						formatTime(p.LastSeen),
					})
				}
				title := fmt.Sprintf("Pending %s: %d", d, len(pending))
				fmt.Fprintln(out, renderTable(title,
					[]string{"Proposal", "Guess", "Sightings", "Aliases", "Last seen"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <players|tournaments> <proposal-id>",
		Short: "Show one pending proposal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomainArg(args[0])
			if err != nil {
				return err
			}
			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				p, err := ws.Review().ShowPending(cmd.Context(), d, strings.TrimSpace(args[1]))
				if err != nil {
					return err
				}
				return writeJSON(cmd, p)
			})
		},
	}
}

func newApprovePlayerCommand(ctx *commandContext) *cobra.Command {
	var fields entity.Record

	cmd := &cobra.Command{
		Use:   "approve-player <proposal-id>",
		Short: "Approve a player proposal as a new canonical player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return approve(cmd, ctx, entity.Players, args[0], fields)
		},
	}
	cmd.Flags().StringVar(&fields.FirstName, "first", "", "First name (defaults to the proposal's guess)")
	cmd.Flags().StringVar(&fields.LastName, "last", "", "Last name (defaults to the proposal's guess)")
	cmd.Flags().StringVar(&fields.CanonicalName, "name", "", "Canonical name (defaults to first and last)")
	cmd.Flags().StringVar(&fields.Gender, "gender", "", "Gender")
	cmd.Flags().StringVar(&fields.PreferredHand, "hand", "", "Preferred hand (default Unknown)")
	return cmd
}

func newApproveTournamentCommand(ctx *commandContext) *cobra.Command {
	var fields entity.Record

	cmd := &cobra.Command{
		Use:   "approve-tournament <proposal-id>",
		Short: "Approve a tournament proposal as a new canonical tournament",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return approve(cmd, ctx, entity.Tournaments, args[0], fields)
		},
	}
	cmd.Flags().StringVar(&fields.CanonicalName, "name", "", "Canonical name (defaults to the proposal's guess)")
	cmd.Flags().StringVar(&fields.Level, "level", "", "Level (default Unknown)")
	cmd.Flags().StringVar(&fields.Country, "country", "", "Country")
	cmd.Flags().StringVar(&fields.City, "city", "", "City")
	cmd.Flags().StringVar(&fields.Surface, "surface", "", "Surface (default Unknown)")
	return cmd
}

func approve(cmd *cobra.Command, ctx *commandContext, d entity.Domain, id string, fields entity.Record) error {
	return ctx.withWorkspace(func(ws *workspace.Workspace) error {
		out, err := ws.Review().ApproveAsNew(cmd.Context(), d, strings.TrimSpace(id), fields)
		if err != nil {
			return err
		}
		if ctx.jsonOutput() {
			return writeJSON(cmd, approvalView(out))
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Approved new %s %d: %s\n", strings.TrimSuffix(d.String(), "s"), out.Record.ID, out.Record.DisplayName())
		fmt.Fprintf(w, "Aliases added: %d (conflicts skipped: %d)\n", out.AliasesAdded, out.AliasConflicts)
		return nil
	})
}

// approvalView flattens the outcome so the record id appears in JSON output.
func approvalView(out review.ApproveOutcome) map[string]any {
	return map[string]any{
		"id":              out.Record.ID,
		"record":          out.Record,
		"aliases_added":   out.AliasesAdded,
		"alias_conflicts": out.AliasConflicts,
	}
}

func newDuplicateCommand(ctx *commandContext) *cobra.Command {
	var targetID int64
	var mergeAliases bool

	cmd := &cobra.Command{
		Use:   "duplicate <players|tournaments> <proposal-id>",
		Short: "Dispose of a proposal as a duplicate of an existing entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomainArg(args[0])
			if err != nil {
				return err
			}
			if targetID <= 0 {
				return fmt.Errorf("--target-id is required")
			}
			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				out, err := ws.Review().MarkDuplicate(cmd.Context(), d, strings.TrimSpace(args[1]), targetID, mergeAliases)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, out)
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Marked duplicate of %d; merged aliases: %s\n", out.ExistingID, yesNo(out.MergedAliases))
				fmt.Fprintf(w, "Aliases added: %d (conflicts skipped: %d)\n", out.AliasesAdded, out.AliasConflicts)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&targetID, "target-id", 0, "Id of the existing entity")
	cmd.Flags().BoolVar(&mergeAliases, "merge-aliases", true, "Bind the proposal's aliases to the existing entity")
	return cmd
}

func newMetaCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "meta <players|tournaments>",
		Short: "Show the corpus header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomainArg(args[0])
			if err != nil {
				return err
			}
			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				meta, err := ws.Review().Meta(cmd.Context(), d)
				if err != nil {
					return err
				}
				return writeJSON(cmd, meta)
			})
		},
	}
}

func newSetNextIDCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-next-id <players|tournaments> <value>",
		Short: "Override the id counter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomainArg(args[0])
			if err != nil {
				return err
			}
			value, err := strconv.ParseInt(strings.TrimSpace(args[1]), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid next id %q: %w", args[1], err)
			}
			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				meta, err := ws.Review().SetNextID(cmd.Context(), d, value)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, meta)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s.meta.next_id set to %d\n", d, meta.NextID)
				return nil
			})
		},
	}
}

func newKVCountsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "kv-counts",
		Short: "Show alias cache row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspace(func(ws *workspace.Workspace) error {
				counts, err := ws.Review().AliasCounts(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, counts)
				}
				rows := make([][]string, 0, len(counts))
				for _, c := range counts {
					rows = append(rows, []string{c.Domain.String(), strconv.Itoa(c.Rows)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(ws.Aliases.Path(),
					[]string{"Domain", "Rows"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
