package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"stockbook/internal/app"
	"stockbook/internal/domain/documents"
)

func nextCmd(o *options) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "next <type>",
		Short: "Allocate the next number of a document type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTenant(o); err != nil {
				return err
			}
			at, err := parseDate(date)
			if err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				num, err := a.Numbering.Next(ctx, documents.Type(args[0]), at)
				if err != nil {
					return err
				}
				return o.print(cmd.OutOrStdout(), num, num.Value)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "document date (default: today)")
	return cmd
}

func countersCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "counters <type>",
		Short: "List the counters of a document type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTenant(o); err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				counters, err := a.Numbering.Counters(ctx, documents.Type(args[0]))
				if err != nil {
					return err
				}
				if o.jsonOutput {
					return o.print(cmd.OutOrStdout(), counters, "")
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "SERIES\tPERIOD\tSEQUENCE\tUPDATED")
				for _, c := range counters {
					updated := "-"
					if !c.UpdatedAt.IsZero() {
						updated = c.UpdatedAt.UTC().Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.Series, c.Period, c.Sequence, updated)
				}
				return w.Flush()
			})
		},
	}
}

func advanceCmd(o *options) *cobra.Command {
	var (
		period string
		value  int64
	)

	cmd := &cobra.Command{
		Use:   "advance <type>",
		Short: "Raise a counter so numbering continues above a value",
		Long: `Raise the counter of one period to --value unless it is already higher.
Counters never decrease; advancing below the current value is a no-op.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTenant(o); err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				seq, err := a.Numbering.Advance(ctx, documents.Type(args[0]), period, value)
				if err != nil {
					return err
				}
				return o.print(cmd.OutOrStdout(),
					map[string]any{"type": args[0], "period": period, "sequence": seq},
					fmt.Sprintf("counter is at %d", seq))
			})
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "counter period, e.g. 2025 or 2025-03 (empty for never-resetting series)")
	cmd.Flags().Int64Var(&value, "value", 0, "lowest value the counter must reach")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func importCmd(o *options) *cobra.Command {
	var number string

	cmd := &cobra.Command{
		Use:   "import <type>",
		Short: "Continue numbering after the last number of a legacy scheme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTenant(o); err != nil {
				return err
			}
			return o.withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Numbering.Import(ctx, documents.Type(args[0]), number)
				if err != nil {
					return err
				}
				return o.print(cmd.OutOrStdout(), res,
					fmt.Sprintf("period %s continues after %d", res.Period, res.Sequence))
			})
		},
	}

	cmd.Flags().StringVar(&number, "number", "", "highest number issued by the legacy scheme")
	_ = cmd.MarkFlagRequired("number")
	return cmd
}
