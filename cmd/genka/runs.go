package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"genka/internal/cli"
	"genka/internal/core"
	"genka/internal/storage"
)

func (a *app) runsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded runs, or show one run in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			if cfg.SQLiteDBPath == "" {
				return errors.New("run history is disabled: set GENKA_SQLITE_DB_PATH")
			}
			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			if len(args) == 1 {
				rec, err := repo.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printRun(a, rec)
				return nil
			}

			runs, err := repo.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTARTED\tSOURCE\tITEMS\tAMOUNT\tBUDGET\tVALID\tREVIEW")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%t\t%d\n",
					r.ID, humanize.Time(r.StartedAt), r.Source, r.Items,
					core.FormatYen(r.Amount), core.FormatYen(r.BudgetTotal), r.Valid, r.ReviewCount)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to list")
	return cmd
}

func printRun(a *app, rec storage.RunRecord) {
	w := a.stdout
	fmt.Fprintf(w, "run %s (%s)\n", rec.ID, rec.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "source: %s\n", rec.Source)
	fmt.Fprintf(w, "items: %d  vendors: %d  budget rows: %d\n", rec.Items, rec.Vendors, rec.Boxes)
	fmt.Fprintf(w, "amount: %s  tax: %s  budget: %s\n",
		core.Money{Yen: rec.Amount}, core.Money{Yen: rec.Tax}, core.Money{Yen: rec.BudgetTotal})
	for _, t := range rec.Totals {
		fmt.Fprintf(w, "  %s (%s): %s  %d件\n", t.Period.Label, t.Period.Month, t.Total, t.Count)
	}
	if rec.Valid {
		fmt.Fprintln(w, "validation: OK")
	} else {
		fmt.Fprintf(w, "validation: %d findings\n", rec.FindingCount)
		for _, f := range rec.Findings {
			fmt.Fprintf(w, "  - %s\n", f.Message)
		}
	}
	if len(rec.Review) > 0 {
		fmt.Fprintf(w, "review (%d)\n", len(rec.Review))
		for _, r := range rec.Review {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}
