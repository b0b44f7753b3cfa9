package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"genka/internal/backend"
	"genka/internal/cli"
	"genka/internal/config"
	"genka/internal/core"
	"genka/internal/services"
)

func (a *app) reconcileCmd() *cobra.Command {
	var (
		input       string
		backendName string
		asJSON      bool
		strict      bool
	)
	cmd := &cobra.Command{
		Use:   "reconcile [payments.json]",
		Short: "Classify payments and write the line item, vendor and budget datasets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if backendName != "" {
				cfg.Backend = backendName
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if len(args) == 1 {
				input = args[0]
			}
			if input == "" {
				input = cfg.InputPath
			}
			rate, err := cfg.Profile.Rate()
			if err != nil {
				return err
			}

			ctx, cancel := cli.SignalContext(cmd.Context(), a.logger)
			defer cancel()

			factory := backend.NewFactory(a.logger)
			bcfg, err := backend.FromAppConfig(cfg)
			if err != nil {
				return err
			}
			res, err := factory.CreateBackend(ctx, bcfg)
			if err != nil {
				return err
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}

			deps := services.Deps{Sink: res.Backend, Master: res.Backend, Logger: a.logger}
			history, err := factory.CreateHistory(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			if history != nil {
				defer history.Close()
				deps.Recorder = history
			}
			if pub := factory.CreatePublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue); pub != nil {
				defer pub.Close()
				deps.Publisher = pub
			}

			svc, err := services.NewReconcileService(deps, services.Options{
				Periods:       cfg.Profile.PeriodList(),
				Expected:      cfg.Profile.Expectations(),
				Window:        cfg.Profile.BudgetWindow(),
				TaxRate:       rate,
				ExportTimeout: cfg.ExportTimeout,
			})
			if err != nil {
				return err
			}

			sum, err := runFile(ctx, svc, input)
			if err != nil {
				return err
			}
			if asJSON {
				err = writeSummaryJSON(a.stdout, sum)
			} else {
				err = writeSummaryText(a.stdout, sum)
			}
			if err != nil {
				return err
			}
			if strict && !sum.Report.Valid {
				return fmt.Errorf("validation failed: %d findings", sum.Report.Count)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "payment export JSON (default $GENKA_INPUT)")
	cmd.Flags().StringVar(&backendName, "backend", "", "memory, tsv or sheets (default $GENKA_BACKEND)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run summary as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when control totals disagree")
	return cmd
}

func runFile(ctx context.Context, svc *services.ReconcileService, path string) (services.RunSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return services.RunSummary{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return svc.Run(ctx, filepath.Base(path), f)
}

func writeSummaryText(w io.Writer, sum services.RunSummary) error {
	p := func(format string, args ...any) { fmt.Fprintf(w, format, args...) }
	p("=== 原価データ変換 (%s) ===\n", sum.RunID)
	p("支払明細: %d件  金額合計: %s  消費税: %s\n",
		len(sum.Ledger.Items), core.Money{Yen: sum.Amount}, core.Money{Yen: sum.Tax})
	p("取引先: %d社\n", len(sum.Vendors))
	p("実行予算: %d行  予算合計: %s\n", len(sum.Budget), core.Money{Yen: sum.BudgetTotal})

	if len(sum.Warnings) > 0 {
		p("\n警告 (%d件)\n", len(sum.Warnings))
		for _, warn := range sum.Warnings {
			p("  - %s\n", warn)
		}
	}

	p("\n--- 月別合計 ---\n")
	for _, t := range sum.Ledger.Totals {
		p("  %s (%s): %s  %d件\n", t.Period.Label, t.Period.Month, t.Total, t.Count)
	}
	if sum.Report.Valid {
		p("  検証: OK\n")
	} else {
		p("  検証: NG (%d件)\n", sum.Report.Count)
		for _, f := range sum.Report.Findings {
			p("  - %s\n", f.Message)
		}
	}

	if len(sum.Refs) > 0 {
		p("\n出力\n")
		for _, name := range []string{"line_items", "vendors", "budget"} {
			if ref, ok := sum.Refs[name]; ok {
				p("  %s: %s\n", name, ref)
			}
		}
	}

	if len(sum.Ledger.Review) > 0 {
		p("\n手動確認項目 (%d件)\n", len(sum.Ledger.Review))
		for _, r := range sum.Ledger.Review {
			p("  - %s\n", r)
		}
	}
	return nil
}

type summaryJSON struct {
	RunID       string            `json:"run_id"`
	Source      string            `json:"source"`
	Items       int               `json:"items"`
	Vendors     int               `json:"vendors"`
	Boxes       int               `json:"budget_rows"`
	Amount      int64             `json:"amount"`
	Tax         int64             `json:"tax"`
	BudgetTotal int64             `json:"budget_total"`
	Totals      map[string]int64  `json:"period_totals"`
	Review      []string          `json:"review"`
	Warnings    []string          `json:"warnings"`
	Refs        map[string]string `json:"outputs"`
	Report      any               `json:"validation"`
	Recorded    bool              `json:"recorded"`
	Published   bool              `json:"published"`
}

func writeSummaryJSON(w io.Writer, sum services.RunSummary) error {
	out := summaryJSON{
		RunID:       sum.RunID,
		Source:      sum.Source,
		Items:       len(sum.Ledger.Items),
		Vendors:     len(sum.Vendors),
		Boxes:       len(sum.Budget),
		Amount:      sum.Amount,
		Tax:         sum.Tax,
		BudgetTotal: sum.BudgetTotal,
		Totals:      core.TotalsByLabel(sum.Ledger.Totals),
		Review:      []string{},
		Warnings:    sum.Warnings,
		Refs:        sum.Refs,
		Report:      sum.Report,
		Recorded:    sum.Recorded,
		Published:   sum.Published,
	}
	for _, r := range sum.Ledger.Review {
		out.Review = append(out.Review, r.String())
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	return writeJSON(w, out)
}
