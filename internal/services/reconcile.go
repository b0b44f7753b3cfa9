// Package services wires the classification core to its outer adapters.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"genka/internal/amqp"
	"genka/internal/budget"
	"genka/internal/core"
	"genka/internal/ledger"
	"genka/internal/log"
	"genka/internal/sheets"
	"genka/internal/source"
	"genka/internal/storage"
	"genka/internal/taxonomy"
	"genka/internal/validate"
	"genka/internal/vendor"
)

// RunRecorder persists a finished run.
type RunRecorder interface {
	SaveRun(ctx context.Context, rec storage.RunRecord) (string, error)
}

// EventPublisher announces a finished run.
type EventPublisher interface {
	PublishRunCompleted(ctx context.Context, msg *amqp.RunCompletedMessage) error
}

// Options are the per-project parameters of a run.
type Options struct {
	Periods       []core.Period
	Expected      []validate.Expectation
	Window        budget.Window
	TaxRate       decimal.Decimal
	Policy        budget.EstimatePolicy
	Classifier    *taxonomy.Classifier
	ExportTimeout time.Duration
}

// Deps are the adapters a run talks to. Only Sink is required.
type Deps struct {
	Sink      sheets.DatasetWriter
	Master    sheets.MasterReader
	Recorder  RunRecorder
	Publisher EventPublisher
	Logger    *log.Logger
}

// RunSummary is everything a run produced.
type RunSummary struct {
	RunID       string
	Source      string
	Ledger      ledger.Result
	Budget      []budget.Row
	Vendors     []core.Vendor
	Report      validate.Report
	Warnings    []string
	Refs        map[string]string // dataset -> sink reference
	Amount      int64
	Tax         int64
	BudgetTotal int64
	Recorded    bool
	Published   bool
}

// ReconcileService runs load, classify, aggregate, validate, export, record
// and publish for one payment export.
type ReconcileService struct {
	deps    Deps
	opts    Options
	builder *ledger.Builder
	logger  *log.Logger
}

func NewReconcileService(deps Deps, opts Options) (*ReconcileService, error) {
	if deps.Sink == nil {
		return nil, errors.New("dataset sink is required")
	}
	if len(opts.Periods) == 0 {
		return nil, errors.New("at least one period is required")
	}
	if opts.Window == (budget.Window{}) {
		opts.Window = budget.DefaultWindow
	}
	if opts.Policy == nil {
		opts.Policy = budget.DoubleToNextThousand
	}
	if opts.ExportTimeout <= 0 {
		opts.ExportTimeout = time.Minute
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ReconcileService{
		deps:    deps,
		opts:    opts,
		builder: ledger.NewBuilder(opts.Classifier, opts.TaxRate),
		logger:  logger,
	}, nil
}

// Run processes one payment export. Validation findings are advisory: the
// datasets are written even when control totals disagree. Export and record
// failures are returned; publish failures are only logged.
func (s *ReconcileService) Run(ctx context.Context, sourceName string, r io.Reader) (RunSummary, error) {
	started := time.Now()
	sum := RunSummary{RunID: uuid.NewString(), Source: sourceName}
	lg := s.logger.With(log.FieldRunID, sum.RunID)

	set, err := source.DecodePayments(r, s.opts.Periods)
	if err != nil {
		return sum, fmt.Errorf("load %s: %w", sourceName, err)
	}
	sum.Warnings = set.Warnings
	for _, w := range set.Warnings {
		lg.WithComponent(log.ComponentSource).WarnContext(ctx, "Input warning", "warning", w)
	}
	lg.WithComponent(log.ComponentSource).InfoContext(ctx, "Payments loaded",
		log.FieldSource, sourceName, log.FieldCount, set.Count())

	agg := &budget.Aggregator{Policy: s.opts.Policy, Window: s.opts.Window}
	if m := s.readMaster(ctx, lg); m != nil {
		agg.Labels = m
	}

	sum.Ledger = s.builder.Build(set.Batches)
	sum.Budget = agg.Aggregate(sum.Ledger.Items)
	sum.Vendors = vendor.Roster(ledger.VendorNames(set.Batches))
	for _, li := range sum.Ledger.Items {
		sum.Amount += li.Amount
		sum.Tax += li.Tax
	}
	sum.BudgetTotal = budget.TotalEstimate(sum.Budget)
	lg.WithComponent(log.ComponentLedger).InfoContext(ctx, "Line items built",
		log.FieldCount, len(sum.Ledger.Items),
		"review", len(sum.Ledger.Review),
		log.FieldAmount, sum.Amount)
	lg.WithComponent(log.ComponentBudget).InfoContext(ctx, "Budget aggregated",
		log.FieldCount, len(sum.Budget),
		log.FieldAmount, sum.BudgetTotal)

	sum.Report = validate.Ledger(sum.Ledger.Items, sum.Ledger.Totals, s.opts.Expected)
	vlog := lg.WithComponent(log.ComponentValidate)
	if sum.Report.Valid {
		vlog.InfoContext(ctx, "Control totals match", log.FieldValid, true)
	} else {
		for _, f := range sum.Report.Findings {
			vlog.WarnContext(ctx, "Validation finding", "kind", f.Kind, "message", f.Message)
		}
		vlog.WarnContext(ctx, "Validation failed; output is still written", "error_count", sum.Report.Count)
	}

	refs, err := s.export(ctx, lg, sum)
	sum.Refs = refs
	if err != nil {
		return sum, fmt.Errorf("export datasets: %w", err)
	}

	if s.deps.Recorder != nil {
		if _, err := s.deps.Recorder.SaveRun(ctx, s.record(sum, started)); err != nil {
			return sum, fmt.Errorf("record run: %w", err)
		}
		sum.Recorded = true
	}

	if s.deps.Publisher != nil {
		if err := s.deps.Publisher.PublishRunCompleted(ctx, s.event(sum)); err != nil {
			lg.WithComponent(log.ComponentAMQP).ErrorContext(ctx, "Failed to publish run event", log.FieldError, err)
		} else {
			sum.Published = true
		}
	}

	lg.InfoContext(ctx, "Run complete",
		log.FieldDuration, time.Since(started).Milliseconds(),
		log.FieldValid, sum.Report.Valid)
	return sum, nil
}

func (s *ReconcileService) readMaster(ctx context.Context, lg *log.Logger) *taxonomy.Master {
	if s.deps.Master == nil {
		return nil
	}
	tlog := lg.WithComponent(log.ComponentTaxonomy)
	m, err := s.deps.Master.ReadMaster(ctx)
	if err != nil {
		tlog.WarnContext(ctx, "Taxonomy master unavailable, using built-in labels", log.FieldError, err)
		return nil
	}
	tlog.InfoContext(ctx, "Taxonomy master loaded",
		"elements", m.Count(taxonomy.TypeElement),
		"items", m.Count(taxonomy.TypeItem),
		"koushus", m.Count(taxonomy.TypeSubWork),
		"vendors", m.Count(taxonomy.TypeVendor))
	return m
}

// export writes the three datasets concurrently. The first failure cancels
// the others.
func (s *ReconcileService) export(ctx context.Context, lg *log.Logger, sum RunSummary) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ExportTimeout)
	defer cancel()

	tables := []sheets.Table{
		sheets.LineItemTable(sum.Ledger.Items),
		sheets.VendorTable(sum.Vendors),
		sheets.BudgetTable(sum.Budget),
	}
	var (
		mu   sync.Mutex
		refs = make(map[string]string, len(tables))
	)
	shlog := lg.WithComponent(log.ComponentSheets)
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tables {
		t := t
		g.Go(func() error {
			ref, err := s.deps.Sink.WriteTable(gctx, t)
			if err != nil {
				return fmt.Errorf("%s: %w", t.Name, err)
			}
			mu.Lock()
			refs[t.Name] = ref
			mu.Unlock()
			shlog.InfoContext(gctx, "Dataset written", log.NewFields().WithDataset(t.Name, len(t.Rows), ref).ToSlice()...)
			return nil
		})
	}
	err := g.Wait()
	return refs, err
}

func (s *ReconcileService) record(sum RunSummary, started time.Time) storage.RunRecord {
	return storage.RunRecord{
		Run: storage.Run{
			ID:          sum.RunID,
			StartedAt:   started,
			Source:      sum.Source,
			Items:       len(sum.Ledger.Items),
			Vendors:     len(sum.Vendors),
			Boxes:       len(sum.Budget),
			Amount:      sum.Amount,
			Tax:         sum.Tax,
			BudgetTotal: sum.BudgetTotal,
			Valid:       sum.Report.Valid,
		},
		Totals:   sum.Ledger.Totals,
		Findings: sum.Report.Findings,
		Review:   sum.Ledger.Review,
	}
}

func (s *ReconcileService) event(sum RunSummary) *amqp.RunCompletedMessage {
	msg := amqp.NewRunCompletedMessage(sum.RunID)
	msg.Source = sum.Source
	msg.Items = len(sum.Ledger.Items)
	msg.Amount = sum.Amount
	msg.Tax = sum.Tax
	msg.BudgetTotal = sum.BudgetTotal
	msg.Valid = sum.Report.Valid
	msg.FindingCount = sum.Report.Count
	msg.ReviewCount = len(sum.Ledger.Review)
	return msg
}
