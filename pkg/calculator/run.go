package calculator

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rfm-monthly/pkg/models"
	"rfm-monthly/pkg/summarizer"
)

// DefaultInactivityDays is the lifecycle threshold used when none is configured.
const DefaultInactivityDays = 95

// Run computes the segment report for every month of the configured range.
// txs is read-only and shared by all periods.
func Run(ctx context.Context, log *zap.Logger, txs []models.Transaction, sum summarizer.Summarizer, cfg models.Config) ([]models.PeriodSegmentSummary, error) {
	start, err := parseMonth(cfg.StartMonthInclusive)
	if err != nil {
		return nil, fmt.Errorf("start_month: %w", err)
	}
	end, err := parseMonth(cfg.EndMonthInclusive)
	if err != nil {
		return nil, fmt.Errorf("end_month: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end_month %s < start_month %s", formatMonth(end), formatMonth(start))
	}
	if cfg.InactivityDays <= 0 {
		cfg.InactivityDays = DefaultInactivityDays
	}

	periods := monthsBetweenInclusive(start, end)
	var bar *progressbar.ProgressBar
	if cfg.Verbose {
		bar = progressbar.Default(int64(len(periods)))
	} else {
		bar = progressbar.DefaultSilent(int64(len(periods)))
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([][]models.PeriodSegmentSummary, len(periods))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range periods {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, err := ComputePeriod(log, txs, p, sum, cfg)
			if err != nil {
				return fmt.Errorf("compute %s: %w", p, err)
			}
			results[i] = rows
			_ = bar.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Concat(results...), nil
}

// ComputePeriod produces the segment rollup of one period. An empty window or
// cohort yields no rows for that side. A summarizer failure drops the alive
// side of the period only.
func ComputePeriod(log *zap.Logger, txs []models.Transaction, p models.Period, sum summarizer.Summarizer, cfg models.Config) ([]models.PeriodSegmentSummary, error) {
	log = log.With(zap.String("period", p.String()))

	window, err := HistoryUpTo(txs, p.Year, p.Month)
	if err != nil {
		return nil, err
	}
	if len(window) == 0 {
		log.Info("empty transaction window")
		return nil, nil
	}

	cohorts, err := Classify(window, p.Year, p.Month, cfg.InactivityDays)
	if err != nil {
		return nil, err
	}

	var assignments []models.SegmentAssignment

	if len(cohorts.Alive) == 0 {
		log.Info("empty alive cohort")
	} else {
		rows, err := summarize(sum, cohorts.Alive)
		if err != nil {
			log.Error("alive cohort skipped", zap.Error(err))
		} else {
			bp, err := ComputePeriodBreakpoints(rows)
			if err != nil {
				return nil, err
			}
			log.Debug("breakpoints",
				zap.Float64s("recency", []float64{bp.Recency.P20, bp.Recency.P40, bp.Recency.P60, bp.Recency.P80}),
				zap.Float64s("frequency", []float64{bp.Frequency.P20, bp.Frequency.P40, bp.Frequency.P60, bp.Frequency.P80}),
				zap.Float64s("monetary_value", []float64{bp.MonetaryValue.P20, bp.MonetaryValue.P40, bp.MonetaryValue.P60, bp.MonetaryValue.P80}),
			)
			alive, err := ScoreAlive(rows, bp, DefaultSegmentRules)
			if err != nil {
				return nil, err
			}
			assignments = append(assignments, alive...)
		}
	}

	if len(cohorts.DeadCustomers) == 0 {
		log.Info("empty dead cohort")
	} else {
		var monetary map[string]float64
		if cfg.IncludeDeadMonetary {
			rows, err := summarize(sum, cohorts.Dead)
			if err != nil {
				log.Error("dead cohort monetary value ignored", zap.Error(err))
			} else {
				monetary = make(map[string]float64, len(rows))
				for _, r := range rows {
					monetary[r.CustomerID] = r.MonetaryValue
				}
			}
		}
		assignments = append(assignments, AssignDead(cohorts.DeadCustomers, monetary)...)
	}

	out := Aggregate(assignments, p.Year, p.Month)
	if cfg.Verbose {
		log.Info("period done",
			zap.Int("transactions", len(window)),
			zap.Int("alive", len(cohorts.AliveCustomers)),
			zap.Int("dead", len(cohorts.DeadCustomers)),
			zap.Int("segments", len(out)),
		)
	}
	return out, nil
}

func summarize(sum summarizer.Summarizer, txs []models.Transaction) ([]models.RFMRow, error) {
	rows, err := sum.Summarize(txs)
	if err != nil {
		return nil, err
	}
	if err := summarizer.Validate(rows, txs); err != nil {
		return nil, err
	}
	return rows, nil
}
