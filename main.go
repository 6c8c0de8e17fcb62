package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rfm-monthly/pkg/calculator"
	"rfm-monthly/pkg/config"
	"rfm-monthly/pkg/database"
	"rfm-monthly/pkg/ledger"
	"rfm-monthly/pkg/logger"
	"rfm-monthly/pkg/models"
	"rfm-monthly/pkg/report"
	"rfm-monthly/pkg/summarizer"
)

func main() {
	configPath := flag.String("config", "", "Config file (default: rfm.yml in . or /etc/rfm-monthly)")
	input := flag.String("in", "", "Ledger file (delimited, with header)")
	dsn := flag.String("dsn", "", "Ledger database DSN (mysql://, mariadb://, postgres://, sqlite://)")
	table := flag.String("table", "", "Ledger table")
	startMonth := flag.String("start_month", "", "First month (MMYYYY)")
	endMonth := flag.String("end_month", "", "Last month, inclusive (MMYYYY)")
	inactivity := flag.Int("inactivity_days", 0, "Days without purchase after which a customer is dead")
	includeDead := flag.Bool("include_dead_monetary", false, "Count the dead cohort's monetary value in the churned total")
	workers := flag.Int("workers", 0, "Periods computed concurrently")
	output := flag.String("out", "", "Report path")
	verbose := flag.Bool("v", true, "Verbose mode")
	flag.Parse()

	cfg, err := config.Load(*configPath, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			cfg.Input = *input
		case "dsn":
			cfg.DSN = *dsn
		case "table":
			cfg.Table = *table
		case "start_month":
			cfg.StartMonth = *startMonth
		case "end_month":
			cfg.EndMonth = *endMonth
		case "inactivity_days":
			cfg.InactivityDays = *inactivity
		case "include_dead_monetary":
			cfg.IncludeDeadMonetary = *includeDead
		case "workers":
			cfg.Workers = *workers
		case "out":
			cfg.Output = *output
		case "v":
			cfg.Verbose = *verbose
		}
	})

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = log.With(zap.String("run_id", uuid.NewString()))

	if err := cfg.Validate(); err != nil {
		log.Fatal("usage: rfm-monthly -in ledger.csv|-dsn ... -start_month MMYYYY -end_month MMYYYY", zap.Error(err))
	}

	ctx := context.Background()
	txs, err := loadLedger(ctx, log, cfg)
	if err != nil {
		log.Fatal("load ledger", zap.Error(err))
	}
	log.Info("ledger loaded", zap.Int("transactions", len(txs)))

	results, err := calculator.Run(ctx, log, txs, summarizer.Daily{}, models.Config{
		StartMonthInclusive: cfg.StartMonth,
		EndMonthInclusive:   cfg.EndMonth,
		InactivityDays:      cfg.InactivityDays,
		IncludeDeadMonetary: cfg.IncludeDeadMonetary,
		Workers:             cfg.Workers,
		Verbose:             cfg.Verbose,
	})
	if err != nil {
		log.Fatal("compute", zap.Error(err))
	}

	if err := report.WriteFile(cfg.Output, results, cfg.DelimiterRune()); err != nil {
		log.Fatal("write report", zap.String("path", cfg.Output), zap.Error(err))
	}
	log.Info("report written", zap.String("path", cfg.Output), zap.Int("rows", len(results)))
}

func loadLedger(ctx context.Context, log *zap.Logger, cfg config.Config) ([]models.Transaction, error) {
	if cfg.Input != "" {
		return ledger.ReadFile(cfg.Input, ledger.Columns{
			Customer: cfg.CustomerColumn,
			Date:     cfg.DateColumn,
			Amount:   cfg.AmountColumn,
		}, cfg.DelimiterRune())
	}

	db, dsnUsed, err := database.Open(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	log.Debug("connected", zap.String("dsn", dsnUsed))

	return database.LoadTransactions(ctx, log, db, database.Source{
		Table:          cfg.Table,
		CustomerColumn: cfg.CustomerColumn,
		DateColumn:     cfg.DateColumn,
		AmountColumn:   cfg.AmountColumn,
	})
}
