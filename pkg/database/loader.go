package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"rfm-monthly/pkg/models"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var identRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Source names the ledger table and its three columns.
type Source struct {
	Table          string
	CustomerColumn string
	DateColumn     string
	AmountColumn   string
}

// DefaultSource matches the wallet ledger layout (partner, rep_date, monetary).
func DefaultSource() Source {
	return Source{
		Table:          "transactions",
		CustomerColumn: "partner",
		DateColumn:     "rep_date",
		AmountColumn:   "monetary",
	}
}

func (s Source) validate() error {
	for _, id := range []string{s.Table, s.CustomerColumn, s.DateColumn, s.AmountColumn} {
		if !identRe.MatchString(id) {
			return fmt.Errorf("invalid identifier %q", id)
		}
	}
	return nil
}

// Open accepts mariadb:// mysql:// postgres:// postgresql:// sqlite:// URLs or a
// native MySQL DSN, and returns the pool with the driver DSN actually used.
func Open(dsn string) (*sql.DB, string, error) {
	driver, driverDSN, err := toDriverDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(driver, driverDSN)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, driverDSN, nil
}

func toDriverDSN(dsn string) (string, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("incomplete dsn (sqlite path)")
		}
		return "sqlite3", path, nil
	default:
		out, err := toMySQLDSN(dsn)
		return "mysql", out, err
	}
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("incomplete dsn (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// LoadTransactions reads the whole ledger. Rows with a NULL customer or date
// are skipped; a NULL amount counts as 0.
func LoadTransactions(ctx context.Context, log *zap.Logger, db *sql.DB, src Source) ([]models.Transaction, error) {
	if err := src.validate(); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`SELECT %s, %s, %s FROM %s ORDER BY %s`,
		src.CustomerColumn, src.DateColumn, src.AmountColumn, src.Table, src.DateColumn)

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", src.Table, err)
	}
	defer rows.Close()

	var (
		out     []models.Transaction
		skipped int
	)
	for rows.Next() {
		var (
			customer sql.NullString
			date     sql.NullTime
			amount   sql.NullFloat64
		)
		if err := rows.Scan(&customer, &date, &amount); err != nil {
			return nil, fmt.Errorf("scan %s: %w", src.Table, err)
		}
		if !customer.Valid || customer.String == "" || !date.Valid {
			skipped++
			continue
		}
		out = append(out, models.Transaction{
			CustomerID: customer.String,
			Date:       date.Time.UTC(),
			Amount:     amount.Float64,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Debug("ledger loaded",
		zap.String("table", src.Table),
		zap.Int("transactions", len(out)),
		zap.Int("skipped", skipped),
	)
	return out, nil
}
