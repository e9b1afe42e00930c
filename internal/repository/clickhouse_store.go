package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"BetPulse/internal/domain/models"
	domainrepo "BetPulse/internal/domain/repository"
	pkgch "BetPulse/pkg/clickhouse"
)

// insertChunk caps rows per INSERT statement.
const insertChunk = 2000

type sqlDB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PingContext(ctx context.Context) error
}

// ClickHouseStore persists ingested records and serves them back as a
// BetSource and PredictionSource.
type ClickHouseStore struct {
	client   *pkgch.Client
	db       sqlDB
	database string
	now      func() time.Time
}

var (
	_ domainrepo.RecordStore      = (*ClickHouseStore)(nil)
	_ domainrepo.BetSource        = (*ClickHouseStore)(nil)
	_ domainrepo.PredictionSource = (*ClickHouseStore)(nil)
)

// NewClickHouseStore creates a store on an open client.
func NewClickHouseStore(client *pkgch.Client) *ClickHouseStore {
	return &ClickHouseStore{client: client, db: client.DB(), database: client.Database(), now: time.Now}
}

// Init creates the database and record tables.
func (s *ClickHouseStore) Init(ctx context.Context) error {
	for _, stmt := range pkgch.Schema(s.database) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStore) StoreBets(ctx context.Context, bets []models.BetRecord) error {
	for start := 0; start < len(bets); start += insertChunk {
		end := min(start+insertChunk, len(bets))
		args := make([]interface{}, 0, (end-start)*6)
		for _, b := range bets[start:end] {
			args = append(args, b.ID, b.Amount, b.Odds, string(b.Status), b.Event, b.Timestamp.UTC())
		}
		q := insertQuery(s.table("bets"), []string{"id", "amount", "odds", "status", "event", "ts"}, end-start)
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert bets: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStore) StorePredictions(ctx context.Context, predictions []models.PredictionRecord) error {
	for start := 0; start < len(predictions); start += insertChunk {
		end := min(start+insertChunk, len(predictions))
		args := make([]interface{}, 0, (end-start)*5)
		for _, p := range predictions[start:end] {
			args = append(args, p.ID, p.Event, string(p.Status), p.Confidence, p.Timestamp.UTC())
		}
		q := insertQuery(s.table("predictions"), []string{"id", "event", "status", "confidence", "ts"}, end-start)
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert predictions: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStore) GetBets(ctx context.Context, tr domainrepo.TimeRange) ([]models.BetRecord, error) {
	where, args := s.rangeFilter(tr)
	q := fmt.Sprintf("SELECT id, amount, odds, status, event, ts FROM %s FINAL%s ORDER BY ts", s.table("bets"), where)
	return s.queryBets(ctx, q, args...)
}

func (s *ClickHouseStore) GetRecentBets(ctx context.Context, limit int) ([]models.BetRecord, error) {
	q := fmt.Sprintf("SELECT id, amount, odds, status, event, ts FROM %s FINAL ORDER BY ts DESC LIMIT ?", s.table("bets"))
	return s.queryBets(ctx, q, limit)
}

func (s *ClickHouseStore) GetPredictions(ctx context.Context, tr domainrepo.TimeRange) ([]models.PredictionRecord, error) {
	where, args := s.rangeFilter(tr)
	q := fmt.Sprintf("SELECT id, event, status, confidence, ts FROM %s FINAL%s ORDER BY ts", s.table("predictions"), where)
	return s.queryPredictions(ctx, q, args...)
}

func (s *ClickHouseStore) GetRecentPredictions(ctx context.Context, limit int) ([]models.PredictionRecord, error) {
	q := fmt.Sprintf("SELECT id, event, status, confidence, ts FROM %s FINAL WHERE status != ? ORDER BY ts DESC LIMIT ?", s.table("predictions"))
	return s.queryPredictions(ctx, q, string(models.PredictionOpportunity), limit)
}

func (s *ClickHouseStore) GetRecentOpportunities(ctx context.Context, limit int) ([]models.PredictionRecord, error) {
	q := fmt.Sprintf("SELECT id, event, status, confidence, ts FROM %s FINAL WHERE status = ? ORDER BY ts DESC LIMIT ?", s.table("predictions"))
	return s.queryPredictions(ctx, q, string(models.PredictionOpportunity), limit)
}

func (s *ClickHouseStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying client.
func (s *ClickHouseStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *ClickHouseStore) queryBets(ctx context.Context, q string, args ...interface{}) ([]models.BetRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query bets: %w", err)
	}
	defer rows.Close()

	var out []models.BetRecord
	for rows.Next() {
		var (
			b      models.BetRecord
			status string
		)
		if err := rows.Scan(&b.ID, &b.Amount, &b.Odds, &status, &b.Event, &b.Timestamp); err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		b.Status = models.BetStatus(status)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *ClickHouseStore) queryPredictions(ctx context.Context, q string, args ...interface{}) ([]models.PredictionRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []models.PredictionRecord
	for rows.Next() {
		var (
			p      models.PredictionRecord
			status string
		)
		if err := rows.Scan(&p.ID, &p.Event, &status, &p.Confidence, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		p.Status = models.PredictionStatus(status)
		out = append(out, p)
	}
	return out, rows.Err()
}

// rangeFilter returns the WHERE clause for tr; RangeAll has none.
func (s *ClickHouseStore) rangeFilter(tr domainrepo.TimeRange) (string, []interface{}) {
	since := tr.Since(s.now())
	if since.IsZero() {
		return "", nil
	}
	return " WHERE ts >= ?", []interface{}{since.UTC()}
}

func (s *ClickHouseStore) table(name string) string {
	return s.database + "." + name
}

// insertQuery builds a multi-row INSERT with rows placeholder groups.
func insertQuery(table string, cols []string, rows int) string {
	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	values := make([]string, rows)
	for i := range values {
		values[i] = group
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(cols, ", "), strings.Join(values, ", "))
}
