package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var submissionColumns = []string{
	"id", "created_at", "name", "mobile", "location", "age", "gender", "weight_kg", "height_cm",
	"hypertension", "diabetes", "heart_disease", "thyroid", "asthma",
	"symptoms", "conditions", "systems", "risk_score", "risk_level", "bmi_value", "bmi_category",
}

// insertStatement builds the submissions insert with the driver's placeholder style.
func insertStatement(placeholder func(n int) string) string {
	marks := make([]string, len(submissionColumns))
	for i := range marks {
		marks[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO submissions (%s) VALUES (%s)",
		strings.Join(submissionColumns, ", "), strings.Join(marks, ", "))
}

func questionMark(int) string { return "?" }

func dollar(n int) string { return fmt.Sprintf("$%d", n) }

func recordArgs(rec Record) []any {
	var bmiValue any
	if rec.BMIComputable {
		bmiValue = rec.BMIValue
	}
	return []any{
		rec.ID,
		rec.Timestamp.UTC(),
		rec.Name,
		rec.Mobile,
		rec.Location,
		rec.Age,
		rec.Gender,
		rec.WeightKg,
		rec.HeightCm,
		rec.Hypertension,
		rec.Diabetes,
		rec.HeartDisease,
		rec.Thyroid,
		rec.Asthma,
		JoinList(rec.Symptoms),
		JoinList(rec.Conditions),
		JoinList(rec.Systems),
		rec.RiskScore,
		rec.RiskLevel,
		bmiValue,
		rec.BMICategory,
	}
}

// SQLStore appends records through database/sql.
type SQLStore struct {
	db     *sql.DB
	insert string
}

// NewSQLStore wraps an open database whose schema is already migrated.
// It uses "?" placeholders.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, insert: insertStatement(questionMark)}
}

// OpenSQLite opens (creating if needed) a SQLite database file and migrates it.
func OpenSQLite(ctx context.Context, path string, logger *logrus.Logger) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := Migrate(ctx, db, DialectSQLite, logger); err != nil {
		db.Close()
		return nil, err
	}
	return NewSQLStore(db), nil
}

func (s *SQLStore) Append(ctx context.Context, rec Record) error {
	if _, err := s.db.ExecContext(ctx, s.insert, recordArgs(rec)...); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// count returns the number of stored submissions.
func (s *SQLStore) count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM submissions").Scan(&n); err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
