package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/heartguard-server/internal/domain"
)

// SQLiteStore persists assessments in a local SQLite file. It is the
// zero-dependency backend for single-node installs.
type SQLiteStore struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewSQLiteStore opens (and if needed creates) the database file.
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// WAL keeps readers from blocking the writer.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		parameters TEXT NOT NULL,
		advisories TEXT NOT NULL DEFAULT '[]',
		quality_score INTEGER NOT NULL,
		quality_issues TEXT NOT NULL DEFAULT '[]',
		probability REAL NOT NULL,
		risk_level TEXT NOT NULL,
		risk_message TEXT NOT NULL DEFAULT '',
		risk_factors TEXT NOT NULL DEFAULT '{}',
		recommendations TEXT NOT NULL DEFAULT '[]',
		vital_status TEXT NOT NULL DEFAULT '{}',
		model_version TEXT NOT NULL DEFAULT '',
		processing_time_ms INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
	CREATE INDEX IF NOT EXISTS idx_assessments_risk_level ON assessments(risk_level);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save inserts a completed assessment.
func (s *SQLiteStore) Save(ctx context.Context, result *domain.AssessmentResult) error {
	row, err := encodeResult(result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO assessments (
			id, parameters, advisories,
			quality_score, quality_issues,
			probability, risk_level, risk_message,
			risk_factors, recommendations, vital_status,
			model_version, processing_time_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		row.id, string(row.parameters), string(row.advisories),
		row.qualityScore, string(row.qualityIssues),
		row.probability, row.riskLevel, row.riskMessage,
		string(row.riskFactors), string(row.recommendations), string(row.vitalStatus),
		row.modelVersion, row.processingTimeMS, row.createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"assessment_id": row.id,
		"risk_level":    row.riskLevel,
	}).Debug("Assessment persisted")

	return nil
}

// Get returns the assessment with the given ID, or nil when absent.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.AssessmentResult, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = ?`

	result, err := scanAssessment(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query assessment: %w", err)
	}
	return result, nil
}

// List returns recent assessments newest first.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*domain.AssessmentResult, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var results []*domain.AssessmentResult
	for rows.Next() {
		result, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// Count returns the number of stored assessments.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assessments`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return count, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
