package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/heartguard-server/internal/domain"
)

// PostgresStore persists assessments in PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewPostgresStore wraps an existing database handle.
func NewPostgresStore(db *sql.DB, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// NewPostgresStoreFromURL opens a connection pool against the given URL.
func NewPostgresStoreFromURL(databaseURL string, logger *logrus.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewPostgresStore(db, logger), nil
}

// Save inserts a completed assessment.
func (s *PostgresStore) Save(ctx context.Context, result *domain.AssessmentResult) error {
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
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = s.db.ExecContext(ctx, query,
		row.id, row.parameters, row.advisories,
		row.qualityScore, row.qualityIssues,
		row.probability, row.riskLevel, row.riskMessage,
		row.riskFactors, row.recommendations, row.vitalStatus,
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
func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.AssessmentResult, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = $1`

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
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*domain.AssessmentResult, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

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
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assessments`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return count, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
