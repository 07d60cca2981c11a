// Package repository persists completed assessments. Two backends exist:
// PostgreSQL for server deployments and SQLite for single-node installs.
// Both store the structured report fields as JSON documents.
package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/heartguard-server/internal/domain"
)

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// assessmentRow is the flat row shape shared by both backends.
type assessmentRow struct {
	id               string
	parameters       []byte
	advisories       []byte
	qualityScore     int
	qualityIssues    []byte
	probability      float64
	riskLevel        string
	riskMessage      string
	riskFactors      []byte
	recommendations  []byte
	vitalStatus      []byte
	modelVersion     string
	processingTimeMS int64
	createdAt        time.Time
}

// encodeResult flattens an assessment into its row shape.
func encodeResult(result *domain.AssessmentResult) (*assessmentRow, error) {
	row := &assessmentRow{
		id:               result.ID,
		qualityScore:     result.Quality.Score,
		probability:      result.Probability,
		riskLevel:        string(result.RiskLevel),
		riskMessage:      result.RiskMessage,
		modelVersion:     result.ModelVersion,
		processingTimeMS: result.ProcessingTime.Milliseconds(),
		createdAt:        result.CreatedAt,
	}

	var err error
	if row.parameters, err = json.Marshal(result.Parameters); err != nil {
		return nil, fmt.Errorf("encoding parameters: %w", err)
	}
	if row.advisories, err = json.Marshal(result.Advisories); err != nil {
		return nil, fmt.Errorf("encoding advisories: %w", err)
	}
	if row.qualityIssues, err = json.Marshal(result.Quality.Issues); err != nil {
		return nil, fmt.Errorf("encoding quality issues: %w", err)
	}
	if row.riskFactors, err = json.Marshal(result.RiskFactors); err != nil {
		return nil, fmt.Errorf("encoding risk factors: %w", err)
	}
	if row.recommendations, err = json.Marshal(result.Recommendations); err != nil {
		return nil, fmt.Errorf("encoding recommendations: %w", err)
	}
	if row.vitalStatus, err = json.Marshal(result.VitalStatus); err != nil {
		return nil, fmt.Errorf("encoding vital status: %w", err)
	}

	return row, nil
}

// scanAssessment reads one row back into an assessment.
func scanAssessment(s scanner) (*domain.AssessmentResult, error) {
	var row assessmentRow
	err := s.Scan(
		&row.id, &row.parameters, &row.advisories,
		&row.qualityScore, &row.qualityIssues,
		&row.probability, &row.riskLevel, &row.riskMessage,
		&row.riskFactors, &row.recommendations, &row.vitalStatus,
		&row.modelVersion, &row.processingTimeMS, &row.createdAt,
	)
	if err != nil {
		return nil, err
	}

	result := &domain.AssessmentResult{
		ID:             row.id,
		Quality:        domain.QualityReport{Score: row.qualityScore},
		Probability:    row.probability,
		RiskLevel:      domain.RiskLevel(row.riskLevel),
		RiskMessage:    row.riskMessage,
		ModelVersion:   row.modelVersion,
		ProcessingTime: time.Duration(row.processingTimeMS) * time.Millisecond,
		CreatedAt:      row.createdAt,
	}

	if err := json.Unmarshal(row.parameters, &result.Parameters); err != nil {
		return nil, fmt.Errorf("decoding parameters: %w", err)
	}
	if err := json.Unmarshal(row.advisories, &result.Advisories); err != nil {
		return nil, fmt.Errorf("decoding advisories: %w", err)
	}
	if err := json.Unmarshal(row.qualityIssues, &result.Quality.Issues); err != nil {
		return nil, fmt.Errorf("decoding quality issues: %w", err)
	}
	if err := json.Unmarshal(row.riskFactors, &result.RiskFactors); err != nil {
		return nil, fmt.Errorf("decoding risk factors: %w", err)
	}
	if err := json.Unmarshal(row.recommendations, &result.Recommendations); err != nil {
		return nil, fmt.Errorf("decoding recommendations: %w", err)
	}
	if err := json.Unmarshal(row.vitalStatus, &result.VitalStatus); err != nil {
		return nil, fmt.Errorf("decoding vital status: %w", err)
	}

	return result, nil
}

// assessmentColumns is the select list matching scanAssessment.
const assessmentColumns = `id, parameters, advisories,
	quality_score, quality_issues,
	probability, risk_level, risk_message,
	risk_factors, recommendations, vital_status,
	model_version, processing_time_ms, created_at`
