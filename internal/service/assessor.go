package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/heartguard-server/internal/domain"
	"github.com/heartguard-server/internal/validation"
)

// AssessmentService orchestrates the assessment workflow: completeness
// gate, validation engine, classifier, report derivation, persistence and
// caching. All domain rules live in internal/validation and report.go;
// this type only sequences them.
type AssessmentService struct {
	logger    *logrus.Logger
	predictor domain.Predictor
	store     domain.AssessmentStore
	cache     domain.ResultCache
	events    domain.EventPublisher
}

// NewAssessmentService creates a new assessment service. The cache and
// event publisher are optional; pass nil to disable them.
func NewAssessmentService(
	logger *logrus.Logger,
	predictor domain.Predictor,
	store domain.AssessmentStore,
	cache domain.ResultCache,
	events domain.EventPublisher,
) *AssessmentService {
	return &AssessmentService{
		logger:    logger,
		predictor: predictor,
		store:     store,
		cache:     cache,
		events:    events,
	}
}

// AssessmentRequest is the wire-level parameter record. Every field is a
// pointer so that absence is representable before the completeness gate
// coerces the record into domain.PatientParameters.
type AssessmentRequest struct {
	Age               *int     `json:"age" binding:"omitempty,min=0,max=150"`
	Sex               *int     `json:"sex" binding:"omitempty,oneof=0 1"`
	ChestPainType     *int     `json:"cp" binding:"omitempty,oneof=0 1 2 3"`
	RestingBP         *int     `json:"trestbps" binding:"omitempty,min=0"`
	Cholesterol       *int     `json:"chol" binding:"omitempty,min=0"`
	FastingBloodSugar *int     `json:"fbs" binding:"omitempty,oneof=0 1"`
	RestingECG        *int     `json:"restecg" binding:"omitempty,oneof=0 1 2"`
	MaxHeartRate      *int     `json:"thalach" binding:"omitempty,min=0"`
	ExerciseAngina    *int     `json:"exang" binding:"omitempty,oneof=0 1"`
	STDepression      *float64 `json:"oldpeak"`
	Slope             *int     `json:"slope" binding:"omitempty,oneof=0 1 2"`
	MajorVessels      *int     `json:"ca" binding:"omitempty,min=0,max=4"`
	Thalassemia       *int     `json:"thal" binding:"omitempty,oneof=1 2 3"`
}

// fieldValues maps each field name to its optional numeric value for the
// completeness check, using the trained column names.
func (r *AssessmentRequest) fieldValues() map[string]*float64 {
	return map[string]*float64{
		"age":      intValue(r.Age),
		"sex":      intValue(r.Sex),
		"cp":       intValue(r.ChestPainType),
		"trestbps": intValue(r.RestingBP),
		"chol":     intValue(r.Cholesterol),
		"fbs":      intValue(r.FastingBloodSugar),
		"restecg":  intValue(r.RestingECG),
		"thalach":  intValue(r.MaxHeartRate),
		"exang":    intValue(r.ExerciseAngina),
		"oldpeak":  r.STDepression,
		"slope":    intValue(r.Slope),
		"ca":       intValue(r.MajorVessels),
		"thal":     intValue(r.Thalassemia),
	}
}

func intValue(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

// MissingFields returns the names of absent or NaN fields.
func (r *AssessmentRequest) MissingFields() []string {
	return validation.CheckCompleteness(r.fieldValues())
}

// Parameters coerces a complete request into an immutable parameter
// record. It must only be called after the completeness gate has passed.
func (r *AssessmentRequest) Parameters() (domain.PatientParameters, error) {
	p := domain.PatientParameters{
		Age:               *r.Age,
		Sex:               domain.Sex(*r.Sex),
		ChestPainType:     domain.ChestPainType(*r.ChestPainType),
		RestingBP:         *r.RestingBP,
		Cholesterol:       *r.Cholesterol,
		FastingBloodSugar: domain.FastingBloodSugar(*r.FastingBloodSugar),
		RestingECG:        domain.RestingECG(*r.RestingECG),
		MaxHeartRate:      *r.MaxHeartRate,
		ExerciseAngina:    domain.ExerciseAngina(*r.ExerciseAngina),
		STDepression:      *r.STDepression,
		Slope:             domain.Slope(*r.Slope),
		MajorVessels:      *r.MajorVessels,
		Thalassemia:       domain.Thalassemia(*r.Thalassemia),
	}

	switch {
	case !p.Sex.Valid():
		return p, domain.NewValidationError("sex", "unknown sex encoding", *r.Sex)
	case !p.ChestPainType.Valid():
		return p, domain.NewValidationError("cp", "unknown chest pain type", *r.ChestPainType)
	case !p.FastingBloodSugar.Valid():
		return p, domain.NewValidationError("fbs", "unknown fasting blood sugar encoding", *r.FastingBloodSugar)
	case !p.RestingECG.Valid():
		return p, domain.NewValidationError("restecg", "unknown resting ECG encoding", *r.RestingECG)
	case !p.ExerciseAngina.Valid():
		return p, domain.NewValidationError("exang", "unknown exercise angina encoding", *r.ExerciseAngina)
	case !p.Slope.Valid():
		return p, domain.NewValidationError("slope", "unknown slope encoding", *r.Slope)
	case !p.Thalassemia.Valid():
		return p, domain.NewValidationError("thal", "unknown thalassemia encoding", *r.Thalassemia)
	case p.MajorVessels < 0 || p.MajorVessels > 4:
		return p, domain.NewValidationError("ca", "major vessel count must be 0-4", *r.MajorVessels)
	}

	return p, nil
}

// Assess runs the complete assessment workflow for one parameter record.
func (s *AssessmentService) Assess(ctx context.Context, req *AssessmentRequest) (*domain.AssessmentResult, error) {
	startTime := time.Now()

	// Completeness is the one hard gate: prediction never runs on an
	// incomplete record.
	if missing := req.MissingFields(); len(missing) > 0 {
		s.logger.WithField("missing_fields", missing).Warn("Assessment refused: incomplete record")
		return nil, &domain.IncompleteInputError{MissingFields: missing}
	}

	params, err := req.Parameters()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, hit, err := s.cache.Get(ctx, params); err != nil {
			s.logger.WithError(err).Warn("Result cache unavailable, continuing without it")
		} else if hit {
			s.logger.WithField("assessment_id", cached.ID).Debug("Assessment served from cache")
			return cached, nil
		}
	}

	advisories := validation.ValidatePatientInputs(params)
	quality := validation.ScoreDataQuality(params)

	probability, err := s.predictor.PredictProbability(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("classifier prediction failed: %w", err)
	}
	probabilityPct := probability * 100

	riskLevel, riskMessage := riskLevelFor(probabilityPct)

	result := &domain.AssessmentResult{
		ID:              uuid.New().String(),
		Parameters:      params,
		Advisories:      advisories,
		Quality:         quality,
		Probability:     probability,
		RiskLevel:       riskLevel,
		RiskMessage:     riskMessage,
		RiskFactors:     analyzeRiskFactors(params),
		Recommendations: recommendationsFor(probabilityPct),
		VitalStatus:     vitalStatusFor(params),
		ModelVersion:    s.predictor.Version(),
		ProcessingTime:  time.Since(startTime),
		CreatedAt:       time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.Save(ctx, result); err != nil {
			return nil, fmt.Errorf("persisting assessment: %w", err)
		}
	}

	if s.events != nil {
		if err := s.events.PublishAssessmentCompleted(ctx, result); err != nil {
			s.logger.WithError(err).Warn("Failed to publish assessment event")
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, params, result); err != nil {
			s.logger.WithError(err).Warn("Failed to cache assessment result")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"assessment_id":   result.ID,
		"risk_level":      result.RiskLevel,
		"probability":     result.Probability,
		"quality_score":   result.Quality.Score,
		"advisories":      len(result.Advisories),
		"processing_time": result.ProcessingTime,
	}).Info("Assessment completed")

	return result, nil
}

// Validate runs the validation engine only. It never touches the
// classifier, so it stays available when the model artifact is not.
func (s *AssessmentService) Validate(req *AssessmentRequest) (*domain.ValidationResult, error) {
	if missing := req.MissingFields(); len(missing) > 0 {
		return nil, &domain.IncompleteInputError{MissingFields: missing}
	}

	params, err := req.Parameters()
	if err != nil {
		return nil, err
	}

	return &domain.ValidationResult{
		Advisories:  validation.ValidatePatientInputs(params),
		Quality:     validation.ScoreDataQuality(params),
		VitalStatus: vitalStatusFor(params),
	}, nil
}

// GetAssessment retrieves a stored assessment by ID.
func (s *AssessmentService) GetAssessment(ctx context.Context, id string) (*domain.AssessmentResult, error) {
	if s.store == nil {
		return nil, fmt.Errorf("assessment storage is not configured")
	}
	result, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading assessment %s: %w", id, err)
	}
	return result, nil
}

// ListAssessments returns stored assessments, newest first.
func (s *AssessmentService) ListAssessments(ctx context.Context, limit, offset int) ([]*domain.AssessmentResult, int64, error) {
	if s.store == nil {
		return nil, 0, fmt.Errorf("assessment storage is not configured")
	}

	results, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing assessments: %w", err)
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting assessments: %w", err)
	}

	return results, total, nil
}
