package domain

import "context"

// ConfigManager provides access to application configuration
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetDatabaseConfig() *DatabaseConfig
	Validate() error
	Reload() error
}

// Predictor produces a probability-of-disease score from a parameter
// record shaped per the trained feature schema. The classifier itself is
// an opaque artifact; implementations only guarantee a result in [0,1] or
// a MODEL_UNAVAILABLE / PREDICTION_ERROR condition.
type Predictor interface {
	PredictProbability(ctx context.Context, params PatientParameters) (float64, error)
	Version() string
}

// AssessmentStore persists completed assessments
type AssessmentStore interface {
	Save(ctx context.Context, result *AssessmentResult) error
	Get(ctx context.Context, id string) (*AssessmentResult, error)
	List(ctx context.Context, limit, offset int) ([]*AssessmentResult, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// ResultCache caches assessment results keyed by parameter record
type ResultCache interface {
	Get(ctx context.Context, params PatientParameters) (*AssessmentResult, bool, error)
	Set(ctx context.Context, params PatientParameters, result *AssessmentResult) error
	Close() error
}

// EventPublisher emits assessment lifecycle events to an external broker
type EventPublisher interface {
	PublishAssessmentCompleted(ctx context.Context, result *AssessmentResult) error
	Close() error
}
