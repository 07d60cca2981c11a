package domain

import (
	"time"
)

// Core Enums and Types

// Sex encodes patient sex using the trained model's numeric scheme.
type Sex int

const (
	Female Sex = 0
	Male   Sex = 1
)

// String returns a human-readable label
func (s Sex) String() string {
	if s == Male {
		return "Male"
	}
	return "Female"
}

// Valid reports whether the value is one of the encoded categories
func (s Sex) Valid() bool {
	return s == Female || s == Male
}

// ChestPainType represents the chest pain category
type ChestPainType int

const (
	TypicalAngina  ChestPainType = 0
	AtypicalAngina ChestPainType = 1
	NonAnginalPain ChestPainType = 2
	Asymptomatic   ChestPainType = 3
)

// String returns a human-readable label
func (c ChestPainType) String() string {
	switch c {
	case TypicalAngina:
		return "Typical Angina"
	case AtypicalAngina:
		return "Atypical Angina"
	case NonAnginalPain:
		return "Non-anginal Pain"
	case Asymptomatic:
		return "Asymptomatic"
	}
	return "Unknown"
}

// Valid reports whether the value is one of the encoded categories
func (c ChestPainType) Valid() bool {
	return c >= TypicalAngina && c <= Asymptomatic
}

// RestingECG represents the resting electrocardiogram result
type RestingECG int

const (
	ECGNormal         RestingECG = 0
	ECGSTTAbnormality RestingECG = 1
	ECGLVHypertrophy  RestingECG = 2
)

// String returns a human-readable label
func (r RestingECG) String() string {
	switch r {
	case ECGNormal:
		return "Normal"
	case ECGSTTAbnormality:
		return "ST-T Wave Abnormality"
	case ECGLVHypertrophy:
		return "Left Ventricular Hypertrophy"
	}
	return "Unknown"
}

// Valid reports whether the value is one of the encoded categories
func (r RestingECG) Valid() bool {
	return r >= ECGNormal && r <= ECGLVHypertrophy
}

// FastingBloodSugar encodes whether fasting blood sugar exceeds 120 mg/dl
type FastingBloodSugar int

const (
	FBSNormal FastingBloodSugar = 0
	FBSHigh   FastingBloodSugar = 1
)

// Valid reports whether the value is one of the encoded categories
func (f FastingBloodSugar) Valid() bool {
	return f == FBSNormal || f == FBSHigh
}

// ExerciseAngina encodes exercise-induced angina
type ExerciseAngina int

const (
	AnginaAbsent  ExerciseAngina = 0
	AnginaPresent ExerciseAngina = 1
)

// Valid reports whether the value is one of the encoded categories
func (e ExerciseAngina) Valid() bool {
	return e == AnginaAbsent || e == AnginaPresent
}

// Slope represents the slope of the peak exercise ST segment
type Slope int

const (
	SlopeUpsloping   Slope = 0
	SlopeFlat        Slope = 1
	SlopeDownsloping Slope = 2
)

// String returns a human-readable label
func (s Slope) String() string {
	switch s {
	case SlopeUpsloping:
		return "Upsloping"
	case SlopeFlat:
		return "Flat"
	case SlopeDownsloping:
		return "Downsloping"
	}
	return "Unknown"
}

// Valid reports whether the value is one of the encoded categories
func (s Slope) Valid() bool {
	return s >= SlopeUpsloping && s <= SlopeDownsloping
}

// Thalassemia represents the thalassemia test result
type Thalassemia int

const (
	ThalNormal           Thalassemia = 1
	ThalFixedDefect      Thalassemia = 2
	ThalReversibleDefect Thalassemia = 3
)

// String returns a human-readable label
func (t Thalassemia) String() string {
	switch t {
	case ThalNormal:
		return "Normal"
	case ThalFixedDefect:
		return "Fixed Defect"
	case ThalReversibleDefect:
		return "Reversible Defect"
	}
	return "Unknown"
}

// Valid reports whether the value is one of the encoded categories
func (t Thalassemia) Valid() bool {
	return t >= ThalNormal && t <= ThalReversibleDefect
}

// RiskLevel represents the overall risk classification of an assessment
type RiskLevel string

const (
	LowRisk  RiskLevel = "LOW_RISK"
	HighRisk RiskLevel = "HIGH_RISK"
)

// Core Data Models

// PatientParameters is the immutable clinical input record for one
// assessment. It is constructed once per request and passed by value
// through the validation and prediction pipeline.
type PatientParameters struct {
	Age               int               `json:"age"`
	Sex               Sex               `json:"sex"`
	ChestPainType     ChestPainType     `json:"cp"`
	RestingBP         int               `json:"trestbps"`
	Cholesterol       int               `json:"chol"`
	FastingBloodSugar FastingBloodSugar `json:"fbs"`
	RestingECG        RestingECG        `json:"restecg"`
	MaxHeartRate      int               `json:"thalach"`
	ExerciseAngina    ExerciseAngina    `json:"exang"`
	STDepression      float64           `json:"oldpeak"`
	Slope             Slope             `json:"slope"`
	MajorVessels      int               `json:"ca"`
	Thalassemia       Thalassemia       `json:"thal"`
}

// FeatureColumns is the column order the classifier artifact was trained
// with. FeatureVector must produce values in exactly this order.
var FeatureColumns = []string{
	"age", "sex", "cp", "trestbps", "chol", "fbs",
	"restecg", "thalach", "exang", "oldpeak", "slope", "ca", "thal",
}

// FeatureVector returns the thirteen parameter values in trained column order.
func (p PatientParameters) FeatureVector() []float64 {
	return []float64{
		float64(p.Age),
		float64(p.Sex),
		float64(p.ChestPainType),
		float64(p.RestingBP),
		float64(p.Cholesterol),
		float64(p.FastingBloodSugar),
		float64(p.RestingECG),
		float64(p.MaxHeartRate),
		float64(p.ExerciseAngina),
		p.STDepression,
		float64(p.Slope),
		float64(p.MajorVessels),
		float64(p.Thalassemia),
	}
}

// PredictedMaxHeartRate returns the age-predicted maximum heart rate (220 - age).
func (p PatientParameters) PredictedMaxHeartRate() int {
	return 220 - p.Age
}

// Result Models

// RiskFactorAnalysis lists the rule-based risk factors identified for an
// assessment, split the way the clinical report presents them.
type RiskFactorAnalysis struct {
	MajorFactors        []string `json:"major_factors"`
	ContributingFactors []string `json:"contributing_factors"`
}

// AssessmentResult is the complete outcome of one assessment request.
type AssessmentResult struct {
	ID              string             `json:"id"`
	Parameters      PatientParameters  `json:"parameters"`
	Advisories      []Advisory         `json:"advisories"`
	Quality         QualityReport      `json:"quality"`
	Probability     float64            `json:"probability"`
	RiskLevel       RiskLevel          `json:"risk_level"`
	RiskMessage     string             `json:"risk_message"`
	RiskFactors     RiskFactorAnalysis `json:"risk_factors"`
	Recommendations []string           `json:"recommendations"`
	VitalStatus     VitalStatus        `json:"vital_status"`
	ModelVersion    string             `json:"model_version"`
	ProcessingTime  time.Duration      `json:"processing_time"`
	CreatedAt       time.Time          `json:"created_at"`
}

// ValidationResult is the outcome of a validation-only request. It never
// involves the classifier.
type ValidationResult struct {
	Advisories  []Advisory    `json:"advisories"`
	Quality     QualityReport `json:"quality"`
	VitalStatus VitalStatus   `json:"vital_status"`
}
