package service

import (
	"fmt"

	"github.com/heartguard-server/internal/domain"
)

// Risk thresholds, as percentages of disease probability.
const (
	highRiskThreshold   = 50.0
	urgentRiskThreshold = 70.0
)

// Tiered clinical recommendation sets. The tier is selected purely by the
// predicted probability; the content is static advisory text.
var (
	urgentRecommendations = []string{
		"Immediate cardiology consultation",
		"Consider stress testing or angiography",
		"Lifestyle modification imperative",
		"Regular monitoring of vital signs",
	}
	moderateRecommendations = []string{
		"Schedule cardiology follow-up",
		"Consider non-invasive testing",
		"Implement lifestyle changes",
		"Monitor risk factors regularly",
	}
	preventiveRecommendations = []string{
		"Maintain healthy lifestyle",
		"Regular exercise regimen",
		"Balanced diet",
		"Annual health check-ups",
	}
)

// riskLevelFor maps a probability percentage to a risk level and the
// headline message surfaced with it.
func riskLevelFor(probabilityPct float64) (domain.RiskLevel, string) {
	if probabilityPct >= highRiskThreshold {
		return domain.HighRisk, "High likelihood of heart disease detected"
	}
	return domain.LowRisk, "Low likelihood of heart disease"
}

// recommendationsFor returns the clinical recommendation tier for a
// probability percentage. The first entry is the headline recommendation,
// followed by the tier's action list.
func recommendationsFor(probabilityPct float64) []string {
	var headline string
	var tier []string

	switch {
	case probabilityPct >= urgentRiskThreshold:
		headline = "Please consult a cardiologist for further evaluation and treatment planning."
		tier = urgentRecommendations
	case probabilityPct >= highRiskThreshold:
		headline = "Please consult a cardiologist for further evaluation and treatment planning."
		tier = moderateRecommendations
	default:
		headline = "Maintain healthy lifestyle with regular check-ups."
		tier = preventiveRecommendations
	}

	out := make([]string, 0, len(tier)+1)
	out = append(out, headline)
	out = append(out, tier...)
	return out
}

// analyzeRiskFactors derives the rule-based risk factor lists from a
// parameter record. Major factors are established clinical drivers;
// contributing factors are secondary findings. Both lists are independent
// of the classifier output.
func analyzeRiskFactors(p domain.PatientParameters) domain.RiskFactorAnalysis {
	major := make([]string, 0, 6)
	if p.Age > 55 {
		major = append(major, fmt.Sprintf("Age (%d years)", p.Age))
	}
	if p.RestingBP > 140 {
		major = append(major, "Hypertension")
	}
	if p.Cholesterol > 240 {
		major = append(major, "High Cholesterol")
	}
	if p.FastingBloodSugar == domain.FBSHigh {
		major = append(major, "Elevated Blood Sugar")
	}
	if p.ExerciseAngina == domain.AnginaPresent {
		major = append(major, "Exercise-Induced Angina")
	}
	if p.STDepression > 2.0 {
		major = append(major, "Significant ST Depression")
	}

	contributing := make([]string, 0, 5)
	if p.ChestPainType == domain.AtypicalAngina ||
		p.ChestPainType == domain.NonAnginalPain ||
		p.ChestPainType == domain.Asymptomatic {
		contributing = append(contributing, "Atypical Chest Pain")
	}
	if p.RestingECG == domain.ECGSTTAbnormality || p.RestingECG == domain.ECGLVHypertrophy {
		contributing = append(contributing, "ECG Abnormalities")
	}
	if p.Slope == domain.SlopeDownsloping {
		contributing = append(contributing, "Downsloping ST Segment")
	}
	if p.MajorVessels > 0 {
		contributing = append(contributing, fmt.Sprintf("%d Major Vessel(s) Affected", p.MajorVessels))
	}
	if p.Thalassemia == domain.ThalReversibleDefect {
		contributing = append(contributing, "Reversible Thalassemia")
	}

	return domain.RiskFactorAnalysis{
		MajorFactors:        major,
		ContributingFactors: contributing,
	}
}

// vitalStatusFor bands each vital sign into a coarse display status. The
// cutoffs here differ from the advisory thresholds on purpose; they mirror
// the quick-glance summary the assessment report carries.
func vitalStatusFor(p domain.PatientParameters) domain.VitalStatus {
	var status domain.VitalStatus

	switch {
	case p.RestingBP >= 90 && p.RestingBP <= 120:
		status.BloodPressure = domain.VitalNormal
	case p.RestingBP >= 121 && p.RestingBP <= 139:
		status.BloodPressure = domain.VitalBorderline
	default:
		status.BloodPressure = domain.VitalAbnormal
	}

	switch {
	case p.Cholesterol < 200:
		status.Cholesterol = domain.VitalNormal
	case p.Cholesterol <= 239:
		status.Cholesterol = domain.VitalBorderline
	default:
		status.Cholesterol = domain.VitalAbnormal
	}

	if float64(p.MaxHeartRate) >= float64(p.PredictedMaxHeartRate())*0.85 {
		status.MaxHeartRate = domain.VitalNormal
	} else {
		status.MaxHeartRate = domain.VitalBorderline
	}

	switch {
	case p.STDepression <= 1.0:
		status.STDepression = domain.VitalNormal
	case p.STDepression <= 2.0:
		status.STDepression = domain.VitalBorderline
	default:
		status.STDepression = domain.VitalAbnormal
	}

	return status
}

// GuidelineRange documents the typical clinical range for one input field.
type GuidelineRange struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Min   string `json:"min"`
	Max   string `json:"max"`
	Unit  string `json:"unit"`
}

// GuidelineNote documents the encoding of one categorical field.
type GuidelineNote struct {
	Field  string            `json:"field"`
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// InputGuidelines is the static reference material served alongside the
// form: typical ranges for the numeric inputs and the categorical
// encodings of the trained feature schema.
type InputGuidelines struct {
	Ranges []GuidelineRange `json:"ranges"`
	Notes  []GuidelineNote  `json:"notes"`
}

// Guidelines returns the static input guideline reference.
func Guidelines() InputGuidelines {
	return InputGuidelines{
		Ranges: []GuidelineRange{
			{Field: "age", Label: "Age", Min: "30", Max: "80", Unit: "years"},
			{Field: "trestbps", Label: "Resting BP", Min: "90", Max: "140", Unit: "mmHg"},
			{Field: "chol", Label: "Cholesterol", Min: "125", Max: "240", Unit: "mg/dl"},
			{Field: "thalach", Label: "Max Heart Rate", Min: "120", Max: "200", Unit: "bpm"},
			{Field: "oldpeak", Label: "ST Depression", Min: "0", Max: "4", Unit: "mm"},
		},
		Notes: []GuidelineNote{
			{
				Field: "cp",
				Label: "Chest Pain Type",
				Values: map[string]string{
					"0": "Typical Angina",
					"1": "Atypical Angina",
					"2": "Non-anginal Pain",
					"3": "Asymptomatic",
				},
			},
			{
				Field: "slope",
				Label: "ST Slope",
				Values: map[string]string{
					"0": "Upsloping",
					"1": "Flat",
					"2": "Downsloping",
				},
			},
			{
				Field: "ca",
				Label: "Major Vessels",
				Values: map[string]string{
					"0": "None", "1": "One", "2": "Two", "3": "Three", "4": "Four",
				},
			},
			{
				Field: "thal",
				Label: "Thalassemia",
				Values: map[string]string{
					"1": "Normal",
					"2": "Fixed Defect",
					"3": "Reversible Defect",
				},
			},
		},
	}
}
