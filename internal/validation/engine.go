// Package validation implements the clinical input validation engine: pure,
// stateless range checks over a patient parameter record. Nothing here
// performs I/O or holds state; every function is safe to call concurrently.
package validation

import (
	"math"

	"github.com/heartguard-server/internal/domain"
)

// Quality score deductions. The plausibility bands here are deliberately
// wider than the advisory thresholds; the two rule sets are independent.
const (
	deductAge         = 20
	deductBP          = 15
	deductCholesterol = 15
	deductHeartRate   = 10
	deductSTDepth     = 10
)

// ValidatePatientInputs evaluates the advisory rules over a parameter
// record. Dimensions are checked in a fixed order (age, blood pressure,
// cholesterol, max heart rate, ST depression, major vessels) and each
// dimension yields at most one advisory: within a dimension the bands are
// mutually exclusive and the first matching band wins, with critical bands
// ordered ahead of the warnings they would otherwise be masked by.
func ValidatePatientInputs(p domain.PatientParameters) []domain.Advisory {
	advisories := make([]domain.Advisory, 0, 6)

	if a, ok := checkAge(p.Age); ok {
		advisories = append(advisories, a)
	}
	if a, ok := checkBloodPressure(p.RestingBP); ok {
		advisories = append(advisories, a)
	}
	if a, ok := checkCholesterol(p.Cholesterol); ok {
		advisories = append(advisories, a)
	}
	if a, ok := checkMaxHeartRate(p.MaxHeartRate, p.Age); ok {
		advisories = append(advisories, a)
	}
	if a, ok := checkSTDepression(p.STDepression); ok {
		advisories = append(advisories, a)
	}
	if a, ok := checkMajorVessels(p.MajorVessels); ok {
		advisories = append(advisories, a)
	}

	return advisories
}

func checkAge(age int) (domain.Advisory, bool) {
	switch {
	case age < 20 || age > 100:
		return advisory(domain.DimensionAge, domain.SeverityError,
			"Age outside typical adult range (20-100 years)"), true
	case age < 30:
		return advisory(domain.DimensionAge, domain.SeverityInfo,
			"Patient is relatively young for heart disease assessment"), true
	case age > 70:
		return advisory(domain.DimensionAge, domain.SeverityWarning,
			"Advanced age - increased baseline risk"), true
	}
	return domain.Advisory{}, false
}

func checkBloodPressure(trestbps int) (domain.Advisory, bool) {
	// The crisis band must be evaluated before the Stage-1 band so that
	// readings above 180 are not reported as merely elevated.
	switch {
	case trestbps < 80:
		return advisory(domain.DimensionBloodPress, domain.SeverityError,
			"Very low resting blood pressure (hypotension)"), true
	case trestbps < 90:
		return advisory(domain.DimensionBloodPress, domain.SeverityWarning,
			"Low resting blood pressure"), true
	case trestbps > 180:
		return advisory(domain.DimensionBloodPress, domain.SeverityError,
			"Very high resting blood pressure (Hypertensive Crisis)"), true
	case trestbps > 140:
		return advisory(domain.DimensionBloodPress, domain.SeverityWarning,
			"Elevated resting blood pressure (Stage 1 Hypertension)"), true
	}
	return domain.Advisory{}, false
}

func checkCholesterol(chol int) (domain.Advisory, bool) {
	switch {
	case chol < 100:
		return advisory(domain.DimensionCholesterol, domain.SeverityError,
			"Very low cholesterol level"), true
	case chol < 125:
		return advisory(domain.DimensionCholesterol, domain.SeverityWarning,
			"Low cholesterol level"), true
	case chol > 300:
		return advisory(domain.DimensionCholesterol, domain.SeverityError,
			"Very high cholesterol level"), true
	case chol > 240:
		return advisory(domain.DimensionCholesterol, domain.SeverityWarning,
			"High cholesterol level (Hypercholesterolemia)"), true
	}
	// Exactly 240 falls in neither band. The comparison operators are kept
	// as the clinical rules were written, not rounded to intent.
	return domain.Advisory{}, false
}

func checkMaxHeartRate(thalach, age int) (domain.Advisory, bool) {
	predictedMax := 220 - age
	switch {
	case thalach > predictedMax+20:
		return advisory(domain.DimensionMaxHeartRate, domain.SeverityWarning,
			"Maximum heart rate exceeds predicted maximum for age"), true
	case thalach < 100:
		return advisory(domain.DimensionMaxHeartRate, domain.SeverityWarning,
			"Low maximum heart rate achieved"), true
	case float64(thalach) < float64(predictedMax)*0.85:
		return advisory(domain.DimensionMaxHeartRate, domain.SeverityInfo,
			"Submaximal exercise heart rate"), true
	}
	return domain.Advisory{}, false
}

func checkSTDepression(oldpeak float64) (domain.Advisory, bool) {
	// The >6 critical band precedes the >4 band; a reading of 7 must
	// surface as critical, never as the lower-severity warning.
	switch {
	case oldpeak < 0:
		return advisory(domain.DimensionSTDepression, domain.SeverityError,
			"ST depression cannot be negative"), true
	case oldpeak > 6:
		return advisory(domain.DimensionSTDepression, domain.SeverityError,
			"Very high ST depression - consider immediate medical attention"), true
	case oldpeak > 4:
		return advisory(domain.DimensionSTDepression, domain.SeverityWarning,
			"Significant ST depression detected"), true
	}
	return domain.Advisory{}, false
}

func checkMajorVessels(ca int) (domain.Advisory, bool) {
	if ca > 3 {
		return advisory(domain.DimensionMajorVessels, domain.SeverityWarning,
			"High number of major vessels affected"), true
	}
	return domain.Advisory{}, false
}

func advisory(d domain.Dimension, s domain.Severity, msg string) domain.Advisory {
	return domain.Advisory{Dimension: d, Severity: s, Message: msg}
}

// CheckCompleteness returns the names of fields whose value is absent or a
// NaN sentinel. A non-empty result is the one condition meant to halt the
// caller: prediction must not run on an incomplete record.
func CheckCompleteness(fields map[string]*float64) []string {
	missing := make([]string, 0)
	for name, value := range fields {
		if value == nil || math.IsNaN(*value) {
			missing = append(missing, name)
		}
	}
	return missing
}

// ScoreDataQuality computes the 0-100 data-quality heuristic. Deductions
// are independent of each other and of the advisory severities; all
// applicable ones accumulate before the score is clamped at zero.
func ScoreDataQuality(p domain.PatientParameters) domain.QualityReport {
	score := 100
	issues := make([]string, 0)

	if p.Age < 20 || p.Age > 100 {
		score -= deductAge
		issues = append(issues, "Age outside typical range")
	}
	if p.RestingBP < 80 || p.RestingBP > 200 {
		score -= deductBP
		issues = append(issues, "BP outside typical range")
	}
	if p.Cholesterol < 100 || p.Cholesterol > 400 {
		score -= deductCholesterol
		issues = append(issues, "Cholesterol outside typical range")
	}
	if p.MaxHeartRate < 60 {
		score -= deductHeartRate
		issues = append(issues, "Very low max heart rate")
	}
	if p.STDepression > 6 {
		score -= deductSTDepth
		issues = append(issues, "Extreme ST depression")
	}

	if score < 0 {
		score = 0
	}

	return domain.QualityReport{Score: score, Issues: issues}
}
