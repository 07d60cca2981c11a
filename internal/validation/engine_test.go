package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartguard-server/internal/domain"
)

// baselineParams returns a complete, all-in-range record: it must produce
// no advisories and a quality score of 100.
func baselineParams() domain.PatientParameters {
	return domain.PatientParameters{
		Age:               50,
		Sex:               domain.Male,
		ChestPainType:     domain.TypicalAngina,
		RestingBP:         120,
		Cholesterol:       200,
		FastingBloodSugar: domain.FBSNormal,
		RestingECG:        domain.ECGNormal,
		MaxHeartRate:      150,
		ExerciseAngina:    domain.AnginaAbsent,
		STDepression:      1.0,
		Slope:             domain.SlopeUpsloping,
		MajorVessels:      0,
		Thalassemia:       domain.ThalNormal,
	}
}

func TestValidatePatientInputs_CleanRecord(t *testing.T) {
	advisories := ValidatePatientInputs(baselineParams())
	assert.Empty(t, advisories)
}

func TestValidatePatientInputs_Age(t *testing.T) {
	tests := []struct {
		name         string
		age          int
		wantSeverity domain.Severity
		wantMessage  string
		wantNone     bool
	}{
		{name: "Above hard range", age: 110, wantSeverity: domain.SeverityError, wantMessage: "Age outside typical adult range (20-100 years)"},
		{name: "Below hard range", age: 19, wantSeverity: domain.SeverityError, wantMessage: "Age outside typical adult range (20-100 years)"},
		{name: "Young patient", age: 25, wantSeverity: domain.SeverityInfo, wantMessage: "Patient is relatively young for heart disease assessment"},
		{name: "Advanced age", age: 75, wantSeverity: domain.SeverityWarning, wantMessage: "Advanced age - increased baseline risk"},
		{name: "Lower hard boundary is young", age: 20, wantSeverity: domain.SeverityInfo, wantMessage: "Patient is relatively young for heart disease assessment"},
		{name: "Upper hard boundary is advanced", age: 100, wantSeverity: domain.SeverityWarning, wantMessage: "Advanced age - increased baseline risk"},
		{name: "Young boundary exclusive", age: 30, wantNone: true},
		{name: "Advanced boundary exclusive", age: 70, wantNone: true},
		{name: "Mid range", age: 50, wantNone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baselineParams()
			p.Age = tt.age
			// Keep the heart rate dimension quiet for elderly records where
			// 150 bpm would exceed the age-predicted maximum.
			p.MaxHeartRate = 220 - tt.age - 30
			got := filterDimension(ValidatePatientInputs(p), domain.DimensionAge)

			if tt.wantNone {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantSeverity, got[0].Severity)
			assert.Equal(t, tt.wantMessage, got[0].Message)
		})
	}
}

func TestValidatePatientInputs_BloodPressure(t *testing.T) {
	tests := []struct {
		name         string
		trestbps     int
		wantSeverity domain.Severity
		wantMessage  string
		wantNone     bool
	}{
		{name: "Hypotension", trestbps: 70, wantSeverity: domain.SeverityError, wantMessage: "Very low resting blood pressure (hypotension)"},
		{name: "Low", trestbps: 85, wantSeverity: domain.SeverityWarning, wantMessage: "Low resting blood pressure"},
		{name: "Low band lower boundary", trestbps: 80, wantSeverity: domain.SeverityWarning, wantMessage: "Low resting blood pressure"},
		{name: "Normal", trestbps: 120, wantNone: true},
		{name: "Normal lower boundary", trestbps: 90, wantNone: true},
		{name: "Normal upper boundary", trestbps: 140, wantNone: true},
		{name: "Stage 1 hypertension", trestbps: 150, wantSeverity: domain.SeverityWarning, wantMessage: "Elevated resting blood pressure (Stage 1 Hypertension)"},
		{name: "Crisis boundary still stage 1", trestbps: 180, wantSeverity: domain.SeverityWarning, wantMessage: "Elevated resting blood pressure (Stage 1 Hypertension)"},
		// The crisis band takes precedence over the stage-1 band even
		// though 190 also satisfies >140.
		{name: "Hypertensive crisis", trestbps: 190, wantSeverity: domain.SeverityError, wantMessage: "Very high resting blood pressure (Hypertensive Crisis)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baselineParams()
			p.RestingBP = tt.trestbps
			got := filterDimension(ValidatePatientInputs(p), domain.DimensionBloodPress)

			if tt.wantNone {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1, "bands must be mutually exclusive")
			assert.Equal(t, tt.wantSeverity, got[0].Severity)
			assert.Equal(t, tt.wantMessage, got[0].Message)
		})
	}
}

func TestValidatePatientInputs_Cholesterol(t *testing.T) {
	tests := []struct {
		name         string
		chol         int
		wantSeverity domain.Severity
		wantMessage  string
		wantNone     bool
	}{
		{name: "Very low", chol: 90, wantSeverity: domain.SeverityError, wantMessage: "Very low cholesterol level"},
		{name: "Low", chol: 110, wantSeverity: domain.SeverityWarning, wantMessage: "Low cholesterol level"},
		{name: "Normal", chol: 200, wantNone: true},
		{name: "Normal lower boundary", chol: 125, wantNone: true},
		// 240 falls in neither the normal nor the high band as the
		// comparison operators are written. Deliberately preserved.
		{name: "Exactly 240 matches no band", chol: 240, wantNone: true},
		{name: "High", chol: 250, wantSeverity: domain.SeverityWarning, wantMessage: "High cholesterol level (Hypercholesterolemia)"},
		{name: "Exactly 300 is high not very high", chol: 300, wantSeverity: domain.SeverityWarning, wantMessage: "High cholesterol level (Hypercholesterolemia)"},
		{name: "Very high precedes high", chol: 310, wantSeverity: domain.SeverityError, wantMessage: "Very high cholesterol level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baselineParams()
			p.Cholesterol = tt.chol
			got := filterDimension(ValidatePatientInputs(p), domain.DimensionCholesterol)

			if tt.wantNone {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantSeverity, got[0].Severity)
			assert.Equal(t, tt.wantMessage, got[0].Message)
		})
	}
}

func TestValidatePatientInputs_MaxHeartRate(t *testing.T) {
	// Baseline age is 50, so the age-predicted maximum is 170 and the
	// submaximal threshold is 144.5.
	tests := []struct {
		name         string
		thalach      int
		wantSeverity domain.Severity
		wantMessage  string
		wantNone     bool
	}{
		{name: "Exceeds predicted maximum", thalach: 195, wantSeverity: domain.SeverityWarning, wantMessage: "Maximum heart rate exceeds predicted maximum for age"},
		{name: "Exactly predicted plus twenty", thalach: 190, wantNone: true},
		{name: "Low achieved", thalach: 95, wantSeverity: domain.SeverityWarning, wantMessage: "Low maximum heart rate achieved"},
		{name: "Submaximal", thalach: 120, wantSeverity: domain.SeverityInfo, wantMessage: "Submaximal exercise heart rate"},
		{name: "Adequate", thalach: 160, wantNone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baselineParams()
			p.MaxHeartRate = tt.thalach
			got := filterDimension(ValidatePatientInputs(p), domain.DimensionMaxHeartRate)

			if tt.wantNone {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantSeverity, got[0].Severity)
			assert.Equal(t, tt.wantMessage, got[0].Message)
		})
	}
}

func TestValidatePatientInputs_STDepression(t *testing.T) {
	tests := []struct {
		name         string
		oldpeak      float64
		wantSeverity domain.Severity
		wantMessage  string
		wantNone     bool
	}{
		{name: "Negative is invalid", oldpeak: -0.5, wantSeverity: domain.SeverityError, wantMessage: "ST depression cannot be negative"},
		{name: "Normal", oldpeak: 1.0, wantNone: true},
		{name: "Zero", oldpeak: 0, wantNone: true},
		{name: "Upper normal boundary", oldpeak: 4.0, wantNone: true},
		{name: "Significant", oldpeak: 5.0, wantSeverity: domain.SeverityWarning, wantMessage: "Significant ST depression detected"},
		{name: "Exactly six is significant", oldpeak: 6.0, wantSeverity: domain.SeverityWarning, wantMessage: "Significant ST depression detected"},
		// A reading of 7 also satisfies >4, but the critical band must win.
		{name: "Critical supersedes significant", oldpeak: 7.0, wantSeverity: domain.SeverityError, wantMessage: "Very high ST depression - consider immediate medical attention"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baselineParams()
			p.STDepression = tt.oldpeak
			got := filterDimension(ValidatePatientInputs(p), domain.DimensionSTDepression)

			if tt.wantNone {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1, "critical readings must not also produce the warning")
			assert.Equal(t, tt.wantSeverity, got[0].Severity)
			assert.Equal(t, tt.wantMessage, got[0].Message)
		})
	}
}

func TestValidatePatientInputs_MajorVessels(t *testing.T) {
	p := baselineParams()
	p.MajorVessels = 4
	got := filterDimension(ValidatePatientInputs(p), domain.DimensionMajorVessels)
	require.Len(t, got, 1)
	assert.Equal(t, domain.SeverityWarning, got[0].Severity)
	assert.Equal(t, "High number of major vessels affected", got[0].Message)

	p.MajorVessels = 3
	assert.Empty(t, filterDimension(ValidatePatientInputs(p), domain.DimensionMajorVessels))
}

func TestValidatePatientInputs_EvaluationOrder(t *testing.T) {
	// A record violating every dimension must produce exactly one advisory
	// per dimension, in the fixed evaluation order.
	p := domain.PatientParameters{
		Age:          110,
		RestingBP:    190,
		Cholesterol:  310,
		MaxHeartRate: 50,
		STDepression: 7.0,
		MajorVessels: 4,
	}

	got := ValidatePatientInputs(p)
	require.Len(t, got, 6)

	wantOrder := []domain.Dimension{
		domain.DimensionAge,
		domain.DimensionBloodPress,
		domain.DimensionCholesterol,
		domain.DimensionMaxHeartRate,
		domain.DimensionSTDepression,
		domain.DimensionMajorVessels,
	}
	for i, dim := range wantOrder {
		assert.Equal(t, dim, got[i].Dimension)
	}
}

func TestValidatePatientInputs_Deterministic(t *testing.T) {
	p := baselineParams()
	p.Age = 75
	p.Cholesterol = 250
	p.MaxHeartRate = 130

	first := ValidatePatientInputs(p)
	second := ValidatePatientInputs(p)
	assert.Equal(t, first, second)
}

func TestCheckCompleteness(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name        string
		fields      map[string]*float64
		wantMissing []string
	}{
		{
			name:        "All present",
			fields:      map[string]*float64{"age": f(50), "chol": f(200)},
			wantMissing: []string{},
		},
		{
			name:        "Nil value",
			fields:      map[string]*float64{"age": f(50), "thalach": nil},
			wantMissing: []string{"thalach"},
		},
		{
			name:        "NaN sentinel",
			fields:      map[string]*float64{"oldpeak": f(math.NaN()), "age": f(50)},
			wantMissing: []string{"oldpeak"},
		},
		{
			name:        "Multiple missing",
			fields:      map[string]*float64{"age": nil, "ca": nil, "chol": f(200)},
			wantMissing: []string{"age", "ca"},
		},
		{
			name:        "Empty input",
			fields:      map[string]*float64{},
			wantMissing: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckCompleteness(tt.fields)
			assert.ElementsMatch(t, tt.wantMissing, got)
		})
	}
}

func TestScoreDataQuality(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*domain.PatientParameters)
		wantScore  int
		wantIssues []string
	}{
		{
			name:       "Clean record",
			mutate:     func(p *domain.PatientParameters) {},
			wantScore:  100,
			wantIssues: []string{},
		},
		{
			name:       "Age deduction independent of other fields",
			mutate:     func(p *domain.PatientParameters) { p.Age = 110 },
			wantScore:  80,
			wantIssues: []string{"Age outside typical range"},
		},
		{
			name:       "BP deduction",
			mutate:     func(p *domain.PatientParameters) { p.RestingBP = 210 },
			wantScore:  85,
			wantIssues: []string{"BP outside typical range"},
		},
		{
			name:       "Cholesterol deduction",
			mutate:     func(p *domain.PatientParameters) { p.Cholesterol = 450 },
			wantScore:  85,
			wantIssues: []string{"Cholesterol outside typical range"},
		},
		{
			name:       "Heart rate deduction",
			mutate:     func(p *domain.PatientParameters) { p.MaxHeartRate = 55 },
			wantScore:  90,
			wantIssues: []string{"Very low max heart rate"},
		},
		{
			name:       "ST depression deduction",
			mutate:     func(p *domain.PatientParameters) { p.STDepression = 6.5 },
			wantScore:  90,
			wantIssues: []string{"Extreme ST depression"},
		},
		{
			name: "All deductions accumulate",
			mutate: func(p *domain.PatientParameters) {
				p.Age = 110
				p.RestingBP = 210
				p.Cholesterol = 450
				p.MaxHeartRate = 55
				p.STDepression = 6.5
			},
			wantScore: 30,
			wantIssues: []string{
				"Age outside typical range",
				"BP outside typical range",
				"Cholesterol outside typical range",
				"Very low max heart rate",
				"Extreme ST depression",
			},
		},
		{
			name:       "Quality bands are wider than advisory bands",
			mutate:     func(p *domain.PatientParameters) { p.RestingBP = 190 },
			wantScore:  100,
			wantIssues: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baselineParams()
			tt.mutate(&p)
			got := ScoreDataQuality(p)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantIssues, got.Issues)
		})
	}
}

func TestScoreDataQuality_Bounds(t *testing.T) {
	// Even the worst possible record stays within [0,100].
	p := domain.PatientParameters{
		Age:          -5,
		RestingBP:    -10,
		Cholesterol:  -10,
		MaxHeartRate: -10,
		STDepression: 99,
	}
	got := ScoreDataQuality(p)
	assert.GreaterOrEqual(t, got.Score, 0)
	assert.LessOrEqual(t, got.Score, 100)
}

func filterDimension(advisories []domain.Advisory, dim domain.Dimension) []domain.Advisory {
	out := make([]domain.Advisory, 0, 1)
	for _, a := range advisories {
		if a.Dimension == dim {
			out = append(out, a)
		}
	}
	return out
}
