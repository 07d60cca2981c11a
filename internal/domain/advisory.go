package domain

// Severity represents the severity of a clinical advisory.
type Severity string

const (
	// SeverityError indicates a clinically implausible or dangerous reading.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates a value outside the preferred range but plausible.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational context with no action implied.
	SeverityInfo Severity = "INFO"
)

// Dimension identifies the clinical dimension an advisory refers to.
type Dimension string

const (
	DimensionAge          Dimension = "age"
	DimensionBloodPress   Dimension = "resting_bp"
	DimensionCholesterol  Dimension = "cholesterol"
	DimensionMaxHeartRate Dimension = "max_heart_rate"
	DimensionSTDepression Dimension = "st_depression"
	DimensionMajorVessels Dimension = "major_vessels"
)

// Advisory is a single (severity, message) pair produced by the validation
// engine for one clinical dimension. Advisories never stop an assessment;
// they are surfaced to the caller verbatim.
type Advisory struct {
	Dimension Dimension `json:"dimension"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
}

// IsError returns true if this is an error advisory.
func (a Advisory) IsError() bool {
	return a.Severity == SeverityError
}

// IsWarning returns true if this is a warning advisory.
func (a Advisory) IsWarning() bool {
	return a.Severity == SeverityWarning
}

// String returns a human-readable representation of the advisory.
func (a Advisory) String() string {
	return string(a.Severity) + ": " + a.Message
}

// QualityReport is the 0-100 data-quality heuristic for one input record.
// The score is independent of advisory severities; it uses wider
// plausibility bands than the advisory thresholds.
type QualityReport struct {
	Score  int      `json:"score"`
	Issues []string `json:"issues"`
}

// VitalReading classifies one vital sign into a coarse display band.
type VitalReading string

const (
	VitalNormal     VitalReading = "NORMAL"
	VitalBorderline VitalReading = "BORDERLINE"
	VitalAbnormal   VitalReading = "ABNORMAL"
)

// VitalStatus is the coarse per-vital banding shown alongside an
// assessment. It is presentation-oriented and deliberately uses different
// cutoffs than the advisory rules.
type VitalStatus struct {
	BloodPressure VitalReading `json:"blood_pressure"`
	Cholesterol   VitalReading `json:"cholesterol"`
	MaxHeartRate  VitalReading `json:"max_heart_rate"`
	STDepression  VitalReading `json:"st_depression"`
}
