package schema

// Custom string types for type safety.
type (
	// Dimension names one of the efficiency sub-scores.
	Dimension string

	// Factor names one of the knowledge-distribution sub-scores.
	Factor string

	// Level is a qualitative classification on one of the fixed scales.
	Level string

	// Severity grades a risk finding.
	Severity string

	// RiskType identifies the kind of a risk finding.
	RiskType string

	// HealthLabel is the qualitative team-health verdict.
	HealthLabel string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string
)

// Efficiency dimensions. Order matters for deterministic output.
const (
	VelocityDim       Dimension = "velocity"
	QualityDim        Dimension = "quality"
	PredictabilityDim Dimension = "predictability"
	StabilityDim      Dimension = "stability"
)

// AllDimensions lists the efficiency dimensions in display order.
var AllDimensions = []Dimension{VelocityDim, QualityDim, PredictabilityDim, StabilityDim}

// Knowledge-distribution factors.
const (
	ConcentrationFactor Factor = "concentration"
	DiversityFactor     Factor = "diversity"
	CoverageFactor      Factor = "coverage"
	BusFactorFactor     Factor = "bus_factor"
)

// AllFactors lists the distribution factors in display order.
var AllFactors = []Factor{ConcentrationFactor, DiversityFactor, CoverageFactor, BusFactorFactor}

// Classification levels shared by the concentration, risk, diversity and
// coverage scales. Concentration and risk use the same labels with different
// thresholds; they are two independent scales.
const (
	CriticalLevel Level = "Critical"
	HighLevel     Level = "High"
	MediumLevel   Level = "Medium"
	LowLevel      Level = "Low"
	WideLevel     Level = "Wide"
	LimitedLevel  Level = "Limited"
)

// Risk finding severities.
const (
	HighSeverity   Severity = "high"
	MediumSeverity Severity = "medium"
	LowSeverity    Severity = "low"
)

// Risk finding types.
const (
	HighConcentrationRisk   RiskType = "high_concentration"
	MediumConcentrationRisk RiskType = "medium_concentration"
	LowDiversityRisk        RiskType = "low_diversity"
	LowCoverageRisk         RiskType = "low_coverage"
)

// Team health labels.
const (
	ExcellentHealth     HealthLabel = "Excellent"
	GoodHealth          HealthLabel = "Good"
	RegularHealth       HealthLabel = "Regular"
	AtRiskHealth        HealthLabel = "At Risk"
	CriticalHealth      HealthLabel = "Critical"
	IndeterminateHealth HealthLabel = "Indeterminate"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All persistence backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid persistence backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// GetEfficiencyWeights returns the default weight table for the sprint
// efficiency score. Weights sum to 1.0; the final score is the weighted sum
// of the four dimension scores.
func GetEfficiencyWeights() map[Dimension]float64 {
	return map[Dimension]float64{
		VelocityDim:       0.30,
		QualityDim:        0.25,
		PredictabilityDim: 0.25,
		StabilityDim:      0.20,
	}
}

// GetDistributionWeights returns the default weight table for the knowledge
// distribution score. Weights sum to 1.0.
func GetDistributionWeights() map[Factor]float64 {
	return map[Factor]float64{
		ConcentrationFactor: 0.40,
		DiversityFactor:     0.25,
		CoverageFactor:      0.25,
		BusFactorFactor:     0.10,
	}
}

// DefaultDaysPerPoint converts a story-point estimate into estimated days for
// the predictability score. The 1 point = 1 day equivalence is an assumption,
// not a validated constant, which is why it is configurable rather than
// inlined in the engine.
const DefaultDaysPerPoint = 1.0

// efficiencyBands maps score floors to classification labels, ordered from
// best to worst. The first band whose floor the score reaches wins.
var efficiencyBands = []struct {
	Min   float64
	Label string
}{
	{90, "Excellent"},
	{80, "Very Good"},
	{70, "Good"},
	{60, "Regular"},
	{50, "Low"},
	{0, "Critical"},
}

// ClassifyEfficiency maps a final efficiency score to its qualitative label.
func ClassifyEfficiency(score float64) string {
	for _, band := range efficiencyBands {
		if score >= band.Min {
			return band.Label
		}
	}
	return "Critical"
}

// AssessTeamHealth derives the qualitative team-health label from the
// distribution score and bus factor.
func AssessTeamHealth(distributionScore float64, busFactor int) HealthLabel {
	switch {
	case distributionScore >= 80 && busFactor >= 3:
		return ExcellentHealth
	case distributionScore >= 70 && busFactor >= 2:
		return GoodHealth
	case distributionScore >= 60:
		return RegularHealth
	case distributionScore >= 40:
		return AtRiskHealth
	default:
		return CriticalHealth
	}
}
