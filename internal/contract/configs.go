package contract

import (
	"fmt"
	"maps"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/tcandido/sprintlens/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 1
	DefaultCacheTTL    = 24 * time.Hour
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DefaultStoryPointFields are the Jira custom field IDs probed, in order,
// for a story point estimate. Instances vary; the first non-null wins.
var DefaultStoryPointFields = []string{
	"customfield_10016",
	"customfield_10026",
	"customfield_10031",
	"customfield_10010",
}

// EfficiencyWeightsRaw holds custom efficiency dimension weights from the
// YAML config file. Use float64 pointers so absent fields keep defaults.
type EfficiencyWeightsRaw struct {
	Velocity       *float64 `mapstructure:"velocity"`
	Quality        *float64 `mapstructure:"quality"`
	Predictability *float64 `mapstructure:"predictability"`
	Stability      *float64 `mapstructure:"stability"`
}

// DistributionWeightsRaw holds custom knowledge distribution factor weights
// from the YAML config file.
type DistributionWeightsRaw struct {
	Concentration *float64 `mapstructure:"concentration"`
	Diversity     *float64 `mapstructure:"diversity"`
	Coverage      *float64 `mapstructure:"coverage"`
	BusFactor     *float64 `mapstructure:"bus_factor"`
}

// WeightsRawInput holds all custom scoring definitions from the YAML config file.
type WeightsRawInput struct {
	Efficiency   *EfficiencyWeightsRaw   `mapstructure:"efficiency"`
	Distribution *DistributionWeightsRaw `mapstructure:"distribution"`
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	ProjectKey string
	BoardID    int
	SprintIDs  []int
	InputFile  string // JSON issue export; when set, no network access happens

	JiraBaseURL      string
	JiraUser         string
	StoryPointFields []string

	DaysPerPoint float64
	GroupBy      string // assignee, type or component

	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	// CustomEfficiencyWeights holds only the overridden dimension weights.
	CustomEfficiencyWeights map[schema.Dimension]float64

	// ComputedEfficiencyWeights is the final weight table, defaults merged
	// with overrides.
	ComputedEfficiencyWeights map[schema.Dimension]float64

	// CustomDistributionWeights holds only the overridden factor weights.
	CustomDistributionWeights map[schema.Factor]float64

	// ComputedDistributionWeights is the final weight table, defaults merged
	// with overrides.
	ComputedDistributionWeights map[schema.Factor]float64

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Project           string `mapstructure:"project"`
	Board             int    `mapstructure:"board"`
	Sprints           string `mapstructure:"sprints"`
	InputFile         string `mapstructure:"input-file"`
	JiraURL           string `mapstructure:"jira-url"`
	JiraUser          string `mapstructure:"jira-user"`
	StoryPointFields  string `mapstructure:"story-point-fields"`
	DaysPerPoint      float64 `mapstructure:"days-per-point"`
	Limit             int    `mapstructure:"limit"`
	Workers           int    `mapstructure:"workers"`
	Precision         int    `mapstructure:"precision"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Width             int    `mapstructure:"width"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	CacheTTL          string `mapstructure:"cache-ttl"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	Emoji             string `mapstructure:"emoji"`
	Color             string `mapstructure:"color"`

	// --- Fields from timestatsCmd.Flags() ---
	GroupBy string `mapstructure:"group-by"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.SprintIDs != nil {
		clone.SprintIDs = make([]int, len(c.SprintIDs))
		copy(clone.SprintIDs, c.SprintIDs)
	}
	if c.StoryPointFields != nil {
		clone.StoryPointFields = make([]string, len(c.StoryPointFields))
		copy(clone.StoryPointFields, c.StoryPointFields)
	}
	if c.CustomEfficiencyWeights != nil {
		clone.CustomEfficiencyWeights = maps.Clone(c.CustomEfficiencyWeights)
	}
	if c.ComputedEfficiencyWeights != nil {
		clone.ComputedEfficiencyWeights = maps.Clone(c.ComputedEfficiencyWeights)
	}
	if c.CustomDistributionWeights != nil {
		clone.CustomDistributionWeights = maps.Clone(c.CustomDistributionWeights)
	}
	if c.ComputedDistributionWeights != nil {
		clone.ComputedDistributionWeights = maps.Clone(c.ComputedDistributionWeights)
	}
	return &clone
}

// CloneWithSprint creates a copy of the Config scoped to a single sprint.
func (c *Config) CloneWithSprint(sprintID int) *Config {
	clone := c.Clone()
	clone.SprintIDs = []int{sprintID}
	return clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw
// inputs and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSource(cfg, input); err != nil {
		return err
	}
	if err := processCustomWeights(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection
// strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		ttl, err := ParseHumanDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache-ttl: %w", err)
		}
		cfg.CacheTTL = ttl
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend != "" {
		if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
			return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
		}
		cfg.AnalysisDBConnect = input.AnalysisDBConnect
		if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
			return err
		}

		// Cache and analysis must use different databases
		if cfg.CacheBackend == cfg.AnalysisBackend && cfg.CacheBackend != schema.NoneBackend {
			// For SQLite, resolve to actual file paths to catch default path conflicts
			if cfg.CacheBackend == schema.SQLiteBackend {
				cacheDBPath := cfg.CacheDBConnect
				if cacheDBPath == "" {
					cacheDBPath = GetCacheDBFilePath()
				}
				analysisDBPath := cfg.AnalysisDBConnect
				if analysisDBPath == "" {
					analysisDBPath = GetAnalysisDBFilePath()
				}
				if cacheDBPath == analysisDBPath {
					return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
				}
			}
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-source related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. DaysPerPoint Validation ---
	if input.DaysPerPoint <= 0 {
		return fmt.Errorf("days-per-point must be greater than 0 (received %v)", input.DaysPerPoint)
	}
	cfg.DaysPerPoint = input.DaysPerPoint

	// --- 4. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}

	// --- 5. GroupBy Validation ---
	cfg.GroupBy = strings.ToLower(strings.TrimSpace(input.GroupBy))
	switch cfg.GroupBy {
	case "", "assignee", "type", "component":
	default:
		return fmt.Errorf("invalid group-by '%s'. must be assignee, type, component", input.GroupBy)
	}

	// --- 6. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processSource validates the data source: either an input file or a Jira
// connection with at least one sprint to analyze.
func processSource(cfg *Config, input *ConfigRawInput) error {
	cfg.InputFile = strings.TrimSpace(input.InputFile)
	cfg.ProjectKey = strings.TrimSpace(input.Project)
	cfg.BoardID = input.Board
	cfg.JiraBaseURL = strings.TrimRight(strings.TrimSpace(input.JiraURL), "/")
	cfg.JiraUser = strings.TrimSpace(input.JiraUser)

	cfg.StoryPointFields = DefaultStoryPointFields
	if fields := strings.TrimSpace(input.StoryPointFields); fields != "" {
		cfg.StoryPointFields = nil
		for part := range strings.SplitSeq(fields, ",") {
			if p := strings.TrimSpace(part); p != "" {
				cfg.StoryPointFields = append(cfg.StoryPointFields, p)
			}
		}
		if len(cfg.StoryPointFields) == 0 {
			return fmt.Errorf("story-point-fields must name at least one field")
		}
	}

	ids, err := ParseSprintIDs(input.Sprints)
	if err != nil {
		return err
	}
	cfg.SprintIDs = ids

	if cfg.InputFile != "" {
		return nil
	}
	if cfg.JiraBaseURL == "" {
		return fmt.Errorf("either --input-file or --jira-url is required")
	}
	if cfg.JiraUser == "" {
		return fmt.Errorf("--jira-user is required when connecting to Jira")
	}
	if len(cfg.SprintIDs) == 0 && cfg.BoardID == 0 {
		return fmt.Errorf("either --sprints or --board is required when connecting to Jira")
	}
	return nil
}

// processCustomWeights converts the raw input into the final weight tables
// and validates that fully overridden tables sum to 1.0.
func processCustomWeights(cfg *Config, input *ConfigRawInput) error {
	efficiency, distribution, err := ProcessWeightsRawInput(input.Weights)
	if err != nil {
		return err
	}
	cfg.CustomEfficiencyWeights = efficiency
	cfg.CustomDistributionWeights = distribution

	cfg.ComputedEfficiencyWeights = schema.GetEfficiencyWeights()
	maps.Copy(cfg.ComputedEfficiencyWeights, efficiency)
	if err := validateWeightSum("efficiency", sumDimensionWeights(cfg.ComputedEfficiencyWeights)); err != nil {
		return err
	}

	cfg.ComputedDistributionWeights = schema.GetDistributionWeights()
	maps.Copy(cfg.ComputedDistributionWeights, distribution)
	return validateWeightSum("distribution", sumFactorWeights(cfg.ComputedDistributionWeights))
}

// ProcessWeightsRawInput converts WeightsRawInput into override maps holding
// only the fields the user actually set.
func ProcessWeightsRawInput(weights WeightsRawInput) (map[schema.Dimension]float64, map[schema.Factor]float64, error) {
	efficiency := make(map[schema.Dimension]float64)
	if raw := weights.Efficiency; raw != nil {
		if raw.Velocity != nil {
			efficiency[schema.VelocityDim] = *raw.Velocity
		}
		if raw.Quality != nil {
			efficiency[schema.QualityDim] = *raw.Quality
		}
		if raw.Predictability != nil {
			efficiency[schema.PredictabilityDim] = *raw.Predictability
		}
		if raw.Stability != nil {
			efficiency[schema.StabilityDim] = *raw.Stability
		}
	}

	distribution := make(map[schema.Factor]float64)
	if raw := weights.Distribution; raw != nil {
		if raw.Concentration != nil {
			distribution[schema.ConcentrationFactor] = *raw.Concentration
		}
		if raw.Diversity != nil {
			distribution[schema.DiversityFactor] = *raw.Diversity
		}
		if raw.Coverage != nil {
			distribution[schema.CoverageFactor] = *raw.Coverage
		}
		if raw.BusFactor != nil {
			distribution[schema.BusFactorFactor] = *raw.BusFactor
		}
	}

	for dim, w := range efficiency {
		if w < 0 || w > 1 {
			return nil, nil, fmt.Errorf("efficiency weight for %s must be within [0, 1], got %.3f", dim, w)
		}
	}
	for factor, w := range distribution {
		if w < 0 || w > 1 {
			return nil, nil, fmt.Errorf("distribution weight for %s must be within [0, 1], got %.3f", factor, w)
		}
	}

	return efficiency, distribution, nil
}

func sumDimensionWeights(m map[schema.Dimension]float64) float64 {
	sum := 0.0
	for _, w := range m {
		sum += w
	}
	return sum
}

func sumFactorWeights(m map[schema.Factor]float64) float64 {
	sum := 0.0
	for _, w := range m {
		sum += w
	}
	return sum
}

func validateWeightSum(table string, sum float64) error {
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("%s weights must sum to 1.0, got %.3f", table, sum)
	}
	return nil
}

// ParseSprintIDs parses a comma-separated list like "44,45,46".
func ParseSprintIDs(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var ids []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid sprint ID '%s', expected a positive integer", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
