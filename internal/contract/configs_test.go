package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcandido/sprintlens/schema"
)

// validInput returns a raw input that passes validation, for tests to mutate.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Project:         "PROJ",
		Sprints:         "44,45",
		JiraURL:         "https://example.atlassian.net/",
		JiraUser:        "dev@example.com",
		DaysPerPoint:    1.0,
		Limit:           DefaultResultLimit,
		Workers:         4,
		Precision:       1,
		Output:          "text",
		CacheBackend:    "sqlite",
		AnalysisBackend: "none",
		Emoji:           "yes",
		Color:           "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		cfg := &Config{}
		err := ProcessAndValidate(cfg, validInput())
		require.NoError(t, err)

		assert.Equal(t, "PROJ", cfg.ProjectKey)
		assert.Equal(t, []int{44, 45}, cfg.SprintIDs)
		assert.Equal(t, "https://example.atlassian.net", cfg.JiraBaseURL)
		assert.Equal(t, schema.TextOut, cfg.Output)
		assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
		assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
		assert.Equal(t, DefaultStoryPointFields, cfg.StoryPointFields)
	})

	t.Run("computed weights default to schema tables", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(cfg, validInput()))

		assert.Equal(t, schema.GetEfficiencyWeights(), cfg.ComputedEfficiencyWeights)
		assert.Equal(t, schema.GetDistributionWeights(), cfg.ComputedDistributionWeights)
	})

	t.Run("partial weight override merges and validates sum", func(t *testing.T) {
		input := validInput()
		velocity := 0.35
		quality := 0.20
		input.Weights.Efficiency = &EfficiencyWeightsRaw{Velocity: &velocity, Quality: &quality}

		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(cfg, input))

		assert.InDelta(t, 0.35, cfg.ComputedEfficiencyWeights[schema.VelocityDim], 1e-9)
		assert.InDelta(t, 0.20, cfg.ComputedEfficiencyWeights[schema.QualityDim], 1e-9)
		// Untouched dimensions keep defaults
		assert.InDelta(t, 0.25, cfg.ComputedEfficiencyWeights[schema.PredictabilityDim], 1e-9)
		assert.InDelta(t, 0.20, cfg.ComputedEfficiencyWeights[schema.StabilityDim], 1e-9)
	})

	t.Run("weight override breaking the sum is rejected", func(t *testing.T) {
		input := validInput()
		velocity := 0.9
		input.Weights.Efficiency = &EfficiencyWeightsRaw{Velocity: &velocity}

		err := ProcessAndValidate(&Config{}, input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sum to 1.0")
	})

	t.Run("input file skips jira validation", func(t *testing.T) {
		input := validInput()
		input.JiraURL = ""
		input.JiraUser = ""
		input.Sprints = ""
		input.InputFile = "sprint44.json"

		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, "sprint44.json", cfg.InputFile)
	})

	t.Run("custom cache ttl", func(t *testing.T) {
		input := validInput()
		input.CacheTTL = "2 days"

		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, 48*time.Hour, cfg.CacheTTL)
	})

	t.Run("custom story point fields", func(t *testing.T) {
		input := validInput()
		input.StoryPointFields = "customfield_20001, customfield_20002"

		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, []string{"customfield_20001", "customfield_20002"}, cfg.StoryPointFields)
	})

	tests := []struct {
		name    string
		mutate  func(*ConfigRawInput)
		wantMsg string
	}{
		{
			name:    "zero limit",
			mutate:  func(in *ConfigRawInput) { in.Limit = 0 },
			wantMsg: "limit must be greater than 0",
		},
		{
			name:    "excessive limit",
			mutate:  func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 },
			wantMsg: "limit must be greater than 0",
		},
		{
			name:    "zero workers",
			mutate:  func(in *ConfigRawInput) { in.Workers = 0 },
			wantMsg: "workers must be greater than 0",
		},
		{
			name:    "zero days per point",
			mutate:  func(in *ConfigRawInput) { in.DaysPerPoint = 0 },
			wantMsg: "days-per-point must be greater than 0",
		},
		{
			name:    "bad precision",
			mutate:  func(in *ConfigRawInput) { in.Precision = 3 },
			wantMsg: "precision must be 1 or 2",
		},
		{
			name:    "bad output mode",
			mutate:  func(in *ConfigRawInput) { in.Output = "xml" },
			wantMsg: "invalid output format",
		},
		{
			name:    "bad group by",
			mutate:  func(in *ConfigRawInput) { in.GroupBy = "squad" },
			wantMsg: "invalid group-by",
		},
		{
			name:    "bad cache backend",
			mutate:  func(in *ConfigRawInput) { in.CacheBackend = "redis" },
			wantMsg: "invalid cache backend",
		},
		{
			name:    "bad sprint list",
			mutate:  func(in *ConfigRawInput) { in.Sprints = "44,abc" },
			wantMsg: "invalid sprint ID",
		},
		{
			name:    "negative sprint id",
			mutate:  func(in *ConfigRawInput) { in.Sprints = "-1" },
			wantMsg: "invalid sprint ID",
		},
		{
			name: "no source at all",
			mutate: func(in *ConfigRawInput) {
				in.InputFile = ""
				in.JiraURL = ""
			},
			wantMsg: "either --input-file or --jira-url",
		},
		{
			name: "jira without user",
			mutate: func(in *ConfigRawInput) {
				in.JiraUser = ""
			},
			wantMsg: "--jira-user is required",
		},
		{
			name: "jira without sprints or board",
			mutate: func(in *ConfigRawInput) {
				in.Sprints = ""
				in.Board = 0
			},
			wantMsg: "either --sprints or --board",
		},
		{
			name:    "bad emoji flag",
			mutate:  func(in *ConfigRawInput) { in.Emoji = "sometimes" },
			wantMsg: "invalid --emoji value",
		},
		{
			name:    "bad cache ttl",
			mutate:  func(in *ConfigRawInput) { in.CacheTTL = "soon" },
			wantMsg: "invalid cache-ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)

			err := ProcessAndValidate(&Config{}, input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite allows empty", schema.SQLiteBackend, "", false},
		{"none allows empty", schema.NoneBackend, "", false},
		{"mysql requires conn string", schema.MySQLBackend, "", true},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/sprintlens", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/sprintlens", true},
		{"postgres requires conn string", schema.PostgreSQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=sprintlens sslmode=disable", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	clone := cfg.Clone()
	clone.SprintIDs[0] = 99
	clone.ComputedEfficiencyWeights[schema.VelocityDim] = 0.99

	assert.Equal(t, 44, cfg.SprintIDs[0])
	assert.InDelta(t, 0.30, cfg.ComputedEfficiencyWeights[schema.VelocityDim], 1e-9)
}

func TestCloneWithSprint(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	scoped := cfg.CloneWithSprint(45)
	assert.Equal(t, []int{45}, scoped.SprintIDs)
	assert.Equal(t, []int{44, 45}, cfg.SprintIDs)
}
