// Package cmd defines the command-line interface for sprintlens.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(efficiencyCmd)
	rootCmd.AddCommand(knowledgeCmd)
	rootCmd.AddCommand(timestatsCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("project", "p", "", "Jira project key (e.g. PROJ)")
	rootCmd.PersistentFlags().Int("board", 0, "Agile board ID used to discover sprints")
	rootCmd.PersistentFlags().StringP("sprints", "s", "", "Comma-separated sprint IDs (e.g. 44,45,46)")
	rootCmd.PersistentFlags().String("input-file", "", "Path to a JSON sprint export for offline analysis")
	rootCmd.PersistentFlags().String("jira-url", "", "Jira base URL (e.g. https://company.atlassian.net)")
	rootCmd.PersistentFlags().String("jira-user", "", "Jira account email for basic auth (token via SPRINTLENS_JIRA_TOKEN)")
	rootCmd.PersistentFlags().String("story-point-fields", "", "Comma-separated custom field IDs probed for story points")
	rootCmd.PersistentFlags().Float64("days-per-point", schema.DefaultDaysPerPoint, "Expected days of work per story point")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-ttl", "24 hours", "How long cached sprint data stays fresh (e.g. '24 hours', '7 days')")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of timestatsCmd to Viper
	timestatsCmd.Flags().String("group-by", "", "Group resolution times by: assignee or type or component")
	if err := viper.BindPFlags(timestatsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding timestats flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
