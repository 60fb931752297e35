package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable = "sprintlens_analysis_runs"
	sprintScoresTable = "sprintlens_sprint_scores"
)

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetAnalysisDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &AnalysisStoreImpl{
			db:         nil,
			backend:    backend,
			driverName: "",
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Check that the server is running and the connection string is correct", backend, err)
	}

	// Create the table schemas
	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{analysisRunsTable, getCreateAnalysisRunsQuery(backend)},
		{sprintScoresTable, getCreateSprintScoresQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for sprintlens_analysis_runs.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysisRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_sprints_analyzed INT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_sprints_analyzed INT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_sprints_analyzed INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateSprintScoresQuery returns the CREATE TABLE query for sprintlens_sprint_scores.
func getCreateSprintScoresQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(sprintScoresTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				sprint_id INT NOT NULL,
				sprint_name VARCHAR(255),
				analysis_time DATETIME(6) NOT NULL,
				total_items INT NOT NULL,
				completed_items INT NOT NULL,
				score_efficiency DOUBLE NOT NULL,
				score_velocity DOUBLE NOT NULL,
				score_quality DOUBLE NOT NULL,
				score_predictability DOUBLE NOT NULL,
				score_stability DOUBLE NOT NULL,
				classification VARCHAR(50) NOT NULL,
				score_distribution DOUBLE NOT NULL,
				bus_factor INT NOT NULL,
				team_health VARCHAR(50) NOT NULL,
				PRIMARY KEY (analysis_id, sprint_id)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				sprint_id INT NOT NULL,
				sprint_name TEXT,
				analysis_time TIMESTAMPTZ NOT NULL,
				total_items INT NOT NULL,
				completed_items INT NOT NULL,
				score_efficiency DOUBLE PRECISION NOT NULL,
				score_velocity DOUBLE PRECISION NOT NULL,
				score_quality DOUBLE PRECISION NOT NULL,
				score_predictability DOUBLE PRECISION NOT NULL,
				score_stability DOUBLE PRECISION NOT NULL,
				classification TEXT NOT NULL,
				score_distribution DOUBLE PRECISION NOT NULL,
				bus_factor INT NOT NULL,
				team_health TEXT NOT NULL,
				PRIMARY KEY (analysis_id, sprint_id)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER NOT NULL,
				sprint_id INTEGER NOT NULL,
				sprint_name TEXT,
				analysis_time TEXT NOT NULL,
				total_items INTEGER NOT NULL,
				completed_items INTEGER NOT NULL,
				score_efficiency REAL NOT NULL,
				score_velocity REAL NOT NULL,
				score_quality REAL NOT NULL,
				score_predictability REAL NOT NULL,
				score_stability REAL NOT NULL,
				classification TEXT NOT NULL,
				score_distribution REAL NOT NULL,
				bus_factor INTEGER NOT NULL,
				team_health TEXT NOT NULL,
				PRIMARY KEY (analysis_id, sprint_id)
			);
		`, quotedTableName)
	}
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING analysis_id`, quotedTableName)
		err = as.db.QueryRow(query, startTime, string(configJSON)).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, formatTime(startTime, as.backend), string(configJSON))
		if err != nil {
			return 0, err
		}
		analysisID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}

	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, totalSprints int) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	// First, get the start_time to calculate duration
	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	var startTime time.Time

	var query string
	switch as.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = ?`, quotedTableName)
	}

	row := as.db.QueryRow(query, analysisID)

	// Handle different time storage formats per backend
	switch as.backend {
	case schema.SQLiteBackend:
		var startTimeStr string
		if err := row.Scan(&startTimeStr); err != nil {
			return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
		}
		var err error
		startTime, err = time.Parse(time.RFC3339Nano, startTimeStr)
		if err != nil {
			return fmt.Errorf("failed to parse start_time: %w", err)
		}
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&startTime); err != nil {
			return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
		}
	}

	// Calculate duration in milliseconds
	durationMs := endTime.Sub(startTime).Milliseconds()

	// Update the analysis run with completion data
	var updateQuery string
	var args []any

	switch as.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_sprints_analyzed = $3 WHERE analysis_id = $4`, quotedTableName)
		args = []any{endTime, durationMs, totalSprints, analysisID}
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_sprints_analyzed = ? WHERE analysis_id = ?`, quotedTableName)
		args = []any{formatTime(endTime, as.backend), durationMs, totalSprints, analysisID}
	}

	_, err := as.db.Exec(updateQuery, args...)
	if err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}

	return nil
}

// RecordSprintScores stores the computed scores for one sprint.
func (as *AnalysisStoreImpl) RecordSprintScores(analysisID int64, scores schema.SprintScores) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(sprintScoresTable, as.backend)

	columns := `analysis_id, sprint_id, sprint_name, analysis_time, total_items, completed_items,
	             score_efficiency, score_velocity, score_quality, score_predictability, score_stability,
	             classification, score_distribution, bus_factor, team_health`

	var query string
	switch as.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			quotedTableName, columns)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			quotedTableName, columns)
	}

	args := []any{
		analysisID, scores.SprintID, scores.SprintName, formatTime(scores.AnalysisTime, as.backend),
		scores.TotalItems, scores.CompletedItems,
		scores.EfficiencyScore, scores.VelocityScore, scores.QualityScore,
		scores.PredictabilityScore, scores.StabilityScore, scores.Classification,
		scores.DistributionScore, scores.BusFactor, scores.TeamHealth,
	}

	if _, err := as.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert sprint scores: %w", err)
	}

	return nil
}

// ListSprintScores returns persisted sprint scores, newest analysis first.
// A limit of 0 returns every row.
func (as *AnalysisStoreImpl) ListSprintScores(limit int) ([]schema.SprintScores, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(sprintScoresTable, as.backend)
	query := fmt.Sprintf(`SELECT sprint_id, sprint_name, analysis_time, total_items, completed_items,
	    score_efficiency, score_velocity, score_quality, score_predictability, score_stability,
	    classification, score_distribution, bus_factor, team_health
	    FROM %s ORDER BY analysis_id DESC, sprint_id ASC`, quotedTableName)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sprint scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SprintScores

	for rows.Next() {
		var record schema.SprintScores

		switch as.backend {
		case schema.SQLiteBackend:
			var analysisTimeStr string
			if err := rows.Scan(&record.SprintID, &record.SprintName, &analysisTimeStr,
				&record.TotalItems, &record.CompletedItems,
				&record.EfficiencyScore, &record.VelocityScore, &record.QualityScore,
				&record.PredictabilityScore, &record.StabilityScore, &record.Classification,
				&record.DistributionScore, &record.BusFactor, &record.TeamHealth); err != nil {
				return nil, fmt.Errorf("failed to scan sprint scores: %w", err)
			}
			analysisTime, err := time.Parse(time.RFC3339Nano, analysisTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse analysis_time: %w", err)
			}
			record.AnalysisTime = analysisTime
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.SprintID, &record.SprintName, &record.AnalysisTime,
				&record.TotalItems, &record.CompletedItems,
				&record.EfficiencyScore, &record.VelocityScore, &record.QualityScore,
				&record.PredictabilityScore, &record.StabilityScore, &record.Classification,
				&record.DistributionScore, &record.BusFactor, &record.TeamHealth); err != nil {
				return nil, fmt.Errorf("failed to scan sprint scores: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sprint scores: %w", err)
	}

	return results, nil
}

// ListAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) ListAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	query := fmt.Sprintf("SELECT analysis_id, start_time, end_time, run_duration_ms, total_sprints_analyzed, config_params FROM %s ORDER BY analysis_id", quotedTableName)

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord

	for rows.Next() {
		var record schema.AnalysisRunRecord
		var totalSprints *int32

		switch as.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.AnalysisID, &startTimeStr, &endTimeStr, &record.RunDurationMs, &totalSprints, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan analysis run: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.AnalysisID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &totalSprints, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan analysis run: %w", err)
			}
		}

		if totalSprints != nil {
			record.TotalSprints = *totalSprints
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}

	return results, nil
}

// Clear removes all analysis history from both tables.
func (as *AnalysisStoreImpl) Clear() error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	for _, table := range []string{sprintScoresTable, analysisRunsTable} {
		query := fmt.Sprintf("DELETE FROM %s", quoteTableName(table, as.backend))
		if _, err := as.db.Exec(query); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    as.backend,
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}

	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	// Get total runs
	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(analysisRunsTable, as.backend))
	row := as.db.QueryRow(runsQuery)
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// Get last run info
		lastRunQuery := fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", quoteTableName(analysisRunsTable, as.backend))
		row = as.db.QueryRow(lastRunQuery)

		switch as.backend {
		case schema.SQLiteBackend:
			var lastRunTimeStr string
			if err := row.Scan(&status.LastRunID, &lastRunTimeStr); err != nil {
				return status, fmt.Errorf("failed to get last run info: %w", err)
			}
			lastRunTime, err := time.Parse(time.RFC3339Nano, lastRunTimeStr)
			if err != nil {
				return status, fmt.Errorf("failed to parse last run time: %w", err)
			}
			status.LastRunTime = lastRunTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := row.Scan(&status.LastRunID, &status.LastRunTime); err != nil {
				return status, fmt.Errorf("failed to get last run info: %w", err)
			}
		}

		// Get oldest run time
		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", quoteTableName(analysisRunsTable, as.backend))
		row = as.db.QueryRow(oldestRunQuery)

		switch as.backend {
		case schema.SQLiteBackend:
			var oldestRunTimeStr string
			if err := row.Scan(&oldestRunTimeStr); err != nil {
				return status, fmt.Errorf("failed to get oldest run time: %w", err)
			}
			oldestRunTime, err := time.Parse(time.RFC3339Nano, oldestRunTimeStr)
			if err != nil {
				return status, fmt.Errorf("failed to parse oldest run time: %w", err)
			}
			status.OldestRunTime = oldestRunTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := row.Scan(&status.OldestRunTime); err != nil {
				return status, fmt.Errorf("failed to get oldest run time: %w", err)
			}
		}

		// Get total sprints scored
		sprintsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_sprints_analyzed), 0) FROM %s", quoteTableName(analysisRunsTable, as.backend))
		row = as.db.QueryRow(sprintsQuery)
		if err := row.Scan(&status.TotalSprintsScored); err != nil {
			return status, fmt.Errorf("failed to get total sprints scored: %w", err)
		}
	}

	// Get table sizes
	tables := []string{analysisRunsTable, sprintScoresTable}
	for _, table := range tables {
		quotedTable := quoteTableName(table, as.backend)
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTable)
		row = as.db.QueryRow(countQuery)
		var count int64
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.Format(time.RFC3339Nano)
	default:
		return t
	}
}
