// Package main provides a performance benchmarking tool for the Sprintlens CLI.
// It measures execution times across different sprint dataset sizes and command
// types, running each test multiple times, treating the first successful run as
// cold and averaging the rest as warm, generating CSV output for performance
// analysis and documentation.
//
// Prerequisites:
// - sprintlens binary installed and available in PATH
//
// Usage: go run benchmark/main.go [dataset-dir]
//
//	dataset-dir: Directory where synthetic sprint exports are generated
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/tcandido/sprintlens/schema"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DatasetDir   string
	Timeout      time.Duration
	Workers      int
	NoCacheRuns  int
	CacheRuns    int
	DatasetSizes map[string]int
	Commands     []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [dataset-dir]\n", os.Args[0])
		os.Exit(1)
	}
	datasetDir := os.Args[1]

	config := BenchmarkConfig{
		DatasetDir:  datasetDir,
		Timeout:     time.Minute,
		Workers:     4,
		NoCacheRuns: 3,
		CacheRuns:   4,
		DatasetSizes: map[string]int{
			"small":  50,
			"medium": 500,
			"large":  5000,
		},
		Commands: []string{"summary", "efficiency", "knowledge", "timestats", "metrics"},
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	if err := generateDatasets(config); err != nil {
		fmt.Printf("Dataset generation failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the cache using sprintlens cache clear
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("sprintlens", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the sprintlens binary exists
func checkPrerequisites() error {
	if _, err := exec.LookPath("sprintlens"); err != nil {
		return fmt.Errorf("sprintlens binary not found in PATH")
	}
	return nil
}

// generateDatasets writes one synthetic sprint export per configured size
func generateDatasets(config BenchmarkConfig) error {
	if err := os.MkdirAll(config.DatasetDir, 0o755); err != nil {
		return err
	}

	for name, size := range config.DatasetSizes {
		path := datasetPath(config, name)
		ds := syntheticDataset(name, size)
		data, err := json.Marshal(ds)
		if err != nil {
			return fmt.Errorf("failed to encode dataset %s: %w", name, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write dataset %s: %w", name, err)
		}
		fmt.Printf("Generated %s dataset with %d issues at %s\n", name, size, path)
	}
	return nil
}

// syntheticDataset builds a closed sprint with a plausible mix of types,
// statuses, assignees and timestamps.
func syntheticDataset(name string, size int) *schema.Dataset {
	people := []string{"Ana Silva", "Bruno Costa", "Carla Dias", "Diego Rocha", "Elisa Prado"}
	types := []string{"História", "Bug", "Débito Técnico", "Spike"}
	components := []string{"api", "frontend", "billing", "infra"}

	end := time.Now()
	start := end.Add(-14 * 24 * time.Hour)

	issues := make([]schema.Issue, 0, size)
	for i := 0; i < size; i++ {
		created := start.Add(time.Duration(i%10) * 12 * time.Hour)
		issue := schema.Issue{
			Key:         fmt.Sprintf("BENCH-%d", i+1),
			Summary:     fmt.Sprintf("Synthetic item %d", i+1),
			ItemType:    types[i%len(types)],
			Status:      "Concluído",
			Assignee:    people[i%len(people)],
			Component:   components[i%len(components)],
			StoryPoints: float64(1 + i%8),
			CreatedAt:   &created,
		}
		// Leave every fifth item unresolved
		if i%5 != 0 {
			resolved := created.Add(time.Duration(1+i%6) * 24 * time.Hour)
			issue.ResolvedAt = &resolved
		} else {
			issue.Status = "Em Progresso"
		}
		issues = append(issues, issue)
	}

	return &schema.Dataset{
		Sprint: schema.SprintInfo{
			ID:        9000 + size,
			Name:      fmt.Sprintf("Benchmark %s", name),
			State:     "closed",
			StartDate: &start,
			EndDate:   &end,
		},
		Issues: issues,
	}
}

func datasetPath(config BenchmarkConfig, name string) string {
	return filepath.Join(config.DatasetDir, fmt.Sprintf("sprint_%s.json", name))
}

// runBenchmarks executes all benchmark tests across configured datasets
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.DatasetSizes), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for name := range config.DatasetSizes {
		fmt.Printf("Benchmarking %s dataset\n", name)

		inputFile := datasetPath(config, name)
		for _, command := range config.Commands {
			result := runBenchmarkSuite(config, name, inputFile, command)
			results = append(results, result)
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataset, inputFile, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, dataset)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, inputFile, command, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     dataset,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a sprintlens command multiple times with the specified
// cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, inputFile, command, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		command,
		"--input-file", inputFile,
		"--cache-backend", cacheBackend,
		"--workers", fmt.Sprintf("%d", config.Workers),
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("sprintlens", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Analysis completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/sprintlens_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}

	fmt.Printf("Benchmark script completed successfully\n")
}
