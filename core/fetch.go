package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"
)

// currentCacheVersion defines the version of the cache payload schema
const currentCacheVersion = 1

// FetchDataset retrieves a sprint's full dataset, consulting the cache store
// first. A closed sprint never changes, so cached datasets are served until
// the configured TTL expires or the payload version moves.
func FetchDataset(ctx context.Context, cfg *contract.Config, client contract.IssueClient, mgr contract.CacheManager, sprintID int) (*schema.Dataset, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetDatasetStore()
	}
	if store == nil {
		// Fallback to direct fetching
		return fetchDataset(ctx, cfg, client, sprintID)
	}

	key := generateCacheKey(cfg, sprintID)

	// Check for cache hit
	if ds := checkCacheHit(store, key, cfg.CacheTTL); ds != nil {
		return ds, nil
	}

	// Cache miss: fetch and store
	return fetchAndStore(ctx, cfg, client, store, key, sprintID)
}

// fetchDataset pulls the sprint metadata and its full issue list.
func fetchDataset(ctx context.Context, cfg *contract.Config, client contract.IssueClient, sprintID int) (*schema.Dataset, error) {
	sprint, err := client.GetSprint(ctx, sprintID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sprint %d: %w", sprintID, err)
	}

	issues, err := client.FetchSprintIssues(ctx, sprintID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues for sprint %d: %w", sprintID, err)
	}

	return &schema.Dataset{Sprint: sprint, Issues: issues}, nil
}

// checkCacheHit attempts to retrieve and validate a cached dataset
func checkCacheHit(store contract.CacheStore, key string, ttl time.Duration) *schema.Dataset {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if time.Since(entryTimestamp) <= ttl {
			var ds schema.Dataset
			if err := json.Unmarshal(data, &ds); err == nil {
				return &ds // Cache hit
			}
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// fetchAndStore fetches the dataset and stores it in cache
func fetchAndStore(ctx context.Context, cfg *contract.Config, client contract.IssueClient, store contract.CacheStore, key string, sprintID int) (*schema.Dataset, error) {
	ds, err := fetchDataset(ctx, cfg, client, sprintID)
	if err != nil {
		return nil, err
	}

	// Store in cache
	if data, err := json.Marshal(ds); err == nil {
		_ = store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}

	return ds, nil
}

// generateCacheKey creates a unique key based on the data source parameters.
// The story point field list is part of the key since remapping fields
// changes the decoded dataset.
func generateCacheKey(cfg *contract.Config, sprintID int) string {
	source := cfg.JiraBaseURL
	if cfg.InputFile != "" {
		source = cfg.InputFile
	}

	key := fmt.Sprintf("%s:%s:%d:%s",
		source,
		cfg.ProjectKey,
		sprintID,
		strings.Join(cfg.StoryPointFields, ","),
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
