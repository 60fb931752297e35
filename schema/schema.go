// Package schema has configs, models and constant tables for all parts of sprintlens.
package schema

import (
	"math"
	"time"
)

// Issue represents a single tracked work item fetched from the issue tracker.
// Every field except Key, ItemType and Status is optional; absent timestamps
// stay nil rather than defaulting to a zero time.
type Issue struct {
	Key         string     `json:"key"`
	Summary     string     `json:"summary,omitempty"`
	ItemType    string     `json:"item_type"`
	Status      string     `json:"status"`
	Assignee    string     `json:"assignee,omitempty"`
	Component   string     `json:"component,omitempty"`
	StoryPoints float64    `json:"story_points,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Resolved reports whether the item carries a resolution timestamp.
// Workflow status text is deliberately ignored here; trackers disagree on
// status vocabulary but a resolution timestamp is unambiguous.
func (i *Issue) Resolved() bool {
	return i.ResolvedAt != nil
}

// ResolutionDays returns the whole days between creation and resolution.
// ok is false when either timestamp is missing. Callers computing statistics
// must skip rows where ok is false instead of substituting zero.
func (i *Issue) ResolutionDays() (days float64, ok bool) {
	if i.CreatedAt == nil || i.ResolvedAt == nil {
		return 0, false
	}
	return math.Floor(i.ResolvedAt.Sub(*i.CreatedAt).Hours() / 24), true
}

// SprintInfo carries sprint metadata supplied by the tracker.
// StartDate feeds the stability score; a nil StartDate means the score
// falls back to its documented default.
type SprintInfo struct {
	ID        int        `json:"id"`
	Name      string     `json:"name,omitempty"`
	State     string     `json:"state,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Dataset is an immutable snapshot of one sprint's issues.
// Engines never mutate it; every analysis returns freshly built results.
type Dataset struct {
	Sprint SprintInfo `json:"sprint"`
	Issues []Issue    `json:"issues"`
}

// Len returns the number of issues in the dataset.
func (d *Dataset) Len() int {
	return len(d.Issues)
}

// ResolvedSubset returns the issues whose resolution days are defined,
// i.e. both creation and resolution timestamps are present.
func (d *Dataset) ResolvedSubset() []Issue {
	resolved := make([]Issue, 0, len(d.Issues))
	for _, iss := range d.Issues {
		if _, ok := iss.ResolutionDays(); ok {
			resolved = append(resolved, iss)
		}
	}
	return resolved
}

// CompletedCount returns the number of issues with a resolution timestamp.
func (d *Dataset) CompletedCount() int {
	n := 0
	for _, iss := range d.Issues {
		if iss.Resolved() {
			n++
		}
	}
	return n
}
