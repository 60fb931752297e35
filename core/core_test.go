package core

import (
	"time"

	"github.com/tcandido/sprintlens/schema"
)

// Shared fixtures for engine tests.

// testSprintStart anchors every fixture timeline.
var testSprintStart = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

// testSprint returns sprint metadata with a start date.
func testSprint() schema.SprintInfo {
	return schema.SprintInfo{
		ID:        44,
		Name:      "Sprint 44",
		State:     "closed",
		StartDate: timePtr(testSprintStart),
		EndDate:   timePtr(testSprintStart.Add(14 * 24 * time.Hour)),
	}
}

// openItem returns an unresolved issue created before the sprint start.
func openItem(key, itemType, status, assignee string) schema.Issue {
	created := testSprintStart.Add(-5 * 24 * time.Hour)
	return schema.Issue{
		Key:       key,
		ItemType:  itemType,
		Status:    status,
		Assignee:  assignee,
		CreatedAt: timePtr(created),
	}
}

// doneItem returns an issue created before the sprint start and resolved
// exactly days later.
func doneItem(key, itemType, assignee string, points float64, days int) schema.Issue {
	created := testSprintStart.Add(-5 * 24 * time.Hour)
	resolved := created.Add(time.Duration(days) * 24 * time.Hour)
	return schema.Issue{
		Key:         key,
		ItemType:    itemType,
		Status:      "Concluído",
		Assignee:    assignee,
		StoryPoints: points,
		CreatedAt:   timePtr(created),
		ResolvedAt:  timePtr(resolved),
	}
}

// dataset wraps issues into a snapshot with the standard test sprint.
func dataset(issues ...schema.Issue) *schema.Dataset {
	return &schema.Dataset{Sprint: testSprint(), Issues: issues}
}
