// Package core implements the sprintlens scoring engines: time statistics,
// knowledge distribution, sprint efficiency and the metrics facade. Every
// engine is a pure function of an immutable dataset snapshot.
package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes characters and drops combining marks, so that
// "História" and "Historia" normalize to the same string.
var stripAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var titleCaser = cases.Title(language.Und)

// Normalize lowercases, trims and strips accents from a free-text label.
// It is the single normalization used by every engine that groups by item
// type or status, so two consumers can never disagree on a match.
func Normalize(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// canonicalTypes maps normalized item-type labels to their canonical names.
// The canonical vocabulary keeps the tracker's original Portuguese labels;
// English synonyms fold into them.
var canonicalTypes = map[string]string{
	"historia":       "História",
	"story":          "História",
	"debito tecnico": "Débito Técnico",
	"technical debt": "Débito Técnico",
	"spike":          "Spike",
	"bug":            "Bug",
	"impedimento":    "Impedimento",
	"impediment":     "Impedimento",
}

// CanonicalType maps a free-text item-type label to its canonical name.
// Unknown labels pass through in normalized form.
func CanonicalType(raw string) string {
	n := Normalize(raw)
	if canonical, ok := canonicalTypes[n]; ok {
		return canonical
	}
	return n
}

// TitleCaseName collapses whitespace and title-cases an assignee display
// name, so "john smith" and "John Smith " resolve to the same person.
func TitleCaseName(s string) string {
	return titleCaser.String(strings.Join(strings.Fields(s), " "))
}

// completedStatusKeywords mark a workflow status as a completed state.
var completedStatusKeywords = []string{"done", "concluido", "resolvido", "fechado"}

// inProgressStatuses is the normalized set of workflow states that count as
// work in progress for the flow metrics.
var inProgressStatuses = map[string]struct{}{
	"em progresso":    {},
	"in progress":     {},
	"fazendo":         {},
	"desenvolvimento": {},
	"code review":     {},
	"qa":              {},
	"testing":         {},
}

// bugKeywords flag an item type as defect work for the quality score.
// Substring matching is intentional: "Bug de produção" still counts.
var bugKeywords = []string{"bug", "defeito", "erro", "falha", "problema"}

// IsCompletedStatus reports whether a status label reads as a completed
// workflow state.
func IsCompletedStatus(status string) bool {
	n := Normalize(status)
	for _, kw := range completedStatusKeywords {
		if strings.Contains(n, kw) {
			return true
		}
	}
	return false
}

// IsInProgressStatus reports whether a status label is one of the known
// in-progress workflow states.
func IsInProgressStatus(status string) bool {
	_, ok := inProgressStatuses[Normalize(status)]
	return ok
}

// IsBugType reports whether an item-type label reads as defect work.
func IsBugType(itemType string) bool {
	n := Normalize(itemType)
	for _, kw := range bugKeywords {
		if strings.Contains(n, kw) {
			return true
		}
	}
	return false
}
