package model

import (
	"slices"
	"time"
)

type InsightCategory string

const (
	CategoryRisk            InsightCategory = "risk"
	CategoryPerformance     InsightCategory = "performance"
	CategoryDiversification InsightCategory = "diversification"
	CategoryOpportunity     InsightCategory = "opportunity"
	CategoryEducation       InsightCategory = "education"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for display, high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Insight is rebuilt on every report. Only its ID outlives a report,
// through the dismissal set.
type Insight struct {
	ID           string
	Category     InsightCategory
	Priority     Priority
	Title        string
	Message      string
	Actionable   bool
	ActionLabel  string
	ActionTarget string
	Explanation  string
	CreatedAt    time.Time
	Dismissed    bool
	Metadata     map[string]any
}

// DismissalSet is the persisted list of insight ids hidden by a user.
type DismissalSet struct {
	Dismissed   []string `json:"dismissed"`
	LastUpdated int64    `json:"lastUpdated"` // epoch millis
}

func (d DismissalSet) Contains(id string) bool {
	return slices.Contains(d.Dismissed, id)
}
