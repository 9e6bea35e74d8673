package provider

import (
	"slices"

	"github.com/thoreinstein/agentsync/internal/errors"
)

// Priority tiers a provider for batch selection.
type Priority string

// Priority values, highest first.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank maps a priority to its sort position: high=0, medium=1, low=2.
// Empty and unrecognized values rank as low.
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

// ParsePriority validates user input. Empty means low.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case "":
		return PriorityLow, nil
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s), nil
	default:
		return "", errors.Validationf("invalid priority %q (valid: high, medium, low)", s)
	}
}

// SelectByPriority returns the providers whose priority is at or above
// minimum, ordered high to medium to low. Providers of equal priority keep
// their input order. An empty minimum selects everything.
//
// The input slice is not modified.
func SelectByPriority(providers []*Provider, minimum Priority) []*Provider {
	limit := minimum.Rank()

	selected := make([]*Provider, 0, len(providers))
	for _, p := range providers {
		if p.Priority.Rank() <= limit {
			selected = append(selected, p)
		}
	}

	slices.SortStableFunc(selected, func(a, b *Provider) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})
	return selected
}

// IDs returns the ids of providers in order.
func IDs(providers []*Provider) []string {
	ids := make([]string, len(providers))
	for i, p := range providers {
		ids[i] = p.ID
	}
	return ids
}
