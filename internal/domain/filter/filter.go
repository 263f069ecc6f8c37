// Package filter narrows a user's waypoints by search text, calendar day and tags.
package filter

import (
	"sort"
	"strings"
	"time"

	"waypoint/internal/domain/model"
)

// Criteria combines three independent predicates. Zero-valued fields are inactive.
type Criteria struct {
	Search string
	Date   *time.Time
	Tags   []string
}

func (c Criteria) Active() bool {
	return strings.TrimSpace(c.Search) != "" || c.Date != nil || len(c.Tags) > 0
}

// Apply keeps the waypoints matching every active predicate, preserving order.
func Apply(waypoints []model.Waypoint, c Criteria) []model.Waypoint {
	search := strings.ToLower(strings.TrimSpace(c.Search))
	selected := make(map[string]struct{}, len(c.Tags))
	for _, t := range c.Tags {
		selected[t] = struct{}{}
	}

	out := make([]model.Waypoint, 0, len(waypoints))
	for i := range waypoints {
		wp := &waypoints[i]
		if matchesSearch(wp, search) && matchesDate(wp, c.Date) && matchesTags(wp, selected) {
			out = append(out, *wp)
		}
	}

	return out
}

func matchesSearch(wp *model.Waypoint, search string) bool {
	if search == "" {
		return true
	}

	return strings.Contains(strings.ToLower(wp.Title), search) ||
		strings.Contains(strings.ToLower(wp.LocationName), search)
}

// matchesDate compares calendar days in the location of the selected date.
func matchesDate(wp *model.Waypoint, date *time.Time) bool {
	if date == nil {
		return true
	}
	if wp.Timestamp.IsZero() {
		return false
	}

	y1, m1, d1 := date.Date()
	y2, m2, d2 := wp.Timestamp.In(date.Location()).Date()

	return y1 == y2 && m1 == m2 && d1 == d2
}

func matchesTags(wp *model.Waypoint, selected map[string]struct{}) bool {
	if len(selected) == 0 {
		return true
	}
	for _, t := range wp.Tags {
		if _, ok := selected[t]; ok {
			return true
		}
	}

	return false
}

// Tags returns the distinct tags across waypoints, sorted.
func Tags(waypoints []model.Waypoint) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for i := range waypoints {
		for _, t := range waypoints[i].Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)

	return out
}
