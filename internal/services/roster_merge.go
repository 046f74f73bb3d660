package services

import (
	"time"

	"github.com/herozvz07-ctrl/guilder/internal/models"
	"github.com/herozvz07-ctrl/guilder/internal/roster"
)

// MergeResult is the outcome of one fetch-diff-merge pass.
type MergeResult struct {
	Members []models.RosterMember
	Joined  []string
	Left    []string
}

// MergeRoster diffs the freshly fetched entries against the stored members
// and merges per field provenance: nickname and level always come from the
// fetch; leadership flag and last-seen come from the stored member when one
// exists. Newly observed members start with leader=false and last-seen=now
// (or the page's hint when it carries one). Members absent from the fetch
// are dropped.
func MergeRoster(old []models.RosterMember, fresh []roster.Entry, now time.Time) MergeResult {
	known := make(map[string]models.RosterMember, len(old))
	for _, m := range old {
		known[m.Nickname] = m
	}

	var result MergeResult
	seen := make(map[string]bool, len(fresh))
	for _, e := range fresh {
		if seen[e.Nickname] {
			continue // page duplicates collapse to the first occurrence
		}
		seen[e.Nickname] = true

		if prev, ok := known[e.Nickname]; ok {
			result.Members = append(result.Members, models.RosterMember{
				Nickname: e.Nickname,
				Level:    e.Level,
				Leader:   prev.Leader,
				LastSeen: prev.LastSeen,
			})
			continue
		}

		lastSeen := now
		if !e.LastSeen.IsZero() {
			lastSeen = e.LastSeen
		}
		result.Members = append(result.Members, models.RosterMember{
			Nickname: e.Nickname,
			Level:    e.Level,
			Leader:   false,
			LastSeen: lastSeen,
		})
		result.Joined = append(result.Joined, e.Nickname)
	}

	for _, m := range old {
		if !seen[m.Nickname] {
			result.Left = append(result.Left, m.Nickname)
		}
	}
	return result
}

// AverageLevel of a merged member list; 0 for an empty list.
func AverageLevel(members []models.RosterMember) float64 {
	if len(members) == 0 {
		return 0
	}
	var sum int
	for _, m := range members {
		sum += m.Level
	}
	return float64(sum) / float64(len(members))
}
