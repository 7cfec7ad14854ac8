// Package resource models the tracked resources and the derived values the
// list view shows for them.
package resource

import (
	"sort"
	"strings"
	"time"

	"github.com/CaiJingLong/Tally/internal/dates"
)

// Urgency buckets a resource by how soon it expires.
type Urgency string

const (
	UrgencyExpired  Urgency = "expired"
	UrgencyCritical Urgency = "critical"
	UrgencyWarning  Urgency = "warning"
	UrgencyOK       Urgency = "ok"
)

// Bucket limits in remaining days (inclusive).
const (
	CriticalDays = 7
	WarningDays  = 30
)

// Resource is one tracked item with an expiry.
type Resource struct {
	ID        uint
	Name      string
	Group     string
	ExpireAt  time.Time
	CreatedAt time.Time
}

// SearchFields exposes name and group to the search filter.
func (r Resource) SearchFields() []string { return []string{r.Name, r.Group} }

// Category is the group, used for the exact group filter.
func (r Resource) Category() string { return r.Group }

// Renew returns a copy of r with its expiry moved according to spec.
func (r Resource) Renew(spec dates.RenewalSpec, now time.Time) Resource {
	r.ExpireAt = dates.ComputeNewExpiry(r.ExpireAt, spec, now)
	return r
}

// Summary is the read model of a resource at a given instant.
type Summary struct {
	ID            uint               `json:"id"`
	Name          string             `json:"name"`
	Group         string             `json:"group"`
	ExpireAt      int64              `json:"expire_at"`
	CreatedAt     int64              `json:"created_at"`
	ExpiryDate    dates.CalendarDate `json:"-"`
	RemainingDays int                `json:"remaining_days"`
	Urgency       Urgency            `json:"urgency"`
}

// SearchFields exposes name and group to the search filter.
func (s Summary) SearchFields() []string { return []string{s.Name, s.Group} }

// Category is the group, used for the exact group filter.
func (s Summary) Category() string { return s.Group }

// View computes the summary of r as seen at now. Expiries are stored as UTC
// midnight of their day, so the expiry date is read in UTC whatever now's
// location is.
func (r Resource) View(now time.Time) Summary {
	days := dates.RemainingDays(r.ExpireAt, now)
	return Summary{
		ID:            r.ID,
		Name:          r.Name,
		Group:         r.Group,
		ExpireAt:      r.ExpireAt.Unix(),
		CreatedAt:     r.CreatedAt.Unix(),
		ExpiryDate:    dates.FromUnix(r.ExpireAt.Unix()),
		RemainingDays: days,
		Urgency:       Classify(days),
	}
}

// Classify maps remaining days to an urgency bucket.
func Classify(remainingDays int) Urgency {
	switch {
	case remainingDays <= 0:
		return UrgencyExpired
	case remainingDays <= CriticalDays:
		return UrgencyCritical
	case remainingDays <= WarningDays:
		return UrgencyWarning
	default:
		return UrgencyOK
	}
}

// Groups lists the distinct non-empty group names, sorted.
func Groups[T interface{ Category() string }](items []T) []string {
	seen := make(map[string]struct{})
	groups := make([]string, 0)
	for _, it := range items {
		g := it.Category()
		if strings.TrimSpace(g) == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// SortByExpiry orders summaries soonest first; ties are broken by name.
func SortByExpiry(list []Summary) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].ExpireAt != list[j].ExpireAt {
			return list[i].ExpireAt < list[j].ExpireAt
		}
		return list[i].Name < list[j].Name
	})
}
