package quota

import (
	"time"

	"github.com/blackbrainhq/blackbrain/internal/pkg/plans"
)

// RequestCounter is the slice of the request log the checker needs.
type RequestCounter interface {
	CountInRange(userID uint, from, to time.Time) (int64, error)
}

// Result is the outcome of a quota check.
type Result struct {
	Admitted bool
	Limit    int
	Used     int64
	ResetsAt time.Time
}

// Checker enforces the daily question limit for metered (free) plans.
//
// The check-then-act is not atomic against concurrent requests from the
// same user: a burst near the boundary can admit slightly more than the
// limit. That slack is accepted instead of paying for a distributed lock;
// the quota is a soft bound, not a hard guarantee.
type Checker struct {
	requests RequestCounter
	catalog  *plans.Catalog
	limit    int
	now      func() time.Time
}

// NewChecker creates a quota checker with the given daily limit.
func NewChecker(requests RequestCounter, catalog *plans.Catalog, limit int) *Checker {
	return &Checker{
		requests: requests,
		catalog:  catalog,
		limit:    limit,
		now:      time.Now,
	}
}

// CheckAndAdmit admits the request unless the user is on a metered plan
// that has exhausted today's quota. The caller must append the admitted
// request to the log immediately so subsequent checks see it. A storage
// failure propagates; it never defaults to admit.
func (c *Checker) CheckAndAdmit(userID uint, planCode string) (Result, error) {
	plan, ok := c.catalog.Lookup(planCode)
	if ok && !plan.IsMetered() {
		return Result{Admitted: true}, nil
	}
	// Unknown plans are metered like the free tier; the feature gate has
	// already denied them anything beyond basic access.

	from, to := DayWindowUTC(c.now())
	used, err := c.requests.CountInRange(userID, from, to)
	if err != nil {
		return Result{}, err
	}

	if used >= int64(c.limit) {
		return Result{Admitted: false, Limit: c.limit, Used: used, ResetsAt: to}, nil
	}
	return Result{Admitted: true, Limit: c.limit, Used: used, ResetsAt: to}, nil
}

// DayWindowUTC returns the UTC calendar-day interval containing the
// given instant: [00:00:00, next 00:00:00).
func DayWindowUTC(now time.Time) (time.Time, time.Time) {
	t := now.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
