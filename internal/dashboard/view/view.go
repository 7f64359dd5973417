package view

import (
	"sort"
	"strings"
	"time"

	"resa/internal/dashboard"
	"resa/shared/constant"
)

// Order picks the direction of the date sort.
type Order string

const (
	OrderNewest Order = "newest"
	OrderOldest Order = "oldest"
)

// StatusAll is the status filter value that matches every record.
const StatusAll = constant.StatusAll

// Query is the full set of dashboard filters. The zero value is the
// neutral query: it matches every record and sorts newest first.
type Query struct {
	Search string
	Status string
	Date   string
	Order  Order
}

// Apply filters and sorts the given records without mutating them. The
// sort is stable, so records sharing an appointment date keep their
// input order. Records with a malformed date sort as the earliest
// possible date.
func Apply(records []dashboard.Reservation, q Query) []dashboard.Reservation {
	out := make([]dashboard.Reservation, 0, len(records))
	for _, r := range records {
		if matches(r, q) {
			out = append(out, r)
		}
	}

	newest := q.Order != OrderOldest
	sort.SliceStable(out, func(i, j int) bool {
		a := parseDate(out[i])
		b := parseDate(out[j])

		if newest {
			return a.After(b)
		}

		return a.Before(b)
	})

	return out
}

func matches(r dashboard.Reservation, q Query) bool {
	if search := strings.TrimSpace(q.Search); search != constant.Empty {
		needle := strings.ToLower(search)
		name := strings.ToLower(r.Name)
		phone := strings.ToLower(r.Phone)

		if !strings.Contains(name, needle) && !strings.Contains(phone, needle) {
			return false
		}
	}

	if q.Status != constant.Empty && q.Status != StatusAll && r.Status != q.Status {
		return false
	}

	if q.Date != constant.Empty && r.Date != q.Date {
		return false
	}

	return true
}

func parseDate(r dashboard.Reservation) time.Time {
	t, ok := r.ParseDate()
	if !ok {
		return time.Time{}
	}

	return t
}
