package assignment

import (
	"context"
	"sort"
	"time"

	"github.com/dalemusser/projectorhub/internal/app/system/apperr"
	"github.com/dalemusser/projectorhub/internal/domain/models"
)

// DefaultRecent is how many recent reservations a report lists when the
// query does not say.
const DefaultRecent = 5

// MaxReportDays is the longest range, in days and inclusive of both ends,
// a report may cover.
const MaxReportDays = 366

const dayLayout = "2006-01-02"

// ReportQuery selects the reservations a report covers. From and To are
// days, inclusive, in UTC. Status and Shift filter when non-empty.
type ReportQuery struct {
	From   time.Time
	To     time.Time
	Status string
	Shift  string
	Recent int
}

// DayCount is one histogram bucket.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Report summarizes reservations over a date range.
type Report struct {
	From     string               `json:"from"`
	To       string               `json:"to"`
	Total    int                  `json:"total"`
	ByStatus map[string]int       `json:"by_status"`
	ByShift  map[string]int       `json:"by_shift"`
	Daily    []DayCount           `json:"daily"`
	Recent   []models.Reservation `json:"recent"`
}

func truncDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// lastReportDay is the last day a report starting on from may include.
func lastReportDay(from time.Time) time.Time {
	return truncDay(from).AddDate(0, 0, MaxReportDays-1)
}

// Report loads the reservations starting in the query range and summarizes them.
func (e *Engine) Report(ctx context.Context, actor Actor, q ReportQuery) (Report, error) {
	if err := requireAdmin(actor, "view reports"); err != nil {
		return Report{}, err
	}
	if q.From.IsZero() || q.To.IsZero() {
		return Report{}, apperr.Validation("From and To are required.")
	}
	if truncDay(q.To).Before(truncDay(q.From)) {
		return Report{}, apperr.Validation("To must not be before From.")
	}
	if truncDay(q.To).After(lastReportDay(q.From)) {
		return Report{}, apperr.Validation("Range must cover at most %d days.", MaxReportDays)
	}
	if q.Status != "" && !models.IsReservationState(q.Status) {
		return Report{}, apperr.Validation("Status is not a valid value.")
	}
	if q.Shift != "" && !models.IsShift(q.Shift) {
		return Report{}, apperr.Validation("Shift must be 'morning' or 'evening'.")
	}
	if q.Recent < 0 {
		return Report{}, apperr.Validation("Recent must be at least 0.")
	}

	rs, err := e.led.ListBetween(ctx, truncDay(q.From), truncDay(q.To).AddDate(0, 0, 1))
	if err != nil {
		return Report{}, err
	}
	return BuildReport(rs, q), nil
}

// BuildReport summarizes rs. Reservations starting outside [From, To] or not
// matching the filters are ignored. Every day in the range appears in Daily
// and every known status and shift appears in the maps, zero when unused.
// A range longer than MaxReportDays is cut to its first MaxReportDays days.
func BuildReport(rs []models.Reservation, q ReportQuery) Report {
	from := truncDay(q.From)
	to := truncDay(q.To)
	if last := lastReportDay(from); to.After(last) {
		to = last
	}
	recent := q.Recent
	if recent == 0 {
		recent = DefaultRecent
	}

	rep := Report{
		From:     from.Format(dayLayout),
		To:       to.Format(dayLayout),
		ByStatus: make(map[string]int, len(models.ReservationStates)),
		ByShift:  make(map[string]int, len(models.Shifts)),
		Daily:    []DayCount{},
		Recent:   []models.Reservation{},
	}
	for _, s := range models.ReservationStates {
		rep.ByStatus[s] = 0
	}
	for _, s := range models.Shifts {
		rep.ByShift[s] = 0
	}

	index := map[string]int{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		index[d.Format(dayLayout)] = len(rep.Daily)
		rep.Daily = append(rep.Daily, DayCount{Day: d.Format(dayLayout)})
	}

	var matched []models.Reservation
	for _, r := range rs {
		day := truncDay(r.Start)
		if day.Before(from) || day.After(to) {
			continue
		}
		if q.Status != "" && r.State != q.Status {
			continue
		}
		if q.Shift != "" && r.Shift != q.Shift {
			continue
		}
		matched = append(matched, r)
		rep.Total++
		rep.ByStatus[r.State]++
		rep.ByShift[r.Shift]++
		rep.Daily[index[day.Format(dayLayout)]].Count++
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Start.After(matched[j].Start) })
	if len(matched) > recent {
		matched = matched[:recent]
	}
	rep.Recent = append(rep.Recent, matched...)
	return rep
}
