package assignment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/projectorhub/internal/app/assignment"
	"github.com/dalemusser/projectorhub/internal/app/system/apperr"
	"github.com/dalemusser/projectorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day(d, hour int) time.Time {
	return time.Date(2026, 3, d, hour, 0, 0, 0, time.UTC)
}

func res(start time.Time, state, shift string) models.Reservation {
	return models.Reservation{
		ID:    primitive.NewObjectID(),
		Start: start,
		End:   start.Add(time.Hour),
		State: state,
		Scope: models.Scope{Grade: 1, Group: "A", Shift: shift},
	}
}

func TestBuildReport(t *testing.T) {
	rs := []models.Reservation{
		res(day(2, 9), models.ReservationPending, models.ShiftMorning),
		res(day(2, 18), models.ReservationApproved, models.ShiftEvening),
		res(day(4, 10), models.ReservationFinalized, models.ShiftMorning),
		res(day(9, 10), models.ReservationRejected, models.ShiftMorning), // out of range
	}
	rep := assignment.BuildReport(rs, assignment.ReportQuery{From: day(1, 0), To: day(5, 0)})

	if rep.Total != 3 {
		t.Errorf("Total = %d, want 3", rep.Total)
	}
	if rep.From != "2026-03-01" || rep.To != "2026-03-05" {
		t.Errorf("range = %s..%s", rep.From, rep.To)
	}
	if len(rep.Daily) != 5 {
		t.Fatalf("Daily has %d days, want 5", len(rep.Daily))
	}
	wantDaily := []int{0, 2, 0, 1, 0}
	for i, w := range wantDaily {
		if rep.Daily[i].Count != w {
			t.Errorf("Daily[%d] (%s) = %d, want %d", i, rep.Daily[i].Day, rep.Daily[i].Count, w)
		}
	}
	if rep.ByStatus[models.ReservationPending] != 1 || rep.ByStatus[models.ReservationRejected] != 0 {
		t.Errorf("ByStatus = %v", rep.ByStatus)
	}
	if _, ok := rep.ByStatus[models.ReservationRejected]; !ok {
		t.Error("ByStatus should list every state")
	}
	if rep.ByShift[models.ShiftMorning] != 2 || rep.ByShift[models.ShiftEvening] != 1 {
		t.Errorf("ByShift = %v", rep.ByShift)
	}
	if len(rep.Recent) != 3 || !rep.Recent[0].Start.Equal(day(4, 10)) {
		t.Errorf("Recent not ordered by start desc: %+v", rep.Recent)
	}
}

func TestBuildReport_Filters(t *testing.T) {
	rs := []models.Reservation{
		res(day(2, 9), models.ReservationPending, models.ShiftMorning),
		res(day(2, 18), models.ReservationPending, models.ShiftEvening),
		res(day(3, 9), models.ReservationApproved, models.ShiftMorning),
	}
	rep := assignment.BuildReport(rs, assignment.ReportQuery{
		From:   day(1, 0),
		To:     day(3, 0),
		Status: models.ReservationPending,
		Shift:  models.ShiftMorning,
	})
	if rep.Total != 1 {
		t.Errorf("Total = %d, want 1", rep.Total)
	}
	if rep.Daily[1].Count != 1 || rep.Daily[2].Count != 0 {
		t.Errorf("Daily = %+v", rep.Daily)
	}
}

func TestBuildReport_RecentLimit(t *testing.T) {
	var rs []models.Reservation
	for d := 1; d <= 8; d++ {
		rs = append(rs, res(day(d, 9), models.ReservationPending, models.ShiftMorning))
	}

	rep := assignment.BuildReport(rs, assignment.ReportQuery{From: day(1, 0), To: day(8, 0)})
	if len(rep.Recent) != assignment.DefaultRecent {
		t.Errorf("Recent has %d, want %d", len(rep.Recent), assignment.DefaultRecent)
	}
	if !rep.Recent[0].Start.Equal(day(8, 9)) {
		t.Errorf("Recent[0].Start = %v, want day 8", rep.Recent[0].Start)
	}

	rep = assignment.BuildReport(rs, assignment.ReportQuery{From: day(1, 0), To: day(8, 0), Recent: 2})
	if len(rep.Recent) != 2 {
		t.Errorf("Recent has %d, want 2", len(rep.Recent))
	}
}

func TestBuildReport_Empty(t *testing.T) {
	rep := assignment.BuildReport(nil, assignment.ReportQuery{From: day(1, 12), To: day(1, 12)})
	if rep.Total != 0 || len(rep.Daily) != 1 || rep.Daily[0].Count != 0 {
		t.Errorf("empty report = %+v", rep)
	}
	if rep.Recent == nil {
		t.Error("Recent should be an empty slice, not nil")
	}
}

func TestEngine_Report(t *testing.T) {
	h := newHarness(assignment.Eager)
	ctx := context.Background()
	h.led.put(res(day(2, 9), models.ReservationPending, models.ShiftMorning))
	h.led.put(res(day(5, 23), models.ReservationApproved, models.ShiftEvening))
	h.led.put(res(day(6, 0), models.ReservationApproved, models.ShiftEvening))

	rep, err := h.eng.Report(ctx, admin, assignment.ReportQuery{From: day(1, 15), To: day(5, 1)})
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if rep.Total != 2 {
		t.Errorf("Total = %d, want 2 (To day is inclusive)", rep.Total)
	}

	bad := []assignment.ReportQuery{
		{},
		{From: day(5, 0), To: day(1, 0)},
		{From: day(1, 0), To: day(2, 0), Status: "archived"},
		{From: day(1, 0), To: day(2, 0), Shift: "noon"},
		{From: day(1, 0), To: day(2, 0), Recent: -1},
	}
	for i, q := range bad {
		if _, err := h.eng.Report(ctx, admin, q); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("query %d error = %v, want Validation", i, err)
		}
	}
}

func TestBuildReport_LongRangeIsCut(t *testing.T) {
	from := time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	rs := []models.Reservation{
		res(from.Add(9*time.Hour), models.ReservationPending, models.ShiftMorning),
		res(to.Add(-time.Hour), models.ReservationPending, models.ShiftMorning),
	}

	rep := assignment.BuildReport(rs, assignment.ReportQuery{From: from, To: to})
	if len(rep.Daily) != assignment.MaxReportDays {
		t.Errorf("days = %d, want %d", len(rep.Daily), assignment.MaxReportDays)
	}
	if rep.From != "0001-01-01" || rep.To != "0002-01-01" {
		t.Errorf("range = %s..%s, want 0001-01-01..0002-01-01", rep.From, rep.To)
	}
	if rep.Total != 1 {
		t.Errorf("Total = %d, want only the reservation inside the cut range", rep.Total)
	}
}

func TestEngine_Report_RangeLimit(t *testing.T) {
	h := newHarness(assignment.Eager)
	ctx := context.Background()
	date := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	// 2024 is a leap year, so this is exactly MaxReportDays days.
	rep, err := h.eng.Report(ctx, admin, assignment.ReportQuery{From: date(2024, 1, 1), To: date(2024, 12, 31)})
	if err != nil {
		t.Fatalf("full-year Report failed: %v", err)
	}
	if len(rep.Daily) != assignment.MaxReportDays {
		t.Errorf("days = %d, want %d", len(rep.Daily), assignment.MaxReportDays)
	}

	tooLong := []assignment.ReportQuery{
		{From: date(2024, 1, 1), To: date(2025, 1, 1)},
		{From: date(2000, 1, 1), To: date(2026, 1, 1)},
		{From: date(1, 1, 1), To: date(9999, 12, 31)},
	}
	for i, q := range tooLong {
		if _, err := h.eng.Report(ctx, admin, q); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("query %d error = %v, want Validation", i, err)
		}
	}
}
