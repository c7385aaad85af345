// internal/app/features/reports/query.go
package reports

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/projectorhub/internal/app/assignment"
	"github.com/dalemusser/projectorhub/internal/app/system/apperr"
	"github.com/dalemusser/projectorhub/internal/app/system/normalize"
	"github.com/dalemusser/waffle/pantry/query"
)

const dateLayout = "2006-01-02"

// defaultWindow is how many days a report covers when only one end of the
// range (or neither) is given.
const defaultWindow = 7

// parseQuery reads from, to (YYYY-MM-DD, inclusive), status, shift and
// recent. A missing to means today; a missing from means six days before to.
func parseQuery(r *http.Request, now time.Time) (assignment.ReportQuery, error) {
	var q assignment.ReportQuery

	to := now.UTC()
	if raw := query.Get(r, "to"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return q, apperr.Validation("to must be a date in YYYY-MM-DD form.")
		}
		to = t
	}
	from := to.AddDate(0, 0, -(defaultWindow - 1))
	if raw := query.Get(r, "from"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return q, apperr.Validation("from must be a date in YYYY-MM-DD form.")
		}
		from = t
	}
	q.From, q.To = from, to

	q.Status = strings.ToLower(query.Get(r, "status"))
	q.Shift = normalize.Shift(query.Get(r, "shift"))

	if raw := query.Get(r, "recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperr.Validation("recent must be an integer.")
		}
		q.Recent = n
	}
	return q, nil
}
