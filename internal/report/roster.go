package report

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"classtrack/internal/apperr"
)

// RosterRow is one student's aggregate in the teacher roster view. A failed
// per-student computation fills Error and zeroes the counts instead of
// failing the whole roster.
type RosterRow struct {
	StudentID     string `json:"studentId"`
	Name          string `json:"name"`
	RegNo         string `json:"regNo"`
	Department    string `json:"department"`
	Semester      string `json:"semester"`
	Totals        Totals `json:"totals"`
	MarksRecorded int    `json:"marksRecorded"`
	Error         string `json:"error,omitempty"`
}

// Roster recomputes totals and the raw mark count for every student. The
// per-student computations are independent, so they fan out with bounded
// concurrency; one student's failure never propagates past its own row.
func (b *Builder) Roster(ctx context.Context, now time.Time) ([]RosterRow, error) {
	reportsBuilt.WithLabelValues("roster").Inc()

	students, err := b.users.Students(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]RosterRow, len(students))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.RosterConcurrency)
	for i, st := range students {
		i, st := i, st
		g.Go(func() error {
			row := RosterRow{
				StudentID:  st.ID,
				Name:       st.Name,
				RegNo:      st.RegNo,
				Department: st.Department,
				Semester:   st.Semester,
			}
			totals, terr := b.totals(gctx, now, st)
			if terr != nil {
				row.Error = apperr.Message(terr)
				rows[i] = row
				return nil
			}
			count, cerr := b.exceptions.CountMarks(gctx, st.ID)
			if cerr != nil {
				row.Error = apperr.Message(cerr)
				rows[i] = row
				return nil
			}
			row.Totals = totals
			row.MarksRecorded = count
			rows[i] = row
			return nil
		})
	}
	// Workers never return errors; Wait only orders the writes to rows.
	_ = g.Wait()
	return rows, nil
}
