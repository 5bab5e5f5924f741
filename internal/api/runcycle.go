package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/BCDA-APS/beamtools/internal/runcycle"
)

// cycleView is the JSON shape of one run cycle.
type cycleView struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func toCycleView(c runcycle.Cycle) cycleView {
	return cycleView{
		Name:  c.Name,
		Start: c.Start.Format("2006-01-02"),
		End:   c.End.Format("2006-01-02"),
	}
}

// handleRunCycleCurrent returns the cycle containing the current time.
func (s *Server) handleRunCycleCurrent(w http.ResponseWriter, _ *http.Request) {
	if s.runCycles == nil {
		writeNotFound(w, "run-cycle table not configured")
		return
	}
	cycle, err := s.runCycles.Current()
	if errors.Is(err, runcycle.ErrNoCycle) {
		writeNotFound(w, "no run cycle covers the current time")
		return
	}
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toCycleView(cycle))
}

// handleRunCycleAt returns the cycle containing the "at" query timestamp
// (RFC 3339 or date-only). Without "at", the whole table is returned.
func (s *Server) handleRunCycleAt(w http.ResponseWriter, r *http.Request) {
	if s.runCycles == nil {
		writeNotFound(w, "run-cycle table not configured")
		return
	}

	atParam := r.URL.Query().Get("at")
	if atParam == "" {
		cycles := s.runCycles.Cycles()
		views := make([]cycleView, len(cycles))
		for i, c := range cycles {
			views[i] = toCycleView(c)
		}
		writeJSON(w, http.StatusOK, map[string]any{"cycles": views})
		return
	}

	at, err := parseTimeParam(atParam)
	if err != nil {
		writeBadRequest(w, "invalid 'at' timestamp: "+atParam)
		return
	}

	cycle, err := s.runCycles.CycleAt(at)
	if errors.Is(err, runcycle.ErrNoCycle) {
		writeNotFound(w, "no run cycle covers "+atParam)
		return
	}
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toCycleView(cycle))
}

// parseTimeParam accepts RFC 3339 timestamps and bare dates.
func parseTimeParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
