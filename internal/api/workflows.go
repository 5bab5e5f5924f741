package api

import (
	"net/http"
	"strconv"

	"github.com/BCDA-APS/beamtools/internal/dm"
)

// handleListWorkflows returns DM workflow jobs from the audit store.
//
// Query parameters:
//   - active=true: only jobs that have not reached a terminal status
//   - limit=N: cap the result (default 50)
func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		writeJSON(w, http.StatusOK, map[string]any{"jobs": []dm.Job{}, "count": 0})
		return
	}

	var (
		jobs []dm.Job
		err  error
	)
	if r.URL.Query().Get("active") == "true" {
		jobs, err = s.jobs.ActiveJobs(r.Context())
	} else {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, err = strconv.Atoi(v)
			if err != nil || limit < 0 {
				writeBadRequest(w, "invalid 'limit' parameter: "+v)
				return
			}
		}
		jobs, err = s.jobs.ListJobs(r.Context(), limit)
	}
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if jobs == nil {
		jobs = []dm.Job{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
}
