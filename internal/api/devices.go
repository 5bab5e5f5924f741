package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BCDA-APS/beamtools/internal/device"
)

// deviceReadTimeout caps the time spent reading live hardware for one
// HTTP request. A wedged IOC must not hang the status surface.
const deviceReadTimeout = 5 * time.Second

// handleListDevices returns a state snapshot of every registered device.
//
// Devices that fail to read are still listed, with the read error in
// their snapshot, so a broken IOC shows up rather than disappearing.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), deviceReadTimeout)
	defer cancel()

	snapshots := s.registry.SnapshotAll(ctx)
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": snapshots,
		"count":   len(snapshots),
	})
}

// handleGetDevice returns one device's state snapshot.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := context.WithTimeout(r.Context(), deviceReadTimeout)
	defer cancel()

	snap, err := s.registry.SnapshotOne(ctx, name)
	if errors.Is(err, device.ErrDeviceNotFound) {
		writeNotFound(w, "unknown device: "+name)
		return
	}
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
