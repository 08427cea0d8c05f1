package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"AdapterScout/internal/collector"
	"AdapterScout/internal/dashboard"
	"AdapterScout/internal/model"
)

type protocolsResponse struct {
	Protocols       []model.EnrichedProtocol `json:"protocols"`
	Total           int                      `json:"total"`
	Facets          model.Facets             `json:"facets"`
	Stats           model.Stats              `json:"stats"`
	CoveragePercent float64                  `json:"coverage_percent"`
	CycleID         string                   `json:"cycle_id"`
	FetchedAt       time.Time                `json:"fetched_at"`
	Warnings        []string                 `json:"warnings"`
}

type statsResponse struct {
	Stats           model.Stats `json:"stats"`
	CoveragePercent float64     `json:"coverage_percent"`
	CycleID         string      `json:"cycle_id"`
	FetchedAt       time.Time   `json:"fetched_at"`
	Warnings        []string    `json:"warnings"`
}

type historyEntry struct {
	CycleID      string      `json:"cycle_id"`
	FetchedAt    time.Time   `json:"fetched_at"`
	Protocols    int         `json:"protocols"`
	Pools        int         `json:"pools"`
	AdapterSlugs int         `json:"adapter_slugs"`
	Stats        model.Stats `json:"stats"`
	Degraded     bool        `json:"degraded"`
	Truncated    bool        `json:"truncated"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"status": "ok", "ready": false}
	if snap, err := s.dash.Snapshot(); err == nil {
		resp["ready"] = true
		resp["cycle_id"] = snap.CycleID
		resp["fetched_at"] = snap.FetchedAt
	} else if !errors.Is(err, dashboard.ErrNotReady) {
		resp["error"] = err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) options(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sort_options": model.SortOptions,
		"tvl_presets":  model.TVLPresets,
		"default_sort": model.DefaultSort,
	})
}

func (s *Server) protocols(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fs, err := parseFilter(q)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	pg, err := parsePage(q)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := s.dash.View(fs)
	if err != nil {
		respondViewError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, protocolsResponse{
		Protocols:       pg.slice(v.Protocols),
		Total:           len(v.Protocols),
		Facets:          v.Facets,
		Stats:           v.Stats,
		CoveragePercent: v.Stats.CoveragePercent(),
		CycleID:         v.CycleID,
		FetchedAt:       v.FetchedAt,
		Warnings:        nonNil(v.Warnings),
	})
}

func (s *Server) facets(w http.ResponseWriter, r *http.Request) {
	// facets are built before filtering, so no query is needed
	v, err := s.dash.View(model.FilterState{})
	if err != nil {
		respondViewError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v.Facets)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	fs, err := parseFilter(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := s.dash.View(fs)
	if err != nil {
		respondViewError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, statsResponse{
		Stats:           v.Stats,
		CoveragePercent: v.Stats.CoveragePercent(),
		CycleID:         v.CycleID,
		FetchedAt:       v.FetchedAt,
		Warnings:        nonNil(v.Warnings),
	})
}

func (s *Server) historyCycles(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	if s.history == nil {
		respondJSON(w, http.StatusOK, []historyEntry{})
		return
	}
	cycles, err := s.history.RecentCycles(limit)
	if err != nil {
		log.Printf("[ERROR] load history: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	out := make([]historyEntry, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, historyEntry{
			CycleID:      c.CycleID,
			FetchedAt:    c.FetchedAt,
			Protocols:    c.Protocols,
			Pools:        c.Pools,
			AdapterSlugs: c.AdapterSlugs,
			Stats:        c.Stats,
			Degraded:     c.Degraded,
			Truncated:    c.Truncated,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	// a client that hangs up must not cancel the cycle it started
	snap, err := s.refresher.Refresh(context.WithoutCancel(r.Context()))
	if err != nil {
		if errors.Is(err, dashboard.ErrSuperseded) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondViewError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"cycle_id":   snap.CycleID,
		"fetched_at": snap.FetchedAt,
		"protocols":  len(snap.Enriched),
		"warnings":   nonNil(snap.Warnings),
	})
}

func respondViewError(w http.ResponseWriter, err error) {
	var fe *collector.FetchError
	switch {
	case errors.Is(err, dashboard.ErrNotReady):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &fe):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("[ERROR] dashboard view: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
