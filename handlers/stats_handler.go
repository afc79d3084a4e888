package handlers

import (
	"net/http"

	"github.com/Dosada05/club-engine/services"
)

type StatsHandler struct {
	stats services.StatsService
}

func NewStatsHandler(stats services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// SnapshotHandler обрабатывает GET /tournaments/{tournamentID}/stats
func (h *StatsHandler) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.stats.Snapshot(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaderboardHandler обрабатывает GET /tournaments/{tournamentID}/leaderboard
func (h *StatsHandler) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.stats.Snapshot(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": snapshot.Leaderboard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SeatingHandler обрабатывает GET /tournaments/{tournamentID}/seating
func (h *StatsHandler) SeatingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	seating, err := h.stats.Seating(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"seating": seating}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
