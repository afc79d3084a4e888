package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/club-engine/models"
	"github.com/Dosada05/club-engine/repositories"
	"github.com/Dosada05/club-engine/services"
)

type TournamentHandler struct {
	lifecycle services.LifecycleService
}

func NewTournamentHandler(lifecycle services.LifecycleService) *TournamentHandler {
	return &TournamentHandler{lifecycle: lifecycle}
}

// CreateHandler обрабатывает POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.lifecycle.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.lifecycle.GetTournamentByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /tournaments
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListTournamentsFilter
	query := r.URL.Query()

	if stateStr := query.Get("state"); stateStr != "" {
		state := models.TournamentState(stateStr)
		switch state {
		case models.StateUpcoming, models.StateRegistrationOpen, models.StateCheckIn,
			models.StateStarted, models.StateFinished:
			filter.State = &state
		default:
			badRequestResponse(w, r, errors.New("invalid state query parameter"))
			return
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		} else {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
	} else {
		filter.Limit = 20
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		} else {
			badRequestResponse(w, r, errors.New("invalid offset query parameter"))
			return
		}
	}

	tournaments, err := h.lifecycle.ListTournaments(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler обрабатывает PATCH /tournaments/{tournamentID}
func (h *TournamentHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.lifecycle.UpdateTournament(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /tournaments/{tournamentID}
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.lifecycle.DeleteTournament(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// transitionHandler — общий каркас командных эндпоинтов жизненного цикла.
func (h *TournamentHandler) transitionHandler(w http.ResponseWriter, r *http.Request, command func(id int) error) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := command(id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	tournament, err := h.lifecycle.GetTournamentByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// OpenRegistrationHandler обрабатывает POST /tournaments/{tournamentID}/open-registration
func (h *TournamentHandler) OpenRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(w, r, func(id int) error {
		return h.lifecycle.OpenRegistration(r.Context(), id)
	})
}

// StartCheckInHandler обрабатывает POST /tournaments/{tournamentID}/check-in
func (h *TournamentHandler) StartCheckInHandler(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(w, r, func(id int) error {
		return h.lifecycle.StartCheckIn(r.Context(), id)
	})
}

// StartHandler обрабатывает POST /tournaments/{tournamentID}/start
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(w, r, func(id int) error {
		return h.lifecycle.Start(r.Context(), id)
	})
}

// FinishHandler обрабатывает POST /tournaments/{tournamentID}/finish
func (h *TournamentHandler) FinishHandler(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(w, r, func(id int) error {
		return h.lifecycle.Finish(r.Context(), id)
	})
}

// CancelHandler обрабатывает POST /tournaments/{tournamentID}/cancel
func (h *TournamentHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(w, r, func(id int) error {
		return h.lifecycle.Cancel(r.Context(), id)
	})
}

// RebalanceHandler обрабатывает POST /tournaments/{tournamentID}/rebalance
func (h *TournamentHandler) RebalanceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	relocations, err := h.lifecycle.RebalanceTables(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"relocations": relocations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
