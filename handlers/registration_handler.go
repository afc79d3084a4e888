package handlers

import (
	"net/http"

	"github.com/Dosada05/club-engine/services"
)

type RegistrationHandler struct {
	registrations services.RegistrationService
	lifecycle     services.LifecycleService
}

func NewRegistrationHandler(registrations services.RegistrationService, lifecycle services.LifecycleService) *RegistrationHandler {
	return &RegistrationHandler{
		registrations: registrations,
		lifecycle:     lifecycle,
	}
}

func (h *RegistrationHandler) readIDs(w http.ResponseWriter, r *http.Request) (tournamentID, playerID int, ok bool) {
	tournamentID, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	playerID, err = readIDParam(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return tournamentID, playerID, true
}

// RegisterHandler обрабатывает POST /tournaments/{tournamentID}/registrations/{playerID}
func (h *RegistrationHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, playerID, ok := h.readIDs(w, r)
	if !ok {
		return
	}

	reg, err := h.registrations.Register(r.Context(), tournamentID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"registration": reg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /tournaments/{tournamentID}/registrations
func (h *RegistrationHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	registrations, err := h.registrations.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registrations": registrations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ConfirmPaymentHandler обрабатывает POST /tournaments/{tournamentID}/registrations/{playerID}/payment
func (h *RegistrationHandler) ConfirmPaymentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, playerID, ok := h.readIDs(w, r)
	if !ok {
		return
	}

	var input services.PaymentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, err := h.registrations.ConfirmPayment(r.Context(), tournamentID, playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MarkNoShowHandler обрабатывает POST /tournaments/{tournamentID}/registrations/{playerID}/no-show
func (h *RegistrationHandler) MarkNoShowHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, playerID, ok := h.readIDs(w, r)
	if !ok {
		return
	}

	if err := h.registrations.MarkNoShow(r.Context(), tournamentID, playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RestoreHandler обрабатывает POST /tournaments/{tournamentID}/registrations/{playerID}/restore
func (h *RegistrationHandler) RestoreHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, playerID, ok := h.readIDs(w, r)
	if !ok {
		return
	}

	// Тело опционально: место указывают только при возврате выбитого игрока.
	var input struct {
		Seat *services.SeatTarget `json:"seat,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	if err := h.registrations.Restore(r.Context(), tournamentID, playerID, input.Seat); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddBonusHandler обрабатывает POST /tournaments/{tournamentID}/registrations/{playerID}/bonus
func (h *RegistrationHandler) AddBonusHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, playerID, ok := h.readIDs(w, r)
	if !ok {
		return
	}

	var input struct {
		Amount int `json:"amount"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.registrations.AddBonus(r.Context(), tournamentID, playerID, input.Amount); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// EliminateHandler обрабатывает POST /tournaments/{tournamentID}/registrations/{playerID}/eliminate
func (h *RegistrationHandler) EliminateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, playerID, ok := h.readIDs(w, r)
	if !ok {
		return
	}

	var input struct {
		FinishPlace int `json:"finish_place"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.lifecycle.EliminateOrFinish(r.Context(), tournamentID, playerID, input.FinishPlace); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LateRegisterHandler обрабатывает POST /tournaments/{tournamentID}/registrations/{playerID}/late
func (h *RegistrationHandler) LateRegisterHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, playerID, ok := h.readIDs(w, r)
	if !ok {
		return
	}

	var input struct {
		Seat    services.SeatTarget   `json:"seat"`
		Payment services.PaymentInput `json:"payment"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.lifecycle.LateRegister(r.Context(), tournamentID, playerID, input.Seat, input.Payment); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
