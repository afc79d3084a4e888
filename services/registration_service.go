package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/club-engine/engine"
	"github.com/Dosada05/club-engine/models"
	"github.com/Dosada05/club-engine/repositories"
	"github.com/shopspring/decimal"
)

// RegistrationService ведёт статусную машину участия игрока в турнире:
// registered -> paid/no_show -> playing -> eliminated.
type RegistrationService interface {
	Register(ctx context.Context, tournamentID, playerID int) (*models.Registration, error)
	ConfirmPayment(ctx context.Context, tournamentID, playerID int, input PaymentInput) (*models.Registration, error)
	MarkNoShow(ctx context.Context, tournamentID, playerID int) error
	Restore(ctx context.Context, tournamentID, playerID int, seat *SeatTarget) error
	AddBonus(ctx context.Context, tournamentID, playerID, amount int) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error)
}

type PaymentInput struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Notes  *string         `json:"notes,omitempty"`
}

// SeatTarget — явное место для возвращаемого в игру игрока. Если не задано,
// берётся первое свободное место на занятых столах.
type SeatTarget struct {
	Table int `json:"table"`
	Seat  int `json:"seat"`
}

type registrationService struct {
	tx             Transactor
	locks          *TournamentLocks
	tournamentRepo repositories.TournamentRepository
	regRepo        repositories.RegistrationRepository
	seatRepo       repositories.SeatRepository
	playerRepo     repositories.PlayerRepository
	sink           EventSink
	logger         *slog.Logger
}

func NewRegistrationService(
	tx Transactor,
	locks *TournamentLocks,
	tournamentRepo repositories.TournamentRepository,
	regRepo repositories.RegistrationRepository,
	seatRepo repositories.SeatRepository,
	playerRepo repositories.PlayerRepository,
	sink EventSink,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		tx:             tx,
		locks:          locks,
		tournamentRepo: tournamentRepo,
		regRepo:        regRepo,
		seatRepo:       seatRepo,
		playerRepo:     playerRepo,
		sink:           sink,
		logger:         logger,
	}
}

// Register создаёт заявку игрока. Повторная регистрация поверх no_show
// возвращает игрока в статус registered вместо ошибки.
func (s *registrationService) Register(ctx context.Context, tournamentID, playerID int) (*models.Registration, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to look up player %d: %w", playerID, err)
	}

	unlock := s.locks.Acquire(tournamentID)
	defer unlock()

	var reg *models.Registration
	err = s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if tournament.State != models.StateRegistrationOpen {
			return ErrRegistrationNotOpen
		}

		existing, err := s.regRepo.FindByTournamentAndPlayer(ctx, exec, tournamentID, playerID)
		if err != nil && !errors.Is(err, repositories.ErrRegistrationNotFound) {
			return err
		}
		if existing != nil {
			if existing.Status != models.StatusNoShow {
				return ErrAlreadyRegistered
			}
			// no_show освобождает слот, поэтому ёмкость проверяется и здесь.
			if err := s.checkCapacity(ctx, exec, tournament); err != nil {
				return err
			}
			// Прежняя оплата стирается: повторный вход оплачивается заново.
			if err := s.regRepo.Reopen(ctx, exec, existing.ID); err != nil {
				return err
			}
			existing.Status = models.StatusRegistered
			existing.PaymentAmount = nil
			existing.PaymentMethod = nil
			existing.PaymentNotes = nil
			existing.PaidAt = nil
			reg = existing
			return nil
		}

		if err := s.checkCapacity(ctx, exec, tournament); err != nil {
			return err
		}

		reg = &models.Registration{
			TournamentID: tournamentID,
			PlayerID:     playerID,
			Status:       models.StatusRegistered,
		}
		if err := s.regRepo.Create(ctx, exec, reg); err != nil {
			if errors.Is(err, repositories.ErrRegistrationConflict) {
				return ErrAlreadyRegistered
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reg.Player = player
	return reg, nil
}

func (s *registrationService) checkCapacity(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	taken, err := s.regRepo.CountByStatuses(ctx, exec, t.ID,
		models.StatusRegistered, models.StatusPaid, models.StatusPlaying, models.StatusEliminated)
	if err != nil {
		return err
	}
	if taken >= t.Capacity {
		return ErrTournamentFull
	}
	return nil
}

// ConfirmPayment фиксирует оплату взноса. Повторное подтверждение уже
// оплаченной регистрации — no-op успех: терминалы регистрации могут
// дублировать отправку.
func (s *registrationService) ConfirmPayment(ctx context.Context, tournamentID, playerID int, input PaymentInput) (*models.Registration, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidPaymentAmount
	}
	method := models.PaymentMethod(input.Method)
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	unlock := s.locks.Acquire(tournamentID)
	defer unlock()

	var reg *models.Registration
	var alreadyPaid bool
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		// Завершённый турнир только для чтения: леджер оплат закрыт.
		if tournament.State == models.StateFinished {
			return ErrTournamentFinished
		}

		reg, err = s.findRegistration(ctx, exec, tournamentID, playerID)
		if err != nil {
			return err
		}

		if reg.Status == models.StatusPaid {
			alreadyPaid = true
			return nil
		}
		if reg.Status != models.StatusRegistered {
			return ErrInvalidStatusChange
		}

		if err := s.regRepo.RecordPayment(ctx, exec, reg.ID, repositories.PaymentRecord{
			Amount: input.Amount,
			Method: method,
			Notes:  input.Notes,
		}); err != nil {
			return err
		}
		reg.Status = models.StatusPaid
		reg.PaymentAmount = &input.Amount
		reg.PaymentMethod = &method
		reg.PaymentNotes = input.Notes
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyPaid && s.sink != nil {
		s.sink.PaymentConfirmed(PaymentConfirmedEvent{
			TournamentID: tournamentID,
			PlayerID:     playerID,
			Amount:       input.Amount,
			Method:       input.Method,
		})
	}
	return reg, nil
}

func (s *registrationService) MarkNoShow(ctx context.Context, tournamentID, playerID int) error {
	unlock := s.locks.Acquire(tournamentID)
	defer unlock()

	return s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if tournament.State == models.StateFinished {
			return ErrTournamentFinished
		}

		reg, err := s.findRegistration(ctx, exec, tournamentID, playerID)
		if err != nil {
			return err
		}
		if reg.Status != models.StatusRegistered && reg.Status != models.StatusPaid {
			return ErrInvalidStatusChange
		}
		return s.regRepo.UpdateStatus(ctx, exec, reg.ID, models.StatusNoShow)
	})
}

// Restore возвращает игрока из терминального статуса: no_show -> registered,
// либо eliminated -> playing с повторной посадкой (турнир должен идти).
func (s *registrationService) Restore(ctx context.Context, tournamentID, playerID int, seat *SeatTarget) error {
	unlock := s.locks.Acquire(tournamentID)
	defer unlock()

	return s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}

		if tournament.State == models.StateFinished {
			return ErrTournamentFinished
		}

		reg, err := s.findRegistration(ctx, exec, tournamentID, playerID)
		if err != nil {
			return err
		}

		switch reg.Status {
		case models.StatusNoShow:
			return s.regRepo.Reopen(ctx, exec, reg.ID)

		case models.StatusEliminated:
			if tournament.State != models.StateStarted {
				return ErrTournamentNotStarted
			}
			if err := s.regRepo.ClearElimination(ctx, exec, reg.ID); err != nil {
				return err
			}
			return s.seatRestoredPlayer(ctx, exec, tournament, playerID, seat)

		default:
			return ErrInvalidStatusChange
		}
	})
}

func (s *registrationService) seatRestoredPlayer(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, playerID int, target *SeatTarget) error {
	assignments, err := s.seatRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return err
	}
	current := seatingToMap(assignments)

	var chosen engine.Seat
	if target != nil {
		chosen, err = engine.LateSeat(current, playerID, target.Table, target.Seat)
		if err != nil {
			return mapSeatingError(err)
		}
	} else {
		chosen = firstFreeSeat(current, t.SeatsPerTable)
	}

	return s.seatRepo.Create(ctx, exec, &models.SeatAssignment{
		TournamentID: t.ID,
		PlayerID:     playerID,
		TableNumber:  chosen.Table,
		SeatNumber:   chosen.Seat,
	})
}

func (s *registrationService) AddBonus(ctx context.Context, tournamentID, playerID, amount int) error {
	if amount <= 0 {
		return ErrInvalidBonusAmount
	}

	unlock := s.locks.Acquire(tournamentID)
	defer unlock()

	return s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if tournament.State == models.StateFinished {
			return ErrTournamentFinished
		}

		reg, err := s.findRegistration(ctx, exec, tournamentID, playerID)
		if err != nil {
			return err
		}
		return s.regRepo.AddBonusPoints(ctx, exec, reg.ID, amount)
	})
}

func (s *registrationService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error) {
	registrations, err := s.regRepo.ListByTournament(ctx, nil, tournamentID, nil)
	if err != nil {
		return nil, err
	}
	s.populatePlayers(ctx, registrations)
	return registrations, nil
}

func (s *registrationService) populatePlayers(ctx context.Context, registrations []*models.Registration) {
	ids := make([]int, 0, len(registrations))
	for _, reg := range registrations {
		ids = append(ids, reg.PlayerID)
	}
	players, err := s.playerRepo.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to populate player details", slog.Any("error", err))
		return
	}
	for _, reg := range registrations {
		reg.Player = players[reg.PlayerID]
	}
}

func (s *registrationService) findRegistration(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID int) (*models.Registration, error) {
	reg, err := s.regRepo.FindByTournamentAndPlayer(ctx, exec, tournamentID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

// firstFreeSeat возвращает первое свободное место на занятых столах, либо
// первое место нового стола, если всё занято.
func firstFreeSeat(current map[int]engine.Seat, seatsPerTable int) engine.Seat {
	taken := make(map[engine.Seat]bool, len(current))
	maxTable := 0
	for _, seat := range current {
		taken[seat] = true
		if seat.Table > maxTable {
			maxTable = seat.Table
		}
	}
	for t := 1; t <= maxTable; t++ {
		for n := 1; n <= seatsPerTable; n++ {
			seat := engine.Seat{Table: t, Seat: n}
			if !taken[seat] {
				return seat
			}
		}
	}
	return engine.Seat{Table: maxTable + 1, Seat: 1}
}

func mapSeatingError(err error) error {
	switch {
	case errors.Is(err, engine.ErrSeatOccupied):
		return ErrSeatOccupied
	case errors.Is(err, engine.ErrInvalidSeatTarget):
		return ErrInvalidSeatTarget
	default:
		return err
	}
}
