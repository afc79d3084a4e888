package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/club-engine/engine"
	"github.com/Dosada05/club-engine/models"
	"github.com/Dosada05/club-engine/repositories"
	"github.com/shopspring/decimal"
)

// LifecycleService — верхнеуровневая машина состояний турнира. Все мутации
// одного турнира сериализуются per-tournament блокировкой и выполняются в
// одной транзакции; события и архивация уходят строго после коммита.
type LifecycleService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id int) error

	OpenRegistration(ctx context.Context, id int) error
	StartCheckIn(ctx context.Context, id int) error
	Start(ctx context.Context, id int) error
	Finish(ctx context.Context, id int) error
	Cancel(ctx context.Context, id int) error

	// EliminateOrFinish выбивает игрока и, если за столами остался один,
	// атомарно закрывает турнир, присуждая оставшемуся первое место.
	EliminateOrFinish(ctx context.Context, tournamentID, playerID, finishPlace int) error
	LateRegister(ctx context.Context, tournamentID, playerID int, seat SeatTarget, payment PaymentInput) error
	RebalanceTables(ctx context.Context, tournamentID int) ([]engine.Relocation, error)
}

type CreateTournamentInput struct {
	Name          string             `json:"name"`
	Capacity      int                `json:"capacity"`
	BuyIn         decimal.Decimal    `json:"buy_in"`
	SeatsPerTable int                `json:"seats_per_table"`
	StartsAt      time.Time          `json:"starts_at"`
	PointsMode    models.PointsMode  `json:"points_mode"`
	PointsTable   models.PointsTable `json:"points_table,omitempty"`
}

type UpdateTournamentInput struct {
	Name          *string             `json:"name,omitempty"`
	Capacity      *int                `json:"capacity,omitempty"`
	BuyIn         *decimal.Decimal    `json:"buy_in,omitempty"`
	SeatsPerTable *int                `json:"seats_per_table,omitempty"`
	StartsAt      *time.Time          `json:"starts_at,omitempty"`
	PointsMode    *models.PointsMode  `json:"points_mode,omitempty"`
	PointsTable   *models.PointsTable `json:"points_table,omitempty"`
}

type lifecycleService struct {
	tx             Transactor
	locks          *TournamentLocks
	tournamentRepo repositories.TournamentRepository
	regRepo        repositories.RegistrationRepository
	seatRepo       repositories.SeatRepository
	playerRepo     repositories.PlayerRepository
	sink           EventSink
	archiver       StandingsArchiver
	logger         *slog.Logger
}

func NewLifecycleService(
	tx Transactor,
	locks *TournamentLocks,
	tournamentRepo repositories.TournamentRepository,
	regRepo repositories.RegistrationRepository,
	seatRepo repositories.SeatRepository,
	playerRepo repositories.PlayerRepository,
	sink EventSink,
	archiver StandingsArchiver,
	logger *slog.Logger,
) LifecycleService {
	return &lifecycleService{
		tx:             tx,
		locks:          locks,
		tournamentRepo: tournamentRepo,
		regRepo:        regRepo,
		seatRepo:       seatRepo,
		playerRepo:     playerRepo,
		sink:           sink,
		archiver:       archiver,
		logger:         logger,
	}
}

func validatePointsConfig(mode models.PointsMode, table models.PointsTable) error {
	switch mode {
	case models.PointsModeComputed:
		return nil
	case models.PointsModeManual:
		if err := table.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPointsTable, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown points mode %q", ErrInvalidPointsTable, mode)
	}
}

func (s *lifecycleService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if input.BuyIn.IsNegative() {
		return nil, ErrInvalidBuyIn
	}
	if input.SeatsPerTable == 0 {
		input.SeatsPerTable = engine.DefaultSeatsPerTable
	}
	if input.SeatsPerTable < 1 {
		return nil, ErrInvalidSeatsPerTable
	}
	if input.PointsMode == "" {
		input.PointsMode = models.PointsModeComputed
	}
	if err := validatePointsConfig(input.PointsMode, input.PointsTable); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name:          input.Name,
		Capacity:      input.Capacity,
		BuyIn:         input.BuyIn,
		SeatsPerTable: input.SeatsPerTable,
		StartsAt:      input.StartsAt,
		State:         models.StateUpcoming,
		PointsMode:    input.PointsMode,
		PointsTable:   input.PointsTable,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *lifecycleService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *lifecycleService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx, filter)
}

func (s *lifecycleService) UpdateTournament(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	unlock := s.locks.Acquire(id)
	defer unlock()

	var updated *models.Tournament
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if tournament.State == models.StateFinished {
			return ErrTournamentFinished
		}

		if input.Name != nil {
			if *input.Name == "" {
				return ErrTournamentNameRequired
			}
			tournament.Name = *input.Name
		}
		if input.Capacity != nil {
			if *input.Capacity < 1 {
				return ErrInvalidCapacity
			}
			tournament.Capacity = *input.Capacity
		}
		if input.BuyIn != nil {
			if input.BuyIn.IsNegative() {
				return ErrInvalidBuyIn
			}
			tournament.BuyIn = *input.BuyIn
		}
		if input.SeatsPerTable != nil {
			if *input.SeatsPerTable < 1 {
				return ErrInvalidSeatsPerTable
			}
			tournament.SeatsPerTable = *input.SeatsPerTable
		}
		if input.StartsAt != nil {
			tournament.StartsAt = *input.StartsAt
		}
		if input.PointsMode != nil {
			tournament.PointsMode = *input.PointsMode
		}
		if input.PointsTable != nil {
			tournament.PointsTable = *input.PointsTable
		}
		if err := validatePointsConfig(tournament.PointsMode, tournament.PointsTable); err != nil {
			return err
		}

		if err := s.tournamentRepo.Update(ctx, exec, tournament); err != nil {
			return err
		}
		updated = tournament
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *lifecycleService) DeleteTournament(ctx context.Context, id int) error {
	unlock := s.locks.Acquire(id)
	defer unlock()

	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return err
	}
	if tournament.State != models.StateUpcoming {
		return ErrTournamentNotUpcoming
	}
	return s.tournamentRepo.Delete(ctx, id)
}

// transitionState — общий каркас простых переходов жизненного цикла.
func (s *lifecycleService) transitionState(ctx context.Context, id int, next models.TournamentState) error {
	unlock := s.locks.Acquire(id)
	defer unlock()

	return s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if !isValidStateTransition(tournament.State, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, tournament.State, next)
		}
		return s.tournamentRepo.UpdateState(ctx, exec, id, next)
	})
}

func (s *lifecycleService) OpenRegistration(ctx context.Context, id int) error {
	return s.transitionState(ctx, id, models.StateRegistrationOpen)
}

func (s *lifecycleService) StartCheckIn(ctx context.Context, id int) error {
	return s.transitionState(ctx, id, models.StateCheckIn)
}

// Start переводит всех оплативших в игру и рассаживает их по столам.
func (s *lifecycleService) Start(ctx context.Context, id int) error {
	unlock := s.locks.Acquire(id)
	defer unlock()

	return s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if !isValidStateTransition(tournament.State, models.StateStarted) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, tournament.State, models.StateStarted)
		}

		if _, err := s.regRepo.CheckInAllPaid(ctx, exec, id); err != nil {
			return err
		}

		statusPlaying := models.StatusPlaying
		playing, err := s.regRepo.ListByTournament(ctx, exec, id, &statusPlaying)
		if err != nil {
			return err
		}
		if len(playing) == 0 {
			return ErrNoPlayers
		}

		playerIDs := make([]int, len(playing))
		for i, reg := range playing {
			playerIDs[i] = reg.PlayerID
		}
		seating, err := engine.AssignInitial(playerIDs, tournament.SeatsPerTable)
		if err != nil {
			return err
		}

		assignments := make([]*models.SeatAssignment, 0, len(seating))
		for playerID, seat := range seating {
			assignments = append(assignments, &models.SeatAssignment{
				TournamentID: id,
				PlayerID:     playerID,
				TableNumber:  seat.Table,
				SeatNumber:   seat.Seat,
			})
		}
		// Детеминированный порядок вставки упрощает отладку по логам БД.
		sort.Slice(assignments, func(i, j int) bool {
			if assignments[i].TableNumber != assignments[j].TableNumber {
				return assignments[i].TableNumber < assignments[j].TableNumber
			}
			return assignments[i].SeatNumber < assignments[j].SeatNumber
		})
		if err := s.seatRepo.CreateBatch(ctx, exec, assignments); err != nil {
			return err
		}

		return s.tournamentRepo.UpdateState(ctx, exec, id, models.StateStarted)
	})
}

// pointsFor выбирает источник очков согласно points_mode турнира.
func (s *lifecycleService) pointsFor(t *models.Tournament, place, totalParticipants int) (int, error) {
	if t.PointsMode == models.PointsModeManual {
		// Ручная таблица авторитетна: места вне неё ничего не приносят.
		return t.PointsTable[place], nil
	}
	points, err := engine.Points(place, totalParticipants)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidPlace) {
			return 0, ErrInvalidFinishPlace
		}
		return 0, err
	}
	return points, nil
}

func (s *lifecycleService) EliminateOrFinish(ctx context.Context, tournamentID, playerID, finishPlace int) error {
	if finishPlace < 1 {
		return ErrInvalidFinishPlace
	}

	unlock := s.locks.Acquire(tournamentID)
	defer unlock()

	var events []PlayerEliminatedEvent
	var finished *TournamentFinishedEvent

	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		events = events[:0]
		finished = nil

		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if tournament.State != models.StateStarted {
			return ErrTournamentNotStarted
		}

		reg, err := s.regRepo.FindByTournamentAndPlayer(ctx, exec, tournamentID, playerID)
		if err != nil {
			if errors.Is(err, repositories.ErrRegistrationNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}
		if reg.Status != models.StatusPlaying {
			return ErrInvalidStatusChange
		}

		statusEliminated := models.StatusEliminated
		eliminated, err := s.regRepo.ListByTournament(ctx, exec, tournamentID, &statusEliminated)
		if err != nil {
			return err
		}
		for _, e := range eliminated {
			if e.FinishPlace != nil && *e.FinishPlace == finishPlace {
				return ErrDuplicateFinishPlace
			}
		}

		playingCount, err := s.regRepo.CountByStatuses(ctx, exec, tournamentID, models.StatusPlaying)
		if err != nil {
			return err
		}
		// Фонд считается по всем дошедшим до игры, включая поздние регистрации.
		totalParticipants := playingCount + len(eliminated)

		if err := s.eliminateOne(ctx, exec, tournament, reg, finishPlace, totalParticipants, &events); err != nil {
			return err
		}

		// Каскад: предпоследнее выбывание закрывает турнир тем же коммитом,
		// иначе турнир с единственным активным игроком завис бы в started.
		if playingCount-1 == 1 {
			statusPlaying := models.StatusPlaying
			remaining, err := s.regRepo.ListByTournament(ctx, exec, tournamentID, &statusPlaying)
			if err != nil {
				return err
			}
			if len(remaining) != 1 {
				return fmt.Errorf("expected exactly one remaining player, found %d", len(remaining))
			}
			winner := remaining[0]
			if err := s.eliminateOne(ctx, exec, tournament, winner, 1, totalParticipants, &events); err != nil {
				return err
			}
			if err := s.tournamentRepo.UpdateState(ctx, exec, tournamentID, models.StateFinished); err != nil {
				return err
			}
			standings, err := s.collectStandings(ctx, exec, tournamentID)
			if err != nil {
				return err
			}
			finished = &TournamentFinishedEvent{TournamentID: tournamentID, Standings: standings}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEliminations(ctx, events, finished)
	return nil
}

// eliminateOne выполняет одиночное выбывание внутри уже открытой транзакции.
func (s *lifecycleService) eliminateOne(
	ctx context.Context,
	exec repositories.SQLExecutor,
	tournament *models.Tournament,
	reg *models.Registration,
	finishPlace, totalParticipants int,
	events *[]PlayerEliminatedEvent,
) error {
	points, err := s.pointsFor(tournament, finishPlace, totalParticipants)
	if err != nil {
		return err
	}
	if err := s.regRepo.SetEliminated(ctx, exec, reg.ID, finishPlace, points); err != nil {
		if errors.Is(err, repositories.ErrFinishPlaceConflict) {
			return ErrDuplicateFinishPlace
		}
		return err
	}
	if err := s.seatRepo.DeleteByPlayer(ctx, exec, tournament.ID, reg.PlayerID); err != nil {
		// Отсутствие посадки не должно блокировать выбывание: игрок мог быть
		// восстановлен без места при ручном вмешательстве оператора.
		if !errors.Is(err, repositories.ErrSeatAssignmentNotFound) {
			return err
		}
	}
	*events = append(*events, PlayerEliminatedEvent{
		TournamentID: tournament.ID,
		PlayerID:     reg.PlayerID,
		FinishPlace:  finishPlace,
		PointsEarned: points,
	})
	return nil
}

func (s *lifecycleService) publishEliminations(ctx context.Context, events []PlayerEliminatedEvent, finished *TournamentFinishedEvent) {
	if s.sink != nil {
		for _, e := range events {
			s.sink.PlayerEliminated(e)
		}
		if finished != nil {
			s.sink.TournamentFinished(*finished)
		}
	}
	if finished != nil && s.archiver != nil {
		go func(event TournamentFinishedEvent) {
			if err := s.archiver.ArchiveStandings(context.Background(), event.TournamentID, event.Standings); err != nil {
				s.logger.WarnContext(ctx, "failed to archive final standings",
					slog.Int("tournament_id", event.TournamentID), slog.Any("error", err))
			}
		}(*finished)
	}
}

// LateRegister добавляет игрока в идущий турнир: оплата фиксируется сразу,
// игрок садится на явно выбранное место.
func (s *lifecycleService) LateRegister(ctx context.Context, tournamentID, playerID int, seat SeatTarget, payment PaymentInput) error {
	if !payment.Amount.IsPositive() {
		return ErrInvalidPaymentAmount
	}
	method := models.PaymentMethod(payment.Method)
	if !method.Valid() {
		return ErrInvalidPaymentMethod
	}
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}

	unlock := s.locks.Acquire(tournamentID)
	defer unlock()

	var confirmed *PaymentConfirmedEvent
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		confirmed = nil

		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if tournament.State != models.StateStarted {
			return ErrTournamentNotStarted
		}

		reg, err := s.regRepo.FindByTournamentAndPlayer(ctx, exec, tournamentID, playerID)
		if err != nil && !errors.Is(err, repositories.ErrRegistrationNotFound) {
			return err
		}

		switch {
		case reg == nil:
			taken, err := s.regRepo.CountByStatuses(ctx, exec, tournamentID,
				models.StatusRegistered, models.StatusPaid, models.StatusPlaying, models.StatusEliminated)
			if err != nil {
				return err
			}
			if taken >= tournament.Capacity {
				return ErrTournamentFull
			}
			reg = &models.Registration{
				TournamentID: tournamentID,
				PlayerID:     playerID,
				Status:       models.StatusRegistered,
			}
			if err := s.regRepo.Create(ctx, exec, reg); err != nil {
				return err
			}
		case reg.Status == models.StatusPlaying, reg.Status == models.StatusEliminated:
			return ErrInvalidStatusChange
		}

		if reg.Status != models.StatusPaid {
			if err := s.regRepo.RecordPayment(ctx, exec, reg.ID, repositories.PaymentRecord{
				Amount: payment.Amount,
				Method: method,
				Notes:  payment.Notes,
			}); err != nil {
				return err
			}
			confirmed = &PaymentConfirmedEvent{
				TournamentID: tournamentID,
				PlayerID:     playerID,
				Amount:       payment.Amount,
				Method:       payment.Method,
			}
		}
		if err := s.regRepo.UpdateStatus(ctx, exec, reg.ID, models.StatusPlaying); err != nil {
			return err
		}

		assignments, err := s.seatRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		chosen, err := engine.LateSeat(seatingToMap(assignments), playerID, seat.Table, seat.Seat)
		if err != nil {
			return mapSeatingError(err)
		}
		return s.seatRepo.Create(ctx, exec, &models.SeatAssignment{
			TournamentID: tournamentID,
			PlayerID:     playerID,
			TableNumber:  chosen.Table,
			SeatNumber:   chosen.Seat,
		})
	})
	if err != nil {
		return err
	}

	if confirmed != nil && s.sink != nil {
		s.sink.PaymentConfirmed(*confirmed)
	}
	return nil
}

// RebalanceTables консолидирует рассадку и возвращает применённую дельту.
func (s *lifecycleService) RebalanceTables(ctx context.Context, tournamentID int) ([]engine.Relocation, error) {
	unlock := s.locks.Acquire(tournamentID)
	defer unlock()

	var plan []engine.Relocation
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if tournament.State != models.StateStarted {
			return ErrTournamentNotStarted
		}

		assignments, err := s.seatRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		plan, err = engine.Rebalance(seatingToMap(assignments), tournament.SeatsPerTable)
		if err != nil {
			return err
		}
		for _, move := range plan {
			if err := s.seatRepo.Relocate(ctx, exec, tournamentID, move.PlayerID, move.To.Table, move.To.Seat); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(plan) > 0 && s.sink != nil {
		s.sink.SeatsRebalanced(SeatsRebalancedEvent{TournamentID: tournamentID, Relocations: plan})
	}
	return plan, nil
}

// Cancel прерывает идущий турнир: рассадка и результаты прогона стираются,
// оплаты и бонусы сохраняются, турнир возвращается в upcoming для перезапуска.
func (s *lifecycleService) Cancel(ctx context.Context, tournamentID int) error {
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
		if tournament.State != models.StateStarted {
			return ErrTournamentNotStarted
		}

		if err := s.seatRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return err
		}
		if err := s.regRepo.ResetRunState(ctx, exec, tournamentID); err != nil {
			return err
		}
		return s.tournamentRepo.UpdateState(ctx, exec, tournamentID, models.StateUpcoming)
	})
}

// Finish закрывает турнир вручную. Допустим только когда активных игроков
// не больше одного; единственный оставшийся получает первое место.
func (s *lifecycleService) Finish(ctx context.Context, tournamentID int) error {
	unlock := s.locks.Acquire(tournamentID)
	defer unlock()

	var events []PlayerEliminatedEvent
	var finished *TournamentFinishedEvent

	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		events = events[:0]
		finished = nil

		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if tournament.State != models.StateStarted {
			return ErrTournamentNotStarted
		}

		statusPlaying := models.StatusPlaying
		remaining, err := s.regRepo.ListByTournament(ctx, exec, tournamentID, &statusPlaying)
		if err != nil {
			return err
		}
		if len(remaining) > 1 {
			return ErrActivePlayersRemain
		}

		if len(remaining) == 1 {
			eliminatedCount, err := s.regRepo.CountByStatuses(ctx, exec, tournamentID, models.StatusEliminated)
			if err != nil {
				return err
			}
			totalParticipants := eliminatedCount + 1
			if err := s.eliminateOne(ctx, exec, tournament, remaining[0], 1, totalParticipants, &events); err != nil {
				return err
			}
		}

		if err := s.tournamentRepo.UpdateState(ctx, exec, tournamentID, models.StateFinished); err != nil {
			return err
		}
		standings, err := s.collectStandings(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		finished = &TournamentFinishedEvent{TournamentID: tournamentID, Standings: standings}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEliminations(ctx, events, finished)
	return nil
}

// collectStandings собирает итоговую таблицу — постоянную запись истории
// турнира для сезонных лидербордов.
func (s *lifecycleService) collectStandings(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.LeaderboardRow, error) {
	registrations, err := s.regRepo.ListByTournament(ctx, exec, tournamentID, nil)
	if err != nil {
		return nil, err
	}

	rows := make([]models.LeaderboardRow, 0, len(registrations))
	for _, reg := range registrations {
		if reg.FinishPlace == nil {
			continue
		}
		rows = append(rows, models.LeaderboardRow{
			PlayerID:     reg.PlayerID,
			FinishPlace:  reg.FinishPlace,
			PointsEarned: reg.PointsEarned,
			BonusPoints:  reg.BonusPoints,
			TotalPoints:  reg.TotalPoints(),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return *rows[i].FinishPlace < *rows[j].FinishPlace
	})
	return rows, nil
}
