package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/club-engine/models"
	"github.com/Dosada05/club-engine/repositories"
)

// fakeExec — маркер транзакции. Фейковые репозитории запоминают полученный
// executor, чтобы тесты могли проверить, что вызов шёл внутри транзакции.
type fakeExec struct{}

func (fakeExec) ExecContext(_ context.Context, _ string, _ ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (fakeExec) QueryContext(_ context.Context, _ string, _ ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (fakeExec) QueryRowContext(_ context.Context, _ string, _ ...interface{}) *sql.Row {
	return nil
}

// fakeTransactor выполняет функцию напрямую, передавая маркерный executor.
type fakeTransactor struct{}

func (fakeTransactor) InTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(fakeExec{})
}

type fakeTournamentRepo struct {
	nextID      int
	tournaments map[int]*models.Tournament

	lastUpdateExec repositories.SQLExecutor
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{nextID: 1, tournaments: make(map[int]*models.Tournament)}
}

func (r *fakeTournamentRepo) add(t *models.Tournament) *models.Tournament {
	t.ID = r.nextID
	r.nextID++
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	r.tournaments[t.ID] = t
	return t
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.add(t)
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	result := make([]models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		if filter.State != nil && t.State != *filter.State {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.lastUpdateExec = exec
	stored, ok := r.tournaments[t.ID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	*stored = *t
	return nil
}

func (r *fakeTournamentRepo) UpdateState(_ context.Context, _ repositories.SQLExecutor, id int, state models.TournamentState) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.State = state
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakeRegistrationRepo struct {
	nextID        int
	registrations []*models.Registration

	lastListExec repositories.SQLExecutor
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{nextID: 1}
}

func (r *fakeRegistrationRepo) add(reg *models.Registration) *models.Registration {
	reg.ID = r.nextID
	r.nextID++
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now()
	}
	r.registrations = append(r.registrations, reg)
	return reg
}

func (r *fakeRegistrationRepo) byID(id int) *models.Registration {
	for _, reg := range r.registrations {
		if reg.ID == id {
			return reg
		}
	}
	return nil
}

func (r *fakeRegistrationRepo) Create(_ context.Context, _ repositories.SQLExecutor, reg *models.Registration) error {
	for _, existing := range r.registrations {
		if existing.TournamentID == reg.TournamentID && existing.PlayerID == reg.PlayerID {
			return repositories.ErrRegistrationConflict
		}
	}
	r.add(reg)
	return nil
}

func (r *fakeRegistrationRepo) FindByTournamentAndPlayer(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerID int) (*models.Registration, error) {
	for _, reg := range r.registrations {
		if reg.TournamentID == tournamentID && reg.PlayerID == playerID {
			return reg, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (r *fakeRegistrationRepo) ListByTournament(_ context.Context, exec repositories.SQLExecutor, tournamentID int, statusFilter *models.RegistrationStatus) ([]*models.Registration, error) {
	r.lastListExec = exec
	result := make([]*models.Registration, 0)
	for _, reg := range r.registrations {
		if reg.TournamentID != tournamentID {
			continue
		}
		if statusFilter != nil && reg.Status != *statusFilter {
			continue
		}
		result = append(result, reg)
	}
	return result, nil
}

func (r *fakeRegistrationRepo) CountByStatuses(_ context.Context, _ repositories.SQLExecutor, tournamentID int, statuses ...models.RegistrationStatus) (int, error) {
	count := 0
	for _, reg := range r.registrations {
		if reg.TournamentID != tournamentID {
			continue
		}
		for _, s := range statuses {
			if reg.Status == s {
				count++
				break
			}
		}
	}
	return count, nil
}

func (r *fakeRegistrationRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.RegistrationStatus) error {
	reg := r.byID(id)
	if reg == nil {
		return repositories.ErrRegistrationNotFound
	}
	reg.Status = status
	return nil
}

func (r *fakeRegistrationRepo) Reopen(_ context.Context, _ repositories.SQLExecutor, id int) error {
	reg := r.byID(id)
	if reg == nil {
		return repositories.ErrRegistrationNotFound
	}
	reg.Status = models.StatusRegistered
	reg.PaymentAmount = nil
	reg.PaymentMethod = nil
	reg.PaymentNotes = nil
	reg.PaidAt = nil
	return nil
}

func (r *fakeRegistrationRepo) CheckInAllPaid(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, error) {
	affected := 0
	for _, reg := range r.registrations {
		if reg.TournamentID == tournamentID && reg.Status == models.StatusPaid {
			reg.Status = models.StatusPlaying
			affected++
		}
	}
	return affected, nil
}

func (r *fakeRegistrationRepo) RecordPayment(_ context.Context, _ repositories.SQLExecutor, id int, payment repositories.PaymentRecord) error {
	reg := r.byID(id)
	if reg == nil {
		return repositories.ErrRegistrationNotFound
	}
	now := time.Now()
	amount := payment.Amount
	method := payment.Method
	reg.Status = models.StatusPaid
	reg.PaymentAmount = &amount
	reg.PaymentMethod = &method
	reg.PaymentNotes = payment.Notes
	reg.PaidAt = &now
	return nil
}

func (r *fakeRegistrationRepo) SetEliminated(_ context.Context, _ repositories.SQLExecutor, id int, finishPlace, pointsEarned int) error {
	reg := r.byID(id)
	if reg == nil {
		return repositories.ErrRegistrationNotFound
	}
	for _, other := range r.registrations {
		if other.ID != id && other.TournamentID == reg.TournamentID &&
			other.FinishPlace != nil && *other.FinishPlace == finishPlace {
			return repositories.ErrFinishPlaceConflict
		}
	}
	reg.Status = models.StatusEliminated
	reg.FinishPlace = &finishPlace
	reg.PointsEarned = pointsEarned
	return nil
}

func (r *fakeRegistrationRepo) ClearElimination(_ context.Context, _ repositories.SQLExecutor, id int) error {
	reg := r.byID(id)
	if reg == nil {
		return repositories.ErrRegistrationNotFound
	}
	reg.Status = models.StatusPlaying
	reg.FinishPlace = nil
	reg.PointsEarned = 0
	return nil
}

func (r *fakeRegistrationRepo) AddBonusPoints(_ context.Context, _ repositories.SQLExecutor, id int, amount int) error {
	reg := r.byID(id)
	if reg == nil {
		return repositories.ErrRegistrationNotFound
	}
	reg.BonusPoints += amount
	return nil
}

func (r *fakeRegistrationRepo) ResetRunState(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	for _, reg := range r.registrations {
		if reg.TournamentID != tournamentID {
			continue
		}
		if reg.Status == models.StatusPlaying || reg.Status == models.StatusEliminated {
			reg.Status = models.StatusPaid
			reg.FinishPlace = nil
			reg.PointsEarned = 0
		}
	}
	return nil
}

type fakeSeatRepo struct {
	nextID      int
	assignments []*models.SeatAssignment

	lastListExec repositories.SQLExecutor
}

func newFakeSeatRepo() *fakeSeatRepo {
	return &fakeSeatRepo{nextID: 1}
}

func (r *fakeSeatRepo) Create(_ context.Context, _ repositories.SQLExecutor, a *models.SeatAssignment) error {
	for _, existing := range r.assignments {
		if existing.TournamentID == a.TournamentID &&
			existing.TableNumber == a.TableNumber && existing.SeatNumber == a.SeatNumber {
			return repositories.ErrSeatTaken
		}
		if existing.TournamentID == a.TournamentID && existing.PlayerID == a.PlayerID {
			return repositories.ErrSeatTaken
		}
	}
	a.ID = r.nextID
	r.nextID++
	r.assignments = append(r.assignments, a)
	return nil
}

func (r *fakeSeatRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, assignments []*models.SeatAssignment) error {
	for _, a := range assignments {
		if err := r.Create(ctx, exec, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeSeatRepo) ListByTournament(_ context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.SeatAssignment, error) {
	r.lastListExec = exec
	result := make([]*models.SeatAssignment, 0)
	for _, a := range r.assignments {
		if a.TournamentID == tournamentID {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TableNumber != result[j].TableNumber {
			return result[i].TableNumber < result[j].TableNumber
		}
		return result[i].SeatNumber < result[j].SeatNumber
	})
	return result, nil
}

func (r *fakeSeatRepo) Relocate(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerID, tableNumber, seatNumber int) error {
	for _, a := range r.assignments {
		if a.TournamentID == tournamentID && a.PlayerID == playerID {
			a.TableNumber = tableNumber
			a.SeatNumber = seatNumber
			return nil
		}
	}
	return repositories.ErrSeatAssignmentNotFound
}

func (r *fakeSeatRepo) DeleteByPlayer(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerID int) error {
	for i, a := range r.assignments {
		if a.TournamentID == tournamentID && a.PlayerID == playerID {
			r.assignments = append(r.assignments[:i], r.assignments[i+1:]...)
			return nil
		}
	}
	return repositories.ErrSeatAssignmentNotFound
}

func (r *fakeSeatRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	kept := r.assignments[:0]
	for _, a := range r.assignments {
		if a.TournamentID != tournamentID {
			kept = append(kept, a)
		}
	}
	r.assignments = kept
	return nil
}

type fakePlayerRepo struct {
	players map[int]*models.Player
}

func newFakePlayerRepo(ids ...int) *fakePlayerRepo {
	repo := &fakePlayerRepo{players: make(map[int]*models.Player)}
	for _, id := range ids {
		repo.players[id] = &models.Player{ID: id, DisplayName: "Player " + string(rune('A'+id%26))}
	}
	return repo
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return p, nil
}

func (r *fakePlayerRepo) ListByIDs(_ context.Context, ids []int) (map[int]*models.Player, error) {
	result := make(map[int]*models.Player)
	for _, id := range ids {
		if p, ok := r.players[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

// recordingSink копит события для проверок порядка и состава.
type recordingSink struct {
	payments     []PaymentConfirmedEvent
	eliminations []PlayerEliminatedEvent
	rebalances   []SeatsRebalancedEvent
	finishes     []TournamentFinishedEvent
}

func (s *recordingSink) PaymentConfirmed(event PaymentConfirmedEvent) {
	s.payments = append(s.payments, event)
}

func (s *recordingSink) PlayerEliminated(event PlayerEliminatedEvent) {
	s.eliminations = append(s.eliminations, event)
}

func (s *recordingSink) SeatsRebalanced(event SeatsRebalancedEvent) {
	s.rebalances = append(s.rebalances, event)
}

func (s *recordingSink) TournamentFinished(event TournamentFinishedEvent) {
	s.finishes = append(s.finishes, event)
}

// testEnv собирает сервисы на фейковых репозиториях.
type testEnv struct {
	tournaments *fakeTournamentRepo
	regs        *fakeRegistrationRepo
	seats       *fakeSeatRepo
	players     *fakePlayerRepo
	sink        *recordingSink

	registration RegistrationService
	lifecycle    LifecycleService
	stats        StatsService
}

func newTestEnv(playerIDs ...int) *testEnv {
	env := &testEnv{
		tournaments: newFakeTournamentRepo(),
		regs:        newFakeRegistrationRepo(),
		seats:       newFakeSeatRepo(),
		players:     newFakePlayerRepo(playerIDs...),
		sink:        &recordingSink{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tx := fakeTransactor{}
	locks := NewTournamentLocks()

	env.registration = NewRegistrationService(tx, locks, env.tournaments, env.regs, env.seats, env.players, env.sink, logger)
	env.lifecycle = NewLifecycleService(tx, locks, env.tournaments, env.regs, env.seats, env.players, env.sink, nil, logger)
	env.stats = NewStatsService(tx, env.tournaments, env.regs, env.seats, env.players, logger)
	return env
}

func (env *testEnv) addTournament(state models.TournamentState, capacity int) *models.Tournament {
	return env.tournaments.add(&models.Tournament{
		Name:          "Friday Deepstack",
		Capacity:      capacity,
		SeatsPerTable: 10,
		StartsAt:      time.Now().Add(24 * time.Hour),
		State:         state,
		PointsMode:    models.PointsModeComputed,
	})
}

func (env *testEnv) addRegistration(tournamentID, playerID int, status models.RegistrationStatus) *models.Registration {
	return env.regs.add(&models.Registration{
		TournamentID: tournamentID,
		PlayerID:     playerID,
		Status:       status,
	})
}

func (env *testEnv) seatPlayer(tournamentID, playerID, table, seat int) {
	env.seats.assignments = append(env.seats.assignments, &models.SeatAssignment{
		ID:           env.seats.nextID,
		TournamentID: tournamentID,
		PlayerID:     playerID,
		TableNumber:  table,
		SeatNumber:   seat,
	})
	env.seats.nextID++
}
