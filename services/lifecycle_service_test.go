package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/club-engine/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournament(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults", func(t *testing.T) {
		env := newTestEnv()
		tournament, err := env.lifecycle.CreateTournament(ctx, CreateTournamentInput{
			Name:     "Sunday Special",
			Capacity: 50,
			BuyIn:    decimal.NewFromInt(100),
			StartsAt: time.Now().Add(48 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, models.StateUpcoming, tournament.State)
		assert.Equal(t, 10, tournament.SeatsPerTable)
		assert.Equal(t, models.PointsModeComputed, tournament.PointsMode)
	})

	t.Run("validates input", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.lifecycle.CreateTournament(ctx, CreateTournamentInput{Capacity: 10})
		assert.ErrorIs(t, err, ErrTournamentNameRequired)

		_, err = env.lifecycle.CreateTournament(ctx, CreateTournamentInput{Name: "x", Capacity: 0})
		assert.ErrorIs(t, err, ErrInvalidCapacity)

		_, err = env.lifecycle.CreateTournament(ctx, CreateTournamentInput{
			Name: "x", Capacity: 10, BuyIn: decimal.NewFromInt(-1),
		})
		assert.ErrorIs(t, err, ErrInvalidBuyIn)

		_, err = env.lifecycle.CreateTournament(ctx, CreateTournamentInput{
			Name: "x", Capacity: 10,
			PointsMode:  models.PointsModeManual,
			PointsTable: models.PointsTable{0: 100},
		})
		assert.ErrorIs(t, err, ErrInvalidPointsTable)
	})
}

func TestUpdateTournament(t *testing.T) {
	ctx := context.Background()

	t.Run("applies partial changes", func(t *testing.T) {
		env := newTestEnv()
		tournament := env.addTournament(models.StateUpcoming, 10)
		name := "Saturday Turbo"
		capacity := 60

		updated, err := env.lifecycle.UpdateTournament(ctx, tournament.ID, UpdateTournamentInput{
			Name:     &name,
			Capacity: &capacity,
		})
		require.NoError(t, err)
		assert.Equal(t, "Saturday Turbo", updated.Name)
		assert.Equal(t, 60, updated.Capacity)
		assert.Equal(t, models.PointsModeComputed, updated.PointsMode)
	})

	t.Run("writes through the same transaction that holds the row lock", func(t *testing.T) {
		env := newTestEnv()
		tournament := env.addTournament(models.StateUpcoming, 10)
		name := "Monday Freezeout"

		_, err := env.lifecycle.UpdateTournament(ctx, tournament.ID, UpdateTournamentInput{Name: &name})
		require.NoError(t, err)

		require.NotNil(t, env.tournaments.lastUpdateExec)
		assert.IsType(t, fakeExec{}, env.tournaments.lastUpdateExec)
	})

	t.Run("rejects finished tournament", func(t *testing.T) {
		env := newTestEnv()
		tournament := env.addTournament(models.StateFinished, 10)
		name := "Renamed"

		_, err := env.lifecycle.UpdateTournament(ctx, tournament.ID, UpdateTournamentInput{Name: &name})
		assert.ErrorIs(t, err, ErrTournamentFinished)
	})
}

func TestStateTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("follows the lifecycle order", func(t *testing.T) {
		env := newTestEnv(1)
		tournament := env.addTournament(models.StateUpcoming, 10)
		env.addRegistration(tournament.ID, 1, models.StatusPaid)

		require.NoError(t, env.lifecycle.OpenRegistration(ctx, tournament.ID))
		assert.Equal(t, models.StateRegistrationOpen, tournament.State)

		require.NoError(t, env.lifecycle.StartCheckIn(ctx, tournament.ID))
		assert.Equal(t, models.StateCheckIn, tournament.State)

		require.NoError(t, env.lifecycle.Start(ctx, tournament.ID))
		assert.Equal(t, models.StateStarted, tournament.State)
	})

	t.Run("rejects skipped stages", func(t *testing.T) {
		env := newTestEnv()
		tournament := env.addTournament(models.StateUpcoming, 10)

		err := env.lifecycle.Start(ctx, tournament.ID)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)

		err = env.lifecycle.StartCheckIn(ctx, tournament.ID)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
	})

	t.Run("delete is allowed only while upcoming", func(t *testing.T) {
		env := newTestEnv()
		upcoming := env.addTournament(models.StateUpcoming, 10)
		started := env.addTournament(models.StateStarted, 10)

		require.NoError(t, env.lifecycle.DeleteTournament(ctx, upcoming.ID))
		assert.ErrorIs(t, env.lifecycle.DeleteTournament(ctx, started.ID), ErrTournamentNotUpcoming)
	})
}

func TestStart(t *testing.T) {
	ctx := context.Background()

	t.Run("seats all paid players", func(t *testing.T) {
		env := newTestEnv(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)
		tournament := env.addTournament(models.StateCheckIn, 20)
		for playerID := 1; playerID <= 9; playerID++ {
			env.addRegistration(tournament.ID, playerID, models.StatusPaid)
		}
		env.addRegistration(tournament.ID, 10, models.StatusRegistered)
		env.addRegistration(tournament.ID, 11, models.StatusNoShow)

		require.NoError(t, env.lifecycle.Start(ctx, tournament.ID))
		assert.Equal(t, models.StateStarted, tournament.State)

		playing, err := env.regs.CountByStatuses(ctx, nil, tournament.ID, models.StatusPlaying)
		require.NoError(t, err)
		assert.Equal(t, 9, playing)

		seats, err := env.seats.ListByTournament(ctx, nil, tournament.ID)
		require.NoError(t, err)
		require.Len(t, seats, 9)
		for _, seat := range seats {
			assert.Equal(t, 1, seat.TableNumber, "nine players fit a single table")
		}
	})

	t.Run("requires at least one paid player", func(t *testing.T) {
		env := newTestEnv(1)
		tournament := env.addTournament(models.StateCheckIn, 10)
		env.addRegistration(tournament.ID, 1, models.StatusRegistered)

		err := env.lifecycle.Start(ctx, tournament.ID)
		assert.ErrorIs(t, err, ErrNoPlayers)
	})
}

func TestEliminateOrFinish(t *testing.T) {
	ctx := context.Background()

	t.Run("eliminates one player and awards points", func(t *testing.T) {
		env := newTestEnv(1, 2, 3, 4)
		tournament := env.addTournament(models.StateStarted, 10)
		for playerID := 1; playerID <= 4; playerID++ {
			env.addRegistration(tournament.ID, playerID, models.StatusPlaying)
			env.seatPlayer(tournament.ID, playerID, 1, playerID)
		}

		require.NoError(t, env.lifecycle.EliminateOrFinish(ctx, tournament.ID, 4, 4))

		reg, err := env.regs.FindByTournamentAndPlayer(ctx, nil, tournament.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, models.StatusEliminated, reg.Status)
		require.NotNil(t, reg.FinishPlace)
		assert.Equal(t, 4, *reg.FinishPlace)
		// Фонд 4 * 75 = 300, четвёртое место 8.5% = 25.5 -> 26.
		assert.Equal(t, 26, reg.PointsEarned)

		seats, err := env.seats.ListByTournament(ctx, nil, tournament.ID)
		require.NoError(t, err)
		assert.Len(t, seats, 3, "eliminated player frees the seat")

		require.Len(t, env.sink.eliminations, 1)
		assert.Empty(t, env.sink.finishes)
		assert.Equal(t, models.StateStarted, tournament.State)
	})

	t.Run("second-to-last elimination finishes the tournament", func(t *testing.T) {
		env := newTestEnv(1, 2, 3, 4)
		tournament := env.addTournament(models.StateStarted, 10)
		env.addRegistration(tournament.ID, 1, models.StatusPlaying)
		env.addRegistration(tournament.ID, 2, models.StatusPlaying)
		for playerID, place := range map[int]int{3: 3, 4: 4} {
			reg := env.addRegistration(tournament.ID, playerID, models.StatusEliminated)
			p := place
			reg.FinishPlace = &p
			reg.PointsEarned = 10
		}
		env.seatPlayer(tournament.ID, 1, 1, 1)
		env.seatPlayer(tournament.ID, 2, 1, 2)

		require.NoError(t, env.lifecycle.EliminateOrFinish(ctx, tournament.ID, 2, 2))

		assert.Equal(t, models.StateFinished, tournament.State)

		// Фонд по четырём дошедшим до игры: 4 * 75 = 300.
		second, err := env.regs.FindByTournamentAndPlayer(ctx, nil, tournament.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, 51, second.PointsEarned) // 17%

		winner, err := env.regs.FindByTournamentAndPlayer(ctx, nil, tournament.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, models.StatusEliminated, winner.Status)
		require.NotNil(t, winner.FinishPlace)
		assert.Equal(t, 1, *winner.FinishPlace)
		assert.Equal(t, 72, winner.PointsEarned) // 24%

		require.Len(t, env.sink.eliminations, 2)
		require.Len(t, env.sink.finishes, 1)
		standings := env.sink.finishes[0].Standings
		require.Len(t, standings, 4)
		assert.Equal(t, 1, *standings[0].FinishPlace)
		assert.Equal(t, 4, *standings[3].FinishPlace)
	})

	t.Run("manual points table is authoritative", func(t *testing.T) {
		env := newTestEnv(1, 2, 3)
		tournament := env.addTournament(models.StateStarted, 10)
		tournament.PointsMode = models.PointsModeManual
		tournament.PointsTable = models.PointsTable{1: 100, 2: 60}
		for playerID := 1; playerID <= 3; playerID++ {
			env.addRegistration(tournament.ID, playerID, models.StatusPlaying)
			env.seatPlayer(tournament.ID, playerID, 1, playerID)
		}

		// Место вне ручной таблицы ничего не приносит.
		require.NoError(t, env.lifecycle.EliminateOrFinish(ctx, tournament.ID, 3, 3))
		third, err := env.regs.FindByTournamentAndPlayer(ctx, nil, tournament.ID, 3)
		require.NoError(t, err)
		assert.Zero(t, third.PointsEarned)

		require.NoError(t, env.lifecycle.EliminateOrFinish(ctx, tournament.ID, 2, 2))
		second, err := env.regs.FindByTournamentAndPlayer(ctx, nil, tournament.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, 60, second.PointsEarned)

		winner, err := env.regs.FindByTournamentAndPlayer(ctx, nil, tournament.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, 100, winner.PointsEarned)
	})

	t.Run("rejects duplicate finish place", func(t *testing.T) {
		env := newTestEnv(1, 2, 3)
		tournament := env.addTournament(models.StateStarted, 10)
		env.addRegistration(tournament.ID, 1, models.StatusPlaying)
		env.addRegistration(tournament.ID, 2, models.StatusPlaying)
		reg := env.addRegistration(tournament.ID, 3, models.StatusEliminated)
		place := 3
		reg.FinishPlace = &place

		err := env.lifecycle.EliminateOrFinish(ctx, tournament.ID, 2, 3)
		assert.ErrorIs(t, err, ErrDuplicateFinishPlace)
	})

	t.Run("rejects players who are not playing", func(t *testing.T) {
		env := newTestEnv(1, 2)
		tournament := env.addTournament(models.StateStarted, 10)
		env.addRegistration(tournament.ID, 1, models.StatusPlaying)
		env.addRegistration(tournament.ID, 2, models.StatusPaid)

		err := env.lifecycle.EliminateOrFinish(ctx, tournament.ID, 2, 5)
		assert.ErrorIs(t, err, ErrInvalidStatusChange)
	})

	t.Run("rejects invalid place and wrong state", func(t *testing.T) {
		env := newTestEnv(1)
		tournament := env.addTournament(models.StateCheckIn, 10)
		env.addRegistration(tournament.ID, 1, models.StatusPaid)

		assert.ErrorIs(t, env.lifecycle.EliminateOrFinish(ctx, tournament.ID, 1, 0), ErrInvalidFinishPlace)
		assert.ErrorIs(t, env.lifecycle.EliminateOrFinish(ctx, tournament.ID, 1, 2), ErrTournamentNotStarted)
	})
}

func TestFinish(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects while several players are active", func(t *testing.T) {
		env := newTestEnv(1, 2)
		tournament := env.addTournament(models.StateStarted, 10)
		env.addRegistration(tournament.ID, 1, models.StatusPlaying)
		env.addRegistration(tournament.ID, 2, models.StatusPlaying)

		err := env.lifecycle.Finish(ctx, tournament.ID)
		assert.ErrorIs(t, err, ErrActivePlayersRemain)
	})

	t.Run("awards first place to the sole survivor", func(t *testing.T) {
		env := newTestEnv(1, 2, 3)
		tournament := env.addTournament(models.StateStarted, 10)
		env.addRegistration(tournament.ID, 1, models.StatusPlaying)
		env.seatPlayer(tournament.ID, 1, 1, 1)
		for playerID, place := range map[int]int{2: 2, 3: 3} {
			reg := env.addRegistration(tournament.ID, playerID, models.StatusEliminated)
			p := place
			reg.FinishPlace = &p
		}

		require.NoError(t, env.lifecycle.Finish(ctx, tournament.ID))
		assert.Equal(t, models.StateFinished, tournament.State)

		winner, err := env.regs.FindByTournamentAndPlayer(ctx, nil, tournament.ID, 1)
		require.NoError(t, err)
		require.NotNil(t, winner.FinishPlace)
		assert.Equal(t, 1, *winner.FinishPlace)
		// Фонд 3 * 75 = 225, первое место 24% = 54.
		assert.Equal(t, 54, winner.PointsEarned)

		require.Len(t, env.sink.finishes, 1)
		assert.Len(t, env.sink.finishes[0].Standings, 3)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("rolls the run back to upcoming", func(t *testing.T) {
		env := newTestEnv(1, 2, 3)
		tournament := env.addTournament(models.StateStarted, 10)
		first := env.addRegistration(tournament.ID, 1, models.StatusPlaying)
		first.BonusPoints = 4
		env.addRegistration(tournament.ID, 2, models.StatusPlaying)
		eliminated := env.addRegistration(tournament.ID, 3, models.StatusEliminated)
		place := 3
		eliminated.FinishPlace = &place
		eliminated.PointsEarned = 17
		env.seatPlayer(tournament.ID, 1, 1, 1)
		env.seatPlayer(tournament.ID, 2, 1, 2)

		require.NoError(t, env.lifecycle.Cancel(ctx, tournament.ID))

		assert.Equal(t, models.StateUpcoming, tournament.State)

		seats, err := env.seats.ListByTournament(ctx, nil, tournament.ID)
		require.NoError(t, err)
		assert.Empty(t, seats)

		for _, reg := range []*models.Registration{first, eliminated} {
			assert.Equal(t, models.StatusPaid, reg.Status)
			assert.Nil(t, reg.FinishPlace)
			assert.Zero(t, reg.PointsEarned)
		}
		// Бонусные очки отмена не трогает.
		assert.Equal(t, 4, first.BonusPoints)
	})

	t.Run("rejects outside started state", func(t *testing.T) {
		env := newTestEnv()
		tournament := env.addTournament(models.StateRegistrationOpen, 10)

		err := env.lifecycle.Cancel(ctx, tournament.ID)
		assert.ErrorIs(t, err, ErrTournamentNotStarted)
	})
}

func TestLateRegister(t *testing.T) {
	ctx := context.Background()
	payment := PaymentInput{Amount: decimal.NewFromInt(100), Method: "card"}

	t.Run("pays and seats a newcomer in one command", func(t *testing.T) {
		env := newTestEnv(1, 2)
		tournament := env.addTournament(models.StateStarted, 10)
		env.addRegistration(tournament.ID, 1, models.StatusPlaying)
		env.seatPlayer(tournament.ID, 1, 1, 1)

		require.NoError(t, env.lifecycle.LateRegister(ctx, tournament.ID, 2, SeatTarget{Table: 1, Seat: 5}, payment))

		reg, err := env.regs.FindByTournamentAndPlayer(ctx, nil, tournament.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPlaying, reg.Status)
		require.NotNil(t, reg.PaymentAmount)
		assert.True(t, reg.PaymentAmount.Equal(decimal.NewFromInt(100)))

		seats, err := env.seats.ListByTournament(ctx, nil, tournament.ID)
		require.NoError(t, err)
		require.Len(t, seats, 2)

		require.Len(t, env.sink.payments, 1)
		assert.Equal(t, 2, env.sink.payments[0].PlayerID)
	})

	t.Run("rejects occupied seat", func(t *testing.T) {
		env := newTestEnv(1, 2)
		tournament := env.addTournament(models.StateStarted, 10)
		env.addRegistration(tournament.ID, 1, models.StatusPlaying)
		env.seatPlayer(tournament.ID, 1, 1, 1)

		err := env.lifecycle.LateRegister(ctx, tournament.ID, 2, SeatTarget{Table: 1, Seat: 1}, payment)
		assert.ErrorIs(t, err, ErrSeatOccupied)
	})

	t.Run("enforces capacity", func(t *testing.T) {
		env := newTestEnv(1, 2)
		tournament := env.addTournament(models.StateStarted, 1)
		env.addRegistration(tournament.ID, 1, models.StatusPlaying)
		env.seatPlayer(tournament.ID, 1, 1, 1)

		err := env.lifecycle.LateRegister(ctx, tournament.ID, 2, SeatTarget{Table: 1, Seat: 2}, payment)
		assert.ErrorIs(t, err, ErrTournamentFull)
	})

	t.Run("requires a running tournament", func(t *testing.T) {
		env := newTestEnv(1)
		tournament := env.addTournament(models.StateRegistrationOpen, 10)

		err := env.lifecycle.LateRegister(ctx, tournament.ID, 1, SeatTarget{Table: 1, Seat: 1}, payment)
		assert.ErrorIs(t, err, ErrTournamentNotStarted)
	})
}

func TestRebalanceTables(t *testing.T) {
	ctx := context.Background()

	t.Run("consolidates onto fewer tables", func(t *testing.T) {
		env := newTestEnv(1, 2, 3, 4)
		tournament := env.addTournament(models.StateStarted, 10)
		tournament.SeatsPerTable = 4
		env.addRegistration(tournament.ID, 1, models.StatusPlaying)
		env.addRegistration(tournament.ID, 2, models.StatusPlaying)
		env.addRegistration(tournament.ID, 3, models.StatusPlaying)
		env.addRegistration(tournament.ID, 4, models.StatusPlaying)
		env.seatPlayer(tournament.ID, 1, 1, 1)
		env.seatPlayer(tournament.ID, 2, 1, 2)
		env.seatPlayer(tournament.ID, 3, 2, 1)
		env.seatPlayer(tournament.ID, 4, 2, 2)

		plan, err := env.lifecycle.RebalanceTables(ctx, tournament.ID)
		require.NoError(t, err)
		require.Len(t, plan, 2)

		seats, err := env.seats.ListByTournament(ctx, nil, tournament.ID)
		require.NoError(t, err)
		for _, seat := range seats {
			assert.Equal(t, 1, seat.TableNumber)
		}

		require.Len(t, env.sink.rebalances, 1)
		assert.Len(t, env.sink.rebalances[0].Relocations, 2)
	})

	t.Run("already consolidated seating is a no-op without event", func(t *testing.T) {
		env := newTestEnv(1, 2)
		tournament := env.addTournament(models.StateStarted, 10)
		env.addRegistration(tournament.ID, 1, models.StatusPlaying)
		env.addRegistration(tournament.ID, 2, models.StatusPlaying)
		env.seatPlayer(tournament.ID, 1, 1, 1)
		env.seatPlayer(tournament.ID, 2, 1, 2)

		plan, err := env.lifecycle.RebalanceTables(ctx, tournament.ID)
		require.NoError(t, err)
		assert.Empty(t, plan)
		assert.Empty(t, env.sink.rebalances)
	})
}
