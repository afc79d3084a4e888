package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

var (
	ErrNoPlayersToSeat   = errors.New("no players to seat")
	ErrInvalidTableSize  = errors.New("seats per table must be positive")
	ErrSeatOccupied      = errors.New("seat is already occupied")
	ErrInvalidSeatTarget = errors.New("table and seat numbers must be positive")
)

// DefaultSeatsPerTable — стандартная вместимость стола.
const DefaultSeatsPerTable = 10

// Seat — координата физического места.
type Seat struct {
	Table int `json:"table"`
	Seat  int `json:"seat"`
}

// Relocation описывает один перенос игрока при консолидации столов.
type Relocation struct {
	PlayerID int  `json:"player_id"`
	From     Seat `json:"from"`
	To       Seat `json:"to"`
}

// AssignInitial рассаживает игроков по минимальному числу столов, заполняя их
// слева направо. Порядок игроков перемешивается один раз за вызов, поэтому
// конкретные места недетерминированы; гарантируются только отсутствие коллизий
// и посадка каждого игрока ровно на одно место.
func AssignInitial(playerIDs []int, seatsPerTable int) (map[int]Seat, error) {
	if len(playerIDs) == 0 {
		return nil, ErrNoPlayersToSeat
	}
	if seatsPerTable < 1 {
		return nil, ErrInvalidTableSize
	}

	shuffled := make([]int, len(playerIDs))
	copy(shuffled, playerIDs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	seating := make(map[int]Seat, len(shuffled))
	for i, playerID := range shuffled {
		seating[playerID] = Seat{
			Table: i/seatsPerTable + 1,
			Seat:  i%seatsPerTable + 1,
		}
	}
	return seating, nil
}

// Rebalance консолидирует рассадку, когда занятых столов больше, чем нужно
// для оставшихся игроков. Закрываются столы с наибольшими номерами, их
// игроки переносятся на свободные места удержанных столов. Игроки на
// удержанных столах не перемещаются. Возвращается только дельта переносов.
func Rebalance(current map[int]Seat, seatsPerTable int) ([]Relocation, error) {
	if seatsPerTable < 1 {
		return nil, ErrInvalidTableSize
	}
	if len(current) == 0 {
		return nil, nil
	}

	occupiedTables := make(map[int]bool)
	for _, seat := range current {
		occupiedTables[seat.Table] = true
	}

	tablesNeeded := (len(current) + seatsPerTable - 1) / seatsPerTable
	if tablesNeeded >= len(occupiedTables) {
		return nil, nil
	}

	tables := make([]int, 0, len(occupiedTables))
	for t := range occupiedTables {
		tables = append(tables, t)
	}
	sort.Ints(tables)
	retained := make(map[int]bool, tablesNeeded)
	for _, t := range tables[:tablesNeeded] {
		retained[t] = true
	}

	displaced := make([]int, 0)
	takenSeats := make(map[Seat]bool)
	for playerID, seat := range current {
		if retained[seat.Table] {
			takenSeats[seat] = true
		} else {
			displaced = append(displaced, playerID)
		}
	}
	// Стабильный порядок до перемешивания, чтобы результат не зависел от обхода map.
	sort.Ints(displaced)
	rand.Shuffle(len(displaced), func(i, j int) {
		displaced[i], displaced[j] = displaced[j], displaced[i]
	})

	freeSeats := make([]Seat, 0, tablesNeeded*seatsPerTable-len(takenSeats))
	for _, t := range tables[:tablesNeeded] {
		for s := 1; s <= seatsPerTable; s++ {
			seat := Seat{Table: t, Seat: s}
			if !takenSeats[seat] {
				freeSeats = append(freeSeats, seat)
			}
		}
	}
	if len(freeSeats) < len(displaced) {
		return nil, fmt.Errorf("not enough free seats to relocate %d players onto %d tables", len(displaced), tablesNeeded)
	}

	plan := make([]Relocation, 0, len(displaced))
	for i, playerID := range displaced {
		plan = append(plan, Relocation{
			PlayerID: playerID,
			From:     current[playerID],
			To:       freeSeats[i],
		})
	}
	return plan, nil
}

// LateSeat проверяет и добавляет посадку опоздавшего игрока на выбранное место.
func LateSeat(current map[int]Seat, playerID, table, seat int) (Seat, error) {
	if table < 1 || seat < 1 {
		return Seat{}, ErrInvalidSeatTarget
	}
	target := Seat{Table: table, Seat: seat}
	for _, occupied := range current {
		if occupied == target {
			return Seat{}, ErrSeatOccupied
		}
	}
	return target, nil
}
