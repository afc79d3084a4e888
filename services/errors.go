package services

import "errors"

// Общие ошибки движка, используемые в сервисах и маппинге HTTP.
var (
	// Ресурсы
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrRegistrationNotFound = errors.New("registration not found")

	// Ошибки валидации
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrInvalidCapacity         = errors.New("tournament capacity must be positive")
	ErrInvalidBuyIn            = errors.New("tournament buy-in must not be negative")
	ErrInvalidSeatsPerTable    = errors.New("seats per table must be positive")
	ErrInvalidPointsTable      = errors.New("manual points table is invalid")
	ErrInvalidPaymentAmount    = errors.New("payment amount must be positive")
	ErrInvalidPaymentMethod    = errors.New("unknown payment method")
	ErrInvalidBonusAmount      = errors.New("bonus amount must be positive")
	ErrInvalidFinishPlace      = errors.New("finish place must be positive")
	ErrInvalidSeatTarget       = errors.New("table and seat numbers must be positive")

	// Недопустимые переходы статусов и состояний
	ErrInvalidStateTransition = errors.New("invalid tournament state transition")
	ErrInvalidStatusChange    = errors.New("registration status does not permit this operation")
	ErrRegistrationNotOpen    = errors.New("tournament registration is not open")
	ErrTournamentNotStarted   = errors.New("tournament is not in progress")
	ErrTournamentFinished     = errors.New("tournament is finished and read-only")
	ErrTournamentNotUpcoming  = errors.New("tournament can only be deleted while upcoming")
	ErrNoPlayers              = errors.New("no paid players to start the tournament with")
	ErrActivePlayersRemain    = errors.New("more than one active player remains")

	// Конфликты
	ErrAlreadyRegistered      = errors.New("player is already registered for this tournament")
	ErrTournamentFull         = errors.New("tournament registration is full")
	ErrDuplicateFinishPlace   = errors.New("finish place is already taken in this tournament")
	ErrSeatOccupied           = errors.New("target seat is already occupied")
)
