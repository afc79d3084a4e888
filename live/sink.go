package live

import (
	"strconv"

	"github.com/Dosada05/club-engine/services"
)

// Типы событий, уходящих в комнаты турниров.
const (
	EventPaymentConfirmed   = "PAYMENT_CONFIRMED"
	EventPlayerEliminated   = "PLAYER_ELIMINATED"
	EventSeatsRebalanced    = "SEATS_REBALANCED"
	EventTournamentFinished = "TOURNAMENT_FINISHED"
)

// HubSink транслирует доменные события движка в websocket-комнаты.
// Доставка fire-and-forget: хаб никогда не возвращает ошибок наверх.
type HubSink struct {
	hub *Hub
}

func NewHubSink(hub *Hub) *HubSink {
	return &HubSink{hub: hub}
}

func (s *HubSink) PaymentConfirmed(event services.PaymentConfirmedEvent) {
	s.hub.BroadcastToRoom(strconv.Itoa(event.TournamentID), Message{Type: EventPaymentConfirmed, Payload: event})
}

func (s *HubSink) PlayerEliminated(event services.PlayerEliminatedEvent) {
	s.hub.BroadcastToRoom(strconv.Itoa(event.TournamentID), Message{Type: EventPlayerEliminated, Payload: event})
}

func (s *HubSink) SeatsRebalanced(event services.SeatsRebalancedEvent) {
	s.hub.BroadcastToRoom(strconv.Itoa(event.TournamentID), Message{Type: EventSeatsRebalanced, Payload: event})
}

func (s *HubSink) TournamentFinished(event services.TournamentFinishedEvent) {
	s.hub.BroadcastToRoom(strconv.Itoa(event.TournamentID), Message{Type: EventTournamentFinished, Payload: event})
}
