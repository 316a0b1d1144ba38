package events

import (
	"bingohall/domain/entities"
)

// EventType represents different types of events in the system
type EventType string

const (
	// Room events, broadcast to everyone watching the room
	EventTypePlayerJoined   EventType = "playerJoined"
	EventTypePlayerLeft     EventType = "playerLeft"
	EventTypeCartelaTaken   EventType = "cartelaTaken"
	EventTypeCountdownTick  EventType = "countdownTick"
	EventTypeRoundStarted   EventType = "roundStarted"
	EventTypeNumberDrawn    EventType = "numberDrawn"
	EventTypeNumberMarked   EventType = "numberMarked"
	EventTypeRoundFinished  EventType = "roundFinished"

	// Wallet events
	EventTypeBalanceChange EventType = "balanceChange"
)

// RoomEventTypes is the closed set of events published per room
var RoomEventTypes = []EventType{
	EventTypePlayerJoined,
	EventTypePlayerLeft,
	EventTypeCartelaTaken,
	EventTypeCountdownTick,
	EventTypeRoundStarted,
	EventTypeNumberDrawn,
	EventTypeNumberMarked,
	EventTypeRoundFinished,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// RoomEvent is an event scoped to a single room
type RoomEvent interface {
	Event
	Room() string
}

// PlayerJoinedEvent is published when a player pays the entry fee
type PlayerJoinedEvent struct {
	RoomID       string `json:"roomId"`
	PlayerID     int64  `json:"playerId"`
	DisplayName  string `json:"displayName"`
	CartelaIndex int    `json:"cartelaIndex,omitempty"`
	PlayerCount  int    `json:"playerCount"`
	Pot          int64  `json:"pot"`
}

func (e PlayerJoinedEvent) Type() EventType { return EventTypePlayerJoined }
func (e PlayerJoinedEvent) Room() string    { return e.RoomID }

// PlayerLeftEvent is published when a player leaves a waiting room
type PlayerLeftEvent struct {
	RoomID      string `json:"roomId"`
	PlayerID    int64  `json:"playerId"`
	Refunded    int64  `json:"refunded"`
	PlayerCount int    `json:"playerCount"`
	RoomClosed  bool   `json:"roomClosed"`
}

func (e PlayerLeftEvent) Type() EventType { return EventTypePlayerLeft }
func (e PlayerLeftEvent) Room() string    { return e.RoomID }

// CartelaTakenEvent is published when a cartela is reserved, with the one released in exchange
type CartelaTakenEvent struct {
	RoomID        string `json:"roomId"`
	PlayerID      int64  `json:"playerId"`
	CartelaIndex  int    `json:"cartelaIndex"`
	ReleasedIndex int    `json:"releasedIndex,omitempty"`
	TakenCartelas []int  `json:"takenCartelas"`
}

func (e CartelaTakenEvent) Type() EventType { return EventTypeCartelaTaken }
func (e CartelaTakenEvent) Room() string    { return e.RoomID }

// CountdownTickEvent counts down to the start attempt
type CountdownTickEvent struct {
	RoomID           string `json:"roomId"`
	SecondsRemaining int    `json:"secondsRemaining"`
}

func (e CountdownTickEvent) Type() EventType { return EventTypeCountdownTick }
func (e CountdownTickEvent) Room() string    { return e.RoomID }

// RoundStartedEvent carries the timing rolled for the round
type RoundStartedEvent struct {
	RoomID        string  `json:"roomId"`
	Tier          int64   `json:"tier"`
	PlayerIDs     []int64 `json:"playerIds"`
	Pot           int64   `json:"pot"`
	CadenceMs     int64   `json:"cadenceMs"`
	MaxDurationMs int64   `json:"maxDurationMs"`
}

func (e RoundStartedEvent) Type() EventType { return EventTypeRoundStarted }
func (e RoundStartedEvent) Room() string    { return e.RoomID }

// NumberDrawnEvent announces the next ball
type NumberDrawnEvent struct {
	RoomID     string `json:"roomId"`
	Value      int    `json:"value"`
	Label      string `json:"label"`
	DrawnCount int    `json:"drawnCount"`
}

func (e NumberDrawnEvent) Type() EventType { return EventTypeNumberDrawn }
func (e NumberDrawnEvent) Room() string    { return e.RoomID }

// NumberMarkedEvent is published when a player daubs a number
type NumberMarkedEvent struct {
	RoomID   string `json:"roomId"`
	PlayerID int64  `json:"playerId"`
	Value    int    `json:"value"`
}

func (e NumberMarkedEvent) Type() EventType { return EventTypeNumberMarked }
func (e NumberMarkedEvent) Room() string    { return e.RoomID }

// RoundFinishedEvent closes a round, including cancelled ones
type RoundFinishedEvent struct {
	RoomID      string            `json:"roomId"`
	Tier        int64             `json:"tier"`
	Pot         int64             `json:"pot"`
	Winners     []entities.Winner `json:"winners"`
	Message     string            `json:"message"`
	Cancelled   bool              `json:"cancelled"`
	DrawnCount  int               `json:"drawnCount"`
	PlayerCount int               `json:"playerCount"`
}

func (e RoundFinishedEvent) Type() EventType { return EventTypeRoundFinished }
func (e RoundFinishedEvent) Room() string    { return e.RoomID }

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64                    `json:"userId"`
	OldBalance      int64                    `json:"oldBalance"`
	NewBalance      int64                    `json:"newBalance"`
	TransactionType entities.TransactionType `json:"transactionType"`
	ChangeAmount    int64                    `json:"changeAmount"`
	RoomID          string                   `json:"roomId,omitempty"`
}

func (e BalanceChangeEvent) Type() EventType { return EventTypeBalanceChange }
