package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies an expected, user-facing failure
type ErrorKind string

const (
	KindNotRegistered          ErrorKind = "not_registered"
	KindInsufficientBalance    ErrorKind = "insufficient_balance"
	KindInvalidTier            ErrorKind = "invalid_tier"
	KindInvalidCartela         ErrorKind = "invalid_cartela"
	KindRoomNotFound           ErrorKind = "room_not_found"
	KindRoomFull               ErrorKind = "room_full"
	KindRoomAlreadyStarted     ErrorKind = "room_already_started"
	KindRoomNotPlaying         ErrorKind = "room_not_playing"
	KindRoomFinished           ErrorKind = "room_finished"
	KindCartelaTaken           ErrorKind = "cartela_taken"
	KindMustSelectCartelaFirst ErrorKind = "must_select_cartela_first"
	KindPlayerNotInRoom        ErrorKind = "player_not_in_room"
	KindNumberNotDrawn         ErrorKind = "number_not_drawn"
	KindNumberNotOnCard        ErrorKind = "number_not_on_card"
	KindInvalidClaim           ErrorKind = "invalid_claim"
	KindCannotLeaveAfterStart  ErrorKind = "cannot_leave_after_start"
)

// GameError is an expected outcome of a room operation.
// UserMessage is safe to show to players; nothing else is.
type GameError struct {
	Kind        ErrorKind
	UserMessage string
	Numbers     []int  // offending numbers for invalid claims
	Pattern     string // declared pattern for invalid claims
	Err         error
}

// Error implements the error interface
func (e *GameError) Error() string {
	msg := string(e.Kind)
	if e.Pattern != "" {
		msg = fmt.Sprintf("%s (pattern %s)", msg, e.Pattern)
	}
	if len(e.Numbers) > 0 {
		msg = fmt.Sprintf("%s numbers=%v", msg, e.Numbers)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *GameError) Unwrap() error {
	return e.Err
}

// Is matches any GameError of the same kind so sentinels work with errors.Is
func (e *GameError) Is(target error) bool {
	var other *GameError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

func newKind(kind ErrorKind, message string) *GameError {
	return &GameError{Kind: kind, UserMessage: message}
}

var (
	ErrNotRegistered          = newKind(KindNotRegistered, "You need to register before playing.")
	ErrInsufficientBalance    = newKind(KindInsufficientBalance, "Your balance is too low for this room.")
	ErrInvalidTier            = newKind(KindInvalidTier, "That entry fee is not offered.")
	ErrInvalidCartela         = newKind(KindInvalidCartela, "That cartela number does not exist.")
	ErrRoomNotFound           = newKind(KindRoomNotFound, "Room not found.")
	ErrRoomFull               = newKind(KindRoomFull, "This room is full.")
	ErrRoomAlreadyStarted     = newKind(KindRoomAlreadyStarted, "This round has already started.")
	ErrRoomNotPlaying         = newKind(KindRoomNotPlaying, "The round has not started yet.")
	ErrRoomFinished           = newKind(KindRoomFinished, "This round is over.")
	ErrCartelaTaken           = newKind(KindCartelaTaken, "That cartela is already taken.")
	ErrMustSelectCartelaFirst = newKind(KindMustSelectCartelaFirst, "Pick a cartela before joining.")
	ErrPlayerNotInRoom        = newKind(KindPlayerNotInRoom, "You are not in this room.")
	ErrNumberNotDrawn         = newKind(KindNumberNotDrawn, "That number has not been called.")
	ErrNumberNotOnCard        = newKind(KindNumberNotOnCard, "That number is not on your card.")
	ErrInvalidClaim           = newKind(KindInvalidClaim, "Your card does not complete that pattern.")
	ErrCannotLeaveAfterStart  = newKind(KindCannotLeaveAfterStart, "You cannot leave once the round has started.")
)

// NewInvalidClaim reports a rejected claim with the numbers that were not drawn
func NewInvalidClaim(pattern string, offending []int) *GameError {
	message := ErrInvalidClaim.UserMessage
	if len(offending) > 0 {
		parts := make([]string, len(offending))
		for i, n := range offending {
			parts[i] = fmt.Sprintf("%d", n)
		}
		message = fmt.Sprintf("These numbers were never called: %s.", strings.Join(parts, ", "))
	}
	return &GameError{
		Kind:        KindInvalidClaim,
		UserMessage: message,
		Numbers:     offending,
		Pattern:     pattern,
	}
}

// WrapGameError attaches an underlying cause to a sentinel kind
func WrapGameError(sentinel *GameError, err error) *GameError {
	return &GameError{
		Kind:        sentinel.Kind,
		UserMessage: sentinel.UserMessage,
		Err:         err,
	}
}

// UserMessage maps any error to text that can be shown to a player
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.UserMessage
	}
	return "Something went wrong. Please try again later."
}

// IsGameError reports whether err is an expected game outcome rather than a system failure
func IsGameError(err error) bool {
	var gameErr *GameError
	return errors.As(err, &gameErr)
}
