package infrastructure

import (
	"fmt"
	"strings"

	"bingohall/domain/events"
)

const (
	roomSubjectPrefix = "bingo.rooms"
	userSubjectPrefix = "bingo.users"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject.
// Room events go to bingo.rooms.<roomId>.<event>.
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch e := event.(type) {
	case events.RoomEvent:
		return fmt.Sprintf("%s.%s.%s", roomSubjectPrefix, e.Room(), e.Type())
	case events.BalanceChangeEvent:
		return fmt.Sprintf("%s.%d.balance_changed", userSubjectPrefix, e.UserID)
	default:
		return fmt.Sprintf("bingo.unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	parts := strings.Split(subject, ".")
	if len(parts) != 4 {
		return events.EventType(subject)
	}
	switch parts[0] + "." + parts[1] {
	case roomSubjectPrefix:
		return events.EventType(parts[3])
	case userSubjectPrefix:
		if parts[3] == "balance_changed" {
			return events.EventTypeBalanceChange
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		roomSubjectPrefix + ".>",
		userSubjectPrefix + ".>",
	}
}
