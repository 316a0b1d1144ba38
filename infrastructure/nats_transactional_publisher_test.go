package infrastructure

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bingohall/domain/entities"
	"bingohall/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// MockEventPublisher records what reaches the real publisher
type MockEventPublisher struct {
	mu              sync.Mutex
	PublishedEvents []events.Event
	PublishError    error
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

func balanceEvent(userID int64) events.BalanceChangeEvent {
	return events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      1000,
		NewBalance:      990,
		ChangeAmount:    -10,
		TransactionType: entities.TransactionTypeEntryFee,
		RoomID:          "room-1",
	}
}

func TestNATSTransactionalPublisher_HoldsUntilFlush(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(balanceEvent(1)))
	require.NoError(t, transPublisher.Publish(balanceEvent(2)))

	assert.Empty(t, mockPublisher.PublishedEvents)
	assert.Equal(t, 2, transPublisher.PendingCount())

	require.NoError(t, transPublisher.Flush(context.Background()))

	require.Len(t, mockPublisher.PublishedEvents, 2)
	assert.Equal(t, balanceEvent(1), mockPublisher.PublishedEvents[0])
	assert.Equal(t, balanceEvent(2), mockPublisher.PublishedEvents[1])
	assert.Equal(t, 0, transPublisher.PendingCount())
}

func TestNATSTransactionalPublisher_Discard(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(balanceEvent(1)))
	transPublisher.Discard()
	require.NoError(t, transPublisher.Flush(context.Background()))

	assert.Empty(t, mockPublisher.PublishedEvents)
}

func TestNATSTransactionalPublisher_FlushSurvivesPublishErrors(t *testing.T) {
	mockPublisher := &MockEventPublisher{PublishError: errors.New("nats down")}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(balanceEvent(1)))

	assert.NoError(t, transPublisher.Flush(context.Background()))
	assert.Equal(t, 0, transPublisher.PendingCount())
}
