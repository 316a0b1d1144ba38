package repository

import (
	"context"
	"testing"

	"bingohall/domain/entities"
	"bingohall/domain/events"
	"bingohall/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher counts flushes and discards
type recordingPublisher struct {
	held      []events.Event
	flushed   []events.Event
	discarded int
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.held = append(p.held, event)
	return nil
}

func (p *recordingPublisher) Flush(ctx context.Context) error {
	p.flushed = append(p.flushed, p.held...)
	p.held = nil
	return nil
}

func (p *recordingPublisher) Discard() {
	p.held = nil
	p.discarded++
}

func TestUnitOfWork(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB)
	users := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("commit persists and flushes events", func(t *testing.T) {
		testDB.TruncateAll(t)
		publisher := &recordingPublisher{}
		uow := factory.CreateWithPublisher(publisher)

		require.NoError(t, uow.Begin(ctx))
		_, err := uow.UserRepository().Create(ctx, 1001, "alice", 1000)
		require.NoError(t, err)
		require.NoError(t, uow.EventBus().Publish(events.BalanceChangeEvent{UserID: 1001, NewBalance: 1000, TransactionType: entities.TransactionTypeInitial}))
		require.NoError(t, uow.Commit())
		require.NoError(t, uow.Rollback())

		got, err := users.GetByID(ctx, 1001)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Len(t, publisher.flushed, 1)
		assert.Equal(t, 0, publisher.discarded)
	})

	t.Run("rollback drops writes and events", func(t *testing.T) {
		testDB.TruncateAll(t)
		publisher := &recordingPublisher{}
		uow := factory.CreateWithPublisher(publisher)

		require.NoError(t, uow.Begin(ctx))
		_, err := uow.UserRepository().Create(ctx, 1001, "alice", 1000)
		require.NoError(t, err)
		require.NoError(t, uow.EventBus().Publish(events.BalanceChangeEvent{UserID: 1001, NewBalance: 1000, TransactionType: entities.TransactionTypeInitial}))
		require.NoError(t, uow.Rollback())

		got, err := users.GetByID(ctx, 1001)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Empty(t, publisher.flushed)
		assert.Equal(t, 1, publisher.discarded)
	})

	t.Run("begin twice fails", func(t *testing.T) {
		uow := factory.CreateWithPublisher(&recordingPublisher{})
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		assert.Error(t, uow.Begin(ctx))
	})

	t.Run("repositories require begin", func(t *testing.T) {
		uow := factory.CreateWithPublisher(&recordingPublisher{})
		assert.Panics(t, func() { uow.RoomRepository() })
		assert.Error(t, uow.Commit())
	})
}
