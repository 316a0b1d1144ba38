package application

import (
	"context"
	"sync"

	"bingohall/domain/entities"
	"bingohall/domain/events"
	"bingohall/domain/interfaces"
	"bingohall/domain/testhelpers"
)

// capturePublisher records every published event in order
type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturePublisher) Publish(event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturePublisher) ofType(eventType events.EventType) []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var matched []events.Event
	for _, e := range c.events {
		if e.Type() == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

// memoryRoomStore keeps deep copies of rooms, like a real store would
type memoryRoomStore struct {
	mu        sync.Mutex
	rooms     map[string]*entities.Room
	createErr error
	deleted   []string
}

func newMemoryRoomStore() *memoryRoomStore {
	return &memoryRoomStore{rooms: make(map[string]*entities.Room)}
}

func (s *memoryRoomStore) Create(ctx context.Context, room *entities.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.rooms[room.ID] = room.Clone()
	return nil
}

func (s *memoryRoomStore) GetByID(ctx context.Context, roomID string) (*entities.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, nil
	}
	return room.Clone(), nil
}

func (s *memoryRoomStore) Update(ctx context.Context, room *entities.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room.Clone()
	return nil
}

func (s *memoryRoomStore) Delete(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
	s.deleted = append(s.deleted, roomID)
	return nil
}

func (s *memoryRoomStore) ListByStatus(ctx context.Context, status entities.RoomStatus) ([]*entities.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rooms []*entities.Room
	for _, room := range s.rooms {
		if room.Status == status {
			rooms = append(rooms, room.Clone())
		}
	}
	return rooms, nil
}

// fakeUnitOfWork hands out testify mocks and counts transaction calls
type fakeUnitOfWork struct {
	users     *testhelpers.MockUserRepository
	history   *testhelpers.MockBalanceHistoryRepository
	rooms     *testhelpers.MockRoomRepository
	results   *testhelpers.MockGameResultRepository
	payouts   *testhelpers.MockPendingPayoutRepository
	rounds    *testhelpers.MockPendingRoundRecordRepository
	publisher *testhelpers.MockEventPublisher

	mu       sync.Mutex
	begins   int
	commits  int
	beginErr error
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		users:     new(testhelpers.MockUserRepository),
		history:   new(testhelpers.MockBalanceHistoryRepository),
		rooms:     new(testhelpers.MockRoomRepository),
		results:   new(testhelpers.MockGameResultRepository),
		payouts:   new(testhelpers.MockPendingPayoutRepository),
		rounds:    new(testhelpers.MockPendingRoundRecordRepository),
		publisher: new(testhelpers.MockEventPublisher),
	}
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.beginErr != nil {
		return u.beginErr
	}
	u.begins++
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.commits++
	return nil
}

func (u *fakeUnitOfWork) Rollback() error { return nil }

func (u *fakeUnitOfWork) UserRepository() interfaces.UserRepository { return u.users }
func (u *fakeUnitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	return u.history
}
func (u *fakeUnitOfWork) RoomRepository() interfaces.RoomRepository             { return u.rooms }
func (u *fakeUnitOfWork) GameResultRepository() interfaces.GameResultRepository { return u.results }
func (u *fakeUnitOfWork) PendingPayoutRepository() interfaces.PendingPayoutRepository {
	return u.payouts
}
func (u *fakeUnitOfWork) PendingRoundRecordRepository() interfaces.PendingRoundRecordRepository {
	return u.rounds
}
func (u *fakeUnitOfWork) EventBus() interfaces.EventPublisher { return u.publisher }

func (u *fakeUnitOfWork) commitCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.commits
}

// fakeUnitOfWorkFactory always returns the same unit of work so tests can inspect it
type fakeUnitOfWorkFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUnitOfWorkFactory) Create() UnitOfWork {
	return f.uow
}
