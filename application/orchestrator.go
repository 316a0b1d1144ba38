package application

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"bingohall/domain"
	"bingohall/domain/bingo"
	"bingohall/domain/entities"
	"bingohall/domain/events"
	"bingohall/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Orchestrator drives rooms from waiting through playing to finished.
// All operations and timer firings for one room run under that room's lock.
type Orchestrator struct {
	settings  RoomSettings
	users     interfaces.UserRegistry
	store     interfaces.RoomStore
	ledger    interfaces.ResultLedger
	payouts   interfaces.PayoutQueue
	publisher interfaces.EventPublisher
	timers    *TimerManager
	rooms     *RoomRegistry

	rngMu sync.Mutex
	rng   *rand.Rand

	now   func() time.Time
	newID func() string
}

// RoomSummary is the lobby view of a waiting room
type RoomSummary struct {
	RoomID        string              `json:"roomId"`
	Tier          int64               `json:"tier"`
	Status        entities.RoomStatus `json:"status"`
	PlayerCount   int                 `json:"playerCount"`
	MaxPlayers    int                 `json:"maxPlayers"`
	TakenCartelas []int               `json:"takenCartelas"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// NewOrchestrator creates a room orchestrator. A nil rng is seeded from the clock.
func NewOrchestrator(
	settings RoomSettings,
	users interfaces.UserRegistry,
	store interfaces.RoomStore,
	ledger interfaces.ResultLedger,
	payouts interfaces.PayoutQueue,
	publisher interfaces.EventPublisher,
	timers *TimerManager,
	rng *rand.Rand,
) *Orchestrator {
	if timers == nil {
		timers = NewTimerManager()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Orchestrator{
		settings:  settings,
		users:     users,
		store:     store,
		ledger:    ledger,
		payouts:   payouts,
		publisher: publisher,
		timers:    timers,
		rooms:     NewRoomRegistry(),
		rng:       rng,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
}

// Settings returns the room settings in effect
func (o *Orchestrator) Settings() RoomSettings {
	return o.settings
}

// ActiveRooms returns how many rooms are waiting or playing
func (o *Orchestrator) ActiveRooms() int {
	return o.rooms.Count()
}

// GetRoom returns a snapshot of a room. Finished rooms are read from the store.
func (o *Orchestrator) GetRoom(ctx context.Context, roomID string) (*entities.Room, error) {
	if h := o.rooms.get(roomID); h != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.room.Clone(), nil
	}

	room, err := o.store.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room %s: %w", roomID, err)
	}
	if room == nil {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// ListRoomsByTier returns the joinable rooms keyed by every configured tier
func (o *Orchestrator) ListRoomsByTier() map[int64][]RoomSummary {
	byTier := make(map[int64][]RoomSummary, len(o.settings.Tiers))
	for _, tier := range o.settings.Tiers {
		byTier[tier] = []RoomSummary{}
	}

	for _, h := range o.rooms.handles() {
		h.mu.Lock()
		room := h.room
		if room.Status.IsWaiting() {
			byTier[room.Tier] = append(byTier[room.Tier], RoomSummary{
				RoomID:        room.ID,
				Tier:          room.Tier,
				Status:        room.Status,
				PlayerCount:   room.JoinedCount(),
				MaxPlayers:    room.MaxPlayers,
				TakenCartelas: room.TakenCartelaList(),
				CreatedAt:     room.CreatedAt,
			})
		}
		h.mu.Unlock()
	}
	return byTier
}

// PreviewCartela shows the card a cartela index produces in a room without reserving it
func (o *Orchestrator) PreviewCartela(ctx context.Context, roomID string, index int) (bingo.Card, error) {
	if err := o.validateCartela(index); err != nil {
		return bingo.Card{}, err
	}

	var card bingo.Card
	err := o.withRoom(ctx, roomID, func(h *roomHandle) error {
		if h.room.Status.IsFinished() {
			return domain.ErrRoomFinished
		}
		card = bingo.GenerateCartela(h.room.CardSeed, index)
		return nil
	})
	return card, err
}

// RecoverRooms cancels rooms left waiting or playing by a previous process and refunds their players.
// Their timers died with that process, so they can never finish on their own.
func (o *Orchestrator) RecoverRooms(ctx context.Context) (int, error) {
	recovered := 0
	for _, status := range []entities.RoomStatus{entities.RoomStatusWaiting, entities.RoomStatusPlaying} {
		rooms, err := o.store.ListByStatus(ctx, status)
		if err != nil {
			return recovered, fmt.Errorf("failed to list %s rooms: %w", status, err)
		}
		for _, room := range rooms {
			if o.rooms.get(room.ID) != nil {
				continue
			}
			room.RebuildTakenCartelas()
			h := &roomHandle{room: room}
			h.mu.Lock()
			o.cancelRoomLocked(ctx, h, "The hall restarted before this round could finish. Entry fees were refunded.")
			h.mu.Unlock()
			recovered++
		}
	}

	if recovered > 0 {
		log.WithField("rooms", recovered).Warn("Cancelled rooms left over from a previous run")
	}
	return recovered, nil
}

// Shutdown stops every room timer. Rooms keep their last persisted state.
func (o *Orchestrator) Shutdown() {
	o.timers.Stop()
	log.WithField("activeRooms", o.rooms.Count()).Info("Room orchestrator stopped")
}

// lookup finds a live room, telling finished rooms apart from unknown ones
func (o *Orchestrator) lookup(ctx context.Context, roomID string) (*roomHandle, error) {
	if h := o.rooms.get(roomID); h != nil {
		return h, nil
	}

	room, err := o.store.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room %s: %w", roomID, err)
	}
	if room != nil && room.Status.IsFinished() {
		return nil, domain.ErrRoomFinished
	}
	return nil, domain.ErrRoomNotFound
}

// withRoom runs fn holding the room's lock
func (o *Orchestrator) withRoom(ctx context.Context, roomID string, fn func(h *roomHandle) error) error {
	h, err := o.lookup(ctx, roomID)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h)
}

// lockForTimer locks the room a timer fired for. It returns nil when the firing
// is stale: the timer was cancelled or replaced, or the room left the expected status.
func (o *Orchestrator) lockForTimer(roomID string, kind TimerKind, token TimerToken, expected entities.RoomStatus) *roomHandle {
	h := o.rooms.get(roomID)
	if h == nil {
		o.logStaleFiring(roomID, kind, "")
		return nil
	}

	h.mu.Lock()
	if !o.timers.IsCurrent(roomID, kind, token) || h.room.Status != expected {
		status := h.room.Status
		h.mu.Unlock()
		o.logStaleFiring(roomID, kind, status)
		return nil
	}
	return h
}

func (o *Orchestrator) logStaleFiring(roomID string, kind TimerKind, status entities.RoomStatus) {
	log.WithFields(log.Fields{
		"roomID": roomID,
		"timer":  kind,
		"status": status,
	}).Warn("Ignoring stale timer firing")
}

func (o *Orchestrator) publish(event events.Event) {
	if err := o.publisher.Publish(event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to publish room event")
	}
}

// persist writes the room through to the store. The in-memory room stays authoritative on failure.
func (o *Orchestrator) persist(ctx context.Context, room *entities.Room) {
	if err := o.store.Update(ctx, room); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"roomID": room.ID,
			"status": room.Status,
		}).Error("Failed to persist room")
	}
}

// creditOrQueue pays a player, handing the credit to the payout queue when the registry fails
func (o *Orchestrator) creditOrQueue(ctx context.Context, roomID string, playerID int64, amount int64, reason entities.TransactionType) {
	err := o.users.Credit(ctx, playerID, amount, reason, roomID)
	if err == nil {
		return
	}

	fields := log.Fields{
		"roomID":          roomID,
		"playerID":        playerID,
		"amount":          amount,
		"transactionType": reason,
	}
	log.WithError(err).WithFields(fields).Error("Credit failed, queueing payout for retry")

	payout := &entities.PendingPayout{
		RoomID:          roomID,
		PlayerID:        playerID,
		Amount:          amount,
		TransactionType: reason,
		NextAttemptAt:   o.now(),
	}
	if qerr := o.payouts.Enqueue(ctx, payout); qerr != nil {
		log.WithError(qerr).WithFields(fields).Error("Failed to queue payout, manual settlement required")
	}
}

func (o *Orchestrator) validateCartela(index int) error {
	if index < 1 || index > o.settings.MaxCartela {
		return domain.ErrInvalidCartela
	}
	return nil
}

// rollDuration picks a duration uniformly in [lo, hi]
func (o *Orchestrator) rollDuration(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return lo + time.Duration(o.rng.Int63n(int64(hi-lo)+1))
}

func (o *Orchestrator) rollSeed() int64 {
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return o.rng.Int63()
}

func (o *Orchestrator) drawNumber(room *entities.Room) (int, bool) {
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return room.DrawNumber(o.rng)
}

func requireWaiting(room *entities.Room) error {
	switch room.Status {
	case entities.RoomStatusPlaying:
		return domain.ErrRoomAlreadyStarted
	case entities.RoomStatusFinished:
		return domain.ErrRoomFinished
	}
	return nil
}

func requirePlaying(room *entities.Room) error {
	switch room.Status {
	case entities.RoomStatusWaiting:
		return domain.ErrRoomNotPlaying
	case entities.RoomStatusFinished:
		return domain.ErrRoomFinished
	}
	return nil
}

func playerIDs(players []*entities.Player) []int64 {
	ids := make([]int64, len(players))
	for i, p := range players {
		ids[i] = p.PlayerID
	}
	return ids
}

// undrawn returns the values that are neither drawn nor the free space, sorted and unique
func undrawn(room *entities.Room, values ...[]int) []int {
	seen := make(map[int]bool)
	var offending []int
	for _, list := range values {
		for _, v := range list {
			if v == bingo.FreeSpace || seen[v] || room.IsDrawn(v) {
				continue
			}
			seen[v] = true
			offending = append(offending, v)
		}
	}
	sort.Ints(offending)
	return offending
}

func secondsRemaining(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
