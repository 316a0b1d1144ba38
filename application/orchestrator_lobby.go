package application

import (
	"context"
	"fmt"

	"bingohall/domain"
	"bingohall/domain/entities"
	"bingohall/domain/events"

	log "github.com/sirupsen/logrus"
)

// CreateRoom opens a waiting room at the tier and charges the creator, who becomes its first paying player
func (o *Orchestrator) CreateRoom(ctx context.Context, tier int64, creatorID int64, creatorName string) (*entities.Room, error) {
	if !o.settings.IsValidTier(tier) {
		return nil, domain.ErrInvalidTier
	}

	registered, err := o.users.IsRegistered(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}
	if !registered {
		return nil, domain.ErrNotRegistered
	}

	roomID := o.newID()
	if err := o.users.Debit(ctx, creatorID, tier, entities.TransactionTypeEntryFee, roomID); err != nil {
		return nil, err
	}

	room := entities.NewRoom(roomID, tier, o.settings.MinPlayers, o.settings.MaxPlayers, o.rollSeed(), creatorID, creatorName, o.now())
	if err := o.store.Create(ctx, room); err != nil {
		o.creditOrQueue(ctx, roomID, creatorID, tier, entities.TransactionTypeRefund)
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	h := &roomHandle{room: room}
	h.mu.Lock()
	defer h.mu.Unlock()
	o.rooms.add(h)

	log.WithFields(log.Fields{
		"roomID":    roomID,
		"tier":      tier,
		"creatorID": creatorID,
	}).Info("Room created")

	o.publish(events.PlayerJoinedEvent{
		RoomID:      roomID,
		PlayerID:    creatorID,
		DisplayName: creatorName,
		PlayerCount: room.JoinedCount(),
		Pot:         room.Pot(),
	})
	o.afterJoinLocked(ctx, h)

	return room.Clone(), nil
}

// SelectCartela reserves a cartela for the player, releasing the one they held before.
// Players enter the room on their first selection.
func (o *Orchestrator) SelectCartela(ctx context.Context, roomID string, playerID int64, displayName string, index int) (*entities.Room, error) {
	if err := o.validateCartela(index); err != nil {
		return nil, err
	}

	var snapshot *entities.Room
	err := o.withRoom(ctx, roomID, func(h *roomHandle) error {
		room := h.room
		if err := requireWaiting(room); err != nil {
			return err
		}

		if holder, taken := room.CartelaHolder(index); taken {
			if holder != playerID {
				return domain.ErrCartelaTaken
			}
			snapshot = room.Clone()
			return nil
		}

		p := room.FindPlayer(playerID)
		if p == nil {
			if room.IsFull() {
				return domain.ErrRoomFull
			}
			registered, err := o.users.IsRegistered(ctx, playerID)
			if err != nil {
				return fmt.Errorf("failed to check registration: %w", err)
			}
			if !registered {
				return domain.ErrNotRegistered
			}
			p = room.AddPlayer(playerID, displayName, o.now())
		}

		released := room.AssignCartela(p, index)
		o.persist(ctx, room)

		o.publish(events.CartelaTakenEvent{
			RoomID:        room.ID,
			PlayerID:      playerID,
			CartelaIndex:  index,
			ReleasedIndex: released,
			TakenCartelas: room.TakenCartelaList(),
		})

		snapshot = room.Clone()
		return nil
	})
	return snapshot, err
}

// JoinRoom charges the entry fee. Joining twice is a no-op and never charges twice.
func (o *Orchestrator) JoinRoom(ctx context.Context, roomID string, playerID int64) (*entities.Room, error) {
	var snapshot *entities.Room
	err := o.withRoom(ctx, roomID, func(h *roomHandle) error {
		room := h.room
		if err := requireWaiting(room); err != nil {
			return err
		}

		p := room.FindPlayer(playerID)
		if p == nil {
			return domain.ErrMustSelectCartelaFirst
		}
		if p.HasJoined {
			snapshot = room.Clone()
			return nil
		}
		if !p.HasCartela() {
			return domain.ErrMustSelectCartelaFirst
		}
		if room.IsFull() {
			return domain.ErrRoomFull
		}

		if err := o.users.Debit(ctx, playerID, room.Tier, entities.TransactionTypeEntryFee, room.ID); err != nil {
			return err
		}
		p.HasJoined = true
		p.JoinedAt = o.now()
		o.persist(ctx, room)

		o.publish(events.PlayerJoinedEvent{
			RoomID:       room.ID,
			PlayerID:     playerID,
			DisplayName:  p.DisplayName,
			CartelaIndex: p.CartelaIndex,
			PlayerCount:  room.JoinedCount(),
			Pot:          room.Pot(),
		})
		o.afterJoinLocked(ctx, h)

		snapshot = room.Clone()
		return nil
	})
	return snapshot, err
}

// LeaveRoom removes a player from a waiting room, refunding them if they paid
func (o *Orchestrator) LeaveRoom(ctx context.Context, roomID string, playerID int64) error {
	return o.withRoom(ctx, roomID, func(h *roomHandle) error {
		room := h.room
		if !room.Status.IsWaiting() {
			return domain.ErrCannotLeaveAfterStart
		}

		p := room.FindPlayer(playerID)
		if p == nil {
			return domain.ErrPlayerNotInRoom
		}

		var refunded int64
		if p.HasJoined {
			if err := o.users.Credit(ctx, playerID, room.Tier, entities.TransactionTypeRefund, room.ID); err != nil {
				return fmt.Errorf("failed to refund entry fee: %w", err)
			}
			refunded = room.Tier
		}
		room.RemovePlayer(playerID)

		closed := room.IsEmpty()
		if closed {
			o.timers.CancelAll(room.ID)
			o.rooms.remove(room.ID)
			if err := o.store.Delete(ctx, room.ID); err != nil {
				log.WithError(err).WithField("roomID", room.ID).Error("Failed to delete empty room")
			}
		} else {
			if !room.HasQuorum() && o.timers.IsScheduled(room.ID, TimerCountdown) {
				o.timers.Cancel(room.ID, TimerCountdown)
				log.WithField("roomID", room.ID).Info("Countdown cancelled, not enough players")
			}
			o.persist(ctx, room)
		}

		o.publish(events.PlayerLeftEvent{
			RoomID:      room.ID,
			PlayerID:    playerID,
			Refunded:    refunded,
			PlayerCount: room.JoinedCount(),
			RoomClosed:  closed,
		})
		return nil
	})
}

// afterJoinLocked starts the round when the room filled, or the countdown when it reached quorum
func (o *Orchestrator) afterJoinLocked(ctx context.Context, h *roomHandle) {
	room := h.room
	if room.IsFull() {
		o.startRoundLocked(ctx, h)
		return
	}
	if room.HasQuorum() && !o.timers.IsScheduled(room.ID, TimerCountdown) {
		o.startCountdownLocked(h)
	}
}

func (o *Orchestrator) startCountdownLocked(h *roomHandle) {
	roomID := h.room.ID
	h.countdownRemaining = o.settings.JoinCountdown
	o.timers.ScheduleRepeating(roomID, TimerCountdown, o.settings.CountdownTick, func(token TimerToken) {
		o.onCountdownTick(roomID, token)
	})

	log.WithFields(log.Fields{
		"roomID":    roomID,
		"countdown": o.settings.JoinCountdown,
	}).Info("Join countdown started")

	o.publish(events.CountdownTickEvent{
		RoomID:           roomID,
		SecondsRemaining: secondsRemaining(h.countdownRemaining),
	})
}

// onCountdownTick counts the join countdown down and attempts the start when it runs out
func (o *Orchestrator) onCountdownTick(roomID string, token TimerToken) {
	h := o.lockForTimer(roomID, TimerCountdown, token, entities.RoomStatusWaiting)
	if h == nil {
		return
	}
	defer h.mu.Unlock()

	h.countdownRemaining -= o.settings.CountdownTick
	o.publish(events.CountdownTickEvent{
		RoomID:           roomID,
		SecondsRemaining: secondsRemaining(h.countdownRemaining),
	})
	if h.countdownRemaining > 0 {
		return
	}

	o.timers.Cancel(roomID, TimerCountdown)
	ctx := context.Background()
	if h.room.HasQuorum() {
		o.startRoundLocked(ctx, h)
		return
	}
	o.cancelRoomLocked(ctx, h, "Not enough players joined. Entry fees were refunded.")
}
