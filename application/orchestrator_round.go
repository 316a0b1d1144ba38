package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bingohall/domain"
	"bingohall/domain/bingo"
	"bingohall/domain/entities"
	"bingohall/domain/events"
	"bingohall/domain/services"

	log "github.com/sirupsen/logrus"
)

// MarkNumber daubs a drawn number on the player's card. Marking twice is a no-op.
func (o *Orchestrator) MarkNumber(ctx context.Context, roomID string, playerID int64, number int) error {
	return o.withRoom(ctx, roomID, func(h *roomHandle) error {
		room := h.room
		if err := requirePlaying(room); err != nil {
			return err
		}

		p := room.FindPlayer(playerID)
		if p == nil || !p.HasJoined {
			return domain.ErrPlayerNotInRoom
		}
		if !room.IsDrawn(number) {
			return domain.ErrNumberNotDrawn
		}
		if !p.HasCartela() || !p.Card.Contains(number) {
			return domain.ErrNumberNotOnCard
		}

		if p.Mark(number) {
			o.persist(ctx, room)
			o.publish(events.NumberMarkedEvent{
				RoomID:   room.ID,
				PlayerID: playerID,
				Value:    number,
			})
		}
		return nil
	})
}

// ClaimWin validates a declared pattern against the player's marks and finishes the round on success.
// claimed lists the numbers the client believes are marked; every one must have been drawn.
func (o *Orchestrator) ClaimWin(ctx context.Context, roomID string, playerID int64, pattern bingo.Pattern, claimed []int) (*entities.Winner, error) {
	var winner *entities.Winner
	err := o.withRoom(ctx, roomID, func(h *roomHandle) error {
		room := h.room
		if err := requirePlaying(room); err != nil {
			return err
		}
		if !pattern.IsValid() {
			return domain.NewInvalidClaim(string(pattern), nil)
		}

		p := room.FindPlayer(playerID)
		if p == nil || !p.HasJoined {
			return domain.ErrPlayerNotInRoom
		}
		if !p.HasCartela() {
			return domain.NewInvalidClaim(string(pattern), nil)
		}

		fields := log.Fields{
			"roomID":   room.ID,
			"playerID": playerID,
			"pattern":  pattern,
		}
		if offending := undrawn(room, claimed, p.MarkedNumbers); len(offending) > 0 {
			log.WithFields(fields).WithField("offending", offending).Info("Rejected claim with undrawn numbers")
			return domain.NewInvalidClaim(string(pattern), offending)
		}
		if !bingo.MatchesPattern(*p.Card, p.Marks(), pattern) {
			log.WithFields(fields).Info("Rejected claim, pattern incomplete")
			return domain.NewInvalidClaim(string(pattern), nil)
		}

		log.WithFields(fields).Info("Claim accepted")
		o.finalizeLocked(ctx, h, []entities.Winner{{
			PlayerID:    playerID,
			DisplayName: p.DisplayName,
			Pattern:     pattern,
		}})

		w := room.Winners[0]
		winner = &w
		return nil
	})
	return winner, err
}

// startRoundLocked moves a waiting room to playing and starts its draw ticker and duration cap
func (o *Orchestrator) startRoundLocked(ctx context.Context, h *roomHandle) {
	room := h.room
	o.timers.Cancel(room.ID, TimerCountdown)

	cadence := o.rollDuration(o.settings.DrawCadenceMin, o.settings.DrawCadenceMax)
	maxDuration := o.rollDuration(o.settings.MaxDurationMin, o.settings.MaxDurationMax)
	dropped := room.Start(o.now(), cadence, maxDuration, o.settings.MaxCartela)
	o.persist(ctx, room)

	for _, p := range dropped {
		o.publish(events.PlayerLeftEvent{
			RoomID:      room.ID,
			PlayerID:    p.PlayerID,
			PlayerCount: room.JoinedCount(),
		})
	}

	roomID := room.ID
	o.timers.ScheduleRepeating(roomID, TimerDraw, cadence, func(token TimerToken) {
		o.onDrawTick(roomID, token)
	})
	o.timers.Schedule(roomID, TimerDurationCap, maxDuration, func(token TimerToken) {
		o.onDurationCap(roomID, token)
	})

	log.WithFields(log.Fields{
		"roomID":      roomID,
		"players":     room.JoinedCount(),
		"pot":         room.Pot(),
		"cadence":     cadence,
		"maxDuration": maxDuration,
		"dropped":     len(dropped),
	}).Info("Round started")

	o.publish(events.RoundStartedEvent{
		RoomID:        roomID,
		Tier:          room.Tier,
		PlayerIDs:     playerIDs(room.JoinedPlayers()),
		Pot:           room.Pot(),
		CadenceMs:     cadence.Milliseconds(),
		MaxDurationMs: maxDuration.Milliseconds(),
	})
}

// onDrawTick draws the next number, resolving the round once the pool is exhausted
func (o *Orchestrator) onDrawTick(roomID string, token TimerToken) {
	h := o.lockForTimer(roomID, TimerDraw, token, entities.RoomStatusPlaying)
	if h == nil {
		return
	}
	defer h.mu.Unlock()

	ctx := context.Background()
	room := h.room
	number, ok := o.drawNumber(room)
	if !ok {
		o.resolveLocked(ctx, h, "pool exhausted")
		return
	}
	o.persist(ctx, room)

	o.publish(events.NumberDrawnEvent{
		RoomID:     roomID,
		Value:      number,
		Label:      bingo.Label(number),
		DrawnCount: len(room.DrawHistory),
	})

	if room.PoolExhausted() {
		o.resolveLocked(ctx, h, "pool exhausted")
	}
}

// onDurationCap ends the round regardless of draws or claims
func (o *Orchestrator) onDurationCap(roomID string, token TimerToken) {
	h := o.lockForTimer(roomID, TimerDurationCap, token, entities.RoomStatusPlaying)
	if h == nil {
		return
	}
	defer h.mu.Unlock()

	o.resolveLocked(context.Background(), h, "duration cap")
}

// resolveLocked finishes a round nobody claimed
func (o *Orchestrator) resolveLocked(ctx context.Context, h *roomHandle, reason string) {
	var winners []entities.Winner
	if o.settings.GuaranteeWinner {
		winners = forcedWinners(h.room)
	}

	log.WithFields(log.Fields{
		"roomID":  h.room.ID,
		"reason":  reason,
		"drawn":   len(h.room.DrawHistory),
		"winners": len(winners),
	}).Info("Resolving round without a claim")

	o.finalizeLocked(ctx, h, winners)
}

// forcedWinners completes every card that is at most ForcedCompletionLimit drawn numbers from a pattern
func forcedWinners(room *entities.Room) []entities.Winner {
	var winners []entities.Winner
	for _, p := range room.JoinedPlayers() {
		if !p.HasCartela() {
			continue
		}
		miss, ok := bingo.ClosestLine(*p.Card, p.Marks(), room.IsDrawn)
		if !ok || len(miss.Missing) > ForcedCompletionLimit {
			continue
		}
		for _, n := range miss.Missing {
			p.Mark(n)
		}
		winners = append(winners, entities.Winner{
			PlayerID:    p.PlayerID,
			DisplayName: p.DisplayName,
			Pattern:     miss.Pattern,
			Forced:      true,
		})
	}
	return winners
}

// finalizeLocked is the single path from playing to finished. It runs at most once per room.
func (o *Orchestrator) finalizeLocked(ctx context.Context, h *roomHandle, winners []entities.Winner) {
	room := h.room
	if room.Status.IsFinished() {
		return
	}
	o.timers.CancelAll(room.ID)

	joined := room.JoinedPlayers()
	split := services.SplitPot(room.Tier, len(joined), len(winners))
	for i := range winners {
		winners[i].PrizeAmount = split.PayoutEach
	}

	finishedAt := o.now()
	room.Finish(finishedAt, winners, false)
	o.rooms.remove(room.ID)
	o.persist(ctx, room)

	if split.PayoutEach > 0 {
		for _, w := range winners {
			o.creditOrQueue(ctx, room.ID, w.PlayerID, split.PayoutEach, entities.TransactionTypeBingoWin)
		}
	}

	o.recordOrQueue(ctx, roundRecord(room, joined, split.PayoutEach, finishedAt))

	log.WithFields(log.Fields{
		"roomID":     room.ID,
		"pot":        split.Pot,
		"winners":    len(winners),
		"payoutEach": split.PayoutEach,
		"drawn":      len(room.DrawHistory),
	}).Info("Round finished")

	o.publish(events.RoundFinishedEvent{
		RoomID:      room.ID,
		Tier:        room.Tier,
		Pot:         split.Pot,
		Winners:     append([]entities.Winner(nil), winners...),
		Message:     finishMessage(winners, split),
		DrawnCount:  len(room.DrawHistory),
		PlayerCount: len(joined),
	})
}

// roundRecord builds the result rows and stats increments of a finished round.
// Winners take position 1; losers are ranked from 2 in join order.
func roundRecord(room *entities.Room, joined []*entities.Player, payoutEach int64, finishedAt time.Time) *entities.RoundRecord {
	record := &entities.RoundRecord{
		RoomID:  room.ID,
		Results: make([]*entities.GameResult, 0, len(joined)),
		Stats:   make([]entities.PlayerStats, 0, len(joined)),
	}

	rank := 0
	for _, p := range joined {
		result := &entities.GameResult{
			RoomID:            room.ID,
			PlayerID:          p.PlayerID,
			Tier:              room.Tier,
			NumbersDrawnCount: len(room.DrawHistory),
			FinishedAt:        finishedAt,
		}
		delta := entities.StatsDelta{Played: 1}
		if p.HasWon {
			result.Position = 1
			result.PrizeAmount = payoutEach
			delta.Won = 1
			delta.Winnings = payoutEach
		} else {
			rank++
			result.Position = rank + 1
		}
		record.Results = append(record.Results, result)
		record.Stats = append(record.Stats, entities.PlayerStats{PlayerID: p.PlayerID, Delta: delta})
	}
	return record
}

// recordOrQueue writes the round record, queueing it for retry when the ledger is unavailable
func (o *Orchestrator) recordOrQueue(ctx context.Context, record *entities.RoundRecord) {
	err := o.ledger.RecordRound(ctx, record)
	if err == nil {
		return
	}

	fields := log.Fields{
		"roomID":  record.RoomID,
		"results": len(record.Results),
	}
	log.WithError(err).WithFields(fields).Error("Failed to record round, queueing for retry")

	pending := &entities.PendingRoundRecord{
		RoomID:        record.RoomID,
		Record:        *record,
		NextAttemptAt: o.now(),
	}
	if qerr := o.payouts.EnqueueRound(ctx, pending); qerr != nil {
		log.WithError(qerr).WithFields(fields).Error("Failed to queue round record, manual recovery required")
	}
}

// cancelRoomLocked ends a room without a round: everyone who paid is refunded and the room is deleted
func (o *Orchestrator) cancelRoomLocked(ctx context.Context, h *roomHandle, message string) {
	room := h.room
	if room.Status.IsFinished() {
		return
	}
	o.timers.CancelAll(room.ID)

	joined := room.JoinedPlayers()
	pot := room.Pot()
	for _, p := range joined {
		o.creditOrQueue(ctx, room.ID, p.PlayerID, room.Tier, entities.TransactionTypeRefund)
	}

	room.Finish(o.now(), nil, true)
	o.rooms.remove(room.ID)
	if err := o.store.Delete(ctx, room.ID); err != nil {
		log.WithError(err).WithField("roomID", room.ID).Error("Failed to delete cancelled room")
	}

	log.WithFields(log.Fields{
		"roomID":   room.ID,
		"refunded": len(joined),
	}).Info("Room cancelled")

	o.publish(events.RoundFinishedEvent{
		RoomID:      room.ID,
		Tier:        room.Tier,
		Pot:         pot,
		Winners:     []entities.Winner{},
		Message:     message,
		Cancelled:   true,
		DrawnCount:  len(room.DrawHistory),
		PlayerCount: len(joined),
	})
}

func finishMessage(winners []entities.Winner, split services.PotSplit) string {
	switch len(winners) {
	case 0:
		return "No bingo this round. The house keeps the pot."
	case 1:
		return fmt.Sprintf("BINGO! %s wins %d with %s.", winners[0].DisplayName, split.PayoutEach, describePattern(winners[0].Pattern))
	}

	names := make([]string, len(winners))
	for i, w := range winners {
		names[i] = w.DisplayName
	}
	return fmt.Sprintf("BINGO! %s split the pot, %d each.", strings.Join(names, ", "), split.PayoutEach)
}

func describePattern(p bingo.Pattern) string {
	if p == bingo.PatternCorners {
		return "four corners"
	}
	return "a " + string(p)
}
