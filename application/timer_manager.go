package application

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// TimerKind names one of the per-room scheduled activities
type TimerKind string

const (
	TimerCountdown   TimerKind = "countdown"
	TimerDraw        TimerKind = "draw"
	TimerDurationCap TimerKind = "durationCap"
)

// TimerToken identifies one scheduling of a timer. A firing whose token is no
// longer current belongs to a cancelled or replaced timer and must be ignored.
type TimerToken uint64

// TimerAction is run when a timer fires
type TimerAction func(token TimerToken)

type timerKey struct {
	roomID string
	kind   TimerKind
}

type scheduledTimer struct {
	token     TimerToken
	timer     *time.Timer
	repeating bool
}

// TimerManager owns every room's countdown, draw ticker and duration cap.
// At most one timer per room and kind exists; scheduling again replaces it.
type TimerManager struct {
	mu        sync.Mutex
	timers    map[timerKey]*scheduledTimer
	lastToken TimerToken
	stopped   bool
}

// NewTimerManager creates an empty timer manager
func NewTimerManager() *TimerManager {
	return &TimerManager{
		timers: make(map[timerKey]*scheduledTimer),
	}
}

// Schedule runs action once after delay
func (m *TimerManager) Schedule(roomID string, kind TimerKind, delay time.Duration, action TimerAction) TimerToken {
	return m.schedule(roomID, kind, delay, false, action)
}

// ScheduleRepeating runs action every interval until cancelled
func (m *TimerManager) ScheduleRepeating(roomID string, kind TimerKind, interval time.Duration, action TimerAction) TimerToken {
	return m.schedule(roomID, kind, interval, true, action)
}

func (m *TimerManager) schedule(roomID string, kind TimerKind, interval time.Duration, repeating bool, action TimerAction) TimerToken {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		log.WithFields(log.Fields{
			"roomID": roomID,
			"kind":   kind,
		}).Warn("Timer manager stopped, not scheduling")
		return 0
	}

	key := timerKey{roomID: roomID, kind: kind}
	if existing, ok := m.timers[key]; ok {
		existing.timer.Stop()
	}

	m.lastToken++
	token := m.lastToken
	st := &scheduledTimer{token: token, repeating: repeating}

	// The map entry is written before this lock is released, so fire always sees it
	st.timer = time.AfterFunc(interval, func() {
		m.fire(key, token, interval, action)
	})
	m.timers[key] = st
	return token
}

func (m *TimerManager) fire(key timerKey, token TimerToken, interval time.Duration, action TimerAction) {
	if !m.IsCurrent(key.roomID, key.kind, token) {
		return
	}

	action(token)

	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.timers[key]
	if !ok || st.token != token {
		// cancelled or replaced by the action
		return
	}
	if st.repeating && !m.stopped {
		st.timer.Reset(interval)
		return
	}
	delete(m.timers, key)
}

// Cancel stops a room's timer of the given kind. Cancelling a missing timer is a no-op.
func (m *TimerManager) Cancel(roomID string, kind TimerKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked(timerKey{roomID: roomID, kind: kind})
}

// CancelAll stops every timer of a room
func (m *TimerManager) CancelAll(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, kind := range []TimerKind{TimerCountdown, TimerDraw, TimerDurationCap} {
		m.cancelLocked(timerKey{roomID: roomID, kind: kind})
	}
}

func (m *TimerManager) cancelLocked(key timerKey) {
	if st, ok := m.timers[key]; ok {
		st.timer.Stop()
		delete(m.timers, key)
	}
}

// IsCurrent reports whether token is still the live scheduling for the room and kind
func (m *TimerManager) IsCurrent(roomID string, kind TimerKind, token TimerToken) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return false
	}
	st, ok := m.timers[timerKey{roomID: roomID, kind: kind}]
	return ok && st.token == token
}

// Token returns the live token for the room and kind
func (m *TimerManager) Token(roomID string, kind TimerKind) (TimerToken, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.timers[timerKey{roomID: roomID, kind: kind}]
	if !ok {
		return 0, false
	}
	return st.token, true
}

// IsScheduled reports whether the room has a live timer of the given kind
func (m *TimerManager) IsScheduled(roomID string, kind TimerKind) bool {
	_, ok := m.Token(roomID, kind)
	return ok
}

// ActiveCount returns the number of live timers across all rooms
func (m *TimerManager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Stop cancels everything and refuses new schedules
func (m *TimerManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.timers {
		m.cancelLocked(key)
	}
	m.stopped = true
}
