package application

import (
	"sort"
	"sync"
	"time"

	"bingohall/domain/entities"
)

// roomHandle serializes every operation and timer firing for one room
type roomHandle struct {
	mu   sync.Mutex
	room *entities.Room

	// countdownRemaining is only meaningful while the countdown timer is scheduled
	countdownRemaining time.Duration
}

// RoomRegistry indexes the rooms that are still waiting or playing
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*roomHandle
}

// NewRoomRegistry creates an empty registry
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]*roomHandle)}
}

func (r *RoomRegistry) add(h *roomHandle) {
	r.mu.Lock()
	r.rooms[h.room.ID] = h
	r.mu.Unlock()
}

func (r *RoomRegistry) get(roomID string) *roomHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[roomID]
}

func (r *RoomRegistry) remove(roomID string) {
	r.mu.Lock()
	delete(r.rooms, roomID)
	r.mu.Unlock()
}

// handles returns the live handles ordered by room creation time
func (r *RoomRegistry) handles() []*roomHandle {
	r.mu.RLock()
	handles := make([]*roomHandle, 0, len(r.rooms))
	for _, h := range r.rooms {
		handles = append(handles, h)
	}
	r.mu.RUnlock()

	// CreatedAt and ID never change after creation
	sort.Slice(handles, func(i, j int) bool {
		a, b := handles[i].room, handles[j].room
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return handles
}

// Count returns the number of active rooms
func (r *RoomRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
