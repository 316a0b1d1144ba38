package entities

import (
	"math/rand"
	"sort"
	"time"

	"bingohall/domain/bingo"
)

// RoomStatus represents where a room is in its lifecycle
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusPlaying  RoomStatus = "playing"
	RoomStatusFinished RoomStatus = "finished"
)

// IsWaiting returns true while players can still select cartelas and join
func (s RoomStatus) IsWaiting() bool { return s == RoomStatusWaiting }

// IsPlaying returns true while numbers are being drawn
func (s RoomStatus) IsPlaying() bool { return s == RoomStatusPlaying }

// IsFinished returns true once the room is terminal
func (s RoomStatus) IsFinished() bool { return s == RoomStatusFinished }

// Player is one participant of a room
type Player struct {
	PlayerID      int64         `json:"playerId"`
	DisplayName   string        `json:"displayName"`
	CartelaIndex  int           `json:"cartelaIndex,omitempty"` // 0 when no cartela is selected
	Card          *bingo.Card   `json:"card,omitempty"`
	MarkedNumbers []int         `json:"markedNumbers"`
	HasJoined     bool          `json:"hasJoined"` // paid the entry fee
	HasWon        bool          `json:"hasWon"`
	WinPattern    bingo.Pattern `json:"winPattern,omitempty"`
	JoinedAt      time.Time     `json:"joinedAt"`
}

// HasCartela returns true once the player holds a cartela
func (p *Player) HasCartela() bool {
	return p.CartelaIndex > 0 && p.Card != nil
}

// HasMarked returns true if the number is already daubed
func (p *Player) HasMarked(number int) bool {
	for _, n := range p.MarkedNumbers {
		if n == number {
			return true
		}
	}
	return false
}

// Mark daubs a number. Marks only grow; a repeated mark is a no-op.
func (p *Player) Mark(number int) bool {
	if p.HasMarked(number) {
		return false
	}
	p.MarkedNumbers = append(p.MarkedNumbers, number)
	return true
}

// Marks returns the daubed numbers as a lookup set
func (p *Player) Marks() bingo.Marks {
	return bingo.NewMarks(p.MarkedNumbers...)
}

func (p *Player) clone() *Player {
	c := *p
	if p.Card != nil {
		card := *p.Card
		c.Card = &card
	}
	c.MarkedNumbers = append([]int(nil), p.MarkedNumbers...)
	return &c
}

// Winner is a payout record for a finished room
type Winner struct {
	PlayerID    int64         `json:"playerId"`
	DisplayName string        `json:"displayName"`
	PrizeAmount int64         `json:"prizeAmount"`
	Pattern     bingo.Pattern `json:"pattern"`
	Forced      bool          `json:"forced,omitempty"` // completed by forced resolution
}

// Room is one bingo round at a given entry-fee tier
type Room struct {
	ID            string         `db:"id"`
	Tier          int64          `db:"tier"`
	Status        RoomStatus     `db:"status"`
	Players       []*Player      `db:"players"`
	DrawHistory   []int          `db:"draw_history"`
	CurrentDraw   int            `db:"current_draw"` // 0 before the first draw
	TakenCartelas map[int]int64  `db:"-"`            // cartela index -> holder
	MinPlayers    int            `db:"min_players"`
	MaxPlayers    int            `db:"max_players"`
	CardSeed      int64          `db:"card_seed"`
	DrawCadence   time.Duration  `db:"draw_cadence_ms"`
	MaxDuration   time.Duration  `db:"max_duration_ms"`
	Winners       []Winner       `db:"winners"`
	Cancelled     bool           `db:"cancelled"`
	CreatedBy     int64          `db:"created_by"`
	CreatedAt     time.Time      `db:"created_at"`
	StartedAt     *time.Time     `db:"started_at"`
	FinishedAt    *time.Time     `db:"finished_at"`
}

// NewRoom creates a waiting room with the creator as its first, already paid, player
func NewRoom(id string, tier int64, minPlayers, maxPlayers int, cardSeed int64, creatorID int64, creatorName string, now time.Time) *Room {
	return &Room{
		ID:            id,
		Tier:          tier,
		Status:        RoomStatusWaiting,
		Players:       []*Player{{PlayerID: creatorID, DisplayName: creatorName, HasJoined: true, JoinedAt: now, MarkedNumbers: []int{}}},
		DrawHistory:   []int{},
		TakenCartelas: make(map[int]int64),
		MinPlayers:    minPlayers,
		MaxPlayers:    maxPlayers,
		CardSeed:      cardSeed,
		CreatedBy:     creatorID,
		CreatedAt:     now,
	}
}

// FindPlayer returns the player or nil
func (r *Room) FindPlayer(playerID int64) *Player {
	for _, p := range r.Players {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// JoinedCount is the number of paying players
func (r *Room) JoinedCount() int {
	count := 0
	for _, p := range r.Players {
		if p.HasJoined {
			count++
		}
	}
	return count
}

// JoinedPlayers returns the paying players in join order
func (r *Room) JoinedPlayers() []*Player {
	joined := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.HasJoined {
			joined = append(joined, p)
		}
	}
	return joined
}

// IsFull returns true when no more players can pay to join
func (r *Room) IsFull() bool {
	return r.JoinedCount() >= r.MaxPlayers
}

// HasQuorum returns true when enough players paid to start
func (r *Room) HasQuorum() bool {
	return r.JoinedCount() >= r.MinPlayers
}

// Pot is the total stake collected from paying players
func (r *Room) Pot() int64 {
	return r.Tier * int64(r.JoinedCount())
}

// CartelaHolder returns who holds a cartela index
func (r *Room) CartelaHolder(index int) (int64, bool) {
	holder, ok := r.TakenCartelas[index]
	return holder, ok
}

// TakenCartelaList returns the reserved cartela indices in ascending order
func (r *Room) TakenCartelaList() []int {
	taken := make([]int, 0, len(r.TakenCartelas))
	for index := range r.TakenCartelas {
		taken = append(taken, index)
	}
	sort.Ints(taken)
	return taken
}

// AddPlayer appends a player entry without a cartela or payment
func (r *Room) AddPlayer(playerID int64, displayName string, now time.Time) *Player {
	p := &Player{PlayerID: playerID, DisplayName: displayName, JoinedAt: now, MarkedNumbers: []int{}}
	r.Players = append(r.Players, p)
	return p
}

// AssignCartela gives the player a cartela and its card, releasing any previous one.
// It returns the released index, or 0. The caller checks availability first.
func (r *Room) AssignCartela(p *Player, index int) int {
	released := 0
	if p.CartelaIndex > 0 && p.CartelaIndex != index {
		released = p.CartelaIndex
		delete(r.TakenCartelas, released)
	}
	card := bingo.GenerateCartela(r.CardSeed, index)
	p.CartelaIndex = index
	p.Card = &card
	r.TakenCartelas[index] = p.PlayerID
	return released
}

// RemovePlayer drops the player and frees their cartela
func (r *Room) RemovePlayer(playerID int64) *Player {
	for i, p := range r.Players {
		if p.PlayerID != playerID {
			continue
		}
		if p.CartelaIndex > 0 {
			delete(r.TakenCartelas, p.CartelaIndex)
		}
		r.Players = append(r.Players[:i], r.Players[i+1:]...)
		return p
	}
	return nil
}

// IsEmpty returns true when nobody is left in the room
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// LowestFreeCartela returns the smallest free cartela index up to maxCartela, or 0
func (r *Room) LowestFreeCartela(maxCartela int) int {
	for index := 1; index <= maxCartela; index++ {
		if _, taken := r.TakenCartelas[index]; !taken {
			return index
		}
	}
	return 0
}

// Start moves the room to playing. Players who never paid are dropped and
// paying players without a cartela get the lowest free one.
func (r *Room) Start(now time.Time, cadence, maxDuration time.Duration, maxCartela int) (dropped []*Player) {
	kept := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.HasJoined {
			kept = append(kept, p)
			continue
		}
		if p.CartelaIndex > 0 {
			delete(r.TakenCartelas, p.CartelaIndex)
		}
		dropped = append(dropped, p)
	}
	r.Players = kept

	for _, p := range r.Players {
		if !p.HasCartela() {
			if index := r.LowestFreeCartela(maxCartela); index > 0 {
				r.AssignCartela(p, index)
			}
		}
	}

	r.Status = RoomStatusPlaying
	r.StartedAt = &now
	r.DrawCadence = cadence
	r.MaxDuration = maxDuration
	return dropped
}

// IsDrawn returns true if the number has been called
func (r *Room) IsDrawn(number int) bool {
	for _, n := range r.DrawHistory {
		if n == number {
			return true
		}
	}
	return false
}

// RemainingNumbers lists the balls not yet drawn in ascending order
func (r *Room) RemainingNumbers() []int {
	drawn := make(map[int]bool, len(r.DrawHistory))
	for _, n := range r.DrawHistory {
		drawn[n] = true
	}
	remaining := make([]int, 0, bingo.MaxBallValue-len(r.DrawHistory))
	for n := 1; n <= bingo.MaxBallValue; n++ {
		if !drawn[n] {
			remaining = append(remaining, n)
		}
	}
	return remaining
}

// PoolExhausted returns true once all balls have been drawn
func (r *Room) PoolExhausted() bool {
	return len(r.DrawHistory) >= bingo.MaxBallValue
}

// DrawNumber picks one undrawn ball uniformly and appends it to the history
func (r *Room) DrawNumber(rng *rand.Rand) (int, bool) {
	remaining := r.RemainingNumbers()
	if len(remaining) == 0 {
		return 0, false
	}
	number := remaining[rng.Intn(len(remaining))]
	r.DrawHistory = append(r.DrawHistory, number)
	r.CurrentDraw = number
	return number, true
}

// Finish freezes the room. Winners are only recorded here.
func (r *Room) Finish(now time.Time, winners []Winner, cancelled bool) {
	r.Status = RoomStatusFinished
	r.FinishedAt = &now
	r.Winners = winners
	r.Cancelled = cancelled
	for _, w := range winners {
		if p := r.FindPlayer(w.PlayerID); p != nil {
			p.HasWon = true
			p.WinPattern = w.Pattern
		}
	}
}

// RebuildTakenCartelas derives the cartela index from the players, used after loading from storage
func (r *Room) RebuildTakenCartelas() {
	r.TakenCartelas = make(map[int]int64, len(r.Players))
	for _, p := range r.Players {
		if p.CartelaIndex > 0 {
			r.TakenCartelas[p.CartelaIndex] = p.PlayerID
		}
	}
}

// Clone returns a deep copy safe to hand outside the room's lock
func (r *Room) Clone() *Room {
	c := *r
	c.Players = make([]*Player, len(r.Players))
	for i, p := range r.Players {
		c.Players[i] = p.clone()
	}
	c.DrawHistory = append([]int(nil), r.DrawHistory...)
	c.TakenCartelas = make(map[int]int64, len(r.TakenCartelas))
	for k, v := range r.TakenCartelas {
		c.TakenCartelas[k] = v
	}
	c.Winners = append([]Winner(nil), r.Winners...)
	if r.StartedAt != nil {
		started := *r.StartedAt
		c.StartedAt = &started
	}
	if r.FinishedAt != nil {
		finished := *r.FinishedAt
		c.FinishedAt = &finished
	}
	return &c
}
