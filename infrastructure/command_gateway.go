package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bingohall/application"
	"bingohall/domain"
	"bingohall/domain/bingo"
	"bingohall/domain/entities"
	"bingohall/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	commandSubjectPrefix = "bingo.commands"
	commandQueueGroup    = "bingohall-commands"
	commandTimeout       = 10 * time.Second
)

// RoomService is the room orchestrator as seen by the gateway
type RoomService interface {
	CreateRoom(ctx context.Context, tier int64, creatorID int64, creatorName string) (*entities.Room, error)
	SelectCartela(ctx context.Context, roomID string, playerID int64, displayName string, index int) (*entities.Room, error)
	JoinRoom(ctx context.Context, roomID string, playerID int64) (*entities.Room, error)
	LeaveRoom(ctx context.Context, roomID string, playerID int64) error
	MarkNumber(ctx context.Context, roomID string, playerID int64, number int) error
	ClaimWin(ctx context.Context, roomID string, playerID int64, pattern bingo.Pattern, claimed []int) (*entities.Winner, error)
	GetRoom(ctx context.Context, roomID string) (*entities.Room, error)
	ListRoomsByTier() map[int64][]application.RoomSummary
	PreviewCartela(ctx context.Context, roomID string, index int) (bingo.Card, error)
}

// PlayerDirectory registers players and reads their wallets
type PlayerDirectory interface {
	Register(ctx context.Context, playerID int64, username string) (*entities.User, bool, error)
	GetUser(ctx context.Context, playerID int64) (*entities.User, error)
}

// RequestHandler is the slice of the NATS client the gateway needs
type RequestHandler interface {
	HandleRequests(subject, queue string, handler func(subject string, data []byte) []byte) error
}

// CommandRequest is the union of every command's arguments
type CommandRequest struct {
	RoomID         string `json:"roomId,omitempty"`
	PlayerID       int64  `json:"playerId,omitempty"`
	DisplayName    string `json:"displayName,omitempty"`
	Tier           int64  `json:"tier,omitempty"`
	Cartela        int    `json:"cartela,omitempty"`
	Number         int    `json:"number,omitempty"`
	Pattern        string `json:"pattern,omitempty"`
	ClaimedNumbers []int  `json:"claimedNumbers,omitempty"`
	Period         string `json:"period,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// CommandReply is sent back for every request
type CommandReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// CommandGateway answers bingo.commands.<op> requests by calling the orchestrator
type CommandGateway struct {
	rooms   RoomService
	players PlayerDirectory
	results interfaces.ResultLedger
}

// NewCommandGateway creates a new command gateway
func NewCommandGateway(rooms RoomService, players PlayerDirectory, results interfaces.ResultLedger) *CommandGateway {
	return &CommandGateway{
		rooms:   rooms,
		players: players,
		results: results,
	}
}

// Start subscribes the gateway to every command subject
func (g *CommandGateway) Start(client RequestHandler) error {
	return client.HandleRequests(commandSubjectPrefix+".*", commandQueueGroup, g.handle)
}

func (g *CommandGateway) handle(subject string, data []byte) []byte {
	op := strings.TrimPrefix(subject, commandSubjectPrefix+".")

	var reply CommandReply
	var req CommandRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			reply = CommandReply{Error: "Invalid request."}
		}
	}
	if reply.Error == "" {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		reply = g.Dispatch(ctx, op, req)
		cancel()
	}

	out, err := json.Marshal(reply)
	if err != nil {
		log.WithError(err).WithField("op", op).Error("Failed to marshal command reply")
		out, _ = json.Marshal(CommandReply{Error: domain.UserMessage(err)})
	}
	return out
}

// Dispatch runs one command and converts the outcome into a reply
func (g *CommandGateway) Dispatch(ctx context.Context, op string, req CommandRequest) CommandReply {
	data, err := g.run(ctx, op, req)
	if err != nil {
		if !domain.IsGameError(err) && !errors.Is(err, errBadRequest) {
			log.WithError(err).WithFields(log.Fields{
				"op":       op,
				"roomID":   req.RoomID,
				"playerID": req.PlayerID,
			}).Error("Command failed")
		}
		if errors.Is(err, errBadRequest) {
			return CommandReply{Error: err.Error()}
		}
		return CommandReply{Error: domain.UserMessage(err)}
	}
	return CommandReply{OK: true, Data: data}
}

var errBadRequest = errors.New("invalid request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func (g *CommandGateway) run(ctx context.Context, op string, req CommandRequest) (any, error) {
	switch op {
	case "register":
		if req.PlayerID == 0 {
			return nil, badRequest("playerId is required")
		}
		user, created, err := g.players.Register(ctx, req.PlayerID, req.DisplayName)
		if err != nil {
			return nil, err
		}
		return map[string]any{"user": newUserView(user), "created": created}, nil

	case "balance":
		user, err := g.players.GetUser(ctx, req.PlayerID)
		if err != nil {
			return nil, err
		}
		return newUserView(user), nil

	case "createRoom":
		room, err := g.rooms.CreateRoom(ctx, req.Tier, req.PlayerID, req.DisplayName)
		if err != nil {
			return nil, err
		}
		return newRoomView(room), nil

	case "selectCartela":
		room, err := g.rooms.SelectCartela(ctx, req.RoomID, req.PlayerID, req.DisplayName, req.Cartela)
		if err != nil {
			return nil, err
		}
		return newRoomView(room), nil

	case "previewCartela":
		card, err := g.rooms.PreviewCartela(ctx, req.RoomID, req.Cartela)
		if err != nil {
			return nil, err
		}
		return map[string]any{"cartela": req.Cartela, "card": card}, nil

	case "joinRoom":
		room, err := g.rooms.JoinRoom(ctx, req.RoomID, req.PlayerID)
		if err != nil {
			return nil, err
		}
		return newRoomView(room), nil

	case "leaveRoom":
		return nil, g.rooms.LeaveRoom(ctx, req.RoomID, req.PlayerID)

	case "markNumber":
		return nil, g.rooms.MarkNumber(ctx, req.RoomID, req.PlayerID, req.Number)

	case "claimWin":
		pattern, err := bingo.ParsePattern(req.Pattern)
		if err != nil {
			return nil, badRequest("%v", err)
		}
		return g.rooms.ClaimWin(ctx, req.RoomID, req.PlayerID, pattern, req.ClaimedNumbers)

	case "getRoom":
		room, err := g.rooms.GetRoom(ctx, req.RoomID)
		if err != nil {
			return nil, err
		}
		return newRoomView(room), nil

	case "listRooms":
		return g.rooms.ListRoomsByTier(), nil

	case "leaderboard":
		period, err := entities.ParseLeaderboardPeriod(req.Period)
		if err != nil {
			return nil, badRequest("%v", err)
		}
		entries, err := g.results.AggregateTopWinners(ctx, period, req.Limit)
		if err != nil {
			return nil, err
		}
		views := make([]leaderboardView, len(entries))
		for i, e := range entries {
			views[i] = leaderboardView{Rank: i + 1, PlayerID: e.PlayerID, Username: e.Username, Wins: e.Wins, TotalPrize: e.TotalPrize}
		}
		return views, nil

	case "history":
		results, err := g.results.QueryByPlayer(ctx, req.PlayerID, req.Limit)
		if err != nil {
			return nil, err
		}
		views := make([]resultView, len(results))
		for i, r := range results {
			views[i] = resultView{
				RoomID:            r.RoomID,
				Tier:              r.Tier,
				Position:          r.Position,
				PrizeAmount:       r.PrizeAmount,
				NumbersDrawnCount: r.NumbersDrawnCount,
				FinishedAt:        r.FinishedAt,
			}
		}
		return views, nil
	}
	return nil, badRequest("unknown command %q", op)
}

type roomView struct {
	RoomID        string              `json:"roomId"`
	Tier          int64               `json:"tier"`
	Status        entities.RoomStatus `json:"status"`
	Players       []*entities.Player  `json:"players"`
	DrawHistory   []int               `json:"drawHistory"`
	CurrentDraw   int                 `json:"currentDraw,omitempty"`
	TakenCartelas []int               `json:"takenCartelas"`
	MinPlayers    int                 `json:"minPlayers"`
	MaxPlayers    int                 `json:"maxPlayers"`
	Pot           int64               `json:"pot"`
	Winners       []entities.Winner   `json:"winners"`
	Cancelled     bool                `json:"cancelled,omitempty"`
	DrawCadenceMs int64               `json:"drawCadenceMs,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	StartedAt     *time.Time          `json:"startedAt,omitempty"`
	FinishedAt    *time.Time          `json:"finishedAt,omitempty"`
}

func newRoomView(room *entities.Room) roomView {
	winners := room.Winners
	if winners == nil {
		winners = []entities.Winner{}
	}
	return roomView{
		RoomID:        room.ID,
		Tier:          room.Tier,
		Status:        room.Status,
		Players:       room.Players,
		DrawHistory:   room.DrawHistory,
		CurrentDraw:   room.CurrentDraw,
		TakenCartelas: room.TakenCartelaList(),
		MinPlayers:    room.MinPlayers,
		MaxPlayers:    room.MaxPlayers,
		Pot:           room.Pot(),
		Winners:       winners,
		Cancelled:     room.Cancelled,
		DrawCadenceMs: room.DrawCadence.Milliseconds(),
		CreatedAt:     room.CreatedAt,
		StartedAt:     room.StartedAt,
		FinishedAt:    room.FinishedAt,
	}
}

type userView struct {
	PlayerID      int64  `json:"playerId"`
	Username      string `json:"username"`
	Balance       int64  `json:"balance"`
	GamesPlayed   int    `json:"gamesPlayed"`
	GamesWon      int    `json:"gamesWon"`
	TotalWinnings int64  `json:"totalWinnings"`
}

func newUserView(user *entities.User) userView {
	return userView{
		PlayerID:      user.ID,
		Username:      user.Username,
		Balance:       user.Balance,
		GamesPlayed:   user.GamesPlayed,
		GamesWon:      user.GamesWon,
		TotalWinnings: user.TotalWinnings,
	}
}

type leaderboardView struct {
	Rank       int    `json:"rank"`
	PlayerID   int64  `json:"playerId"`
	Username   string `json:"username"`
	Wins       int    `json:"wins"`
	TotalPrize int64  `json:"totalPrize"`
}

type resultView struct {
	RoomID            string    `json:"roomId"`
	Tier              int64     `json:"tier"`
	Position          int       `json:"position"`
	PrizeAmount       int64     `json:"prizeAmount"`
	NumbersDrawnCount int       `json:"numbersDrawnCount"`
	FinishedAt        time.Time `json:"finishedAt"`
}
