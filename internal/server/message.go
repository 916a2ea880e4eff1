package server

import (
	"encoding/json"
	"time"

	"github.com/lox/tencount/internal/session"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type CreateRoomData struct {
	PlayerName string `json:"playerName"`
	BuyIn      int    `json:"buyIn"`
}

type JoinRoomData struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
	BuyIn      int    `json:"buyIn"`
}

type LeaveRoomData struct {
	RoomCode string `json:"roomCode"`
}

type AddBotData struct {
	Personality string `json:"personality,omitempty"` // cautious, balanced, aggressive
	BuyIn       int    `json:"buyIn,omitempty"`
}

type ReadyData struct {
	Ready bool `json:"ready"`
}

// PlayerActionData carries every in-round decision. Amount applies to
// bets, Card to plays, Position to the first-or-last choice.
type PlayerActionData struct {
	Action   string `json:"action"` // bet, call, all_in, finalize, play_card, choose_position
	Amount   int    `json:"amount,omitempty"`
	Card     int    `json:"card,omitempty"`
	Position string `json:"position,omitempty"` // first or last
}

// Server → Client Messages

type RoomCreatedData struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type RoomJoinedData struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type BotAddedData struct {
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	Personality string `json:"personality"`
}

// PlayerState is the public view of one seat.
type PlayerState struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Seat      int    `json:"seat"`
	Money     int    `json:"money"`
	Status    string `json:"status"`
	Ready     bool   `json:"ready"`
	Bot       bool   `json:"bot"`
	Bet       int    `json:"bet"`
	Finalized bool   `json:"finalized"`
	HandCount int    `json:"handCount"`
}

// RoomStateData is the shared table state. Private fields ride the hand
// message instead.
type RoomStateData struct {
	RoomCode     string        `json:"roomCode"`
	Phase        string        `json:"phase"`
	Round        int           `json:"round"`
	TableTotal   int           `json:"tableTotal"`
	Pot          int           `json:"pot"`
	HighBet      int           `json:"highBet"`
	TurnPlayerID string        `json:"turnPlayerId,omitempty"`
	ChooserID    string        `json:"chooserId,omitempty"`
	Players      []PlayerState `json:"players"`
}

// HandData is the viewer's private cards plus their betting position.
type HandData struct {
	Cards     []int `json:"cards"`
	Bet       int   `json:"bet"`
	Balance   int   `json:"balance"`
	HasRaised bool  `json:"hasRaised"`
}

type ShareData struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

type RoundResultData struct {
	Round    int         `json:"round"`
	BustedID string      `json:"bustedId,omitempty"`
	Shares   []ShareData `json:"shares"`
}

type GameOverData struct {
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
	Money      int    `json:"money"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoomStateFromSnapshot converts a session snapshot into the shared wire
// form, dropping the viewer-private fields.
func RoomStateFromSnapshot(snap session.Snapshot) RoomStateData {
	state := RoomStateData{
		RoomCode:     snap.RoomCode,
		Phase:        snap.Phase.String(),
		Round:        snap.RoundNum,
		TableTotal:   snap.TableTotal,
		Pot:          snap.Pot,
		HighBet:      snap.HighBet,
		TurnPlayerID: snap.TurnPlayerID,
		ChooserID:    snap.ChooserID,
	}
	for _, pv := range snap.Players {
		state.Players = append(state.Players, PlayerState{
			ID:        pv.ID,
			Name:      pv.Name,
			Seat:      pv.Seat,
			Money:     pv.Money,
			Status:    pv.Status.String(),
			Ready:     pv.Ready,
			Bot:       pv.Bot,
			Bet:       pv.Bet,
			Finalized: pv.Finalized,
			HandCount: pv.HandCount,
		})
	}
	return state
}

// HandFromSnapshot extracts the viewer's private fields.
func HandFromSnapshot(snap session.Snapshot) HandData {
	cards := make([]int, len(snap.Hand))
	for i, c := range snap.Hand {
		cards[i] = int(c)
	}
	return HandData{
		Cards:     cards,
		Bet:       snap.OwnBet,
		Balance:   snap.Balance,
		HasRaised: snap.HasRaised,
	}
}
