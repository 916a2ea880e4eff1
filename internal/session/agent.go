package session

import (
	"github.com/lox/tencount/internal/ai"
	"github.com/lox/tencount/internal/deck"
	"github.com/lox/tencount/internal/game"
)

// PlayerView is the public view of a seated player.
type PlayerView struct {
	ID        string
	Name      string
	Seat      int
	Money     int
	Status    game.Status
	Ready     bool
	Bot       bool
	Bet       int
	Finalized bool
	HandCount int
}

// Snapshot is the read-only state an agent (or renderer) works from. Hand,
// OwnBet and HasRaised are the viewer's private fields; other players'
// hands appear only as counts.
type Snapshot struct {
	RoomCode     string
	Phase        game.Phase
	RoundNum     int
	TableTotal   int
	Pot          int
	HighBet      int
	TurnPlayerID string
	ChooserID    string
	Players      []PlayerView

	SelfID    string
	Hand      []deck.Card
	OwnBet    int
	Balance   int
	HasRaised bool
}

// Agent makes decisions for one seat. Agents receive immutable snapshots
// and return intents; the controller applies them to the room.
type Agent interface {
	// BetAction returns the betting move for the agent's turn.
	BetAction(snap Snapshot) ai.Decision
	// FinalizeAfterBet reports whether to lock the bet in after a raise.
	FinalizeAfterBet(snap Snapshot) bool
	// PlayCard returns the card to play from the agent's hand.
	PlayCard(snap Snapshot) deck.Card
	// ChoosePosition answers the highest-bettor position choice.
	ChoosePosition(snap Snapshot) game.Position
}

// BotAgent drives a seat from the AI policy engine.
type BotAgent struct {
	engine      *ai.Engine
	personality ai.Personality
}

// NewBotAgent creates an agent with the given personality.
func NewBotAgent(engine *ai.Engine, personality ai.Personality) *BotAgent {
	return &BotAgent{engine: engine, personality: personality}
}

// Personality returns the agent's personality.
func (b *BotAgent) Personality() ai.Personality {
	return b.personality
}

func (b *BotAgent) BetAction(snap Snapshot) ai.Decision {
	return b.engine.BetDecision(b.personality, ai.BetContext{
		Hand:       snap.Hand,
		TableTotal: snap.TableTotal,
		HighBet:    snap.HighBet,
		OwnBet:     snap.OwnBet,
		Balance:    snap.Balance,
		HasRaised:  snap.HasRaised,
	})
}

func (b *BotAgent) FinalizeAfterBet(snap Snapshot) bool {
	if snap.Balance == 0 {
		return true
	}
	if snap.OwnBet < game.MinBet {
		return false
	}
	return b.engine.ShouldFinalize(b.personality)
}

func (b *BotAgent) PlayCard(snap Snapshot) deck.Card {
	return b.engine.ChooseCard(b.personality, snap.Hand, snap.TableTotal)
}

func (b *BotAgent) ChoosePosition(snap Snapshot) game.Position {
	return b.engine.ChoosePosition(b.personality, snap.Hand, snap.TableTotal)
}
