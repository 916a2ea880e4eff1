package game

import "github.com/lox/tencount/internal/deck"

// Status is a player's standing in the room.
type Status int

const (
	// StatusActive players bet and play cards.
	StatusActive Status = iota
	// StatusSpectator players are permanently out of betting and play but
	// remain visible in standings. A player is demoted when a round starts
	// while they hold zero balance; spectators never re-enter.
	StatusSpectator
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSpectator:
		return "spectator"
	default:
		return "unknown"
	}
}

// Player is a seated participant. Money is in minor currency units
// (100 minor = 1 major). The hand is owned by the room and must only be
// shown to the owning player (or the host, for bot hands).
type Player struct {
	ID     string
	Name   string
	Seat   int
	Money  int
	Status Status
	Ready  bool
	Bot    bool
	Hand   []deck.Card
}

// Active reports whether the player participates in rounds.
func (p *Player) Active() bool {
	return p.Status == StatusActive
}

// Qualifies reports whether the player can be dealt into a new round.
func (p *Player) Qualifies() bool {
	return p.Status == StatusActive && p.Money > 0
}

// HasCard reports whether the hand holds at least one copy of the value.
func (p *Player) HasCard(c deck.Card) bool {
	for _, h := range p.Hand {
		if h == c {
			return true
		}
	}
	return false
}

// removeCard removes one copy of the value from the hand.
func (p *Player) removeCard(c deck.Card) bool {
	for i, h := range p.Hand {
		if h == c {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}
