package ai

import (
	"fmt"
	rand "math/rand/v2"
	"sort"

	"github.com/lox/tencount/internal/deck"
	"github.com/lox/tencount/internal/game"
)

// Personality selects a bot's decision profile.
type Personality int

const (
	Cautious Personality = iota
	Balanced
	Aggressive
)

func (p Personality) String() string {
	return [...]string{"cautious", "balanced", "aggressive"}[p]
}

// ParsePersonality maps a config string to a personality.
func ParsePersonality(s string) (Personality, error) {
	switch s {
	case "cautious":
		return Cautious, nil
	case "balanced":
		return Balanced, nil
	case "aggressive":
		return Aggressive, nil
	default:
		return Balanced, fmt.Errorf("unknown personality %q", s)
	}
}

// profile is the declarative parameter set behind a personality. Policy
// lives in this table; the decision functions below just read it.
type profile struct {
	raiseWeights     []int   // pick weights over game.BetAmounts, low to high
	raiseBias        float64 // added to hand strength when deciding to raise
	finalizeChance   float64 // chance to lock in after a non-call action
	pressureStrength float64 // strength needed to call a near-all-in call
	firstStrength    float64 // strength at which the chooser plays first
	lowTableMax      int     // aggressive: table totals treated as "very low"
}

var profiles = map[Personality]profile{
	Cautious: {
		raiseWeights:     []int{70, 20, 10},
		raiseBias:        -0.20,
		finalizeChance:   0.75,
		pressureStrength: 0.80,
		firstStrength:    0.75,
	},
	Balanced: {
		raiseWeights:     []int{40, 35, 25},
		raiseBias:        0,
		finalizeChance:   0.50,
		pressureStrength: 0.60,
		firstStrength:    0.65,
	},
	Aggressive: {
		raiseWeights:     []int{15, 30, 55},
		raiseBias:        0.20,
		finalizeChance:   0.25,
		pressureStrength: 0.45,
		firstStrength:    0.55,
		lowTableMax:      3,
	},
}

// HandStrength scores a hand between 0 and 1 against the current table
// total: 0.6 weight on the fraction of cards that keep the table under the
// bust threshold, 0.4 on the fraction of low (0/1) cards.
func HandStrength(hand []deck.Card, tableTotal int) float64 {
	if len(hand) == 0 {
		return 0
	}
	safe, low := 0, 0
	for _, c := range hand {
		if tableTotal+int(c) < game.BustThreshold {
			safe++
		}
		if c <= 1 {
			low++
		}
	}
	n := float64(len(hand))
	return 0.6*float64(safe)/n + 0.4*float64(low)/n
}

// Action is the kind of betting move a bot wants to make.
type Action int

const (
	ActionBet Action = iota
	ActionCall
	ActionAllIn
	ActionFinalize
)

func (a Action) String() string {
	return [...]string{"bet", "call", "all_in", "finalize"}[a]
}

// Decision is a bot's chosen betting move.
type Decision struct {
	Action Action
	Amount int // for ActionBet
}

// BetContext is the read-only state a bot bets from.
type BetContext struct {
	Hand       []deck.Card
	TableTotal int
	HighBet    int // highest committed bet at the table
	OwnBet     int // this bot's committed bet
	Balance    int
	HasRaised  bool // this bot already raised this round
}

// Engine makes personality-parameterized decisions. Randomness comes from
// the injected RNG, so a seeded engine is fully reproducible.
type Engine struct {
	rng *rand.Rand
}

// New creates an engine drawing randomness from rng.
func New(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// BetDecision picks the bot's next betting move. A call is only chosen
// when the resulting bet can be locked in.
func (e *Engine) BetDecision(p Personality, ctx BetContext) Decision {
	prof := profiles[p]
	strength := HandStrength(ctx.Hand, ctx.TableTotal)

	delta := ctx.HighBet - ctx.OwnBet
	if delta < 0 {
		delta = 0
	}

	// Calling would consume most of the stack: re-evaluate on strength.
	if ctx.Balance > 0 && delta*5 >= ctx.Balance*4 {
		if strength >= prof.pressureStrength {
			if delta >= ctx.Balance || ctx.OwnBet+delta < game.MinBet {
				return Decision{Action: ActionAllIn}
			}
			return Decision{Action: ActionCall}
		}
		return e.declineRaise(ctx)
	}

	if !ctx.HasRaised && e.rng.Float64() < strength+prof.raiseBias {
		amount := e.pickRaise(prof)
		// Re-validate against the actual balance, stepping down to the
		// minimum raise or a call when unaffordable.
		if amount > ctx.Balance {
			amount = game.MinBet
		}
		if amount <= ctx.Balance {
			return Decision{Action: ActionBet, Amount: amount}
		}
	}

	if delta > ctx.Balance {
		return Decision{Action: ActionAllIn}
	}
	// A call that would lock in below the table minimum with balance left
	// over cannot be finalized. Retreat to the minimum bet instead.
	if ctx.OwnBet+delta < game.MinBet && ctx.Balance > delta {
		return e.declineRaise(ctx)
	}
	return Decision{Action: ActionCall}
}

// declineRaise backs out of matching a raise. Folding does not exist in
// this game; the closest retreat is locking the current bet in, after
// topping it up to the table minimum when the rules demand one.
func (e *Engine) declineRaise(ctx BetContext) Decision {
	if ctx.OwnBet >= game.MinBet || ctx.Balance == 0 {
		return Decision{Action: ActionFinalize}
	}
	if ctx.Balance >= game.MinBet {
		return Decision{Action: ActionBet, Amount: game.MinBet}
	}
	return Decision{Action: ActionAllIn}
}

// pickRaise draws a raise amount from the personality's weighted
// distribution over the table denominations.
func (e *Engine) pickRaise(prof profile) int {
	total := 0
	for _, w := range prof.raiseWeights {
		total += w
	}
	n := e.rng.IntN(total)
	for i, w := range prof.raiseWeights {
		if n < w {
			return game.BetAmounts[i]
		}
		n -= w
	}
	return game.BetAmounts[len(game.BetAmounts)-1]
}

// ShouldFinalize decides whether to lock the bet in after an action.
// Calling always finalizes; that path never reaches here.
func (e *Engine) ShouldFinalize(p Personality) bool {
	return e.rng.Float64() < profiles[p].finalizeChance
}

// ChooseCard picks the card to play. Hands partition into cards that keep
// the table under the bust threshold and cards that do not; every
// personality falls back to its lowest card when nothing is safe.
func (e *Engine) ChooseCard(p Personality, hand []deck.Card, tableTotal int) deck.Card {
	safe := make([]deck.Card, 0, len(hand))
	for _, c := range hand {
		if tableTotal+int(c) < game.BustThreshold {
			safe = append(safe, c)
		}
	}
	if len(safe) == 0 {
		return lowest(hand)
	}
	sort.Slice(safe, func(i, j int) bool { return safe[i] < safe[j] })

	switch p {
	case Cautious:
		return safe[0]
	case Balanced:
		return safe[len(safe)/2]
	default: // Aggressive
		if tableTotal <= profiles[p].lowTableMax {
			return safe[len(safe)-1]
		}
		return safe[e.rng.IntN(len(safe))]
	}
}

// ChoosePosition decides whether the round's highest bettor plays first or
// last. Strong hands press the advantage up front; otherwise the bot waits
// at the back for information. Deterministic for a given hand and table.
func (e *Engine) ChoosePosition(p Personality, hand []deck.Card, tableTotal int) game.Position {
	if HandStrength(hand, tableTotal) >= profiles[p].firstStrength {
		return game.PlayFirst
	}
	return game.PlayLast
}

func lowest(hand []deck.Card) deck.Card {
	low := hand[0]
	for _, c := range hand[1:] {
		if c < low {
			low = c
		}
	}
	return low
}
