package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/tencount/internal/deck"
	"github.com/lox/tencount/internal/game"
	"github.com/lox/tencount/internal/randutil"
)

func TestHandStrength(t *testing.T) {
	cases := []struct {
		name       string
		hand       []deck.Card
		tableTotal int
		want       float64
	}{
		{"all zeros fresh table", []deck.Card{0, 0, 0, 0}, 0, 1.0},
		{"all threes fresh table", []deck.Card{3, 3, 3, 3}, 0, 0.6},
		{"all threes near bust", []deck.Card{3, 3, 3, 3}, 8, 0.0},
		{"mixed near bust", []deck.Card{0, 1, 2, 3}, 8, 0.5*0.6 + 0.5*0.4},
		{"empty hand", nil, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, HandStrength(tc.hand, tc.tableTotal), 1e-9)
		})
	}
}

func TestChooseCardCautiousPlaysLowestSafe(t *testing.T) {
	e := New(randutil.New(1))
	card := e.ChooseCard(Cautious, []deck.Card{3, 1, 2}, 5)
	assert.Equal(t, deck.Card(1), card)
}

func TestChooseCardBalancedPlaysMiddleSafe(t *testing.T) {
	e := New(randutil.New(1))
	// Safe cards at total 0 are all of them; sorted [0 1 2 3], middle
	// index 2.
	card := e.ChooseCard(Balanced, []deck.Card{3, 0, 2, 1}, 0)
	assert.Equal(t, deck.Card(2), card)
}

func TestChooseCardAggressivePlaysHighestSafeOnLowTable(t *testing.T) {
	e := New(randutil.New(1))
	card := e.ChooseCard(Aggressive, []deck.Card{0, 1, 3, 2}, 0)
	assert.Equal(t, deck.Card(3), card)
}

func TestChooseCardAggressiveStaysSafeOnHighTable(t *testing.T) {
	e := New(randutil.New(1))
	for i := 0; i < 20; i++ {
		card := e.ChooseCard(Aggressive, []deck.Card{0, 1, 3}, 8)
		assert.LessOrEqual(t, card, deck.Card(1), "picked an unsafe card at total 8")
	}
}

func TestChooseCardFallsBackToLowestWhenNoneSafe(t *testing.T) {
	e := New(randutil.New(1))
	for _, p := range []Personality{Cautious, Balanced, Aggressive} {
		card := e.ChooseCard(p, []deck.Card{3, 2, 3}, 9)
		assert.Equal(t, deck.Card(2), card, "%s should dump its lowest card", p)
	}
}

func TestBetDecisionDowngradesUnaffordableRaise(t *testing.T) {
	e := New(randutil.New(3))
	// Strong hand guarantees the raise branch; balance can only cover the
	// minimum denomination.
	ctx := BetContext{
		Hand:    []deck.Card{0, 0, 0, 0},
		Balance: 12000,
		HighBet: 0,
		OwnBet:  0,
	}
	sawBet := false
	for i := 0; i < 50; i++ {
		d := e.BetDecision(Aggressive, ctx)
		if d.Action == ActionBet {
			sawBet = true
			assert.LessOrEqual(t, d.Amount, ctx.Balance)
		}
	}
	require.True(t, sawBet, "aggressive bot with a perfect hand never bet")
}

func TestBetDecisionPressureFold(t *testing.T) {
	e := New(randutil.New(1))
	// Calling costs 90% of the stack on a hopeless hand: every
	// personality retreats rather than calls.
	ctx := BetContext{
		Hand:       []deck.Card{3, 3, 3, 3},
		TableTotal: 8,
		HighBet:    100000,
		OwnBet:     10000,
		Balance:    100000,
	}
	for _, p := range []Personality{Cautious, Balanced, Aggressive} {
		d := e.BetDecision(p, ctx)
		assert.Equal(t, ActionFinalize, d.Action, "%s should decline the raise", p)
	}
}

func TestBetDecisionPressureCallOnStrength(t *testing.T) {
	e := New(randutil.New(1))
	// A perfect hand clears every personality's pressure threshold.
	ctx := BetContext{
		Hand:    []deck.Card{0, 0, 0, 0},
		HighBet: 100000,
		OwnBet:  10000,
		Balance: 100000,
	}
	for _, p := range []Personality{Cautious, Balanced, Aggressive} {
		d := e.BetDecision(p, ctx)
		assert.Equal(t, ActionCall, d.Action, "%s should call with a perfect hand", p)
	}
}

func TestBetDecisionPressureFoldTopsUpToMinimum(t *testing.T) {
	e := New(randutil.New(1))
	// Declining with nothing committed: the rules require reaching the
	// table minimum before finalizing.
	ctx := BetContext{
		Hand:       []deck.Card{3, 3, 3, 3},
		TableTotal: 8,
		HighBet:    100000,
		OwnBet:     0,
		Balance:    100000,
	}
	d := e.BetDecision(Cautious, ctx)
	require.Equal(t, ActionBet, d.Action)
	assert.Equal(t, game.MinBet, d.Amount)
}

func TestBetDecisionNeverCallsUnlockableBook(t *testing.T) {
	// Books where a call cannot be locked in: nothing bet yet, and a
	// forced sub-minimum all-in as the only bet on the table. The bot has
	// to open instead.
	books := []BetContext{
		{Hand: []deck.Card{0, 1, 2, 3}, HighBet: 0, OwnBet: 0, Balance: 100000},
		{Hand: []deck.Card{0, 1, 2, 3}, HighBet: 5000, OwnBet: 0, Balance: 100000},
	}
	for _, p := range []Personality{Cautious, Balanced, Aggressive} {
		for seed := int64(0); seed < 25; seed++ {
			e := New(randutil.New(seed))
			for _, ctx := range books {
				for i := 0; i < 20; i++ {
					d := e.BetDecision(p, ctx)
					if d.Action != ActionBet && d.Action != ActionAllIn {
						t.Fatalf("%s seed %d high %d: chose %s, which cannot be finalized",
							p, seed, ctx.HighBet, d.Action)
					}
				}
			}
		}
	}
}

func TestBetDecisionAllInWhenCallExceedsBalance(t *testing.T) {
	e := New(randutil.New(1))
	ctx := BetContext{
		Hand:    []deck.Card{0, 0, 0, 0},
		HighBet: 500000,
		OwnBet:  10000,
		Balance: 40000,
	}
	d := e.BetDecision(Cautious, ctx)
	assert.Equal(t, ActionAllIn, d.Action)
}

func TestBetDecisionNeverRaisesTwice(t *testing.T) {
	e := New(randutil.New(7))
	ctx := BetContext{
		Hand:      []deck.Card{0, 0, 0, 0},
		HighBet:   10000,
		OwnBet:    10000,
		Balance:   200000,
		HasRaised: true,
	}
	for i := 0; i < 50; i++ {
		d := e.BetDecision(Aggressive, ctx)
		assert.NotEqual(t, ActionBet, d.Action, "raised again after raising")
	}
}

func TestShouldFinalizeOrdering(t *testing.T) {
	// Over many trials the cautious profile locks in most often and the
	// aggressive one least often.
	counts := make(map[Personality]int)
	for _, p := range []Personality{Cautious, Balanced, Aggressive} {
		e := New(randutil.New(11))
		for i := 0; i < 1000; i++ {
			if e.ShouldFinalize(p) {
				counts[p]++
			}
		}
	}
	assert.Greater(t, counts[Cautious], counts[Balanced])
	assert.Greater(t, counts[Balanced], counts[Aggressive])
}

func TestChoosePositionDeterministic(t *testing.T) {
	e := New(randutil.New(1))
	strong := []deck.Card{0, 0, 0, 0}
	weak := []deck.Card{3, 3, 3, 3}

	for _, p := range []Personality{Cautious, Balanced, Aggressive} {
		assert.Equal(t, game.PlayFirst, e.ChoosePosition(p, strong, 0), "%s with a perfect hand", p)
		assert.Equal(t, game.PlayLast, e.ChoosePosition(p, weak, 8), "%s holding only risky cards", p)
	}

	// Same inputs, same answer.
	first := e.ChoosePosition(Balanced, strong, 2)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.ChoosePosition(Balanced, strong, 2))
	}
}

func TestParsePersonality(t *testing.T) {
	for _, p := range []Personality{Cautious, Balanced, Aggressive} {
		got, err := ParsePersonality(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParsePersonality("reckless")
	assert.Error(t, err)
}
