package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// Card is a single card value. The game uses a 40-card deck of the values
// 0 through 3 with ten copies of each; cards have no identity beyond value.
type Card int

// String returns the card value as text.
func (c Card) String() string {
	return fmt.Sprintf("%d", int(c))
}

const (
	// NumValues is the count of distinct card values (0..3).
	NumValues = 4
	// CopiesPerValue is how many copies of each value a fresh deck holds.
	CopiesPerValue = 10
	// Size is the total number of cards in a fresh deck.
	Size = NumValues * CopiesPerValue
)

// ErrInsufficientCards is returned when a deal asks for more cards than the
// deck still holds. With fixed hand sizes and a 40-card deck this indicates a
// configuration error, so callers abort the round start.
var ErrInsufficientCards = errors.New("not enough cards remaining in deck")

// Deck holds an ordered sequence of cards that is consumed from the front.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a fresh unshuffled deck: ten copies of each value in order.
func New(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, Size),
		rng:   rng,
	}
	for v := 0; v < NumValues; v++ {
		for i := 0; i < CopiesPerValue; i++ {
			d.cards = append(d.cards, Card(v))
		}
	}
	return d
}

// NewShuffled creates a fresh deck and shuffles it.
func NewShuffled(rng *rand.Rand) *Deck {
	d := New(rng)
	d.Shuffle()
	return d
}

// Shuffle randomizes the deck order with a Fisher-Yates pass.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Shuffled returns an independently shuffled copy of the given cards,
// leaving the input untouched.
func Shuffled(cards []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Deal removes and returns the first n cards.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, fmt.Errorf("deal %d of %d: %w", n, len(d.cards), ErrInsufficientCards)
	}
	cards := make([]Card, n)
	copy(cards, d.cards[:n])
	d.cards = d.cards[n:]
	return cards, nil
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// HandSize returns the cards dealt per player for a round with the given
// number of active players: 4 with three or more players, 6 in the
// two-player variant. Recomputed from the live active count every round.
func HandSize(activePlayers int) int {
	if activePlayers >= 3 {
		return 4
	}
	return 6
}
