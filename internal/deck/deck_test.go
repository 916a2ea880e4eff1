package deck

import (
	"errors"
	"testing"

	"github.com/lox/tencount/internal/randutil"
)

func TestNewDeckComposition(t *testing.T) {
	d := New(randutil.New(1))

	if d.Remaining() != Size {
		t.Fatalf("expected %d cards, got %d", Size, d.Remaining())
	}

	counts := make(map[Card]int)
	cards, err := d.Deal(Size)
	if err != nil {
		t.Fatalf("dealing full deck: %v", err)
	}
	for _, c := range cards {
		counts[c]++
	}

	for v := 0; v < NumValues; v++ {
		if counts[Card(v)] != CopiesPerValue {
			t.Errorf("value %d: expected %d copies, got %d", v, CopiesPerValue, counts[Card(v)])
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	d := NewShuffled(randutil.New(42))
	counts := make(map[Card]int)
	cards, err := d.Deal(Size)
	if err != nil {
		t.Fatalf("dealing full deck: %v", err)
	}
	for _, c := range cards {
		counts[c]++
	}
	for v := 0; v < NumValues; v++ {
		if counts[Card(v)] != CopiesPerValue {
			t.Errorf("shuffle changed composition: value %d has %d copies", v, counts[Card(v)])
		}
	}
}

func TestShuffledDoesNotMutateInput(t *testing.T) {
	in := []Card{0, 1, 2, 3, 0, 1, 2, 3}
	snapshot := make([]Card, len(in))
	copy(snapshot, in)

	out := Shuffled(in, randutil.New(7))

	for i := range in {
		if in[i] != snapshot[i] {
			t.Fatalf("input mutated at index %d", i)
		}
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d cards out, got %d", len(in), len(out))
	}
}

func TestDealConsumesFromFront(t *testing.T) {
	d := New(randutil.New(1))

	first, err := d.Deal(4)
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	// Unshuffled deck is ten zeros first.
	for _, c := range first {
		if c != 0 {
			t.Errorf("expected leading zeros off an unshuffled deck, got %v", c)
		}
	}
	if d.Remaining() != Size-4 {
		t.Errorf("expected %d remaining, got %d", Size-4, d.Remaining())
	}
}

func TestDealInsufficientCards(t *testing.T) {
	d := New(randutil.New(1))
	if _, err := d.Deal(Size); err != nil {
		t.Fatalf("full deal: %v", err)
	}
	_, err := d.Deal(1)
	if !errors.Is(err, ErrInsufficientCards) {
		t.Fatalf("expected ErrInsufficientCards, got %v", err)
	}
}

func TestFourPlayerDealLeavesTwentyFour(t *testing.T) {
	d := NewShuffled(randutil.New(99))
	for i := 0; i < 4; i++ {
		hand, err := d.Deal(HandSize(4))
		if err != nil {
			t.Fatalf("dealing hand %d: %v", i, err)
		}
		if len(hand) != 4 {
			t.Fatalf("expected 4-card hand, got %d", len(hand))
		}
	}
	if d.Remaining() != 24 {
		t.Errorf("expected 24 cards unused, got %d", d.Remaining())
	}
}

func TestHandSizePolicy(t *testing.T) {
	cases := []struct {
		players int
		want    int
	}{
		{2, 6},
		{3, 4},
		{4, 4},
	}
	for _, tc := range cases {
		if got := HandSize(tc.players); got != tc.want {
			t.Errorf("HandSize(%d) = %d, want %d", tc.players, got, tc.want)
		}
	}
}
