package game

import (
	"errors"
	"testing"
)

// finishBetting drives every active player through a minimum bet and
// finalize, stopping at the position choice.
func finishBetting(t *testing.T, r *Room) string {
	t.Helper()
	for range r.ActivePlayers() {
		betAndFinalize(t, r, r.TurnPlayerID)
	}
	pending, chooser := r.ChoicePending()
	if !pending {
		t.Fatalf("expected pending position choice, phase %s", r.Phase)
	}
	return chooser
}

func TestHighestBettorGetsPositionChoice(t *testing.T) {
	r := testRoom(t, 4, 200000)
	startRound(t, r)

	// p2 raises above everyone else.
	betAndFinalize(t, r, "p0")
	betAndFinalize(t, r, "p1")
	if err := r.Bet("p2", 50000); err != nil {
		t.Fatal(err)
	}
	if err := r.Finalize("p2"); err != nil {
		t.Fatal(err)
	}
	betAndFinalize(t, r, "p3")

	pending, chooser := r.ChoicePending()
	if !pending {
		t.Fatalf("expected pending choice, phase %s", r.Phase)
	}
	if chooser != "p2" {
		t.Errorf("expected p2 to choose, got %s", chooser)
	}

	// No play or betting proceeds while the choice is pending.
	if err := r.Bet("p0", MinBet); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("expected betting paused, got %v", err)
	}
}

func TestChoosePositionFirst(t *testing.T) {
	r := testRoom(t, 4, 200000)
	startRound(t, r)

	betAndFinalize(t, r, "p0")
	betAndFinalize(t, r, "p1")
	if err := r.Bet("p2", 50000); err != nil {
		t.Fatal(err)
	}
	if err := r.Finalize("p2"); err != nil {
		t.Fatal(err)
	}
	betAndFinalize(t, r, "p3")

	if err := r.ChoosePosition("p2", PlayFirst); err != nil {
		t.Fatal(err)
	}
	want := []string{"p2", "p0", "p1", "p3"}
	for i, id := range want {
		if r.Round.PlayOrder[i] != id {
			t.Errorf("order[%d]: expected %s, got %s", i, id, r.Round.PlayOrder[i])
		}
	}
	if r.TurnPlayerID != "p2" {
		t.Errorf("expected p2 on turn, got %s", r.TurnPlayerID)
	}
	if r.Phase != PhasePlaying {
		t.Errorf("expected playing phase, got %s", r.Phase)
	}
}

func TestChoosePositionLast(t *testing.T) {
	r := testRoom(t, 4, 200000)
	startRound(t, r)

	betAndFinalize(t, r, "p0")
	betAndFinalize(t, r, "p1")
	if err := r.Bet("p2", 50000); err != nil {
		t.Fatal(err)
	}
	if err := r.Finalize("p2"); err != nil {
		t.Fatal(err)
	}
	betAndFinalize(t, r, "p3")

	if err := r.ChoosePosition("p2", PlayLast); err != nil {
		t.Fatal(err)
	}
	want := []string{"p0", "p1", "p3", "p2"}
	for i, id := range want {
		if r.Round.PlayOrder[i] != id {
			t.Errorf("order[%d]: expected %s, got %s", i, id, r.Round.PlayOrder[i])
		}
	}
	if r.TurnPlayerID != "p0" {
		t.Errorf("expected p0 on turn, got %s", r.TurnPlayerID)
	}
}

func TestChoosePositionRejectsNonChooser(t *testing.T) {
	r := testRoom(t, 4, 200000)
	startRound(t, r)
	chooser := finishBetting(t, r)

	other := "p1"
	if chooser == "p1" {
		other = "p0"
	}
	if err := r.ChoosePosition(other, PlayFirst); !errors.Is(err, ErrNotChooser) {
		t.Errorf("expected ErrNotChooser, got %v", err)
	}
}

func TestChoosePositionWithoutPendingChoice(t *testing.T) {
	r := testRoom(t, 4, 200000)
	startRound(t, r)

	if err := r.ChoosePosition("p0", PlayFirst); !errors.Is(err, ErrNoChoicePending) {
		t.Errorf("expected ErrNoChoicePending, got %v", err)
	}
}

func TestZeroBetFallbackUsesSeatOrder(t *testing.T) {
	r := testRoom(t, 4, 200000)
	r.StartingSeat = 2
	startRound(t, r)

	// Degenerate book: nobody committed anything. The machine skips the
	// choice and resolves to seat order from the starting seat.
	for _, p := range r.ActivePlayers() {
		r.Round.Finalized[p.ID] = true
	}
	r.beginOrderChoice()

	want := []string{"p2", "p3", "p0", "p1"}
	for i, id := range want {
		if r.Round.PlayOrder[i] != id {
			t.Errorf("order[%d]: expected %s, got %s", i, id, r.Round.PlayOrder[i])
		}
	}
	if r.Phase != PhasePlaying {
		t.Errorf("expected playing phase, got %s", r.Phase)
	}
}

func TestStartingSeatRotatesPlayOrder(t *testing.T) {
	r := testRoom(t, 4, 200000)
	r.StartingSeat = 1
	startRound(t, r)

	if r.TurnPlayerID != "p1" {
		t.Fatalf("expected p1 to open betting, got %s", r.TurnPlayerID)
	}

	chooser := finishBetting(t, r)
	if err := r.ChoosePosition(chooser, PlayLast); err != nil {
		t.Fatal(err)
	}
	// Base order from seat 1 with the chooser (p0, first in seat order)
	// moved to the end.
	want := []string{"p1", "p2", "p3", "p0"}
	for i, id := range want {
		if r.Round.PlayOrder[i] != id {
			t.Errorf("order[%d]: expected %s, got %s", i, id, r.Round.PlayOrder[i])
		}
	}
}
