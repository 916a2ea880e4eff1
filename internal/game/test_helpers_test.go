package game

import (
	"fmt"
	"testing"

	"github.com/lox/tencount/internal/randutil"
)

// testRoom seats n players with the given starting balance.
func testRoom(t *testing.T, n, money int) *Room {
	t.Helper()
	r := NewRoom("TEST")
	for i := 0; i < n; i++ {
		p := &Player{
			ID:    fmt.Sprintf("p%d", i),
			Name:  fmt.Sprintf("Player %d", i),
			Money: money,
		}
		if err := r.AddPlayer(p); err != nil {
			t.Fatalf("adding player %d: %v", i, err)
		}
	}
	return r
}

// startRound starts a round and fails the test if the game ended instead.
func startRound(t *testing.T, r *Room) {
	t.Helper()
	winner, err := r.StartRound(randutil.New(1))
	if err != nil {
		t.Fatalf("starting round: %v", err)
	}
	if winner != nil {
		t.Fatalf("game unexpectedly over, winner %s", winner.ID)
	}
}

// betAndFinalize books the minimum bet and locks it in for the turn holder.
func betAndFinalize(t *testing.T, r *Room, playerID string) {
	t.Helper()
	if err := r.Bet(playerID, MinBet); err != nil {
		t.Fatalf("%s betting: %v", playerID, err)
	}
	if err := r.Finalize(playerID); err != nil {
		t.Fatalf("%s finalizing: %v", playerID, err)
	}
}

// toPlaying drives a freshly started round through betting (everyone bets
// the minimum) and the position choice, leaving the room in the playing
// phase.
func toPlaying(t *testing.T, r *Room) {
	t.Helper()
	for range r.ActivePlayers() {
		betAndFinalize(t, r, r.TurnPlayerID)
	}
	pending, chooser := r.ChoicePending()
	if !pending {
		t.Fatalf("expected position choice after betting, phase %s", r.Phase)
	}
	if err := r.ChoosePosition(chooser, PlayFirst); err != nil {
		t.Fatalf("choosing position: %v", err)
	}
	if r.Phase != PhasePlaying {
		t.Fatalf("expected playing phase, got %s", r.Phase)
	}
}
