package game

import (
	"errors"
	"testing"

	"github.com/lox/tencount/internal/deck"
	"github.com/lox/tencount/internal/randutil"
)

func TestAddPlayerAssignsSeatsInOrder(t *testing.T) {
	r := testRoom(t, 4, 100000)
	for i, p := range r.Players {
		if p.Seat != i {
			t.Errorf("player %d: expected seat %d, got %d", i, i, p.Seat)
		}
	}
	if r.HostID != "p0" {
		t.Errorf("expected first joiner to host, got %s", r.HostID)
	}
}

func TestAddPlayerRoomFull(t *testing.T) {
	r := testRoom(t, 4, 100000)
	err := r.AddPlayer(&Player{ID: "p4", Money: 100000})
	if !errors.Is(err, ErrRoomFull) {
		t.Errorf("expected ErrRoomFull, got %v", err)
	}
}

func TestAddPlayerReusesVacatedSeat(t *testing.T) {
	r := testRoom(t, 3, 100000)
	r.RemovePlayer("p1")
	late := &Player{ID: "late", Money: 100000}
	if err := r.AddPlayer(late); err != nil {
		t.Fatal(err)
	}
	if late.Seat != 1 {
		t.Errorf("expected the vacated seat 1, got %d", late.Seat)
	}
}

func TestStartRoundDealsHands(t *testing.T) {
	r := testRoom(t, 4, 100000)
	startRound(t, r)

	if r.RoundNum != 1 {
		t.Errorf("expected round 1, got %d", r.RoundNum)
	}
	if r.Phase != PhaseBetting {
		t.Errorf("expected betting phase, got %s", r.Phase)
	}
	for _, p := range r.Players {
		if len(p.Hand) != 4 {
			t.Errorf("%s: expected 4 cards, got %d", p.ID, len(p.Hand))
		}
	}
	if r.Round.Deck.Remaining() != deck.Size-16 {
		t.Errorf("expected %d cards left, got %d", deck.Size-16, r.Round.Deck.Remaining())
	}
	if r.TurnPlayerID != "p0" {
		t.Errorf("expected seat 0 to open, got %s", r.TurnPlayerID)
	}
}

func TestTwoPlayerVariantDealsSix(t *testing.T) {
	r := testRoom(t, 2, 100000)
	startRound(t, r)
	for _, p := range r.Players {
		if len(p.Hand) != 6 {
			t.Errorf("%s: expected 6 cards, got %d", p.ID, len(p.Hand))
		}
	}
}

func TestHandSizeRecomputedFromCurrentActiveCount(t *testing.T) {
	r := testRoom(t, 4, 100000)
	startRound(t, r)
	if len(r.Player("p0").Hand) != 4 {
		t.Fatalf("expected 4-card hands with four players")
	}

	// Two players go broke; the next round is the two-player variant.
	r.Phase = PhaseRoundEnd
	r.Player("p2").Money = 0
	r.Player("p3").Money = 0
	startRound(t, r)

	if len(r.Player("p0").Hand) != 6 {
		t.Errorf("expected 6-card hands once only two remain, got %d", len(r.Player("p0").Hand))
	}
}

func TestStartRoundDemotesBrokePlayersPermanently(t *testing.T) {
	r := testRoom(t, 4, 100000)
	startRound(t, r)

	r.Phase = PhaseRoundEnd
	r.Player("p1").Money = 0
	startRound(t, r)

	if r.Player("p1").Status != StatusSpectator {
		t.Fatal("expected broke player demoted to spectator")
	}
	if r.Player("p1").Hand != nil {
		t.Error("spectator should hold no hand")
	}

	// Spectators never re-enter, even if money were to reappear.
	r.Phase = PhaseRoundEnd
	r.Player("p1").Money = 50000
	startRound(t, r)
	if r.Player("p1").Status != StatusSpectator {
		t.Error("spectator re-entered the game")
	}
	if len(r.Player("p1").Hand) != 0 {
		t.Error("spectator was dealt a hand")
	}
}

func TestStartRoundGameOverWithOneQualifier(t *testing.T) {
	r := testRoom(t, 3, 100000)
	r.Player("p1").Money = 0
	r.Player("p2").Money = 0

	winner, err := r.StartRound(randutil.New(1))
	if err != nil {
		t.Fatal(err)
	}
	if winner == nil || winner.ID != "p0" {
		t.Fatalf("expected p0 as winner, got %v", winner)
	}
	if r.Phase != PhaseFinished {
		t.Errorf("expected finished phase, got %s", r.Phase)
	}
}

func TestStartRoundSkipsSpectatorSeat(t *testing.T) {
	r := testRoom(t, 4, 100000)
	r.Player("p0").Status = StatusSpectator
	startRound(t, r)

	if r.TurnPlayerID != "p1" {
		t.Errorf("expected first active seat after 0 to open, got %s", r.TurnPlayerID)
	}
	if len(r.Player("p0").Hand) != 0 {
		t.Error("spectator was dealt a hand")
	}
}

func TestRemovePlayerMidGameSpectates(t *testing.T) {
	r := testRoom(t, 4, 100000)
	startRound(t, r)

	r.RemovePlayer("p2")
	if p := r.Player("p2"); p == nil || p.Status != StatusSpectator {
		t.Error("expected mid-game leaver demoted to spectator, not unseated")
	}
}

func TestStartRoundRejectedOnceFinished(t *testing.T) {
	r := testRoom(t, 2, 100000)
	r.Phase = PhaseFinished
	if _, err := r.StartRound(randutil.New(1)); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("expected ErrWrongPhase, got %v", err)
	}
}

func TestRemovePlayerHoldingBettingTurn(t *testing.T) {
	r := testRoom(t, 3, 100000)
	startRound(t, r)

	leaver := r.TurnPlayerID
	r.RemovePlayer(leaver)
	if r.TurnPlayerID == leaver {
		t.Fatal("turn still held by the leaver")
	}
	if r.TurnPlayerID != "p1" {
		t.Errorf("expected turn to pass to p1, got %s", r.TurnPlayerID)
	}

	// The round still plays out for the remaining seats.
	betAndFinalize(t, r, "p1")
	betAndFinalize(t, r, "p2")
	if pending, _ := r.ChoicePending(); !pending {
		t.Errorf("expected position choice once the rest locked in, phase %s", r.Phase)
	}
}

func TestRemoveLastUnfinalizedPlayerCompletesBetting(t *testing.T) {
	r := testRoom(t, 3, 100000)
	startRound(t, r)

	betAndFinalize(t, r, "p0")
	betAndFinalize(t, r, "p1")
	r.RemovePlayer("p2")

	pending, chooser := r.ChoicePending()
	if !pending {
		t.Fatalf("expected betting to complete when the holdout left, phase %s", r.Phase)
	}
	if chooser != "p0" {
		t.Errorf("expected the high-bet tie to break to p0, got %s", chooser)
	}
}

func TestRemoveChooserResolvesDefaultOrder(t *testing.T) {
	r := testRoom(t, 3, 100000)
	startRound(t, r)
	for range r.ActivePlayers() {
		betAndFinalize(t, r, r.TurnPlayerID)
	}
	_, chooser := r.ChoicePending()
	r.RemovePlayer(chooser)

	if r.Phase != PhasePlaying {
		t.Fatalf("expected playing phase after the chooser left, got %s", r.Phase)
	}
	for _, id := range r.Round.PlayOrder {
		if id == chooser {
			t.Error("leaver still in the play order")
		}
	}
	if r.TurnPlayerID != r.Round.PlayOrder[0] {
		t.Errorf("expected %s to open play, got %s", r.Round.PlayOrder[0], r.TurnPlayerID)
	}
}

func TestRemovePlayerHoldingPlayTurn(t *testing.T) {
	r := testRoom(t, 3, 100000)
	startRound(t, r)
	toPlaying(t, r)

	leaver := r.TurnPlayerID
	r.RemovePlayer(leaver)
	if r.TurnPlayerID == leaver {
		t.Fatal("turn still held by the leaver")
	}
	if r.Phase != PhasePlaying {
		t.Fatalf("expected the round to continue, phase %s", r.Phase)
	}
	next := r.Player(r.TurnPlayerID)
	if next == nil || !next.Active() || len(next.Hand) == 0 {
		t.Error("turn passed to a seat that cannot play")
	}
}

func TestRemoveSecondToLastActiveEndsRound(t *testing.T) {
	r := testRoom(t, 2, 100000)
	total := r.TotalMoney()
	startRound(t, r)

	betAndFinalize(t, r, "p0")
	r.RemovePlayer("p1")

	if r.Phase != PhaseRoundEnd {
		t.Fatalf("expected round end with one seat left, got %s", r.Phase)
	}
	if r.TotalMoney() != total {
		t.Errorf("money not conserved: started %d, now %d", total, r.TotalMoney())
	}
}

func TestAllReady(t *testing.T) {
	r := testRoom(t, 2, 100000)
	if r.AllReady() {
		t.Error("no one is ready yet")
	}
	r.Player("p0").Ready = true
	r.Player("p1").Ready = true
	if !r.AllReady() {
		t.Error("expected all ready")
	}
}
