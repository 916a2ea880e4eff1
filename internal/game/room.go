package game

import (
	"fmt"
	rand "math/rand/v2"
	"sort"

	"github.com/lox/tencount/internal/deck"
)

// Phase is the room's position in the round lifecycle.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseDealing
	PhaseBetting
	PhasePlaying
	PhaseRoundEnd
	PhaseFinished
)

func (p Phase) String() string {
	return [...]string{"lobby", "dealing", "betting", "playing", "round_end", "finished"}[p]
}

const (
	// MaxSeats is the number of seats at the table.
	MaxSeats = 4
	// BustThreshold ends the round: the player whose card play brings the
	// table total to this value or beyond is eliminated for the round.
	BustThreshold = 10
)

// Room is a game session: the seated players plus the state that survives
// across rounds. All mutation goes through a single coordinator; the room
// itself holds no locks.
type Room struct {
	Code         string
	Phase        Phase
	RoundNum     int
	StartingSeat int
	TableTotal   int
	Pot          int
	TurnPlayerID string
	HostID       string
	WinnerID     string
	Players      []*Player
	Round        *Round
	LastResult   *RoundResult
}

// Round is the per-round ephemeral state, recreated at every deal.
type Round struct {
	Deck          *deck.Deck
	Bets          map[string]int  // player -> cumulative committed bet
	Raised        map[string]bool // player exceeded the table high at least once
	Acted         map[string]bool // player took a betting action
	Finalized     map[string]bool // player's bet is locked in
	ChoicePending bool
	ChooserID     string
	HighBet       int
	PlayOrder     []string
	PlayCount     int
	BustedID      string
	Events        []Event
	eventSeq      int
}

func newRound(d *deck.Deck) *Round {
	return &Round{
		Deck:      d,
		Bets:      make(map[string]int),
		Raised:    make(map[string]bool),
		Acted:     make(map[string]bool),
		Finalized: make(map[string]bool),
	}
}

// NewRoom creates an empty room in the lobby phase.
func NewRoom(code string) *Room {
	return &Room{Code: code, Phase: PhaseLobby}
}

// AddPlayer seats a player at the lowest free seat. The first player to
// join becomes the host.
func (r *Room) AddPlayer(p *Player) error {
	if r.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	if len(r.Players) >= MaxSeats {
		return ErrRoomFull
	}
	taken := make(map[int]bool, len(r.Players))
	for _, existing := range r.Players {
		taken[existing.Seat] = true
	}
	seat := -1
	for s := 0; s < MaxSeats; s++ {
		if !taken[s] {
			seat = s
			break
		}
	}
	if seat == -1 {
		return ErrRoomFull
	}
	p.Seat = seat
	r.Players = append(r.Players, p)
	sort.Slice(r.Players, func(i, j int) bool { return r.Players[i].Seat < r.Players[j].Seat })
	if r.HostID == "" {
		r.HostID = p.ID
	}
	return nil
}

// RemovePlayer unseats a player. Only valid in the lobby; mid-game leavers
// are demoted to spectators instead so round state stays consistent.
func (r *Room) RemovePlayer(id string) {
	if r.Phase != PhaseLobby {
		if p := r.Player(id); p != nil {
			p.Status = StatusSpectator
			p.Hand = nil
			r.repairAfterLeave(id)
		}
		return
	}
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			break
		}
	}
	if r.HostID == id && len(r.Players) > 0 {
		r.HostID = r.Players[0].ID
	}
}

// repairAfterLeave keeps a running round consistent after a mid-game
// departure: the turn moves off the leaver, a position choice they held
// resolves to the default order, and betting completion re-runs now that
// their finalize will never arrive.
func (r *Room) repairAfterLeave(id string) {
	if r.Round == nil || (r.Phase != PhaseBetting && r.Phase != PhasePlaying) {
		return
	}
	if len(r.ActivePlayers()) < 2 {
		// Not enough seats left to play the round out.
		r.Round.ChoicePending = false
		r.endRound("")
		return
	}

	switch r.Phase {
	case PhaseBetting:
		if r.Round.ChoicePending {
			if r.Round.ChooserID == id {
				r.Round.ChoicePending = false
				r.resolvePlayOrder("", PlayFirst)
			}
			return
		}
		if r.TurnPlayerID == id {
			r.advanceBettingTurn()
		}
		if r.IsBettingComplete() {
			r.beginOrderChoice()
		}
	case PhasePlaying:
		if r.TurnPlayerID == id {
			r.advancePlayTurn()
		}
	}
}

// Player returns the seated player with the given identity, or nil.
func (r *Room) Player(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ActivePlayers returns the active players in seat order.
func (r *Room) ActivePlayers() []*Player {
	out := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out
}

// activeFrom returns the active players in seat order beginning at the given
// seat, wrapping around the table.
func (r *Room) activeFrom(seat int) []*Player {
	out := make([]*Player, 0, len(r.Players))
	for i := 0; i < MaxSeats; i++ {
		s := (seat + i) % MaxSeats
		for _, p := range r.Players {
			if p.Seat == s && p.Active() {
				out = append(out, p)
			}
		}
	}
	return out
}

// AllReady reports whether every seated player has readied up.
func (r *Room) AllReady() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// TotalMoney returns the money in the system: all balances plus the pot.
// Conserved across every round.
func (r *Room) TotalMoney() int {
	total := r.Pot
	for _, p := range r.Players {
		total += p.Money
	}
	return total
}

// StartRound deals a new round. Players holding zero balance are demoted to
// spectators first; if fewer than two players then qualify, the game is over
// and the winner is returned instead of dealing.
func (r *Room) StartRound(rng *rand.Rand) (*Player, error) {
	if r.Phase != PhaseLobby && r.Phase != PhaseRoundEnd {
		return nil, ErrWrongPhase
	}

	var qualifiers []*Player
	for _, p := range r.Players {
		if p.Qualifies() {
			qualifiers = append(qualifiers, p)
		}
	}
	if len(qualifiers) < 2 {
		r.Phase = PhaseFinished
		winner := r.soleWinner(qualifiers)
		if winner != nil {
			r.WinnerID = winner.ID
		}
		return winner, nil
	}

	// Zero-balance players sit out for the rest of the game.
	for _, p := range r.Players {
		if p.Active() && p.Money == 0 {
			p.Status = StatusSpectator
			p.Hand = nil
		}
	}

	r.Phase = PhaseDealing
	d := deck.NewShuffled(rng)
	active := r.ActivePlayers()
	handSize := deck.HandSize(len(active))
	for _, p := range active {
		cards, err := d.Deal(handSize)
		if err != nil {
			// Impossible with a 40-card deck and at most 4 six-card
			// hands; treated as a fatal configuration error. Finished is
			// terminal, so the aborted start cannot be retried.
			r.Phase = PhaseFinished
			return nil, fmt.Errorf("dealing round %d: %w", r.RoundNum+1, err)
		}
		p.Hand = cards
	}

	r.RoundNum++
	r.TableTotal = 0
	r.Round = newRound(d)
	r.Round.appendEvent(Event{Type: EventRoundStart})

	order := r.activeFrom(r.StartingSeat)
	r.TurnPlayerID = order[0].ID
	r.Phase = PhaseBetting
	return nil, nil
}

// soleWinner picks the game's winner when a round cannot start: the last
// qualifying player, or the only original player in a degenerate one-seat
// room.
func (r *Room) soleWinner(qualifiers []*Player) *Player {
	if len(qualifiers) == 1 {
		return qualifiers[0]
	}
	if len(r.Players) == 1 {
		return r.Players[0]
	}
	return nil
}

// Winner returns the game's winner once the room is finished, or nil.
func (r *Room) Winner() *Player {
	if r.WinnerID == "" {
		return nil
	}
	return r.Player(r.WinnerID)
}
