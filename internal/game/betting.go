package game

// Money amounts are minor currency units: 100 minor = 1 major unit.
const (
	// MinBet is the smallest committed bet a player with remaining balance
	// may finalize on.
	MinBet = 10000
)

// BetAmounts are the table's fixed bet denominations. A bet equal to the
// player's full remaining balance is also accepted as an implicit all-in.
var BetAmounts = []int{10000, 20000, 50000}

// ValidBetAmount reports whether amount is playable for a player holding
// the given balance.
func ValidBetAmount(amount, balance int) bool {
	for _, a := range BetAmounts {
		if amount == a {
			return true
		}
	}
	return amount > 0 && amount == balance
}

// HighestBet returns the largest committed bet this round and the player
// holding it. Ties go to the first highest bettor encountered in seat
// order; that player wins the position choice.
func (r *Room) HighestBet() (int, string) {
	if r.Round == nil {
		return 0, ""
	}
	high, holder := 0, ""
	for _, p := range r.ActivePlayers() {
		if bet := r.Round.Bets[p.ID]; bet > high {
			high, holder = bet, p.ID
		}
	}
	return high, holder
}

// IsBettingComplete reports whether every active player has finalized.
func (r *Room) IsBettingComplete() bool {
	if r.Round == nil {
		return false
	}
	active := r.ActivePlayers()
	if len(active) == 0 {
		return false
	}
	for _, p := range active {
		if !r.Round.Finalized[p.ID] {
			return false
		}
	}
	return true
}

// checkBettingActor validates the shared preconditions for betting actions.
func (r *Room) checkBettingActor(playerID string, needsTurn bool) (*Player, error) {
	if r.Phase != PhaseBetting || r.Round == nil || r.Round.ChoicePending {
		return nil, ErrWrongPhase
	}
	p := r.Player(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if !p.Active() {
		return nil, ErrNotPlaying
	}
	if r.Round.Finalized[playerID] {
		return nil, ErrAlreadyFinalized
	}
	if needsTurn && r.TurnPlayerID != playerID {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// Bet commits amount from the player's balance into the pot. amount must be
// a table denomination or the player's full balance (an implicit all-in).
func (r *Room) Bet(playerID string, amount int) error {
	p, err := r.checkBettingActor(playerID, true)
	if err != nil {
		return err
	}
	if !ValidBetAmount(amount, p.Money) {
		return ErrInvalidAmount
	}
	if amount > p.Money {
		return ErrInsufficientFunds
	}

	high, _ := r.HighestBet()
	p.Money -= amount
	r.Round.Bets[playerID] += amount
	r.Pot += amount
	if r.Round.Bets[playerID] > high {
		r.Round.Raised[playerID] = true
	}
	r.Round.Acted[playerID] = true
	r.Round.appendEvent(Event{Type: EventBet, PlayerID: playerID, Amount: amount})
	r.advanceBettingTurn()
	return nil
}

// Call raises the player's committed bet up to the table high. The caller
// keeps the turn; CallFinalize wraps the finalize that follows.
func (r *Room) Call(playerID string) error {
	p, err := r.checkBettingActor(playerID, true)
	if err != nil {
		return err
	}

	high, _ := r.HighestBet()
	delta := high - r.Round.Bets[playerID]
	if delta < 0 {
		delta = 0
	}
	if delta > p.Money {
		return ErrInsufficientFunds
	}

	p.Money -= delta
	r.Round.Bets[playerID] += delta
	r.Pot += delta
	r.Round.Acted[playerID] = true
	r.Round.appendEvent(Event{Type: EventCall, PlayerID: playerID, Amount: delta})
	return nil
}

// CallFinalize applies a call and the finalize that follows it as one
// unit. All validation runs before any state changes, so a rejected
// composite leaves the round untouched.
func (r *Room) CallFinalize(playerID string) error {
	p, err := r.checkBettingActor(playerID, true)
	if err != nil {
		return err
	}
	high, _ := r.HighestBet()
	delta := high - r.Round.Bets[playerID]
	if delta < 0 {
		delta = 0
	}
	if delta > p.Money {
		return ErrInsufficientFunds
	}
	if r.Round.Bets[playerID]+delta < MinBet && p.Money > delta {
		return ErrBelowMinimum
	}
	if err := r.Call(playerID); err != nil {
		return err
	}
	return r.Finalize(playerID)
}

// AllIn commits the player's entire remaining balance.
func (r *Room) AllIn(playerID string) error {
	p, err := r.checkBettingActor(playerID, true)
	if err != nil {
		return err
	}
	if p.Money == 0 {
		return ErrNothingToCommit
	}

	amount := p.Money
	high, _ := r.HighestBet()
	p.Money = 0
	r.Round.Bets[playerID] += amount
	r.Pot += amount
	if r.Round.Bets[playerID] > high {
		r.Round.Raised[playerID] = true
	}
	r.Round.Acted[playerID] = true
	r.Round.appendEvent(Event{Type: EventAllIn, PlayerID: playerID, Amount: amount})
	r.advanceBettingTurn()
	return nil
}

// Finalize locks the player's bet in for the round. It does not require the
// turn: a call is finalized in the same flow, and two players finalizing
// concurrently touch disjoint fields. Replaying an applied finalize fails
// with ErrAlreadyFinalized.
func (r *Room) Finalize(playerID string) error {
	p, err := r.checkBettingActor(playerID, false)
	if err != nil {
		return err
	}
	if !r.Round.Acted[playerID] {
		return ErrNoPriorAction
	}
	if r.Round.Bets[playerID] < MinBet && p.Money > 0 {
		return ErrBelowMinimum
	}

	r.Round.Finalized[playerID] = true
	r.Round.appendEvent(Event{Type: EventFinalize, PlayerID: playerID, Amount: r.Round.Bets[playerID]})
	if r.TurnPlayerID == playerID {
		r.advanceBettingTurn()
	}
	if r.IsBettingComplete() {
		r.beginOrderChoice()
	}
	return nil
}

// advanceBettingTurn hands the turn to the next active, non-finalized player
// in seat order, wrapping around the table. With no such player the turn is
// cleared; betting completion is detected on finalize.
func (r *Room) advanceBettingTurn() {
	current := r.Player(r.TurnPlayerID)
	seat := r.StartingSeat
	if current != nil {
		seat = current.Seat
	}
	for i := 1; i <= MaxSeats; i++ {
		s := (seat + i) % MaxSeats
		for _, p := range r.Players {
			if p.Seat == s && p.Active() && !r.Round.Finalized[p.ID] {
				r.TurnPlayerID = p.ID
				return
			}
		}
	}
	r.TurnPlayerID = ""
}
