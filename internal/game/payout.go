package game

// Share is one survivor's cut of the pot.
type Share struct {
	PlayerID string
	Amount   int
}

// RoundResult records how a round ended.
type RoundResult struct {
	RoundNum int
	BustedID string // empty when every hand emptied without a bust
	Shares   []Share
	WinnerID string // set when the game ended with this round
}

// endRound distributes the pot among survivors, rotates the starting seat
// and runs the game-over check.
func (r *Room) endRound(bustedID string) {
	r.Phase = PhaseRoundEnd
	r.Round.BustedID = bustedID
	r.TurnPlayerID = ""

	survivors := make([]*Player, 0, MaxSeats)
	for _, p := range r.ActivePlayers() {
		if p.ID != bustedID {
			survivors = append(survivors, p)
		}
	}

	shares := distributePot(r.Pot, survivors, r.Round.Bets)
	for _, s := range shares {
		if p := r.Player(s.PlayerID); p != nil {
			p.Money += s.Amount
		}
		r.Round.appendEvent(Event{Type: EventPotShare, PlayerID: s.PlayerID, Amount: s.Amount})
	}
	r.Pot = 0
	r.StartingSeat = (r.StartingSeat + 1) % MaxSeats

	result := &RoundResult{RoundNum: r.RoundNum, BustedID: bustedID, Shares: shares}
	r.Round.appendEvent(Event{Type: EventRoundEnd})

	// Game over when a single player holds all the money.
	var moneyed []*Player
	for _, p := range r.Players {
		if p.Money > 0 {
			moneyed = append(moneyed, p)
		}
	}
	if len(moneyed) == 1 {
		r.Phase = PhaseFinished
		r.WinnerID = moneyed[0].ID
		result.WinnerID = moneyed[0].ID
		r.Round.appendEvent(Event{Type: EventGameOver, PlayerID: moneyed[0].ID})
	}
	r.LastResult = result
}

// distributePot splits the pot among survivors weighted by their committed
// bets: floor(pot * bet / totalSurvivorBets) each, with the floor-division
// remainder going to the last survivor in iteration order so the whole pot
// is always paid out. The eliminated player's bet stays in the pot. When no
// survivor bet anything the pot splits evenly instead.
func distributePot(pot int, survivors []*Player, bets map[string]int) []Share {
	if pot == 0 || len(survivors) == 0 {
		return nil
	}

	total := 0
	for _, p := range survivors {
		total += bets[p.ID]
	}

	shares := make([]Share, len(survivors))
	distributed := 0
	for i, p := range survivors {
		var amount int
		if i == len(survivors)-1 {
			amount = pot - distributed
		} else if total > 0 {
			amount = pot * bets[p.ID] / total
		} else {
			amount = pot / len(survivors)
		}
		distributed += amount
		shares[i] = Share{PlayerID: p.ID, Amount: amount}
	}
	return shares
}
