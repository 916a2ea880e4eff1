package game

// Position is the highest bettor's choice of where to play in the card
// phase.
type Position int

const (
	PlayFirst Position = iota
	PlayLast
)

func (p Position) String() string {
	if p == PlayLast {
		return "last"
	}
	return "first"
}

// beginOrderChoice runs once betting completes. The round's highest bettor
// chooses whether to play first or last; the machine pauses awaiting that
// one decision. With an all-zero book there is nobody to ask and the order
// defaults to seat order from the starting seat.
func (r *Room) beginOrderChoice() {
	high, holder := r.HighestBet()
	if high == 0 {
		r.resolvePlayOrder("", PlayFirst)
		return
	}
	r.Round.ChoicePending = true
	r.Round.ChooserID = holder
	r.Round.HighBet = high
	r.TurnPlayerID = holder
	r.Round.appendEvent(Event{Type: EventChoiceOffered, PlayerID: holder, Amount: high})
}

// ChoicePending reports whether the machine is paused on the position
// choice, and for whom.
func (r *Room) ChoicePending() (bool, string) {
	if r.Round == nil || !r.Round.ChoicePending {
		return false, ""
	}
	return true, r.Round.ChooserID
}

// ChoosePosition resolves the paused position choice and starts the playing
// phase.
func (r *Room) ChoosePosition(playerID string, pos Position) error {
	if r.Phase != PhaseBetting || r.Round == nil || !r.Round.ChoicePending {
		return ErrNoChoicePending
	}
	if playerID != r.Round.ChooserID {
		return ErrNotChooser
	}
	r.Round.ChoicePending = false
	r.Round.appendEvent(Event{Type: EventPositionChosen, PlayerID: playerID, Amount: int(pos)})
	r.resolvePlayOrder(playerID, pos)
	return nil
}

// resolvePlayOrder fixes the card-play order: active players in seat order
// from the starting seat, with the chooser moved to the front or the end.
func (r *Room) resolvePlayOrder(chooserID string, pos Position) {
	ids := make([]string, 0, MaxSeats)
	for _, p := range r.activeFrom(r.StartingSeat) {
		ids = append(ids, p.ID)
	}

	if chooserID != "" {
		for i, id := range ids {
			if id != chooserID {
				continue
			}
			ids = append(ids[:i], ids[i+1:]...)
			if pos == PlayFirst {
				ids = append([]string{chooserID}, ids...)
			} else {
				ids = append(ids, chooserID)
			}
			break
		}
	}

	r.Round.PlayOrder = ids
	r.Phase = PhasePlaying
	r.TurnPlayerID = ids[0]
}
