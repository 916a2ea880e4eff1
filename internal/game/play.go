package game

import "github.com/lox/tencount/internal/deck"

// PlayCard removes one copy of the card value from the player's hand and
// adds it to the table total. Reaching the bust threshold eliminates the
// player immediately and ends the round; otherwise the turn passes along
// the resolved play order.
func (r *Room) PlayCard(playerID string, card deck.Card) error {
	if r.Phase != PhasePlaying || r.Round == nil {
		return ErrWrongPhase
	}
	p := r.Player(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if !p.Active() {
		return ErrNotPlaying
	}
	if r.TurnPlayerID != playerID {
		return ErrNotYourTurn
	}
	if !p.removeCard(card) {
		return ErrCardNotInHand
	}

	r.TableTotal += int(card)
	r.Round.PlayCount++
	r.Round.appendEvent(Event{Type: EventCardPlayed, PlayerID: playerID, Card: card, Total: r.TableTotal})

	if r.TableTotal >= BustThreshold {
		r.Round.appendEvent(Event{Type: EventBust, PlayerID: playerID, Total: r.TableTotal})
		r.endRound(playerID)
		return nil
	}

	r.advancePlayTurn()
	return nil
}

// advancePlayTurn moves the turn to the next player in the play order who
// still holds cards, wrapping. Should every hand empty out before the table
// busts, the round ends with no eliminated player.
func (r *Room) advancePlayTurn() {
	order := r.Round.PlayOrder
	cur := 0
	for i, id := range order {
		if id == r.TurnPlayerID {
			cur = i
			break
		}
	}
	for i := 1; i <= len(order); i++ {
		id := order[(cur+i)%len(order)]
		p := r.Player(id)
		if p != nil && p.Active() && len(p.Hand) > 0 {
			r.TurnPlayerID = id
			return
		}
	}
	r.endRound("")
}
