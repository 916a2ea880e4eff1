package game

import "github.com/lox/tencount/internal/deck"

// EventType identifies an entry in the round's append-only event log.
type EventType string

const (
	EventRoundStart     EventType = "round_start"
	EventBet            EventType = "bet"
	EventCall           EventType = "call"
	EventAllIn          EventType = "all_in"
	EventFinalize       EventType = "finalize"
	EventChoiceOffered  EventType = "choice_offered"
	EventPositionChosen EventType = "position_chosen"
	EventCardPlayed     EventType = "card_played"
	EventBust           EventType = "bust"
	EventPotShare       EventType = "pot_share"
	EventRoundEnd       EventType = "round_end"
	EventGameOver       EventType = "game_over"
)

// Event is one entry in the per-round action log, ordered by Seq. Fields
// that do not apply to the event type are left zero. Events carry no wall
// clock, so identically seeded games produce identical logs.
type Event struct {
	Seq      int
	Type     EventType
	PlayerID string
	Amount   int
	Card     deck.Card
	Total    int // table total after a card play
}

func (rd *Round) appendEvent(e Event) {
	rd.eventSeq++
	e.Seq = rd.eventSeq
	rd.Events = append(rd.Events, e)
}
