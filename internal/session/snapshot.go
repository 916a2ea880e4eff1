package session

import (
	"sort"

	"github.com/lox/tencount/internal/deck"
	"github.com/lox/tencount/internal/store"
)

// Snapshot builds the viewer's picture of the room: shared state plus the
// viewer's own hand and betting fields.
func (c *Controller) Snapshot(viewerID string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(viewerID)
}

func (c *Controller) snapshotLocked(viewerID string) Snapshot {
	r := c.room
	snap := Snapshot{
		RoomCode:     r.Code,
		Phase:        r.Phase,
		RoundNum:     r.RoundNum,
		TableTotal:   r.TableTotal,
		Pot:          r.Pot,
		TurnPlayerID: r.TurnPlayerID,
		SelfID:       viewerID,
	}

	if r.Round != nil {
		high, _ := r.HighestBet()
		snap.HighBet = high
		if r.Round.ChoicePending {
			snap.ChooserID = r.Round.ChooserID
		}
		snap.OwnBet = r.Round.Bets[viewerID]
		snap.HasRaised = r.Round.Raised[viewerID]
	}

	for _, p := range r.Players {
		pv := PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Seat:      p.Seat,
			Money:     p.Money,
			Status:    p.Status,
			Ready:     p.Ready,
			Bot:       p.Bot,
			HandCount: len(p.Hand),
		}
		if r.Round != nil {
			pv.Bet = r.Round.Bets[p.ID]
			pv.Finalized = r.Round.Finalized[p.ID]
		}
		snap.Players = append(snap.Players, pv)

		if p.ID == viewerID {
			snap.Balance = p.Money
			snap.Hand = append([]deck.Card(nil), p.Hand...)
			sort.Slice(snap.Hand, func(i, j int) bool { return snap.Hand[i] < snap.Hand[j] })
		}
	}
	sort.Slice(snap.Players, func(i, j int) bool { return snap.Players[i].Seat < snap.Players[j].Seat })
	return snap
}

// publish mirrors the room into the attached store so subscribers see
// every applied change. Hands are written as private records keyed by
// player. Called with the lock held; a nil store makes it a no-op.
func (c *Controller) publish() {
	if c.st == nil {
		return
	}
	r := c.room

	c.st.Upsert(store.Key{Room: r.Code, Kind: store.KindRoom, ID: r.Code}, store.Fields{
		"phase":       r.Phase.String(),
		"round":       r.RoundNum,
		"table_total": r.TableTotal,
		"pot":         r.Pot,
		"turn":        r.TurnPlayerID,
		"host":        r.HostID,
		"winner":      r.WinnerID,
	})

	for _, p := range r.Players {
		fields := store.Fields{
			"name":   p.Name,
			"seat":   p.Seat,
			"money":  p.Money,
			"status": p.Status.String(),
			"ready":  p.Ready,
			"bot":    p.Bot,
		}
		if r.Round != nil {
			fields["bet"] = r.Round.Bets[p.ID]
			fields["finalized"] = r.Round.Finalized[p.ID]
		}
		c.st.Upsert(store.Key{Room: r.Code, Kind: store.KindPlayer, ID: p.ID}, fields)

		cards := make([]int, len(p.Hand))
		for i, card := range p.Hand {
			cards[i] = int(card)
		}
		c.st.Upsert(store.Key{Room: r.Code, Kind: store.KindHand, ID: p.ID}, store.Fields{
			"owner": p.ID,
			"bot":   p.Bot,
			"cards": cards,
		})
	}

	if r.Round != nil {
		c.st.Upsert(store.Key{Room: r.Code, Kind: store.KindRound, ID: r.Code}, store.Fields{
			"busted":  r.Round.BustedID,
			"choice":  r.Round.ChoicePending,
			"chooser": r.Round.ChooserID,
			"events":  len(r.Round.Events),
		})
	}
}
