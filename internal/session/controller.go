package session

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/lox/tencount/internal/ai"
	"github.com/lox/tencount/internal/deck"
	"github.com/lox/tencount/internal/game"
	"github.com/lox/tencount/internal/store"
)

var (
	// ErrStalled is returned by RunToCompletion when no automated progress
	// is possible and no human action can arrive.
	ErrStalled = errors.New("session stalled waiting on a seat with no agent")
	// ErrNotReady is returned by Begin while seated players are unready.
	ErrNotReady = errors.New("not all players are ready")
)

// Controller is the single authoritative mutator for one room. In solo
// play it drives every seat; in shared play it runs on the host and drives
// only bot seats and round lifecycle, while remote participants feed their
// own actions in through the action methods.
type Controller struct {
	mu     sync.Mutex
	room   *game.Room
	agents map[string]Agent
	engine *ai.Engine

	clock       quartz.Clock
	tick        time.Duration
	thinkDelay  time.Duration
	idleTimeout time.Duration
	lastAction  time.Time

	rng    *rand.Rand
	logger *log.Logger
	st     *store.Store
	group  singleflight.Group
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock injects the clock used for ticks and bot think delays. Tests
// pass quartz.NewMock.
func WithClock(c quartz.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithStore attaches a sync store; the controller publishes room, player
// and hand records into it after every applied action.
func WithStore(s *store.Store) Option {
	return func(ctl *Controller) { ctl.st = s }
}

// WithTick sets the polling interval for detecting bot turns.
func WithTick(d time.Duration) Option {
	return func(ctl *Controller) { ctl.tick = d }
}

// WithThinkDelay adds a simulated pause before each bot decision.
func WithThinkDelay(d time.Duration) Option {
	return func(ctl *Controller) { ctl.thinkDelay = d }
}

// WithIdleTimeout enables auto-acting for stalled human turns: after d
// with no progress the turn holder is finalized (betting) or plays their
// lowest card (playing). Zero disables, which is the default.
func WithIdleTimeout(d time.Duration) Option {
	return func(ctl *Controller) { ctl.idleTimeout = d }
}

// NewController creates the coordinator for a room.
func NewController(room *game.Room, rng *rand.Rand, logger *log.Logger, opts ...Option) *Controller {
	c := &Controller{
		room:   room,
		agents: make(map[string]Agent),
		engine: ai.New(rng),
		clock:  quartz.NewReal(),
		tick:   time.Second,
		rng:    rng,
		logger: logger.WithPrefix("session").With("room", room.Code),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastAction = c.clock.Now()
	return c
}

// Room returns the controlled room. Callers must treat it as read-only;
// mutation goes through the controller.
func (c *Controller) Room() *game.Room {
	return c.room
}

// AddPlayer seats a human player and returns it.
func (c *Controller) AddPlayer(name string, money int) (*game.Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := &game.Player{ID: uuid.NewString(), Name: name, Money: money}
	if err := c.room.AddPlayer(p); err != nil {
		return nil, err
	}
	c.publish()
	return p, nil
}

// AddBot seats a bot with the given personality, ready to play.
func (c *Controller) AddBot(name string, personality ai.Personality, money int) (*game.Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := &game.Player{ID: uuid.NewString(), Name: name, Money: money, Bot: true, Ready: true}
	if err := c.room.AddPlayer(p); err != nil {
		return nil, err
	}
	c.agents[p.ID] = NewBotAgent(c.engine, personality)
	c.publish()
	return p, nil
}

// RegisterAgent attaches an agent to an already-seated player. Used for
// local human seats in solo play.
func (c *Controller) RegisterAgent(playerID string, a Agent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.agents[playerID] = a
}

// SetReady flags a player ready in the lobby.
func (c *Controller) SetReady(playerID string, ready bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.room.Player(playerID)
	if p == nil {
		return game.ErrUnknownPlayer
	}
	p.Ready = ready
	c.publish()
	return nil
}

// Leave removes a player from the room.
func (c *Controller) Leave(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room.RemovePlayer(playerID)
	c.publish()
}

// Begin deals the first round. The host calls this once the lobby is
// ready; later rounds start from Step.
func (c *Controller) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.room.AllReady() {
		return ErrNotReady
	}
	_, err := c.room.StartRound(c.rng)
	c.touch()
	c.publish()
	return err
}

// HostID returns the room host's player ID.
func (c *Controller) HostID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room.HostID
}

// LastResult returns a copy of the most recently settled round, or nil
// before the first round ends.
func (c *Controller) LastResult() *game.RoundResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room.LastResult == nil {
		return nil
	}
	res := *c.room.LastResult
	res.Shares = append([]game.Share(nil), c.room.LastResult.Shares...)
	return &res
}

// Events returns the current round number and a copy of its event log.
// A front end narrating the table keeps the last seen (round, seq) pair
// and renders only newer entries.
func (c *Controller) Events() (int, []game.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room.Round == nil {
		return c.room.RoundNum, nil
	}
	return c.room.RoundNum, append([]game.Event(nil), c.room.Round.Events...)
}

// Winner returns the game winner once the room has finished, or nil.
func (c *Controller) Winner() *game.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room.Winner()
}

// Bet applies a participant's bet.
func (c *Controller) Bet(playerID string, amount int) error {
	return c.apply(func() error { return c.room.Bet(playerID, amount) })
}

// Call applies a participant's call and immediately finalizes it. The
// composite validates up front, so a rejected call applies nothing.
func (c *Controller) Call(playerID string) error {
	return c.apply(func() error { return c.room.CallFinalize(playerID) })
}

// AllIn commits the participant's whole balance and finalizes.
func (c *Controller) AllIn(playerID string) error {
	return c.apply(func() error {
		if err := c.room.AllIn(playerID); err != nil {
			return err
		}
		return c.room.Finalize(playerID)
	})
}

// Finalize locks in the participant's bet.
func (c *Controller) Finalize(playerID string) error {
	return c.apply(func() error { return c.room.Finalize(playerID) })
}

// PlayCard applies a participant's card play.
func (c *Controller) PlayCard(playerID string, card deck.Card) error {
	return c.apply(func() error { return c.room.PlayCard(playerID, card) })
}

// ChoosePosition resolves the participant's position choice.
func (c *Controller) ChoosePosition(playerID string, pos game.Position) error {
	return c.apply(func() error { return c.room.ChoosePosition(playerID, pos) })
}

// apply runs a mutation under the lock and publishes on success.
func (c *Controller) apply(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := fn(); err != nil {
		return err
	}
	c.touch()
	c.publish()
	return nil
}

func (c *Controller) touch() {
	c.lastAction = c.clock.Now()
}

// Step advances at most one automated decision: starting the next round
// after a round ends, answering a pending bot position choice, or taking
// the current bot turn. It reports whether anything was applied. Humans
// act through the action methods, never through Step.
func (c *Controller) Step(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.room.Phase {
	case game.PhaseFinished, game.PhaseLobby, game.PhaseDealing:
		return false, nil

	case game.PhaseRoundEnd:
		winner, err := c.room.StartRound(c.rng)
		if err != nil {
			return false, err
		}
		if winner != nil {
			c.logger.Info("Game over", "winner", winner.Name, "money", winner.Money)
		} else {
			c.logger.Debug("Round started", "round", c.room.RoundNum)
		}
		c.touch()
		c.publish()
		return true, nil
	}

	if pending, chooser := c.room.ChoicePending(); pending {
		agent, ok := c.agents[chooser]
		if !ok {
			return c.maybeForceProgress()
		}
		if err := c.think(ctx); err != nil {
			return false, err
		}
		pos := agent.ChoosePosition(c.snapshotLocked(chooser))
		c.logger.Debug("Bot chose position", "player", chooser, "position", pos)
		if err := c.room.ChoosePosition(chooser, pos); err != nil {
			return false, err
		}
		c.touch()
		c.publish()
		return true, nil
	}

	turn := c.room.TurnPlayerID
	agent, ok := c.agents[turn]
	if !ok {
		return c.maybeForceProgress()
	}

	if err := c.think(ctx); err != nil {
		return false, err
	}

	switch c.room.Phase {
	case game.PhaseBetting:
		return true, c.applyBotBet(turn, agent)
	case game.PhasePlaying:
		card := agent.PlayCard(c.snapshotLocked(turn))
		c.logger.Debug("Bot played card", "player", turn, "card", card, "total", c.room.TableTotal+int(card))
		if err := c.room.PlayCard(turn, card); err != nil {
			return false, err
		}
		c.touch()
		c.publish()
		return true, nil
	}
	return false, nil
}

func (c *Controller) applyBotBet(playerID string, agent Agent) error {
	d := agent.BetAction(c.snapshotLocked(playerID))
	c.logger.Debug("Bot bet action", "player", playerID, "action", d.Action, "amount", d.Amount)

	var err error
	switch d.Action {
	case ai.ActionBet:
		if err = c.room.Bet(playerID, d.Amount); err == nil {
			if agent.FinalizeAfterBet(c.snapshotLocked(playerID)) {
				err = c.room.Finalize(playerID)
			}
		}
	case ai.ActionCall:
		// Calls finalize in the same flow.
		err = c.room.CallFinalize(playerID)
	case ai.ActionAllIn:
		if err = c.room.AllIn(playerID); err == nil {
			err = c.room.Finalize(playerID)
		}
	case ai.ActionFinalize:
		err = c.room.Finalize(playerID)
	}
	if err != nil {
		return err
	}
	c.touch()
	c.publish()
	return nil
}

// maybeForceProgress auto-acts for a stalled human turn when an idle
// timeout is configured. Called with the lock held.
func (c *Controller) maybeForceProgress() (bool, error) {
	if c.idleTimeout <= 0 || c.clock.Since(c.lastAction) < c.idleTimeout {
		return false, nil
	}

	if pending, chooser := c.room.ChoicePending(); pending {
		c.logger.Warn("Forcing stalled position choice", "player", chooser)
		if err := c.room.ChoosePosition(chooser, game.PlayFirst); err != nil {
			return false, err
		}
		c.touch()
		c.publish()
		return true, nil
	}

	turn := c.room.TurnPlayerID
	p := c.room.Player(turn)
	if p == nil {
		return false, nil
	}
	c.logger.Warn("Forcing stalled turn", "player", p.Name, "phase", c.room.Phase)

	var err error
	switch c.room.Phase {
	case game.PhaseBetting:
		// Reach the table minimum if needed, then lock in.
		if c.room.Round.Bets[turn] < game.MinBet && p.Money > 0 {
			if p.Money >= game.MinBet {
				err = c.room.Bet(turn, game.MinBet)
			} else {
				err = c.room.AllIn(turn)
			}
		}
		if err == nil {
			err = c.room.Finalize(turn)
		}
	case game.PhasePlaying:
		low := p.Hand[0]
		for _, card := range p.Hand[1:] {
			if card < low {
				low = card
			}
		}
		err = c.room.PlayCard(turn, low)
	}
	if err != nil {
		return false, err
	}
	c.touch()
	c.publish()
	return true, nil
}

// think waits out the configured bot thinking delay on the injected clock.
// Called with the lock held; a zero delay returns immediately.
func (c *Controller) think(ctx context.Context) error {
	if c.thinkDelay <= 0 {
		return nil
	}
	fired := make(chan struct{})
	t := c.clock.AfterFunc(c.thinkDelay, func() { close(fired) })
	select {
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	case <-fired:
		return nil
	}
}

// TriggerBots schedules one automated step through the single-flight
// guard. Safe to call from any goroutine on any state change; a step
// already in flight absorbs concurrent triggers so the same bot turn is
// never applied twice.
func (c *Controller) TriggerBots(ctx context.Context) error {
	_, err, _ := c.group.Do(c.room.Code, func() (any, error) {
		_, err := c.Step(ctx)
		return nil, err
	})
	return err
}

// Run polls for automated work on the injected clock until the game
// finishes or the context is cancelled. The tick interval is the host's
// bot-turn detection latency; each tick drives at most one decision
// through the single-flight guard.
func (c *Controller) Run(ctx context.Context) (*game.Player, error) {
	for {
		if w := c.Winner(); w != nil {
			return w, nil
		}

		fired := make(chan struct{})
		t := c.clock.AfterFunc(c.tick, func() { close(fired) })
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-fired:
		}

		if err := c.TriggerBots(ctx); err != nil {
			return nil, err
		}
	}
}

// RunToCompletion drives every automated decision back to back with no
// tick waits: bot-only games and tests. Returns ErrStalled if a seat
// without an agent would have to act.
func (c *Controller) RunToCompletion(ctx context.Context) (*game.Player, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if w := c.Winner(); w != nil {
			return w, nil
		}
		progressed, err := c.Step(ctx)
		if err != nil {
			return nil, err
		}
		if !progressed {
			return nil, ErrStalled
		}
	}
}
