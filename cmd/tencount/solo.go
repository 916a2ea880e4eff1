package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/tencount/internal/ai"
	"github.com/lox/tencount/internal/deck"
	"github.com/lox/tencount/internal/display"
	"github.com/lox/tencount/internal/game"
	"github.com/lox/tencount/internal/randutil"
	"github.com/lox/tencount/internal/session"
)

// SoloCmd runs a terminal game against bots
type SoloCmd struct {
	Name          string   `default:"You" help:"Your display name"`
	Bots          int      `default:"3" help:"Number of bot opponents (1-3)"`
	Personalities []string `help:"Bot personalities in seat order (cautious, balanced, aggressive)"`
	BuyIn         int      `default:"1000" help:"Starting money in dollars"`
	Seed          *int64   `help:"Deterministic RNG seed (optional)"`
	Debug         bool     `help:"Enable debug logging"`
}

var soloPersonalities = []ai.Personality{ai.Balanced, ai.Cautious, ai.Aggressive}

func (c *SoloCmd) Run() error {
	if c.Bots < 1 || c.Bots > 3 {
		return fmt.Errorf("bots must be between 1 and 3, got %d", c.Bots)
	}

	logger := log.New(os.Stderr)
	logger.SetLevel(log.WarnLevel)
	if c.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}

	room := game.NewRoom("SOLO")
	ctl := session.NewController(room, randutil.New(seed), logger)

	buyIn := c.BuyIn * 100
	human, err := ctl.AddPlayer(c.Name, buyIn)
	if err != nil {
		return err
	}

	d := display.New(os.Stdout)
	agent := newPromptAgent(os.Stdin, os.Stdout, d)
	ctl.RegisterAgent(human.ID, agent)

	for i := 0; i < c.Bots; i++ {
		p := soloPersonalities[i%len(soloPersonalities)]
		if i < len(c.Personalities) {
			if p, err = ai.ParsePersonality(c.Personalities[i]); err != nil {
				return err
			}
		}
		name := fmt.Sprintf("%s (bot)", capitalize(p.String()))
		if _, err := ctl.AddBot(name, p, buyIn); err != nil {
			return err
		}
	}

	if err := ctl.SetReady(human.ID, true); err != nil {
		return err
	}
	if err := ctl.Begin(); err != nil {
		return err
	}

	return c.gameLoop(ctl, d, agent)
}

// gameLoop drives decisions one at a time, narrating new events between
// steps. The human's decisions come through the prompt agent; bot
// validation errors abort, human mistakes re-prompt.
func (c *SoloCmd) gameLoop(ctl *session.Controller, d *display.TableDisplay, agent *promptAgent) error {
	ctx := context.Background()
	lastRound, lastSeq := 0, 0

	narrate := func() {
		round, events := ctl.Events()
		if round != lastRound {
			lastRound, lastSeq = round, 0
		}
		for _, e := range events {
			if e.Seq <= lastSeq {
				continue
			}
			lastSeq = e.Seq
			c.showEvent(ctl, d, e)
		}
	}
	narrate()

	for {
		if w := ctl.Winner(); w != nil {
			narrate()
			d.ShowGameOver(w.Name, w.Money)
			d.ShowStandings(ctl.Snapshot(""))
			return nil
		}

		_, err := ctl.Step(ctx)
		if err != nil {
			if game.IsValidation(err) && !agent.eof {
				fmt.Fprintf(os.Stdout, "Invalid move: %v\n", err)
				continue
			}
			return err
		}
		narrate()
	}
}

func (c *SoloCmd) showEvent(ctl *session.Controller, d *display.TableDisplay, e game.Event) {
	snap := ctl.Snapshot("")
	nameOf := func(id string) string {
		for _, p := range snap.Players {
			if p.ID == id {
				return p.Name
			}
		}
		return id
	}

	switch e.Type {
	case game.EventRoundStart:
		d.ShowRoundHeader(snap.RoundNum)
		d.ShowTable(snap)
	case game.EventBet, game.EventCall, game.EventAllIn, game.EventFinalize:
		d.ShowAction(nameOf(e.PlayerID), string(e.Type), e.Amount)
	case game.EventPositionChosen:
		d.ShowPositionChoice(nameOf(e.PlayerID), game.Position(e.Amount))
	case game.EventCardPlayed:
		d.ShowCardPlayed(nameOf(e.PlayerID), e.Card, e.Total)
	case game.EventBust, game.EventPotShare, game.EventRoundEnd:
		if e.Type == game.EventRoundEnd {
			if res := ctl.LastResult(); res != nil {
				d.ShowRoundResult(res, nameOf)
			}
		}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// promptAgent reads the human's decisions from the terminal.
type promptAgent struct {
	in  *bufio.Scanner
	out io.Writer
	d   *display.TableDisplay
	eof bool
}

func newPromptAgent(in io.Reader, out io.Writer, d *display.TableDisplay) *promptAgent {
	return &promptAgent{in: bufio.NewScanner(in), out: out, d: d}
}

func (a *promptAgent) readLine(prompt string) string {
	fmt.Fprint(a.out, prompt)
	if !a.in.Scan() {
		a.eof = true
		return ""
	}
	return strings.TrimSpace(strings.ToLower(a.in.Text()))
}

func (a *promptAgent) BetAction(snap session.Snapshot) ai.Decision {
	fmt.Fprintln(a.out)
	a.d.ShowTable(snap)
	a.d.ShowHand(snap)

	for {
		line := a.readLine("Your move (bet 100|200|500, call, allin, lock): ")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			// EOF plays safe: match the table and lock in.
			return ai.Decision{Action: ai.ActionCall}
		}

		switch fields[0] {
		case "bet":
			if len(fields) != 2 {
				fmt.Fprintln(a.out, "Usage: bet <amount>")
				continue
			}
			dollars, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintln(a.out, "Amount must be a number")
				continue
			}
			return ai.Decision{Action: ai.ActionBet, Amount: dollars * 100}
		case "call":
			return ai.Decision{Action: ai.ActionCall}
		case "allin":
			return ai.Decision{Action: ai.ActionAllIn}
		case "lock":
			return ai.Decision{Action: ai.ActionFinalize}
		default:
			fmt.Fprintf(a.out, "Unknown move: %s\n", fields[0])
		}
	}
}

func (a *promptAgent) FinalizeAfterBet(snap session.Snapshot) bool {
	line := a.readLine("Lock your bet in? [y/N]: ")
	return line == "y" || line == "yes"
}

func (a *promptAgent) PlayCard(snap session.Snapshot) deck.Card {
	fmt.Fprintln(a.out)
	a.d.ShowTable(snap)
	a.d.ShowHand(snap)

	for {
		line := a.readLine("Play which card?: ")
		if line == "" {
			// EOF plays the lowest card.
			return snap.Hand[0]
		}
		value, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(a.out, "Card must be a number")
			continue
		}
		for _, card := range snap.Hand {
			if int(card) == value {
				return card
			}
		}
		fmt.Fprintf(a.out, "You don't hold a %d\n", value)
	}
}

func (a *promptAgent) ChoosePosition(snap session.Snapshot) game.Position {
	for {
		line := a.readLine("You bet the most. Play first or last?: ")
		switch line {
		case "", "first", "f":
			return game.PlayFirst
		case "last", "l":
			return game.PlayLast
		}
		fmt.Fprintln(a.out, "Answer first or last")
	}
}
