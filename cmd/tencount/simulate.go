package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/tencount/internal/ai"
	"github.com/lox/tencount/internal/game"
	"github.com/lox/tencount/internal/randutil"
	"github.com/lox/tencount/internal/session"
)

// SimulateCmd runs bot-only games and tallies wins per personality
type SimulateCmd struct {
	Games   int    `default:"100" help:"Number of games to run"`
	Workers int    `default:"4" help:"Concurrent games"`
	BuyIn   int    `default:"1000" help:"Starting money in dollars"`
	Seed    *int64 `help:"Deterministic RNG seed (optional)"`
	Rounds  bool   `help:"Report round counts as well as wins"`
}

type simResult struct {
	winner ai.Personality
	rounds int
}

func (c *SimulateCmd) Run() error {
	if c.Games < 1 {
		return fmt.Errorf("games must be positive, got %d", c.Games)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}

	logger := log.New(os.Stderr)
	logger.SetLevel(log.WarnLevel)

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	seeds := randutil.New(seed)

	// Every game gets its own seed up front so results don't depend on
	// worker scheduling.
	gameSeeds := make([]int64, c.Games)
	for i := range gameSeeds {
		gameSeeds[i] = seeds.Int64()
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(c.Workers)
	results := make([]simResult, c.Games)

	start := time.Now()
	for i := 0; i < c.Games; i++ {
		g.Go(func() error {
			res, err := c.runGame(ctx, logger, gameSeeds[i])
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	wins := make(map[ai.Personality]int)
	totalRounds := 0
	for _, res := range results {
		wins[res.winner]++
		totalRounds += res.rounds
	}

	fmt.Printf("Ran %d games in %s (seed %d)\n\n", c.Games, elapsed.Round(time.Millisecond), seed)

	type standing struct {
		personality ai.Personality
		wins        int
	}
	standings := make([]standing, 0, len(wins))
	for p, w := range wins {
		standings = append(standings, standing{p, w})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].wins != standings[j].wins {
			return standings[i].wins > standings[j].wins
		}
		return standings[i].personality < standings[j].personality
	})

	for _, s := range standings {
		fmt.Printf("%-12s %4d wins (%.1f%%)\n", s.personality, s.wins, 100*float64(s.wins)/float64(c.Games))
	}
	if c.Rounds {
		fmt.Printf("\nAverage game length: %.1f rounds\n", float64(totalRounds)/float64(c.Games))
	}
	return nil
}

// runGame plays one full game with one bot of each personality plus a
// second balanced seat, and reports the winning personality.
func (c *SimulateCmd) runGame(ctx context.Context, logger *log.Logger, seed int64) (simResult, error) {
	room := game.NewRoom(fmt.Sprintf("SIM%d", seed%100000))
	ctl := session.NewController(room, randutil.New(seed), logger)

	buyIn := c.BuyIn * 100
	seats := []ai.Personality{ai.Cautious, ai.Balanced, ai.Aggressive, ai.Balanced}
	botsByID := make(map[string]ai.Personality, len(seats))
	for i, p := range seats {
		bot, err := ctl.AddBot(fmt.Sprintf("%s-%d", p, i), p, buyIn)
		if err != nil {
			return simResult{}, err
		}
		botsByID[bot.ID] = p
	}

	if err := ctl.Begin(); err != nil {
		return simResult{}, err
	}
	winner, err := ctl.RunToCompletion(ctx)
	if err != nil {
		return simResult{}, err
	}

	round, _ := ctl.Events()
	return simResult{winner: botsByID[winner.ID], rounds: round}, nil
}
