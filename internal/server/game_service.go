package server

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/tencount/internal/ai"
	"github.com/lox/tencount/internal/deck"
	"github.com/lox/tencount/internal/game"
	"github.com/lox/tencount/internal/randutil"
	"github.com/lox/tencount/internal/roomcode"
	"github.com/lox/tencount/internal/session"
	"github.com/lox/tencount/internal/store"
)

const (
	// DefaultBuyIn is the stake handed to players who don't name one.
	DefaultBuyIn = 100000

	// botTick is how often a room scans for pending bot turns.
	botTick = 500 * time.Millisecond
)

var botNames = []string{"Ada", "Blaise", "Curie", "Dijkstra", "Erdos", "Fermat", "Gauss", "Hopper"}

// managedRoom ties a controller to its broadcast and lifecycle goroutines.
type managedRoom struct {
	code       string
	controller *session.Controller
	cancel     context.CancelFunc
	botCount   int
	lastRound  int
}

// GameService owns every room on the server: creation, membership, action
// routing and state fan-out to connected clients.
type GameService struct {
	server *Server
	logger *log.Logger
	config *ServerConfig
	store  *store.Store
	clock  quartz.Clock
	seeds  *rand.Rand
	codes  *roomcode.Generator

	mu    sync.RWMutex
	rooms map[string]*managedRoom

	ctx    context.Context
	cancel context.CancelFunc
}

// NewGameService creates the room manager and wires it into the server.
// The seed fixes every room's shuffles and bot decisions for regression
// runs; the clock is mockable in tests.
func NewGameService(server *Server, logger *log.Logger, cfg *ServerConfig, seed int64, clock quartz.Clock) *GameService {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg == nil {
		cfg = DefaultServerConfig()
	}

	gs := &GameService{
		server: server,
		logger: logger.WithPrefix("rooms"),
		config: cfg,
		store:  store.New(logger),
		clock:  clock,
		seeds:  randutil.New(seed),
		codes:  roomcode.NewGenerator(nil),
		rooms:  make(map[string]*managedRoom),
		ctx:    ctx,
		cancel: cancel,
	}
	server.SetGameService(gs)
	return gs
}

// Stop tears down every room.
func (gs *GameService) Stop() {
	gs.cancel()

	gs.mu.Lock()
	defer gs.mu.Unlock()
	for code, mr := range gs.rooms {
		mr.cancel()
		gs.store.DeleteRoom(code)
		delete(gs.rooms, code)
	}
}

// CreateRoom opens a new room with the creator seated as host.
func (gs *GameService) CreateRoom(playerName string, buyIn int) (string, string, error) {
	if playerName == "" {
		return "", "", fmt.Errorf("player name is required")
	}
	if buyIn <= 0 {
		buyIn = gs.config.Room.BuyIn
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	code := gs.codes.Generate()
	for gs.rooms[code] != nil {
		code = gs.codes.Generate()
	}

	opts := []session.Option{
		session.WithStore(gs.store),
		session.WithClock(gs.clock),
		session.WithTick(botTick),
	}
	if gs.config.Room.IdleTimeoutMs > 0 {
		opts = append(opts, session.WithIdleTimeout(time.Duration(gs.config.Room.IdleTimeoutMs)*time.Millisecond))
	}

	room := game.NewRoom(code)
	ctl := session.NewController(room, randutil.New(gs.seeds.Int64()), gs.logger, opts...)

	p, err := ctl.AddPlayer(playerName, buyIn)
	if err != nil {
		return "", "", err
	}

	// Bots declared in config are seated into every new room.
	for _, bc := range gs.config.Bots {
		personality := ai.Balanced
		if bc.Personality != "" {
			var perr error
			if personality, perr = ai.ParsePersonality(bc.Personality); perr != nil {
				return "", "", fmt.Errorf("bot %q: %w", bc.Name, perr)
			}
		}
		botBuyIn := bc.BuyIn
		if botBuyIn <= 0 {
			botBuyIn = gs.config.Room.BuyIn
		}
		if _, err := ctl.AddBot(bc.Name, personality, botBuyIn); err != nil {
			return "", "", err
		}
	}

	ctx, cancel := context.WithCancel(gs.ctx)
	mr := &managedRoom{code: code, controller: ctl, cancel: cancel}
	gs.rooms[code] = mr

	go gs.watchRoom(ctx, mr)
	go gs.runRoom(ctx, mr)

	gs.logger.Info("Room created", "room", code, "host", playerName)
	return code, p.ID, nil
}

// JoinRoom seats a player in an existing room.
func (gs *GameService) JoinRoom(code, playerName string, buyIn int) (string, error) {
	if playerName == "" {
		return "", fmt.Errorf("player name is required")
	}
	if !roomcode.Valid(code) {
		return "", fmt.Errorf("malformed room code: %s", code)
	}
	if buyIn <= 0 {
		buyIn = gs.config.Room.BuyIn
	}

	mr := gs.room(code)
	if mr == nil {
		return "", fmt.Errorf("room not found: %s", code)
	}

	p, err := mr.controller.AddPlayer(playerName, buyIn)
	if err != nil {
		return "", err
	}

	gs.logger.Info("Player joined", "room", code, "player", playerName)
	return p.ID, nil
}

// LeaveRoom removes a player; an emptied room is closed.
func (gs *GameService) LeaveRoom(code, playerID string) {
	mr := gs.room(code)
	if mr == nil {
		return
	}

	mr.controller.Leave(playerID)

	if len(gs.server.RoomConnections(code)) == 0 {
		gs.closeRoom(code)
		return
	}

	// The departure may have handed the turn to a bot.
	go func() { _ = mr.controller.TriggerBots(gs.ctx) }()
}

// AddBot seats a bot. Only the host may add bots.
func (gs *GameService) AddBot(code, requesterID, personality string, buyIn int) (*game.Player, error) {
	mr := gs.room(code)
	if mr == nil {
		return nil, fmt.Errorf("room not found: %s", code)
	}
	if requesterID != mr.controller.HostID() {
		return nil, fmt.Errorf("only the host may add bots")
	}
	if buyIn <= 0 {
		buyIn = gs.config.Room.BuyIn
	}

	p := ai.Balanced
	if personality != "" {
		var err error
		if p, err = ai.ParsePersonality(personality); err != nil {
			return nil, err
		}
	}

	gs.mu.Lock()
	name := fmt.Sprintf("%s (bot)", botNames[mr.botCount%len(botNames)])
	mr.botCount++
	gs.mu.Unlock()

	bot, err := mr.controller.AddBot(name, p, buyIn)
	if err != nil {
		return nil, err
	}

	gs.logger.Info("Bot added", "room", code, "bot", name, "personality", p)
	return bot, nil
}

// SetReady flags a lobby player ready.
func (gs *GameService) SetReady(code, playerID string, ready bool) error {
	mr := gs.room(code)
	if mr == nil {
		return fmt.Errorf("room not found: %s", code)
	}
	return mr.controller.SetReady(playerID, ready)
}

// StartGame deals the first round. Only the host may start.
func (gs *GameService) StartGame(code, playerID string) error {
	mr := gs.room(code)
	if mr == nil {
		return fmt.Errorf("room not found: %s", code)
	}
	if playerID != mr.controller.HostID() {
		return fmt.Errorf("only the host may start the game")
	}

	if err := mr.controller.Begin(); err != nil {
		return err
	}

	gs.logger.Info("Game started", "room", code)
	go func() { _ = mr.controller.TriggerBots(gs.ctx) }()
	return nil
}

// HandleAction routes an in-round decision to the room.
func (gs *GameService) HandleAction(code, playerID string, data PlayerActionData) error {
	mr := gs.room(code)
	if mr == nil {
		return fmt.Errorf("room not found: %s", code)
	}
	ctl := mr.controller

	var err error
	switch data.Action {
	case "bet":
		err = ctl.Bet(playerID, data.Amount)
	case "call":
		err = ctl.Call(playerID)
	case "all_in":
		err = ctl.AllIn(playerID)
	case "finalize":
		err = ctl.Finalize(playerID)
	case "play_card":
		err = ctl.PlayCard(playerID, deck.Card(data.Card))
	case "choose_position":
		switch data.Position {
		case "first":
			err = ctl.ChoosePosition(playerID, game.PlayFirst)
		case "last":
			err = ctl.ChoosePosition(playerID, game.PlayLast)
		default:
			err = fmt.Errorf("unknown position: %s", data.Position)
		}
	default:
		err = fmt.Errorf("unknown action: %s", data.Action)
	}
	if err != nil {
		return err
	}

	// Give any waiting bot its turn without waiting for the next tick.
	go func() { _ = ctl.TriggerBots(gs.ctx) }()
	return nil
}

func (gs *GameService) room(code string) *managedRoom {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.rooms[code]
}

func (gs *GameService) closeRoom(code string) {
	gs.mu.Lock()
	mr := gs.rooms[code]
	delete(gs.rooms, code)
	gs.mu.Unlock()

	if mr == nil {
		return
	}
	mr.cancel()
	gs.store.DeleteRoom(code)
	gs.logger.Info("Room closed", "room", code)
}

// watchRoom fans room state out to clients. The controller publishes every
// applied change into the store; this goroutine coalesces change bursts
// and pushes fresh snapshots.
func (gs *GameService) watchRoom(ctx context.Context, mr *managedRoom) {
	changes, cancel := gs.store.Subscribe(mr.code, 256)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			// One applied action fans out into several record changes;
			// drain the burst and broadcast once.
		drain:
			for {
				select {
				case _, ok := <-changes:
					if !ok {
						break drain
					}
				default:
					break drain
				}
			}
			gs.broadcastState(mr)
		}
	}
}

// runRoom drives bot turns and round transitions until the game finishes.
func (gs *GameService) runRoom(ctx context.Context, mr *managedRoom) {
	winner, err := mr.controller.Run(ctx)
	if err != nil {
		if ctx.Err() == nil {
			gs.logger.Error("Room run loop failed", "room", mr.code, "error", err)
		}
		return
	}

	gs.logger.Info("Game over", "room", mr.code, "winner", winner.Name, "money", winner.Money)

	msg, err := NewMessage(MessageTypeGameOver, GameOverData{
		WinnerID:   winner.ID,
		WinnerName: winner.Name,
		Money:      winner.Money,
	})
	if err != nil {
		gs.logger.Error("Failed to create game over message", "error", err)
		return
	}
	gs.server.BroadcastToRoom(mr.code, msg)
}

// broadcastState sends the shared room state to everyone and each
// player's private hand to them alone.
func (gs *GameService) broadcastState(mr *managedRoom) {
	ctl := mr.controller

	public := ctl.Snapshot("")
	msg, err := NewMessage(MessageTypeRoomState, RoomStateFromSnapshot(public))
	if err != nil {
		gs.logger.Error("Failed to create room state message", "error", err)
		return
	}
	gs.server.BroadcastToRoom(mr.code, msg)

	if res := ctl.LastResult(); res != nil && res.RoundNum > mr.lastRound {
		mr.lastRound = res.RoundNum
		gs.broadcastRoundResult(mr.code, res)
	}

	for _, playerID := range gs.server.RoomConnections(mr.code) {
		snap := ctl.Snapshot(playerID)
		if len(snap.Hand) == 0 {
			continue
		}
		handMsg, err := NewMessage(MessageTypeHand, HandFromSnapshot(snap))
		if err != nil {
			gs.logger.Error("Failed to create hand message", "error", err)
			continue
		}
		_ = gs.server.SendToPlayer(playerID, handMsg)
	}
}

func (gs *GameService) broadcastRoundResult(code string, res *game.RoundResult) {
	data := RoundResultData{Round: res.RoundNum, BustedID: res.BustedID}
	for _, share := range res.Shares {
		data.Shares = append(data.Shares, ShareData{PlayerID: share.PlayerID, Amount: share.Amount})
	}

	msg, err := NewMessage(MessageTypeRoundResult, data)
	if err != nil {
		gs.logger.Error("Failed to create round result message", "error", err)
		return
	}
	gs.server.BroadcastToRoom(code, msg)
}
