package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	playerID    string
	roomCode    string
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	gameService *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn"),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// The send channel closes during shutdown.
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetRoom associates this connection with a room
func (c *Connection) SetRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
}

// GetRoom returns the associated room code
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case MessageTypeCreateRoom:
		var data CreateRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create room data")
			return
		}
		c.handleCreateRoom(data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeLeaveRoom:
		c.handleLeaveRoom()

	case MessageTypeAddBot:
		var data AddBotData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse add bot data")
			return
		}
		c.handleAddBot(data)

	case MessageTypeReady:
		var data ReadyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse ready data")
			return
		}
		c.handleReady(data)

	case MessageTypeStartGame:
		c.handleStartGame()

	case MessageTypePlayerAction:
		var data PlayerActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse player action data")
			return
		}
		c.handlePlayerAction(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleCreateRoom(data CreateRoomData) {
	code, playerID, err := c.gameService.CreateRoom(data.PlayerName, data.BuyIn)
	if err != nil {
		c.sendError("create_room_failed", err.Error())
		return
	}

	c.SetPlayer(playerID)
	c.SetRoom(code)
	c.reply(MessageTypeRoomCreated, RoomCreatedData{RoomCode: code, PlayerID: playerID})
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	playerID, err := c.gameService.JoinRoom(data.RoomCode, data.PlayerName, data.BuyIn)
	if err != nil {
		c.sendError("join_room_failed", err.Error())
		return
	}

	c.SetPlayer(playerID)
	c.SetRoom(data.RoomCode)
	c.reply(MessageTypeRoomJoined, RoomJoinedData{RoomCode: data.RoomCode, PlayerID: playerID})
}

func (c *Connection) handleLeaveRoom() {
	code, playerID := c.GetRoom(), c.GetPlayer()
	if code == "" || playerID == "" {
		c.sendError("not_in_room", "Join a room first")
		return
	}

	c.gameService.LeaveRoom(code, playerID)
	c.SetRoom("")
	c.SetPlayer("")
	c.reply(MessageTypeRoomLeft, LeaveRoomData{RoomCode: code})
}

func (c *Connection) handleAddBot(data AddBotData) {
	code, playerID := c.GetRoom(), c.GetPlayer()
	if code == "" || playerID == "" {
		c.sendError("not_in_room", "Join a room first")
		return
	}

	bot, err := c.gameService.AddBot(code, playerID, data.Personality, data.BuyIn)
	if err != nil {
		c.sendError("add_bot_failed", err.Error())
		return
	}
	c.reply(MessageTypeBotAdded, BotAddedData{PlayerID: bot.ID, Name: bot.Name, Personality: data.Personality})
}

func (c *Connection) handleReady(data ReadyData) {
	code, playerID := c.GetRoom(), c.GetPlayer()
	if code == "" || playerID == "" {
		c.sendError("not_in_room", "Join a room first")
		return
	}

	if err := c.gameService.SetReady(code, playerID, data.Ready); err != nil {
		c.sendError("ready_failed", err.Error())
	}
}

func (c *Connection) handleStartGame() {
	code, playerID := c.GetRoom(), c.GetPlayer()
	if code == "" || playerID == "" {
		c.sendError("not_in_room", "Join a room first")
		return
	}

	if err := c.gameService.StartGame(code, playerID); err != nil {
		c.sendError("start_failed", err.Error())
	}
}

func (c *Connection) handlePlayerAction(data PlayerActionData) {
	code, playerID := c.GetRoom(), c.GetPlayer()
	if code == "" || playerID == "" {
		c.sendError("not_in_room", "Join a room first")
		return
	}

	if err := c.gameService.HandleAction(code, playerID, data); err != nil {
		c.sendError("action_rejected", err.Error())
	}
}

func (c *Connection) reply(messageType MessageType, data interface{}) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(errorMsg)
}
