package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants used by the client-server protocol.
const (
	// Client to server messages
	MessageTypeCreateRoom   MessageType = "create_room"
	MessageTypeJoinRoom     MessageType = "join_room"
	MessageTypeLeaveRoom    MessageType = "leave_room"
	MessageTypeAddBot       MessageType = "add_bot"
	MessageTypeReady        MessageType = "ready"
	MessageTypeStartGame    MessageType = "start_game"
	MessageTypePlayerAction MessageType = "player_action"

	// Server to client messages
	MessageTypeRoomCreated MessageType = "room_created"
	MessageTypeRoomJoined  MessageType = "room_joined"
	MessageTypeRoomLeft    MessageType = "room_left"
	MessageTypeBotAdded    MessageType = "bot_added"
	MessageTypeRoomState   MessageType = "room_state"
	MessageTypeHand        MessageType = "hand"
	MessageTypeRoundResult MessageType = "round_result"
	MessageTypeGameOver    MessageType = "game_over"
	MessageTypeError       MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
