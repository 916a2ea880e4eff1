package server

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/tencount/internal/roomcode"
	"github.com/lox/tencount/internal/session"
)

func newTestService(t *testing.T) *GameService {
	t.Helper()
	logger := log.New(io.Discard)
	srv := NewServer("127.0.0.1:0", logger)
	gs := NewGameService(srv, logger, nil, 42, quartz.NewReal())
	t.Cleanup(gs.Stop)
	return gs
}

func TestCreateRoomSeatsHost(t *testing.T) {
	gs := newTestService(t)

	code, playerID, err := gs.CreateRoom("dave", 0)
	require.NoError(t, err)
	assert.True(t, roomcode.Valid(code))
	require.NotEmpty(t, playerID)

	mr := gs.room(code)
	require.NotNil(t, mr)
	assert.Equal(t, playerID, mr.controller.HostID())

	snap := mr.controller.Snapshot(playerID)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, DefaultBuyIn, snap.Players[0].Money)
}

func TestCreateRoomRequiresName(t *testing.T) {
	gs := newTestService(t)
	_, _, err := gs.CreateRoom("", 0)
	require.Error(t, err)
}

func TestJoinRoomValidation(t *testing.T) {
	gs := newTestService(t)

	_, err := gs.JoinRoom("nope", "erin", 0)
	require.Error(t, err, "lowercase codes are malformed")

	_, err = gs.JoinRoom("ZZZZZZ", "erin", 0)
	require.Error(t, err, "well-formed but unknown codes miss")

	code, _, err := gs.CreateRoom("dave", 0)
	require.NoError(t, err)

	joinerID, err := gs.JoinRoom(code, "erin", 50000)
	require.NoError(t, err)
	require.NotEmpty(t, joinerID)

	snap := gs.room(code).controller.Snapshot(joinerID)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, 50000, snap.Balance)
}

func TestAddBotIsHostOnly(t *testing.T) {
	gs := newTestService(t)

	code, hostID, err := gs.CreateRoom("dave", 0)
	require.NoError(t, err)
	joinerID, err := gs.JoinRoom(code, "erin", 0)
	require.NoError(t, err)

	_, err = gs.AddBot(code, joinerID, "balanced", 0)
	require.Error(t, err)

	bot, err := gs.AddBot(code, hostID, "aggressive", 0)
	require.NoError(t, err)
	assert.True(t, bot.Bot)
	assert.True(t, bot.Ready)

	_, err = gs.AddBot(code, hostID, "reckless", 0)
	require.Error(t, err, "unknown personalities are rejected")
}

func TestStartGameFlow(t *testing.T) {
	gs := newTestService(t)

	code, hostID, err := gs.CreateRoom("dave", 0)
	require.NoError(t, err)
	_, err = gs.AddBot(code, hostID, "", 0)
	require.NoError(t, err)
	_, err = gs.AddBot(code, hostID, "cautious", 0)
	require.NoError(t, err)

	require.ErrorIs(t, gs.StartGame(code, hostID), session.ErrNotReady)

	require.NoError(t, gs.SetReady(code, hostID, true))

	joinerErr := gs.StartGame(code, "not-the-host")
	require.Error(t, joinerErr)

	require.NoError(t, gs.StartGame(code, hostID))
}

func TestHandleActionRejectsUnknown(t *testing.T) {
	gs := newTestService(t)

	code, hostID, err := gs.CreateRoom("dave", 0)
	require.NoError(t, err)

	err = gs.HandleAction(code, hostID, PlayerActionData{Action: "fold"})
	require.Error(t, err)

	err = gs.HandleAction(code, hostID, PlayerActionData{Action: "choose_position", Position: "middle"})
	require.Error(t, err)

	err = gs.HandleAction("ZZZZZZ", hostID, PlayerActionData{Action: "call"})
	require.Error(t, err)
}

func TestLeaveRoomClosesEmptyRoom(t *testing.T) {
	gs := newTestService(t)

	code, hostID, err := gs.CreateRoom("dave", 0)
	require.NoError(t, err)

	// No websocket connections exist in this test, so the host leaving
	// empties the room.
	gs.LeaveRoom(code, hostID)
	assert.Nil(t, gs.room(code))
}
