package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack/internal/game"
)

// Connection is one player's websocket session. Each connection owns a
// private Game; nothing is shared between players.
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	game        *game.Game
	formatter   *game.EventFormatter
	unsubscribe func()
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
	sendMu      sync.RWMutex
	closed      bool
	standing    sync.WaitGroup
}

// NewConnection creates a new connection wrapper around a fresh game
func NewConnection(conn *websocket.Conn, logger *log.Logger, g *game.Game) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Connection{
		conn:      conn,
		send:      make(chan *Message, 256),
		game:      g,
		formatter: game.NewEventFormatter(game.FormattingOptions{}),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
	c.unsubscribe = g.Events().Subscribe(game.SubscriberFunc(c.forwardEvent))
	return c
}

// Start begins handling the connection and sends the initial state
func (c *Connection) Start() {
	c.sendState("")
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.unsubscribe()
		c.cancel()

		c.sendMu.Lock()
		c.closed = true
		close(c.send)
		c.sendMu.Unlock()

		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		go func() { _ = c.Close() }()
		return ErrConnectionClosed
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		c.standing.Wait()
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
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
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "requestId", msg.RequestID)

	switch msg.Type {
	case MessageTypeCommand:
		var data CommandData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg.RequestID, "invalid_message", "Failed to parse command data")
			return
		}
		c.handleCommand(msg.RequestID, data)

	default:
		c.sendError(msg.RequestID, "unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleCommand(requestID string, data CommandData) {
	var err error
	switch strings.ToLower(data.Command) {
	case "bet", "place_bet":
		err = c.game.PlaceBet(data.Amount)
	case "unbet", "remove_bet":
		err = c.game.RemoveBet(data.Amount)
	case "deal":
		err = c.game.Deal()
	case "hit":
		err = c.game.Hit()
	case "stand":
		c.stand(requestID)
		return
	case "new", "new_hand":
		err = c.game.NewHand()
	case "reset", "reset_game":
		err = c.game.ResetGame()
	case "state":
	default:
		c.sendError(requestID, "unknown_command", "Unknown command: "+data.Command)
		return
	}

	if err != nil {
		c.commandFailed(requestID, data.Command, err)
		return
	}
	c.sendState(requestID)
}

// stand plays the dealer turn in the background so the connection keeps
// reading; commands that arrive meanwhile are rejected by the game.
func (c *Connection) stand(requestID string) {
	c.standing.Add(1)
	go func() {
		defer c.standing.Done()
		if err := c.game.Stand(); err != nil {
			c.commandFailed(requestID, "stand", err)
			return
		}
		c.sendState(requestID)
	}()
}

func (c *Connection) commandFailed(requestID, command string, err error) {
	code := "command_failed"
	switch {
	case errors.Is(err, game.ErrDealerTurnInProgress):
		code = "dealer_turn"
	case errors.Is(err, game.ErrInvalidCommand):
		code = "invalid_command"
	case errors.Is(err, game.ErrShoeExhausted):
		code = "shoe_exhausted"
	}
	c.logger.Warn("Command rejected", "command", command, "code", code, "error", err)
	c.sendError(requestID, code, err.Error())
}

func (c *Connection) forwardEvent(event game.GameEvent) {
	text := c.formatter.Format(event)
	if text == "" {
		return
	}
	msg, err := NewMessage(MessageTypeEvent, EventData{Event: event.EventType(), Message: text})
	if err != nil {
		c.logger.Error("Failed to create event message", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) sendState(requestID string) {
	msg, err := NewMessage(MessageTypeState, StateDataFromGame(c.game.State(), c.game.StartingBalance()))
	if err != nil {
		c.logger.Error("Failed to create state message", "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.SendMessage(msg)
}

// sendError sends an error message to the client
func (c *Connection) sendError(requestID, code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	errorMsg.RequestID = requestID

	_ = c.SendMessage(errorMsg)
}
