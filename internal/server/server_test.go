package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/shoe"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func startTestServer(t *testing.T, opts ...game.Option) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer("", quietLogger(), opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Stop()
		ts.Close()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &testClient{t: t, conn: conn}
}

func (c *testClient) send(command string, amount int) {
	c.t.Helper()
	msg, err := NewMessage(MessageTypeCommand, CommandData{Command: command, Amount: amount})
	require.NoError(c.t, err)
	msg.RequestID = command
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *testClient) read() *Message {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return &msg
}

// readUntil discards messages until one of the given type arrives
func (c *testClient) readUntil(typ MessageType) *Message {
	c.t.Helper()
	for {
		if msg := c.read(); msg.Type == typ {
			return msg
		}
	}
}

func (c *testClient) state() StateData {
	c.t.Helper()
	var data StateData
	require.NoError(c.t, json.Unmarshal(c.readUntil(MessageTypeState).Data, &data))
	return data
}

func (c *testClient) errorData() ErrorData {
	c.t.Helper()
	var data ErrorData
	require.NoError(c.t, json.Unmarshal(c.readUntil(MessageTypeError).Data, &data))
	return data
}

func TestHealth(t *testing.T) {
	_, ts := startTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestPlayRoundOverWebsocket(t *testing.T) {
	_, ts := startTestServer(t, game.WithDrawer(shoe.NewStacked(deck.MustParseCodes("0S 6H 9D 7C 2H")...)))
	client := dial(t, ts)

	initial := client.state()
	assert.Equal(t, game.PhaseBetting, initial.Phase)
	assert.Equal(t, 2500, initial.Balance)
	assert.Equal(t, 2500, initial.StartingBalance)
	assert.Equal(t, []string{"bet", "reset"}, initial.Actions)
	assert.NotNil(t, initial.PlayerHand)

	client.send("bet", 100)
	event := client.readUntil(MessageTypeEvent)
	var eventData EventData
	require.NoError(t, json.Unmarshal(event.Data, &eventData))
	assert.Equal(t, game.EventTypeBetChange, eventData.Event)
	assert.Contains(t, eventData.Message, "bet $100")

	s := client.state()
	assert.Equal(t, 100, s.Bet)
	assert.Equal(t, []string{"bet", "unbet", "deal", "reset"}, s.Actions)

	client.send("deal", 0)
	s = client.state()
	assert.Equal(t, game.PhasePlayerTurn, s.Phase)
	assert.Len(t, s.PlayerHand, 2)
	require.Len(t, s.DealerHand, 1, "hole card is not sent")
	assert.Equal(t, 1, s.DealerHidden)
	assert.Equal(t, "9D", s.DealerHand[0].Code())
	assert.Equal(t, 9, s.DealerTotal.Optimal)
	assert.Equal(t, 16, s.PlayerTotal.Optimal)

	client.send("hit", 0)
	s = client.state()
	assert.Len(t, s.PlayerHand, 3)
	assert.Equal(t, 18, s.PlayerTotal.Optimal)

	client.send("stand", 0)
	s = client.state()
	assert.Equal(t, game.PhaseRoundOver, s.Phase)
	assert.Equal(t, game.OutcomePlayerWins, s.Outcome, "18 beats a dealer stuck on 16 with an empty shoe")
	assert.Equal(t, 2700, s.Balance)
	assert.Len(t, s.DealerHand, 2)
	assert.Zero(t, s.DealerHidden)
	assert.Equal(t, []string{"new_hand", "reset"}, s.Actions)

	client.send("new", 0)
	s = client.state()
	assert.Equal(t, game.PhaseBetting, s.Phase)
	assert.Equal(t, 0, s.Bet)
}

func TestRejectedCommands(t *testing.T) {
	_, ts := startTestServer(t)
	client := dial(t, ts)
	client.state()

	client.send("hit", 0)
	errData := client.errorData()
	assert.Equal(t, "invalid_command", errData.Code)
	assert.Contains(t, errData.Message, "hit rejected during betting")

	client.send("bet", 5000)
	assert.Equal(t, "invalid_command", client.errorData().Code)

	client.send("double", 0)
	assert.Equal(t, "unknown_command", client.errorData().Code)

	require.NoError(t, client.conn.WriteJSON(Message{Type: "chat", Data: json.RawMessage(`{}`)}))
	assert.Equal(t, "unknown_message_type", client.errorData().Code)

	require.NoError(t, client.conn.WriteJSON(Message{Type: MessageTypeCommand, Data: json.RawMessage(`"bet"`)}))
	assert.Equal(t, "invalid_message", client.errorData().Code)

	client.send("state", 0)
	assert.Equal(t, 0, client.state().Bet, "rejected commands do not change the game")
}

func TestConnectionsHaveSeparateGames(t *testing.T) {
	srv, ts := startTestServer(t)
	a := dial(t, ts)
	b := dial(t, ts)
	a.state()
	b.state()

	a.send("bet", 500)
	assert.Equal(t, 500, a.state().Bet)

	b.send("state", 0)
	assert.Equal(t, 0, b.state().Bet)

	require.Eventually(t, func() bool { return srv.ConnectionCount() == 2 }, time.Second, 10*time.Millisecond)
}

func TestCommandsRejectedDuringDealerTurn(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const delay = time.Second
	mockClock := quartz.NewMock(t)
	_, ts := startTestServer(t,
		game.WithDrawer(shoe.NewStacked(deck.MustParseCodes("0S 8H 0D 2C 2H 2S 5D")...)),
		game.WithClock(mockClock),
		game.WithStepDelay(delay),
	)
	client := dial(t, ts)
	client.state()

	client.send("bet", 100)
	client.state()
	client.send("deal", 0)
	client.state()

	// the reveal is published once the dealer pauses after the first draw
	client.send("stand", 0)
	for {
		msg := client.readUntil(MessageTypeEvent)
		var data EventData
		require.NoError(t, json.Unmarshal(msg.Data, &data))
		if data.Event == game.EventTypeDealerDecision && strings.Contains(data.Message, "reveals") {
			break
		}
	}

	client.send("hit", 0)
	assert.Equal(t, "dealer_turn", client.errorData().Code)

	_ = client.conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	messages := make(chan *Message, 64)
	go func() {
		for {
			var msg Message
			if err := client.conn.ReadJSON(&msg); err != nil {
				close(messages)
				return
			}
			messages <- &msg
		}
	}()

	for {
		select {
		case msg, ok := <-messages:
			require.True(t, ok, "connection closed before the round finished")
			if msg.Type != MessageTypeState {
				continue
			}
			var s StateData
			require.NoError(t, json.Unmarshal(msg.Data, &s))
			assert.Equal(t, game.PhaseRoundOver, s.Phase)
			assert.Equal(t, game.OutcomeDealerWins, s.Outcome)
			assert.Equal(t, "stand", msg.RequestID)
			return
		case <-ctx.Done():
			t.Fatal("dealer turn did not finish")
		default:
			mockClock.Advance(delay).MustWait(ctx)
			time.Sleep(time.Millisecond)
		}
	}
}

func TestStopClosesConnections(t *testing.T) {
	srv, ts := startTestServer(t)
	client := dial(t, ts)
	client.state()

	require.Eventually(t, func() bool { return srv.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, srv.Stop())

	_ = client.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := client.conn.ReadMessage()
	assert.Error(t, err)
}
