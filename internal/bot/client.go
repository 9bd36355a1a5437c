package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/brandonr49/board-game-engine/pkg/battleline"
)

// WSEvent mirrors handler.WSEvent for client-side decoding.
type WSEvent struct {
	Type    string         `json:"type"`
	MatchID string         `json:"match_id"`
	Data    map[string]any `json:"data"`
}

// RemoteMatch is the subset of a match record the client reads.
type RemoteMatch struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Winner string `json:"winner"`
}

// SubmitResult mirrors service.SubmitResult.
type SubmitResult struct {
	Log      []string             `json:"log"`
	Phase    battleline.PhaseInfo `json:"phase"`
	GameOver bool                 `json:"game_over"`
}

// Client is an HTTP+WebSocket client for one remote player.
type Client struct {
	name     string
	baseURL  string
	token    string
	userID   string
	wsConn   *websocket.Conn
	events   chan WSEvent
	httpC    *http.Client
	mu       sync.Mutex
	closedWS bool
}

// NewClient creates a client targeting the given server URL.
func NewClient(name, baseURL string) *Client {
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		events:  make(chan WSEvent, 64),
		httpC:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the player name.
func (c *Client) Name() string { return c.name }

// UserID returns the player's user ID after login.
func (c *Client) UserID() string { return c.userID }

// Login creates a user through the dev login endpoint and keeps its token.
func (c *Client) Login(ctx context.Context) error {
	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/dev-login", map[string]string{"display_name": c.name}, &resp); err != nil {
		return fmt.Errorf("dev login: %w", err)
	}
	c.token = resp.Tokens.AccessToken
	c.userID = resp.User.ID
	log.Debug().Str("player", c.name).Str("userId", c.userID).Msg("Logged in")
	return nil
}

// CreateMatch starts a match against another user and returns its ID.
func (c *Client) CreateMatch(ctx context.Context, opponentID string) (string, error) {
	var m RemoteMatch
	if err := c.do(ctx, http.MethodPost, "/api/v1/matches", map[string]string{"opponent_id": opponentID}, &m); err != nil {
		return "", err
	}
	return m.ID, nil
}

// GetMatch fetches the match view and returns the match record part.
func (c *Client) GetMatch(ctx context.Context, matchID string) (*RemoteMatch, error) {
	var view struct {
		Match RemoteMatch `json:"match"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/matches/"+matchID, nil, &view); err != nil {
		return nil, err
	}
	return &view.Match, nil
}

// ValidActions lists what this player may do now. Empty when it is not
// their turn.
func (c *Client) ValidActions(ctx context.Context, matchID string) ([]battleline.ActionInput, error) {
	var actions []battleline.ActionInput
	err := c.do(ctx, http.MethodGet, "/api/v1/matches/"+matchID+"/actions", nil, &actions)
	return actions, err
}

// Submit sends one action.
func (c *Client) Submit(ctx context.Context, matchID string, in battleline.ActionInput) (*SubmitResult, error) {
	var res SubmitResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/matches/"+matchID+"/actions", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ConnectWS opens a WebSocket connection and starts listening for events.
func (c *Client) ConnectWS(ctx context.Context) error {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/api/v1/ws?token=" + url.QueryEscape(c.token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("ws dial: %w", err)
	}
	c.wsConn = conn

	go c.readWSLoop()
	return nil
}

// SubscribeMatch asks the server to push events for a match.
func (c *Client) SubscribeMatch(matchID string) error {
	msg := map[string]string{"action": "subscribe", "match_id": matchID}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wsConn.WriteJSON(msg)
}

// Events returns the channel of incoming WebSocket events.
func (c *Client) Events() <-chan WSEvent { return c.events }

// CloseWS closes the WebSocket connection.
func (c *Client) CloseWS() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wsConn != nil && !c.closedWS {
		c.closedWS = true
		c.wsConn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.wsConn.Close()
	}
}

func (c *Client) readWSLoop() {
	defer close(c.events)
	for {
		_, msg, err := c.wsConn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closedWS
			c.mu.Unlock()
			if !closed {
				log.Debug().Err(err).Str("player", c.name).Msg("WS read error")
			}
			return
		}
		// The server may batch several events into one frame.
		for _, line := range bytes.Split(msg, []byte("\n")) {
			var event WSEvent
			if err := json.Unmarshal(line, &event); err != nil {
				continue
			}
			select {
			case c.events <- event:
			default:
				log.Debug().Str("player", c.name).Str("type", event.Type).Msg("Event buffer full, dropping")
			}
		}
	}
}

// do sends a JSON request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpC.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is returned for HTTP responses with an error status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}
