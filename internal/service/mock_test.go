package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brandonr49/board-game-engine/internal/model"
)

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo(names ...string) *mockUserRepo {
	r := &mockUserRepo{users: make(map[string]*model.User)}
	for _, n := range names {
		r.users[n] = &model.User{ID: n, DisplayName: n, CreatedAt: time.Now()}
	}
	return r
}

func (m *mockUserRepo) Create(_ context.Context, displayName string) (*model.User, error) {
	u := &model.User{ID: fmt.Sprintf("user-%d", len(m.users)+1), DisplayName: displayName, CreatedAt: time.Now()}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

type mockMatchRepo struct {
	mu        sync.Mutex
	matches   map[string]*model.Match
	snapshots map[string]json.RawMessage
	events    map[string][]model.MatchEvent

	// failSnapshot and failEvents make Commit fail at the snapshot or the
	// event write. Either way nothing is stored.
	failSnapshot bool
	failEvents   bool
}

func newMockMatchRepo() *mockMatchRepo {
	return &mockMatchRepo{
		matches:   make(map[string]*model.Match),
		snapshots: make(map[string]json.RawMessage),
		events:    make(map[string][]model.MatchEvent),
	}
}

func (m *mockMatchRepo) Create(_ context.Context, match *model.Match, state json.RawMessage) (*model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *match
	cp.ID = fmt.Sprintf("match-%d", len(m.matches)+1)
	cp.Status = model.MatchActive
	cp.CreatedAt = time.Now()
	cp.Players = nil
	for _, p := range match.Players {
		p.MatchID = cp.ID
		cp.Players = append(cp.Players, p)
	}
	m.matches[cp.ID] = &cp
	m.snapshots[cp.ID] = state
	out := cp
	return &out, nil
}

func (m *mockMatchRepo) FindByID(_ context.Context, id string) (*model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.matches[id]
	if !ok {
		return nil, nil
	}
	cp := *match
	cp.Players = append([]model.MatchPlayer(nil), match.Players...)
	return &cp, nil
}

func (m *mockMatchRepo) ListActive(_ context.Context) ([]model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Match
	for _, match := range m.matches {
		if match.Status == model.MatchActive {
			out = append(out, *match)
		}
	}
	return out, nil
}

func (m *mockMatchRepo) ListByUser(_ context.Context, userID string) ([]model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Match
	for _, match := range m.matches {
		if match.Player(userID) != nil {
			out = append(out, *match)
		}
	}
	return out, nil
}

func (m *mockMatchRepo) Commit(_ context.Context, matchID string, state json.RawMessage, e *model.MatchEvent, outcome *model.MatchOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSnapshot {
		return errors.New("snapshot store down")
	}
	if m.failEvents {
		return errors.New("event log down")
	}
	match, ok := m.matches[matchID]
	if !ok {
		return errors.New("no such match")
	}

	m.snapshots[matchID] = state
	e.MatchID = matchID
	e.Seq = len(m.events[matchID]) + 1
	e.ID = int64(e.Seq)
	e.CreatedAt = time.Now()
	m.events[matchID] = append(m.events[matchID], *e)

	if outcome != nil {
		now := time.Now()
		match.Status = model.MatchFinished
		match.Winner = outcome.Winner
		match.WinKind = outcome.Kind
		match.FinishedAt = &now
	}
	return nil
}

func (m *mockMatchRepo) LatestSnapshot(_ context.Context, matchID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshots[matchID], nil
}

func (m *mockMatchRepo) ListEvents(_ context.Context, matchID string) ([]model.MatchEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.MatchEvent(nil), m.events[matchID]...), nil
}

type mockCache struct {
	mu     sync.Mutex
	states map[string]json.RawMessage
	locks  map[string]string
	ttls   map[string]time.Duration
}

func newMockCache() *mockCache {
	return &mockCache{
		states: make(map[string]json.RawMessage),
		locks:  make(map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (c *mockCache) SetMatchState(_ context.Context, matchID string, state json.RawMessage, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[matchID] = state
	c.ttls[matchID] = ttl
	return nil
}

func (c *mockCache) GetMatchState(_ context.Context, matchID string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[matchID], nil
}

func (c *mockCache) DeleteMatchState(_ context.Context, matchID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, matchID)
	delete(c.locks, matchID)
	return nil
}

func (c *mockCache) AcquireLock(_ context.Context, matchID, owner string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, held := c.locks[matchID]; held {
		return false, nil
	}
	c.locks[matchID] = owner
	return true, nil
}

func (c *mockCache) ReleaseLock(_ context.Context, matchID, owner string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks[matchID] == owner {
		delete(c.locks, matchID)
	}
	return nil
}

type broadcastEvent struct {
	matchID   string
	eventType string
	data      any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (b *recordingBroadcaster) BroadcastMatchEvent(matchID, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{matchID, eventType, data})
}

func (b *recordingBroadcaster) count(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}
