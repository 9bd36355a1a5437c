package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brandonr49/board-game-engine/pkg/battleline"
)

// Orchestrator plays a full match between two remote players through the
// public HTTP and WebSocket API.
type Orchestrator struct {
	baseURL  string
	rng      *rand.Rand
	maxMoves int
	timeout  time.Duration
}

// NewOrchestrator creates an Orchestrator. A zero seed picks a random one.
func NewOrchestrator(baseURL string, seed int64) *Orchestrator {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Orchestrator{
		baseURL:  baseURL,
		rng:      rand.New(rand.NewSource(seed)),
		maxMoves: DefaultMaxMoves,
		timeout:  10 * time.Second,
	}
}

// Run logs in two players, creates a match between them and plays it to the
// end. It returns the finished match record.
func (o *Orchestrator) Run(ctx context.Context) (*RemoteMatch, error) {
	players := [2]*Client{NewClient("Remote West", o.baseURL), NewClient("Remote East", o.baseURL)}
	for _, c := range players {
		if err := c.Login(ctx); err != nil {
			return nil, fmt.Errorf("login %s: %w", c.Name(), err)
		}
	}

	matchID, err := players[0].CreateMatch(ctx, players[1].UserID())
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	log.Info().Str("matchId", matchID).Msg("Match created")

	watcher := players[0]
	if err := watcher.ConnectWS(ctx); err != nil {
		return nil, err
	}
	defer watcher.CloseWS()
	if err := watcher.SubscribeMatch(matchID); err != nil {
		return nil, fmt.Errorf("ws subscribe: %w", err)
	}

	if err := o.playLoop(ctx, matchID, players); err != nil {
		return nil, err
	}

	event, err := o.waitForEvent(ctx, watcher, "match_finished")
	if err != nil {
		log.Warn().Err(err).Str("matchId", matchID).Msg("No finish event received")
	} else {
		log.Info().Interface("winner", event.Data["winner"]).Interface("kind", event.Data["kind"]).Msg("Match finished")
	}
	return players[0].GetMatch(ctx, matchID)
}

// playLoop asks each player for its valid actions and submits one for
// whoever is to move, until the server reports the match over.
func (o *Orchestrator) playLoop(ctx context.Context, matchID string, players [2]*Client) error {
	for moves := 0; moves < o.maxMoves; {
		if err := ctx.Err(); err != nil {
			return err
		}

		acted := false
		for _, c := range players {
			actions, err := c.ValidActions(ctx, matchID)
			if err != nil {
				return fmt.Errorf("valid actions %s: %w", c.Name(), err)
			}
			in, ok := pickRemote(actions, o.rng)
			if !ok {
				continue
			}

			res, err := c.Submit(ctx, matchID, in)
			var se *StatusError
			if errors.As(err, &se) && se.Code == http.StatusConflict {
				// Over or out of turn after a race; re-read and retry.
				log.Debug().Str("player", c.Name()).Str("kind", string(in.Kind)).Msg("Action conflicted, retrying")
				moves++
				acted = true
				break
			}
			if err != nil {
				return fmt.Errorf("submit %s %s: %w", c.Name(), in.Kind, err)
			}
			moves++
			acted = true
			log.Debug().Str("player", c.Name()).Str("kind", string(in.Kind)).Str("phase", res.Phase.Phase).Msg("Action submitted")
			if res.GameOver {
				return nil
			}
			break
		}
		if !acted {
			m, err := players[0].GetMatch(ctx, matchID)
			if err != nil {
				return err
			}
			if m.Status != "active" {
				return nil
			}
			return fmt.Errorf("match %s stalled: nobody can act", matchID)
		}
	}
	return fmt.Errorf("match %s exceeded %d moves", matchID, o.maxMoves)
}

// pickRemote chooses among published actions: a claim when offered,
// otherwise a uniform pick that skips the auto-claim toggle and passes
// only when nothing else is available.
func pickRemote(actions []battleline.ActionInput, rng *rand.Rand) (battleline.ActionInput, bool) {
	var pool []battleline.ActionInput
	var pass *battleline.ActionInput
	for i, a := range actions {
		switch a.Kind {
		case battleline.KindToggleAutoClaim:
			continue
		case battleline.KindClaimFlag:
			return a, true
		case battleline.KindPass:
			pass = &actions[i]
			continue
		}
		pool = append(pool, a)
	}
	if len(pool) > 0 {
		return pool[rng.Intn(len(pool))], true
	}
	if pass != nil {
		return *pass, true
	}
	return battleline.ActionInput{}, false
}

// waitForEvent blocks until one of the given event types is received.
func (o *Orchestrator) waitForEvent(ctx context.Context, c *Client, eventTypes ...string) (WSEvent, error) {
	typeSet := make(map[string]bool)
	for _, t := range eventTypes {
		typeSet[t] = true
	}

	timeout := time.After(o.timeout)
	for {
		select {
		case <-ctx.Done():
			return WSEvent{}, ctx.Err()
		case <-timeout:
			return WSEvent{}, fmt.Errorf("timeout waiting for events %v", eventTypes)
		case event, ok := <-c.Events():
			if !ok {
				return WSEvent{}, fmt.Errorf("ws connection closed")
			}
			if typeSet[event.Type] {
				return event, nil
			}
		}
	}
}
