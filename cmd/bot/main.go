// Command bot plays one match between two remote players against a running
// server, exercising login, match creation, actions and WebSocket events.
// The server must run with DEV=true so dev login is available.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brandonr49/board-game-engine/internal/bot"
)

func main() {
	url := flag.String("url", "http://localhost:8009", "server base URL")
	seed := flag.Int64("seed", 0, "action choice seed (0 = random)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Received shutdown signal")
		cancel()
	}()

	orch := bot.NewOrchestrator(*url, *seed)
	m, err := orch.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Remote match failed")
	}
	log.Info().Str("matchId", m.ID).Str("status", m.Status).Str("winner", m.Winner).Msg("Remote match completed")
}
