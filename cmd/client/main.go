package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"siege-client/internal/archive"
	"siege-client/internal/client"
	"siege-client/internal/protocol"
	"siege-client/internal/state"
)

const pingInterval = 30 * time.Second

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ar, err := archive.Open(cfg.ArchivePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ArchivePath).Msg("failed to open archive")
	}
	defer ar.Close()

	// The stored profile supplies the name when neither config nor env do.
	name := cfg.Name
	if name == "" {
		profile, err := ar.LoadProfile()
		if err != nil {
			log.Warn().Err(err).Msg("failed to load profile")
		} else if profile.DisplayName != "" {
			name = profile.DisplayName
		}
	}

	store := state.NewStore(nil)
	cl := client.New(client.Options{
		LobbyURL: cfg.LobbyURL,
		Store:    store,
		OnEvent:  archiveHook(ar, cfg.LobbyURL, name),
	})
	dispatcher := client.NewDispatcher(cl)

	if err := cl.Connect(name); err != nil {
		log.Fatal().Err(err).Str("url", cfg.LobbyURL).Msg("failed to connect")
	}

	// Keepalive; the server answers with pong.
	pingCtx, stopPings := context.WithCancel(context.Background())
	defer stopPings()
	go pingLoop(pingCtx, dispatcher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutdown signal received")
	cl.Disconnect()
	log.Info().Msg("disconnected, goodbye")
}

func pingLoop(ctx context.Context, d *client.Dispatcher) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.Ping(); err != nil {
				log.Debug().Err(err).Msg("ping skipped")
			}
		}
	}
}

// archiveHook records server-confirmed names of the viewer and finished
// games into the local archive. Failures are logged and otherwise ignored.
// A welcome saves the confirmed name only when one was requested at connect
// time; server-assigned guest names never become the stored identity hint.
func archiveHook(ar *archive.Archive, lobbyURL, requestedName string) func(protocol.Event, state.Snapshot) {
	return func(ev protocol.Event, snap state.Snapshot) {
		switch e := ev.(type) {
		case protocol.Welcome:
			log.Info().Str("member_id", e.Member.MemberID).Str("name", e.Member.Name).
				Int("members", len(e.Members)).Int("rooms", len(e.Rooms)).Msg("welcome")
			if requestedName == "" {
				return
			}
			if err := ar.SaveProfile(e.Member.Name, lobbyURL); err != nil {
				log.Warn().Err(err).Msg("failed to save profile")
			}

		case protocol.MemberRenamed:
			if e.Member.MemberID != snap.Viewer.MemberID {
				return
			}
			if err := ar.SaveProfile(e.Member.Name, lobbyURL); err != nil {
				log.Warn().Err(err).Msg("failed to save profile")
			}

		case protocol.GameStateUpdated:
			if e.State.Status != protocol.GameStatusEnded {
				return
			}
			if err := ar.RecordResult(e.State); err != nil {
				log.Warn().Err(err).Str("game_id", e.State.GameID).Msg("failed to archive game")
			}

		case protocol.RoomError:
			log.Warn().Str("flow", "room").Str("message", e.Message).Msg("server rejected request")

		case protocol.GameActionError:
			log.Warn().Str("flow", "game").Str("message", e.Message).Msg("server rejected action")
		}
	}
}
