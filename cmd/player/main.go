// The player binary is the reference display client: pair once with
// -code, then render the bound screen's playlist until unpaired.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/signageflow/signageflow/internal/display"
	"github.com/signageflow/signageflow/internal/model"
	"github.com/signageflow/signageflow/internal/playback"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		server   = flag.String("server", "http://localhost:8080", "signage server base URL")
		code     = flag.String("code", "", "pairing code shown in the console (first run only)")
		stateDir = flag.String("state-dir", defaultStateDir(), "directory for the durable pairing binding")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bindings := display.NewBindingStore(*stateDir)
	engine := playback.NewEngine(render)
	client := display.NewClient(*server, bindings, engine)

	if _, bound := bindings.Load(); !bound {
		if *code == "" {
			log.Fatal().Msg("not paired: run with -code <pairing code>")
		}
		if _, err := client.Pair(ctx, *code); err != nil {
			log.Fatal().Err(err).Msg("pairing failed")
		}
	}

	err := client.Run(ctx)
	switch {
	case errors.Is(err, display.ErrUnbound):
		log.Warn().Msg("binding cleared, restart with a fresh pairing code")
	case errors.Is(err, context.Canceled):
		log.Info().Msg("shutting down")
	case err != nil:
		log.Fatal().Err(err).Msg("player stopped")
	}
}

// render is the playback engine's output surface. A real deployment points
// a browser or media pipeline here; the reference player logs.
func render(item *model.PlaylistItem, index int) {
	if item == nil {
		log.Info().Msg("playlist empty, idle")
		return
	}
	log.Info().
		Int("index", index).
		Str("name", item.Name).
		Str("mime_type", item.MimeType).
		Str("url", item.URL).
		Msg("now showing")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".signageflow"
	}
	return home + "/.signageflow"
}
