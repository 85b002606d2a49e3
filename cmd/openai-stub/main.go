package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goleads/internal/stub"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	model := os.Getenv("MODEL_ID")
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}
	var names []string
	for _, n := range strings.Split(os.Getenv("STUB_NAMES"), ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	log.Info().Str("addr", addr).Str("model", model).Strs("names", names).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, stub.NewHandler(stub.Options{Model: model, Names: names})); err != nil {
		log.Fatal().Err(err).Msg("openai-stub stopped")
	}
}
