// Command spectoken issues a spectator token for the bot's watch server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/pacgrid/internal/auth"
	"github.com/freeeve/pacgrid/internal/logger"
)

func main() {
	viewer := flag.String("viewer", "dev", "viewer name embedded in the token")
	match := flag.String("match", "", "restrict the token to one match ID (default any)")
	ttl := flag.Duration("ttl", auth.DefaultTokenTTL, "token lifetime")
	secret := flag.String("secret", os.Getenv("SPECTATE_SECRET"), "signing secret (default $SPECTATE_SECRET)")
	flag.Parse()

	logger.Init()

	if *secret == "" {
		log.Fatal().Msg("No signing secret: set -secret or SPECTATE_SECRET")
	}
	if *ttl <= 0 {
		log.Fatal().Dur("ttl", *ttl).Msg("TTL must be positive")
	}

	token, err := auth.NewTokenManager(*secret).WithTTL(*ttl).Issue(*viewer, *match)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign token")
	}
	log.Info().
		Str("viewer", *viewer).
		Str("match", *match).
		Time("expires", time.Now().Add(*ttl)).
		Msg("Token issued")
	fmt.Println(token)
}
