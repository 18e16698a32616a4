// cmd/token/main.go: Emite un token de operador para desarrollo.
// En producción los tokens los emite el servicio de autenticación.
// Uso: go run ./cmd/token -rol supervisor -nombre "Caja 1"
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/config"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/middleware"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	rol := flag.String("rol", middleware.RoleCajero, "cajero | supervisor")
	nombre := flag.String("nombre", "Operador Demo", "nombre del operador")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}

	tok, err := middleware.IssueToken(cfg.JWTSecret, middleware.JWTClaims{
		OperatorID: uuid.NewString(),
		Nombre:     *nombre,
		Rol:        *rol,
	}, time.Duration(cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign token")
	}
	fmt.Fprintln(os.Stdout, tok)
}
