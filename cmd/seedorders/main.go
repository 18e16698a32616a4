// cmd/seedorders/main.go: Carga pedidos web pendientes de demo.
// Uso: go run ./cmd/seedorders
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/config"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/infra"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	phone := "999111222"
	address := "Av. Grau 123, Piura"
	orders := []model.ExternalOrder{
		{
			ID:           fmt.Sprintf("demo-%d-1", time.Now().Unix()),
			Total:        decimal.RequireFromString("35.00"),
			CustomerName: "Rosa Quispe",
			Modality:     model.ModalityPickup,
			Status:       model.OrderPending,
			Items: []model.ExternalOrderItem{
				{ProductID: "salchipapa", Name: "Salchipapa clásica", UnitPrice: decimal.RequireFromString("15.50"), Quantity: 2},
				{ProductID: "chicha", Name: "Chicha morada", UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1, Discount: decimal.RequireFromString("1.00")},
			},
		},
		{
			ID:            fmt.Sprintf("demo-%d-2", time.Now().Unix()),
			Total:         decimal.RequireFromString("48.00"),
			CustomerName:  "Luis Ramos",
			CustomerPhone: &phone,
			Address:       &address,
			Modality:      model.ModalityDelivery,
			Status:        model.OrderPending,
			Items: []model.ExternalOrderItem{
				{ProductID: "combo-churre", Name: "Combo Churre", UnitPrice: decimal.RequireFromString("24.00"), Quantity: 2},
			},
		},
	}

	for i := range orders {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&orders[i]).Error; err != nil {
			log.Fatal().Err(err).Str("order_id", orders[i].ID).Msg("failed to seed order")
		}
		log.Info().Str("order_id", orders[i].ID).Str("total", orders[i].Total.String()).Msg("pedido web creado")
	}
}
