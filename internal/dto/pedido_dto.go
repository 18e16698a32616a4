package dto

import "github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"

type CobrarPedidoRequest struct {
	Metodo model.Tender `json:"metodo" validate:"required,oneof=cash card yape plin transfer"`
}

type PedidoListResponse struct {
	Data  []model.ExternalOrder `json:"data"`
	Total int                   `json:"total"`
}
