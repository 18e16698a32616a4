package handler

import (
	"net/http"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/dto"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/service"

	"github.com/gin-gonic/gin"
)

type PedidosHandler struct{ svc service.OrderService }

func NewPedidosHandler(svc service.OrderService) *PedidosHandler { return &PedidosHandler{svc: svc} }

// Listar godoc
// @Summary  Pedidos web pendientes de gestión
// @Tags     pedidos-web
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} dto.PedidoListResponse
// @Failure  503 {object} apierror.APIError
// @Router   /v1/pedidos-web [get]
func (h *PedidosHandler) Listar(c *gin.Context) {
	orders, err := h.svc.Worklist(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PedidoListResponse{Data: orders, Total: len(orders)})
}

// Cobrar godoc
// @Summary     Cobra un pedido web completo con un medio de pago
// @Description Marca el pedido como pagado en la tienda y registra la transacción en la caja abierta. Repetir la llamada devuelve la misma transacción.
// @Tags        pedidos-web
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id   path string                  true "ID del pedido"
// @Param       body body dto.CobrarPedidoRequest true "Medio de pago"
// @Success     200  {object} model.Transaction
// @Failure     409  {object} apierror.APIError
// @Failure     502  {object} apierror.APIError
// @Router      /v1/pedidos-web/{id}/cobrar [post]
func (h *PedidosHandler) Cobrar(c *gin.Context) {
	var req dto.CobrarPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	tx, err := h.svc.Settle(c.Request.Context(), c.Param("id"), req.Metodo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// Archivar godoc
// @Summary  Oculta un pedido ya procesado de la lista
// @Tags     pedidos-web
// @Security BearerAuth
// @Param    id path string true "ID del pedido"
// @Success  204
// @Failure  409 {object} apierror.APIError
// @Router   /v1/pedidos-web/{id}/archivar [post]
func (h *PedidosHandler) Archivar(c *gin.Context) {
	if err := h.svc.Archive(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
