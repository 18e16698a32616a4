package handler

import (
	"net/http"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/dto"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.CheckoutService }

func NewVentasHandler(svc service.CheckoutService) *VentasHandler { return &VentasHandler{svc: svc} }

// Cotizar godoc
// @Summary      Cotiza un carrito sin registrar la venta
// @Description  Devuelve el desglose de precios, lo pendiente o el vuelto, y el monto que completaría el pago por cada medio.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CotizarRequest true "Carrito y pagos ingresados"
// @Success      200  {object} dto.CotizarResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/ventas/cotizar [post]
func (h *VentasHandler) Cotizar(c *gin.Context) {
	var req dto.CotizarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Quote(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Registrar godoc
// @Summary      Registra una venta contra la caja abierta
// @Description  Calcula precios, asigna los pagos y agrega la transacción al libro. Si el carrito proviene de un pedido web, el pedido queda cobrado.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CheckoutRequest true "Carrito y pagos"
// @Success      201  {object} dto.CheckoutResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Failure      502  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) Registrar(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Checkout(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
