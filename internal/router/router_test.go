package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/apierror"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/config"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/dto"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/middleware"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/model"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/pricing"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/repository"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/router"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// memTracker keeps archived and unverified ids in memory.
type memTracker struct {
	mu         sync.Mutex
	archived   map[string]bool
	unverified map[string]bool
}

func (m *memTracker) ArchivedIDs(_ context.Context) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(m.archived))
	for k := range m.archived {
		out[k] = true
	}
	return out, nil
}

func (m *memTracker) Archive(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archived[id] = true
	return nil
}

func (m *memTracker) MarkUnverified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unverified[id] = true
	return nil
}

type noQueue struct{}

func (noQueue) EnqueueSettlement(context.Context, *model.Transaction) error { return nil }

type server struct {
	t      *testing.T
	engine *gin.Engine
	store  *repository.MemoryStore
	cajero string
	super  string
}

func newServer(t *testing.T) *server {
	t.Helper()
	store := repository.NewMemoryStore()
	settings := pricing.Settings{TaxRate: dec("0.18"), PricesIncludeTax: true}
	tracker := &memTracker{archived: map[string]bool{}, unverified: map[string]bool{}}

	shifts := service.NewShiftService(store)
	orders := service.NewOrderService(store, shifts, tracker, noQueue{}, settings)
	checkout := service.NewCheckoutService(store, shifts, orders, settings)

	cfg := &config.Config{Env: "test", JWTSecret: secret}
	s := &server{
		t:      t,
		engine: router.New(cfg, router.Deps{Shifts: shifts, Checkout: checkout, Orders: orders}),
		store:  store,
	}
	s.cajero = s.token(middleware.RoleCajero)
	s.super = s.token(middleware.RoleSupervisor)
	return s
}

func (s *server) token(rol string) string {
	tok, err := middleware.IssueToken(secret, middleware.JWTClaims{OperatorID: "op-" + rol, Nombre: rol, Rol: rol}, time.Hour)
	require.NoError(s.t, err)
	return tok
}

func (s *server) call(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

var cart = []map[string]interface{}{
	{"producto_id": "p1", "nombre": "Salchipapa", "precio": "15.50", "cantidad": 2},
	{"producto_id": "p2", "nombre": "Chicha", "precio": "5.00", "cantidad": 1, "descuento": "1.00"},
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestHealthIsPublic(t *testing.T) {
	s := newServer(t)
	assert.Equal(t, http.StatusOK, s.call(http.MethodGet, "/health", "", nil).Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newServer(t)
	assert.Equal(t, http.StatusUnauthorized, s.call(http.MethodGet, "/v1/caja/activa", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.call(http.MethodPost, "/v1/ventas", "", nil).Code)
}

func TestUnknownRoleForbidden(t *testing.T) {
	s := newServer(t)
	w := s.call(http.MethodGet, "/v1/caja/activa", s.token("invitado"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestShiftLifecycle(t *testing.T) {
	s := newServer(t)

	w := s.call(http.MethodGet, "/v1/caja/activa", s.cajero, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "caja no abierta", decode[apierror.APIError](t, w).Category)

	w = s.call(http.MethodPost, "/v1/caja/abrir", s.cajero, gin.H{"monto_inicial": 100})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	opened := decode[dto.ShiftReport](t, w)
	assert.Equal(t, model.ShiftOpen, opened.Shift.Status)

	w = s.call(http.MethodPost, "/v1/caja/abrir", s.cajero, gin.H{"monto_inicial": 50})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.call(http.MethodPost, "/v1/ventas", s.cajero, gin.H{
		"items": cart,
		"pagos": []gin.H{{"metodo": "cash", "monto": "40"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sale := decode[dto.CheckoutResponse](t, w)
	assert.True(t, sale.Vuelto.Equal(dec("5")), sale.Vuelto.String())
	assert.True(t, sale.Transaction.Total.Equal(dec("35")))

	w = s.call(http.MethodPost, "/v1/caja/movimiento", s.cajero, gin.H{"tipo": "OUT", "monto": 10, "motivo": "hielo"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.call(http.MethodGet, "/v1/caja/activa", s.cajero, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[dto.ShiftSnapshot](t, w)
	assert.True(t, snap.Cash.Equal(dec("125")), snap.Cash.String())
	assert.Equal(t, 1, snap.Transactions)

	w = s.call(http.MethodPost, "/v1/caja/cerrar", s.cajero, gin.H{"monto_declarado": 120})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	closed := decode[dto.ShiftReport](t, w)
	assert.Equal(t, model.ShiftClosed, closed.Shift.Status)
	require.NotNil(t, closed.Discrepancy)
	assert.True(t, closed.Discrepancy.Amount.Equal(dec("-5")), closed.Discrepancy.Amount.String())
	assert.Equal(t, "advertencia", closed.Discrepancy.Classification)

	w = s.call(http.MethodGet, "/v1/caja/"+opened.Shift.ID.String()+"/reporte", s.cajero, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[dto.ShiftReport](t, w).Transactions, 1)

	assert.Equal(t, http.StatusForbidden, s.call(http.MethodGet, "/v1/caja/historial", s.cajero, nil).Code)
	w = s.call(http.MethodGet, "/v1/caja/historial", s.super, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestMovimientoValidation(t *testing.T) {
	s := newServer(t)
	require.Equal(t, http.StatusCreated, s.call(http.MethodPost, "/v1/caja/abrir", s.cajero, gin.H{"monto_inicial": 0}).Code)

	cases := []struct {
		name string
		body gin.H
	}{
		{"zero amount", gin.H{"tipo": "IN", "monto": 0}},
		{"unknown kind", gin.H{"tipo": "OPEN", "monto": 5}},
		{"negative amount", gin.H{"tipo": "OUT", "monto": -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.call(http.MethodPost, "/v1/caja/movimiento", s.cajero, tc.body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		})
	}
	assert.Len(t, s.store.Movements(), 1)
}

func TestReporte_BadAndUnknownID(t *testing.T) {
	s := newServer(t)
	assert.Equal(t, http.StatusBadRequest, s.call(http.MethodGet, "/v1/caja/nope/reporte", s.cajero, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.call(http.MethodGet, "/v1/caja/"+uuid.NewString()+"/reporte", s.cajero, nil).Code)
}

func TestVentas_QuoteAndInsufficient(t *testing.T) {
	s := newServer(t)

	w := s.call(http.MethodPost, "/v1/ventas/cotizar", s.cajero, gin.H{
		"items": cart,
		"pagos": []gin.H{{"metodo": "yape", "monto": "20"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	quote := decode[dto.CotizarResponse](t, w)
	assert.True(t, quote.Resumen.Remaining.Equal(dec("15")), quote.Resumen.Remaining.String())
	assert.False(t, quote.Resumen.CanCommit)

	require.Equal(t, http.StatusCreated, s.call(http.MethodPost, "/v1/caja/abrir", s.cajero, gin.H{"monto_inicial": 0}).Code)
	w = s.call(http.MethodPost, "/v1/ventas", s.cajero, gin.H{
		"items": cart,
		"pagos": []gin.H{{"metodo": "yape", "monto": "20"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "pago insuficiente", decode[apierror.APIError](t, w).Category)
	assert.Empty(t, s.store.Transactions())

	w = s.call(http.MethodPost, "/v1/ventas", s.cajero, gin.H{
		"items": cart,
		"pagos": []gin.H{{"metodo": "bitcoin", "monto": "35"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPedidosWeb(t *testing.T) {
	s := newServer(t)
	require.Equal(t, http.StatusCreated, s.call(http.MethodPost, "/v1/caja/abrir", s.cajero, gin.H{"monto_inicial": 0}).Code)
	s.store.PutOrder(model.ExternalOrder{
		ID:       "web-1",
		Total:    dec("42"),
		Modality: model.ModalityPickup,
		Status:   model.OrderPending,
		Items:    []model.ExternalOrderItem{{ProductID: "p1", Name: "Combo", UnitPrice: dec("42"), Quantity: 1}},
	})

	w := s.call(http.MethodGet, "/v1/pedidos-web", s.cajero, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.PedidoListResponse](t, w).Total)

	// pending orders cannot be archived
	assert.Equal(t, http.StatusUnprocessableEntity, s.call(http.MethodPost, "/v1/pedidos-web/web-1/archivar", s.cajero, nil).Code)

	w = s.call(http.MethodPost, "/v1/pedidos-web/web-1/cobrar", s.cajero, gin.H{"metodo": "plin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[model.Transaction](t, w)

	w = s.call(http.MethodPost, "/v1/pedidos-web/web-1/cobrar", s.cajero, gin.H{"metodo": "plin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, first.ID, decode[model.Transaction](t, w).ID)
	assert.Len(t, s.store.Transactions(), 1)

	assert.Equal(t, http.StatusNoContent, s.call(http.MethodPost, "/v1/pedidos-web/web-1/archivar", s.cajero, nil).Code)
	w = s.call(http.MethodGet, "/v1/pedidos-web", s.cajero, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[dto.PedidoListResponse](t, w).Total)

	w = s.call(http.MethodPost, "/v1/pedidos-web/ghost/cobrar", s.cajero, gin.H{"metodo": "cash"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
