package router

import (
	"net/http"
	"time"

	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/config"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/handler"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/middleware"
	"github.com/labs51pe-alt/churre-malcriado-Pos/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP surface is built on. The composition root
// in cmd/server wires them against Postgres and Redis; tests wire them
// against the in-memory store.
type Deps struct {
	Shifts   service.ShiftService
	Checkout service.CheckoutService
	Orders   service.OrderService
	// Health is mounted at /health without auth. Nil answers a bare 200.
	Health gin.HandlerFunc
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Store ← DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()...))
	r.Use(middleware.ErrorHandler())
	if cfg.RateLimit > 0 {
		r.Use(middleware.RateLimiter(cfg.RateLimit, time.Minute))
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	cajaH := handler.NewCajaHandler(deps.Shifts)
	ventasH := handler.NewVentasHandler(deps.Checkout)
	pedidosH := handler.NewPedidosHandler(deps.Orders)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	health := deps.Health
	if health == nil {
		health = func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	}
	r.GET("/health", health)

	// Protected routes. Tokens are issued by the auth collaborator; every
	// operator role may run the drawer, the history is for supervisors.
	operator := middleware.RequireRole(middleware.RoleCajero, middleware.RoleSupervisor)
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), operator)
	{
		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", cajaH.Abrir)
			caja.POST("/cerrar", cajaH.Cerrar)
			caja.POST("/movimiento", cajaH.Movimiento)
			caja.GET("/activa", cajaH.Activa)
			caja.GET("/historial", middleware.RequireRole(middleware.RoleSupervisor), cajaH.Historial)
			caja.GET("/:id/reporte", cajaH.Reporte)
		}

		v1.POST("/ventas/cotizar", ventasH.Cotizar)
		v1.POST("/ventas", ventasH.Registrar)

		pedidos := v1.Group("/pedidos-web")
		{
			pedidos.GET("", pedidosH.Listar)
			pedidos.POST("/:id/cobrar", pedidosH.Cobrar)
			pedidos.POST("/:id/archivar", pedidosH.Archivar)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
