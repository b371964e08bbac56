package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"susurros/internal/domain"
	"susurros/internal/repository"
	"susurros/internal/service"

	_ "susurros/docs"
)

// Config is the handler-level configuration: the shared admin secret and
// the cookie session key.
type Config struct {
	AdminPassword string
	SessionSecret string
}

type Server struct {
	engine *gin.Engine
	orders *service.OrderService
	stock  *service.StockService
	cfg    Config
	log    *slog.Logger
}

func NewServer(orders *service.OrderService, stock *service.StockService, cfg Config, log *slog.Logger) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(sessions.Sessions("susurros_session", cookie.NewStore([]byte(cfg.SessionSecret))))
	s := &Server{engine: r, orders: orders, stock: stock, cfg: cfg, log: log}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/products", s.listActiveProducts)
		v1.POST("/orders", s.createOrder)
		v1.GET("/orders/:id", s.getOrder)

		admin := v1.Group("/admin")
		admin.POST("/login", s.adminLogin)
		admin.POST("/logout", s.adminLogout)

		gated := admin.Group("", s.requireAdmin)
		gated.GET("/orders", s.adminListOrders)
		gated.GET("/orders/:id", s.adminOrderDetails)
		gated.POST("/orders/:id/status", s.adminUpdateStatus)
		gated.GET("/products", s.adminListProducts)
		gated.POST("/products/:id/availability", s.adminSetAvailability)
		gated.POST("/products/:id/stock", s.adminSetStock)
		gated.POST("/products/sync-prices", s.adminSyncPrices)
	}
}

// Storefront handlers

// @Summary List active products
// @Tags storefront
// @Produce json
// @Success 200 {array} domain.Product
// @Router /products [get]
func (s *Server) listActiveProducts(c *gin.Context) {
	list, err := s.stock.ListProducts(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	active := make([]domain.Product, 0, len(list))
	for _, p := range list {
		if p.IsActive {
			active = append(active, p)
		}
	}
	c.JSON(http.StatusOK, active)
}

type createOrderReq struct {
	Items           map[string]int `json:"items"`
	CustomerName    string         `json:"customer_name"`
	CustomerEmail   string         `json:"customer_email"`
	CustomerPhone   string         `json:"customer_phone"`
	CustomerAddress string         `json:"customer_address"`
	Province        string         `json:"province"`
	PaymentMethod   int            `json:"payment_method"`
	Comments        string         `json:"comments"`
}

// @Summary Create order
// @Tags storefront
// @Accept json
// @Produce json
// @Param input body createOrderReq true "Order"
// @Success 201 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]any
// @Router /orders [post]
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	o, err := s.orders.CreateOrder(c, service.OrderRequest{
		Items:           req.Items,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Province:        req.Province,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		Comments:        req.Comments,
	})
	if err != nil {
		var stockErr service.StockError
		if errors.As(err, &stockErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":      "insufficient stock",
				"violations": stockErr,
			})
			return
		}
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/orders/%d", o.ID))
	c.JSON(http.StatusCreated, o)
}

// @Summary Order confirmation view
// @Tags storefront
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	o, err := s.orders.GetOrder(c, id)
	if err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, o)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
