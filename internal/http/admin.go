package httpapi

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"susurros/internal/domain"
)

const sessionAdminKey = "is_admin"

// requireAdmin gates admin mutations behind the session flag set by login.
func (s *Server) requireAdmin(c *gin.Context) {
	sess := sessions.Default(c)
	if v, ok := sess.Get(sessionAdminKey).(bool); !ok || !v {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin login required"})
		return
	}
	c.Next()
}

type loginReq struct {
	Password string `json:"password"`
}

// @Summary Admin login
// @Tags admin
// @Accept json
// @Produce json
// @Param input body loginReq true "Credentials"
// @Success 200 {object} map[string]bool
// @Failure 401 {object} map[string]string
// @Router /admin/login [post]
func (s *Server) adminLogin(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	// single shared secret, plaintext compare; deliberately not hardened
	if req.Password != s.cfg.AdminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "contraseña incorrecta"})
		return
	}
	sess := sessions.Default(c)
	sess.Set(sessionAdminKey, true)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// @Summary Admin logout
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /admin/logout [post]
func (s *Server) adminLogout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Delete(sessionAdminKey)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// @Summary List all orders, newest first
// @Tags admin
// @Produce json
// @Success 200 {array} domain.Order
// @Failure 401 {object} map[string]string
// @Router /admin/orders [get]
func (s *Server) adminListOrders(c *gin.Context) {
	list, err := s.orders.ListOrders(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Order details
// @Tags admin
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} map[string]string
// @Router /admin/orders/{id} [get]
func (s *Server) adminOrderDetails(c *gin.Context) {
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

type updateStatusReq struct {
	Status int `json:"status"`
}

// @Summary Update order status
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param input body updateStatusReq true "Status code 1..5"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/orders/{id}/status [post]
func (s *Server) adminUpdateStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	status := domain.OrderStatus(req.Status)
	ok, err := s.orders.UpdateStatus(c, id, status)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status.String()})
}

// @Summary List catalog, seeding missing standard variants first
// @Tags admin
// @Produce json
// @Success 200 {array} domain.Product
// @Router /admin/products [get]
func (s *Server) adminListProducts(c *gin.Context) {
	if err := s.stock.InitializeProducts(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	list, err := s.stock.ListProducts(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

type availabilityReq struct {
	IsActive bool `json:"is_active"`
}

// @Summary Toggle product availability
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body availabilityReq true "Availability"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} map[string]string
// @Router /admin/products/{id}/availability [post]
func (s *Server) adminSetAvailability(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req availabilityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ok, err := s.stock.SetAvailability(c, id, req.IsActive)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_active": req.IsActive})
}

type stockReq struct {
	Stock int `json:"stock"`
}

// @Summary Set absolute stock quantity
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body stockReq true "Stock"
// @Success 200 {object} map[string]int
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/products/{id}/stock [post]
func (s *Server) adminSetStock(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req stockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ok, err := s.stock.SetStock(c, id, req.Stock)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock": req.Stock})
}

// @Summary Sync catalog prices to the canonical table
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /admin/products/sync-prices [post]
func (s *Server) adminSyncPrices(c *gin.Context) {
	updated, err := s.stock.SyncPrices(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
