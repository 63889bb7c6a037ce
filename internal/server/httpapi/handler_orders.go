package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/storefront/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type orderItemRequest struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type createOrderRequest struct {
	Items []orderItemRequest `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if !s.bindJSON(c, &req) {
		return
	}

	items := make([]services.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, services.OrderItemInput{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	user := currentUser(c)
	o, err := s.services.Orders.Create(c.Request.Context(), user.ID, items, req.Total)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Order created", "order_id", o.ID, "user_id", user.ID)
	c.JSON(http.StatusCreated, o)
}

func (s *Server) listOwnOrders(c *gin.Context) {
	list, err := s.services.Orders.ListForUser(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) listAllOrders(c *gin.Context) {
	q := services.OrderQuery{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
	}

	list, err := s.services.Orders.ListAll(c.Request.Context(), q)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getOrder(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}

	o, err := s.services.Orders.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) setOrderStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	var req setStatusRequest
	if !s.bindJSON(c, &req) {
		return
	}

	o, err := s.services.Orders.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
