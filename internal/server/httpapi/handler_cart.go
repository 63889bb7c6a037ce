package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addToCartRequest struct {
	UserID    int64 `json:"userId" binding:"required"`
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  *int  `json:"quantity"`
}

type updateCartItemRequest struct {
	ItemID   int64 `json:"itemId" binding:"required"`
	Quantity int   `json:"quantity"`
}

func (s *Server) getCart(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		s.respondError(c, err)
		return
	}

	cart, err := s.services.Carts.GetOrCreateCart(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// addToCart defaults quantity to 1 when omitted.
func (s *Server) addToCart(c *gin.Context) {
	var req addToCartRequest
	if !s.bindJSON(c, &req) {
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	item, err := s.services.Carts.AddItem(c.Request.Context(), req.UserID, req.ProductID, qty)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if !s.bindJSON(c, &req) {
		return
	}

	item, err := s.services.Carts.UpdateQuantity(c.Request.Context(), req.ItemID, req.Quantity)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) removeCartItem(c *gin.Context) {
	itemID, err := pathID(c, "itemId")
	if err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.services.Carts.RemoveItem(c.Request.Context(), itemID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item removed"})
}

func (s *Server) clearCart(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.services.Carts.ClearCart(c.Request.Context(), userID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
