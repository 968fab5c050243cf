package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"xoned-commerce/internal/domain"
	cartsvc "xoned-commerce/internal/service/cart"
)

type lineRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

func (r lineRequest) key() domain.LineKey {
	return domain.LineKey{ProductID: r.ProductID, Size: r.Size, Color: r.Color}
}

func (h *handler) getCart(c *gin.Context) {
	view, err := h.deps.Cart.Get(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handler) addCartItem(c *gin.Context) {
	var req lineRequest
	if !bind(c, &req) {
		return
	}
	view, err := h.deps.Cart.Add(c.Request.Context(), sessionFrom(c), cartsvc.AddInput{
		ProductID: req.ProductID,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handler) updateCartItem(c *gin.Context) {
	var req lineRequest
	if !bind(c, &req) {
		return
	}
	view, err := h.deps.Cart.UpdateQuantity(c.Request.Context(), sessionFrom(c), req.key(), req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// removeCartItem identifies the line by query parameters.
func (h *handler) removeCartItem(c *gin.Context) {
	key := domain.LineKey{ProductID: c.Query("productId"), Size: c.Query("size"), Color: c.Query("color")}
	if key.ProductID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: "product id required", Field: "productId"})
		return
	}
	view, err := h.deps.Cart.Remove(c.Request.Context(), sessionFrom(c), key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handler) clearCart(c *gin.Context) {
	if err := h.deps.Cart.Clear(c.Request.Context(), sessionFrom(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type wishlistRequest struct {
	ProductID string `json:"productId"`
}

func (h *handler) getWishlist(c *gin.Context) {
	items, err := h.deps.Wishlist.List(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(items))
}

func (h *handler) addWishlistItem(c *gin.Context) {
	var req wishlistRequest
	if !bind(c, &req) {
		return
	}
	items, err := h.deps.Wishlist.Add(c.Request.Context(), sessionFrom(c), req.ProductID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(items))
}

func (h *handler) removeWishlistItem(c *gin.Context) {
	items, err := h.deps.Wishlist.Remove(c.Request.Context(), sessionFrom(c), c.Param("productId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(items))
}

func (h *handler) toggleWishlistItem(c *gin.Context) {
	var req wishlistRequest
	if !bind(c, &req) {
		return
	}
	saved, err := h.deps.Wishlist.Toggle(c.Request.Context(), sessionFrom(c), req.ProductID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": req.ProductID, "saved": saved})
}
