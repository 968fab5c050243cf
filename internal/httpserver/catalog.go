package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"xoned-commerce/internal/domain"
	productsvc "xoned-commerce/internal/service/product"
)

type sessionResponse struct {
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
	ExpiresIn int    `json:"expiresIn"`
}

func (h *handler) issueSession(c *gin.Context) {
	token, sessionID, err := h.deps.Sessions.Issue(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header(sessionHeader, token)
	c.JSON(http.StatusCreated, sessionResponse{Token: token, SessionID: sessionID, ExpiresIn: h.deps.Sessions.TTLSeconds()})
}

// endSession revokes the session token; its cart and wishlist go with it.
func (h *handler) endSession(c *gin.Context) {
	if err := h.deps.Sessions.Revoke(c.Request.Context(), c.GetHeader(sessionHeader)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type listResponse[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Count: len(items), Results: items}
}

func (h *handler) searchProducts(c *gin.Context) {
	q, ok := parseSearchQuery(c)
	if !ok {
		return
	}
	products, err := h.deps.Products.Search(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(products))
}

func parseSearchQuery(c *gin.Context) (productsvc.Query, bool) {
	q := productsvc.Query{
		Text:     c.Query("q"),
		Category: c.Query("category"),
		Sort:     productsvc.Sort(c.Query("sort")),
	}
	var err error
	if q.MinPrice, err = queryInt(c, "minPrice"); err != nil {
		return q, false
	}
	if q.MaxPrice, err = queryInt(c, "maxPrice"); err != nil {
		return q, false
	}
	if q.InStockOnly, err = queryBool(c, "inStock"); err != nil {
		return q, false
	}
	if q.NewOnly, err = queryBool(c, "new"); err != nil {
		return q, false
	}
	return q, true
}

func queryInt(c *gin.Context, name string) (int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: "invalid number", Field: name})
	}
	return v, err
}

func queryBool(c *gin.Context, name string) (bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: "invalid boolean", Field: name})
	}
	return v, err
}

func (h *handler) featuredProducts(c *gin.Context) {
	products, err := h.deps.Products.Featured(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(products))
}

func (h *handler) getProduct(c *gin.Context) {
	p, err := h.deps.Products.GetActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) listCategories(c *gin.Context) {
	categories, err := h.deps.Products.Categories(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(categories))
}

func (h *handler) listCapsules(c *gin.Context) {
	capsules, err := h.deps.Capsules.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(capsules))
}

func (h *handler) getCapsule(c *gin.Context) {
	capsule, err := h.deps.Capsules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, capsule)
}

// adminGetProduct returns drafts too.
func (h *handler) adminGetProduct(c *gin.Context) {
	p, err := h.deps.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) adminListProducts(c *gin.Context) {
	products, err := h.deps.Products.AdminList(c.Request.Context(), productsvc.AdminFilter{
		Search:    c.Query("search"),
		CapsuleID: c.Query("capsuleId"),
		Status:    domain.ProductStatus(c.Query("status")),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(products))
}

func (h *handler) createProduct(c *gin.Context) {
	var in productsvc.Input
	if !bind(c, &in) {
		return
	}
	p, err := h.deps.Products.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handler) updateProduct(c *gin.Context) {
	var in productsvc.Input
	if !bind(c, &in) {
		return
	}
	p, err := h.deps.Products.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) deleteProduct(c *gin.Context) {
	if err := h.deps.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type featuredRequest struct {
	Featured bool `json:"featured"`
}

func (h *handler) setProductFeatured(c *gin.Context) {
	var req featuredRequest
	if !bind(c, &req) {
		return
	}
	if err := h.deps.Products.SetFeatured(c.Request.Context(), c.Param("id"), req.Featured); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "featured": req.Featured})
}
