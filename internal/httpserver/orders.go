package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"xoned-commerce/internal/domain"
	ordersvc "xoned-commerce/internal/service/order"
)

type checkoutResponse struct {
	Success bool          `json:"success"`
	Order   *domain.Order `json:"order"`
	Amount  int64         `json:"amountDue"`
}

func (h *handler) checkout(c *gin.Context) {
	var in ordersvc.CheckoutInput
	if !bind(c, &in) {
		return
	}
	order, err := h.deps.Orders.Checkout(c.Request.Context(), sessionFrom(c), identityFrom(c), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	status := http.StatusCreated
	if order.PaymentStatus == domain.PaymentStatusFailed {
		status = http.StatusPaymentRequired
	}
	c.JSON(status, checkoutResponse{
		Success: order.PaymentStatus != domain.PaymentStatusFailed,
		Order:   order,
		Amount:  order.AmountDue(),
	})
}

func (h *handler) accountOrders(c *gin.Context) {
	orders, err := h.deps.Orders.ListForCustomer(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(orders))
}

func (h *handler) accountOrder(c *gin.Context) {
	order, err := h.deps.Orders.GetForCustomer(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handler) adminListOrders(c *gin.Context) {
	orders, err := h.deps.Orders.List(c.Request.Context(), ordersvc.ListFilter{
		Search: c.Query("search"),
		Status: domain.OrderStatus(c.Query("status")),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(orders))
}

func (h *handler) adminGetOrder(c *gin.Context) {
	order, err := h.deps.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *handler) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if !bind(c, &req) {
		return
	}
	order, err := h.deps.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handler) updatePaymentStatus(c *gin.Context) {
	var req statusRequest
	if !bind(c, &req) {
		return
	}
	order, err := h.deps.Orders.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), domain.PaymentStatus(req.Status))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handler) stats(c *gin.Context) {
	st, err := h.deps.Dashboard.Stats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
