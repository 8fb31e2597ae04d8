package delivery

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	useCase usecase.OrderUseCase
	session middleware.SessionSource
	log     *logrus.Logger
}

func NewOrderHandler(uc usecase.OrderUseCase, session middleware.SessionSource, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		session: session,
		log:     logger,
	}
}

func (h *OrderHandler) RegisterRoutes(router gin.IRouter) {
	orders := router.Group("/orders", middleware.RequireSession(h.session, h.log))
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrderByID)
	}
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.useCase.ListMyOrders(c.Request.Context(), c.DefaultQuery("status", usecase.AllStatuses))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	order, err := h.useCase.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}
