package delivery

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CartView struct {
	Lines     domain.Cart          `json:"lines"`
	ItemCount int                  `json:"itemCount"`
	Pricing   usecase.PriceSummary `json:"pricing"`
}

type CartHandler struct {
	cart    usecase.CartUseCase
	menu    usecase.MenuUseCase
	pricing usecase.Pricing
	log     *logrus.Logger
}

func NewCartHandler(cart usecase.CartUseCase, menu usecase.MenuUseCase, pricing usecase.Pricing, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		cart:    cart,
		menu:    menu,
		pricing: pricing,
		log:     logger,
	}
}

func (h *CartHandler) RegisterRoutes(router gin.IRouter) {
	cart := router.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/items", h.AddItem)
		cart.PATCH("/items/:id", h.UpdateItem)
		cart.DELETE("/items/:id", h.RemoveItem)
	}
}

func (h *CartHandler) view(lines domain.Cart) CartView {
	summary := h.pricing.Summarize(lines)
	return CartView{
		Lines:     lines,
		ItemCount: summary.ItemCount,
		Pricing:   summary,
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	lines := h.cart.Lines(c.Request.Context())
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", h.view(lines))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var body struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.log.Warnf("Failed to bind JSON for add to cart: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	lines, err := h.menu.AddToCart(c.Request.Context(), body.ProductID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item added to cart", h.view(lines))
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var body struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Quantity == nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: quantity is required")
		return
	}

	lines, err := h.cart.UpdateQuantity(c.Request.Context(), c.Param("id"), *body.Quantity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart updated", h.view(lines))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	lines, err := h.cart.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item removed from cart", h.view(lines))
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	lines, err := h.cart.Clear(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart cleared", h.view(lines))
}
