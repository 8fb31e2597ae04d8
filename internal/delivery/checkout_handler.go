package delivery

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CheckoutHandler struct {
	useCase usecase.CheckoutUseCase
	log     *logrus.Logger
}

func NewCheckoutHandler(uc usecase.CheckoutUseCase, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CheckoutHandler) RegisterRoutes(router gin.IRouter) {
	checkout := router.Group("/checkout")
	{
		checkout.GET("", h.GetCheckout)
		checkout.PUT("/selection", h.UpdateSelection)
		checkout.POST("", h.Submit)
	}
}

// checkoutBody omits fields the user did not change. An empty addressMode
// keeps the current address choice.
type checkoutBody struct {
	AddressMode   domain.AddressMode    `json:"addressMode"`
	SavedIndex    *int                  `json:"savedIndex"`
	Manual        *domain.ManualAddress `json:"manual"`
	PaymentMethod domain.PaymentMethod  `json:"paymentMethod"`
}

func (b checkoutBody) request() usecase.CheckoutRequest {
	req := usecase.CheckoutRequest{PaymentMethod: b.PaymentMethod}
	if b.AddressMode == "" {
		return req
	}
	sel := domain.AddressSelection{Mode: b.AddressMode}
	sel.SavedIndex = domain.NoSelection
	if b.SavedIndex != nil {
		sel.SavedIndex = *b.SavedIndex
	}
	if b.Manual != nil {
		sel.Manual = *b.Manual
	}
	req.Selection = &sel
	return req
}

func (h *CheckoutHandler) bind(c *gin.Context) (usecase.CheckoutRequest, bool) {
	var body checkoutBody
	if c.Request.ContentLength == 0 {
		return body.request(), true
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.log.Warnf("Failed to bind JSON for checkout: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return usecase.CheckoutRequest{}, false
	}
	return body.request(), true
}

// GetCheckout loads saved addresses on the first visit, or when refresh=true.
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	var (
		view *usecase.CheckoutView
		err  error
	)
	if c.Query("refresh") == "true" {
		view, err = h.useCase.Load(c.Request.Context())
	} else {
		view, err = h.useCase.View(c.Request.Context())
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Checkout retrieved successfully", view)
}

func (h *CheckoutHandler) UpdateSelection(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	view, err := h.useCase.UpdateSelection(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Checkout selection updated", view)
}

func (h *CheckoutHandler) Submit(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.useCase.Submit(c.Request.Context(), req)
	switch {
	case err != nil:
		if !errors.Is(err, domain.ErrSubmissionInProgress) {
			h.log.Warnf("Checkout submit failed: %v", err)
		}
		respondError(c, h.log, err)
	case result.RedirectTo != "":
		c.JSON(http.StatusOK, Response{
			Status:     "Fail",
			Message:    domain.ErrAuthRequired.Error(),
			Data:       result,
			RedirectTo: result.RedirectTo,
		})
	case result.CartEmpty:
		SuccessResponse(c, http.StatusOK, "Cart is empty, nothing to submit", result)
	default:
		h.log.Infof("Order %s placed", result.OrderID)
		SuccessResponse(c, http.StatusCreated, "Order placed successfully", result)
	}
}
