package delivery

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MenuHandler struct {
	useCase usecase.MenuUseCase
	log     *logrus.Logger
}

func NewMenuHandler(uc usecase.MenuUseCase, logger *logrus.Logger) *MenuHandler {
	return &MenuHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *MenuHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/menu", h.Browse)
}

func (h *MenuHandler) Browse(c *gin.Context) {
	view, err := h.useCase.Browse(c.Request.Context(), c.Query("category"), c.Query("search"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Menu retrieved successfully", view)
}
