package delivery

import (
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	useCase usecase.AdminUseCase
	session middleware.SessionSource
	log     *logrus.Logger
}

func NewAdminHandler(uc usecase.AdminUseCase, session middleware.SessionSource, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		useCase: uc,
		session: session,
		log:     logger,
	}
}

func (h *AdminHandler) RegisterRoutes(router gin.IRouter) {
	admin := router.Group("/admin",
		middleware.RequireSession(h.session, h.log),
		middleware.RequireAdmin(h.session, h.log),
	)
	{
		admin.GET("/stats", h.Stats)
		admin.GET("/products", h.ListProducts)
		admin.POST("/products", h.CreateProduct)
		admin.GET("/products/export", h.ExportProducts)
		admin.POST("/products/import", h.ImportProducts)
		admin.PUT("/products/:id", h.UpdateProduct)
		admin.DELETE("/products/:id", h.DeleteProduct)
		admin.GET("/orders", h.ListOrders)
		admin.PUT("/orders/:id/status", h.UpdateOrderStatus)
	}
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.useCase.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Stats retrieved successfully", stats)
}

func (h *AdminHandler) ListProducts(c *gin.Context) {
	query := domain.ProductQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Page:     pageParam(c),
	}
	products, err := h.useCase.ListProducts(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var input domain.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	product, err := h.useCase.CreateProduct(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Product created successfully", product)
}

func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	var input domain.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	product, err := h.useCase.UpdateProduct(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product updated successfully", product)
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	if err := h.useCase.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product deactivated", nil)
}

func (h *AdminHandler) ExportProducts(c *gin.Context) {
	products, err := h.useCase.ListProducts(c.Request.Context(), domain.ProductQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=products.xlsx")
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")
	c.Status(http.StatusOK)

	if err := writeProductsWorkbook(c.Writer, products); err != nil {
		h.log.Errorf("Failed to write product export: %v", err)
		_ = c.Error(err)
		return
	}
	h.log.Infof("Exported %d products", len(products))
}

func (h *AdminHandler) ImportProducts(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Excel file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.log.Errorf("Failed to open uploaded workbook: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Failed to open Excel file")
		return
	}
	defer file.Close()

	rows, skipped, err := readProductsWorkbook(file, header.Size)
	if err != nil {
		if domain.IsValidationError(err) {
			respondError(c, h.log, err)
			return
		}
		h.log.Warnf("Failed to parse uploaded workbook: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Failed to parse Excel file")
		return
	}

	summary, err := h.useCase.ImportProducts(c.Request.Context(), rows)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	summary.Skipped += skipped
	SuccessResponse(c, http.StatusOK, "Import completed", summary)
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	orders, err := h.useCase.ListOrders(c.Request.Context(), c.Query("status"), pageParam(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	var body struct {
		Status domain.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	order, err := h.useCase.UpdateOrderStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order status updated", order)
}
