package usecase

import (
	"context"
	"strings"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

// AdminUseCase is available only to sessions whose cached role is admin.
type AdminUseCase interface {
	Stats(ctx context.Context) (*domain.AdminStats, error)
	ListProducts(ctx context.Context, query domain.ProductQuery) ([]domain.Product, error)
	CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, input domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListOrders(ctx context.Context, statusFilter string, page int) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	ImportProducts(ctx context.Context, rows []ProductImportRow) (*ImportSummary, error)
}

// ProductImportRow is one spreadsheet row. A non-empty ID updates that product.
type ProductImportRow struct {
	ID    string
	Input domain.ProductInput
}

type ImportSummary struct {
	Created int `json:"created_count"`
	Updated int `json:"updated_count"`
	Skipped int `json:"skipped_count"`
}

type adminUseCase struct {
	session SessionUseCase
	admin   domain.AdminService
	log     *logrus.Logger
}

func NewAdminUseCase(session SessionUseCase, admin domain.AdminService, logger *logrus.Logger) AdminUseCase {
	return &adminUseCase{
		session: session,
		admin:   admin,
		log:     logger,
	}
}

func (uc *adminUseCase) guard(ctx context.Context) error {
	s := uc.session.Current(ctx)
	if !s.Active() {
		return domain.ErrAuthRequired
	}
	if !s.User.IsAdmin() {
		uc.log.Warn("Use Case: Non-admin session attempted an admin operation")
		return domain.ErrForbidden
	}
	return nil
}

func validateProduct(input domain.ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return domain.NewValidationError("name", "product name cannot be empty")
	}
	if !input.Price.IsPositive() {
		return domain.NewValidationError("price", "product price must be positive")
	}
	if input.Stock < 0 {
		return domain.NewValidationError("stock", "product stock cannot be negative")
	}
	if strings.TrimSpace(input.Category) == "" {
		return domain.NewValidationError("category", "product category is required")
	}
	return nil
}

func (uc *adminUseCase) Stats(ctx context.Context) (*domain.AdminStats, error) {
	if err := uc.guard(ctx); err != nil {
		return nil, err
	}
	return uc.admin.GetStats(ctx)
}

func (uc *adminUseCase) ListProducts(ctx context.Context, query domain.ProductQuery) ([]domain.Product, error) {
	if err := uc.guard(ctx); err != nil {
		return nil, err
	}
	return uc.admin.ListProducts(ctx, query)
}

func (uc *adminUseCase) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	if err := uc.guard(ctx); err != nil {
		return nil, err
	}
	if err := validateProduct(input); err != nil {
		uc.log.Warnf("Use Case: Product create rejected: %v", err)
		return nil, err
	}
	product, err := uc.admin.CreateProduct(ctx, input)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to create product %q: %v", input.Name, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Product %s created", product.ID)
	return product, nil
}

func (uc *adminUseCase) UpdateProduct(ctx context.Context, id string, input domain.ProductInput) (*domain.Product, error) {
	if err := uc.guard(ctx); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.NewValidationError("id", "product id is required")
	}
	if err := validateProduct(input); err != nil {
		uc.log.Warnf("Use Case: Product update rejected: %v", err)
		return nil, err
	}
	product, err := uc.admin.UpdateProduct(ctx, id, input)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to update product %s: %v", id, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Product %s updated", id)
	return product, nil
}

// DeleteProduct deactivates the product on the backend.
func (uc *adminUseCase) DeleteProduct(ctx context.Context, id string) error {
	if err := uc.guard(ctx); err != nil {
		return err
	}
	if id == "" {
		return domain.NewValidationError("id", "product id is required")
	}
	if err := uc.admin.DeleteProduct(ctx, id); err != nil {
		uc.log.Errorf("Use Case: Failed to deactivate product %s: %v", id, err)
		return err
	}
	uc.log.Infof("Use Case: Product %s deactivated", id)
	return nil
}

func (uc *adminUseCase) ListOrders(ctx context.Context, statusFilter string, page int) ([]domain.Order, error) {
	if err := uc.guard(ctx); err != nil {
		return nil, err
	}
	status, err := parseStatusFilter(statusFilter)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	return uc.admin.ListOrders(ctx, domain.AdminOrderQuery{Status: status, Page: page})
}

func (uc *adminUseCase) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if err := uc.guard(ctx); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.NewValidationError("id", "order id is required")
	}
	if !domain.IsValidStatus(status) {
		return nil, domain.NewValidationError("status", "unknown order status: "+string(status))
	}
	order, err := uc.admin.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to update order %s status: %v", id, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Order %s status set to %s", id, status)
	return order, nil
}

// ImportProducts applies rows one by one. Invalid or rejected rows are
// skipped and counted; the import never stops part way.
func (uc *adminUseCase) ImportProducts(ctx context.Context, rows []ProductImportRow) (*ImportSummary, error) {
	if err := uc.guard(ctx); err != nil {
		return nil, err
	}

	summary := &ImportSummary{}
	for i, row := range rows {
		if err := validateProduct(row.Input); err != nil {
			uc.log.Warnf("Use Case: Import row %d skipped: %v", i+1, err)
			summary.Skipped++
			continue
		}
		if row.ID != "" {
			if _, err := uc.admin.UpdateProduct(ctx, row.ID, row.Input); err != nil {
				uc.log.Warnf("Use Case: Import row %d update of %s failed: %v", i+1, row.ID, err)
				summary.Skipped++
				continue
			}
			summary.Updated++
			continue
		}
		if _, err := uc.admin.CreateProduct(ctx, row.Input); err != nil {
			uc.log.Warnf("Use Case: Import row %d create failed: %v", i+1, err)
			summary.Skipped++
			continue
		}
		summary.Created++
	}

	uc.log.Infof("Use Case: Product import finished: %d created, %d updated, %d skipped",
		summary.Created, summary.Updated, summary.Skipped)
	return summary, nil
}
