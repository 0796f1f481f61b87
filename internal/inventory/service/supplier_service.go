package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
)

// SupplierService 供应商服务
type SupplierService struct {
	repos  *repository.Repositories
	notify *notifier
}

func NewSupplierService(repos *repository.Repositories, n *notifier) *SupplierService {
	return &SupplierService{repos: repos, notify: n}
}

type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	PaymentTerms  string `json:"payment_terms"`
}

type UpdateSupplierRequest struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	PaymentTerms  *string `json:"payment_terms"`
}

func (s *SupplierService) List(ctx context.Context, search string) ([]entity.Supplier, error) {
	suppliers, err := s.repos.Supplier.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return analytics.FilterSuppliers(suppliers, search), nil
}

func (s *SupplierService) Get(ctx context.Context, id uint) (*entity.Supplier, error) {
	supplier, err := s.repos.Supplier.Get(ctx, id)
	if err != nil {
		return nil, wrapNotFound("supplier", id, err)
	}
	return supplier, nil
}

func validateSupplier(sup *entity.Supplier) error {
	if strings.TrimSpace(sup.Name) == "" {
		return validationErrorf("name is required")
	}
	if sup.Email != "" {
		if _, err := mail.ParseAddress(sup.Email); err != nil {
			return validationErrorf("invalid email %q", sup.Email)
		}
	}
	if !entity.IsValidPaymentTerms(sup.PaymentTerms) {
		return validationErrorf("payment_terms must be one of %s", strings.Join(entity.PaymentTermsList, ", "))
	}
	return nil
}

// Create 创建供应商，未指定付款条件时默认 Net 30
func (s *SupplierService) Create(ctx context.Context, req *CreateSupplierRequest) (*entity.Supplier, error) {
	sup := &entity.Supplier{
		Name:          strings.TrimSpace(req.Name),
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		Address:       strings.TrimSpace(req.Address),
		PaymentTerms:  req.PaymentTerms,
	}
	if sup.PaymentTerms == "" {
		sup.PaymentTerms = entity.PaymentTermsNet30
	}
	if err := validateSupplier(sup); err != nil {
		return nil, err
	}
	if err := s.repos.Supplier.Create(ctx, sup); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	s.notify.changed(ctx)
	return sup, nil
}

func (s *SupplierService) Update(ctx context.Context, id uint, req *UpdateSupplierRequest) (*entity.Supplier, error) {
	sup, err := s.repos.Supplier.Get(ctx, id)
	if err != nil {
		return nil, wrapNotFound("supplier", id, err)
	}

	// 更新字段
	if req.Name != nil {
		sup.Name = strings.TrimSpace(*req.Name)
	}
	if req.ContactPerson != nil {
		sup.ContactPerson = strings.TrimSpace(*req.ContactPerson)
	}
	if req.Email != nil {
		sup.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		sup.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		sup.Address = strings.TrimSpace(*req.Address)
	}
	if req.PaymentTerms != nil {
		sup.PaymentTerms = *req.PaymentTerms
	}
	if err := validateSupplier(sup); err != nil {
		return nil, err
	}

	if err := s.repos.Supplier.Update(ctx, sup); err != nil {
		return nil, wrapNotFound("supplier", id, err)
	}
	s.notify.changed(ctx)
	return sup, nil
}

// Delete removes the supplier. Products keep their dangling supplier id.
func (s *SupplierService) Delete(ctx context.Context, id uint) error {
	if err := s.repos.Supplier.Delete(ctx, id); err != nil {
		return wrapNotFound("supplier", id, err)
	}
	s.notify.changed(ctx)
	return nil
}
