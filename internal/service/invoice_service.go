package service

import (
	"context"
	"fmt"

	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/agrocampo/campo-api/internal/repository"
	"github.com/agrocampo/campo-api/internal/validation"
	"go.uber.org/zap"
)

type InvoiceService struct {
	rules   *validation.Rules
	checker *validation.Checker
	repo    *repository.InvoiceRepository
	logger  *zap.Logger
}

func NewInvoiceService(
	rules *validation.Rules,
	checker *validation.Checker,
	repo *repository.InvoiceRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{rules: rules, checker: checker, repo: repo, logger: logger}
}

func (s *InvoiceService) Create(ctx context.Context, raw []byte) (*domain.Invoice, error) {
	inv, err := s.rules.ParseInvoice(raw)
	if err != nil {
		return nil, err
	}
	inv.ID = ""
	if err := s.checker.CheckInvoice(ctx, inv); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", inv.ID),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Float64("total", inv.Total))
	return inv, nil
}

func (s *InvoiceService) Update(ctx context.Context, id string, raw []byte) (*domain.Invoice, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	inv, err := s.rules.ParseInvoice(raw)
	if err != nil {
		return nil, err
	}
	inv.ID = id
	inv.CreatedAt = existing.CreatedAt

	if err := s.checker.CheckInvoice(ctx, inv); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	s.logger.Info("invoice updated", zap.String("invoice_id", id))
	return inv, nil
}

func (s *InvoiceService) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *InvoiceService) List(ctx context.Context, page, pageSize int, onlyInvalid bool) (*domain.PaginatedResponse, error) {
	invoices, total, err := s.repo.List(ctx, page, pageSize, onlyInvalid)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return paginated(invoices, total, page, pageSize), nil
}
