package service

import (
	"context"
	"fmt"

	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/agrocampo/campo-api/internal/repository"
	"github.com/agrocampo/campo-api/internal/validation"
	"go.uber.org/zap"
)

type ServiceRequestService struct {
	rules   *validation.Rules
	checker *validation.Checker
	repo    *repository.ServiceRequestRepository
	logger  *zap.Logger
}

func NewServiceRequestService(
	rules *validation.Rules,
	checker *validation.Checker,
	repo *repository.ServiceRequestRepository,
	logger *zap.Logger,
) *ServiceRequestService {
	return &ServiceRequestService{rules: rules, checker: checker, repo: repo, logger: logger}
}

func (s *ServiceRequestService) Create(ctx context.Context, raw []byte) (*domain.ServiceRequest, error) {
	req, err := s.rules.ParseServiceRequest(raw)
	if err != nil {
		return nil, err
	}
	req.ID = ""
	if err := s.checker.CheckServiceRequest(ctx, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create service request: %w", err)
	}

	s.logger.Info("service request created",
		zap.String("request_id", req.ID),
		zap.String("client_id", req.ClientID),
		zap.String("service_type", string(req.ServiceType)))
	return req, nil
}

func (s *ServiceRequestService) Update(ctx context.Context, id string, raw []byte) (*domain.ServiceRequest, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req, err := s.rules.ParseServiceRequest(raw)
	if err != nil {
		return nil, err
	}
	req.ID = id
	req.CreatedAt = existing.CreatedAt

	if err := s.checker.CheckServiceRequest(ctx, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to update service request: %w", err)
	}

	s.logger.Info("service request updated", zap.String("request_id", id))
	return req, nil
}

func (s *ServiceRequestService) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ServiceRequestService) List(ctx context.Context, page, pageSize int, onlyInvalid bool) (*domain.PaginatedResponse, error) {
	reqs, total, err := s.repo.List(ctx, page, pageSize, onlyInvalid)
	if err != nil {
		return nil, fmt.Errorf("failed to list service requests: %w", err)
	}
	return paginated(reqs, total, page, pageSize), nil
}
