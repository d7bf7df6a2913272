package service

import (
	"context"
	"fmt"

	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/agrocampo/campo-api/internal/repository"
	"github.com/agrocampo/campo-api/internal/validation"
	"go.uber.org/zap"
)

// ClientService orchestrates the submit path for client records: shape
// validation, cross-record checks, then persistence.
type ClientService struct {
	rules   *validation.Rules
	checker *validation.Checker
	repo    *repository.ClientRepository
	logger  *zap.Logger
}

func NewClientService(
	rules *validation.Rules,
	checker *validation.Checker,
	repo *repository.ClientRepository,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{rules: rules, checker: checker, repo: repo, logger: logger}
}

func (s *ClientService) Create(ctx context.Context, raw []byte) (*domain.Client, error) {
	client, err := s.rules.ParseClient(raw)
	if err != nil {
		return nil, err
	}
	client.ID = ""
	if err := s.checker.CheckClient(ctx, client); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.Info("client created",
		zap.String("client_id", client.ID),
		zap.String("name", client.Name))
	return client, nil
}

func (s *ClientService) Update(ctx context.Context, id string, raw []byte) (*domain.Client, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	client, err := s.rules.ParseClient(raw)
	if err != nil {
		return nil, err
	}
	client.ID = id
	client.CreatedAt = existing.CreatedAt

	if err := s.checker.CheckClient(ctx, client); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	s.logger.Info("client updated", zap.String("client_id", id))
	return client, nil
}

func (s *ClientService) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ClientService) List(ctx context.Context, page, pageSize int, onlyInvalid bool) (*domain.PaginatedResponse, error) {
	clients, total, err := s.repo.List(ctx, page, pageSize, onlyInvalid)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return paginated(clients, total, page, pageSize), nil
}
