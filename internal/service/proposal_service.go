package service

import (
	"context"
	"fmt"

	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/agrocampo/campo-api/internal/repository"
	"github.com/agrocampo/campo-api/internal/validation"
	"go.uber.org/zap"
)

type ProposalService struct {
	rules   *validation.Rules
	checker *validation.Checker
	repo    *repository.ProposalRepository
	logger  *zap.Logger
}

func NewProposalService(
	rules *validation.Rules,
	checker *validation.Checker,
	repo *repository.ProposalRepository,
	logger *zap.Logger,
) *ProposalService {
	return &ProposalService{rules: rules, checker: checker, repo: repo, logger: logger}
}

func (s *ProposalService) Create(ctx context.Context, raw []byte) (*domain.ServiceProposal, error) {
	p, err := s.rules.ParseServiceProposal(raw)
	if err != nil {
		return nil, err
	}
	p.ID = ""
	if err := s.checker.CheckServiceProposal(ctx, p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	s.logger.Info("proposal created",
		zap.String("proposal_id", p.ID),
		zap.String("service_id", p.ServiceID),
		zap.Float64("total", p.Pricing.Total))
	return p, nil
}

func (s *ProposalService) Update(ctx context.Context, id string, raw []byte) (*domain.ServiceProposal, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.rules.ParseServiceProposal(raw)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.CreatedAt = existing.CreatedAt

	if err := s.checker.CheckServiceProposal(ctx, p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update proposal: %w", err)
	}

	s.logger.Info("proposal updated", zap.String("proposal_id", id))
	return p, nil
}

func (s *ProposalService) GetByID(ctx context.Context, id string) (*domain.ServiceProposal, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProposalService) List(ctx context.Context, page, pageSize int, onlyInvalid bool) (*domain.PaginatedResponse, error) {
	proposals, total, err := s.repo.List(ctx, page, pageSize, onlyInvalid)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	return paginated(proposals, total, page, pageSize), nil
}
