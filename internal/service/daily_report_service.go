package service

import (
	"context"
	"fmt"

	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/agrocampo/campo-api/internal/repository"
	"github.com/agrocampo/campo-api/internal/validation"
	"go.uber.org/zap"
)

type DailyReportService struct {
	rules   *validation.Rules
	checker *validation.Checker
	repo    *repository.DailyReportRepository
	logger  *zap.Logger
}

func NewDailyReportService(
	rules *validation.Rules,
	checker *validation.Checker,
	repo *repository.DailyReportRepository,
	logger *zap.Logger,
) *DailyReportService {
	return &DailyReportService{rules: rules, checker: checker, repo: repo, logger: logger}
}

func (s *DailyReportService) Create(ctx context.Context, raw []byte) (*domain.DailyReport, error) {
	rep, err := s.rules.ParseDailyReport(raw)
	if err != nil {
		return nil, err
	}
	rep.ID = ""
	if err := s.checker.CheckDailyReport(ctx, rep); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rep); err != nil {
		return nil, fmt.Errorf("failed to create daily report: %w", err)
	}

	s.logger.Info("daily report created",
		zap.String("report_id", rep.ID),
		zap.String("service_id", rep.ServiceID),
		zap.Time("date", rep.Date.Time()))
	return rep, nil
}

func (s *DailyReportService) Update(ctx context.Context, id string, raw []byte) (*domain.DailyReport, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rep, err := s.rules.ParseDailyReport(raw)
	if err != nil {
		return nil, err
	}
	rep.ID = id
	rep.CreatedAt = existing.CreatedAt

	if err := s.checker.CheckDailyReport(ctx, rep); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rep); err != nil {
		return nil, fmt.Errorf("failed to update daily report: %w", err)
	}

	s.logger.Info("daily report updated", zap.String("report_id", id))
	return rep, nil
}

func (s *DailyReportService) GetByID(ctx context.Context, id string) (*domain.DailyReport, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByService returns every report filed for one service.
func (s *DailyReportService) ListByService(ctx context.Context, serviceID string) ([]domain.DailyReport, error) {
	return s.repo.ListByService(ctx, serviceID)
}

func (s *DailyReportService) List(ctx context.Context, page, pageSize int, onlyInvalid bool) (*domain.PaginatedResponse, error) {
	reps, total, err := s.repo.List(ctx, page, pageSize, onlyInvalid)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily reports: %w", err)
	}
	return paginated(reps, total, page, pageSize), nil
}
