package service

import (
	"context"

	"bookameal/internal/dal"
	"bookameal/internal/models"

	"go.uber.org/zap"
)

type ReportService interface {
	// GetStockReport reconciles every menu item's counter with the active
	// orders referencing it. Caterers only.
	GetStockReport(ctx context.Context, principal models.Principal) (*models.StockReport, error)
}

type reportService struct {
	repo   dal.ReportRepository
	logger *zap.Logger
}

func NewReportService(repo dal.ReportRepository, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

func (s *reportService) GetStockReport(ctx context.Context, principal models.Principal) (*models.StockReport, error) {
	if err := RequireCaterer(principal); err != nil {
		return nil, err
	}
	lines, err := s.repo.GetStockReport(ctx)
	if err != nil {
		return nil, err
	}

	report := &models.StockReport{Lines: lines}
	for _, line := range lines {
		if line.Consistent {
			continue
		}
		report.Inconsistent++
		s.logger.Warn("menu item stock out of balance",
			zap.Int("menu_item_id", line.MenuItemID),
			zap.Int("quantity", line.Quantity),
			zap.Int("quantity_available", line.QuantityAvailable),
			zap.Int("active_quantity", line.ActiveQuantity),
		)
	}
	return report, nil
}
