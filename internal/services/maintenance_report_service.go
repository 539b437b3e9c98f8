package services

import (
	"context"

	"stayops-backend/internal/apperr"
	"stayops-backend/internal/models"
	"stayops-backend/internal/repositories"
)

// MaintenanceReportService tracks property issues. Reports reference but
// do not depend on tasks: deleting a task detaches its reports.
type MaintenanceReportService struct {
	store repositories.Store
}

func NewMaintenanceReportService(store repositories.Store) *MaintenanceReportService {
	return &MaintenanceReportService{store: store}
}

func (s *MaintenanceReportService) Create(ctx context.Context, actor models.Actor, req *models.CreateMaintenanceReportRequest) (*models.MaintenanceReport, error) {
	if req.Description == "" {
		return nil, apperr.Validation("a description is required")
	}
	if _, err := s.store.Properties().Get(ctx, req.PropertyID); err != nil {
		return nil, err
	}
	if req.TaskID != nil {
		if _, err := s.store.Tasks().Get(ctx, *req.TaskID); err != nil {
			return nil, err
		}
	}

	report := &models.MaintenanceReport{
		PropertyID:      req.PropertyID,
		TaskID:          req.TaskID,
		Description:     req.Description,
		Status:          "OPEN",
		CreatedByUserID: actor.UserID,
	}
	if err := s.store.Reports().Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *MaintenanceReportService) Get(ctx context.Context, id int) (*models.MaintenanceReport, error) {
	return s.store.Reports().Get(ctx, id)
}

func (s *MaintenanceReportService) List(ctx context.Context) ([]*models.MaintenanceReport, error) {
	return s.store.Reports().List(ctx)
}

func (s *MaintenanceReportService) UpdateStatus(ctx context.Context, actor models.Actor, id int, status string) (*models.MaintenanceReport, error) {
	if !actor.IsManager() {
		return nil, apperr.Forbidden("only managers can update report status")
	}
	switch status {
	case "OPEN", "IN_PROGRESS", "RESOLVED":
	default:
		return nil, apperr.Validation("unknown report status %q", status)
	}
	if err := s.store.Reports().UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.store.Reports().Get(ctx, id)
}
