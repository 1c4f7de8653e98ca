package service

import (
	"context"
	"fmt"

	"docvault/internal/apperr"
	"docvault/internal/config"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/pkg/util"
)

// DepartmentService manages the department catalogue
type DepartmentService struct {
	repo repository.IDepartmentRepository
}

func NewDepartmentService(repo repository.IDepartmentRepository) *DepartmentService {
	return &DepartmentService{repo: repo}
}

// List returns every department sorted by name
func (s *DepartmentService) List(ctx context.Context) ([]*model.Department, error) {
	deps, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return deps, nil
}

// Create adds a department. Names are unique.
func (s *DepartmentService) Create(ctx context.Context, req model.CreateDepartmentRequest) (*model.Department, error) {
	name, err := required(req.Name, "name")
	if err != nil {
		return nil, err
	}
	if err := checkLength(name, "name", config.MaxNameLength); err != nil {
		return nil, err
	}
	if req.Color != "" && !util.IsHexColor(req.Color) {
		return nil, apperr.Validation("color must be a hex color like #1E40AF")
	}

	dep, err := s.repo.Create(ctx, &model.Department{
		Name:        name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
	})
	if err != nil {
		return nil, storeErr(err, "create", "department")
	}
	return dep, nil
}
