package contracttemplate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"gorm.io/gorm"

	"github.com/hlefebvre/coliving-backend/internal/auditlog"
)

// ErrTemplateInUse blocks deleting the default template.
var ErrTemplateInUse = errors.New("Le modèle par défaut ne peut pas être supprimé")

type PaginatedTemplates struct {
	Data       []ContractTemplate `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type Service interface {
	CreateTemplate(ctx context.Context, req CreateTemplateRequest, userID uint, ip string) (*ContractTemplate, error)
	UpdateTemplate(ctx context.Context, id uint, req UpdateTemplateRequest, userID uint, ip string) (*ContractTemplate, error)
	DeleteTemplate(ctx context.Context, id uint, userID uint, ip string) error
	GetTemplate(ctx context.Context, id uint) (*ContractTemplate, error)
	GetDefaultTemplate(ctx context.Context) (*ContractTemplate, error)
	ListTemplates(ctx context.Context, filter ListFilter) (*PaginatedTemplates, error)
	SetDefaultTemplate(ctx context.Context, id uint, userID uint, ip string) error
	Preview(req PreviewRequest) string
}

type service struct {
	repo     Repository
	auditSvc auditlog.Service
}

func NewService(repo Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, auditSvc: auditSvc}
}

func (s *service) CreateTemplate(ctx context.Context, req CreateTemplateRequest, userID uint, ip string) (*ContractTemplate, error) {
	t := &ContractTemplate{
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
		IsActive:    true,
		CreatedBy:   userID,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "template_create", map[string]interface{}{"name": req.Name, "error": err.Error()}, ip, "failure")
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	if req.IsDefault {
		if err := s.repo.SetDefault(ctx, t.ID); err != nil {
			return nil, fmt.Errorf("failed to set default template: %w", err)
		}
		t.IsDefault = true
	}

	log.Printf("✅ Contract template %d created (%s)", t.ID, t.Name)
	s.auditSvc.LogAction(ctx, &userID, "template_create", map[string]interface{}{"template_id": t.ID, "name": t.Name}, ip, "success")
	return t, nil
}

func (s *service) UpdateTemplate(ctx context.Context, id uint, req UpdateTemplateRequest, userID uint, ip string) (*ContractTemplate, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Content != nil {
		t.Content = *req.Content
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, t); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "template_update", map[string]interface{}{"template_id": id, "error": err.Error()}, ip, "failure")
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, "template_update", map[string]interface{}{"template_id": id}, ip, "success")
	return t, nil
}

func (s *service) DeleteTemplate(ctx context.Context, id uint, userID uint, ip string) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("template not found: %w", err)
	}
	if t.IsDefault {
		return ErrTemplateInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "template_delete", map[string]interface{}{"template_id": id, "error": err.Error()}, ip, "failure")
		return fmt.Errorf("failed to delete template: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, "template_delete", map[string]interface{}{"template_id": id}, ip, "success")
	return nil
}

func (s *service) GetTemplate(ctx context.Context, id uint) (*ContractTemplate, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetDefaultTemplate(ctx context.Context) (*ContractTemplate, error) {
	t, err := s.repo.GetDefault(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no default template configured")
		}
		return nil, err
	}
	return t, nil
}

func (s *service) ListTemplates(ctx context.Context, filter ListFilter) (*PaginatedTemplates, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	templates, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	return &PaginatedTemplates{
		Data:       templates,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *service) SetDefaultTemplate(ctx context.Context, id uint, userID uint, ip string) error {
	if err := s.repo.SetDefault(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("template not found")
		}
		s.auditSvc.LogAction(ctx, &userID, "template_set_default", map[string]interface{}{"template_id": id, "error": err.Error()}, ip, "failure")
		return fmt.Errorf("failed to set default template: %w", err)
	}

	log.Printf("✅ Template %d is now the default", id)
	s.auditSvc.LogAction(ctx, &userID, "template_set_default", map[string]interface{}{"template_id": id}, ip, "success")
	return nil
}

func (s *service) Preview(req PreviewRequest) string {
	return Render(req.Content, req.Context)
}
