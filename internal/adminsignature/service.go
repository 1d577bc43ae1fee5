package adminsignature

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/hlefebvre/coliving-backend/internal/auditlog"
)

var ErrInvalidImage = errors.New("signature_data must be a base64 encoded image")

type Service interface {
	CreateSignature(ctx context.Context, req CreateSignatureRequest, userID uint, ip string) (*AdminSignature, error)
	UpdateSignature(ctx context.Context, id uint, req UpdateSignatureRequest, userID uint, ip string) (*AdminSignature, error)
	DeleteSignature(ctx context.Context, id uint, userID uint, ip string) error
	GetSignature(ctx context.Context, id uint) (*AdminSignature, error)
	GetDefaultSignature(ctx context.Context) (*AdminSignature, error)
	ListSignatures(ctx context.Context) ([]AdminSignature, error)
	SetDefaultSignature(ctx context.Context, id uint, userID uint, ip string) error
}

type service struct {
	repo     Repository
	auditSvc auditlog.Service
}

func NewService(repo Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, auditSvc: auditSvc}
}

// validateImageData accepts raw base64 or a data URL.
func validateImageData(data string) error {
	payload := data
	if strings.HasPrefix(data, "data:image/") {
		idx := strings.Index(data, ",")
		if idx < 0 {
			return ErrInvalidImage
		}
		payload = data[idx+1:]
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return ErrInvalidImage
	}
	return nil
}

func (s *service) CreateSignature(ctx context.Context, req CreateSignatureRequest, userID uint, ip string) (*AdminSignature, error) {
	if err := validateImageData(req.SignatureData); err != nil {
		return nil, err
	}

	sig := &AdminSignature{
		Name:          req.Name,
		Description:   req.Description,
		SignatureData: req.SignatureData,
		CreatedBy:     userID,
	}

	if err := s.repo.Create(ctx, sig); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "signature_create", map[string]interface{}{"name": req.Name, "error": err.Error()}, ip, "failure")
		return nil, fmt.Errorf("failed to create signature: %w", err)
	}

	if req.IsDefault {
		if err := s.repo.SetDefault(ctx, sig.ID); err != nil {
			return nil, fmt.Errorf("failed to set default signature: %w", err)
		}
		sig.IsDefault = true
	}

	log.Printf("✅ Admin signature %d created (%s)", sig.ID, sig.Name)
	s.auditSvc.LogAction(ctx, &userID, "signature_create", map[string]interface{}{"signature_id": sig.ID, "name": sig.Name}, ip, "success")
	return sig, nil
}

func (s *service) UpdateSignature(ctx context.Context, id uint, req UpdateSignatureRequest, userID uint, ip string) (*AdminSignature, error) {
	sig, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("signature not found: %w", err)
	}

	if req.Name != nil {
		sig.Name = *req.Name
	}
	if req.Description != nil {
		sig.Description = *req.Description
	}
	if req.SignatureData != nil {
		if err := validateImageData(*req.SignatureData); err != nil {
			return nil, err
		}
		sig.SignatureData = *req.SignatureData
	}

	if err := s.repo.Update(ctx, sig); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "signature_update", map[string]interface{}{"signature_id": id, "error": err.Error()}, ip, "failure")
		return nil, fmt.Errorf("failed to update signature: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, "signature_update", map[string]interface{}{"signature_id": id}, ip, "success")
	return sig, nil
}

func (s *service) DeleteSignature(ctx context.Context, id uint, userID uint, ip string) error {
	sig, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("signature not found: %w", err)
	}
	if sig.IsDefault {
		return fmt.Errorf("La signature par défaut ne peut pas être supprimée")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "signature_delete", map[string]interface{}{"signature_id": id, "error": err.Error()}, ip, "failure")
		return fmt.Errorf("failed to delete signature: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, "signature_delete", map[string]interface{}{"signature_id": id}, ip, "success")
	return nil
}

func (s *service) GetSignature(ctx context.Context, id uint) (*AdminSignature, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetDefaultSignature(ctx context.Context) (*AdminSignature, error) {
	sig, err := s.repo.GetDefault(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no default signature configured")
		}
		return nil, err
	}
	return sig, nil
}

func (s *service) ListSignatures(ctx context.Context) ([]AdminSignature, error) {
	return s.repo.List(ctx)
}

func (s *service) SetDefaultSignature(ctx context.Context, id uint, userID uint, ip string) error {
	if err := s.repo.SetDefault(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("signature not found")
		}
		s.auditSvc.LogAction(ctx, &userID, "signature_set_default", map[string]interface{}{"signature_id": id, "error": err.Error()}, ip, "failure")
		return fmt.Errorf("failed to set default signature: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, "signature_set_default", map[string]interface{}{"signature_id": id}, ip, "success")
	return nil
}
