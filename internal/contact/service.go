package contact

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/hlefebvre/coliving-backend/internal/auditlog"
	"github.com/hlefebvre/coliving-backend/internal/auth"
	"github.com/hlefebvre/coliving-backend/utils"
)

type PaginatedContacts struct {
	Data       []Contact `json:"data"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

type Service interface {
	SubmitContact(ctx context.Context, req CreateContactRequest, ip string) (*Contact, error)
	UpdateContact(ctx context.Context, id uint, req UpdateContactRequest, userID uint, ip string) (*Contact, error)
	DeleteContact(ctx context.Context, id uint, userID uint, ip string) error
	GetContact(ctx context.Context, id uint) (*Contact, error)
	ListContacts(ctx context.Context, filter ListFilter) (*PaginatedContacts, error)
	CountNew(ctx context.Context) (int64, error)
}

type service struct {
	repo     Repository
	authRepo auth.Repository
	auditSvc auditlog.Service
}

func NewService(repo Repository, authRepo auth.Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, authRepo: authRepo, auditSvc: auditSvc}
}

// SubmitContact stores a public contact form message and notifies the staff
// by email, best effort.
func (s *service) SubmitContact(ctx context.Context, req CreateContactRequest, ip string) (*Contact, error) {
	ct := &Contact{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		Status:    StatusNew,
	}

	if err := s.repo.Create(ctx, ct); err != nil {
		s.auditSvc.LogAction(ctx, nil, "contact_submit", map[string]interface{}{"email": req.Email, "error": err.Error()}, ip, "failure")
		return nil, fmt.Errorf("failed to save contact message: %w", err)
	}

	log.Printf("✅ Contact message %d received from %s", ct.ID, ct.Email)
	s.auditSvc.LogAction(ctx, nil, "contact_submit", map[string]interface{}{"contact_id": ct.ID, "email": ct.Email}, ip, "success")

	go s.notifyStaff(ct)
	return ct, nil
}

func (s *service) notifyStaff(ct *Contact) {
	emails, err := s.authRepo.GetUserEmailsByRole(auth.RoleAdmin)
	if err != nil || len(emails) == 0 {
		return
	}
	subject := "Nouveau message de contact"
	body := fmt.Sprintf(
		"<p>Nouveau message de <strong>%s %s</strong> (%s)</p><p>Sujet : %s</p><p>%s</p>",
		ct.FirstName, ct.LastName, ct.Email, ct.Subject, ct.Message,
	)
	for _, to := range emails {
		if err := utils.SendEmail(to, subject, body); err != nil {
			log.Printf("⚠️ Failed to notify %s about contact %d: %v", to, ct.ID, err)
		}
	}
}

func (s *service) UpdateContact(ctx context.Context, id uint, req UpdateContactRequest, userID uint, ip string) (*Contact, error) {
	ct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("contact not found: %w", err)
	}

	if req.Status != nil {
		ct.Status = *req.Status
	}
	if req.Notes != nil {
		ct.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, ct); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "contact_update", map[string]interface{}{"contact_id": id, "error": err.Error()}, ip, "failure")
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, "contact_update", map[string]interface{}{"contact_id": id, "status": ct.Status}, ip, "success")
	return ct, nil
}

func (s *service) DeleteContact(ctx context.Context, id uint, userID uint, ip string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("contact not found: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "contact_delete", map[string]interface{}{"contact_id": id, "error": err.Error()}, ip, "failure")
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, "contact_delete", map[string]interface{}{"contact_id": id}, ip, "success")
	return nil
}

func (s *service) GetContact(ctx context.Context, id uint) (*Contact, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListContacts(ctx context.Context, filter ListFilter) (*PaginatedContacts, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	contacts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	return &PaginatedContacts{
		Data:       contacts,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *service) CountNew(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, StatusNew)
}
