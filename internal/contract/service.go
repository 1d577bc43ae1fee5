package contract

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hlefebvre/coliving-backend/config"
	"github.com/hlefebvre/coliving-backend/internal/adminsignature"
	"github.com/hlefebvre/coliving-backend/internal/auditlog"
	"github.com/hlefebvre/coliving-backend/internal/booking"
	"github.com/hlefebvre/coliving-backend/internal/contracttemplate"
	"github.com/hlefebvre/coliving-backend/utils"
)

var (
	ErrAlreadySigned     = errors.New("Ce contrat a déjà été signé par ce signataire")
	ErrInvalidTransition = errors.New("Transition de statut invalide")
	ErrNotEditable       = errors.New("Seuls les contrats en brouillon peuvent être modifiés")
	ErrTermsNotAccepted  = errors.New("Vous devez accepter les conditions pour signer")
)

type PaginatedContracts struct {
	Data       []Contract `json:"data"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}

// SigningView is what the public signing page sees after token verification.
type SigningView struct {
	Contract      *Contract `json:"contract"`
	SignerName    string    `json:"signer_name"`
	SignerEmail   string    `json:"signer_email"`
	SignerRole    string    `json:"signer_role"`
	AlreadySigned bool      `json:"already_signed"`
}

type Service interface {
	CreateContract(ctx context.Context, req CreateContractRequest, userID uint, ip string) (*Contract, error)
	UpdateContract(ctx context.Context, id uint, req UpdateContractRequest, userID uint, ip string) (*Contract, error)
	DeleteContract(ctx context.Context, id uint, userID uint, ip string) error
	GetContract(ctx context.Context, id uint) (*Contract, error)
	ListContracts(ctx context.Context, filter ListFilter) (*PaginatedContracts, error)
	TransitionStatus(ctx context.Context, id uint, status string, userID uint, ip string) (*Contract, error)
	SendForSignature(ctx context.Context, id uint, req SendRequest, userID uint, ip string) error
	GetSigningView(ctx context.Context, token string) (*SigningView, error)
	Sign(ctx context.Context, token string, req SignRequest, ip string) (*Contract, error)
	GeneratePDFFile(ctx context.Context, id uint, userID uint, ip string) ([]byte, string, error)
	ExpireStaleContracts(ctx context.Context) (int64, error)
}

type service struct {
	repo         Repository
	bookingRepo  booking.Repository
	templateSvc  contracttemplate.Service
	signatureSvc adminsignature.Service
	cfg          *config.Config
	auditSvc     auditlog.Service
}

func NewService(repo Repository, bookingRepo booking.Repository, templateSvc contracttemplate.Service, signatureSvc adminsignature.Service, cfg *config.Config, auditSvc auditlog.Service) Service {
	return &service{
		repo:         repo,
		bookingRepo:  bookingRepo,
		templateSvc:  templateSvc,
		signatureSvc: signatureSvc,
		cfg:          cfg,
		auditSvc:     auditSvc,
	}
}

func generateContractNumber() string {
	return fmt.Sprintf("CL-%d-%s", time.Now().Year(), uuid.NewString()[:8])
}

// allowedTransition encodes the forward-only contract lifecycle with its two
// side exits.
func allowedTransition(from, to string) bool {
	switch from {
	case StatusDraft:
		return to == StatusPending
	case StatusPending:
		return to == StatusSent
	case StatusSent:
		return to == StatusSigned || to == StatusExpired
	case StatusSigned:
		return to == StatusActive
	case StatusActive:
		return to == StatusExpired || to == StatusTerminated
	}
	return false
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// buildContext maps the template token vocabulary to a booking's values.
func buildContext(b *booking.Booking, ct *Contract) map[string]string {
	context := map[string]string{
		"TENANT_FIRSTNAME": b.TenantFirstName,
		"TENANT_LASTNAME":  b.TenantLastName,
		"TENANT_FULLNAME":  strings.TrimSpace(b.TenantFirstName + " " + b.TenantLastName),
		"TENANT_EMAIL":     b.TenantEmail,
		"TENANT_PHONE":     b.TenantPhone,

		"ROOM_NUMBER":      fmt.Sprintf("%d", b.Room.Number),
		"ROOM_NAME":        b.Room.Name,
		"ROOM_SURFACE":     fmt.Sprintf("%.1f", b.Room.Surface),
		"ROOM_FLOOR":       fmt.Sprintf("%d", b.Room.Floor),
		"MONTHLY_RENT":     formatAmount(ct.MonthlyRent),
		"SECURITY_DEPOSIT": formatAmount(ct.Deposit),
		"CHARGES":          formatAmount(ct.Charges),

		"START_DATE":      formatDate(ct.StartDate),
		"CURRENT_DATE":    formatDate(time.Now()),
		"CONTRACT_NUMBER": ct.ContractNumber,
	}
	if ct.EndDate != nil {
		context["END_DATE"] = formatDate(*ct.EndDate)
	}
	return context
}

// CreateContract builds a DRAFT contract from a booking and a template. The
// body is rendered at creation time; unresolved tokens stay visible so the
// admin can fill gaps before sending.
func (s *service) CreateContract(ctx context.Context, req CreateContractRequest, userID uint, ip string) (*Contract, error) {
	b, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("booking not found: %w", err)
	}
	if b.Status == booking.StatusCancelled {
		return nil, fmt.Errorf("cancelled bookings cannot be contracted")
	}

	var tmpl *contracttemplate.ContractTemplate
	if req.TemplateID != nil {
		tmpl, err = s.templateSvc.GetTemplate(ctx, *req.TemplateID)
	} else {
		tmpl, err = s.templateSvc.GetDefaultTemplate(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}

	charges := 0.0
	if req.Charges != nil {
		charges = *req.Charges
	}

	ct := &Contract{
		ContractNumber: generateContractNumber(),
		BookingID:      b.ID,
		TemplateID:     &tmpl.ID,
		MonthlyRent:    b.MonthlyRent,
		Deposit:        b.SecurityDeposit,
		Charges:        charges,
		StartDate:      b.StartDate,
		EndDate:        b.EndDate,
		Status:         StatusDraft,
		CreatedBy:      userID,
	}
	ct.Content = contracttemplate.Render(tmpl.Content, buildContext(b, ct))

	if err := s.repo.Create(ctx, ct); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "contract_create", map[string]interface{}{"booking_id": b.ID, "error": err.Error()}, ip, "failure")
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}

	log.Printf("✅ Contract %s created for booking %d", ct.ContractNumber, b.ID)
	s.auditSvc.LogAction(ctx, &userID, "contract_create", map[string]interface{}{"contract_id": ct.ID, "contract_number": ct.ContractNumber, "booking_id": b.ID}, ip, "success")
	ct.Booking = *b
	return ct, nil
}

func (s *service) UpdateContract(ctx context.Context, id uint, req UpdateContractRequest, userID uint, ip string) (*Contract, error) {
	ct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("contract not found: %w", err)
	}
	if ct.Status != StatusDraft && ct.Status != StatusPending {
		return nil, ErrNotEditable
	}

	if req.MonthlyRent != nil {
		ct.MonthlyRent = *req.MonthlyRent
	}
	if req.Deposit != nil {
		ct.Deposit = *req.Deposit
	}
	if req.Charges != nil {
		ct.Charges = *req.Charges
	}
	if req.Content != nil {
		ct.Content = *req.Content
	}

	if err := s.repo.Update(ctx, ct); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "contract_update", map[string]interface{}{"contract_id": id, "error": err.Error()}, ip, "failure")
		return nil, fmt.Errorf("failed to update contract: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, "contract_update", map[string]interface{}{"contract_id": id}, ip, "success")
	return ct, nil
}

func (s *service) DeleteContract(ctx context.Context, id uint, userID uint, ip string) error {
	ct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("contract not found: %w", err)
	}
	if ct.Status == StatusSigned || ct.Status == StatusActive {
		return fmt.Errorf("Un contrat signé ne peut pas être supprimé")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "contract_delete", map[string]interface{}{"contract_id": id, "error": err.Error()}, ip, "failure")
		return fmt.Errorf("failed to delete contract: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, "contract_delete", map[string]interface{}{"contract_id": id, "contract_number": ct.ContractNumber}, ip, "success")
	return nil
}

func (s *service) GetContract(ctx context.Context, id uint) (*Contract, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListContracts(ctx context.Context, filter ListFilter) (*PaginatedContracts, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	contracts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}

	return &PaginatedContracts{
		Data:       contracts,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// TransitionStatus applies one forward step of the lifecycle. The guard and
// the write happen in the same transaction so concurrent admins cannot race
// a contract into an illegal state.
func (s *service) TransitionStatus(ctx context.Context, id uint, status string, userID uint, ip string) (*Contract, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("invalid contract status: %s", status)
	}

	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current Contract
		if err := tx.First(&current, id).Error; err != nil {
			return fmt.Errorf("contract not found: %w", err)
		}
		if !allowedTransition(current.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
		}
		res := tx.Model(&Contract{}).Where("id = ? AND status = ?", id, current.Status).Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: statut modifié entre-temps", ErrInvalidTransition)
		}
		return nil
	})
	if err != nil {
		s.auditSvc.LogAction(ctx, &userID, "contract_status", map[string]interface{}{"contract_id": id, "status": status, "error": err.Error()}, ip, "failure")
		return nil, err
	}

	ct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Printf("🔄 Contract %s moved to %s", ct.ContractNumber, status)
	s.auditSvc.LogAction(ctx, &userID, "contract_status", map[string]interface{}{"contract_id": id, "status": status}, ip, "success")

	if status == StatusActive {
		utils.PublishContractEvent(ctx, utils.ContractEvent{
			Type:           "CONTRACT_ACTIVATED",
			ContractID:     ct.ID,
			ContractNumber: ct.ContractNumber,
			BookingID:      ct.BookingID,
			OccurredAt:     time.Now(),
		})
	}
	return ct, nil
}

// SendForSignature mints a signing token for one signer, emails the link and
// moves the contract to SENT.
func (s *service) SendForSignature(ctx context.Context, id uint, req SendRequest, userID uint, ip string) error {
	ct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("contract not found: %w", err)
	}
	if ct.Status != StatusPending && ct.Status != StatusSent {
		return fmt.Errorf("%w: le contrat doit être prêt à envoyer", ErrInvalidTransition)
	}

	email := strings.ToLower(strings.TrimSpace(req.SignerEmail))
	signed, err := s.repo.HasSignatureByEmail(ctx, ct.ID, email)
	if err != nil {
		return fmt.Errorf("failed to check signatures: %w", err)
	}
	if signed {
		return ErrAlreadySigned
	}

	role := req.SignerRole
	if role == "" {
		role = RoleTenantSigner
	}

	token, err := GenerateSigningToken(s.cfg, ct.ID, req.SignerName, email, role)
	if err != nil {
		return fmt.Errorf("failed to generate signing token: %w", err)
	}

	if err := utils.SendContractSignatureRequest(email, req.SignerName, ct.ContractNumber, token); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "contract_send", map[string]interface{}{"contract_id": ct.ID, "signer_email": email, "error": err.Error()}, ip, "failure")
		return fmt.Errorf("failed to send signature request: %w", err)
	}

	if ct.Status == StatusPending {
		if err := s.repo.UpdateStatus(ctx, nil, ct.ID, StatusSent); err != nil {
			return fmt.Errorf("failed to mark contract as sent: %w", err)
		}
	}

	log.Printf("✅ Contract %s sent to %s for signature", ct.ContractNumber, email)
	s.auditSvc.LogAction(ctx, &userID, "contract_send", map[string]interface{}{"contract_id": ct.ID, "signer_email": email, "signer_role": role}, ip, "success")

	utils.PublishContractEvent(ctx, utils.ContractEvent{
		Type:           "CONTRACT_SENT",
		ContractID:     ct.ID,
		ContractNumber: ct.ContractNumber,
		BookingID:      ct.BookingID,
		SignerEmail:    email,
		SignerName:     req.SignerName,
		OccurredAt:     time.Now(),
	})
	return nil
}

// GetSigningView verifies the signing token and returns what the public page
// needs. A signer who already signed gets the already_signed flag so the UI
// can short-circuit without issuing a sign request.
func (s *service) GetSigningView(ctx context.Context, token string) (*SigningView, error) {
	claims, err := VerifySigningToken(s.cfg, token)
	if err != nil {
		return nil, err
	}

	ct, err := s.repo.GetByID(ctx, claims.ContractID)
	if err != nil {
		return nil, fmt.Errorf("contract not found")
	}

	signed, err := s.repo.HasSignatureByEmail(ctx, ct.ID, claims.SignerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check signatures: %w", err)
	}

	return &SigningView{
		Contract:      ct,
		SignerName:    claims.SignerName,
		SignerEmail:   claims.SignerEmail,
		SignerRole:    claims.SignerRole,
		AlreadySigned: signed,
	}, nil
}

// Sign verifies the token, consumes its JTI and appends the signature. The
// duplicate-signer check runs before the token is consumed, so refreshing an
// already-signed page never burns a token.
func (s *service) Sign(ctx context.Context, token string, req SignRequest, ip string) (*Contract, error) {
	if !req.AcceptTerms {
		return nil, ErrTermsNotAccepted
	}

	claims, err := VerifySigningToken(s.cfg, token)
	if err != nil {
		return nil, err
	}

	ct, err := s.repo.GetByID(ctx, claims.ContractID)
	if err != nil {
		return nil, fmt.Errorf("contract not found")
	}
	if ct.Status != StatusSent {
		return nil, fmt.Errorf("%w: ce contrat n'attend pas de signature", ErrInvalidTransition)
	}

	email := strings.ToLower(claims.SignerEmail)
	signed, err := s.repo.HasSignatureByEmail(ctx, ct.ID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check signatures: %w", err)
	}
	if signed {
		log.Printf("ℹ️ Duplicate signature attempt on %s by %s", ct.ContractNumber, email)
		return nil, ErrAlreadySigned
	}

	tokenTTL := time.Duration(s.cfg.ContractSignTTLHours) * time.Hour
	fresh, err := utils.MarkTokenUsed(ctx, "sign_jti:"+claims.JTI, tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if !fresh {
		return nil, ErrInvalidToken
	}

	err = s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sig := &ContractSignature{
			ContractID:    ct.ID,
			SignerName:    claims.SignerName,
			SignerEmail:   email,
			SignerRole:    claims.SignerRole,
			SignatureData: req.SignatureData,
			IPAddress:     ip,
		}
		if err := s.repo.AddSignature(ctx, tx, sig); err != nil {
			return fmt.Errorf("failed to record signature: %w", err)
		}
		return s.repo.UpdateStatus(ctx, tx, ct.ID, StatusSigned)
	})
	if err != nil {
		s.auditSvc.LogAction(ctx, nil, "contract_sign", map[string]interface{}{"contract_id": ct.ID, "signer_email": email, "error": err.Error()}, ip, "failure")
		return nil, err
	}

	log.Printf("✅ Contract %s signed by %s", ct.ContractNumber, email)
	s.auditSvc.LogAction(ctx, nil, "contract_sign", map[string]interface{}{"contract_id": ct.ID, "signer_email": email}, ip, "success")

	utils.PublishContractEvent(ctx, utils.ContractEvent{
		Type:           "CONTRACT_SIGNED",
		ContractID:     ct.ID,
		ContractNumber: ct.ContractNumber,
		BookingID:      ct.BookingID,
		SignerEmail:    email,
		SignerName:     claims.SignerName,
		OccurredAt:     time.Now(),
	})

	return s.repo.GetByID(ctx, ct.ID)
}

// GeneratePDFFile renders the contract to PDF, stamps the operator's default
// signature, stores the file under the upload directory and returns the bytes
// for immediate download.
func (s *service) GeneratePDFFile(ctx context.Context, id uint, userID uint, ip string) ([]byte, string, error) {
	ct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("contract not found: %w", err)
	}

	ownerSig, err := s.signatureSvc.GetDefaultSignature(ctx)
	if err != nil {
		ownerSig = nil // no default configured, the document goes out unstamped
	}

	data, err := GeneratePDF(ct, ownerSig)
	if err != nil {
		s.auditSvc.LogAction(ctx, &userID, "contract_pdf", map[string]interface{}{"contract_id": id, "error": err.Error()}, ip, "failure")
		return nil, "", err
	}

	dir := filepath.Join(s.cfg.UploadDir, "contracts")
	if err := os.MkdirAll(dir, 0o755); err == nil {
		path := filepath.Join(dir, ct.ContractNumber+".pdf")
		if err := os.WriteFile(path, data, 0o644); err == nil && ct.PDFPath != path {
			ct.PDFPath = path
			if err := s.repo.Update(ctx, ct); err != nil {
				log.Printf("⚠️ Failed to store pdf path for %s: %v", ct.ContractNumber, err)
			}
		}
	}

	s.auditSvc.LogAction(ctx, &userID, "contract_pdf", map[string]interface{}{"contract_id": id, "contract_number": ct.ContractNumber}, ip, "success")
	return data, ct.ContractNumber + ".pdf", nil
}

// ExpireStaleContracts moves SENT contracts past the signing window to
// EXPIRED. Called periodically from the server loop.
func (s *service) ExpireStaleContracts(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-time.Duration(s.cfg.ContractSignTTLHours) * time.Hour)
	res := s.repo.DB().WithContext(ctx).Model(&Contract{}).
		Where("status = ? AND updated_at < ?", StatusSent, cutoff).
		Update("status", StatusExpired)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("ℹ️ %d contracts expired", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
