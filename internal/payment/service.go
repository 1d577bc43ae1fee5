package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/hlefebvre/coliving-backend/config"
	"github.com/hlefebvre/coliving-backend/internal/auditlog"
)

var ErrInvalidSignature = errors.New("invalid payment signature")

type PaginatedPayments struct {
	Data       []Payment `json:"data"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

type OnlineOrderResponse struct {
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	RazorpayKey string  `json:"razorpay_key"`
}

type Service interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest, userID uint, ip string) (*Payment, error)
	UpdatePayment(ctx context.Context, id uint, req UpdatePaymentRequest, userID uint, ip string) (*Payment, error)
	DeletePayment(ctx context.Context, id uint, userID uint, ip string) error
	GetPayment(ctx context.Context, id uint) (*Payment, error)
	ListPayments(ctx context.Context, filter ListFilter) (*PaginatedPayments, error)
	StartOnlinePayment(ctx context.Context, paymentID uint, userID uint, ip string) (*OnlineOrderResponse, error)
	VerifyOnlinePayment(ctx context.Context, req VerifyOrderRequest, ip string) (*Payment, error)
}

type service struct {
	repo     Repository
	client   *razorpay.Client
	cfg      *config.Config
	auditSvc auditlog.Service
}

func NewService(repo Repository, cfg *config.Config, auditSvc auditlog.Service) Service {
	var client *razorpay.Client
	if cfg.RazorpayKey != "" {
		client = razorpay.NewClient(cfg.RazorpayKey, cfg.RazorpaySecret)
	}
	return &service{repo: repo, client: client, cfg: cfg, auditSvc: auditSvc}
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *s)
	}
	return &t, nil
}

func (s *service) CreatePayment(ctx context.Context, req CreatePaymentRequest, userID uint, ip string) (*Payment, error) {
	due, err := parseDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	p := &Payment{
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Type:      req.Type,
		Status:    StatusPending,
		Method:    req.Method,
		DueDate:   due,
		Reference: req.Reference,
		Notes:     req.Notes,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "payment_create", map[string]interface{}{"booking_id": req.BookingID, "error": err.Error()}, ip, "failure")
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, "payment_create", map[string]interface{}{"payment_id": p.ID, "booking_id": p.BookingID, "amount": p.Amount}, ip, "success")
	return p, nil
}

func (s *service) UpdatePayment(ctx context.Context, id uint, req UpdatePaymentRequest, userID uint, ip string) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("payment not found: %w", err)
	}

	if req.Amount != nil {
		p.Amount = *req.Amount
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return nil, fmt.Errorf("invalid payment status: %s", *req.Status)
		}
		if *req.Status == StatusPaid && p.Status != StatusPaid {
			now := time.Now()
			p.PaidAt = &now
		}
		p.Status = *req.Status
	}
	if req.Method != nil {
		p.Method = *req.Method
	}
	if req.DueDate != nil {
		due, err := parseDate(req.DueDate)
		if err != nil {
			return nil, err
		}
		p.DueDate = due
	}
	if req.Reference != nil {
		p.Reference = *req.Reference
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "payment_update", map[string]interface{}{"payment_id": id, "error": err.Error()}, ip, "failure")
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, "payment_update", map[string]interface{}{"payment_id": id, "status": p.Status}, ip, "success")
	return p, nil
}

func (s *service) DeletePayment(ctx context.Context, id uint, userID uint, ip string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("payment not found: %w", err)
	}
	if p.Status == StatusPaid {
		return fmt.Errorf("paid payments cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.auditSvc.LogAction(ctx, &userID, "payment_delete", map[string]interface{}{"payment_id": id, "error": err.Error()}, ip, "failure")
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, "payment_delete", map[string]interface{}{"payment_id": id}, ip, "success")
	return nil
}

func (s *service) GetPayment(ctx context.Context, id uint) (*Payment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListPayments(ctx context.Context, filter ListFilter) (*PaginatedPayments, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &PaginatedPayments{
		Data:       payments,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// StartOnlinePayment creates a Razorpay order for an existing pending payment
// and stores the order id for later verification.
func (s *service) StartOnlinePayment(ctx context.Context, paymentID uint, userID uint, ip string) (*OnlineOrderResponse, error) {
	if s.client == nil {
		return nil, fmt.Errorf("online payments are not configured")
	}

	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("payment not found: %w", err)
	}
	if p.Status != StatusPending {
		return nil, fmt.Errorf("payment is not pending")
	}

	amountInCents := int(p.Amount * 100)
	data := map[string]interface{}{
		"amount":          amountInCents,
		"currency":        "EUR",
		"payment_capture": 1,
		"notes": map[string]interface{}{
			"payment_id": p.ID,
			"booking_id": p.BookingID,
			"type":       p.Type,
		},
	}

	order, err := s.client.Order.Create(data, nil)
	if err != nil {
		s.auditSvc.LogAction(ctx, &userID, "payment_order_create", map[string]interface{}{"payment_id": p.ID, "error": err.Error()}, ip, "failure")
		return nil, fmt.Errorf("razorpay order creation failed: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok {
		return nil, errors.New("unable to extract order_id from Razorpay response")
	}

	p.RazorpayOrderID = orderID
	p.Method = MethodOnline
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to store order id: %w", err)
	}

	log.Printf("ℹ️ Razorpay order %s created for payment %d", orderID, p.ID)
	s.auditSvc.LogAction(ctx, &userID, "payment_order_create", map[string]interface{}{"payment_id": p.ID, "order_id": orderID, "amount": p.Amount}, ip, "success")

	return &OnlineOrderResponse{
		OrderID:     orderID,
		Amount:      p.Amount,
		Currency:    "EUR",
		RazorpayKey: s.cfg.RazorpayKey,
	}, nil
}

// VerifyOnlinePayment checks the gateway signature before trusting the
// callback, then marks the payment as paid.
func (s *service) VerifyOnlinePayment(ctx context.Context, req VerifyOrderRequest, ip string) (*Payment, error) {
	expected := hmac.New(sha256.New, []byte(s.cfg.RazorpaySecret))
	expected.Write([]byte(req.RazorpayOrderID + "|" + req.RazorpayPaymentID))
	computedSignature := hex.EncodeToString(expected.Sum(nil))

	if !hmac.Equal([]byte(computedSignature), []byte(req.RazorpaySignature)) {
		s.auditSvc.LogAction(ctx, nil, "payment_verify", map[string]interface{}{
			"order_id": req.RazorpayOrderID,
			"reason":   "invalid payment signature",
		}, ip, "failure")
		return nil, ErrInvalidSignature
	}

	p, err := s.repo.GetByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, fmt.Errorf("payment not found for order %s", req.RazorpayOrderID)
	}

	if p.Status == StatusPaid {
		return p, nil // already processed
	}

	if s.client != nil {
		fetched, err := s.client.Payment.Fetch(req.RazorpayPaymentID, nil, nil)
		if err != nil {
			s.auditSvc.LogAction(ctx, nil, "payment_verify", map[string]interface{}{
				"order_id": req.RazorpayOrderID,
				"error":    err.Error(),
			}, ip, "failure")
			return nil, fmt.Errorf("razorpay payment fetch failed: %w", err)
		}
		if status, ok := fetched["status"].(string); ok && status != "captured" && status != "authorized" {
			return nil, fmt.Errorf("payment not captured, status %s", status)
		}
		switch val := fetched["amount"].(type) {
		case float64:
			if val/100 != p.Amount {
				log.Printf("⚠️ Amount mismatch on order %s: expected %.2f got %.2f", p.RazorpayOrderID, p.Amount, val/100)
			}
		case json.Number:
			if f, err := val.Float64(); err == nil && f/100 != p.Amount {
				log.Printf("⚠️ Amount mismatch on order %s: expected %.2f got %.2f", p.RazorpayOrderID, p.Amount, f/100)
			}
		}
	}

	now := time.Now()
	p.Status = StatusPaid
	p.PaidAt = &now
	p.RazorpayPaymentID = req.RazorpayPaymentID
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to mark payment as paid: %w", err)
	}

	log.Printf("✅ Payment %d marked paid via order %s", p.ID, p.RazorpayOrderID)
	s.auditSvc.LogAction(ctx, nil, "payment_verify", map[string]interface{}{
		"payment_id": p.ID,
		"order_id":   p.RazorpayOrderID,
		"amount":     p.Amount,
	}, ip, "success")
	return p, nil
}
