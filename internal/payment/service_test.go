package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hlefebvre/coliving-backend/config"
	"github.com/hlefebvre/coliving-backend/internal/auditlog"
)

const testRazorpaySecret = "rzp-test-secret"

func setupPaymentService(t *testing.T) (Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditlog.AuditLog{}, &Payment{}))

	cfg := &config.Config{RazorpaySecret: testRazorpaySecret}
	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	return NewService(NewRepository(db), cfg, auditSvc), db
}

func gatewaySignature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testRazorpaySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func createPendingOrder(t *testing.T, db *gorm.DB, orderID string) *Payment {
	p := &Payment{
		BookingID:       1,
		Amount:          500,
		Type:            TypeDeposit,
		Status:          StatusPending,
		Method:          MethodOnline,
		RazorpayOrderID: orderID,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestVerifyOnlinePayment_RejectsBadSignature(t *testing.T) {
	svc, db := setupPaymentService(t)
	p := createPendingOrder(t, db, "order_abc123")

	_, err := svc.VerifyOnlinePayment(context.Background(), VerifyOrderRequest{
		RazorpayOrderID:   "order_abc123",
		RazorpayPaymentID: "pay_xyz",
		RazorpaySignature: "deadbeef",
	}, "127.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	var got Payment
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, StatusPending, got.Status)
	assert.Nil(t, got.PaidAt)
}

func TestVerifyOnlinePayment_MarksPaid(t *testing.T) {
	svc, db := setupPaymentService(t)
	p := createPendingOrder(t, db, "order_abc456")

	got, err := svc.VerifyOnlinePayment(context.Background(), VerifyOrderRequest{
		RazorpayOrderID:   "order_abc456",
		RazorpayPaymentID: "pay_123",
		RazorpaySignature: gatewaySignature("order_abc456", "pay_123"),
	}, "127.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, StatusPaid, got.Status)
	assert.Equal(t, "pay_123", got.RazorpayPaymentID)
	require.NotNil(t, got.PaidAt)
}

func TestVerifyOnlinePayment_Idempotent(t *testing.T) {
	svc, db := setupPaymentService(t)
	createPendingOrder(t, db, "order_abc789")

	req := VerifyOrderRequest{
		RazorpayOrderID:   "order_abc789",
		RazorpayPaymentID: "pay_456",
		RazorpaySignature: gatewaySignature("order_abc789", "pay_456"),
	}

	first, err := svc.VerifyOnlinePayment(context.Background(), req, "127.0.0.1")
	require.NoError(t, err)

	second, err := svc.VerifyOnlinePayment(context.Background(), req, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, StatusPaid, second.Status)
}

func TestVerifyOnlinePayment_UnknownOrder(t *testing.T) {
	svc, _ := setupPaymentService(t)

	_, err := svc.VerifyOnlinePayment(context.Background(), VerifyOrderRequest{
		RazorpayOrderID:   "order_missing",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: gatewaySignature("order_missing", "pay_1"),
	}, "127.0.0.1")
	assert.Error(t, err)
}

func TestUpdatePayment_MarkPaidSetsPaidAt(t *testing.T) {
	svc, db := setupPaymentService(t)
	p := createPendingOrder(t, db, "")

	paid := StatusPaid
	got, err := svc.UpdatePayment(context.Background(), p.ID, UpdatePaymentRequest{Status: &paid}, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, got.Status)
	require.NotNil(t, got.PaidAt)
}

func TestDeletePayment_RefusesPaid(t *testing.T) {
	svc, db := setupPaymentService(t)
	p := createPendingOrder(t, db, "")
	require.NoError(t, db.Model(p).Update("status", StatusPaid).Error)

	err := svc.DeletePayment(context.Background(), p.ID, 1, "127.0.0.1")
	assert.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&Payment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
