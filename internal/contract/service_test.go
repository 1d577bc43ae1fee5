package contract

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hlefebvre/coliving-backend/config"
	"github.com/hlefebvre/coliving-backend/internal/adminsignature"
	"github.com/hlefebvre/coliving-backend/internal/auditlog"
	"github.com/hlefebvre/coliving-backend/internal/booking"
	"github.com/hlefebvre/coliving-backend/internal/contracttemplate"
	"github.com/hlefebvre/coliving-backend/internal/room"
)

// 1x1 black PNG, enough for gofpdf to accept the image stream.
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAIAAACQd1PeAAAADElEQVR4nGNgYGAAAAAEAAH2FzhVAAAAAElFTkSuQmCC"

const templateBody = "Locataire: {{TENANT_FULLNAME}}, chambre {{ROOM_NUMBER}}, loyer {{MONTHLY_RENT}}€. Propriétaire: {{OWNER_NAME}}"

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		ContractSignSecret:   "test-signing-secret",
		ContractSignTTLHours: 72,
		UploadDir:            t.TempDir(),
	}
}

func setupContractTest(t *testing.T) (Service, *gorm.DB, *config.Config, *booking.Booking) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&auditlog.AuditLog{},
		&room.Room{},
		&booking.Booking{},
		&contracttemplate.ContractTemplate{},
		&adminsignature.AdminSignature{},
		&Contract{},
		&ContractSignature{},
	))

	cfg := testConfig(t)
	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	templateSvc := contracttemplate.NewService(contracttemplate.NewRepository(db), auditSvc)
	signatureSvc := adminsignature.NewService(adminsignature.NewRepository(db), auditSvc)

	_, err = templateSvc.CreateTemplate(context.Background(), contracttemplate.CreateTemplateRequest{
		Name:      "Bail meublé",
		Content:   templateBody,
		IsDefault: true,
	}, 1, "127.0.0.1")
	require.NoError(t, err)

	rm := &room.Room{
		Name:            "Chambre côté cour",
		Number:          7,
		Floor:           2,
		Surface:         14.5,
		MonthlyPrice:    650,
		SecurityDeposit: 500,
		Status:          room.StatusAvailable,
		IsActive:        true,
	}
	require.NoError(t, db.Create(rm).Error)

	b := &booking.Booking{
		RoomID:          rm.ID,
		TenantFirstName: "Marie",
		TenantLastName:  "Dupont",
		TenantEmail:     "marie@example.com",
		StartDate:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:          booking.StatusConfirmed,
		MonthlyRent:     650,
		SecurityDeposit: 500,
		TotalAmount:     1150,
	}
	require.NoError(t, db.Create(b).Error)

	svc := NewService(NewRepository(db), booking.NewRepository(db), templateSvc, signatureSvc, cfg, auditSvc)
	return svc, db, cfg, b
}

// sendContract walks a fresh contract to SENT so signing flows can run.
func sendContract(t *testing.T, svc Service, b *booking.Booking, signerEmail string) *Contract {
	ctx := context.Background()

	ct, err := svc.CreateContract(ctx, CreateContractRequest{BookingID: b.ID}, 1, "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.TransitionStatus(ctx, ct.ID, StatusPending, 1, "127.0.0.1")
	require.NoError(t, err)

	require.NoError(t, svc.SendForSignature(ctx, ct.ID, SendRequest{
		SignerName:  "Marie Dupont",
		SignerEmail: signerEmail,
	}, 1, "127.0.0.1"))

	ct, err = svc.GetContract(ctx, ct.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSent, ct.Status)
	return ct
}

func TestSigningToken_RoundTrip(t *testing.T) {
	cfg := testConfig(t)

	token, err := GenerateSigningToken(cfg, 42, "Marie Dupont", "marie@example.com", RoleTenantSigner)
	require.NoError(t, err)

	claims, err := VerifySigningToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.ContractID)
	assert.Equal(t, "Marie Dupont", claims.SignerName)
	assert.Equal(t, "marie@example.com", claims.SignerEmail)
	assert.Equal(t, RoleTenantSigner, claims.SignerRole)
	assert.NotEmpty(t, claims.JTI)
}

func TestVerifySigningToken_WrongSecret(t *testing.T) {
	cfg := testConfig(t)
	token, err := GenerateSigningToken(cfg, 42, "Marie", "marie@example.com", RoleTenantSigner)
	require.NoError(t, err)

	other := testConfig(t)
	other.ContractSignSecret = "another-secret"
	_, err = VerifySigningToken(other, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifySigningToken_Garbage(t *testing.T) {
	_, err := VerifySigningToken(testConfig(t), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAllowedTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{StatusDraft, StatusPending, true},
		{StatusPending, StatusSent, true},
		{StatusSent, StatusSigned, true},
		{StatusSent, StatusExpired, true},
		{StatusSigned, StatusActive, true},
		{StatusActive, StatusExpired, true},
		{StatusActive, StatusTerminated, true},
		{StatusDraft, StatusSigned, false},
		{StatusDraft, StatusSent, false},
		{StatusSigned, StatusDraft, false},
		{StatusExpired, StatusActive, false},
		{StatusTerminated, StatusActive, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, allowedTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestCreateContract_RendersTemplate(t *testing.T) {
	svc, _, _, b := setupContractTest(t)

	ct, err := svc.CreateContract(context.Background(), CreateContractRequest{BookingID: b.ID}, 1, "127.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, ct.Status)
	assert.True(t, strings.HasPrefix(ct.ContractNumber, "CL-"), "got %s", ct.ContractNumber)
	assert.Contains(t, ct.Content, "Locataire: Marie Dupont")
	assert.Contains(t, ct.Content, "chambre 7")
	assert.Contains(t, ct.Content, "loyer 650.00€")
	// Tokens without a value stay visible for the admin.
	assert.Contains(t, ct.Content, "{{OWNER_NAME}}")
}

func TestTransitionStatus_RejectsJump(t *testing.T) {
	svc, _, _, b := setupContractTest(t)
	ctx := context.Background()

	ct, err := svc.CreateContract(ctx, CreateContractRequest{BookingID: b.ID}, 1, "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.TransitionStatus(ctx, ct.ID, StatusSigned, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := svc.GetContract(ctx, ct.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, got.Status)
}

func TestSign_RecordsSignatureAndMarksSigned(t *testing.T) {
	svc, db, cfg, b := setupContractTest(t)
	ctx := context.Background()

	ct := sendContract(t, svc, b, "marie@example.com")

	token, err := GenerateSigningToken(cfg, ct.ID, "Marie Dupont", "Marie@Example.com", RoleTenantSigner)
	require.NoError(t, err)

	signed, err := svc.Sign(ctx, token, SignRequest{SignatureData: "data:image/png;base64," + tinyPNG, AcceptTerms: true}, "81.250.1.1")
	require.NoError(t, err)
	assert.Equal(t, StatusSigned, signed.Status)

	var sig ContractSignature
	require.NoError(t, db.Where("contract_id = ?", ct.ID).First(&sig).Error)
	assert.Equal(t, "marie@example.com", sig.SignerEmail, "signer email is stored lowercase")
	assert.Equal(t, "81.250.1.1", sig.IPAddress)
}

func TestSign_DuplicateSignerShortCircuits(t *testing.T) {
	svc, db, cfg, b := setupContractTest(t)
	ctx := context.Background()

	ct := sendContract(t, svc, b, "marie@example.com")

	// Someone already signed under this address while the contract is out.
	require.NoError(t, db.Create(&ContractSignature{
		ContractID:    ct.ID,
		SignerName:    "Marie Dupont",
		SignerEmail:   "marie@example.com",
		SignerRole:    RoleTenantSigner,
		SignatureData: "x",
	}).Error)

	token, err := GenerateSigningToken(cfg, ct.ID, "Marie Dupont", "marie@example.com", RoleTenantSigner)
	require.NoError(t, err)

	_, err = svc.Sign(ctx, token, SignRequest{SignatureData: "y", AcceptTerms: true}, "81.250.1.1")
	assert.ErrorIs(t, err, ErrAlreadySigned)

	var count int64
	require.NoError(t, db.Model(&ContractSignature{}).Where("contract_id = ?", ct.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSign_InvalidToken(t *testing.T) {
	svc, _, _, _ := setupContractTest(t)
	_, err := svc.Sign(context.Background(), "garbage", SignRequest{SignatureData: "x", AcceptTerms: true}, "81.250.1.1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSign_RefusedWithoutAcceptedTerms(t *testing.T) {
	svc, db, cfg, b := setupContractTest(t)
	ctx := context.Background()

	ct := sendContract(t, svc, b, "marie@example.com")

	token, err := GenerateSigningToken(cfg, ct.ID, "Marie Dupont", "marie@example.com", RoleTenantSigner)
	require.NoError(t, err)

	_, err = svc.Sign(ctx, token, SignRequest{SignatureData: "data:image/png;base64," + tinyPNG}, "81.250.1.1")
	assert.ErrorIs(t, err, ErrTermsNotAccepted)

	// Nothing was recorded and the contract still waits for its signature.
	var count int64
	require.NoError(t, db.Model(&ContractSignature{}).Where("contract_id = ?", ct.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	got, err := svc.GetContract(ctx, ct.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, got.Status)

	// The token was not burned, signing again with accepted terms works.
	signed, err := svc.Sign(ctx, token, SignRequest{SignatureData: "data:image/png;base64," + tinyPNG, AcceptTerms: true}, "81.250.1.1")
	require.NoError(t, err)
	assert.Equal(t, StatusSigned, signed.Status)
}

func TestGetSigningView_AlreadySignedFlag(t *testing.T) {
	svc, db, cfg, b := setupContractTest(t)
	ctx := context.Background()

	ct := sendContract(t, svc, b, "marie@example.com")

	token, err := GenerateSigningToken(cfg, ct.ID, "Marie Dupont", "marie@example.com", RoleTenantSigner)
	require.NoError(t, err)

	view, err := svc.GetSigningView(ctx, token)
	require.NoError(t, err)
	assert.False(t, view.AlreadySigned)
	assert.Equal(t, "marie@example.com", view.SignerEmail)

	require.NoError(t, db.Create(&ContractSignature{
		ContractID:    ct.ID,
		SignerName:    "Marie Dupont",
		SignerEmail:   "marie@example.com",
		SignerRole:    RoleTenantSigner,
		SignatureData: "x",
	}).Error)

	view, err = svc.GetSigningView(ctx, token)
	require.NoError(t, err)
	assert.True(t, view.AlreadySigned)
}

func TestSendForSignature_DuplicateSignerRefused(t *testing.T) {
	svc, db, _, b := setupContractTest(t)
	ctx := context.Background()

	ct := sendContract(t, svc, b, "marie@example.com")

	require.NoError(t, db.Create(&ContractSignature{
		ContractID:    ct.ID,
		SignerName:    "Marie Dupont",
		SignerEmail:   "marie@example.com",
		SignerRole:    RoleTenantSigner,
		SignatureData: "x",
	}).Error)

	err := svc.SendForSignature(ctx, ct.ID, SendRequest{
		SignerName:  "Marie Dupont",
		SignerEmail: "MARIE@example.com",
	}, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrAlreadySigned)
}

func TestExpireStaleContracts(t *testing.T) {
	svc, db, _, b := setupContractTest(t)
	ctx := context.Background()

	stale := sendContract(t, svc, b, "marie@example.com")

	// Age the contract past the signing window.
	old := time.Now().Add(-100 * time.Hour)
	require.NoError(t, db.Exec("UPDATE contracts SET updated_at = ? WHERE id = ?", old, stale.ID).Error)

	n, err := svc.ExpireStaleContracts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := svc.GetContract(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)
}

func TestGeneratePDFFile_StampsDefaultOwnerSignature(t *testing.T) {
	svc, db, _, b := setupContractTest(t)
	ctx := context.Background()

	ct, err := svc.CreateContract(ctx, CreateContractRequest{BookingID: b.ID}, 1, "127.0.0.1")
	require.NoError(t, err)

	plain, _, err := svc.GeneratePDFFile(ctx, ct.ID, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(plain, []byte("%PDF")))

	require.NoError(t, db.Create(&adminsignature.AdminSignature{
		Name:          "Hélène Lefebvre",
		SignatureData: tinyPNG,
		IsDefault:     true,
	}).Error)

	stamped, filename, err := svc.GeneratePDFFile(ctx, ct.ID, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, ct.ContractNumber+".pdf", filename)
	assert.Greater(t, len(stamped), len(plain), "the operator signature block adds content")
}

func TestSignatureDateFilledAtRenderTime(t *testing.T) {
	ct := &Contract{Content: "Fait le {{SIGNATURE_DATE}}."}

	// Unsigned contracts keep the token visible.
	unsigned := contracttemplate.Render(ct.Content, signatureContext(ct))
	assert.Equal(t, "Fait le {{SIGNATURE_DATE}}.", unsigned)

	ct.Signatures = []ContractSignature{{SignedAt: time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)}}
	rendered := contracttemplate.Render(ct.Content, signatureContext(ct))
	assert.Equal(t, "Fait le 10/03/2026.", rendered)
}
