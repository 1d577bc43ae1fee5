package contact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hlefebvre/coliving-backend/internal/auditlog"
	"github.com/hlefebvre/coliving-backend/internal/auth"
)

func setupContactService(t *testing.T) (Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditlog.AuditLog{}, &auth.UserRole{}, &auth.User{}, &Contact{}))

	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	return NewService(NewRepository(db), auth.NewRepository(db), auditSvc), db
}

func TestSubmitContact_StoresNewMessage(t *testing.T) {
	svc, db := setupContactService(t)

	ct, err := svc.SubmitContact(context.Background(), CreateContactRequest{
		FirstName: "Julie",
		LastName:  "Morel",
		Email:     "julie@example.com",
		Subject:   "Disponibilité chambre 12",
		Message:   "Bonjour, la chambre 12 est-elle libre en septembre ?",
	}, "92.130.4.8")
	require.NoError(t, err)

	assert.Equal(t, StatusNew, ct.Status)

	var stored Contact
	require.NoError(t, db.First(&stored, ct.ID).Error)
	assert.Equal(t, "julie@example.com", stored.Email)

	// The public submission is audited without a user.
	var entry auditlog.AuditLog
	require.NoError(t, db.Where("action = ?", "contact_submit").First(&entry).Error)
	assert.Nil(t, entry.UserID)
}

func TestUpdateContact_Status(t *testing.T) {
	svc, _ := setupContactService(t)
	ctx := context.Background()

	ct, err := svc.SubmitContact(ctx, CreateContactRequest{
		FirstName: "Julie", LastName: "Morel", Email: "julie@example.com",
		Subject: "Question", Message: "Bonjour",
	}, "92.130.4.8")
	require.NoError(t, err)

	replied := StatusReplied
	notes := "Répondu par email le 12/08"
	got, err := svc.UpdateContact(ctx, ct.ID, UpdateContactRequest{Status: &replied, Notes: &notes}, 1, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, StatusReplied, got.Status)
	assert.Equal(t, notes, got.Notes)
}

func TestCountNew(t *testing.T) {
	svc, db := setupContactService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.SubmitContact(ctx, CreateContactRequest{
			FirstName: "Julie", LastName: "Morel", Email: "julie@example.com",
			Subject: "Question", Message: "Bonjour",
		}, "92.130.4.8")
		require.NoError(t, err)
	}
	require.NoError(t, db.Model(&Contact{}).Where("id = ?", 1).Update("status", StatusArchived).Error)

	n, err := svc.CountNew(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
