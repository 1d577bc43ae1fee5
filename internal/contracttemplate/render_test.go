package contracttemplate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hlefebvre/coliving-backend/internal/auditlog"
)

func TestRender_FillsKnownTokens(t *testing.T) {
	content := "Bonjour {{TENANT_FIRSTNAME}}, votre loyer est de {{MONTHLY_RENT}}€."
	out := Render(content, map[string]string{
		"TENANT_FIRSTNAME": "Marie",
		"MONTHLY_RENT":     "520.00",
	})
	assert.Equal(t, "Bonjour Marie, votre loyer est de 520.00€.", out)
}

func TestRender_LeavesUnresolvedTokensLiteral(t *testing.T) {
	content := "Bonjour {{TENANT_FIRSTNAME}}, loyer {{MONTHLY_RENT}}€."
	out := Render(content, map[string]string{
		"TENANT_FIRSTNAME": "Marie",
	})
	assert.Equal(t, "Bonjour Marie, loyer {{MONTHLY_RENT}}€.", out)
}

func TestRender_AcceptsSpacesInsideBraces(t *testing.T) {
	out := Render("Chambre {{ ROOM_NUMBER }}", map[string]string{"ROOM_NUMBER": "12"})
	assert.Equal(t, "Chambre 12", out)
}

func TestRender_EmptyContext(t *testing.T) {
	content := "Contrat {{CONTRACT_NUMBER}}"
	assert.Equal(t, content, Render(content, nil))
}

func TestSanitize(t *testing.T) {
	in := "<p>Bonjour&nbsp;&amp; bienvenue</p><div>Art. 1 – Objet du contrat</div>"
	out := Sanitize(in)
	assert.Equal(t, "Bonjour & bienvenue\nArt. 1 - Objet du contrat", out)
}

func TestSanitize_NormalizesSmartQuotes(t *testing.T) {
	out := Sanitize("Le locataire s’engage à respecter le “règlement intérieur”…")
	assert.Equal(t, `Le locataire s'engage à respecter le "règlement intérieur"...`, out)
}

func setupTemplateService(t *testing.T) (Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditlog.AuditLog{}, &ContractTemplate{}))

	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	return NewService(NewRepository(db), auditSvc), db
}

func TestSetDefaultTemplate_ExactlyOneDefault(t *testing.T) {
	svc, db := setupTemplateService(t)
	ctx := context.Background()

	t1, err := svc.CreateTemplate(ctx, CreateTemplateRequest{Name: "Bail meublé", Content: "x", IsDefault: true}, 1, "127.0.0.1")
	require.NoError(t, err)
	t2, err := svc.CreateTemplate(ctx, CreateTemplateRequest{Name: "Bail mobilité", Content: "y"}, 1, "127.0.0.1")
	require.NoError(t, err)

	require.NoError(t, svc.SetDefaultTemplate(ctx, t2.ID, 1, "127.0.0.1"))

	var defaults []ContractTemplate
	require.NoError(t, db.Where("is_default = ?", true).Find(&defaults).Error)
	require.Len(t, defaults, 1)
	assert.Equal(t, t2.ID, defaults[0].ID)

	// And back again
	require.NoError(t, svc.SetDefaultTemplate(ctx, t1.ID, 1, "127.0.0.1"))
	got, err := svc.GetDefaultTemplate(ctx)
	require.NoError(t, err)
	assert.Equal(t, t1.ID, got.ID)
}

func TestSetDefaultTemplate_UnknownID(t *testing.T) {
	svc, _ := setupTemplateService(t)
	err := svc.SetDefaultTemplate(context.Background(), 999, 1, "127.0.0.1")
	assert.Error(t, err)
}

func TestDeleteTemplate_DefaultRefused(t *testing.T) {
	svc, _ := setupTemplateService(t)
	ctx := context.Background()

	tmpl, err := svc.CreateTemplate(ctx, CreateTemplateRequest{Name: "Bail meublé", Content: "x", IsDefault: true}, 1, "127.0.0.1")
	require.NoError(t, err)

	err = svc.DeleteTemplate(ctx, tmpl.ID, 1, "127.0.0.1")
	assert.ErrorIs(t, err, ErrTemplateInUse)
}

func TestPreview_UsesAdHocContext(t *testing.T) {
	svc, _ := setupTemplateService(t)
	out := svc.Preview(PreviewRequest{
		Content: "Locataire: {{TENANT_FULLNAME}}",
		Context: map[string]string{"TENANT_FULLNAME": "Marie Dupont"},
	})
	assert.Equal(t, "Locataire: Marie Dupont", out)
}
