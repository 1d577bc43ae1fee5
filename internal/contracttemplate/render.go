package contracttemplate

import (
	"html"
	"regexp"
	"strings"
)

// TemplateVariable describes one placeholder available to template authors.
type TemplateVariable struct {
	Token       string `json:"token"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Variables is the fixed vocabulary the editor exposes. Substitution only
// fills tokens present in the render context; everything else stays literal.
var Variables = []TemplateVariable{
	{"OWNER_NAME", "Propriétaire", "Nom complet du propriétaire"},
	{"OWNER_ADDRESS", "Propriétaire", "Adresse du propriétaire"},
	{"OWNER_EMAIL", "Propriétaire", "Email du propriétaire"},
	{"OWNER_PHONE", "Propriétaire", "Téléphone du propriétaire"},

	{"TENANT_FIRSTNAME", "Locataire", "Prénom du locataire"},
	{"TENANT_LASTNAME", "Locataire", "Nom du locataire"},
	{"TENANT_FULLNAME", "Locataire", "Nom complet du locataire"},
	{"TENANT_EMAIL", "Locataire", "Email du locataire"},
	{"TENANT_PHONE", "Locataire", "Téléphone du locataire"},

	{"PROPERTY_ADDRESS", "Logement", "Adresse du logement"},
	{"ROOM_NUMBER", "Logement", "Numéro de la chambre"},
	{"ROOM_NAME", "Logement", "Nom de la chambre"},
	{"ROOM_SURFACE", "Logement", "Surface de la chambre en m²"},
	{"ROOM_FLOOR", "Logement", "Étage de la chambre"},
	{"MONTHLY_RENT", "Logement", "Loyer mensuel en euros"},
	{"SECURITY_DEPOSIT", "Logement", "Dépôt de garantie en euros"},
	{"CHARGES", "Logement", "Charges mensuelles en euros"},

	{"START_DATE", "Dates", "Date de début du bail"},
	{"END_DATE", "Dates", "Date de fin du bail"},
	{"SIGNATURE_DATE", "Dates", "Date de signature"},
	{"CURRENT_DATE", "Dates", "Date du jour"},
	{"CONTRACT_NUMBER", "Dates", "Numéro du contrat"},

	{"CONTACT_EMAIL", "Contact", "Email de la résidence"},
	{"CONTACT_PHONE", "Contact", "Téléphone de la résidence"},
}

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Z0-9_]+)\s*\}\}`)

// Render substitutes every token that has a value in the context. Tokens
// without a value are left as literal {{TOKEN}} text so the admin can spot
// what is missing in the generated document.
func Render(content string, context map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := tokenPattern.FindStringSubmatch(match)[1]
		if value, ok := context[name]; ok {
			return value
		}
		return match
	})
}

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	spacesPattern = regexp.MustCompile(`[ \t]{2,}`)
)

// punctReplacer normalizes the Unicode punctuation rich-text editors leave
// behind (smart quotes, long dashes, non-breaking spaces).
var punctReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'",
	"“", `"`, "”", `"`, "„", `"`,
	"–", "-", "—", "-",
	" ", " ", "…", "...",
)

// Sanitize turns stored rich-text markup into plain text suitable for PDF
// rendering. Block-level tags become line breaks, all other tags are
// stripped, entities are decoded and punctuation is normalized. The pass is
// lossy: styling does not survive.
func Sanitize(content string) string {
	s := content

	breaks := []string{"</p>", "</div>", "</li>", "</h1>", "</h2>", "</h3>", "</h4>", "<br>", "<br/>", "<br />"}
	for _, b := range breaks {
		s = strings.ReplaceAll(s, b, b+"\n")
	}

	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = punctReplacer.Replace(s)
	s = spacesPattern.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")

	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}
