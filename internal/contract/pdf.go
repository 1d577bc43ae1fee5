package contract

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/hlefebvre/coliving-backend/internal/adminsignature"
	"github.com/hlefebvre/coliving-backend/internal/contracttemplate"
)

func decodeSignatureImage(data string) ([]byte, error) {
	payload := data
	if strings.HasPrefix(data, "data:image/") {
		idx := strings.Index(data, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		payload = data[idx+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}

// signatureContext supplies the tokens only known once a signature exists.
// Before that the token stays literal in the document.
func signatureContext(ct *Contract) map[string]string {
	if len(ct.Signatures) == 0 {
		return nil
	}
	return map[string]string{
		"SIGNATURE_DATE": ct.Signatures[0].SignedAt.Format("02/01/2006"),
	}
}

// GeneratePDF renders a contract body, its signatures and the operator's
// default signature into an A4 document. The stored rich-text content goes
// through the sanitize pass first, so the PDF carries plain text only.
func GeneratePDF(ct *Contract, ownerSig *adminsignature.AdminSignature) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("Contrat de location meublée"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Contrat n° %s", ct.ContractNumber)), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 11)
	body := contracttemplate.Sanitize(contracttemplate.Render(ct.Content, signatureContext(ct)))
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			pdf.Ln(4)
			continue
		}
		pdf.MultiCell(0, 5.5, tr(line), "", "L", false)
	}

	if len(ct.Signatures) > 0 {
		pdf.Ln(10)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, tr("Signatures"), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)

		for i, sig := range ct.Signatures {
			pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s (%s), signé le %s",
				sig.SignerName, sig.SignerRole, sig.SignedAt.Format("02/01/2006"))), "", 1, "L", false, 0, "")

			img, err := decodeSignatureImage(sig.SignatureData)
			if err != nil {
				continue // unreadable image, keep the text line
			}
			name := fmt.Sprintf("sig-%d-%d", ct.ID, i)
			opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
			pdf.ImageOptions(name, pdf.GetX()+10, pdf.GetY(), 50, 0, true, opts, 0, "")
			pdf.Ln(4)
		}
	}

	if ownerSig != nil {
		pdf.Ln(10)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, tr("Pour le propriétaire"), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(ownerSig.Name), "", 1, "L", false, 0, "")

		if img, err := decodeSignatureImage(ownerSig.SignatureData); err == nil {
			name := fmt.Sprintf("owner-sig-%d", ct.ID)
			opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
			pdf.ImageOptions(name, pdf.GetX()+10, pdf.GetY(), 50, 0, true, opts, 0, "")
			pdf.Ln(4)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf generation failed: %w", err)
	}
	return buf.Bytes(), nil
}
