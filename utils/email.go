package utils

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"strings"
	"time"
)

var (
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	smtpUsername  = os.Getenv("SMTP_USERNAME")
	smtpPassword  = os.Getenv("SMTP_PASSWORD")
	smtpFromName  = os.Getenv("SMTP_FROM_NAME")
	smtpFromEmail = os.Getenv("SMTP_FROM_EMAIL")
	frontendURL   = os.Getenv("FRONTEND_URL")
)

// SendEmail delivers a single HTML email over SMTP with STARTTLS. With no SMTP
// configuration it logs and returns nil so flows stay usable in development.
func SendEmail(to, subject, body string) error {
	if smtpHost == "" || smtpUsername == "" || smtpPassword == "" {
		fmt.Printf("⚠️ SMTP not configured, skipping email to %s (%s)\n", to, subject)
		return nil
	}

	if smtpFromEmail == "" {
		smtpFromEmail = smtpUsername
	}

	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         smtpHost,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", smtpUsername, smtpPassword, smtpHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := client.Mail(smtpFromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}

	headers := []string{
		fmt.Sprintf("From: %s <%s>", smtpFromName, smtpFromEmail),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		fmt.Sprintf("Date: %s", time.Now().Format(time.RFC1123Z)),
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + body

	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

// SendPasswordResetEmail mails the reset link for an admin account.
func SendPasswordResetEmail(to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", frontendURL, token)
	body := fmt.Sprintf(`
		<p>Bonjour,</p>
		<p>Une réinitialisation de mot de passe a été demandée pour votre compte.</p>
		<p><a href="%s">Réinitialiser mon mot de passe</a></p>
		<p>Ce lien expire dans une heure. Si vous n'êtes pas à l'origine de cette demande, ignorez cet email.</p>
	`, link)
	return SendEmail(to, "Réinitialisation de votre mot de passe", body)
}

// SendContractSignatureRequest mails the signing link for a contract.
func SendContractSignatureRequest(to, signerName, contractNumber, token string) error {
	link := fmt.Sprintf("%s/sign-contract/%s", frontendURL, token)
	body := fmt.Sprintf(`
		<p>Bonjour %s,</p>
		<p>Votre contrat de location <strong>%s</strong> est prêt à être signé.</p>
		<p><a href="%s">Consulter et signer le contrat</a></p>
		<p>Ce lien est personnel et expire automatiquement.</p>
	`, signerName, contractNumber, link)
	return SendEmail(to, fmt.Sprintf("Signature de votre contrat %s", contractNumber), body)
}
