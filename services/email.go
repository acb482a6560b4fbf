package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cosminvladulescu/bcon-site/models"
)

const resendBaseURL = "https://api.resend.com"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

type EmailConfig struct {
	APIKey     string
	From       string
	Recipients []string
	// BaseURL overrides the Resend endpoint.
	BaseURL string
}

// EmailNotifier mails contact messages to the site owner through Resend.
type EmailNotifier struct {
	cfg    EmailConfig
	client *http.Client
}

func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	if cfg.BaseURL == "" {
		cfg.BaseURL = resendBaseURL
	}
	if len(cfg.Recipients) == 0 {
		cfg.Recipients = []string{"contact@bcon.ro"}
	}
	return &EmailNotifier{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

func (n *EmailNotifier) Name() string { return "email" }

var contactEmail = template.Must(template.New("contact").Parse(`
<h2>Mesaj nou de pe website B-CON Consulting</h2>
<p><strong>Nume:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Telefon:</strong> {{or .Phone "Nespecificat"}}</p>
<p><strong>Companie:</strong> {{or .Company "Nespecificat"}}</p>
<p><strong>Mesaj:</strong></p>
<p>{{.Message}}</p>
<hr>
<p><small>Trimis la: {{.CreatedAt.Format "02.01.2006 15:04"}}</small></p>
`))

// Notify renders msg and sends it to the configured recipients.
func (n *EmailNotifier) Notify(ctx context.Context, msg *models.ContactMessage) error {
	var body bytes.Buffer
	if err := contactEmail.Execute(&body, msg); err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	subject := fmt.Sprintf("Mesaj nou de la %s - B-CON Website", msg.Name)
	return n.SendEmail(ctx, subject, body.String(), n.cfg.Recipients)
}

// SendEmail sends an HTML email using the Resend API
func (n *EmailNotifier) SendEmail(ctx context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	payload := ResendEmailRequest{
		From:    n.cfg.From,
		To:      recipients,
		Subject: subject,
		Html:    body,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.BaseURL+"/emails", bytes.NewReader(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Debug().Str("emailId", emailResponse.ID).Msg("Sent email via Resend")
	}

	return nil
}
