package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrUnauthorized = errors.New("mailer unauthorized")

// Mailer - интерфейс отправки транзакционных писем.
// Отправка fire-and-forget: подтверждений доставки сервис не читает.
type Mailer interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// HTTPMailer реализует Mailer поверх HTTP API почтового сервиса.
type HTTPMailer struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
}

// NewHTTPMailer создаёт клиент почтового сервиса.
func NewHTTPMailer(baseURL, apiKey, from string, timeout time.Duration) *HTTPMailer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPMailer{
		baseURL: baseURL,
		apiKey:  apiKey,
		from:    from,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type sendRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
	HTMLBody string `json:"html_body,omitempty"`
}

// Send отправляет одно письмо.
func (m *HTTPMailer) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	body, err := json.Marshal(sendRequest{
		From:     m.from,
		To:       to,
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	u, err := url.Parse(m.baseURL)
	if err != nil {
		return fmt.Errorf("invalid mailer base url: %w", err)
	}
	u.Path = u.Path + "/v1/send"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("unexpected mailer status: %d", resp.StatusCode)
	}
}
