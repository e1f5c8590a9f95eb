package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/config"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
)

// Sender sends SMS messages
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// TermiiService talks to the Termii SMS gateway. Without an API key it
// logs the message instead of sending, for local development.
type TermiiService struct {
	cfg    config.SMSConfig
	client *http.Client
}

func NewTermiiService(cfg config.SMSConfig) *TermiiService {
	return &TermiiService{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type termiiSendRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	SMS     string `json:"sms"`
	Type    string `json:"type"`
	Channel string `json:"channel"`
	APIKey  string `json:"api_key"`
}

type termiiSendResponse struct {
	MessageID string `json:"message_id"`
	Message   string `json:"message"`
	Code      string `json:"code"`
}

// FormatPhone normalizes a Nigerian phone number to international form
func FormatPhone(phone string) string {
	phone = strings.ReplaceAll(phone, "+", "")
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")

	// Local "0803..." form becomes "234803..."
	if strings.HasPrefix(phone, "0") && len(phone) == 11 {
		phone = "234" + phone[1:]
	}

	return phone
}

// Send delivers a single SMS
func (t *TermiiService) Send(ctx context.Context, phone, message string) error {
	if t.cfg.APIKey == "" {
		logger.Info("[DEV MODE] SMS not sent", map[string]interface{}{
			"phone":   phone,
			"message": message,
		})
		return nil
	}

	payload := termiiSendRequest{
		To:      FormatPhone(phone),
		From:    t.cfg.SenderID,
		SMS:     message,
		Type:    "plain",
		Channel: "generic",
		APIKey:  t.cfg.APIKey,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.BaseURL+"/api/sms/send", bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read sms response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms send failed with status %d: %s", resp.StatusCode, string(body))
	}

	var sendResp termiiSendResponse
	if err := json.Unmarshal(body, &sendResp); err != nil {
		// A 200 with an unparseable body still counts as sent
		logger.Warn("SMS response parse warning", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	logger.Debug("SMS sent", map[string]interface{}{
		"phone":      payload.To,
		"message_id": sendResp.MessageID,
	})
	return nil
}
