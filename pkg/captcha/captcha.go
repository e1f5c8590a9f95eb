package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/pkg/logger"
)

const verifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Verifier checks reCAPTCHA tokens. With no secret configured every token
// passes, so local development never needs a site key.
type Verifier struct {
	secret string
	client *http.Client
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: secret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks a client captcha token against the verification endpoint
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if v.secret == "" {
		logger.Debug("[DEV MODE] Captcha check skipped", nil)
		return true, nil
	}
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to create captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha verification request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read captcha response: %w", err)
	}

	var result verifyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return false, fmt.Errorf("failed to parse captcha response: %w", err)
	}

	if !result.Success {
		logger.Warn("Captcha verification rejected", map[string]interface{}{
			"error_codes": result.ErrorCodes,
		})
	}
	return result.Success, nil
}
