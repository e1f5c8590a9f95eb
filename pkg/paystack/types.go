package paystack

import "time"

// VerifyResponse is the envelope returned by GET /transaction/verify/:reference
type VerifyResponse struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Data    VerifyTransaction `json:"data"`
}

// VerifyTransaction describes the verified transaction. Amount is in the
// currency subunit (kobo for NGN).
type VerifyTransaction struct {
	ID        int64      `json:"id"`
	Status    string     `json:"status"` // "success", "failed", "abandoned"
	Reference string     `json:"reference"`
	Amount    int64      `json:"amount"`
	Currency  string     `json:"currency"`
	Channel   string     `json:"channel"`
	PaidAt    *time.Time `json:"paid_at"`
	Customer  Customer   `json:"customer"`
}

// Customer is the Paystack customer attached to a transaction
type Customer struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// InitializeRequest starts a hosted checkout session
type InitializeRequest struct {
	Email     string `json:"email"`
	Amount    int64  `json:"amount"` // subunit
	Reference string `json:"reference,omitempty"`
	Callback  string `json:"callback_url,omitempty"`
}

// InitializeResponse is the envelope returned by POST /transaction/initialize
type InitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// ToSubunit converts a major-currency amount to the gateway subunit
func ToSubunit(amount float64) int64 {
	return int64(amount*100 + 0.5)
}

// FromSubunit converts a gateway subunit amount back to major currency
func FromSubunit(amount int64) float64 {
	return float64(amount) / 100
}
