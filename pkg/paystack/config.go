package paystack

// Config represents the configuration for the Paystack client
type Config struct {
	// SecretKey is the Paystack secret key for API authentication
	SecretKey string

	// BaseURL is the Paystack API base URL
	BaseURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrInvalidConfig
	}
	if c.BaseURL == "" {
		return ErrInvalidConfig
	}
	return nil
}
