package gateway

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Authenticator validates first-message auth payloads: an exact password
// match plus, unless disabled, a TOTP code checked with one step of
// clock skew in either direction.
type Authenticator struct {
	password     string
	totpSecret   string
	totpDisabled bool
	now          func() time.Time
}

// NewAuthenticator creates an authenticator from the configured secrets.
func NewAuthenticator(password, totpSecret string, totpDisabled bool) *Authenticator {
	return &Authenticator{
		password:     password,
		totpSecret:   totpSecret,
		totpDisabled: totpDisabled,
		now:          time.Now,
	}
}

// Verify checks an auth payload and returns a descriptive error on any
// failure.
func (a *Authenticator) Verify(payload map[string]interface{}) error {
	if a.password == "" {
		return fmt.Errorf("Server password is not configured.")
	}

	password, _ := payload["password"].(string)
	if password != a.password {
		return fmt.Errorf("Invalid password.")
	}

	if a.totpDisabled {
		return nil
	}

	code, _ := payload["totp"].(string)
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("Missing TOTP code.")
	}
	if a.totpSecret == "" {
		return fmt.Errorf("Server TOTP secret is not configured.")
	}

	valid, err := totp.ValidateCustom(strings.TrimSpace(code), a.totpSecret, a.now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return fmt.Errorf("Server TOTP secret is invalid.")
	}
	if !valid {
		return fmt.Errorf("Invalid or expired TOTP code.")
	}
	return nil
}
