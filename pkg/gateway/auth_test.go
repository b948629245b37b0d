package gateway

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTOTPSecret = "JBSWY3DPEHPK3PXP"

func totpCodeAt(t *testing.T, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCode(testTOTPSecret, at)
	require.NoError(t, err)
	return code
}

func TestAuthenticatorVerify(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newAuth := func() *Authenticator {
		a := NewAuthenticator("hunter2", testTOTPSecret, false)
		a.now = func() time.Time { return now }
		return a
	}

	t.Run("should accept a valid password and code", func(t *testing.T) {
		err := newAuth().Verify(map[string]interface{}{
			"password": "hunter2",
			"totp":     totpCodeAt(t, now),
		})
		assert.NoError(t, err)
	})

	t.Run("should accept a code from the previous step", func(t *testing.T) {
		err := newAuth().Verify(map[string]interface{}{
			"password": "hunter2",
			"totp":     totpCodeAt(t, now.Add(-30*time.Second)),
		})
		assert.NoError(t, err)
	})

	t.Run("should reject a stale code", func(t *testing.T) {
		err := newAuth().Verify(map[string]interface{}{
			"password": "hunter2",
			"totp":     totpCodeAt(t, now.Add(-5*time.Minute)),
		})
		assert.EqualError(t, err, "Invalid or expired TOTP code.")
	})

	t.Run("should reject a wrong password", func(t *testing.T) {
		err := newAuth().Verify(map[string]interface{}{
			"password": "nope",
			"totp":     totpCodeAt(t, now),
		})
		assert.EqualError(t, err, "Invalid password.")
	})

	t.Run("should require a code when enabled", func(t *testing.T) {
		err := newAuth().Verify(map[string]interface{}{"password": "hunter2"})
		assert.EqualError(t, err, "Missing TOTP code.")
	})

	t.Run("should skip the code check when disabled", func(t *testing.T) {
		a := NewAuthenticator("hunter2", "", true)
		err := a.Verify(map[string]interface{}{"password": "hunter2"})
		assert.NoError(t, err)
	})

	t.Run("should fail without a configured password", func(t *testing.T) {
		a := NewAuthenticator("", testTOTPSecret, false)
		err := a.Verify(map[string]interface{}{"password": ""})
		assert.EqualError(t, err, "Server password is not configured.")
	})

	t.Run("should fail without a configured secret", func(t *testing.T) {
		a := NewAuthenticator("hunter2", "", false)
		err := a.Verify(map[string]interface{}{
			"password": "hunter2",
			"totp":     "123456",
		})
		assert.EqualError(t, err, "Server TOTP secret is not configured.")
	})
}
