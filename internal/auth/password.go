package auth

import (
	"crypto/subtle"

	"github.com/parisxmas/OxiDB/qrform/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Verifier checks login attempts against the configured admin identity.
type Verifier struct {
	admin models.AdminIdentity
}

func NewVerifier(admin models.AdminIdentity) *Verifier {
	return &Verifier{admin: admin}
}

// Verify reports whether username and password both match the admin.
// The username match is exact and case-sensitive.
func (v *Verifier) Verify(username, password string) bool {
	if username == "" || password == "" || v.admin.PasswordHash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.admin.Username)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	passOK := CheckPassword(password, v.admin.PasswordHash)
	return userOK && passOK
}
