package service

import (
	"errors"
	"fmt"

	"github.com/parisxmas/OxiDB/qrform/internal/auth"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type AuthService struct {
	verifier *auth.Verifier
	tokens   *auth.Tokens
}

func NewAuthService(verifier *auth.Verifier, tokens *auth.Tokens) *AuthService {
	return &AuthService{verifier: verifier, tokens: tokens}
}

type AuthResult struct {
	Token string `json:"token"`
}

// Login checks the credentials and issues a session token.
func (s *AuthService) Login(username, password string) (*AuthResult, error) {
	if !s.verifier.Verify(username, password) {
		return nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token}, nil
}
