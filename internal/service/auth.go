package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jaekwang-park/task-api/internal/cognito"
	"github.com/jaekwang-park/task-api/internal/repository"
)

// AuthService fronts the identity provider and provisions the local user
// row that tasks and profiles hang off.
type AuthService struct {
	idp   cognito.Client
	users repository.UserRepository
}

func NewAuthService(idp cognito.Client, users repository.UserRepository) *AuthService {
	return &AuthService{idp: idp, users: users}
}

type SignUpOutput struct {
	UserSub      string `json:"user_sub"`
	Confirmed    bool   `json:"confirmed"`
	CodeDelivery string `json:"code_delivery"`
}

type TokenOutput struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int32  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// required returns ErrInvalidInput naming the first empty field.
func required(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, f[0])
		}
	}
	return nil
}

func (s *AuthService) SignUp(ctx context.Context, email, password string) (SignUpOutput, error) {
	if err := required([2]string{"email", email}, [2]string{"password", password}); err != nil {
		return SignUpOutput{}, err
	}

	reg, err := s.idp.SignUp(ctx, cognito.Credentials{Email: email, Password: password})
	if err != nil {
		return SignUpOutput{}, err
	}
	return SignUpOutput{
		UserSub:      reg.UserSub,
		Confirmed:    reg.Confirmed,
		CodeDelivery: reg.CodeDelivery,
	}, nil
}

func (s *AuthService) ConfirmSignUp(ctx context.Context, email, code string) error {
	if err := required([2]string{"email", email}, [2]string{"code", code}); err != nil {
		return err
	}
	return s.idp.ConfirmSignUp(ctx, email, code)
}

// Login authenticates against the identity provider and makes sure a local
// user exists for the token subject.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenOutput, error) {
	if err := required([2]string{"email", email}, [2]string{"password", password}); err != nil {
		return TokenOutput{}, err
	}

	tokens, err := s.idp.Login(ctx, cognito.Credentials{Email: email, Password: password})
	if err != nil {
		return TokenOutput{}, err
	}

	// The token was just issued to us, so the payload is read without
	// verifying the signature.
	sub, err := extractSub(tokens.IDToken)
	if err != nil {
		return TokenOutput{}, fmt.Errorf("failed to extract sub from id token: %w", err)
	}
	if _, err := s.users.GetOrCreate(ctx, sub, email); err != nil {
		return TokenOutput{}, fmt.Errorf("failed to provision user: %w", err)
	}

	return tokenOutput(tokens), nil
}

func (s *AuthService) Refresh(ctx context.Context, email, refreshToken string) (TokenOutput, error) {
	if err := required([2]string{"email", email}, [2]string{"refresh_token", refreshToken}); err != nil {
		return TokenOutput{}, err
	}

	tokens, err := s.idp.Refresh(ctx, email, refreshToken)
	if err != nil {
		return TokenOutput{}, err
	}
	tokens.RefreshToken = ""
	return tokenOutput(tokens), nil
}

func (s *AuthService) ChangePassword(ctx context.Context, accessToken, previous, proposed string) error {
	if err := required(
		[2]string{"access_token", accessToken},
		[2]string{"previous_password", previous},
		[2]string{"new_password", proposed},
	); err != nil {
		return err
	}
	return s.idp.ChangePassword(ctx, accessToken, previous, proposed)
}

func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	if err := required([2]string{"access_token", accessToken}); err != nil {
		return err
	}
	return s.idp.SignOut(ctx, accessToken)
}

func tokenOutput(t cognito.Tokens) TokenOutput {
	return TokenOutput{
		IDToken:      t.IDToken,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
		TokenType:    t.TokenType,
	}
}

// extractSub decodes the JWT payload and returns the "sub" claim.
func extractSub(idToken string) (string, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid JWT format")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("failed to decode JWT payload: %w", err)
	}

	var claims struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", fmt.Errorf("failed to parse JWT claims: %w", err)
	}
	if claims.Sub == "" {
		return "", fmt.Errorf("sub claim not found in JWT")
	}
	return claims.Sub, nil
}
