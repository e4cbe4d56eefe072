package cognito

import "context"

// Client is the subset of the Cognito user pool API the task service uses
// for account management. Token verification happens in the auth middleware.
type Client interface {
	SignUp(ctx context.Context, creds Credentials) (Registration, error)
	ConfirmSignUp(ctx context.Context, email, code string) error
	Login(ctx context.Context, creds Credentials) (Tokens, error)
	Refresh(ctx context.Context, email, refreshToken string) (Tokens, error)
	ChangePassword(ctx context.Context, accessToken, previous, proposed string) error
	SignOut(ctx context.Context, accessToken string) error
}

type Credentials struct {
	Email    string
	Password string
}

// Registration describes a freshly created pool user.
type Registration struct {
	UserSub      string
	Confirmed    bool
	CodeDelivery string
}

// Tokens is the result of a successful authentication flow. RefreshToken is
// empty for refresh flows.
type Tokens struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int32
	TokenType    string
}
