package cognito

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

// AWSClient implements Client against a Cognito user pool app client.
type AWSClient struct {
	api          *cip.Client
	clientID     string
	clientSecret string
}

func NewAWSClient(ctx context.Context, region, clientID, clientSecret string) (*AWSClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &AWSClient{
		api:          cip.NewFromConfig(cfg),
		clientID:     clientID,
		clientSecret: clientSecret,
	}, nil
}

// hash returns the SECRET_HASH for username, or nil for public app clients.
func (c *AWSClient) hash(username string) *string {
	if c.clientSecret == "" {
		return nil
	}
	return aws.String(SecretHash(username, c.clientID, c.clientSecret))
}

func (c *AWSClient) SignUp(ctx context.Context, creds Credentials) (Registration, error) {
	out, err := c.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:   aws.String(c.clientID),
		SecretHash: c.hash(creds.Email),
		Username:   aws.String(creds.Email),
		Password:   aws.String(creds.Password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(creds.Email)},
		},
	})
	if err != nil {
		return Registration{}, translate(err)
	}

	reg := Registration{
		UserSub:   aws.ToString(out.UserSub),
		Confirmed: out.UserConfirmed,
	}
	if out.CodeDeliveryDetails != nil {
		reg.CodeDelivery = string(out.CodeDeliveryDetails.DeliveryMedium)
	}
	return reg, nil
}

func (c *AWSClient) ConfirmSignUp(ctx context.Context, email, code string) error {
	_, err := c.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		SecretHash:       c.hash(email),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	})
	return translate(err)
}

func (c *AWSClient) Login(ctx context.Context, creds Credentials) (Tokens, error) {
	return c.authenticate(ctx, types.AuthFlowTypeUserPasswordAuth, creds.Email, map[string]string{
		"USERNAME": creds.Email,
		"PASSWORD": creds.Password,
	})
}

func (c *AWSClient) Refresh(ctx context.Context, email, refreshToken string) (Tokens, error) {
	return c.authenticate(ctx, types.AuthFlowTypeRefreshTokenAuth, email, map[string]string{
		"REFRESH_TOKEN": refreshToken,
	})
}

func (c *AWSClient) authenticate(ctx context.Context, flow types.AuthFlowType, username string, params map[string]string) (Tokens, error) {
	if h := c.hash(username); h != nil {
		params["SECRET_HASH"] = *h
	}

	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId:       aws.String(c.clientID),
		AuthFlow:       flow,
		AuthParameters: params,
	})
	if err != nil {
		return Tokens{}, translate(err)
	}
	res := out.AuthenticationResult
	if res == nil {
		return Tokens{}, fmt.Errorf("cognito: %s returned no authentication result", flow)
	}
	return Tokens{
		IDToken:      aws.ToString(res.IdToken),
		AccessToken:  aws.ToString(res.AccessToken),
		RefreshToken: aws.ToString(res.RefreshToken),
		ExpiresIn:    res.ExpiresIn,
		TokenType:    aws.ToString(res.TokenType),
	}, nil
}

func (c *AWSClient) ChangePassword(ctx context.Context, accessToken, previous, proposed string) error {
	_, err := c.api.ChangePassword(ctx, &cip.ChangePasswordInput{
		AccessToken:      aws.String(accessToken),
		PreviousPassword: aws.String(previous),
		ProposedPassword: aws.String(proposed),
	})
	return translate(err)
}

func (c *AWSClient) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.api.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	return translate(err)
}

// exceptions maps Cognito API error codes onto package sentinels.
var exceptions = map[string]error{
	"UsernameExistsException":        ErrUserAlreadyExists,
	"UserNotFoundException":          ErrUserNotFound,
	"UserNotConfirmedException":      ErrUserNotConfirmed,
	"InvalidPasswordException":       ErrInvalidPassword,
	"CodeMismatchException":          ErrInvalidCode,
	"ExpiredCodeException":           ErrCodeExpired,
	"TooManyRequestsException":       ErrTooManyRequests,
	"LimitExceededException":         ErrTooManyRequests,
	"NotAuthorizedException":         ErrNotAuthorized,
	"PasswordResetRequiredException": ErrNotAuthorized,
	"InvalidParameterException":      ErrInvalidParameter,
}

// translate wraps AWS SDK errors so callers can match them with errors.Is.
// A nil error stays nil.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("cognito: %w", err)
	}
	if sentinel, ok := exceptions[apiErr.ErrorCode()]; ok {
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), sentinel)
	}
	return fmt.Errorf("cognito %s: %w", apiErr.ErrorCode(), err)
}

var _ Client = (*AWSClient)(nil)
