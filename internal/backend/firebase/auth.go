package firebase

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/iliyamo/justloook-provider-portal/internal/model"
)

// Auth talks to Firebase Authentication through the Identity Toolkit
// relying party API, authenticated by the project's web API key.
type Auth struct {
	rp *identitytoolkit.RelyingpartyService
}

func NewAuth(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Auth, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %w", err)
	}
	return &Auth{rp: svc.Relyingparty}, nil
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (model.Identity, error) {
	resp, err := a.rp.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return model.Identity{}, authError("sign in", err)
	}
	return model.Identity{
		UID:         resp.LocalId,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		Token:       resp.IdToken,
	}, nil
}

func (a *Auth) SignUp(ctx context.Context, email, password string) (model.Identity, error) {
	resp, err := a.rp.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return model.Identity{}, authError("sign up", err)
	}
	return model.Identity{
		UID:         resp.LocalId,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		Token:       resp.IdToken,
	}, nil
}

func (a *Auth) SendPasswordReset(ctx context.Context, email string) error {
	_, err := a.rp.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	return authError("password reset", err)
}

func (a *Auth) UpdateDisplayName(ctx context.Context, id model.Identity, name string) error {
	if id.Token == "" {
		return errors.New("update display name: identity has no id token")
	}
	_, err := a.rp.SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		IdToken:     id.Token,
		DisplayName: name,
	}).Context(ctx).Do()
	return authError("update display name", err)
}
