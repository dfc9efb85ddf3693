package identityclient

import (
	"context"
	"time"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
)

// Adapter wraps the Firebase Auth client with the calls the API needs.
type Adapter struct {
	client *auth.Client
}

func NewAdapter(client *auth.Client) *Adapter {
	return &Adapter{client: client}
}

// VerifyIDToken checks a bearer ID token and returns the signed-in principal.
func (a *Adapter) VerifyIDToken(ctx context.Context, idToken string) (dto.Principal, error) {
	token, err := a.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return dto.Principal{}, errs.NewUnauthorizedError("invalid or expired token", "/")
	}
	email, _ := token.Claims["email"].(string)
	return dto.Principal{UID: token.UID, Email: email}, nil
}

// LastLogin reads the last sign-in time from the credential's metadata.
// It returns nil when the provider has no record of one.
func (a *Adapter) LastLogin(ctx context.Context, uid string) (*time.Time, error) {
	rec, err := a.client.GetUser(ctx, uid)
	if auth.IsUserNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewExternalServiceError("identity", "failed to read user metadata", true, err)
	}
	if rec.UserMetadata == nil || rec.UserMetadata.LastLogInTimestamp == 0 {
		return nil, nil
	}
	t := time.UnixMilli(rec.UserMetadata.LastLogInTimestamp).UTC()
	return &t, nil
}

// CreateCredential registers an email/password credential and returns its uid.
func (a *Adapter) CreateCredential(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	rec, err := a.client.CreateUser(ctx, params)
	if auth.IsEmailAlreadyExists(err) {
		return "", errs.NewAlreadyExistsError("An account with this email already exists")
	}
	if err != nil {
		return "", errs.NewExternalServiceError("identity", "failed to create credential", false, err)
	}
	return rec.UID, nil
}

// UpdateEmail keeps the credential's email in step with the profile.
func (a *Adapter) UpdateEmail(ctx context.Context, uid, email string) error {
	_, err := a.client.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).Email(email))
	if auth.IsEmailAlreadyExists(err) {
		return errs.NewAlreadyExistsError("An account with this email already exists")
	}
	if err != nil {
		return errs.NewExternalServiceError("identity", "failed to update credential", false, err)
	}
	return nil
}

// DeleteCredential removes the credential. A missing credential is not an
// error.
func (a *Adapter) DeleteCredential(ctx context.Context, uid string) error {
	err := a.client.DeleteUser(ctx, uid)
	if err == nil || auth.IsUserNotFound(err) {
		return nil
	}
	return errs.NewExternalServiceError("identity", "failed to delete credential", false, err)
}
