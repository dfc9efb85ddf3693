package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/pkg/helpers"
)

func validSignUp() dto.SignUpRequest {
	return dto.SignUpRequest{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "Jane@Example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		PhoneNumber:     "15551234567",
		DateOfBirth:     "1990-01-01",
		Address:         "1 Main St",
		City:            "Springfield",
		State:           "IL",
		ZipCode:         "62701",
		SSN:             "123456789",
		AccountType:     "Checking",
	}
}

type userFixture struct {
	svc      *userService
	store    *fakeUserStore
	identity *fakeIdentity
	uploader *fakeUploader
	cipher   *fakeCipher
}

func newUserFixture() *userFixture {
	f := &userFixture{
		store:    newFakeUserStore(),
		identity: &fakeIdentity{nextUID: "uid-123"},
		uploader: &fakeUploader{},
		cipher:   &fakeCipher{},
	}
	f.svc = NewUserService(f.store, f.identity, f.uploader, f.cipher)
	return f
}

func TestUserServiceSignUp(t *testing.T) {
	f := newUserFixture()
	image := &dto.Upload{Name: "me.png", ContentType: "image/png", Size: 1024, Body: strings.NewReader("png")}

	user, err := f.svc.SignUp(helpers.TestCtx(), validSignUp(), image)
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	stored := f.store.users["uid-123"]
	if stored == nil {
		t.Fatalf("user was not stored")
	}
	if stored.Email != "jane@example.com" || stored.Role != models.RoleUser || stored.Balance != 0 {
		t.Fatalf("unexpected stored user: %+v", stored)
	}
	if stored.SSNEncrypted != "enc:123456789" || stored.SSNLast4 != "6789" {
		t.Fatalf("ssn not encrypted: %+v", stored)
	}
	if len(stored.AccountNumber) != 15 || !strings.HasPrefix(stored.AccountNumber, "ACC") || strings.ToUpper(stored.AccountNumber) != stored.AccountNumber {
		t.Fatalf("unexpected account number %q", stored.AccountNumber)
	}
	if stored.SchemaVersion != models.CurrentSchemaVersion || stored.Cards == nil || stored.Transactions == nil {
		t.Fatalf("expected schema-v1 document: %+v", stored)
	}
	if user.Image == "" || f.uploader.uploads != 1 {
		t.Fatalf("image not uploaded")
	}
}

func TestUserServiceSignUpValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.SignUpRequest)
		image  *dto.Upload
		want   string
	}{
		{"missing field", func(r *dto.SignUpRequest) { r.City = " " }, nil, "Please fill in all required fields"},
		{"bad email", func(r *dto.SignUpRequest) { r.Email = "jane.example.com" }, nil, "Please enter a valid email address"},
		{"mismatch", func(r *dto.SignUpRequest) { r.ConfirmPassword = "other12" }, nil, "Passwords do not match"},
		{"short password", func(r *dto.SignUpRequest) { r.Password, r.ConfirmPassword = "abc", "abc" }, nil, "Password must be at least 6 characters"},
		{"phone", func(r *dto.SignUpRequest) { r.PhoneNumber = "5551234567" }, nil, "Please enter a valid 11-digit phone number"},
		{"ssn", func(r *dto.SignUpRequest) { r.SSN = "12345678" }, nil, "Please enter a valid 9-digit SSN"},
		{"large image", func(*dto.SignUpRequest) {}, &dto.Upload{ContentType: "image/png", Size: 6 << 20}, "Image size must be less than 5MB"},
		{"not an image", func(*dto.SignUpRequest) {}, &dto.Upload{ContentType: "application/pdf", Size: 10}, "Please upload an image file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUserFixture()
			req := validSignUp()
			tt.mutate(&req)
			_, err := f.svc.SignUp(helpers.TestCtx(), req, tt.image)
			if err == nil || err.Error() != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, err)
			}
			if len(f.identity.created) != 0 || f.store.createCalls != 0 || f.uploader.uploads != 0 {
				t.Fatalf("validation failure must not write anything")
			}
		})
	}
}

func TestUserServiceSignUpDuplicateEmail(t *testing.T) {
	f := newUserFixture()
	f.store.users["existing"] = &models.User{UID: "existing", Email: "jane@example.com"}

	_, err := f.svc.SignUp(helpers.TestCtx(), validSignUp(), nil)
	var exists *errs.AlreadyExistsError
	if !errors.As(err, &exists) || err.Error() != "An account with this email already exists" {
		t.Fatalf("expected duplicate email error, got %v", err)
	}
	if len(f.identity.created) != 0 {
		t.Fatalf("credential must not be created")
	}
}

func TestUserServiceSignUpRollsBackCredential(t *testing.T) {
	f := newUserFixture()
	f.store.createErr = errs.NewDatabaseError("create", "failed", errors.New("unavailable"))
	image := &dto.Upload{Name: "me.png", ContentType: "image/png", Size: 10, Body: strings.NewReader("x")}

	if _, err := f.svc.SignUp(helpers.TestCtx(), validSignUp(), image); err == nil {
		t.Fatalf("expected error")
	}
	if len(f.identity.deleted) != 1 || f.identity.deleted[0] != "uid-123" {
		t.Fatalf("expected credential rollback, got %v", f.identity.deleted)
	}
	if len(f.uploader.deleted) != 1 {
		t.Fatalf("expected orphaned image cleanup")
	}
}

func TestUserServiceSignUpCredentialFailureWritesNothing(t *testing.T) {
	f := newUserFixture()
	f.identity.createErr = errs.NewAlreadyExistsError("An account with this email already exists")

	if _, err := f.svc.SignUp(helpers.TestCtx(), validSignUp(), nil); err == nil {
		t.Fatalf("expected error")
	}
	if f.store.createCalls != 0 {
		t.Fatalf("document must not be written when the credential fails")
	}
}
