package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/banking-backend/internal/crypto"
	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

const (
	maxProfileImageBytes = 5 << 20
	minPasswordLength    = 6

	msgEmailTaken = "An account with this email already exists"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type userUSStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, uid string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type credentialProvider interface {
	CreateCredential(ctx context.Context, email, password, displayName string) (string, error)
	DeleteCredential(ctx context.Context, uid string) error
}

type imageUploader interface {
	UploadProfileImage(ctx context.Context, key string, file dto.Upload) (string, error)
	DeleteObject(ctx context.Context, url string) error
}

type fieldCipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
}

type userService struct {
	Store    userUSStore
	identity credentialProvider
	images   imageUploader
	cipher   fieldCipher
}

func NewUserService(store userUSStore, identity credentialProvider, images imageUploader, cipher fieldCipher) *userService {
	return &userService{
		Store:    store,
		identity: identity,
		images:   images,
		cipher:   cipher,
	}
}

// SignUp registers a new customer: the profile image is uploaded first,
// then the credential is created, then the schema-v1 document is written.
// A failed later step undoes the earlier ones.
func (s *userService) SignUp(ctx context.Context, req dto.SignUpRequest, image *dto.Upload) (*models.User, error) {
	log := logger.FromContext(ctx)

	req = trimSignUp(req)
	if err := validateSignUp(req, image); err != nil {
		return nil, err
	}

	if _, err := s.Store.FindByEmail(ctx, req.Email); err == nil {
		return nil, errs.NewAlreadyExistsError(msgEmailTaken)
	} else if !errs.IsNotFound(err) {
		return nil, err
	}

	ssnEncrypted, err := s.cipher.Encrypt(ctx, req.SSN)
	if err != nil {
		return nil, err
	}

	var imageURL string
	if image != nil {
		if imageURL, err = s.images.UploadProfileImage(ctx, uuid.NewString(), *image); err != nil {
			return nil, err
		}
	}

	uid, err := s.identity.CreateCredential(ctx, req.Email, req.Password, req.FirstName+" "+req.LastName)
	if err != nil {
		s.discardImage(ctx, imageURL)
		return nil, err
	}

	user := &models.User{
		UID:           uid,
		Email:         req.Email,
		Role:          models.RoleUser,
		AccountNumber: GenerateAccountNumber(),
		AccountType:   req.AccountType,
		AccountStatus: models.AccountActive,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PhoneNumber:   req.PhoneNumber,
		DateOfBirth:   req.DateOfBirth,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
		SSNEncrypted:  ssnEncrypted,
		SSNLast4:      crypto.Last4(req.SSN),
		Image:         imageURL,
		Balance:       0,
		Transactions:  []models.Transaction{},
		Cards:         []models.Card{},
		SchemaVersion: models.CurrentSchemaVersion,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.Store.CreateUser(ctx, user); err != nil {
		log.Error("failed to create user in store", "error", err)
		if derr := s.identity.DeleteCredential(ctx, uid); derr != nil {
			log.Error("failed to roll back credential", "uid", uid, "error", derr)
		}
		s.discardImage(ctx, imageURL)
		return nil, err
	}

	log.Info("user created successfully", "uid", uid, "account_type", user.AccountType)
	return user, nil
}

// Profile returns the caller's own document.
func (s *userService) Profile(ctx context.Context, uid string) (*models.User, error) {
	return s.Store.GetUser(ctx, uid)
}

func (s *userService) discardImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.images.DeleteObject(ctx, url); err != nil {
		logger.FromContext(ctx).Warn("failed to delete orphaned profile image", "error", err)
	}
}

func trimSignUp(r dto.SignUpRequest) dto.SignUpRequest {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.Address = strings.TrimSpace(r.Address)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	r.ZipCode = strings.TrimSpace(r.ZipCode)
	r.SSN = strings.TrimSpace(r.SSN)
	r.AccountType = strings.TrimSpace(r.AccountType)
	return r
}

func validateSignUp(r dto.SignUpRequest, image *dto.Upload) error {
	required := []string{r.FirstName, r.LastName, r.Email, r.Password, r.ConfirmPassword,
		r.PhoneNumber, r.DateOfBirth, r.Address, r.City, r.State, r.ZipCode, r.SSN, r.AccountType}
	for _, v := range required {
		if v == "" {
			return errs.NewValidationError("Please fill in all required fields")
		}
	}
	switch {
	case !emailPattern.MatchString(r.Email):
		return errs.NewValidationError("Please enter a valid email address")
	case r.Password != r.ConfirmPassword:
		return errs.NewValidationError("Passwords do not match")
	case len(r.Password) < minPasswordLength:
		return errs.NewValidationError("Password must be at least 6 characters")
	case len(r.PhoneNumber) != 11 || !digitsOnly(r.PhoneNumber):
		return errs.NewValidationError("Please enter a valid 11-digit phone number")
	case len(r.SSN) != 9 || !digitsOnly(r.SSN):
		return errs.NewValidationError("Please enter a valid 9-digit SSN")
	}
	if image != nil {
		if image.Size > maxProfileImageBytes {
			return errs.NewValidationError("Image size must be less than 5MB")
		}
		if !strings.HasPrefix(image.ContentType, "image/") {
			return errs.NewValidationError("Please upload an image file")
		}
	}
	return nil
}

// GenerateAccountNumber returns "ACC" followed by 12 uppercase characters.
func GenerateAccountNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ACC" + raw[:12]
}
