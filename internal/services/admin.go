package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/banking-backend/internal/crypto"
	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/history"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/internal/workflow"
	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

const (
	msgCardNotFound        = "Card not found"
	msgTransactionNotFound = "Transaction not found"
	msgMissingTxFields     = "Missing required transaction fields"
	msgInvalidAmount       = "Invalid amount value"
)

type userASStore interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, uid string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, uid string, fields map[string]any) error
	DeleteUser(ctx context.Context, uid string) error
	MutateUser(ctx context.Context, uid string, fn func(u *models.User) error) (*models.User, error)
}

type credentialAdmin interface {
	CreateCredential(ctx context.Context, email, password, displayName string) (string, error)
	UpdateEmail(ctx context.Context, uid, email string) error
	DeleteCredential(ctx context.Context, uid string) error
}

type adminService struct {
	users    userASStore
	identity credentialAdmin
	cipher   fieldCipher
	clockNow func() time.Time
}

func NewAdminService(users userASStore, identity credentialAdmin, cipher fieldCipher) *adminService {
	return &adminService{
		users:    users,
		identity: identity,
		cipher:   cipher,
		clockNow: time.Now,
	}
}

// ListUsers searches, sorts and pages the user collection.
func (s *adminService) ListUsers(ctx context.Context, q dto.UserListQuery) (dto.UserPage, error) {
	all, err := s.users.ListUsers(ctx)
	if err != nil {
		return dto.UserPage{}, err
	}

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	matched := make([]*models.User, 0, len(all))
	for _, u := range all {
		if needle == "" || userMatches(u, needle) {
			matched = append(matched, u)
		}
	}

	field, desc := q.SortField, q.SortDesc
	if field == "" {
		field, desc = "createdAt", true
	}
	less := userLess(field)
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	total := len(matched)
	pages := (total + dto.AdminPageSize - 1) / dto.AdminPageSize
	if pages == 0 {
		pages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * dto.AdminPageSize
	end := start + dto.AdminPageSize
	if end > total {
		end = total
	}

	return dto.UserPage{
		Users:      matched[start:end],
		Page:       page,
		TotalPages: pages,
		Total:      total,
	}, nil
}

func (s *adminService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	return s.users.GetUser(ctx, uid)
}

// CreateUser provisions the credential before writing anything. If the
// document write fails the credential is removed again.
func (s *adminService) CreateUser(ctx context.Context, req dto.AdminCreateUserRequest) (*models.User, error) {
	log := logger.FromContext(ctx)

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return nil, errs.NewValidationError("Please fill in all required fields")
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, errs.NewValidationError("Please enter a valid email address")
	}
	if len(req.Password) < minPasswordLength {
		return nil, errs.NewValidationError("Password must be at least 6 characters")
	}
	role, err := normalizeRole(req.Role)
	if err != nil {
		return nil, err
	}
	status, err := normalizeAccountStatus(req.AccountStatus)
	if err != nil {
		return nil, err
	}
	balance := decimal.Zero
	if strings.TrimSpace(req.Balance) != "" {
		if balance, err = workflow.ParseAmount(req.Balance); err != nil {
			return nil, errs.NewValidationError("Invalid balance value")
		}
	}

	var ssnEncrypted, ssnLast4 string
	if ssn := strings.TrimSpace(req.SSN); ssn != "" {
		if ssnEncrypted, err = s.cipher.Encrypt(ctx, ssn); err != nil {
			return nil, err
		}
		ssnLast4 = crypto.Last4(ssn)
	}

	uid, err := s.identity.CreateCredential(ctx, req.Email, req.Password, strings.TrimSpace(req.FirstName+" "+req.LastName))
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UID:           uid,
		Email:         req.Email,
		Role:          role,
		AccountNumber: GenerateAccountNumber(),
		AccountType:   strings.TrimSpace(req.AccountType),
		AccountStatus: status,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		PhoneNumber:   strings.TrimSpace(req.PhoneNumber),
		DateOfBirth:   strings.TrimSpace(req.DateOfBirth),
		Address:       strings.TrimSpace(req.Address),
		City:          strings.TrimSpace(req.City),
		State:         strings.TrimSpace(req.State),
		ZipCode:       strings.TrimSpace(req.ZipCode),
		SSNEncrypted:  ssnEncrypted,
		SSNLast4:      ssnLast4,
		Balance:       balance.Round(2).InexactFloat64(),
		Transactions:  []models.Transaction{},
		Cards:         []models.Card{},
		SchemaVersion: models.CurrentSchemaVersion,
		CreatedAt:     s.clockNow().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		log.Error("failed to write admin-created user", "error", err)
		if derr := s.identity.DeleteCredential(ctx, uid); derr != nil {
			log.Error("failed to roll back credential", "uid", uid, "error", derr)
		}
		return nil, err
	}

	log.Info("admin created user", "target_uid", uid, "role", role)
	return user, nil
}

// UpdateUser patches the fields present in req.
func (s *adminService) UpdateUser(ctx context.Context, uid string, req dto.AdminUpdateUserRequest) (*models.User, error) {
	fields := map[string]any{}
	setString := func(path string, v *string) {
		if v != nil {
			fields[path] = strings.TrimSpace(*v)
		}
	}
	setString("firstName", req.FirstName)
	setString("lastName", req.LastName)
	setString("phoneNumber", req.PhoneNumber)
	setString("dateOfBirth", req.DateOfBirth)
	setString("address", req.Address)
	setString("city", req.City)
	setString("state", req.State)
	setString("zipCode", req.ZipCode)
	setString("accountType", req.AccountType)

	if req.Role != nil {
		role, err := normalizeRole(*req.Role)
		if err != nil {
			return nil, err
		}
		fields["role"] = role
	}
	if req.AccountStatus != nil {
		status, err := normalizeAccountStatus(*req.AccountStatus)
		if err != nil {
			return nil, err
		}
		fields["accountStatus"] = status
	}
	if req.Balance != nil {
		fields["balance"] = decimal.NewFromFloat(*req.Balance).Round(2).InexactFloat64()
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailPattern.MatchString(email) {
			return nil, errs.NewValidationError("Please enter a valid email address")
		}
		current, err := s.users.GetUser(ctx, uid)
		if err != nil {
			return nil, err
		}
		if current.Email != email {
			if err := s.identity.UpdateEmail(ctx, uid, email); err != nil {
				return nil, err
			}
		}
		fields["email"] = email
	}

	if len(fields) > 0 {
		if err := s.users.UpdateFields(ctx, uid, fields); err != nil {
			return nil, err
		}
	}
	logger.FromContext(ctx).Info("admin updated user", "target_uid", uid, "fields", len(fields))
	return s.users.GetUser(ctx, uid)
}

// DeleteUser removes the document, then the credential.
func (s *adminService) DeleteUser(ctx context.Context, uid string) error {
	log := logger.FromContext(ctx)
	if _, err := s.users.GetUser(ctx, uid); err != nil {
		return err
	}
	if err := s.users.DeleteUser(ctx, uid); err != nil {
		return err
	}
	if err := s.identity.DeleteCredential(ctx, uid); err != nil {
		log.Warn("user document deleted but credential removal failed", "target_uid", uid, "error", err)
	}
	log.Info("admin deleted user", "target_uid", uid)
	return nil
}

func (s *adminService) AddCard(ctx context.Context, uid string, req dto.AdminCardRequest) (models.Card, error) {
	card := models.Card{ID: uuid.NewString(), RequestDate: s.clockNow().UTC()}
	if err := s.applyCard(ctx, &card, req); err != nil {
		return models.Card{}, err
	}
	if _, err := s.users.MutateUser(ctx, uid, func(u *models.User) error {
		u.Cards = append(u.Cards, card)
		return nil
	}); err != nil {
		return models.Card{}, err
	}
	logger.FromContext(ctx).Info("admin added card", "target_uid", uid, "card_id", card.ID)
	return card, nil
}

// UpdateCard overwrites the editable fields of one card.
func (s *adminService) UpdateCard(ctx context.Context, uid, cardID string, req dto.AdminCardRequest) (models.Card, error) {
	u, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return models.Card{}, err
	}
	idx := cardIndex(u.Cards, cardID)
	if idx < 0 {
		return models.Card{}, errs.NewNotFoundError(msgCardNotFound)
	}
	card := u.Cards[idx]
	wasBlocked := card.IsBlocked
	if err := s.applyCard(ctx, &card, req); err != nil {
		return models.Card{}, err
	}
	if card.IsBlocked != wasBlocked {
		now := s.clockNow().UTC()
		card.BlockUpdatedAt = &now
	}

	if _, err := s.users.MutateUser(ctx, uid, func(u *models.User) error {
		i := cardIndex(u.Cards, cardID)
		if i < 0 {
			return errs.NewNotFoundError(msgCardNotFound)
		}
		u.Cards[i] = card
		return nil
	}); err != nil {
		return models.Card{}, err
	}
	logger.FromContext(ctx).Info("admin updated card", "target_uid", uid, "card_id", cardID)
	return card, nil
}

func (s *adminService) DeleteCard(ctx context.Context, uid, cardID string) error {
	_, err := s.users.MutateUser(ctx, uid, func(u *models.User) error {
		i := cardIndex(u.Cards, cardID)
		if i < 0 {
			return errs.NewNotFoundError(msgCardNotFound)
		}
		u.Cards = append(u.Cards[:i], u.Cards[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("admin deleted card", "target_uid", uid, "card_id", cardID)
	return nil
}

// applyCard copies req onto card. The CVV is dropped and the card number
// is kept encrypted with its last four digits in clear.
func (s *adminService) applyCard(ctx context.Context, card *models.Card, req dto.AdminCardRequest) error {
	cardType := strings.TrimSpace(req.CardType)
	if cardType == "" {
		cardType = defaultCardType
	}
	if !validCardType(cardType) {
		return errs.NewValidationError("Please select a valid card type")
	}
	status := strings.TrimSpace(req.Status)
	switch status {
	case "":
		status = models.CardPending
	case models.CardPending, models.CardApproved, models.CardRejected:
	default:
		return errs.NewValidationError("Invalid card status")
	}

	spending, withdrawal := 0, 0
	var err error
	if strings.TrimSpace(req.DailySpendingLimit) != "" {
		if spending, err = parseLimit(req.DailySpendingLimit); err != nil {
			return errs.NewValidationError("Invalid limit value")
		}
	}
	if strings.TrimSpace(req.DailyWithdrawalLimit) != "" {
		if withdrawal, err = parseLimit(req.DailyWithdrawalLimit); err != nil {
			return errs.NewValidationError("Invalid limit value")
		}
	}

	if number := strings.ReplaceAll(strings.TrimSpace(req.CardNumber), " ", ""); number != "" {
		if len(number) < 13 || len(number) > 19 || !digitsOnly(number) {
			return errs.NewValidationError("Please enter a valid card number")
		}
		enc, err := s.cipher.Encrypt(ctx, number)
		if err != nil {
			return err
		}
		card.CardNumberEncrypted = enc
		card.CardNumberLast4 = crypto.Last4(number)
	}

	card.CardType = cardType
	card.Status = status
	card.ExpiryDate = strings.TrimSpace(req.ExpiryDate)
	card.DeliveryAddress = strings.TrimSpace(req.DeliveryAddress)
	card.ContactNumber = strings.TrimSpace(req.ContactNumber)
	card.DailySpendingLimit = spending
	card.DailyWithdrawalLimit = withdrawal
	card.IsBlocked = req.IsBlocked
	return nil
}

// AddTransaction appends a history entry. Admin entries do not move the
// balance; the balance is edited through UpdateUser.
func (s *adminService) AddTransaction(ctx context.Context, uid string, req dto.AdminTransactionRequest) (models.Transaction, error) {
	tx := models.Transaction{ID: uuid.NewString()}
	if err := s.applyTransaction(&tx, req); err != nil {
		return models.Transaction{}, err
	}
	if _, err := s.users.MutateUser(ctx, uid, func(u *models.User) error {
		u.Transactions = append(u.Transactions, tx)
		return nil
	}); err != nil {
		return models.Transaction{}, err
	}
	logger.FromContext(ctx).Info("admin added transaction", "target_uid", uid, "transaction_id", tx.ID)
	return tx, nil
}

func (s *adminService) UpdateTransaction(ctx context.Context, uid, txID string, req dto.AdminTransactionRequest) (models.Transaction, error) {
	var out models.Transaction
	_, err := s.users.MutateUser(ctx, uid, func(u *models.User) error {
		i := transactionIndex(u.Transactions, txID)
		if i < 0 {
			return errs.NewNotFoundError(msgTransactionNotFound)
		}
		tx := u.Transactions[i]
		if err := s.applyTransaction(&tx, req); err != nil {
			return err
		}
		u.Transactions[i] = tx
		out = tx
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}
	logger.FromContext(ctx).Info("admin updated transaction", "target_uid", uid, "transaction_id", txID)
	return out, nil
}

func (s *adminService) DeleteTransaction(ctx context.Context, uid, txID string) error {
	_, err := s.users.MutateUser(ctx, uid, func(u *models.User) error {
		i := transactionIndex(u.Transactions, txID)
		if i < 0 {
			return errs.NewNotFoundError(msgTransactionNotFound)
		}
		u.Transactions = append(u.Transactions[:i], u.Transactions[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("admin deleted transaction", "target_uid", uid, "transaction_id", txID)
	return nil
}

func (s *adminService) applyTransaction(tx *models.Transaction, req dto.AdminTransactionRequest) error {
	if strings.TrimSpace(req.Type) == "" || strings.TrimSpace(req.Description) == "" || strings.TrimSpace(req.Amount) == "" {
		return errs.NewValidationError(msgMissingTxFields)
	}
	amount, err := workflow.ParseAmount(req.Amount)
	if err != nil {
		return errs.NewValidationError(msgInvalidAmount)
	}

	date := s.clockNow().UTC()
	if d := strings.TrimSpace(req.Date); d != "" {
		parsed, ok := history.ParseDate(d)
		if !ok {
			return errs.NewValidationError("Invalid date value")
		}
		date = parsed.UTC()
	}
	status := strings.TrimSpace(req.Status)
	switch status {
	case "":
		status = models.TxCompleted
	case models.TxCompleted, models.TxPending, models.TxFailed, models.TxScheduled:
	default:
		return errs.NewValidationError("Invalid transaction status")
	}

	tx.Type = strings.TrimSpace(req.Type)
	tx.Description = strings.TrimSpace(req.Description)
	tx.Amount = amount.Round(2).InexactFloat64()
	tx.Status = status
	tx.Date = date.Format(time.RFC3339)
	tx.Category = strings.TrimSpace(req.Category)
	tx.RecipientName = strings.TrimSpace(req.RecipientName)
	tx.RecipientBank = strings.TrimSpace(req.RecipientBank)
	tx.Reference = strings.TrimSpace(req.Reference)
	tx.Note = strings.TrimSpace(req.Note)
	return nil
}

func normalizeRole(role string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "", models.RoleUser:
		return models.RoleUser, nil
	case models.RoleAdmin:
		return models.RoleAdmin, nil
	default:
		return "", errs.NewValidationError("Invalid role")
	}
}

func normalizeAccountStatus(status string) (string, error) {
	switch strings.TrimSpace(status) {
	case "", models.AccountActive:
		return models.AccountActive, nil
	case models.AccountInactive, models.AccountSuspended:
		return strings.TrimSpace(status), nil
	default:
		return "", errs.NewValidationError("Invalid account status")
	}
}

func userMatches(u *models.User, needle string) bool {
	for _, f := range []string{u.FirstName, u.LastName, u.Email, u.Role, u.AccountNumber} {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func userLess(field string) func(a, b *models.User) bool {
	str := func(get func(*models.User) string) func(a, b *models.User) bool {
		return func(a, b *models.User) bool { return strings.ToLower(get(a)) < strings.ToLower(get(b)) }
	}
	switch field {
	case "firstName":
		return str(func(u *models.User) string { return u.FirstName })
	case "lastName":
		return str(func(u *models.User) string { return u.LastName })
	case "email":
		return str(func(u *models.User) string { return u.Email })
	case "role":
		return str(func(u *models.User) string { return u.Role })
	case "accountNumber":
		return str(func(u *models.User) string { return u.AccountNumber })
	case "accountType":
		return str(func(u *models.User) string { return u.AccountType })
	case "accountStatus":
		return str(func(u *models.User) string { return u.AccountStatus })
	case "balance":
		return func(a, b *models.User) bool { return a.Balance < b.Balance }
	default:
		return func(a, b *models.User) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

func cardIndex(cards []models.Card, id string) int {
	for i := range cards {
		if cards[i].ID == id {
			return i
		}
	}
	return -1
}

func transactionIndex(txs []models.Transaction, id string) int {
	for i := range txs {
		if txs[i].ID == id {
			return i
		}
	}
	return -1
}
