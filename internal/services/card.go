package services

import (
	"context"
	"regexp"
	"strconv"
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
	defaultCardType = "Standard Debit Card"

	minDailySpending   = 100
	minDailyWithdrawal = 50

	msgNoActiveCard = "No active card found"
)

var phonePattern = regexp.MustCompile(`^(\(\d{3}\) \d{3}-\d{4}|\d{10})$`)

type userCSStore interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	MutateUser(ctx context.Context, uid string, fn func(u *models.User) error) (*models.User, error)
}

type cardService struct {
	users    userCSStore
	clockNow func() time.Time
}

func NewCardService(users userCSStore) *cardService {
	return &cardService{users: users, clockNow: time.Now}
}

func (s *cardService) ListCards(ctx context.Context, uid string) ([]models.Card, error) {
	u, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	return u.Cards, nil
}

// GetCard finds a card by id, falling back to the active card.
func (s *cardService) GetCard(ctx context.Context, uid, cardID string) (models.Card, error) {
	u, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return models.Card{}, err
	}
	for _, c := range u.Cards {
		if c.ID == cardID {
			return c, nil
		}
	}
	if i := u.ActiveCard(); i >= 0 {
		return u.Cards[i], nil
	}
	return models.Card{}, errs.NewNotFoundError("Card not found")
}

// RequestCard appends a Pending card application.
func (s *cardService) RequestCard(ctx context.Context, uid string, req dto.CardRequest) (models.Card, error) {
	cardType := strings.TrimSpace(req.CardType)
	if cardType == "" {
		cardType = defaultCardType
	}
	switch {
	case !validCardType(cardType):
		return models.Card{}, errs.NewValidationError("Please select a valid card type")
	case strings.TrimSpace(req.DeliveryAddress) == "":
		return models.Card{}, errs.NewValidationError("Delivery address is required")
	case strings.TrimSpace(req.ContactNumber) == "":
		return models.Card{}, errs.NewValidationError("Contact number is required")
	case !phonePattern.MatchString(strings.TrimSpace(req.ContactNumber)):
		return models.Card{}, errs.NewValidationError("Please enter a valid phone number")
	}

	card := models.Card{
		ID:              uuid.NewString(),
		CardType:        cardType,
		Status:          models.CardPending,
		RequestDate:     s.clockNow().UTC(),
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		ContactNumber:   strings.TrimSpace(req.ContactNumber),
	}
	if _, err := s.users.MutateUser(ctx, uid, func(u *models.User) error {
		u.Cards = append(u.Cards, card)
		return nil
	}); err != nil {
		return models.Card{}, err
	}

	logger.FromContext(ctx).Info("card requested", "card_id", card.ID, "card_type", card.CardType)
	return card, nil
}

// ToggleBlock flips the active card's blocked flag.
func (s *cardService) ToggleBlock(ctx context.Context, uid string) (models.Card, error) {
	now := s.clockNow().UTC()
	return s.mutateActive(ctx, uid, func(c *models.Card) {
		c.IsBlocked = !c.IsBlocked
		c.BlockUpdatedAt = &now
	})
}

func (s *cardService) SetPIN(ctx context.Context, uid string, req dto.CardPINRequest) (models.Card, error) {
	if len(req.PIN) != 4 || !digitsOnly(req.PIN) {
		return models.Card{}, errs.NewValidationError("PIN must be exactly 4 digits")
	}
	if req.PIN != req.ConfirmPIN {
		return models.Card{}, errs.NewValidationError("PINs do not match")
	}
	hash, err := crypto.HashPIN(req.PIN)
	if err != nil {
		return models.Card{}, errs.NewEncryptionError("hash card pin", err)
	}

	now := s.clockNow().UTC()
	return s.mutateActive(ctx, uid, func(c *models.Card) {
		c.PINHash = hash
		c.PINUpdatedAt = &now
	})
}

func (s *cardService) SetLimits(ctx context.Context, uid string, req dto.CardLimitsRequest) (models.Card, error) {
	spending, err := parseLimit(req.DailySpendingLimit)
	if err != nil || spending < minDailySpending {
		return models.Card{}, errs.NewValidationError("Daily spending limit must be at least $100")
	}
	withdrawal, err := parseLimit(req.DailyWithdrawalLimit)
	if err != nil || withdrawal < minDailyWithdrawal {
		return models.Card{}, errs.NewValidationError("Daily withdrawal limit must be at least $50")
	}

	now := s.clockNow().UTC()
	return s.mutateActive(ctx, uid, func(c *models.Card) {
		c.DailySpendingLimit = spending
		c.DailyWithdrawalLimit = withdrawal
		c.LimitsUpdatedAt = &now
	})
}

// mutateActive applies fn to the first Approved card. Without one nothing
// is written.
func (s *cardService) mutateActive(ctx context.Context, uid string, fn func(c *models.Card)) (models.Card, error) {
	var out models.Card
	_, err := s.users.MutateUser(ctx, uid, func(u *models.User) error {
		i := u.ActiveCard()
		if i < 0 {
			return errs.NewNotFoundError(msgNoActiveCard)
		}
		fn(&u.Cards[i])
		out = u.Cards[i]
		return nil
	})
	if err != nil {
		return models.Card{}, err
	}
	logger.FromContext(ctx).Info("active card updated", "card_id", out.ID)
	return out, nil
}

func validCardType(t string) bool {
	for _, ct := range models.CardTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// parseLimit accepts whole dollars written with digits only.
func parseLimit(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !digitsOnly(s) {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s)
}
