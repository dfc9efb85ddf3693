package services

import (
	"context"
	"strings"
	"time"

	"github.com/GregMSThompson/banking-backend/internal/crypto"
	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/history"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

type userDSStore interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

type dashboardService struct {
	users    userDSStore
	identity lastLoginReader
	clockNow func() time.Time
}

func NewDashboardService(users userDSStore, identity lastLoginReader) *dashboardService {
	return &dashboardService{users: users, identity: identity, clockNow: time.Now}
}

func (s *dashboardService) Overview(ctx context.Context, uid string) (dto.DashboardOverview, error) {
	u, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return dto.DashboardOverview{}, err
	}

	lastLogin, err := s.identity.LastLogin(ctx, uid)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to read last login", "error", err)
	}

	return dto.DashboardOverview{
		DisplayName:           displayName(u),
		Email:                 u.Email,
		Image:                 u.Image,
		MaskedAccountNumber:   MaskAccountNumber(u.AccountNumber),
		AccountType:           u.AccountType,
		AccountStatus:         u.AccountStatus,
		Balance:               u.Balance,
		TransactionsThisMonth: countInMonth(u.Transactions, s.clockNow().UTC()),
		CardCount:             len(u.Cards),
		LastLogin:             lastLogin,
	}, nil
}

// MaskAccountNumber shows only the last four characters.
func MaskAccountNumber(accountNumber string) string {
	if accountNumber == "" {
		return ""
	}
	return "****-****-****-" + crypto.Last4(accountNumber)
}

func displayName(u *models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

func countInMonth(txs []models.Transaction, now time.Time) int {
	n := 0
	for _, tx := range txs {
		t, ok := history.ParseDate(tx.Date)
		if !ok {
			continue
		}
		t = t.UTC()
		if t.Year() == now.Year() && t.Month() == now.Month() {
			n++
		}
	}
	return n
}
