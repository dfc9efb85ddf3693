package services

import (
	"context"
	"io"
	"time"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/history"
	"github.com/GregMSThompson/banking-backend/internal/models"
)

type userHSStore interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

type historyService struct {
	users    userHSStore
	clockNow func() time.Time
}

func NewHistoryService(users userHSStore) *historyService {
	return &historyService{users: users, clockNow: time.Now}
}

func (s *historyService) transactions(ctx context.Context, uid string) ([]models.Transaction, error) {
	u, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	return u.Transactions, nil
}

func (s *historyService) List(ctx context.Context, uid string, q dto.HistoryQuery) (dto.HistoryPage, error) {
	q, err := history.NormalizeQuery(q)
	if err != nil {
		return dto.HistoryPage{}, err
	}
	txs, err := s.transactions(ctx, uid)
	if err != nil {
		return dto.HistoryPage{}, err
	}
	return history.Page(txs, q), nil
}

func (s *historyService) Summary(ctx context.Context, uid, period string) (dto.HistorySummary, error) {
	txs, err := s.transactions(ctx, uid)
	if err != nil {
		return dto.HistorySummary{}, err
	}
	return history.Summarize(txs, period, s.clockNow().UTC())
}

// Export writes the full filtered set as CSV, ignoring the page window.
func (s *historyService) Export(ctx context.Context, uid string, q dto.HistoryQuery, w io.Writer) error {
	q, err := history.NormalizeQuery(q)
	if err != nil {
		return err
	}
	txs, err := s.transactions(ctx, uid)
	if err != nil {
		return err
	}
	return history.WriteCSV(w, history.Filter(txs, q))
}

func (s *historyService) RecentTransfers(ctx context.Context, uid string) (dto.TransferActivity, error) {
	txs, err := s.transactions(ctx, uid)
	if err != nil {
		return dto.TransferActivity{}, err
	}
	return history.Transfers(txs), nil
}
