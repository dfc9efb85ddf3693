package services

import (
	"context"

	"github.com/GregMSThompson/banking-backend/internal/crypto"
	"github.com/GregMSThompson/banking-backend/internal/directory"
	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/models"
	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

type bankService struct{}

func NewBankService() *bankService {
	return &bankService{}
}

func (s *bankService) ListBanks(_ context.Context) []models.Bank {
	return directory.Banks()
}

// VerifyRecipient resolves the holder of an account in the bank directory.
func (s *bankService) VerifyRecipient(ctx context.Context, req dto.VerifyRecipientRequest) (dto.VerifiedRecipient, error) {
	b, err := directory.Verify(req.BankName, req.RoutingNumber, req.AccountNumber)
	if err != nil {
		logger.FromContext(ctx).Info("recipient verification failed", "bank", req.BankName)
		return dto.VerifiedRecipient{}, err
	}
	return dto.VerifiedRecipient{
		BankName:     b.Name,
		HolderName:   b.HolderName,
		AccountLast4: crypto.Last4(req.AccountNumber),
	}, nil
}
