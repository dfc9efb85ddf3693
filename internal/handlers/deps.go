package handlers

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/GregMSThompson/banking-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	UserSvc         userService
	SessionSvc      sessionService
	OTPSvc          otpService
	TransactionSvc  transactionService
	HistorySvc      historyService
	CardSvc         cardService
	AdminSvc        adminService
	BankSvc         bankService
	DashboardSvc    dashboardService
}

// ParsePage reads a 1-based page number; anything unparsable is page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
