// Package directory is the fixed list of recipient banks the bank-transfer
// action can verify against.
package directory

import (
	"strings"

	"github.com/GregMSThompson/banking-backend/internal/errs"
	"github.com/GregMSThompson/banking-backend/internal/models"
)

var banks = []models.Bank{
	{Name: "Bank of America", RoutingNumber: "021000322", AccountNumber: "1234567890", HolderName: "John Doe"},
	{Name: "Chase Bank", RoutingNumber: "021000021", AccountNumber: "9876543210", HolderName: "Jane Smith"},
	{Name: "Wells Fargo", RoutingNumber: "121000248", AccountNumber: "5555555555", HolderName: "Robert Johnson"},
	{Name: "Quant Equity Bank", RoutingNumber: "021000089", AccountNumber: "111122223333", HolderName: "Emily Davis"},
	{Name: "U.S. Bank", RoutingNumber: "091000022", AccountNumber: "444455556666", HolderName: "Michael Brown"},
	{Name: "PNC Bank", RoutingNumber: "043000096", AccountNumber: "777788889999", HolderName: "Sarah Wilson"},
	{Name: "TD Bank", RoutingNumber: "031201360", AccountNumber: "222233334444", HolderName: "David Martinez"},
	{Name: "Capital One", RoutingNumber: "056073502", AccountNumber: "888899991111", HolderName: "Laura Garcia"},
	{Name: "HSBC Bank", RoutingNumber: "021001088", AccountNumber: "333344445555", HolderName: "James Anderson"},
	{Name: "Ally Bank", RoutingNumber: "124003116", AccountNumber: "666677778888", HolderName: "Olivia Taylor"},
	{Name: "First national bank of Texas(FNBT)", RoutingNumber: "111906271", AccountNumber: "527290902", HolderName: "Jerimiah Lopez"},
	{Name: "Discover Bank", RoutingNumber: "031100649", AccountNumber: "999900001111", HolderName: "William Thomas"},
	{Name: "Barclays Bank", RoutingNumber: "075000522", AccountNumber: "123412341234", HolderName: "Sophia Clark"},
	{Name: "Santander Bank", RoutingNumber: "231372691", AccountNumber: "567856785678", HolderName: "Daniel Lewis"},
	{Name: "BB&T Bank", RoutingNumber: "053101121", AccountNumber: "987698769876", HolderName: "Emma Walker"},
	{Name: "SunTrust Bank", RoutingNumber: "061000104", AccountNumber: "432143214321", HolderName: "Noah Hall"},
	{Name: "Wildfire credit union", RoutingNumber: "272484713", AccountNumber: "40074155", HolderName: "Mellisa Stacy"},
	{Name: "Regions Bank", RoutingNumber: "062000019", AccountNumber: "876587658765", HolderName: "Ava Green"},
	{Name: "Fifth Third Bank", RoutingNumber: "042000314", AccountNumber: "234523452345", HolderName: "Liam Adams"},
	{Name: "KeyBank", RoutingNumber: "041001039", AccountNumber: "678967896789", HolderName: "Mia Nelson"},
	{Name: "Huntington Bank", RoutingNumber: "044000024", AccountNumber: "345634563456", HolderName: "Ethan Carter"},
	{Name: "M&T Bank", RoutingNumber: "022000046", AccountNumber: "789078907890", HolderName: "Charlotte Mitchell"},
}

// Banks returns a copy of the directory.
func Banks() []models.Bank {
	out := make([]models.Bank, len(banks))
	copy(out, banks)
	return out
}

// Lookup finds a bank by name, ignoring case and surrounding space.
func Lookup(name string) (models.Bank, bool) {
	name = strings.TrimSpace(name)
	for _, b := range banks {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return models.Bank{}, false
}

// Verify validates the entered bank details and resolves the recipient
// account held at that bank.
func Verify(bankName, routingNumber, accountNumber string) (models.Bank, error) {
	routingNumber = strings.TrimSpace(routingNumber)
	accountNumber = strings.TrimSpace(accountNumber)

	if strings.TrimSpace(bankName) == "" {
		return models.Bank{}, errs.NewValidationError("Please select a bank")
	}
	if len(routingNumber) < 9 || !digits(routingNumber) {
		return models.Bank{}, errs.NewValidationError("Please enter a valid routing number (9 digits)")
	}
	if len(accountNumber) < 8 || !digits(accountNumber) {
		return models.Bank{}, errs.NewValidationError("Please enter a valid account number (at least 8 digits)")
	}

	b, ok := Lookup(bankName)
	if !ok {
		return models.Bank{}, errs.NewValidationError("Bank details could not be verified. Please check and try again.")
	}
	return b, nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
