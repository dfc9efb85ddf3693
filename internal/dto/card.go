package dto

type CardRequest struct {
	CardType        string `json:"cardType"`
	DeliveryAddress string `json:"deliveryAddress"`
	ContactNumber   string `json:"contactNumber"`
}

type CardPINRequest struct {
	PIN        string `json:"pin"`
	ConfirmPIN string `json:"confirmPin"`
}

type CardLimitsRequest struct {
	DailySpendingLimit   string `json:"dailySpendingLimit"`
	DailyWithdrawalLimit string `json:"dailyWithdrawalLimit"`
}

// AdminCardRequest is a full overwrite of a card by an administrator. CVV is
// accepted for form compatibility and dropped.
type AdminCardRequest struct {
	CardType             string `json:"cardType"`
	Status               string `json:"status"`
	CardNumber           string `json:"cardNumber"`
	ExpiryDate           string `json:"expiryDate"`
	CVV                  string `json:"cvv"`
	DeliveryAddress      string `json:"deliveryAddress"`
	ContactNumber        string `json:"contactNumber"`
	DailySpendingLimit   string `json:"dailySpendingLimit"`
	DailyWithdrawalLimit string `json:"dailyWithdrawalLimit"`
	IsBlocked            bool   `json:"isBlocked"`
}
