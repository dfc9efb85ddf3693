package dto

type VerifyRecipientRequest struct {
	BankName      string `json:"bankName"`
	RoutingNumber string `json:"routingNumber"`
	AccountNumber string `json:"accountNumber"`
}

type VerifiedRecipient struct {
	BankName     string `json:"bankName"`
	HolderName   string `json:"holderName"`
	AccountLast4 string `json:"accountLast4"`
}
