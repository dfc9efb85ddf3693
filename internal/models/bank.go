package models

// Bank is a recipient institution in the transfer directory. Account and
// holder describe the account the directory can verify against.
type Bank struct {
	Name          string `json:"name"`
	RoutingNumber string `json:"routingNumber"`
	AccountNumber string `json:"-"`
	HolderName    string `json:"-"`
}
