package dto

import "time"

type DashboardOverview struct {
	DisplayName           string     `json:"displayName"`
	Email                 string     `json:"email"`
	Image                 string     `json:"image,omitempty"`
	MaskedAccountNumber   string     `json:"maskedAccountNumber"`
	AccountType           string     `json:"accountType"`
	AccountStatus         string     `json:"accountStatus"`
	Balance               float64    `json:"balance"`
	TransactionsThisMonth int        `json:"transactionsThisMonth"`
	CardCount             int        `json:"cardCount"`
	LastLogin             *time.Time `json:"lastLogin,omitempty"`
}
