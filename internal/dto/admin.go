package dto

import "github.com/GregMSThompson/banking-backend/internal/models"

const AdminPageSize = 10

type UserListQuery struct {
	Search    string
	SortField string
	SortDesc  bool
	Page      int
}

type UserPage struct {
	Users      []*models.User `json:"users"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	Total      int            `json:"total"`
}

type AdminCreateUserRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Role          string `json:"role"`
	PhoneNumber   string `json:"phoneNumber"`
	DateOfBirth   string `json:"dateOfBirth"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zipCode"`
	SSN           string `json:"ssn"`
	AccountType   string `json:"accountType"`
	AccountStatus string `json:"accountStatus"`
	Balance       string `json:"balance"`
}

// AdminUpdateUserRequest patches only the fields that are set.
type AdminUpdateUserRequest struct {
	FirstName     *string  `json:"firstName"`
	LastName      *string  `json:"lastName"`
	Email         *string  `json:"email"`
	Role          *string  `json:"role"`
	PhoneNumber   *string  `json:"phoneNumber"`
	DateOfBirth   *string  `json:"dateOfBirth"`
	Address       *string  `json:"address"`
	City          *string  `json:"city"`
	State         *string  `json:"state"`
	ZipCode       *string  `json:"zipCode"`
	AccountType   *string  `json:"accountType"`
	AccountStatus *string  `json:"accountStatus"`
	Balance       *float64 `json:"balance"`
}

type AdminTransactionRequest struct {
	Type          string `json:"type"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	Date          string `json:"date"`
	Category      string `json:"category"`
	RecipientName string `json:"recipientName"`
	RecipientBank string `json:"recipientBank"`
	Reference     string `json:"reference"`
	Note          string `json:"note"`
}
