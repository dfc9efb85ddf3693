package dto

import "io"

type SignUpRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	PhoneNumber     string `json:"phoneNumber"`
	DateOfBirth     string `json:"dateOfBirth"`
	Address         string `json:"address"`
	City            string `json:"city"`
	State           string `json:"state"`
	ZipCode         string `json:"zipCode"`
	SSN             string `json:"ssn"`
	AccountType     string `json:"accountType"`
}

// Upload is a file received from a client, streamed to object storage.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}
