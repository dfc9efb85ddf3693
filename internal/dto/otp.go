package dto

import "time"

type OTPVerifyRequest struct {
	Code string `json:"code"`
}

type StepUpToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
