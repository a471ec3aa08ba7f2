package domain

import "time"

// User is the identity record. Email and PhoneNumber are optional alternate
// identifiers, unique when present; PhoneNumber is stored digits-only.
type User struct {
	UserID          string             `json:"id" dynamodbav:"user_id"`
	Username        string             `json:"username" dynamodbav:"username"`
	Email           *string            `json:"email" dynamodbav:"email,omitempty"`
	PhoneNumber     *string            `json:"phone_number" dynamodbav:"phone_number,omitempty"`
	PreferredMethod VerificationMethod `json:"preferred_method" dynamodbav:"preferred_method"`
	VerifiedEmail   bool               `json:"verified_email" dynamodbav:"verified_email"`
	VerifiedPhone   bool               `json:"verified_phone" dynamodbav:"verified_phone"`
	Passcode        *Passcode          `json:"-" dynamodbav:"-"`
	CreatedAt       time.Time          `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time          `json:"updated" dynamodbav:"updated_at"`
}

// Destination returns the address a passcode for method is sent to, or ""
// when the user has no identifier for that channel.
func (u *User) Destination(method VerificationMethod) string {
	switch method {
	case MethodEmail:
		if u.Email != nil {
			return *u.Email
		}
	case MethodPhone:
		if u.PhoneNumber != nil {
			return *u.PhoneNumber
		}
	}
	return ""
}

type RegisterRequest struct {
	Email              string `json:"email" validate:"required,loose_email"`
	Username           string `json:"username" validate:"required,max=64"`
	PhoneNumber        string `json:"phoneNumber" validate:"required,phone"`
	VerificationMethod string `json:"verificationMethod" validate:"required,oneof=email phone"`
}
