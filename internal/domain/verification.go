package domain

// VerificationMethod is the out-of-band channel a passcode travels over.
type VerificationMethod string

const (
	MethodEmail VerificationMethod = "email"
	MethodPhone VerificationMethod = "phone"
)

// Valid reports whether m is one of the supported channels.
func (m VerificationMethod) Valid() bool {
	return m == MethodEmail || m == MethodPhone
}
