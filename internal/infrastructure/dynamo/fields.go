package dynamo

// Attribute and index names shared by the repos and Bootstrap.
const (
	fieldUserID          = "user_id"
	fieldSessionID       = "session_id"
	fieldUsername        = "username"
	fieldEmail           = "email"
	fieldPhoneNumber     = "phone_number"
	fieldPreferredMethod = "preferred_method"
	fieldVerifiedEmail   = "verified_email"
	fieldVerifiedPhone   = "verified_phone"
	fieldEnable          = "enable"
	fieldUpdatedAt       = "updated_at"

	// passcode is a map attribute {secret, expires_at} so both halves are
	// written and removed in one expression.
	fieldPasscode       = "passcode"
	fieldPasscodeSecret = "secret"
	fieldPasscodeExpiry = "expires_at"

	indexUsername    = "username-index"
	indexEmail       = "email-index"
	indexPhone       = "phone_number-index"
	indexSessionUser = "user_id-index"
)
