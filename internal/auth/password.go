package auth

import "golang.org/x/crypto/bcrypt"

// MinPasswordLength is the password-policy floor applied to registration,
// admin user creation and every password change path.
const MinPasswordLength = 8

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// ValidatePassword applies the password policy and the confirmation check.
// It returns per-field messages keyed the way forms submit them.
func ValidatePassword(password, confirmation string) map[string][]string {
	fields := map[string][]string{}
	if password == "" {
		fields["password"] = append(fields["password"], "password is required")
	} else if len(password) < MinPasswordLength {
		fields["password"] = append(fields["password"], "password must be at least 8 characters")
	}
	if password != confirmation {
		fields["password_confirmation"] = append(fields["password_confirmation"], "password confirmation does not match")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
