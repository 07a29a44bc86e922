package auth

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
)

const (
	MAX_LENGTH_NAME     = 255
	MAX_LENGTH_EMAIL    = 255
	MIN_PASSWORD_LENGTH = 6
	MAX_PASSWORD_LENGTH = 72 // bcrypt ignores anything longer
	BIRTH_DATE_LAYOUT   = "2006-01-02"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9](\.?[a-zA-Z0-9_%+-])*@[a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+)*\.[a-zA-Z]{2,}$`)

	birthDateLayouts = []string{BIRTH_DATE_LAYOUT, "02/01/2006"}
)

type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHashed string
	BirthDate      time.Time
	CreatedAt      time.Time
}

type NewUser struct {
	Name                 string
	Email                string
	PasswordPlain        string
	PasswordConfirmation string
	BirthDate            string
}

// ValidateUserFields checks a registration request. now is used to reject
// birth dates in the future.
func (newUser NewUser) ValidateUserFields(now time.Time) (time.Time, error) {
	if strings.TrimSpace(newUser.Name) == "" {
		return time.Time{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: "Name cannot be empty!",
		}
	}
	if len(newUser.Name) > MAX_LENGTH_NAME {
		return time.Time{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: fmt.Sprintf("Name so long, maximum length is %d", MAX_LENGTH_NAME),
		}
	}
	if newUser.Email == "" {
		return time.Time{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: "Email cannot be empty!",
		}
	}
	if len(newUser.Email) > MAX_LENGTH_EMAIL {
		return time.Time{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: fmt.Sprintf("Email so long, maximum length is %d", MAX_LENGTH_EMAIL),
		}
	}
	if !emailRegex.MatchString(newUser.Email) {
		return time.Time{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: "Invalid email format, example valid email: john.doe@gmail.com",
		}
	}
	if len(newUser.PasswordPlain) < MIN_PASSWORD_LENGTH {
		return time.Time{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: fmt.Sprintf("Password must have at least %d characters", MIN_PASSWORD_LENGTH),
		}
	}
	if len(newUser.PasswordPlain) > MAX_PASSWORD_LENGTH {
		return time.Time{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: fmt.Sprintf("Password so long, maximum length is %d", MAX_PASSWORD_LENGTH),
		}
	}
	if newUser.PasswordPlain != newUser.PasswordConfirmation {
		return time.Time{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: "Passwords do not match",
		}
	}

	birthDate, err := ParseBirthDate(newUser.BirthDate)
	if err != nil {
		return time.Time{}, err
	}
	if birthDate.After(now) {
		return time.Time{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: "Birth date cannot be in the future",
		}
	}
	return birthDate, nil
}

// ParseBirthDate accepts YYYY-MM-DD and DD/MM/YYYY.
func ParseBirthDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range birthDateLayouts {
		if date, err := time.Parse(layout, raw); err == nil {
			return date, nil
		}
	}
	return time.Time{}, appErrors.ErrorResponse{
		Code:    appErrors.ErrInvalidInput,
		Message: "Invalid birth date, expected format is YYYY-MM-DD",
	}
}

type Session struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpireAt  time.Time
	UserID    string
}

type UserCredentialsPure struct {
	Email         string
	PasswordPlain string
}
