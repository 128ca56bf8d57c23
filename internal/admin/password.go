// Package admin holds the seller and user administration rules: password and
// registration checks, the staged role draft and the self-protection guards.
package admin

import (
	"net/mail"
	"strings"
	"unicode"

	"floreria/internal/apierror"
	"floreria/internal/dto"
)

const MinPasswordLength = 8

const (
	msgPasswordLength  = "La contraseña debe tener al menos 8 caracteres"
	msgPasswordUpper   = "La contraseña debe contener al menos una letra mayúscula"
	msgPasswordDigit   = "La contraseña debe contener al menos un número"
	msgPasswordConfirm = "Las contraseñas no coinciden"
)

// PasswordStrength returns the first strength rule pw breaks, or "".
func PasswordStrength(pw string) string {
	if len([]rune(pw)) < MinPasswordLength {
		return msgPasswordLength
	}
	var upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper {
		return msgPasswordUpper
	}
	if !digit {
		return msgPasswordDigit
	}
	return ""
}

// ValidatePassword checks a new password and its confirmation.
func ValidatePassword(pw, confirm string) apierror.FieldErrors {
	errs := apierror.FieldErrors{}
	if msg := PasswordStrength(pw); msg != "" {
		errs.Add("new_password", msg)
	}
	if pw != confirm {
		errs.Add("confirm_password", msgPasswordConfirm)
	}
	return orNil(errs)
}

// ValidateRegistration applies the sign-up rules. confirm is the repeated
// password typed by the user.
func ValidateRegistration(req dto.RegisterRequest, confirm string) apierror.FieldErrors {
	errs := apierror.FieldErrors{}
	if n := len([]rune(strings.TrimSpace(req.Username))); n < 3 {
		errs.Add("username", "El usuario debe tener al menos 3 caracteres")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil || !strings.Contains(req.Email, "@") {
		errs.Add("email", "Ingresa un email válido")
	}
	if strings.TrimSpace(req.FullName) == "" {
		errs.Add("full_name", "El nombre completo es requerido")
	}
	if msg := PasswordStrength(req.Password); msg != "" {
		errs.Add("password", msg)
	}
	if req.Password != confirm {
		errs.Add("confirm_password", msgPasswordConfirm)
	}
	return orNil(errs)
}

func orNil(errs apierror.FieldErrors) apierror.FieldErrors {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
