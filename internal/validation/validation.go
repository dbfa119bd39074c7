// Package validation registers the custom binding tags used by request DTOs.
package validation

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	guestIDPattern     = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)
	fingerprintPattern = regexp.MustCompile(`^[A-Za-z0-9_:.-]{8,128}$`)
)

// Register adds the "guestid" and "fingerprint" tags to gin's validator.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("guestid", validGuestID); err != nil {
		return err
	}
	return v.RegisterValidation("fingerprint", validFingerprint)
}

func validGuestID(fl validator.FieldLevel) bool {
	return guestIDPattern.MatchString(fl.Field().String())
}

func validFingerprint(fl validator.FieldLevel) bool {
	return fingerprintPattern.MatchString(fl.Field().String())
}

// GuestID reports whether s is an acceptable client-chosen guest identifier.
func GuestID(s string) bool { return guestIDPattern.MatchString(s) }

// Fingerprint reports whether s is an acceptable device fingerprint.
func Fingerprint(s string) bool { return fingerprintPattern.MatchString(s) }
