package dto

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxCameraNameLength = 64

var cameraNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("camera", func(fl validator.FieldLevel) bool {
		return cameraNamePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidateCameraName accepts 1-64 letters, digits, '_' and '-'.
// Camera names end up in snapshot file names.
func ValidateCameraName(name string) error {
	if err := validate.Var(name, fmt.Sprintf("required,max=%d,camera", maxCameraNameLength)); err != nil {
		return fmt.Errorf("invalid camera name %q", name)
	}
	return nil
}

// SanitizeCameraName maps any name to one that passes ValidateCameraName.
func SanitizeCameraName(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, name)
	if len(safe) > maxCameraNameLength {
		safe = safe[:maxCameraNameLength]
	}
	if safe == "" {
		return "camera"
	}
	return safe
}
