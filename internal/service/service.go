package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"safenetwork-api/internal/model"
	"safenetwork-api/internal/repository"
	"safenetwork-api/pkg/apierror"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs tag validation and converts failures into a single
// flat message, matching the storefront's historical error shape.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if ok := errorsAs(err, &verrs); ok && len(verrs) > 0 {
		first := verrs[0]
		details := make([]apierror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, apierror.FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: fieldMessage(fe),
			})
		}
		return apierror.Validation(fieldMessage(first), details...)
	}
	return apierror.BadRequest(err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " is too long"
	case "min":
		return field + " is too short"
	case "oneof":
		return "invalid " + field
	case "email":
		return "invalid email"
	default:
		return "invalid " + field
	}
}

func errorsAs(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

// loadCaller fetches the caller's profile, required for any action that
// checks roles or ownership.
func loadCaller(ctx context.Context, profiles repository.ProfileRepository, subject string) (*model.Profile, error) {
	if subject == "" {
		return nil, apierror.Unauthorized("")
	}
	p, err := profiles.GetBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierror.BadRequest("Profile not found")
	}
	return p, nil
}

// requireAdmin loads the caller and rejects non-admins.
func requireAdmin(ctx context.Context, profiles repository.ProfileRepository, subject string) (*model.Profile, error) {
	p, err := loadCaller(ctx, profiles, subject)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		return nil, apierror.Forbidden("Admin access required")
	}
	return p, nil
}

// requireHostOrAdmin loads the caller and rejects profiles that are
// neither hosts nor admins.
func requireHostOrAdmin(ctx context.Context, profiles repository.ProfileRepository, subject string) (*model.Profile, error) {
	p, err := loadCaller(ctx, profiles, subject)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && !p.IsHost() {
		return nil, apierror.Forbidden("Host access required")
	}
	return p, nil
}

// truncate caps s at max runes, never splitting a multibyte sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
