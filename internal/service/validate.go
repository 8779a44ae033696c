package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/sandp/medstock/internal/domain"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate

	gstinRe  = regexp.MustCompile(`^[0-9A-Z]{15}$`)
	mobileRe = regexp.MustCompile(`^[0-9]{10}$`)
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
			return gstinRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
			return mobileRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("shelflife", func(fl validator.FieldLevel) bool {
			return domain.ValidShelfLife(fl.Field().String())
		})
		_ = v.RegisterValidation("gstrate", func(fl validator.FieldLevel) bool {
			return domain.ValidGSTPercent(fl.Field().Float())
		})
		validate = v
	})
	return validate
}

// validateStruct returns FieldErrors keyed by JSON path, or nil.
func validateStruct(s any) error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := FieldErrors{}
	for _, e := range verrs {
		fe[fieldPath(e.Namespace())] = message(e)
	}
	return fe
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid id"
	case "min":
		if e.Kind() == reflect.String {
			return "must be at least " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "must contain at least " + e.Param() + " entry"
		}
		return "must be at least " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must not be negative"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gstin":
		return "must be a valid GSTIN"
	case "mobile":
		return "must be a 10-digit mobile number"
	case "shelflife":
		return "must be in MM/YYYY format"
	case "gstrate":
		return "must be one of: 0 5 12"
	case "len":
		return "must be " + e.Param() + " characters"
	default:
		return "is invalid"
	}
}
