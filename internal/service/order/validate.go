package order

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"xoned-commerce/internal/domain"
)

var (
	indianMobile = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	pincodeRe    = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

type shippingForm struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,inphone"`
	Address   string `json:"address" validate:"required,max=500"`
	Apartment string `json:"apartment" validate:"max=200"`
	City      string `json:"city" validate:"required,max=100"`
	State     string `json:"state" validate:"required,max=100"`
	Pincode   string `json:"pincode" validate:"required,pincode"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "inphone", func(fl validator.FieldLevel) bool {
		return indianMobile.MatchString(fl.Field().String())
	})
	mustRegister(v, "pincode", func(fl validator.FieldLevel) bool {
		return pincodeRe.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("order: register validation %q: %v", tag, err))
	}
}

// NormalizePhone strips separators and an optional +91 or 0 prefix.
func NormalizePhone(raw string) string {
	phone := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(phone, "+91"):
		phone = phone[3:]
	case len(phone) == 12 && strings.HasPrefix(phone, "91"):
		phone = phone[2:]
	case len(phone) == 11 && strings.HasPrefix(phone, "0"):
		phone = phone[1:]
	}
	return phone
}

// normalizeShipping trims the address and checks it. The first failing field
// is reported as a ValidationError.
func normalizeShipping(v *validator.Validate, in domain.ShippingAddress) (domain.ShippingAddress, error) {
	out := domain.ShippingAddress{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     NormalizePhone(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		Apartment: strings.TrimSpace(in.Apartment),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		Pincode:   strings.TrimSpace(in.Pincode),
	}
	err := v.Struct(shippingForm(out))
	if err == nil {
		return out, nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return out, domain.NewValidationError(fe.Field(), fieldMessage(fe))
	}
	return out, err
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "invalid email address"
	case "inphone":
		return "invalid phone number"
	case "pincode":
		return "invalid pincode"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}
