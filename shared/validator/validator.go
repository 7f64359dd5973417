package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"resa/shared/failure"
	"unicode"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

const (
	phoneMinDigits = 9
	phoneMaxDigits = 10
)

// registerPhoneValidation accepts digit-only strings of 9 or 10 digits.
// The sync core never re-validates phones; this boundary is the only gate.
func registerPhoneValidation(field val.FieldLevel) bool {
	phone, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	if len(phone) < phoneMinDigits || len(phone) > phoneMaxDigits {
		return false
	}

	for _, r := range phone {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	err := validate.RegisterValidation("phone", registerPhoneValidation)
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("empty", func(fl val.FieldLevel) bool {
		return fl.Field().IsZero()
	})

	if err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}
