package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// dateLayouts are the timestamp shapes accepted for a meal date.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// CoercibleTime is a request timestamp given either as a string in one of
// the accepted layouts or as a JSON number of Unix milliseconds.
type CoercibleTime struct {
	raw    string
	millis bool
}

// UnmarshalJSON accepts both JSON strings and numbers.
func (t *CoercibleTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = CoercibleTime{raw: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("date must be a string or a number")
	}
	*t = CoercibleTime{raw: n.String(), millis: true}
	return nil
}

// Time converts the raw value into a time.Time. Only JSON numbers are read
// as Unix milliseconds; numeric strings go through the layouts.
func (t CoercibleTime) Time() (time.Time, error) {
	raw := strings.TrimSpace(t.raw)
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t.millis {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("date %s is not a whole number of milliseconds", raw)
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// FieldError describes one failed constraint of a request.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// newValidator builds a validator reporting JSON field names and knowing
// the coercibletime tag.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Valid dates reach the tags as time.Time, anything else as the raw string.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		ct, _ := field.Interface().(CoercibleTime)
		if parsed, err := ct.Time(); err == nil {
			return parsed
		}
		return ct.raw
	}, CoercibleTime{})
	if err := v.RegisterValidation("coercibletime", func(fl validator.FieldLevel) bool {
		_, ok := fl.Field().Interface().(time.Time)
		return ok
	}); err != nil {
		panic(fmt.Sprintf("handlers: register coercibletime validation: %v", err))
	}
	return v
}

// validationFailed answers 400 with the list of violated constraints.
func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	issues := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		issues = append(issues, FieldError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Message: fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()),
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  issues,
	})
}

// parseBody decodes and validates the request body into req.
// It writes the 400 response itself and reports whether the caller may continue.
func parseBody(c *fiber.Ctx, validate *validator.Validate, req any) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := validate.Struct(req); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

// uuidParam validates a path parameter as a UUID.
func uuidParam(c *fiber.Ctx, validate *validator.Validate, name string) (string, bool, error) {
	value := c.Params(name)
	if err := validate.Var(value, "required,uuid"); err != nil {
		return "", false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors": []FieldError{{
				Field:   name,
				Tag:     "uuid",
				Message: fmt.Sprintf("Param '%s' must be a UUID", name),
			}},
		})
	}
	return value, true, nil
}
