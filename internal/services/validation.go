// Package services – validation
//
// This file adapts go-playground/validator failures into apperr.ValidationError
// values. Field names are taken from json tags, and fields are reported in the
// declaration order of the validated struct so error lists are deterministic.
package services

import (
	"errors"
	"reflect"
	"strings"
	_ "time/tzdata" // timezone validation must not depend on the host zoneinfo

	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-api-base/internal/apperr"
)

// Validation messages, worded for display next to a field.
const (
	msgBlank    = "can't be blank"
	msgInvalid  = "is invalid"
	msgTimezone = "is not a valid timezone"
	msgTaken    = "has already been taken"
)

// validate is shared; validator.Validate caches struct metadata and is safe
// for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

// jsonName returns the json field name for f, falling back to the Go name.
func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// messageFor turns a failed validation tag into a display message.
func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgBlank
	case "timezone":
		return msgTimezone
	case "max":
		return "is too long (maximum is " + fe.Param() + " characters)"
	default:
		return msgInvalid
	}
}

// checker accumulates field messages for one struct value and emits them in
// declaration order.
type checker struct {
	order  []string
	fields map[string][]string
}

func newChecker(v any) *checker {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	c := &checker{fields: make(map[string][]string)}
	for i := 0; i < t.NumField(); i++ {
		if n := jsonName(t.Field(i)); n != "" {
			c.order = append(c.order, n)
		}
	}
	return c
}

// add records message for field. Fields not declared on the struct are
// reported after the declared ones, in the order first seen.
func (c *checker) add(field, message string) {
	if !containsString(c.order, field) {
		c.order = append(c.order, field)
	}
	c.fields[field] = append(c.fields[field], message)
}

// run applies struct tag validation. Non-validation errors (bad input type)
// are returned as-is.
func (c *checker) run(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	for _, fe := range ves {
		c.add(fe.Field(), messageFor(fe))
	}
	return nil
}

// has reports whether field already failed.
func (c *checker) has(field string) bool { return len(c.fields[field]) > 0 }

// err returns the accumulated ValidationError, or nil.
func (c *checker) err() error {
	var out apperr.ValidationError
	for _, name := range c.order {
		for _, m := range c.fields[name] {
			out.Add(name, m)
		}
	}
	return out.OrNil()
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
