package discordbot

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// usageError is a malformed command line. The reply repeats the usage.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// binder fills argument structs. Fields tagged `arg:"N"` take the Nth
// positional argument and a field tagged `arg:"rest"` takes everything after
// the highest position, joined by spaces.
type binder struct {
	validate *validator.Validate
}

func newBinder() *binder {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("name"); name != "" {
			return name
		}
		return strings.ToLower(f.Name)
	})
	return &binder{validate: v}
}

func (b *binder) bind(args []string, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return crerr.Newf("bind target must be a struct pointer, got %T", dst)
	}
	rv = rv.Elem()
	rt := rv.Type()

	restField := -1
	maxPos := -1
	for i := 0; i < rt.NumField(); i++ {
		tag, ok := rt.Field(i).Tag.Lookup("arg")
		if !ok {
			continue
		}
		if tag == "rest" {
			restField = i
			continue
		}
		pos, err := strconv.Atoi(tag)
		if err != nil {
			return crerr.Newf("field %s has bad arg tag %q", rt.Field(i).Name, tag)
		}
		if pos > maxPos {
			maxPos = pos
		}
		if pos >= len(args) {
			continue
		}
		if err := setField(rv.Field(i), args[pos]); err != nil {
			return usagef("%s: %v", fieldName(rt.Field(i)), err)
		}
	}

	if restField >= 0 && maxPos+1 < len(args) {
		if err := setField(rv.Field(restField), strings.Join(args[maxPos+1:], " ")); err != nil {
			return usagef("%s: %v", fieldName(rt.Field(restField)), err)
		}
	} else if restField < 0 && maxPos+1 < len(args) {
		return usagef("too many arguments")
	}

	if err := b.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if crerr.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return usagef("%s", describeFieldError(fieldErrs[0]))
		}
		return err
	}
	return nil
}

func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%q is not a number", raw)
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		v, err := parseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(v)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "yes", "on", "y", "1":
		return true, nil
	case "false", "no", "off", "n", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%q is not yes or no", raw)
	}
}

func fieldName(f reflect.StructField) string {
	if name := f.Tag.Get("name"); name != "" {
		return name
	}
	return strings.ToLower(f.Name)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a URL", fe.Field())
	case "numeric":
		return fmt.Sprintf("%s must be a Discord user", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
