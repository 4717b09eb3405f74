// Package book implements the phone book operations: validated
// create, query and update calls over a core.Store.
//
// Every operation is a single read-modify-commit against the store.
// Input problems surface as *core.ValidationError and references to
// missing rows as *core.NotFoundError; anything else is an
// infrastructure failure wrapped with context.
package book

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/leapstack-labs/phonebook/pkg/core"
)

// Options configures a Book.
type Options struct {
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
	// Location is the zone user-entered dates and times are read in.
	// Nil means time.Local.
	Location *time.Location
	// Now is the clock used for calls logged without a timestamp.
	// Nil means time.Now.
	Now func() time.Time
}

// Book exposes the phone book operations.
type Book struct {
	store    core.Store
	validate *validator.Validate
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
}

// New creates a Book over store.
func New(store core.Store, opts Options) *Book {
	b := &Book{
		store:    store,
		validate: newValidator(),
		logger:   opts.Logger,
		loc:      opts.Location,
		now:      opts.Now,
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}
	if b.loc == nil {
		b.loc = time.Local
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Location returns the zone dates and times are interpreted in.
func (b *Book) Location() *time.Location {
	return b.loc
}

// newValidator builds a validator that reports fields by their json name
// and knows the phone book's enumerations.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := registerValidators(v); err != nil {
		panic(fmt.Sprintf("book: register validators: %v", err))
	}
	return v
}

// registerValidators registers the custom validation tags.
func registerValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("call_type", validateCallType); err != nil {
		return err
	}
	if err := v.RegisterValidation("direction", validateDirection); err != nil {
		return err
	}
	return v.RegisterValidation("call_time", validateCallTime)
}

func validateCallType(fl validator.FieldLevel) bool {
	_, err := core.ParseCallType(fl.Field().String())
	return err == nil
}

func validateDirection(fl validator.FieldLevel) bool {
	return core.Direction(fl.Field().String()).Valid()
}

func validateCallTime(fl validator.FieldLevel) bool {
	_, err := parseCallTime(fl.Field().String(), time.UTC)
	return err == nil
}

// check validates v and converts the first failure into a ValidationError.
func (b *Book) check(v any) error {
	err := b.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	fe := fieldErrs[0]
	return &core.ValidationError{Field: fe.Field(), Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "call_type":
		return fmt.Sprintf("must be one of incoming, outgoing, missed (got %q)", fe.Value())
	case "direction":
		return fmt.Sprintf("must be sent or received (got %q)", fe.Value())
	case "call_time":
		return fmt.Sprintf("use YYYY-MM-DD HH:MM (got %q)", fe.Value())
	case "datetime":
		return fmt.Sprintf("use YYYY-MM-DD (got %q)", fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of %s (got %q)", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
