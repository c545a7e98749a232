package envstruct

import (
	"log/slog"
	"reflect"
	"strings"

	"github.com/myrjola/jigsawroom/internal/errors"
)

var (
	ErrEnvNotSet    = errors.NewSentinel("environment variable not set")
	ErrInvalidValue = errors.NewSentinel("v must be a pointer to a struct")
)

// Populate fills the string fields of the struct pointed to by v from the environment.
//
// lookupEnv has the signature of [os.LookupEnv]. Fields are tagged with `env:"NAME"` or with a comma separated
// list `env:"NAME,FALLBACK"`; the first name that is set wins. When none is set the `envDefault:"value"` tag is
// used, and without it ErrEnvNotSet is returned. All field errors are joined into the returned error.
func Populate(v any, lookupEnv func(string) (string, bool)) error {
	ptrRef := reflect.ValueOf(v)
	if ptrRef.Kind() != reflect.Ptr {
		return errors.Wrap(ErrInvalidValue, "not pointer", slog.Any("v", v))
	}
	ref := ptrRef.Elem()
	if ref.Kind() != reflect.Struct {
		return errors.Wrap(ErrInvalidValue, "not struct", slog.Any("v", v))
	}

	refType := ref.Type()
	var errorList []error
	for i := range refType.NumField() {
		refField := ref.Field(i)
		refTypeField := refType.Field(i)
		names, ok := refTypeField.Tag.Lookup("env")
		if !ok {
			continue
		}
		if !refField.CanSet() {
			errorList = append(errorList, errors.Wrap(ErrInvalidValue, "cannot set field",
				slog.String("fieldName", refTypeField.Name)))
			continue
		}
		if refField.Kind() != reflect.String {
			errorList = append(errorList, errors.Wrap(ErrInvalidValue, "only strings are supported",
				slog.String("envVarNames", names),
				slog.String("fieldType", refField.Kind().String()),
				slog.String("fieldName", refTypeField.Name),
			))
			continue
		}
		val, err := lookupWithFallback(strings.Split(names, ","), refTypeField.Tag, lookupEnv)
		if err != nil {
			errorList = append(errorList, err)
			continue
		}
		refField.SetString(val)
	}

	if len(errorList) != 0 {
		return errors.Join(errorList...)
	}
	return nil
}

func lookupWithFallback(names []string, tag reflect.StructTag, lookupEnv func(string) (string, bool)) (string, error) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if val, ok := lookupEnv(name); ok {
			return val, nil
		}
	}
	if val, ok := tag.Lookup("envDefault"); ok {
		return val, nil
	}
	return "", errors.Wrap(ErrEnvNotSet, "environment variable not set",
		slog.String("envVarNames", strings.Join(names, ",")))
}
