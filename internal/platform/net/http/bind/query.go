package bind

// Query-string binding in the same shape as ParseJSON: decode into a tagged
// struct, then run the shared validator so GET endpoints get the same
// translated messages as JSON bodies

import (
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	perr "evalview/internal/platform/errors"
	"evalview/internal/platform/logger"

	"github.com/go-playground/validator/v10"
)

// ParseQuery decodes r's query string into T, validates it, and maps failures
// to project errors. Fields opt in with a `query:"name"` tag; a json tag is
// used as fallback so request structs can serve both transports
func ParseQuery[T any](r *http.Request) (T, error) {
	var dst T
	var zero T

	if err := decodeQuery(r.URL.Query(), &dst); err != nil {
		return zero, err
	}

	if err := Get().Validator.Struct(dst); err != nil {
		if inv, ok := err.(*validator.InvalidValidationError); ok {
			logger.Get().Error().Err(inv).Msg("validator internal error")
			return zero, perr.JSONErrf("validation error")
		}
		field, msg := ValidationFieldAndMessage(err)
		return zero, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
	}

	return dst, nil
}

// decodeQuery fills exported struct fields from query values.
// Supported kinds: string, bool, ints, uints, floats, and []string
// (repeated params). Missing params leave the zero value for the validator
func decodeQuery(q url.Values, dst any) error {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := queryName(f)
		if name == "" {
			continue
		}
		if _, present := q[name]; !present {
			continue
		}

		fv := v.Field(i)
		raw := strings.TrimSpace(q.Get(name))

		switch fv.Kind() {
		case reflect.String:
			fv.SetString(raw)
		case reflect.Bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return perr.Newf(perr.ErrorCodeValidation, "%s must be a boolean", name)
			}
			fv.SetBool(b)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || fv.OverflowInt(n) {
				return perr.Newf(perr.ErrorCodeValidation, "%s must be an integer", name)
			}
			fv.SetInt(n)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || fv.OverflowUint(n) {
				return perr.Newf(perr.ErrorCodeValidation, "%s must be a non-negative integer", name)
			}
			fv.SetUint(n)
		case reflect.Float32, reflect.Float64:
			fl, err := strconv.ParseFloat(raw, 64)
			if err != nil || fv.OverflowFloat(fl) {
				return perr.Newf(perr.ErrorCodeValidation, "%s must be a number", name)
			}
			fv.SetFloat(fl)
		case reflect.Slice:
			if fv.Type().Elem().Kind() != reflect.String {
				continue
			}
			vals := q[name]
			out := make([]string, 0, len(vals))
			for _, s := range vals {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
			fv.Set(reflect.ValueOf(out))
		default:
			// unhandled kinds are left to the validator's required checks
		}
	}
	return nil
}

// queryName resolves the param name: query tag, then json tag, else skip
func queryName(f reflect.StructField) string {
	tag := f.Tag.Get("query")
	if tag == "" {
		tag = f.Tag.Get("json")
	}
	if idx := strings.Index(tag, ","); idx >= 0 {
		tag = tag[:idx]
	}
	if tag == "-" {
		return ""
	}
	return tag
}
