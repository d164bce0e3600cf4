package validator

import (
	"encoding/base64"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/uniattend/attendance-backend/internal/geo"
	"github.com/uniattend/attendance-backend/internal/schedule"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// maxPhotoBytes caps the decoded size of b64image fields.
var maxPhotoBytes int

var (
	euidPattern      = regexp.MustCompile(`^[a-z]{3}\d{4}$`)
	classCodePattern = regexp.MustCompile(`^[a-z]{4}_\d{4}_\d{3}$`)
	joinCodePattern  = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)
)

type customTag struct {
	name    string
	fn      govalidator.Func
	message string
}

var customTags = []customTag{
	{"euid", matches(euidPattern), "{0} must be three lowercase letters followed by four digits"},
	{"classcode", matches(classCodePattern), "{0} must look like abcd_1234_123"},
	{"joincode", matches(joinCodePattern), "{0} must be 6 to 12 uppercase letters or digits"},
	{"hhmmss", validateHHMMSS, "{0} must be a 24-hour time in HH:MM:SS format"},
	{"weekday", validateWeekday, "{0} must be an English weekday name"},
	{"latlon", validateLatLon, "{0} must be [latitude, longitude] within valid ranges"},
	{"b64image", validateBase64Image, "{0} must be a base64-encoded image within the size limit"},
}

// Setup registers the validator with English translations and the custom
// tags on Gin's binding engine. maxPhoto bounds the decoded size of photos.
// Call once during application startup.
func Setup(maxPhoto int) {
	maxPhotoBytes = maxPhoto

	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// Register English translations.
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		en_translations.RegisterDefaultTranslations(v, trans)

		for _, tag := range customTags {
			_ = v.RegisterValidation(tag.name, tag.fn)
			_ = v.RegisterTranslation(tag.name, trans, registerMessage(tag.name, tag.message), translateField)
		}
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// Var validates a single value against tag, e.g. a path parameter.
func Var(value interface{}, tag string) bool {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return false
	}
	return v.Var(value, tag) == nil
}

// ─── Custom tags ────────────────────────────────────────────────────

func matches(re *regexp.Regexp) govalidator.Func {
	return func(fl govalidator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func validateHHMMSS(fl govalidator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != len("15:04:05") {
		return false
	}
	_, err := time.Parse("15:04:05", s)
	return err == nil
}

func validateWeekday(fl govalidator.FieldLevel) bool {
	return schedule.IsWeekday(fl.Field().String())
}

func validateLatLon(fl govalidator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice || field.Len() != 2 {
		return false
	}
	if field.Type().Elem().Kind() != reflect.Float64 {
		return false
	}
	p := geo.Point{Lat: field.Index(0).Float(), Lon: field.Index(1).Float()}
	return p.Validate() == nil
}

func validateBase64Image(fl govalidator.FieldLevel) bool {
	s := fl.Field().String()
	if maxPhotoBytes > 0 && base64.StdEncoding.DecodedLen(len(s)) > maxPhotoBytes+2 {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(raw) == 0 {
		return false
	}
	return maxPhotoBytes <= 0 || len(raw) <= maxPhotoBytes
}

func registerMessage(tag, message string) govalidator.RegisterTranslationsFunc {
	return func(t ut.Translator) error {
		return t.Add(tag, message, true)
	}
}

func translateField(t ut.Translator, fe govalidator.FieldError) string {
	msg, err := t.T(fe.Tag(), fe.Field())
	if err != nil {
		return fe.Error()
	}
	return msg
}
