// Package validation holds the per-form rules checked before any request is
// sent. Each function returns Errors, a list of field-level failures that is
// nil when the input is valid.
package validation

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/storeadmin/internal/client/models"
)

const (
	MinPasswordLen = 6
	MinPrice       = 1
	MaxImageSize   = 5_000_000
)

// AcceptedImageTypes is the allow-list of image content types.
var AcceptedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

const (
	msgRequired     = "Required"
	msgEmail        = "Invalid email"
	msgPasswordLen  = "String must contain at least 6 character(s)"
	msgPriceMin     = "Required"
	msgImageMissing = "required"
)

// MsgInvalidImage is reported for an image outside the allow-list or over
// MaxImageSize.
const MsgInvalidImage = "Invalid file. Choose either JPEG, JPG, PNG, or WEBP image. Max file size allowed is 5MB."

// ErrValidation matches any Errors value with errors.Is.
var ErrValidation = errors.New("validation failed")

type FieldError struct {
	Field   string
	Message string
}

type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) Is(target error) bool {
	return target == ErrValidation
}

// Field returns the first message for field, or "".
func (e Errors) Field(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e *Errors) add(field, msg string) {
	*e = append(*e, FieldError{Field: field, Message: msg})
}

// Login checks the sign-in form.
func Login(email, password string) error {
	var errs Errors
	checkEmail(&errs, email)
	checkPassword(&errs, password)
	return errs.orNil()
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register checks the sign-up form.
func Register(in RegisterInput) error {
	var errs Errors
	if strings.TrimSpace(in.FirstName) == "" {
		errs.add("first_name", msgRequired)
	}
	if strings.TrimSpace(in.LastName) == "" {
		errs.add("last_name", msgRequired)
	}
	checkEmail(&errs, in.Email)
	checkPassword(&errs, in.Password)
	return errs.orNil()
}

// ProductForm checks the editor fields. A missing image is allowed here;
// whether one is required depends on the operation (see RequireImage).
func ProductForm(d models.Draft) error {
	var errs Errors
	if d.Name == "" {
		errs.add("name", msgRequired)
	}
	if d.Description == "" {
		errs.add("description", msgRequired)
	}
	if d.Price < MinPrice {
		errs.add("price", msgPriceMin)
	}
	if d.Image != nil && !ImageAccepted(d.Image) {
		errs.add("image", MsgInvalidImage)
	}
	return errs.orNil()
}

// RequireImage fails when no image file was picked.
func RequireImage(d models.Draft) error {
	if d.Image == nil {
		return Errors{{Field: "image", Message: msgImageMissing}}
	}
	return nil
}

// ImageAccepted applies the content-type allow-list and the size limit.
func ImageAccepted(f *models.ImageFile) bool {
	if f == nil || f.Size() > MaxImageSize {
		return false
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(f.ContentType, ";", 2)[0]))
	for _, accepted := range AcceptedImageTypes {
		if ct == accepted {
			return true
		}
	}
	return false
}

func checkEmail(errs *Errors, email string) {
	if !IsEmail(email) {
		errs.add("email", msgEmail)
	}
}

func checkPassword(errs *Errors, password string) {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		errs.add("password", msgPasswordLen)
	}
}

// IsEmail accepts a bare address ("user@example.com"): no display name, no
// spaces and a dotted domain.
func IsEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}
