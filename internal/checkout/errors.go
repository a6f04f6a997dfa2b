package checkout

import (
	"errors"
	"fmt"
)

// ERROR TAXONOMY
//
// Validation and auth errors block the current action locally. Submission and
// payment-data errors leave the session recoverable. Polling errors never
// abort the poll loop. Codes are stable identifiers the front end localizes.

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuth
	KindSubmission
	KindPaymentData
	KindPolling
)

type Error struct {
	Kind ErrorKind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind and code so wrapped copies compare equal to the
// sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// wrap returns a copy of the sentinel carrying cause as its Err.
func wrap(sentinel *Error, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Code: sentinel.Code, Err: cause}
}

var (
	ErrNoteRequired       = &Error{Kind: KindValidation, Code: "note_required"}
	ErrTopicRequired      = &Error{Kind: KindValidation, Code: "topic_required"}
	ErrAnchorRequired     = &Error{Kind: KindValidation, Code: "anchor_required"}
	ErrAnchorLinkRequired = &Error{Kind: KindValidation, Code: "anchor_link_required"}
	ErrWordCountRequired  = &Error{Kind: KindValidation, Code: "word_count_required"}
	ErrURLInvalid         = &Error{Kind: KindValidation, Code: "url_invalid"}
	ErrFileRequired       = &Error{Kind: KindValidation, Code: "file_required"}
	ErrFileTooLarge       = &Error{Kind: KindValidation, Code: "file_too_large"}
	ErrBackupEmailInvalid = &Error{Kind: KindValidation, Code: "backup_email_invalid"}
	ErrPhoneInvalidLength = &Error{Kind: KindValidation, Code: "phone_invalid_length"}
	ErrCitySelectRequired = &Error{Kind: KindValidation, Code: "city_select_required"}
	ErrPostalCodeRequired = &Error{Kind: KindValidation, Code: "postal_code_required"}
	ErrNoProducts         = &Error{Kind: KindValidation, Code: "no_products"}
	ErrFileOrURLRequired  = &Error{Kind: KindValidation, Code: "file_or_url_required"}

	ErrAuthTokenMissing = &Error{Kind: KindAuth, Code: "auth_token_missing"}
	ErrTokenExpired     = &Error{Kind: KindAuth, Code: "token_expired"}

	ErrUpdateProfile = &Error{Kind: KindSubmission, Code: "update_profile"}
	ErrProcessOrder  = &Error{Kind: KindSubmission, Code: "process_order"}

	ErrPaymentDataMissing = &Error{Kind: KindPaymentData, Code: "payment_data_missing"}
	ErrQRCodeFormat       = &Error{Kind: KindPaymentData, Code: "qr_code_format"}

	ErrCheckPayment = &Error{Kind: KindPolling, Code: "check_payment"}
)

// RequiredFieldError reports a missing final-submission field by name.
type RequiredFieldError struct {
	Field string
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// KindOf classifies err; zero means err carries no checkout kind.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var r *RequiredFieldError
	if errors.As(err, &r) {
		return KindValidation
	}
	return 0
}

// CodeOf extracts the stable error code, falling back to a generic one.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var r *RequiredFieldError
	if errors.As(err, &r) {
		return "field_required"
	}
	return "unknown"
}
