package checkout

import (
	"net/mail"
	"net/url"
	"slices"
	"strings"
)

// MaxUploadSize caps the article file at 5 MB. Larger files are discarded.
const MaxUploadSize = 5 << 20

// ValidateStepOne gates the transition from content selection to details.
// The first failing rule is returned; nothing advances partially.
func ValidateStepOne(req ContentRequest) error {
	switch content := req.(type) {
	case ClientContent:
		return validateClientContent(content)
	case *ClientContent:
		return validateClientContent(*content)
	case PublisherContent:
		return validatePublisherContent(content)
	case *PublisherContent:
		return validatePublisherContent(*content)
	default:
		return ErrNoteRequired
	}
}

func validateClientContent(c ClientContent) error {
	if strings.TrimSpace(c.Notes) == "" {
		return ErrNoteRequired
	}
	switch c.FileMode {
	case FileModeURL:
		if !ValidURL(c.FileURL) {
			return ErrURLInvalid
		}
	case FileModeUpload:
		if len(c.FileData) == 0 {
			return ErrFileRequired
		}
		if len(c.FileData) > MaxUploadSize {
			return ErrFileTooLarge
		}
	default:
		return ErrFileOrURLRequired
	}
	if !ValidEmail(c.BackupEmail) {
		return ErrBackupEmailInvalid
	}
	return nil
}

func validatePublisherContent(p PublisherContent) error {
	if strings.TrimSpace(p.Topic) == "" {
		return ErrTopicRequired
	}
	if strings.TrimSpace(p.AnchorLink) == "" {
		return ErrAnchorLinkRequired
	}
	if strings.TrimSpace(p.Anchor) == "" {
		return ErrAnchorRequired
	}
	if !ValidEmail(p.BackupEmail) {
		return ErrBackupEmailInvalid
	}
	if !slices.Contains(WordCounts, p.WordCount) {
		return ErrWordCountRequired
	}
	return nil
}

// ValidateRequiredFields gates final submission from the details step,
// independent of content option.
func ValidateRequiredFields(info PersonalInfo, currency, network string) error {
	required := []struct {
		field string
		value string
	}{
		{"first_name", info.FirstName},
		{"last_name", info.LastName},
		{"email", info.Email},
		{"country_code", info.Phone.CountryCode},
		{"country", info.Country},
		{"city", info.City},
		{"postal_code", info.PostalCode},
		{"currency", currency},
		{"network", network},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &RequiredFieldError{Field: r.field}
		}
	}
	if !ValidLocalNumber(info.Phone.LocalNumber) {
		return ErrPhoneInvalidLength
	}
	return nil
}

// ValidEmail is a syntactic check only.
func ValidEmail(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

// ValidURL accepts absolute http(s) URLs with a host.
func ValidURL(s string) bool {
	u, err := url.ParseRequestURI(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
