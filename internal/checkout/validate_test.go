package checkout

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validClient() ClientContent {
	return ClientContent{
		Notes:       "please link to our product page",
		BackupEmail: "a@b.co",
		FileMode:    FileModeURL,
		FileURL:     "https://example.com/article.docx",
	}
}

func validPublisher() PublisherContent {
	return PublisherContent{
		Topic:       "best crypto wallets",
		Anchor:      "crypto wallet",
		AnchorLink:  "https://example.com/wallets",
		BackupEmail: "a@b.co",
		WordCount:   750,
	}
}

func TestValidateStepOne_Client(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ClientContent)
		wantErr error
	}{
		{"valid url mode", func(c *ClientContent) {}, nil},
		{"missing note", func(c *ClientContent) { c.Notes = "  " }, ErrNoteRequired},
		{"invalid url", func(c *ClientContent) { c.FileURL = "not a url" }, ErrURLInvalid},
		{"relative url", func(c *ClientContent) { c.FileURL = "/article.docx" }, ErrURLInvalid},
		{"backup email without at-sign", func(c *ClientContent) { c.BackupEmail = "bad" }, ErrBackupEmailInvalid},
		{"no file mode", func(c *ClientContent) { c.FileMode = "" }, ErrFileOrURLRequired},
		{
			"upload mode without file",
			func(c *ClientContent) { c.FileMode = FileModeUpload; c.FileURL = "" },
			ErrFileRequired,
		},
		{
			"upload mode with oversized file",
			func(c *ClientContent) {
				c.FileMode = FileModeUpload
				c.FileData = bytes.Repeat([]byte{0x1}, MaxUploadSize+1)
			},
			ErrFileTooLarge,
		},
		{
			"upload mode with valid file",
			func(c *ClientContent) {
				c.FileMode = FileModeUpload
				c.FileData = []byte("article body")
			},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := validClient()
			tt.mutate(&content)
			err := ValidateStepOne(content)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStepOne_Publisher(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PublisherContent)
		wantErr error
	}{
		{"valid", func(p *PublisherContent) {}, nil},
		{"missing topic", func(p *PublisherContent) { p.Topic = "" }, ErrTopicRequired},
		{"missing anchor link", func(p *PublisherContent) { p.AnchorLink = "" }, ErrAnchorLinkRequired},
		{"missing anchor", func(p *PublisherContent) { p.Anchor = "" }, ErrAnchorRequired},
		{"bad backup email", func(p *PublisherContent) { p.BackupEmail = "bad" }, ErrBackupEmailInvalid},
		{"no word count", func(p *PublisherContent) { p.WordCount = 0 }, ErrWordCountRequired},
		{"off-tier word count", func(p *PublisherContent) { p.WordCount = 700 }, ErrWordCountRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := validPublisher()
			tt.mutate(&content)
			err := ValidateStepOne(content)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func validInfo() PersonalInfo {
	return PersonalInfo{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Phone:      Phone{CountryCode: "+1", LocalNumber: "555-123-4567"},
		Country:    "United States",
		City:       "New York",
		PostalCode: "10001",
	}
}

func TestValidateRequiredFields(t *testing.T) {
	require.NoError(t, ValidateRequiredFields(validInfo(), "EUR", "TRON"))

	t.Run("nine digit phone rejected", func(t *testing.T) {
		info := validInfo()
		info.Phone.LocalNumber = "555-123-456"
		assert.ErrorIs(t, ValidateRequiredFields(info, "EUR", "TRON"), ErrPhoneInvalidLength)
	})

	t.Run("ten digit phone accepted", func(t *testing.T) {
		info := validInfo()
		info.Phone.LocalNumber = "5551234567"
		assert.NoError(t, ValidateRequiredFields(info, "EUR", "TRON"))
	})

	t.Run("missing fields reported by name", func(t *testing.T) {
		mutations := map[string]func(*PersonalInfo){
			"first_name":   func(i *PersonalInfo) { i.FirstName = "" },
			"last_name":    func(i *PersonalInfo) { i.LastName = "" },
			"email":        func(i *PersonalInfo) { i.Email = "" },
			"country_code": func(i *PersonalInfo) { i.Phone.CountryCode = "" },
			"country":      func(i *PersonalInfo) { i.Country = "" },
			"city":         func(i *PersonalInfo) { i.City = "" },
			"postal_code":  func(i *PersonalInfo) { i.PostalCode = "" },
		}
		for field, mutate := range mutations {
			info := validInfo()
			mutate(&info)
			err := ValidateRequiredFields(info, "EUR", "TRON")
			var missing *RequiredFieldError
			require.True(t, errors.As(err, &missing), "field %s", field)
			assert.Equal(t, field, missing.Field)
		}
	})

	t.Run("missing currency and network", func(t *testing.T) {
		var missing *RequiredFieldError
		err := ValidateRequiredFields(validInfo(), "", "TRON")
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "currency", missing.Field)

		err = ValidateRequiredFields(validInfo(), "EUR", "")
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "network", missing.Field)
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(ErrPhoneInvalidLength))
	assert.Equal(t, KindAuth, KindOf(ErrTokenExpired))
	assert.Equal(t, KindSubmission, KindOf(wrap(ErrProcessOrder, errors.New("boom"))))
	assert.Equal(t, KindPaymentData, KindOf(ErrQRCodeFormat))
	assert.Equal(t, KindValidation, KindOf(&RequiredFieldError{Field: "city"}))
	assert.Equal(t, ErrorKind(0), KindOf(errors.New("plain")))
}
