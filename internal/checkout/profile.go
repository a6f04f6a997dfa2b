package checkout

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"guestpost-checkout/pkg/api"
)

// ProfileSync loads and persists the buyer profile and owns the
// country-driven derivations.
type ProfileSync struct {
	api    MarketplaceAPI
	state  PersistedState
	logger *zap.Logger
}

func NewProfileSync(apiClient MarketplaceAPI, state PersistedState, logger *zap.Logger) *ProfileSync {
	return &ProfileSync{
		api:    apiClient,
		state:  state,
		logger: logger,
	}
}

// Load fetches the saved profile into the session. Failures are soft: the
// error is returned for surfacing but the checkout continues with empty
// fields.
func (p *ProfileSync) Load(ctx context.Context, token string, sess *Session) error {
	profile, err := p.api.Profile(ctx, token)
	if err != nil {
		p.logger.Warn("Profile load failed, continuing with empty fields",
			zap.Error(err))
		return fmt.Errorf("load profile: %w", err)
	}

	sess.Info = PersonalInfo{
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Email:      profile.Email,
		Phone:      ParsePhone(profile.Phone),
		Country:    profile.Country,
		City:       profile.City,
		PostalCode: profile.PostalCode,
	}
	return nil
}

// Save validates and persists the edited profile. The phone is sent as
// "<countryCode> <localNumber>".
func (p *ProfileSync) Save(ctx context.Context, token string, info PersonalInfo) error {
	if token == "" {
		return ErrAuthTokenMissing
	}
	if strings.TrimSpace(info.PostalCode) == "" {
		return ErrPostalCodeRequired
	}
	if info.Country != "" && strings.TrimSpace(info.City) == "" {
		return ErrCitySelectRequired
	}

	upd := api.ProfileUpdate{
		FirstName:  info.FirstName,
		LastName:   info.LastName,
		Email:      info.Email,
		Phone:      FormatFullPhone(info.Phone),
		Country:    info.Country,
		City:       info.City,
		PostalCode: info.PostalCode,
	}
	if err := p.api.UpdateProfile(ctx, token, upd); err != nil {
		return wrap(ErrUpdateProfile, err)
	}
	return nil
}

// The cascades below are pure functions of current state, re-run whenever a
// dependency changes, so the three reference loads may arrive in any order.

// DeriveCities recomputes the candidate city list for a country:
// case-insensitive exact match first, substring match as fallback.
func DeriveCities(countries []api.Country, country string) []string {
	if country == "" {
		return nil
	}

	want := strings.ToLower(strings.TrimSpace(country))
	for _, c := range countries {
		if strings.ToLower(c.Name) == want {
			return c.Cities
		}
	}
	for _, c := range countries {
		if strings.Contains(strings.ToLower(c.Name), want) {
			return c.Cities
		}
	}
	return nil
}

// AutoSelectCity picks the first candidate city when none is selected yet,
// but only while the form is editable.
func AutoSelectCity(cities []string, current string, editMode bool) string {
	if current != "" || !editMode || len(cities) == 0 {
		return current
	}
	return cities[0]
}

// DeriveCallingCode auto-populates the calling code from the country. A
// manual selection always wins, as does any code already set.
func DeriveCallingCode(codes []api.CallingCode, country, current string, manual bool) string {
	if manual || current != "" || country == "" {
		return current
	}

	want := strings.ToLower(strings.TrimSpace(country))
	for _, c := range codes {
		if strings.ToLower(c.Country) == want {
			return c.DialCode
		}
	}
	return current
}
