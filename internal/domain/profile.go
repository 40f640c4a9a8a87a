package domain

// DefaultProfileName is used when the transport supplies no display name.
const DefaultProfileName = "Desconocido"

// Profile is the per-subscriber record keyed by WhatsApp number.
type Profile struct {
	Name                  string   `json:"name"`
	City                  *string  `json:"city"`
	Interest              *string  `json:"interest"`
	RegistrationConfirmed bool     `json:"registration_confirmed"`
	Interactions          []string `json:"interactions"`
	Notified              []string `json:"notified"`
}

// NewProfile builds an unconfirmed profile with defaults.
func NewProfile(name string) *Profile {
	if name == "" {
		name = DefaultProfileName
	}
	return &Profile{
		Name:         name,
		Interactions: []string{},
		Notified:     []string{},
	}
}

// HasSearchCriteria reports whether the profile carries enough data
// to build a notification query.
func (p *Profile) HasSearchCriteria() bool {
	return strValue(p.City) != "" || strValue(p.Interest) != ""
}

// CityValue returns the city or the empty string.
func (p *Profile) CityValue() string {
	return strValue(p.City)
}

// InterestValue returns the interest or the empty string.
func (p *Profile) InterestValue() string {
	return strValue(p.Interest)
}

// HasNotified reports whether the code was already delivered to this user.
func (p *Profile) HasNotified(code string) bool {
	for _, c := range p.Notified {
		if c == code {
			return true
		}
	}
	return false
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
