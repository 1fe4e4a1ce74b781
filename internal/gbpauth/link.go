package gbpauth

import (
	"fmt"
	"strings"
)

// Business identifies the business whose owner performs the grant.
type Business struct {
	Name    string
	Phone   string
	PlaceID string
}

// Key is the durable-state key for this business: place id when known,
// otherwise the name.
func (b Business) Key() string {
	if b.PlaceID != "" {
		return b.PlaceID
	}
	return b.Name
}

// AuthLink builds the authorization URL the business owner opens, with
// the session id and business name embedded.
func AuthLink(appBaseURL, sessionID, businessName string) string {
	return fmt.Sprintf("%s/google-business-auth?session_id=%s&business=%s",
		strings.TrimRight(appBaseURL, "/"),
		escapeQueryComponent(sessionID),
		escapeQueryComponent(businessName),
	)
}

// WhatsAppLink builds the wa.me deep link that delivers the auth URL.
// The phone is reduced to digits only, as wa.me requires. The whole
// message, auth URL included, is percent-encoded as one text value;
// the receiving end decodes it exactly once, which restores the URL
// with its own encoding intact. Leaving the URL's & raw would end the
// text parameter early and drop everything after it.
func WhatsAppLink(phone, businessName, authURL string) string {
	message := fmt.Sprintf("Hi! Please connect the Google Business Profile for %s using this link: %s", businessName, authURL)
	return fmt.Sprintf("https://wa.me/%s?text=%s", digitsOnly(phone), escapeQueryComponent(message))
}

func digitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// escapeQueryComponent percent-encodes a query component using %20 for
// spaces, matching how messaging deep links expect their text payload.
func escapeQueryComponent(s string) string {
	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xf])
		}
	}
	return b.String()
}
