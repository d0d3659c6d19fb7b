package permissions

import "strings"

// Audience partitions the catalog between the administrative back office
// and the sub-agency portal. Every code belongs to exactly one audience.
type Audience string

const (
	// AudienceAdmin covers the back-office console.
	AudienceAdmin Audience = "admin"
	// AudienceAgency covers the field-agent (sub-agency) portal.
	AudienceAgency Audience = "agency"
)

const agencySuffix = "_agency"

// ParseAudience validates a raw audience value.
func ParseAudience(raw string) (Audience, bool) {
	switch Audience(strings.ToLower(strings.TrimSpace(raw))) {
	case AudienceAdmin:
		return AudienceAdmin, true
	case AudienceAgency:
		return AudienceAgency, true
	}
	return "", false
}

// AudienceOf classifies a permission code by its naming suffix. Codes
// carrying the agency suffix belong to the sub-agency portal; everything
// else is administrative.
func AudienceOf(code string) Audience {
	if strings.HasSuffix(strings.ToLower(code), agencySuffix) {
		return AudienceAgency
	}
	return AudienceAdmin
}
