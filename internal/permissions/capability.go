package permissions

import "strings"

// Grants is the actor's own permission set as reported by the upstream
// API. All models the super-actor sentinel: the actor may modify the
// entire catalog.
type Grants struct {
	All   bool
	Codes []string
}

// CapabilityFilter decides which permissions the acting user may change in
// the current editing session. An actor may modify exactly the codes it
// holds itself (or everything, for a super-actor), narrowed to the
// session's audience. A code is either fully modifiable or fully opaque.
type CapabilityFilter struct {
	audience Audience
	all      bool
	held     map[string]struct{}
}

// NewCapabilityFilter builds the filter for one editing session.
func NewCapabilityFilter(grants Grants, audience Audience) *CapabilityFilter {
	held := make(map[string]struct{}, len(grants.Codes))
	for _, code := range grants.Codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		held[code] = struct{}{}
	}
	return &CapabilityFilter{audience: audience, all: grants.All, held: held}
}

// Audience reports the session audience the filter was built for.
func (f *CapabilityFilter) Audience() Audience {
	return f.audience
}

// IsModifiable reports whether the actor may grant or revoke the code in
// this session. Codes tagged for the other audience are never modifiable
// here, regardless of the actor's holdings.
func (f *CapabilityFilter) IsModifiable(code string) bool {
	if f == nil || code == "" {
		return false
	}
	if AudienceOf(code) != f.audience {
		return false
	}
	if f.all {
		return true
	}
	_, ok := f.held[code]
	return ok
}

// ModifiableSubset returns the codes the actor may change, preserving
// input order.
func (f *CapabilityFilter) ModifiableSubset(codes []string) []string {
	subset := make([]string, 0, len(codes))
	for _, code := range codes {
		if f.IsModifiable(code) {
			subset = append(subset, code)
		}
	}
	return subset
}
