package permissions

import "sort"

// FinalSet computes the permission set to persist for a group:
// everything in the current set the actor cannot modify, passed through
// verbatim, plus exactly the modifiable codes that are checked. Unchecked
// modifiable codes are dropped. The result is sorted and deduplicated.
//
// Laws, pinned by tests:
//
//	result ∩ modifiable == selected ∩ modifiable
//	result \ modifiable == current \ modifiable
func FinalSet(current []string, filter *CapabilityFilter, selected []string) []string {
	final := make(map[string]struct{}, len(current)+len(selected))
	for _, code := range current {
		if !filter.IsModifiable(code) {
			final[code] = struct{}{}
		}
	}
	for _, code := range selected {
		if filter.IsModifiable(code) {
			final[code] = struct{}{}
		}
	}
	out := make([]string, 0, len(final))
	for code := range final {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Diff splits the transition from current to next into added and removed
// codes, both sorted. Used for the assignment audit trail.
func Diff(current, next []string) (added, removed []string) {
	curSet := make(map[string]struct{}, len(current))
	for _, code := range current {
		curSet[code] = struct{}{}
	}
	nextSet := make(map[string]struct{}, len(next))
	for _, code := range next {
		nextSet[code] = struct{}{}
	}
	for code := range nextSet {
		if _, ok := curSet[code]; !ok {
			added = append(added, code)
		}
	}
	for code := range curSet {
		if _, ok := nextSet[code]; !ok {
			removed = append(removed, code)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
