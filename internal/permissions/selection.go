package permissions

import (
	"log/slog"
	"sort"
	"strings"
)

// mutatingVerbs are the code prefixes that imply the paired view
// permission when granted.
var mutatingVerbs = []string{"add_", "create_", "edit_", "update_", "delete_", "remove_", "book_"}

const viewVerb = "view_"

// PairedViewCode derives the view permission implied by a mutating code.
// Returns false when the code carries no mutating-verb prefix.
func PairedViewCode(code string) (string, bool) {
	lowered := strings.ToLower(code)
	for _, verb := range mutatingVerbs {
		if strings.HasPrefix(lowered, verb) && len(code) > len(verb) {
			return viewVerb + code[len(verb):], true
		}
	}
	return "", false
}

// Selection tracks the checkbox state of one editing session:
// category id -> permission code -> checked. Only codes the actor may
// modify enter the state; everything else is preserved by the merge step
// without ever being represented here.
type Selection struct {
	logger     *slog.Logger
	state      map[string]map[string]bool
	categoryOf map[string]string
}

// NewSelection seeds the selection for a target group. Modifiable catalog
// codes start checked when the group currently holds them; a group with no
// fetched permissions yields an all-false state.
func NewSelection(logger *slog.Logger, categories []Category, current []string, filter *CapabilityFilter) *Selection {
	if logger == nil {
		logger = slog.Default()
	}
	held := make(map[string]struct{}, len(current))
	for _, code := range current {
		held[code] = struct{}{}
	}
	s := &Selection{
		logger:     logger,
		state:      make(map[string]map[string]bool, len(categories)),
		categoryOf: make(map[string]string),
	}
	for _, cat := range categories {
		bucket := make(map[string]bool)
		for _, code := range cat.Codes {
			if !filter.IsModifiable(code) {
				continue
			}
			_, checked := held[code]
			bucket[code] = checked
			s.categoryOf[code] = cat.ID
		}
		if len(bucket) > 0 {
			s.state[cat.ID] = bucket
		}
	}
	return s
}

// Toggle flips the checkbox for a code. Setting a mutating permission true
// cascades to its paired view permission in the same category; unchecking
// never retracts the view permission. Unknown or non-modifiable codes are
// logged no-ops.
func (s *Selection) Toggle(categoryID, code string) {
	bucket, ok := s.state[categoryID]
	if !ok {
		s.logger.Warn("selection toggle on unknown category", slog.String("category", categoryID), slog.String("code", code))
		return
	}
	value, ok := bucket[code]
	if !ok {
		s.logger.Warn("selection toggle on unknown code", slog.String("category", categoryID), slog.String("code", code))
		return
	}
	bucket[code] = !value
	if !value {
		s.cascade(categoryID, code)
	}
}

// Set assigns an explicit checkbox value, cascading when set to true.
// Used when replaying a submitted selection.
func (s *Selection) Set(categoryID, code string, checked bool) {
	bucket, ok := s.state[categoryID]
	if !ok {
		s.logger.Warn("selection set on unknown category", slog.String("category", categoryID), slog.String("code", code))
		return
	}
	if _, ok := bucket[code]; !ok {
		s.logger.Warn("selection set on unknown code", slog.String("category", categoryID), slog.String("code", code))
		return
	}
	bucket[code] = checked
	if checked {
		s.cascade(categoryID, code)
	}
}

// Replay applies a full submitted checkbox state in two phases: every
// explicit value first, with no cascading, then one cascade sweep over
// the codes that ended up checked. A mutating code submitted checked
// therefore always brings its paired view along, even when the same
// payload claims the view unchecked, and the outcome never depends on
// map iteration order. Unknown categories and codes are logged no-ops.
func (s *Selection) Replay(submitted map[string]map[string]bool) {
	for categoryID, codes := range submitted {
		bucket, ok := s.state[categoryID]
		if !ok {
			s.logger.Warn("selection replay on unknown category", slog.String("category", categoryID))
			continue
		}
		for code, checked := range codes {
			if _, ok := bucket[code]; !ok {
				s.logger.Warn("selection replay on unknown code", slog.String("category", categoryID), slog.String("code", code))
				continue
			}
			bucket[code] = checked
		}
	}
	for categoryID, bucket := range s.state {
		for code, checked := range bucket {
			if checked {
				s.cascade(categoryID, code)
			}
		}
	}
}

// SetAll assigns every visible code in the category. The caller supplies
// the visible codes so search- and audience-filtered permissions stay
// untouched.
func (s *Selection) SetAll(categoryID string, visible []string, checked bool) {
	bucket, ok := s.state[categoryID]
	if !ok {
		s.logger.Warn("selection set-all on unknown category", slog.String("category", categoryID))
		return
	}
	for _, code := range visible {
		if _, ok := bucket[code]; !ok {
			continue
		}
		bucket[code] = checked
		if checked {
			s.cascade(categoryID, code)
		}
	}
}

// Value reads the checkbox state for a code.
func (s *Selection) Value(categoryID, code string) (checked, ok bool) {
	bucket, found := s.state[categoryID]
	if !found {
		return false, false
	}
	checked, ok = bucket[code]
	return checked, ok
}

// Checked flattens the selection into the sorted list of checked codes.
func (s *Selection) Checked() []string {
	var codes []string
	for _, bucket := range s.state {
		for code, checked := range bucket {
			if checked {
				codes = append(codes, code)
			}
		}
	}
	sort.Strings(codes)
	return codes
}

// State exposes a copy of the full selection state.
func (s *Selection) State() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(s.state))
	for id, bucket := range s.state {
		copied := make(map[string]bool, len(bucket))
		for code, checked := range bucket {
			copied[code] = checked
		}
		out[id] = copied
	}
	return out
}

func (s *Selection) cascade(categoryID, code string) {
	paired, ok := PairedViewCode(code)
	if !ok {
		return
	}
	bucket := s.state[categoryID]
	if _, ok := bucket[paired]; !ok {
		return
	}
	bucket[paired] = true
}
