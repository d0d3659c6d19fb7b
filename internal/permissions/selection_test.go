package permissions

import (
	"log/slog"
	"testing"
)

func selectionTestCatalog() *Catalog {
	return NewCatalog([]Permission{
		{Code: "view_pax"},
		{Code: "add_pax"},
		{Code: "edit_pax"},
		{Code: "view_hotel"},
		{Code: "add_hotel"},
	})
}

func newTestSelection(t *testing.T, current []string, grants Grants) (*Selection, []Category, *CapabilityFilter) {
	t.Helper()
	catalog := selectionTestCatalog()
	categories := Categorize(catalog)
	filter := NewCapabilityFilter(grants, AudienceAdmin)
	return NewSelection(slog.Default(), categories, current, filter), categories, filter
}

func TestSelectionSeedIntersectsCapability(t *testing.T) {
	sel, _, _ := newTestSelection(t,
		[]string{"view_pax", "view_hotel"},
		Grants{Codes: []string{"view_pax", "add_pax", "edit_pax"}},
	)

	if checked, ok := sel.Value(CategoryPassengers, "view_pax"); !ok || !checked {
		t.Fatalf("view_pax should seed checked, got ok=%v checked=%v", ok, checked)
	}
	if checked, ok := sel.Value(CategoryPassengers, "add_pax"); !ok || checked {
		t.Fatalf("add_pax should seed unchecked, got ok=%v checked=%v", ok, checked)
	}
	// view_hotel is outside the actor's grants: preserved, not editable.
	if _, ok := sel.Value(CategoryHotels, "view_hotel"); ok {
		t.Fatalf("non-modifiable code must not enter the selection state")
	}
}

func TestSelectionEmptyGroupSeedsAllFalse(t *testing.T) {
	sel, _, _ := newTestSelection(t, nil, Grants{All: true})

	if got := sel.Checked(); len(got) != 0 {
		t.Fatalf("expected all-false state, got %v", got)
	}
}

func TestToggleCascadesToPairedView(t *testing.T) {
	sel, _, _ := newTestSelection(t, nil, Grants{All: true})

	sel.Toggle(CategoryPassengers, "add_pax")

	if checked, _ := sel.Value(CategoryPassengers, "add_pax"); !checked {
		t.Fatalf("add_pax should be checked")
	}
	if checked, _ := sel.Value(CategoryPassengers, "view_pax"); !checked {
		t.Fatalf("cascade should check view_pax")
	}

	// Unchecking the mutating permission never retracts the view permission.
	sel.Toggle(CategoryPassengers, "add_pax")
	if checked, _ := sel.Value(CategoryPassengers, "add_pax"); checked {
		t.Fatalf("add_pax should be unchecked after second toggle")
	}
	if checked, _ := sel.Value(CategoryPassengers, "view_pax"); !checked {
		t.Fatalf("view_pax must stay checked")
	}
}

func TestToggleUnknownCodeIsNoOp(t *testing.T) {
	sel, _, _ := newTestSelection(t, nil, Grants{All: true})

	sel.Toggle(CategoryPassengers, "not_in_catalog")
	sel.Toggle("no_such_category", "view_pax")

	if got := sel.Checked(); len(got) != 0 {
		t.Fatalf("no-op toggles must not change state, got %v", got)
	}
}

func TestSetCascadesLikeToggle(t *testing.T) {
	sel, _, _ := newTestSelection(t, nil, Grants{All: true})

	sel.Set(CategoryPassengers, "add_pax", true)
	if checked, _ := sel.Value(CategoryPassengers, "view_pax"); !checked {
		t.Fatalf("explicit set of add_pax should check view_pax")
	}

	sel.Set(CategoryPassengers, "add_pax", false)
	if checked, _ := sel.Value(CategoryPassengers, "view_pax"); !checked {
		t.Fatalf("unsetting add_pax must not retract view_pax")
	}
}

func TestReplayInconsistentPairKeepsPairedView(t *testing.T) {
	// A payload may claim a mutating code checked and its paired view
	// unchecked at the same time. The cascade must win no matter which
	// entry is applied first, so replay repeatedly on fresh state.
	for i := 0; i < 50; i++ {
		sel, _, _ := newTestSelection(t, nil, Grants{All: true})

		sel.Replay(map[string]map[string]bool{
			CategoryPassengers: {"add_pax": true, "view_pax": false},
		})

		if checked, _ := sel.Value(CategoryPassengers, "add_pax"); !checked {
			t.Fatalf("run %d: add_pax should be checked", i)
		}
		if checked, _ := sel.Value(CategoryPassengers, "view_pax"); !checked {
			t.Fatalf("run %d: view_pax must be forced by the cascade", i)
		}
	}
}

func TestReplayUnknownEntriesAreNoOps(t *testing.T) {
	sel, _, _ := newTestSelection(t, nil, Grants{All: true})

	sel.Replay(map[string]map[string]bool{
		"no_such_category": {"view_pax": true},
		CategoryPassengers: {"not_in_catalog": true},
		CategoryHotels:     {"view_hotel": true},
	})

	if got := sel.Checked(); len(got) != 1 || got[0] != "view_hotel" {
		t.Fatalf("expected only view_hotel checked, got %v", got)
	}
}

func TestSetAllOnlyTouchesVisibleCodes(t *testing.T) {
	sel, _, _ := newTestSelection(t, nil, Grants{All: true})

	// Search filter hides edit_pax; select-all must leave it alone.
	sel.SetAll(CategoryPassengers, []string{"view_pax", "add_pax"}, true)

	if checked, _ := sel.Value(CategoryPassengers, "add_pax"); !checked {
		t.Fatalf("visible add_pax should be checked")
	}
	if checked, _ := sel.Value(CategoryPassengers, "edit_pax"); checked {
		t.Fatalf("hidden edit_pax must stay untouched")
	}

	sel.SetAll(CategoryPassengers, []string{"view_pax", "add_pax"}, false)
	if got := sel.Checked(); len(got) != 0 {
		t.Fatalf("expected cleared state, got %v", got)
	}
}

func TestPairedViewCode(t *testing.T) {
	cases := []struct {
		code   string
		paired string
		ok     bool
	}{
		{"add_pax", "view_pax", true},
		{"create_blog_post", "view_blog_post", true},
		{"delete_hotel_payment", "view_hotel_payment", true},
		{"book_package_agency", "view_package_agency", true},
		{"view_pax", "", false},
		{"approve_leave", "", false},
		{"add_", "", false},
	}
	for _, tc := range cases {
		paired, ok := PairedViewCode(tc.code)
		if ok != tc.ok || paired != tc.paired {
			t.Errorf("PairedViewCode(%q) = (%q, %v), want (%q, %v)", tc.code, paired, ok, tc.paired, tc.ok)
		}
	}
}
