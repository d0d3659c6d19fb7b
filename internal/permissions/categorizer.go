package permissions

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category ids for the static keyword rules.
const (
	CategoryBlog        = "blog"
	CategoryCommissions = "commissions"
	CategoryFinance     = "finance"
	CategoryPassengers  = "passengers"
	CategoryVisas       = "visas"
	CategoryTicketing   = "ticketing"
	CategoryHotels      = "hotels"
	CategoryMovements   = "movements"
	CategoryHR          = "hr"
	CategoryAccess      = "access"
	CategoryPackages    = "packages"
	CategoryBookings    = "bookings"

	// CategoryUncategorized is the reserved fallback bucket.
	CategoryUncategorized = "uncategorized"
)

type categoryRule struct {
	keyword  string
	category string
}

// categoryRules is scanned top to bottom; the first keyword that is a
// substring of the lowercased code wins. Ordering is load-bearing:
// compound keywords must stay above the generic keywords they contain
// (pax_movement before pax and movement, hotel_payment before hotel and
// payment, group_ticket before group and ticket). Do not sort and do not
// convert to a map.
var categoryRules = []categoryRule{
	{"pax_movement", CategoryMovements},
	{"hotel_payment", CategoryHotels},
	{"group_ticket", CategoryTicketing},
	{"blog", CategoryBlog},
	{"commission", CategoryCommissions},
	{"payment", CategoryFinance},
	{"invoice", CategoryFinance},
	{"ledger", CategoryFinance},
	{"pax", CategoryPassengers},
	{"passenger", CategoryPassengers},
	{"visa", CategoryVisas},
	{"ticket", CategoryTicketing},
	{"flight", CategoryTicketing},
	{"hotel", CategoryHotels},
	{"transport", CategoryMovements},
	{"movement", CategoryMovements},
	{"attendance", CategoryHR},
	{"payroll", CategoryHR},
	{"leave", CategoryHR},
	{"employee", CategoryHR},
	{"group", CategoryAccess},
	{"permission", CategoryAccess},
	{"user", CategoryAccess},
	{"package", CategoryPackages},
	{"booking", CategoryBookings},
}

// CategoryMeta carries display information for a category id.
type CategoryMeta struct {
	Label string
	Icon  string
}

var categoryMeta = map[string]CategoryMeta{
	CategoryBlog:          {Label: "Blog & Content", Icon: "newspaper"},
	CategoryCommissions:   {Label: "Commissions", Icon: "percent"},
	CategoryFinance:       {Label: "Finance", Icon: "banknote"},
	CategoryPassengers:    {Label: "Passengers", Icon: "users"},
	CategoryVisas:         {Label: "Visas", Icon: "stamp"},
	CategoryTicketing:     {Label: "Ticketing", Icon: "plane"},
	CategoryHotels:        {Label: "Hotels", Icon: "building"},
	CategoryMovements:     {Label: "Pax Movements", Icon: "route"},
	CategoryHR:            {Label: "Human Resources", Icon: "id-card"},
	CategoryAccess:        {Label: "Users & Access", Icon: "shield"},
	CategoryPackages:      {Label: "Packages", Icon: "briefcase"},
	CategoryBookings:      {Label: "Bookings", Icon: "calendar"},
	CategoryUncategorized: {Label: "Uncategorized", Icon: "circle"},
}

// canonicalOrder fixes the display order for known categories; derived
// categories follow alphabetically, the reserved bucket last.
var canonicalOrder = []string{
	CategoryAccess,
	CategoryBookings,
	CategoryPackages,
	CategoryPassengers,
	CategoryVisas,
	CategoryTicketing,
	CategoryHotels,
	CategoryMovements,
	CategoryFinance,
	CategoryCommissions,
	CategoryHR,
	CategoryBlog,
}

var titleCaser = cases.Title(language.English)

// CategoryOf maps a permission to its category id. Pure function over the
// static rule table and the permission's code and resource metadata.
func CategoryOf(p Permission) string {
	code := strings.ToLower(strings.TrimSpace(p.Code))
	if code == "" {
		return CategoryUncategorized
	}
	for _, r := range categoryRules {
		if strings.Contains(code, r.keyword) {
			return r.category
		}
	}
	if derived := deriveCategoryID(p.Resource); derived != "" {
		return derived
	}
	return CategoryUncategorized
}

// MetaFor resolves display metadata for a category id. Unknown ids get a
// title-cased label and a generic icon.
func MetaFor(id string) CategoryMeta {
	if meta, ok := categoryMeta[id]; ok {
		return meta
	}
	return CategoryMeta{Label: labelFromID(id), Icon: "folder"}
}

// Category is a derived display grouping of permission codes.
type Category struct {
	ID    string
	Label string
	Icon  string
	Codes []string
}

// Categorize partitions the catalog into categories. Every code appears in
// exactly one category; codes within a category are sorted lexically.
func Categorize(catalog *Catalog) []Category {
	buckets := make(map[string][]string)
	for _, p := range catalog.All() {
		id := CategoryOf(p)
		buckets[id] = append(buckets[id], p.Code)
	}

	ordered := make([]string, 0, len(buckets))
	seen := make(map[string]bool, len(buckets))
	for _, id := range canonicalOrder {
		if _, ok := buckets[id]; ok {
			ordered = append(ordered, id)
			seen[id] = true
		}
	}
	derived := make([]string, 0, len(buckets))
	for id := range buckets {
		if !seen[id] && id != CategoryUncategorized {
			derived = append(derived, id)
		}
	}
	sort.Strings(derived)
	ordered = append(ordered, derived...)
	if _, ok := buckets[CategoryUncategorized]; ok {
		ordered = append(ordered, CategoryUncategorized)
	}

	categories := make([]Category, 0, len(ordered))
	for _, id := range ordered {
		codes := buckets[id]
		sort.Strings(codes)
		meta := MetaFor(id)
		categories = append(categories, Category{
			ID:    id,
			Label: meta.Label,
			Icon:  meta.Icon,
			Codes: codes,
		})
	}
	return categories
}

func deriveCategoryID(resource string) string {
	resource = strings.ToLower(strings.TrimSpace(resource))
	if resource == "" {
		return ""
	}
	resource = strings.ReplaceAll(resource, "-", "_")
	return strings.Join(strings.Fields(strings.ReplaceAll(resource, "_", " ")), "_")
}

func labelFromID(id string) string {
	words := strings.ReplaceAll(id, "_", " ")
	return titleCaser.String(words)
}
