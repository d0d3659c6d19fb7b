package permissions

// Permission represents an atomic grantable capability issued by the
// upstream agency API. Immutable once fetched.
type Permission struct {
	Code        string
	DisplayName string
	// Resource names the backing model when the upstream provides it.
	// Used only as a categorization fallback.
	Resource string
}

// Catalog holds the full set of known permissions, indexed by code.
type Catalog struct {
	entries []Permission
	byCode  map[string]Permission
}

// NewCatalog builds a Catalog from upstream entries. Entries with an empty
// code are dropped; later duplicates override earlier ones.
func NewCatalog(entries []Permission) *Catalog {
	c := &Catalog{
		entries: make([]Permission, 0, len(entries)),
		byCode:  make(map[string]Permission, len(entries)),
	}
	for _, e := range entries {
		if e.Code == "" {
			continue
		}
		if _, ok := c.byCode[e.Code]; !ok {
			c.entries = append(c.entries, e)
		}
		c.byCode[e.Code] = e
	}
	return c
}

// ByCode retrieves a permission by its code.
func (c *Catalog) ByCode(code string) (Permission, bool) {
	if c == nil {
		return Permission{}, false
	}
	p, ok := c.byCode[code]
	return p, ok
}

// Contains reports whether the catalog knows the code.
func (c *Catalog) Contains(code string) bool {
	_, ok := c.ByCode(code)
	return ok
}

// Codes returns all permission codes in catalog order.
func (c *Catalog) Codes() []string {
	if c == nil {
		return nil
	}
	codes := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		codes = append(codes, e.Code)
	}
	return codes
}

// All returns every catalog entry in catalog order.
func (c *Catalog) All() []Permission {
	if c == nil {
		return nil
	}
	return c.entries
}

// Len reports the catalog size.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
