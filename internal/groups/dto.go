package groups

// GroupSummary lists a group for console navigation.
type GroupSummary struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	PermissionCount int    `json:"permission_count"`
}

// PermissionView is one checkbox row in the editor.
type PermissionView struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
	// Editable is false for permissions the actor may see but not change.
	Editable bool `json:"editable"`
}

// CategoryView groups permission rows for display.
type CategoryView struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Icon        string           `json:"icon"`
	Permissions []PermissionView `json:"permissions"`
}

// EditorView is the full state of one editing session as first rendered.
type EditorView struct {
	GroupID    int64          `json:"group_id"`
	GroupName  string         `json:"group_name"`
	Audience   string         `json:"audience"`
	Search     string         `json:"search,omitempty"`
	Categories []CategoryView `json:"categories"`
	// Warning is set when the group snapshot could not be loaded and the
	// editor starts from an empty selection.
	Warning string `json:"warning,omitempty"`
}

// AssignRequest carries the submitted checkbox state. Selection maps
// category id to permission code to checked.
type AssignRequest struct {
	Audience  string                     `json:"audience" validate:"required,oneof=admin agency"`
	Selection map[string]map[string]bool `json:"selection" validate:"required"`
}

// AssignResult reports the persisted outcome.
type AssignResult struct {
	GroupID     int64    `json:"group_id"`
	Permissions []string `json:"permissions"`
	Added       []string `json:"added"`
	Removed     []string `json:"removed"`
}
