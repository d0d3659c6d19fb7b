package groups

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/manzil-travel/manzil-console/internal/audit"
	"github.com/manzil-travel/manzil-console/internal/permissions"
	"github.com/manzil-travel/manzil-console/internal/platform/cache"
	"github.com/manzil-travel/manzil-console/internal/upstream"
)

// UpstreamAPI is the slice of the agency API the editor consumes.
type UpstreamAPI interface {
	FetchCatalog(ctx context.Context) ([]upstream.CatalogEntry, error)
	FetchActorGrants(ctx context.Context, actorID int64) (permissions.Grants, error)
	ListGroups(ctx context.Context) ([]upstream.Group, error)
	FetchGroup(ctx context.Context, groupID int64) (upstream.Group, error)
	PersistGroup(ctx context.Context, groupID int64, perms []string) error
}

// Auditor records successful assignments outside the request path.
type Auditor interface {
	EnqueueAssignmentAudit(ctx context.Context, rec audit.Assignment) error
}

// Service orchestrates the group-permission editor.
type Service struct {
	logger  *slog.Logger
	api     UpstreamAPI
	cache   *cache.Cache
	auditor Auditor
}

// NewService constructs the editor service. cache and auditor may be nil.
func NewService(logger *slog.Logger, api UpstreamAPI, c *cache.Cache, auditor Auditor) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, api: api, cache: c, auditor: auditor}
}

// ListGroups returns the groups available for editing.
func (s *Service) ListGroups(ctx context.Context) ([]GroupSummary, error) {
	groups, err := s.api.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupSummary{ID: g.ID, Name: g.Name, PermissionCount: len(g.Permissions)})
	}
	return out, nil
}

// LoadEditor assembles the categorized, capability-annotated editor state
// for one group. Catalog and actor grants are fetched through the cache
// and are fatal on failure; a failed group fetch degrades to an empty
// selection with a warning.
func (s *Service) LoadEditor(ctx context.Context, actorID, groupID int64, audience permissions.Audience, search string) (EditorView, error) {
	var (
		catalog *permissions.Catalog
		grants  permissions.Grants
		group   upstream.Group
		warning string
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		catalog, err = s.fetchCatalog(egCtx)
		return err
	})
	eg.Go(func() error {
		var err error
		grants, err = s.fetchGrants(egCtx, actorID)
		return err
	})
	eg.Go(func() error {
		fetched, err := s.api.FetchGroup(egCtx, groupID)
		if err != nil {
			// Non-fatal: the editor starts from an empty selection.
			s.logger.Warn("group fetch failed, starting empty",
				slog.Int64("group_id", groupID), slog.Any("error", err))
			warning = "group permissions could not be loaded; starting from an empty selection"
			group = upstream.Group{ID: groupID}
			return nil
		}
		group = fetched
		return nil
	})
	if err := eg.Wait(); err != nil {
		return EditorView{}, err
	}

	filter := permissions.NewCapabilityFilter(grants, audience)
	categories := permissions.Categorize(catalog)
	selection := permissions.NewSelection(s.logger, categories, group.Permissions, filter)
	groupHeld := toSet(group.Permissions)

	view := EditorView{
		GroupID:   group.ID,
		GroupName: group.Name,
		Audience:  string(audience),
		Search:    search,
		Warning:   warning,
	}
	needle := strings.ToLower(strings.TrimSpace(search))
	for _, cat := range categories {
		var rows []PermissionView
		for _, code := range cat.Codes {
			if permissions.AudienceOf(code) != audience {
				continue
			}
			entry, _ := catalog.ByCode(code)
			if needle != "" && !matchesSearch(entry, needle) {
				continue
			}
			editable := filter.IsModifiable(code)
			checked := groupHeld[code]
			if editable {
				checked, _ = selection.Value(cat.ID, code)
			}
			rows = append(rows, PermissionView{
				Code:     code,
				Name:     displayName(entry),
				Checked:  checked,
				Editable: editable,
			})
		}
		if len(rows) == 0 {
			continue
		}
		view.Categories = append(view.Categories, CategoryView{
			ID:          cat.ID,
			Label:       cat.Label,
			Icon:        cat.Icon,
			Permissions: rows,
		})
	}
	return view, nil
}

// Assign replays the submitted checkbox state through the selection model
// (re-applying the view cascade), merges it with the group's current set,
// and persists the result upstream. Nothing is retried automatically; on
// failure the caller keeps the submitted selection for an explicit retry.
func (s *Service) Assign(ctx context.Context, actorID, groupID int64, audience permissions.Audience, submitted map[string]map[string]bool) (AssignResult, error) {
	var (
		catalog *permissions.Catalog
		grants  permissions.Grants
		group   upstream.Group
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		catalog, err = s.fetchCatalog(egCtx)
		return err
	})
	eg.Go(func() error {
		var err error
		grants, err = s.fetchGrants(egCtx, actorID)
		return err
	})
	eg.Go(func() error {
		var err error
		group, err = s.api.FetchGroup(egCtx, groupID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return AssignResult{}, err
	}

	filter := permissions.NewCapabilityFilter(grants, audience)
	categories := permissions.Categorize(catalog)
	selection := permissions.NewSelection(s.logger, categories, nil, filter)
	selection.Replay(submitted)

	final := permissions.FinalSet(group.Permissions, filter, selection.Checked())
	if err := s.api.PersistGroup(ctx, groupID, final); err != nil {
		return AssignResult{}, err
	}

	added, removed := permissions.Diff(group.Permissions, final)
	s.logger.Info("group permissions assigned",
		slog.Int64("actor_id", actorID),
		slog.Int64("group_id", groupID),
		slog.String("audience", string(audience)),
		slog.Int("added", len(added)),
		slog.Int("removed", len(removed)),
	)

	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("cache bump failed", slog.Any("error", err))
	}
	if s.auditor != nil {
		rec := audit.Assignment{
			ID:       uuid.New(),
			ActorID:  actorID,
			GroupID:  groupID,
			Audience: string(audience),
			Added:    added,
			Removed:  removed,
			At:       time.Now().UTC(),
		}
		if err := s.auditor.EnqueueAssignmentAudit(ctx, rec); err != nil {
			s.logger.Warn("audit enqueue failed", slog.Any("error", err))
		}
	}

	return AssignResult{GroupID: groupID, Permissions: final, Added: added, Removed: removed}, nil
}

func (s *Service) fetchCatalog(ctx context.Context) (*permissions.Catalog, error) {
	key, err := s.cache.BuildKey(ctx, "console", "catalog")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", upstream.ErrCatalogUnavailable, err)
	}
	var entries []upstream.CatalogEntry
	err = s.cache.FetchJSON(ctx, key, &entries, func(ctx context.Context) (interface{}, error) {
		return s.api.FetchCatalog(ctx)
	})
	if err != nil {
		if errors.Is(err, upstream.ErrCatalogUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", upstream.ErrCatalogUnavailable, err)
	}
	perms := make([]permissions.Permission, 0, len(entries))
	for _, e := range entries {
		perms = append(perms, permissions.Permission{
			Code:        e.Code,
			DisplayName: e.DisplayName,
			Resource:    e.Resource,
		})
	}
	return permissions.NewCatalog(perms), nil
}

func (s *Service) fetchGrants(ctx context.Context, actorID int64) (permissions.Grants, error) {
	key, err := s.cache.BuildKey(ctx, "console", "grants", strconv.FormatInt(actorID, 10))
	if err != nil {
		return permissions.Grants{}, fmt.Errorf("%w: %v", upstream.ErrCatalogUnavailable, err)
	}
	var grants permissions.Grants
	err = s.cache.FetchJSON(ctx, key, &grants, func(ctx context.Context) (interface{}, error) {
		return s.api.FetchActorGrants(ctx, actorID)
	})
	if err != nil {
		if errors.Is(err, upstream.ErrCatalogUnavailable) {
			return permissions.Grants{}, err
		}
		return permissions.Grants{}, fmt.Errorf("%w: %v", upstream.ErrCatalogUnavailable, err)
	}
	return grants, nil
}

func matchesSearch(p permissions.Permission, needle string) bool {
	if strings.Contains(strings.ToLower(p.Code), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(p.DisplayName), needle)
}

func displayName(p permissions.Permission) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Code
}

func toSet(codes []string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, code := range codes {
		set[code] = true
	}
	return set
}
