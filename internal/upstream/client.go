package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/manzil-travel/manzil-console/internal/permissions"
)

// CatalogEntry is one permission as the upstream API reports it.
type CatalogEntry struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Resource    string `json:"resource,omitempty"`
}

// Group is a role/group snapshot. Permissions is authoritative as of the
// fetch and carries no version stamp; concurrent remote edits are not
// detectable.
type Group struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// allSentinel marks a super-actor in the grants response.
const allSentinel = "all"

// Client wraps interactions with the agency API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient constructs a new client. The token is forwarded as a bearer
// credential on every request.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchCatalog returns the full permission catalog.
func (c *Client) FetchCatalog(ctx context.Context) ([]CatalogEntry, error) {
	data, err := c.get(ctx, "/api/permissions")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	entries, err := decodeList[CatalogEntry](data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return entries, nil
}

// FetchActorGrants returns the permission codes the actor itself holds.
// The "all" sentinel collapses into Grants.All.
func (c *Client) FetchActorGrants(ctx context.Context, actorID int64) (permissions.Grants, error) {
	data, err := c.get(ctx, fmt.Sprintf("/api/users/%d/permissions", actorID))
	if err != nil {
		return permissions.Grants{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	codes, err := decodeList[string](data)
	if err != nil {
		return permissions.Grants{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	for _, code := range codes {
		if code == allSentinel {
			return permissions.Grants{All: true}, nil
		}
	}
	return permissions.Grants{Codes: codes}, nil
}

// ListGroups returns the groups available for editing.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	data, err := c.get(ctx, "/api/groups")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGroupFetch, err)
	}
	groups, err := decodeList[Group](data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGroupFetch, err)
	}
	return groups, nil
}

// FetchGroup returns the current permission snapshot for one group.
func (c *Client) FetchGroup(ctx context.Context, groupID int64) (Group, error) {
	data, err := c.get(ctx, fmt.Sprintf("/api/groups/%d", groupID))
	if err != nil {
		return Group{}, fmt.Errorf("%w: %v", ErrGroupFetch, err)
	}
	var group Group
	if err := json.Unmarshal(data, &group); err != nil {
		return Group{}, fmt.Errorf("%w: decode group: %v", ErrGroupFetch, err)
	}
	return group, nil
}

// PersistGroup replaces the group's full permission set. Never a delta.
func (c *Client) PersistGroup(ctx context.Context, groupID int64, perms []string) error {
	if perms == nil {
		perms = []string{}
	}
	payload, err := json.Marshal(map[string][]string{"permissions": perms})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	req, err := c.newRequest(ctx, http.MethodPut, fmt.Sprintf("/api/groups/%d/permissions", groupID), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %s", ErrPersist, errorDetail(resp))
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s", errorDetail(resp))
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// errorDetail extracts the server's error message when the response body
// carries one, falling back to the status text.
func errorDetail(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(body) > 0 {
		var payload struct {
			Detail  string `json:"detail"`
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil {
			switch {
			case payload.Detail != "":
				return fmt.Sprintf("status %d: %s", resp.StatusCode, payload.Detail)
			case payload.Message != "":
				return fmt.Sprintf("status %d: %s", resp.StatusCode, payload.Message)
			case payload.Error != "":
				return fmt.Sprintf("status %d: %s", resp.StatusCode, payload.Error)
			}
		}
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
