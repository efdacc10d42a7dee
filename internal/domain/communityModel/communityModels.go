package communityModel

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Community is a tenant partition of the knowledge base. ID scopes every chunk and
// survives renames, Slug is fixed at creation.
type Community struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	City        string    `json:"city,omitempty"`
	PortalURL   string    `json:"portal_url,omitempty"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewCommunity struct {
	Name        string `json:"name"`
	City        string `json:"city,omitempty"`
	PortalURL   string `json:"portal_url,omitempty"`
	Description string `json:"description,omitempty"`
}

type CommunityStore interface {
	List(ctx context.Context) ([]Community, error)
	Get(ctx context.Context, id int64) (Community, bool, error)
	FindByName(ctx context.Context, name string) (Community, bool, error)
	Create(ctx context.Context, c NewCommunity) (Community, error)
	Rename(ctx context.Context, id int64, name string) (Community, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses every non alphanumeric run into a dash.
func Slugify(name string) string {
	slug := nonAlphaNum.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
