package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
)

func newCommunityRecord(id int64, n communityModel.NewCommunity, now time.Time) (communityModel.Community, error) {
	name := strings.TrimSpace(n.Name)
	if name == "" {
		return communityModel.Community{}, fmt.Errorf("%w: community name is required", commonModels.ErrValidation)
	}
	return communityModel.Community{
		ID:          id,
		Name:        name,
		Slug:        communityModel.Slugify(name),
		City:        strings.TrimSpace(n.City),
		PortalURL:   strings.TrimSpace(n.PortalURL),
		Description: strings.TrimSpace(n.Description),
		IsActive:    true,
		CreatedAt:   now.UTC(),
	}, nil
}

func duplicateName(name string) error {
	return fmt.Errorf("%w: a community named %q already exists", commonModels.ErrValidation, name)
}

func missingCommunity(id int64) error {
	return fmt.Errorf("%w: community %d", commonModels.ErrNotFound, id)
}

func sortByName(list []communityModel.Community) {
	sort.Slice(list, func(i, j int) bool {
		a, b := strings.ToLower(list[i].Name), strings.ToLower(list[j].Name)
		if a != b {
			return a < b
		}
		return list[i].ID < list[j].ID
	})
}
