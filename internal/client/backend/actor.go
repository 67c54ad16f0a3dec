package backend

import (
	"context"

	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/dmitrijs2005/maintkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
)

// PersistedActor returns an Actor reading the email of the persisted user.
func PersistedActor(repo metadata.Repository) func(ctx context.Context) string {
	return func(ctx context.Context) string {
		var u models.User
		ok, err := metadata.GetJSON(ctx, repo, common.MetadataKeyCurrentUser, &u)
		if err != nil || !ok || u.Email == "" {
			return common.UnknownActor
		}
		return u.Email
	}
}
