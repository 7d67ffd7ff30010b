package connections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aviz85/socisphere/internal/notifications"
	"github.com/aviz85/socisphere/internal/users"
	"github.com/aviz85/socisphere/pkg/db"
	"github.com/aviz85/socisphere/pkg/db/models"
	"github.com/aviz85/socisphere/pkg/enums"
	pkgerrors "github.com/aviz85/socisphere/pkg/errors"
	"github.com/aviz85/socisphere/pkg/pagination"
)

// Service defines follow-graph operations. Follow emits a notification to the
// followed user; unfollow is silent.
type Service interface {
	Follow(ctx context.Context, followerID, followedID uuid.UUID) (*models.Connection, error)
	Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error
	ListFollowers(ctx context.Context, params ListParams) (*ListResult, error)
	ListFollowing(ctx context.Context, params ListParams) (*ListResult, error)
	RecordInteraction(ctx context.Context, followerID, followedID uuid.UUID) (*models.Connection, error)
}

type service struct {
	repo    Repository
	users   users.Repository
	emitter notifications.Emitter
}

// ListParams configures pagination for follower/following listings.
type ListParams struct {
	UserID uuid.UUID
	Limit  int
	Cursor string
}

// ListResult wraps returned edges and the cursor for the next page.
type ListResult struct {
	Items  []models.Connection `json:"items"`
	Cursor string              `json:"cursor"`
}

// NewService wires the connections dependencies.
func NewService(repo Repository, userRepo users.Repository, emitter notifications.Emitter) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "connections repository required")
	}
	if userRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification emitter required")
	}
	return &service{repo: repo, users: userRepo, emitter: emitter}, nil
}

func (s *service) Follow(ctx context.Context, followerID, followedID uuid.UUID) (*models.Connection, error) {
	if followerID == uuid.Nil || followedID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "follower and followed ids required")
	}
	if followerID == followedID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot follow yourself")
	}

	follower, err := s.users.FindByID(ctx, followerID)
	if err != nil {
		return nil, wrapUserLookup(err, "follower")
	}
	if _, err := s.users.FindByID(ctx, followedID); err != nil {
		return nil, wrapUserLookup(err, "followed user")
	}

	connection := models.Connection{
		FollowerID: followerID,
		FollowedID: followedID,
		Strength:   enums.ConnectionStrengthWeak,
	}
	if err := s.repo.Create(ctx, &connection); err != nil {
		if db.IsUniqueViolation(err, "idx_connections_pair") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "already following this user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create follow edge")
	}

	s.emitter.Emit(ctx, notifications.Event{
		RecipientID: followedID,
		ActorID:     followerID,
		Kind:        enums.NotificationKindFollow,
		Title:       "New Follower",
		Message:     fmt.Sprintf("%s started following you", follower.Username),
		Link:        fmt.Sprintf("/users/%s", follower.Username),
	})

	return &connection, nil
}

func (s *service) Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	if followerID == uuid.Nil || followedID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "follower and followed ids required")
	}

	found, err := s.repo.Delete(ctx, followerID, followedID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete follow edge")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "not following this user")
	}
	return nil
}

func (s *service) ListFollowers(ctx context.Context, params ListParams) (*ListResult, error) {
	return s.list(ctx, params, s.repo.ListFollowers)
}

func (s *service) ListFollowing(ctx context.Context, params ListParams) (*ListResult, error) {
	return s.list(ctx, params, s.repo.ListFollowing)
}

func (s *service) list(
	ctx context.Context,
	params ListParams,
	query func(context.Context, listConnectionsParams) ([]models.Connection, *pagination.Cursor, error),
) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	repoParams := listConnectionsParams{UserID: params.UserID, Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		repoParams.Cursor = cursor
	}

	rows, next, err := query(ctx, repoParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list connections")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// RecordInteraction bumps the interaction counter on an existing edge and
// rederives its strength classification.
func (s *service) RecordInteraction(ctx context.Context, followerID, followedID uuid.UUID) (*models.Connection, error) {
	if followerID == uuid.Nil || followedID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "follower and followed ids required")
	}

	connection, err := s.repo.Find(ctx, followerID, followedID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "not following this user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find follow edge")
	}

	now := time.Now().UTC()
	connection.InteractionCount++
	connection.Strength = enums.StrengthForInteractions(connection.InteractionCount)
	connection.LastInteractionAt = &now

	if err := s.repo.UpdateInteraction(ctx, connection); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update interaction")
	}
	return connection, nil
}

func wrapUserLookup(err error, label string) error {
	if errors.Is(err, users.ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, label+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up "+label)
}
