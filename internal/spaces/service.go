package spaces

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aviz85/socisphere/internal/notifications"
	"github.com/aviz85/socisphere/internal/users"
	"github.com/aviz85/socisphere/pkg/db"
	"github.com/aviz85/socisphere/pkg/db/models"
	"github.com/aviz85/socisphere/pkg/enums"
	pkgerrors "github.com/aviz85/socisphere/pkg/errors"
)

// TxRunner abstracts the transactional boundary for space creation.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the collaborative space operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Space, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Space, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Space, error)
	ListMembers(ctx context.Context, spaceID, userID uuid.UUID) ([]models.SpaceMembership, error)
	AddMember(ctx context.Context, spaceID, actorID, userID uuid.UUID, role enums.SpaceRole) (*models.SpaceMembership, error)
	RemoveMember(ctx context.Context, spaceID, actorID, userID uuid.UUID) error
	Leave(ctx context.Context, spaceID, userID uuid.UUID) error
}

// CreateParams configures a new space. The creator becomes its admin member.
type CreateParams struct {
	CreatorID   uuid.UUID
	Name        string
	Description string
	IsPublic    bool
}

type service struct {
	repo    Repository
	users   users.Repository
	emitter notifications.Emitter
	tx      TxRunner
}

// NewService wires the spaces dependencies.
func NewService(repo Repository, userRepo users.Repository, emitter notifications.Emitter, tx TxRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "spaces repository required")
	}
	if userRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification emitter required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: repo, users: userRepo, emitter: emitter, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Space, error) {
	if params.CreatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if _, err := s.users.FindByID(ctx, params.CreatorID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "creator not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve creator")
	}

	creatorID := params.CreatorID
	space := models.Space{
		Name:        strings.TrimSpace(params.Name),
		Description: params.Description,
		CreatorID:   &creatorID,
		IsPublic:    params.IsPublic,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateSpace(ctx, &space); err != nil {
			return err
		}
		membership := models.SpaceMembership{
			SpaceID: space.ID,
			UserID:  params.CreatorID,
			Role:    enums.SpaceRoleAdmin,
		}
		return repo.CreateMembership(ctx, &membership)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create space")
	}
	return &space, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Space, error) {
	space, err := s.repo.FindSpace(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "space not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find space")
	}
	return space, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Space, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	spaces, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list spaces")
	}
	return spaces, nil
}

func (s *service) ListMembers(ctx context.Context, spaceID, userID uuid.UUID) ([]models.SpaceMembership, error) {
	if _, err := s.requireMember(ctx, spaceID, userID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, spaceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	return members, nil
}

func (s *service) AddMember(ctx context.Context, spaceID, actorID, userID uuid.UUID, role enums.SpaceRole) (*models.SpaceMembership, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if role == "" {
		role = enums.SpaceRoleContributor
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	space, err := s.requireAdmin(ctx, spaceID, actorID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve actor")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve user")
	}

	membership := models.SpaceMembership{
		SpaceID: spaceID,
		UserID:  userID,
		Role:    role,
	}
	if err := s.repo.CreateMembership(ctx, &membership); err != nil {
		if db.IsUniqueViolation(err, "idx_space_memberships_pair") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "already a member")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add member")
	}

	s.emitter.Emit(ctx, notifications.Event{
		RecipientID: userID,
		ActorID:     actorID,
		Kind:        enums.NotificationKindInvitation,
		Title:       "Space Invitation",
		Message:     fmt.Sprintf("%s added you to %s", actor.Username, space.Name),
		Link:        fmt.Sprintf("/spaces/%s", space.ID),
	})
	return &membership, nil
}

func (s *service) RemoveMember(ctx context.Context, spaceID, actorID, userID uuid.UUID) error {
	space, err := s.requireAdmin(ctx, spaceID, actorID)
	if err != nil {
		return err
	}
	if space.CreatorID != nil && *space.CreatorID == userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "the creator cannot be removed")
	}

	removed, err := s.repo.DeleteMembership(ctx, spaceID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove member")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	return nil
}

func (s *service) Leave(ctx context.Context, spaceID, userID uuid.UUID) error {
	space, err := s.Get(ctx, spaceID)
	if err != nil {
		return err
	}
	if space.CreatorID != nil && *space.CreatorID == userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "the creator cannot leave")
	}

	removed, err := s.repo.DeleteMembership(ctx, spaceID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "leave space")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	return nil
}

func (s *service) requireMember(ctx context.Context, spaceID, userID uuid.UUID) (*models.SpaceMembership, error) {
	if spaceID == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "space and user ids required")
	}
	membership, err := s.repo.FindMembership(ctx, spaceID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "membership required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	return membership, nil
}

func (s *service) requireAdmin(ctx context.Context, spaceID, userID uuid.UUID) (*models.Space, error) {
	membership, err := s.requireMember(ctx, spaceID, userID)
	if err != nil {
		return nil, err
	}
	if membership.Role != enums.SpaceRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	return s.Get(ctx, spaceID)
}
