package communities

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aviz85/socisphere/internal/notifications"
	"github.com/aviz85/socisphere/internal/users"
	"github.com/aviz85/socisphere/pkg/db"
	"github.com/aviz85/socisphere/pkg/db/models"
	"github.com/aviz85/socisphere/pkg/enums"
	pkgerrors "github.com/aviz85/socisphere/pkg/errors"
)

// TxRunner abstracts the transactional boundary so the membership state
// machine and the counter recomputes commit together.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the community membership, moderation, invitation, and post
// moderation state machines.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Community, error)
	Join(ctx context.Context, communityID, userID uuid.UUID) (*models.CommunityMembership, error)
	ApproveMembership(ctx context.Context, communityID, moderatorID, userID uuid.UUID) error
	Ban(ctx context.Context, communityID, moderatorID, userID uuid.UUID) error
	Leave(ctx context.Context, communityID, userID uuid.UUID) error

	AddModerator(ctx context.Context, communityID, actorID, userID uuid.UUID) error
	RemoveModerator(ctx context.Context, communityID, actorID, userID uuid.UUID) error

	Invite(ctx context.Context, params InviteParams) (*models.CommunityInvitation, error)
	AcceptInvitation(ctx context.Context, invitationID, inviteeID uuid.UUID) error
	DeclineInvitation(ctx context.Context, invitationID, inviteeID uuid.UUID) error

	CreatePost(ctx context.Context, params CreatePostParams) (*models.CommunityPost, error)
	ApprovePost(ctx context.Context, postID, moderatorID uuid.UUID) error
	RejectPost(ctx context.Context, postID, moderatorID uuid.UUID, reason string) error
}

type service struct {
	repo    Repository
	users   users.Repository
	emitter notifications.Emitter
	tx      TxRunner
}

// CreateParams configures a new community. The creator joins as a member and
// becomes its first moderator.
type CreateParams struct {
	CreatorID            uuid.UUID
	Name                 string
	Slug                 string
	Description          string
	Visibility           enums.CommunityVisibility
	RequiresPostApproval bool
}

// InviteParams carries a new community invitation.
type InviteParams struct {
	CommunityID uuid.UUID
	InviterID   uuid.UUID
	InviteeID   uuid.UUID
	Message     string
}

// CreatePostParams carries a new community post.
type CreatePostParams struct {
	CommunityID uuid.UUID
	AuthorID    uuid.UUID
	Title       string
	Body        string
	URL         string
}

// NewService wires the communities dependencies.
func NewService(repo Repository, userRepo users.Repository, emitter notifications.Emitter, tx TxRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "communities repository required")
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

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Community, error) {
	if params.CreatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}
	if strings.TrimSpace(params.Name) == "" || strings.TrimSpace(params.Slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and slug required")
	}
	visibility := params.Visibility
	if visibility == "" {
		visibility = enums.CommunityVisibilityPublic
	}
	if !visibility.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid visibility")
	}

	creatorID := params.CreatorID
	community := models.Community{
		Name:                 strings.TrimSpace(params.Name),
		Slug:                 strings.TrimSpace(params.Slug),
		Description:          params.Description,
		Visibility:           visibility,
		RequiresPostApproval: params.RequiresPostApproval,
		CreatorID:            &creatorID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateCommunity(ctx, &community); err != nil {
			return err
		}
		membership := models.CommunityMembership{
			CommunityID: community.ID,
			UserID:      params.CreatorID,
			Status:      enums.MembershipStatusMember,
		}
		if err := repo.CreateMembership(ctx, &membership); err != nil {
			return err
		}
		moderator := models.CommunityModerator{
			CommunityID: community.ID,
			UserID:      params.CreatorID,
		}
		if err := repo.AddModerator(ctx, &moderator); err != nil {
			return err
		}
		return repo.RecomputeMembersCount(ctx, community.ID)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_communities_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create community")
	}
	return &community, nil
}

// Join runs the visibility state machine: public joins directly, restricted
// parks the user in pending and tells the moderators, private always refuses.
func (s *service) Join(ctx context.Context, communityID, userID uuid.UUID) (*models.CommunityMembership, error) {
	if communityID == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "community and user ids required")
	}

	community, err := s.findCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve user")
	}

	if existing, err := s.repo.FindMembership(ctx, communityID, userID); err == nil {
		if existing.Status == enums.MembershipStatusBanned {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "banned from this community")
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "membership already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}

	var status enums.MembershipStatus
	switch community.Visibility {
	case enums.CommunityVisibilityPublic:
		status = enums.MembershipStatusMember
	case enums.CommunityVisibilityRestricted:
		status = enums.MembershipStatusPending
	case enums.CommunityVisibilityPrivate:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "community is invite only")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "unknown community visibility")
	}

	membership := models.CommunityMembership{
		CommunityID: communityID,
		UserID:      userID,
		Status:      status,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateMembership(ctx, &membership); err != nil {
			return err
		}
		return repo.RecomputeMembersCount(ctx, communityID)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_community_memberships_pair") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "membership already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
	}

	if status == enums.MembershipStatusPending {
		s.notifyModerators(ctx, community, userID, notifications.Event{
			ActorID: userID,
			Kind:    enums.NotificationKindSystem,
			Title:   "New Join Request",
			Message: fmt.Sprintf("%s requested to join %s", user.Username, community.Name),
			Link:    fmt.Sprintf("/communities/%s/requests", community.Slug),
		})
	}
	return &membership, nil
}

func (s *service) ApproveMembership(ctx context.Context, communityID, moderatorID, userID uuid.UUID) error {
	if err := s.requireModerator(ctx, communityID, moderatorID); err != nil {
		return err
	}

	membership, err := s.repo.FindMembership(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find membership")
	}
	if membership.Status != enums.MembershipStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "membership is not pending")
	}

	community, err := s.findCommunity(ctx, communityID)
	if err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateMembershipStatus(ctx, membership.ID, enums.MembershipStatusMember); err != nil {
			return err
		}
		return repo.RecomputeMembersCount(ctx, communityID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve membership")
	}

	s.emitter.Emit(ctx, notifications.Event{
		RecipientID: userID,
		ActorID:     moderatorID,
		Kind:        enums.NotificationKindSystem,
		Title:       fmt.Sprintf("Welcome to %s", community.Name),
		Message:     fmt.Sprintf("Your request to join %s was approved", community.Name),
		Link:        fmt.Sprintf("/communities/%s", community.Slug),
	})
	return nil
}

func (s *service) Ban(ctx context.Context, communityID, moderatorID, userID uuid.UUID) error {
	if err := s.requireModerator(ctx, communityID, moderatorID); err != nil {
		return err
	}

	membership, err := s.repo.FindMembership(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find membership")
	}
	if membership.Status == enums.MembershipStatusBanned {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "already banned")
	}

	community, err := s.findCommunity(ctx, communityID)
	if err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateMembershipStatus(ctx, membership.ID, enums.MembershipStatusBanned); err != nil {
			return err
		}
		return repo.RecomputeMembersCount(ctx, communityID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ban member")
	}

	s.emitter.Emit(ctx, notifications.Event{
		RecipientID: userID,
		ActorID:     moderatorID,
		Kind:        enums.NotificationKindSystem,
		Title:       fmt.Sprintf("Banned from %s", community.Name),
		Message:     fmt.Sprintf("You were banned from %s", community.Name),
	})
	return nil
}

func (s *service) Leave(ctx context.Context, communityID, userID uuid.UUID) error {
	if communityID == uuid.Nil || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "community and user ids required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		removed, err := repo.DeleteMembership(ctx, communityID, userID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrNotFound
		}
		return repo.RecomputeMembersCount(ctx, communityID)
	})
	if errors.Is(err, ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "leave community")
	}
	return nil
}

func (s *service) AddModerator(ctx context.Context, communityID, actorID, userID uuid.UUID) error {
	if err := s.requireModerator(ctx, communityID, actorID); err != nil {
		return err
	}
	community, err := s.findCommunity(ctx, communityID)
	if err != nil {
		return err
	}

	moderator := models.CommunityModerator{CommunityID: communityID, UserID: userID}
	if err := s.repo.AddModerator(ctx, &moderator); err != nil {
		if db.IsUniqueViolation(err, "idx_community_moderators_pair") {
			return pkgerrors.New(pkgerrors.CodeConflict, "already a moderator")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add moderator")
	}

	s.emitter.Emit(ctx, notifications.Event{
		RecipientID: userID,
		ActorID:     actorID,
		Kind:        enums.NotificationKindSystem,
		Title:       fmt.Sprintf("New Role in %s", community.Name),
		Message:     fmt.Sprintf("You are now a moderator of %s", community.Name),
		Link:        fmt.Sprintf("/communities/%s", community.Slug),
	})
	return nil
}

func (s *service) RemoveModerator(ctx context.Context, communityID, actorID, userID uuid.UUID) error {
	if err := s.requireModerator(ctx, communityID, actorID); err != nil {
		return err
	}
	community, err := s.findCommunity(ctx, communityID)
	if err != nil {
		return err
	}

	removed, err := s.repo.RemoveModerator(ctx, communityID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove moderator")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "moderator not found")
	}

	s.emitter.Emit(ctx, notifications.Event{
		RecipientID: userID,
		ActorID:     actorID,
		Kind:        enums.NotificationKindSystem,
		Title:       fmt.Sprintf("Role Removed in %s", community.Name),
		Message:     fmt.Sprintf("You are no longer a moderator of %s", community.Name),
	})
	return nil
}

func (s *service) Invite(ctx context.Context, params InviteParams) (*models.CommunityInvitation, error) {
	if params.CommunityID == uuid.Nil || params.InviterID == uuid.Nil || params.InviteeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "community, inviter, and invitee ids required")
	}
	if params.InviterID == params.InviteeID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot invite yourself")
	}

	community, err := s.findCommunity(ctx, params.CommunityID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, params.CommunityID, params.InviterID); err != nil {
		return nil, err
	}
	inviter, err := s.users.FindByID(ctx, params.InviterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve inviter")
	}
	if _, err := s.users.FindByID(ctx, params.InviteeID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invitee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve invitee")
	}

	invitation := models.CommunityInvitation{
		CommunityID: params.CommunityID,
		InviterID:   params.InviterID,
		InviteeID:   params.InviteeID,
		Status:      enums.InvitationStatusPending,
		Message:     params.Message,
	}
	if err := s.repo.CreateInvitation(ctx, &invitation); err != nil {
		if db.IsUniqueViolation(err, "idx_community_invitations_pending") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pending invitation already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invitation")
	}

	s.emitter.Emit(ctx, notifications.Event{
		RecipientID: params.InviteeID,
		ActorID:     params.InviterID,
		Kind:        enums.NotificationKindInvitation,
		Title:       fmt.Sprintf("Invitation to Join %s", community.Name),
		Message:     fmt.Sprintf("%s invited you to join %s", inviter.Username, community.Name),
		Link:        fmt.Sprintf("/communities/%s", community.Slug),
	})
	return &invitation, nil
}

func (s *service) AcceptInvitation(ctx context.Context, invitationID, inviteeID uuid.UUID) error {
	invitation, community, err := s.pendingInvitationFor(ctx, invitationID, inviteeID)
	if err != nil {
		return err
	}
	invitee, err := s.users.FindByID(ctx, inviteeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve invitee")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ResolveInvitation(ctx, invitation.ID, enums.InvitationStatusAccepted, time.Now().UTC()); err != nil {
			return err
		}
		membership := models.CommunityMembership{
			CommunityID: invitation.CommunityID,
			UserID:      inviteeID,
			Status:      enums.MembershipStatusMember,
		}
		if err := repo.CreateMembership(ctx, &membership); err != nil {
			// Accepting while already a member still resolves the invitation.
			if !db.IsUniqueViolation(err, "idx_community_memberships_pair") {
				return err
			}
		}
		return repo.RecomputeMembersCount(ctx, invitation.CommunityID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept invitation")
	}

	s.emitter.Emit(ctx, notifications.Event{
		RecipientID: invitation.InviterID,
		ActorID:     inviteeID,
		Kind:        enums.NotificationKindSystem,
		Title:       "Invitation Accepted",
		Message:     fmt.Sprintf("%s accepted your invitation to %s", invitee.Username, community.Name),
	})
	return nil
}

func (s *service) DeclineInvitation(ctx context.Context, invitationID, inviteeID uuid.UUID) error {
	invitation, _, err := s.pendingInvitationFor(ctx, invitationID, inviteeID)
	if err != nil {
		return err
	}

	if err := s.repo.ResolveInvitation(ctx, invitation.ID, enums.InvitationStatusDeclined, time.Now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decline invitation")
	}
	return nil
}

func (s *service) CreatePost(ctx context.Context, params CreatePostParams) (*models.CommunityPost, error) {
	if params.CommunityID == uuid.Nil || params.AuthorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "community and author ids required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}

	community, err := s.findCommunity(ctx, params.CommunityID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, params.CommunityID, params.AuthorID); err != nil {
		return nil, err
	}

	status := enums.CommunityPostStatusApproved
	if community.RequiresPostApproval {
		status = enums.CommunityPostStatusPending
	}

	post := models.CommunityPost{
		CommunityID: params.CommunityID,
		AuthorID:    params.AuthorID,
		Title:       strings.TrimSpace(params.Title),
		Body:        params.Body,
		Status:      status,
	}
	if url := strings.TrimSpace(params.URL); url != "" {
		post.URL = &url
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreatePost(ctx, &post); err != nil {
			return err
		}
		if status == enums.CommunityPostStatusApproved {
			return repo.RecomputePostsCount(ctx, params.CommunityID)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create community post")
	}

	if status == enums.CommunityPostStatusPending {
		author, err := s.users.FindByID(ctx, params.AuthorID)
		if err == nil {
			s.notifyModerators(ctx, community, params.AuthorID, notifications.Event{
				ActorID: params.AuthorID,
				Kind:    enums.NotificationKindSystem,
				Title:   fmt.Sprintf("Post Awaiting Approval in %s", community.Name),
				Message: fmt.Sprintf("%s submitted %q for review", author.Username, post.Title),
				Link:    fmt.Sprintf("/communities/%s/moderation", community.Slug),
			})
		}
	}
	return &post, nil
}

func (s *service) ApprovePost(ctx context.Context, postID, moderatorID uuid.UUID) error {
	post, community, err := s.pendingPostFor(ctx, postID, moderatorID)
	if err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdatePostStatus(ctx, post.ID, enums.CommunityPostStatusApproved); err != nil {
			return err
		}
		return repo.RecomputePostsCount(ctx, post.CommunityID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve post")
	}

	s.emitter.Emit(ctx, notifications.Event{
		RecipientID: post.AuthorID,
		ActorID:     moderatorID,
		Kind:        enums.NotificationKindSystem,
		Title:       fmt.Sprintf("Post Approved in %s", community.Name),
		Message:     fmt.Sprintf("Your post %q was approved", post.Title),
		Link:        fmt.Sprintf("/communities/%s/posts/%s", community.Slug, post.ID),
	})
	return nil
}

func (s *service) RejectPost(ctx context.Context, postID, moderatorID uuid.UUID, reason string) error {
	post, community, err := s.pendingPostFor(ctx, postID, moderatorID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePostStatus(ctx, post.ID, enums.CommunityPostStatusRejected); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject post")
	}

	message := fmt.Sprintf("Your post %q was rejected", post.Title)
	if strings.TrimSpace(reason) != "" {
		message = fmt.Sprintf("%s: %s", message, strings.TrimSpace(reason))
	}
	s.emitter.Emit(ctx, notifications.Event{
		RecipientID: post.AuthorID,
		ActorID:     moderatorID,
		Kind:        enums.NotificationKindSystem,
		Title:       fmt.Sprintf("Post Rejected in %s", community.Name),
		Message:     message,
	})
	return nil
}

func (s *service) findCommunity(ctx context.Context, communityID uuid.UUID) (*models.Community, error) {
	community, err := s.repo.FindCommunity(ctx, communityID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "community not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find community")
	}
	return community, nil
}

func (s *service) requireModerator(ctx context.Context, communityID, userID uuid.UUID) error {
	if communityID == uuid.Nil || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "community and user ids required")
	}
	ok, err := s.repo.IsModerator(ctx, communityID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check moderator")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "moderator access required")
	}
	return nil
}

func (s *service) requireMember(ctx context.Context, communityID, userID uuid.UUID) error {
	membership, err := s.repo.FindMembership(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "membership required")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if membership.Status != enums.MembershipStatusMember {
		return pkgerrors.New(pkgerrors.CodeForbidden, "membership required")
	}
	return nil
}

func (s *service) pendingInvitationFor(ctx context.Context, invitationID, inviteeID uuid.UUID) (*models.CommunityInvitation, *models.Community, error) {
	if invitationID == uuid.Nil || inviteeID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "invitation and invitee ids required")
	}

	invitation, err := s.repo.FindInvitation(ctx, invitationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find invitation")
	}
	if invitation.InviteeID != inviteeID {
		// Another user's invitation is indistinguishable from a missing one.
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
	}
	if invitation.Status != enums.InvitationStatusPending {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invitation already resolved")
	}

	community, err := s.findCommunity(ctx, invitation.CommunityID)
	if err != nil {
		return nil, nil, err
	}
	return invitation, community, nil
}

func (s *service) pendingPostFor(ctx context.Context, postID, moderatorID uuid.UUID) (*models.CommunityPost, *models.Community, error) {
	if postID == uuid.Nil || moderatorID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "post and moderator ids required")
	}

	post, err := s.repo.FindPost(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find post")
	}
	if err := s.requireModerator(ctx, post.CommunityID, moderatorID); err != nil {
		return nil, nil, err
	}
	if post.Status != enums.CommunityPostStatusPending {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "post is not pending review")
	}

	community, err := s.findCommunity(ctx, post.CommunityID)
	if err != nil {
		return nil, nil, err
	}
	return post, community, nil
}

// notifyModerators fans the event out to every moderator except the actor.
// Best effort like any other emission.
func (s *service) notifyModerators(ctx context.Context, community *models.Community, actorID uuid.UUID, event notifications.Event) {
	moderators, err := s.repo.ListModerators(ctx, community.ID)
	if err != nil {
		return
	}
	for _, moderator := range moderators {
		if moderator.UserID == actorID {
			continue
		}
		event.RecipientID = moderator.UserID
		s.emitter.Emit(ctx, event)
	}
}
