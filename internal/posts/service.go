package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/aviz85/socisphere/internal/notifications"
	"github.com/aviz85/socisphere/internal/users"
	"github.com/aviz85/socisphere/pkg/db/models"
	"github.com/aviz85/socisphere/pkg/enums"
	pkgerrors "github.com/aviz85/socisphere/pkg/errors"
	"github.com/aviz85/socisphere/pkg/pagination"
	"github.com/aviz85/socisphere/pkg/types"
)

// Service defines post, comment, and reaction operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Post, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Post, *pagination.Cursor, error)
	Delete(ctx context.Context, authorID, id uuid.UUID) error

	// React toggles or switches the caller's reaction: reacting with the
	// current kind removes it, a different kind replaces it. Returns nil
	// when the reaction was removed.
	React(ctx context.Context, userID uuid.UUID, ref types.ContentRef, kind enums.ReactionType) (*models.Reaction, error)

	Comment(ctx context.Context, params CommentParams) (*models.Comment, error)
	ListComments(ctx context.Context, ref types.ContentRef) ([]models.Comment, error)
}

// CreateParams carries a new post.
type CreateParams struct {
	AuthorID   uuid.UUID
	Title      string
	Body       string
	Visibility enums.PostVisibility
	Tags       []string
}

// CommentParams carries a new comment or reply.
type CommentParams struct {
	AuthorID uuid.UUID
	Ref      types.ContentRef
	ParentID *uuid.UUID
	Body     string
}

type service struct {
	repo     Repository
	users    users.Repository
	emitter  notifications.Emitter
	notified map[enums.ReactionType]bool
}

// NewService wires the posts dependencies. notifyingReactions lists the
// reaction kinds that produce a notification; unknown names are ignored.
func NewService(repo Repository, userRepo users.Repository, emitter notifications.Emitter, notifyingReactions []string) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "posts repository required")
	}
	if userRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification emitter required")
	}

	notified := make(map[enums.ReactionType]bool, len(notifyingReactions))
	for _, raw := range notifyingReactions {
		kind, err := enums.ParseReactionType(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		notified[kind] = true
	}
	return &service{repo: repo, users: userRepo, emitter: emitter, notified: notified}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Post, error) {
	if params.AuthorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author id required")
	}
	if strings.TrimSpace(params.Body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "body required")
	}
	visibility := params.Visibility
	if visibility == "" {
		visibility = enums.PostVisibilityPublic
	}
	if !visibility.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid visibility")
	}

	author, err := s.users.FindByID(ctx, params.AuthorID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "author not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve author")
	}

	post := models.Post{
		AuthorID:   params.AuthorID,
		Title:      strings.TrimSpace(params.Title),
		Body:       params.Body,
		Visibility: visibility,
		Tags:       pq.StringArray(params.Tags),
	}
	if err := s.repo.CreatePost(ctx, &post); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create post")
	}

	s.emitMentions(ctx, author, &post)
	return &post, nil
}

// emitMentions scans the body once at creation; unresolvable tokens are
// ignored and the author never notifies themselves.
func (s *service) emitMentions(ctx context.Context, author *models.User, post *models.Post) {
	usernames := notifications.ExtractMentions(post.Body)
	if len(usernames) == 0 {
		return
	}
	mentioned, err := s.users.FindByUsernames(ctx, usernames)
	if err != nil {
		return
	}
	for _, user := range mentioned {
		if user.ID == post.AuthorID {
			continue
		}
		s.emitter.Emit(ctx, notifications.Event{
			RecipientID: user.ID,
			ActorID:     post.AuthorID,
			Kind:        enums.NotificationKindMention,
			Title:       "New Mention",
			Message:     fmt.Sprintf("%s mentioned you in a post", author.Username),
			Link:        fmt.Sprintf("/posts/%s", post.ID),
		})
	}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.repo.FindPost(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find post")
	}
	return post, nil
}

func (s *service) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Post, *pagination.Cursor, error) {
	if authorID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "author id required")
	}
	rows, next, err := s.repo.ListByAuthor(ctx, listPostsParams{AuthorID: authorID, Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list posts")
	}
	return rows, next, nil
}

func (s *service) Delete(ctx context.Context, authorID, id uuid.UUID) error {
	if authorID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "author and post ids required")
	}
	deleted, err := s.repo.DeletePost(ctx, authorID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete post")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	return nil
}

func (s *service) React(ctx context.Context, userID uuid.UUID, ref types.ContentRef, kind enums.ReactionType) (*models.Reaction, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := ref.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid content reference")
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid reaction type")
	}

	ownerID, err := s.repo.ContentAuthor(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "content not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve content")
	}

	existing, err := s.repo.FindReaction(ctx, userID, ref)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find reaction")
	}

	if existing != nil {
		if existing.Type == kind {
			if err := s.repo.DeleteReaction(ctx, existing.ID); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove reaction")
			}
			return nil, nil
		}
		if err := s.repo.UpdateReactionType(ctx, existing.ID, kind); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "switch reaction")
		}
		existing.Type = kind
		return existing, nil
	}

	reaction := models.Reaction{
		UserID:      userID,
		ContentKind: ref.Kind,
		ContentID:   ref.ID,
		Type:        kind,
	}
	if err := s.repo.CreateReaction(ctx, &reaction); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reaction")
	}

	if s.notified[kind] && ownerID != userID {
		actor, err := s.users.FindByID(ctx, userID)
		if err == nil {
			s.emitter.Emit(ctx, notifications.Event{
				RecipientID: ownerID,
				ActorID:     userID,
				Kind:        enums.NotificationKindLike,
				Title:       "New Reaction",
				Message:     fmt.Sprintf("%s reacted to your post", actor.Username),
				Link:        contentLink(ref),
			})
		}
	}
	return &reaction, nil
}

func (s *service) Comment(ctx context.Context, params CommentParams) (*models.Comment, error) {
	if params.AuthorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author id required")
	}
	if err := params.Ref.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid content reference")
	}
	if strings.TrimSpace(params.Body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "body required")
	}

	ownerID, err := s.repo.ContentAuthor(ctx, params.Ref)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "content not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve content")
	}

	if params.ParentID != nil {
		parent, err := s.repo.FindComment(ctx, *params.ParentID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "parent comment not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find parent comment")
		}
		if parent.ContentRef() != params.Ref {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent comment belongs to different content")
		}
	}

	comment := models.Comment{
		AuthorID:    params.AuthorID,
		ContentKind: params.Ref.Kind,
		ContentID:   params.Ref.ID,
		ParentID:    params.ParentID,
		Body:        params.Body,
	}
	if err := s.repo.CreateComment(ctx, &comment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create comment")
	}

	if ownerID != params.AuthorID {
		actor, err := s.users.FindByID(ctx, params.AuthorID)
		if err == nil {
			s.emitter.Emit(ctx, notifications.Event{
				RecipientID: ownerID,
				ActorID:     params.AuthorID,
				Kind:        enums.NotificationKindComment,
				Title:       "New Comment",
				Message:     fmt.Sprintf("%s commented on your post", actor.Username),
				Link:        contentLink(params.Ref),
			})
		}
	}
	return &comment, nil
}

func (s *service) ListComments(ctx context.Context, ref types.ContentRef) ([]models.Comment, error) {
	if err := ref.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid content reference")
	}
	comments, err := s.repo.ListComments(ctx, ref)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}
	return comments, nil
}

func contentLink(ref types.ContentRef) string {
	if ref.Kind == types.ContentKindCommunityPost {
		return fmt.Sprintf("/community-posts/%s", ref.ID)
	}
	return fmt.Sprintf("/posts/%s", ref.ID)
}
