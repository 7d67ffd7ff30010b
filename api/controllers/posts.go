package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aviz85/socisphere/api/responses"
	"github.com/aviz85/socisphere/api/validators"
	"github.com/aviz85/socisphere/internal/posts"
	"github.com/aviz85/socisphere/pkg/enums"
	pkgerrors "github.com/aviz85/socisphere/pkg/errors"
	"github.com/aviz85/socisphere/pkg/logger"
	"github.com/aviz85/socisphere/pkg/pagination"
	"github.com/aviz85/socisphere/pkg/types"
)

type createPostRequest struct {
	Title      string   `json:"title" validate:"max=300"`
	Body       string   `json:"body" validate:"required,max=10000"`
	Visibility string   `json:"visibility" validate:"omitempty,oneof=public followers private"`
	Tags       []string `json:"tags" validate:"max=10,dive,max=50"`
}

type reactRequest struct {
	Kind string `json:"kind" validate:"required"`
}

type createCommentRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
	Body     string     `json:"body" validate:"required,max=4000"`
}

// contentRefFromURL builds the polymorphic target out of the route params.
func contentRefFromURL(r *http.Request) (types.ContentRef, error) {
	kind, err := types.ParseContentKind(chi.URLParam(r, "contentKind"))
	if err != nil {
		return types.ContentRef{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid content kind")
	}
	id, err := validators.ParseURLUUID(chi.URLParam(r, "contentId"), "content id")
	if err != nil {
		return types.ContentRef{}, err
	}
	return types.ContentRef{Kind: kind, ID: id}, nil
}

// CreatePost publishes a personal post for the caller.
func CreatePost(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "posts service unavailable"))
			return
		}

		authorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createPostRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		visibility := enums.PostVisibilityPublic
		if body.Visibility != "" {
			visibility = enums.PostVisibility(body.Visibility)
		}

		post, err := svc.Create(r.Context(), posts.CreateParams{
			AuthorID:   authorID,
			Title:      body.Title,
			Body:       body.Body,
			Visibility: visibility,
			Tags:       body.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, post)
	}
}

// GetPost returns a single post.
func GetPost(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "posts service unavailable"))
			return
		}

		postID, err := validators.ParseURLUUID(chi.URLParam(r, "postId"), "post id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.Get(r.Context(), postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

// ListPostsByAuthor returns an author's posts, newest first.
func ListPostsByAuthor(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "posts service unavailable"))
			return
		}

		authorID, err := validators.ParseURLUUID(chi.URLParam(r, "userId"), "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cursor, err := validators.ParseQueryCursor(r, "cursor")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, next, err := svc.ListByAuthor(r.Context(), authorID, limit, cursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := map[string]any{"items": items, "cursor": ""}
		if next != nil {
			resp["cursor"] = pagination.EncodeCursor(*next)
		}
		responses.WriteSuccess(w, resp)
	}
}

// DeletePost removes one of the caller's posts.
func DeletePost(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "posts service unavailable"))
			return
		}

		authorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		postID, err := validators.ParseURLUUID(chi.URLParam(r, "postId"), "post id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), authorID, postID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ReactToContent toggles or switches the caller's reaction on a post or
// community post. A nil payload in the response means the reaction was
// removed.
func ReactToContent(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "posts service unavailable"))
			return
		}

		userID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ref, err := contentRefFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reactRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseReactionType(body.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reaction kind"))
			return
		}

		reaction, err := svc.React(r.Context(), userID, ref, kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if reaction == nil {
			responses.WriteSuccess(w, map[string]string{"status": "removed"})
			return
		}
		responses.WriteSuccess(w, reaction)
	}
}

// CreateComment adds a comment or reply to a post or community post.
func CreateComment(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "posts service unavailable"))
			return
		}

		authorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ref, err := contentRefFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createCommentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		comment, err := svc.Comment(r.Context(), posts.CommentParams{
			AuthorID: authorID,
			Ref:      ref,
			ParentID: body.ParentID,
			Body:     body.Body,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, comment)
	}
}

// ListComments returns the comments on a post or community post.
func ListComments(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "posts service unavailable"))
			return
		}

		ref, err := contentRefFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		comments, err := svc.ListComments(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, comments)
	}
}
