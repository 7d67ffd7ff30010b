package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aviz85/socisphere/api/responses"
	"github.com/aviz85/socisphere/api/validators"
	"github.com/aviz85/socisphere/internal/communities"
	"github.com/aviz85/socisphere/pkg/enums"
	pkgerrors "github.com/aviz85/socisphere/pkg/errors"
	"github.com/aviz85/socisphere/pkg/logger"
)

type createCommunityRequest struct {
	Name                 string `json:"name" validate:"required,min=3,max=100"`
	Slug                 string `json:"slug" validate:"required,min=3,max=60"`
	Description          string `json:"description" validate:"max=1000"`
	Visibility           string `json:"visibility" validate:"omitempty,oneof=public restricted private"`
	RequiresPostApproval bool   `json:"requires_post_approval"`
}

type communityMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

type inviteCommunityRequest struct {
	InviteeID uuid.UUID `json:"invitee_id" validate:"required"`
	Message   string    `json:"message" validate:"max=500"`
}

type createCommunityPostRequest struct {
	Title string `json:"title" validate:"required,max=300"`
	Body  string `json:"body" validate:"max=10000"`
	URL   string `json:"url" validate:"omitempty,url"`
}

type rejectCommunityPostRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// CreateCommunity creates a community with the caller as first moderator.
func CreateCommunity(svc communities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "communities service unavailable"))
			return
		}

		creatorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createCommunityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		visibility := enums.CommunityVisibilityPublic
		if body.Visibility != "" {
			parsed, err := enums.ParseCommunityVisibility(body.Visibility)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid visibility"))
				return
			}
			visibility = parsed
		}

		community, err := svc.Create(r.Context(), communities.CreateParams{
			CreatorID:            creatorID,
			Name:                 body.Name,
			Slug:                 body.Slug,
			Description:          body.Description,
			Visibility:           visibility,
			RequiresPostApproval: body.RequiresPostApproval,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, community)
	}
}

// JoinCommunity joins or requests to join a community.
func JoinCommunity(svc communities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "communities service unavailable"))
			return
		}

		userID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		communityID, err := validators.ParseURLUUID(chi.URLParam(r, "communityId"), "community id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		membership, err := svc.Join(r.Context(), communityID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, membership)
	}
}

// LeaveCommunity removes the caller's membership.
func LeaveCommunity(svc communities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "communities service unavailable"))
			return
		}

		userID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		communityID, err := validators.ParseURLUUID(chi.URLParam(r, "communityId"), "community id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Leave(r.Context(), communityID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "left"})
	}
}

type communityModerationAction func(svc communities.Service, r *http.Request, communityID, actorID, userID uuid.UUID) error

func communityModerationHandler(svc communities.Service, logg *logger.Logger, action communityModerationAction, status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "communities service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		communityID, err := validators.ParseURLUUID(chi.URLParam(r, "communityId"), "community id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body communityMemberRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := action(svc, r, communityID, actorID, body.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": status})
	}
}

// ApproveCommunityMembership promotes a pending member to full member.
func ApproveCommunityMembership(svc communities.Service, logg *logger.Logger) http.HandlerFunc {
	return communityModerationHandler(svc, logg, func(svc communities.Service, r *http.Request, communityID, actorID, userID uuid.UUID) error {
		return svc.ApproveMembership(r.Context(), communityID, actorID, userID)
	}, "approved")
}

// BanCommunityMember bans a member from the community.
func BanCommunityMember(svc communities.Service, logg *logger.Logger) http.HandlerFunc {
	return communityModerationHandler(svc, logg, func(svc communities.Service, r *http.Request, communityID, actorID, userID uuid.UUID) error {
		return svc.Ban(r.Context(), communityID, actorID, userID)
	}, "banned")
}

// AddCommunityModerator grants moderator powers to a member.
func AddCommunityModerator(svc communities.Service, logg *logger.Logger) http.HandlerFunc {
	return communityModerationHandler(svc, logg, func(svc communities.Service, r *http.Request, communityID, actorID, userID uuid.UUID) error {
		return svc.AddModerator(r.Context(), communityID, actorID, userID)
	}, "moderator_added")
}

// RemoveCommunityModerator revokes moderator powers.
func RemoveCommunityModerator(svc communities.Service, logg *logger.Logger) http.HandlerFunc {
	return communityModerationHandler(svc, logg, func(svc communities.Service, r *http.Request, communityID, actorID, userID uuid.UUID) error {
		return svc.RemoveModerator(r.Context(), communityID, actorID, userID)
	}, "moderator_removed")
}

// InviteToCommunity creates a pending invitation for another user.
func InviteToCommunity(svc communities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "communities service unavailable"))
			return
		}

		inviterID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		communityID, err := validators.ParseURLUUID(chi.URLParam(r, "communityId"), "community id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body inviteCommunityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invitation, err := svc.Invite(r.Context(), communities.InviteParams{
			CommunityID: communityID,
			InviterID:   inviterID,
			InviteeID:   body.InviteeID,
			Message:     body.Message,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, invitation)
	}
}

func invitationDecisionHandler(svc communities.Service, logg *logger.Logger, accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "communities service unavailable"))
			return
		}

		inviteeID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invitationID, err := validators.ParseURLUUID(chi.URLParam(r, "invitationId"), "invitation id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if accept {
			err = svc.AcceptInvitation(r.Context(), invitationID, inviteeID)
		} else {
			err = svc.DeclineInvitation(r.Context(), invitationID, inviteeID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := "declined"
		if accept {
			status = "accepted"
		}
		responses.WriteSuccess(w, map[string]string{"status": status})
	}
}

// AcceptCommunityInvitation accepts a pending invitation.
func AcceptCommunityInvitation(svc communities.Service, logg *logger.Logger) http.HandlerFunc {
	return invitationDecisionHandler(svc, logg, true)
}

// DeclineCommunityInvitation declines a pending invitation.
func DeclineCommunityInvitation(svc communities.Service, logg *logger.Logger) http.HandlerFunc {
	return invitationDecisionHandler(svc, logg, false)
}

// CreateCommunityPost submits a post to a community.
func CreateCommunityPost(svc communities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "communities service unavailable"))
			return
		}

		authorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		communityID, err := validators.ParseURLUUID(chi.URLParam(r, "communityId"), "community id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createCommunityPostRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.CreatePost(r.Context(), communities.CreatePostParams{
			CommunityID: communityID,
			AuthorID:    authorID,
			Title:       body.Title,
			Body:        body.Body,
			URL:         body.URL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, post)
	}
}

// ApproveCommunityPost publishes a pending post.
func ApproveCommunityPost(svc communities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "communities service unavailable"))
			return
		}

		moderatorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		postID, err := validators.ParseURLUUID(chi.URLParam(r, "postId"), "post id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ApprovePost(r.Context(), postID, moderatorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "approved"})
	}
}

// RejectCommunityPost rejects a pending post, optionally with a reason.
func RejectCommunityPost(svc communities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "communities service unavailable"))
			return
		}

		moderatorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		postID, err := validators.ParseURLUUID(chi.URLParam(r, "postId"), "post id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rejectCommunityPostRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if err := svc.RejectPost(r.Context(), postID, moderatorID, body.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "rejected"})
	}
}
