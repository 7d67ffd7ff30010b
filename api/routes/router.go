package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aviz85/socisphere/api/controllers"
	"github.com/aviz85/socisphere/api/middleware"
	"github.com/aviz85/socisphere/internal/auth"
	"github.com/aviz85/socisphere/internal/communities"
	"github.com/aviz85/socisphere/internal/connections"
	"github.com/aviz85/socisphere/internal/conversations"
	"github.com/aviz85/socisphere/internal/notifications"
	"github.com/aviz85/socisphere/internal/posts"
	"github.com/aviz85/socisphere/internal/spaces"
	"github.com/aviz85/socisphere/pkg/auth/session"
	"github.com/aviz85/socisphere/pkg/config"
	"github.com/aviz85/socisphere/pkg/db"
	"github.com/aviz85/socisphere/pkg/logger"
	"github.com/aviz85/socisphere/pkg/redis"
)

// Services bundles everything the router wires into controllers.
type Services struct {
	Auth          auth.Service
	Notifications notifications.Service
	Connections   connections.Service
	Conversations conversations.Service
	Communities   communities.Service
	Posts         posts.Service
	Spaces        spaces.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Post("/auth/logout", controllers.AuthLogout(svcs.Auth, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationsCount(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Delete("/{notificationId}", controllers.DeleteNotification(svcs.Notifications, logg))
		})

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Post("/follow", controllers.FollowUser(svcs.Connections, logg))
			r.Delete("/follow", controllers.UnfollowUser(svcs.Connections, logg))
			r.Get("/followers", controllers.ListFollowers(svcs.Connections, logg))
			r.Get("/following", controllers.ListFollowing(svcs.Connections, logg))
			r.Get("/posts", controllers.ListPostsByAuthor(svcs.Posts, logg))
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", controllers.ListConversations(svcs.Conversations, logg))
			r.Post("/", controllers.CreateConversation(svcs.Conversations, logg))
			r.Route("/{conversationId}", func(r chi.Router) {
				r.Post("/participants", controllers.AddConversationParticipant(svcs.Conversations, logg))
				r.Post("/leave", controllers.LeaveConversation(svcs.Conversations, logg))
				r.Get("/messages", controllers.ListConversationMessages(svcs.Conversations, logg))
				r.Post("/messages", controllers.SendConversationMessage(svcs.Conversations, logg))
				r.Post("/read", controllers.MarkConversationRead(svcs.Conversations, logg))
				r.Get("/unread-count", controllers.ConversationUnreadCount(svcs.Conversations, logg))
			})
		})

		r.Route("/communities", func(r chi.Router) {
			r.Post("/", controllers.CreateCommunity(svcs.Communities, logg))
			r.Route("/{communityId}", func(r chi.Router) {
				r.Post("/join", controllers.JoinCommunity(svcs.Communities, logg))
				r.Post("/leave", controllers.LeaveCommunity(svcs.Communities, logg))
				r.Post("/memberships/approve", controllers.ApproveCommunityMembership(svcs.Communities, logg))
				r.Post("/memberships/ban", controllers.BanCommunityMember(svcs.Communities, logg))
				r.Post("/moderators", controllers.AddCommunityModerator(svcs.Communities, logg))
				r.Delete("/moderators", controllers.RemoveCommunityModerator(svcs.Communities, logg))
				r.Post("/invitations", controllers.InviteToCommunity(svcs.Communities, logg))
				r.Post("/posts", controllers.CreateCommunityPost(svcs.Communities, logg))
			})
			r.Route("/invitations/{invitationId}", func(r chi.Router) {
				r.Post("/accept", controllers.AcceptCommunityInvitation(svcs.Communities, logg))
				r.Post("/decline", controllers.DeclineCommunityInvitation(svcs.Communities, logg))
			})
			r.Route("/posts/{postId}", func(r chi.Router) {
				r.Post("/approve", controllers.ApproveCommunityPost(svcs.Communities, logg))
				r.Post("/reject", controllers.RejectCommunityPost(svcs.Communities, logg))
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", controllers.CreatePost(svcs.Posts, logg))
			r.Get("/{postId}", controllers.GetPost(svcs.Posts, logg))
			r.Delete("/{postId}", controllers.DeletePost(svcs.Posts, logg))
		})

		r.Route("/content/{contentKind}/{contentId}", func(r chi.Router) {
			r.Post("/reactions", controllers.ReactToContent(svcs.Posts, logg))
			r.Get("/comments", controllers.ListComments(svcs.Posts, logg))
			r.Post("/comments", controllers.CreateComment(svcs.Posts, logg))
		})

		r.Route("/spaces", func(r chi.Router) {
			r.Get("/", controllers.ListSpaces(svcs.Spaces, logg))
			r.Post("/", controllers.CreateSpace(svcs.Spaces, logg))
			r.Route("/{spaceId}", func(r chi.Router) {
				r.Get("/", controllers.GetSpace(svcs.Spaces, logg))
				r.Get("/members", controllers.ListSpaceMembers(svcs.Spaces, logg))
				r.Post("/members", controllers.AddSpaceMember(svcs.Spaces, logg))
				r.Delete("/members/{userId}", controllers.RemoveSpaceMember(svcs.Spaces, logg))
				r.Post("/leave", controllers.LeaveSpace(svcs.Spaces, logg))
			})
		})
	})

	return r
}
