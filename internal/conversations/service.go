package conversations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aviz85/socisphere/internal/users"
	"github.com/aviz85/socisphere/pkg/db"
	"github.com/aviz85/socisphere/pkg/db/models"
	pkgerrors "github.com/aviz85/socisphere/pkg/errors"
)

// Service defines conversation, message, and read-ledger operations. Every
// operation against an existing conversation requires the caller to be a
// participant.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Conversation, error)
	AddParticipant(ctx context.Context, conversationID, actorID, userID uuid.UUID) error
	Leave(ctx context.Context, conversationID, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]Summary, error)
	SendMessage(ctx context.Context, params SendMessageParams) (*models.ConversationMessage, error)
	ListMessages(ctx context.Context, conversationID, userID uuid.UUID) ([]models.ConversationMessage, error)
	MarkRead(ctx context.Context, conversationID, userID uuid.UUID) (*models.ConversationRead, error)
	UnreadCount(ctx context.Context, conversationID, userID uuid.UUID) (int64, error)
}

type service struct {
	repo  Repository
	users users.Repository
}

// CreateParams configures a new conversation. The creator is always included
// as a participant; unknown participant ids are dropped silently.
type CreateParams struct {
	CreatorID      uuid.UUID
	ParticipantIDs []uuid.UUID
	IsGroup        bool
	Name           string
}

// SendMessageParams carries a new message.
type SendMessageParams struct {
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Body           string
	HasAttachment  bool
}

// Summary is the conversation-list projection: the conversation, its latest
// message, and the caller's derived unread count.
type Summary struct {
	Conversation models.Conversation         `json:"conversation"`
	LastMessage  *models.ConversationMessage `json:"last_message,omitempty"`
	UnreadCount  int64                       `json:"unread_count"`
}

// NewService wires the conversations dependencies.
func NewService(repo Repository, userRepo users.Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "conversations repository required")
	}
	if userRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: repo, users: userRepo}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Conversation, error) {
	if params.CreatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}

	participants := []uuid.UUID{params.CreatorID}
	for _, id := range params.ParticipantIDs {
		if id == uuid.Nil || id == params.CreatorID {
			continue
		}
		if _, err := s.users.FindByID(ctx, id); err != nil {
			if errors.Is(err, users.ErrNotFound) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve participant")
		}
		participants = appendUnique(participants, id)
	}

	conversation := models.Conversation{IsGroup: params.IsGroup}
	if name := strings.TrimSpace(params.Name); name != "" {
		conversation.Name = &name
	}

	if err := s.repo.CreateConversation(ctx, &conversation, participants); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create conversation")
	}
	return &conversation, nil
}

func (s *service) AddParticipant(ctx context.Context, conversationID, actorID, userID uuid.UUID) error {
	if conversationID == uuid.Nil || actorID == uuid.Nil || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "conversation, actor, and user ids required")
	}

	if err := s.requireParticipant(ctx, conversationID, actorID); err != nil {
		return err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve user")
	}

	if err := s.repo.AddParticipant(ctx, conversationID, userID); err != nil {
		if db.IsUniqueViolation(err, "idx_conversation_participants_pair") {
			return pkgerrors.New(pkgerrors.CodeConflict, "already a participant")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add participant")
	}
	return nil
}

func (s *service) Leave(ctx context.Context, conversationID, userID uuid.UUID) error {
	if conversationID == uuid.Nil || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "conversation and user ids required")
	}

	removed, err := s.repo.RemoveParticipant(ctx, conversationID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove participant")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "not a participant")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]Summary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	conversations, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list conversations")
	}

	summaries := make([]Summary, 0, len(conversations))
	for _, conversation := range conversations {
		last, err := s.repo.LastMessage(ctx, conversation.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load last message")
		}
		unread, err := s.repo.UnreadCount(ctx, conversation.ID, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread messages")
		}
		summaries = append(summaries, Summary{
			Conversation: conversation,
			LastMessage:  last,
			UnreadCount:  unread,
		})
	}
	return summaries, nil
}

// SendMessage stores the message and bumps the conversation's updated_at. It
// deliberately does not touch the sender's read ledger: the sender's own
// messages are already excluded from their unread count.
func (s *service) SendMessage(ctx context.Context, params SendMessageParams) (*models.ConversationMessage, error) {
	if params.ConversationID == uuid.Nil || params.SenderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "conversation and sender ids required")
	}
	if strings.TrimSpace(params.Body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body required")
	}

	if err := s.requireParticipant(ctx, params.ConversationID, params.SenderID); err != nil {
		return nil, err
	}

	message := models.ConversationMessage{
		ConversationID: params.ConversationID,
		SenderID:       params.SenderID,
		Body:           params.Body,
		HasAttachment:  params.HasAttachment,
	}
	if err := s.repo.CreateMessage(ctx, &message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
	}
	if err := s.repo.TouchUpdatedAt(ctx, params.ConversationID, time.Now().UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump conversation")
	}
	return &message, nil
}

func (s *service) ListMessages(ctx context.Context, conversationID, userID uuid.UUID) ([]models.ConversationMessage, error) {
	if conversationID == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "conversation and user ids required")
	}
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	return messages, nil
}

func (s *service) MarkRead(ctx context.Context, conversationID, userID uuid.UUID) (*models.ConversationRead, error) {
	if conversationID == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "conversation and user ids required")
	}
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	read, err := s.repo.UpsertRead(ctx, conversationID, userID, time.Now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert read marker")
	}
	return read, nil
}

func (s *service) UnreadCount(ctx context.Context, conversationID, userID uuid.UUID) (int64, error) {
	if conversationID == uuid.Nil || userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "conversation and user ids required")
	}
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return 0, err
	}

	count, err := s.repo.UnreadCount(ctx, conversationID, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread messages")
	}
	return count, nil
}

func (s *service) requireParticipant(ctx context.Context, conversationID, userID uuid.UUID) error {
	ok, err := s.repo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check participant")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not a participant in this conversation")
	}
	return nil
}

func appendUnique(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
