package communities

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aviz85/socisphere/internal/notifications"
	"github.com/aviz85/socisphere/internal/users"
	"github.com/aviz85/socisphere/pkg/db/models"
	"github.com/aviz85/socisphere/pkg/enums"
	pkgerrors "github.com/aviz85/socisphere/pkg/errors"
)

// fakeRepo keeps community state in memory so membership transitions and
// counter recomputes can be asserted directly.
type fakeRepo struct {
	communities map[uuid.UUID]*models.Community
	memberships map[uuid.UUID]*models.CommunityMembership
	moderators  map[uuid.UUID][]uuid.UUID
	invitations map[uuid.UUID]*models.CommunityInvitation
	posts       map[uuid.UUID]*models.CommunityPost

	createInvitationErr error
	createMembershipErr error

	membersRecomputes int
	postsRecomputes   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		communities: map[uuid.UUID]*models.Community{},
		memberships: map[uuid.UUID]*models.CommunityMembership{},
		moderators:  map[uuid.UUID][]uuid.UUID{},
		invitations: map[uuid.UUID]*models.CommunityInvitation{},
		posts:       map[uuid.UUID]*models.CommunityPost{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateCommunity(ctx context.Context, community *models.Community) error {
	community.ID = uuid.New()
	f.communities[community.ID] = community
	return nil
}

func (f *fakeRepo) FindCommunity(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	if community, ok := f.communities[id]; ok {
		return community, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) FindCommunityBySlug(ctx context.Context, slug string) (*models.Community, error) {
	for _, community := range f.communities {
		if community.Slug == slug {
			return community, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) RecomputeMembersCount(ctx context.Context, communityID uuid.UUID) error {
	f.membersRecomputes++
	return nil
}

func (f *fakeRepo) RecomputePostsCount(ctx context.Context, communityID uuid.UUID) error {
	f.postsRecomputes++
	return nil
}

func (f *fakeRepo) CreateMembership(ctx context.Context, membership *models.CommunityMembership) error {
	if f.createMembershipErr != nil {
		return f.createMembershipErr
	}
	membership.ID = uuid.New()
	f.memberships[membership.ID] = membership
	return nil
}

func (f *fakeRepo) FindMembership(ctx context.Context, communityID, userID uuid.UUID) (*models.CommunityMembership, error) {
	for _, membership := range f.memberships {
		if membership.CommunityID == communityID && membership.UserID == userID {
			return membership, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) UpdateMembershipStatus(ctx context.Context, membershipID uuid.UUID, status enums.MembershipStatus) error {
	membership, ok := f.memberships[membershipID]
	if !ok {
		return ErrNotFound
	}
	membership.Status = status
	return nil
}

func (f *fakeRepo) DeleteMembership(ctx context.Context, communityID, userID uuid.UUID) (bool, error) {
	for id, membership := range f.memberships {
		if membership.CommunityID == communityID && membership.UserID == userID {
			delete(f.memberships, id)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) AddModerator(ctx context.Context, moderator *models.CommunityModerator) error {
	moderator.ID = uuid.New()
	f.moderators[moderator.CommunityID] = append(f.moderators[moderator.CommunityID], moderator.UserID)
	return nil
}

func (f *fakeRepo) RemoveModerator(ctx context.Context, communityID, userID uuid.UUID) (bool, error) {
	ids := f.moderators[communityID]
	for i, id := range ids {
		if id == userID {
			f.moderators[communityID] = append(ids[:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) IsModerator(ctx context.Context, communityID, userID uuid.UUID) (bool, error) {
	for _, id := range f.moderators[communityID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) ListModerators(ctx context.Context, communityID uuid.UUID) ([]models.CommunityModerator, error) {
	var out []models.CommunityModerator
	for _, id := range f.moderators[communityID] {
		out = append(out, models.CommunityModerator{CommunityID: communityID, UserID: id})
	}
	return out, nil
}

func (f *fakeRepo) CreateInvitation(ctx context.Context, invitation *models.CommunityInvitation) error {
	if f.createInvitationErr != nil {
		return f.createInvitationErr
	}
	invitation.ID = uuid.New()
	f.invitations[invitation.ID] = invitation
	return nil
}

func (f *fakeRepo) FindInvitation(ctx context.Context, id uuid.UUID) (*models.CommunityInvitation, error) {
	if invitation, ok := f.invitations[id]; ok {
		return invitation, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) ResolveInvitation(ctx context.Context, id uuid.UUID, status enums.InvitationStatus, respondedAt time.Time) error {
	if invitation, ok := f.invitations[id]; ok {
		invitation.Status = status
		invitation.RespondedAt = &respondedAt
	}
	return nil
}

func (f *fakeRepo) CreatePost(ctx context.Context, post *models.CommunityPost) error {
	post.ID = uuid.New()
	f.posts[post.ID] = post
	return nil
}

func (f *fakeRepo) FindPost(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error) {
	if post, ok := f.posts[id]; ok {
		return post, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) UpdatePostStatus(ctx context.Context, postID uuid.UUID, status enums.CommunityPostStatus) error {
	if post, ok := f.posts[postID]; ok {
		post.Status = status
	}
	return nil
}

type fakeUsers struct {
	byID map[uuid.UUID]*models.User
}

func (f *fakeUsers) WithTx(tx *gorm.DB) users.Repository { return f }

func (f *fakeUsers) Create(ctx context.Context, user *models.User) error { return nil }

func (f *fakeUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return nil, users.ErrNotFound
}

func (f *fakeUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, users.ErrNotFound
}

func (f *fakeUsers) FindByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	return nil, nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, users.ErrNotFound
}

func (f *fakeUsers) TouchLastActive(ctx context.Context, id uuid.UUID, now time.Time) error {
	return nil
}

type captureEmitter struct {
	events []notifications.Event
}

func (c *captureEmitter) Emit(ctx context.Context, event notifications.Event) {
	c.events = append(c.events, event)
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fixture struct {
	svc     Service
	repo    *fakeRepo
	users   *fakeUsers
	emitter *captureEmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	userRepo := &fakeUsers{byID: map[uuid.UUID]*models.User{}}
	emitter := &captureEmitter{}
	svc, err := NewService(repo, userRepo, emitter, passthroughTx{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, repo: repo, users: userRepo, emitter: emitter}
}

func (f *fixture) addUser(username string) *models.User {
	user := &models.User{ID: uuid.New(), Username: username, Email: username + "@example.com"}
	f.users.byID[user.ID] = user
	return user
}

func (f *fixture) addCommunity(visibility enums.CommunityVisibility, requiresApproval bool) *models.Community {
	community := &models.Community{
		ID:                   uuid.New(),
		Name:                 "Gophers",
		Slug:                 "gophers",
		Visibility:           visibility,
		RequiresPostApproval: requiresApproval,
	}
	f.repo.communities[community.ID] = community
	return community
}

func (f *fixture) addMember(communityID, userID uuid.UUID, status enums.MembershipStatus) {
	membership := &models.CommunityMembership{
		ID:          uuid.New(),
		CommunityID: communityID,
		UserID:      userID,
		Status:      status,
	}
	f.repo.memberships[membership.ID] = membership
}

func TestCreateCommunitySeedsCreator(t *testing.T) {
	fx := newFixture(t)
	creator := fx.addUser("maya")

	community, err := fx.svc.Create(context.Background(), CreateParams{
		CreatorID: creator.ID,
		Name:      "Gophers",
		Slug:      "gophers",
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if community.Visibility != enums.CommunityVisibilityPublic {
		t.Fatalf("expected public default, got %s", community.Visibility)
	}

	membership, err := fx.repo.FindMembership(context.Background(), community.ID, creator.ID)
	if err != nil {
		t.Fatalf("creator must become a member: %v", err)
	}
	if membership.Status != enums.MembershipStatusMember {
		t.Fatalf("expected member status, got %s", membership.Status)
	}
	if ok, _ := fx.repo.IsModerator(context.Background(), community.ID, creator.ID); !ok {
		t.Fatal("creator must become a moderator")
	}
	if fx.repo.membersRecomputes != 1 {
		t.Fatalf("expected one members recompute, got %d", fx.repo.membersRecomputes)
	}
}

func TestJoinPublicBecomesMember(t *testing.T) {
	fx := newFixture(t)
	user := fx.addUser("maya")
	community := fx.addCommunity(enums.CommunityVisibilityPublic, false)

	membership, err := fx.svc.Join(context.Background(), community.ID, user.ID)
	if err != nil {
		t.Fatalf("unexpected join error: %v", err)
	}
	if membership.Status != enums.MembershipStatusMember {
		t.Fatalf("public join must grant membership, got %s", membership.Status)
	}
	if fx.repo.membersRecomputes != 1 {
		t.Fatalf("expected one members recompute, got %d", fx.repo.membersRecomputes)
	}
	if len(fx.emitter.events) != 0 {
		t.Fatal("public join must not notify anyone")
	}
}

func TestJoinRestrictedNotifiesModerators(t *testing.T) {
	fx := newFixture(t)
	user := fx.addUser("maya")
	modA := fx.addUser("noam")
	modB := fx.addUser("dana")
	community := fx.addCommunity(enums.CommunityVisibilityRestricted, false)
	fx.repo.moderators[community.ID] = []uuid.UUID{modA.ID, modB.ID}

	membership, err := fx.svc.Join(context.Background(), community.ID, user.ID)
	if err != nil {
		t.Fatalf("unexpected join error: %v", err)
	}
	if membership.Status != enums.MembershipStatusPending {
		t.Fatalf("restricted join must stay pending, got %s", membership.Status)
	}

	if len(fx.emitter.events) != 2 {
		t.Fatalf("expected one event per moderator, got %d", len(fx.emitter.events))
	}
	for _, event := range fx.emitter.events {
		if event.Kind != enums.NotificationKindSystem {
			t.Fatalf("expected system kind, got %s", event.Kind)
		}
		if !strings.Contains(event.Message, "maya") {
			t.Fatalf("message must name the requester, got %q", event.Message)
		}
	}
}

func TestJoinPrivateForbidden(t *testing.T) {
	fx := newFixture(t)
	user := fx.addUser("maya")
	community := fx.addCommunity(enums.CommunityVisibilityPrivate, false)

	_, err := fx.svc.Join(context.Background(), community.ID, user.ID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestJoinDuplicateConflict(t *testing.T) {
	fx := newFixture(t)
	user := fx.addUser("maya")
	community := fx.addCommunity(enums.CommunityVisibilityPublic, false)
	fx.addMember(community.ID, user.ID, enums.MembershipStatusMember)

	_, err := fx.svc.Join(context.Background(), community.ID, user.ID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestJoinWhileBannedForbidden(t *testing.T) {
	fx := newFixture(t)
	user := fx.addUser("maya")
	community := fx.addCommunity(enums.CommunityVisibilityPublic, false)
	fx.addMember(community.ID, user.ID, enums.MembershipStatusBanned)

	_, err := fx.svc.Join(context.Background(), community.ID, user.ID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestApproveMembershipRequiresModerator(t *testing.T) {
	fx := newFixture(t)
	user := fx.addUser("maya")
	community := fx.addCommunity(enums.CommunityVisibilityRestricted, false)
	fx.addMember(community.ID, user.ID, enums.MembershipStatusPending)

	err := fx.svc.ApproveMembership(context.Background(), community.ID, uuid.New(), user.ID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestApproveMembershipNotifiesUser(t *testing.T) {
	fx := newFixture(t)
	user := fx.addUser("maya")
	moderator := fx.addUser("noam")
	community := fx.addCommunity(enums.CommunityVisibilityRestricted, false)
	fx.repo.moderators[community.ID] = []uuid.UUID{moderator.ID}
	fx.addMember(community.ID, user.ID, enums.MembershipStatusPending)

	if err := fx.svc.ApproveMembership(context.Background(), community.ID, moderator.ID, user.ID); err != nil {
		t.Fatalf("unexpected approve error: %v", err)
	}

	membership, _ := fx.repo.FindMembership(context.Background(), community.ID, user.ID)
	if membership.Status != enums.MembershipStatusMember {
		t.Fatalf("expected member after approval, got %s", membership.Status)
	}
	if fx.repo.membersRecomputes != 1 {
		t.Fatalf("expected one members recompute, got %d", fx.repo.membersRecomputes)
	}
	if len(fx.emitter.events) != 1 || fx.emitter.events[0].RecipientID != user.ID {
		t.Fatal("approval must notify the approved user")
	}
}

func TestBanNotifiesBannedUser(t *testing.T) {
	fx := newFixture(t)
	user := fx.addUser("maya")
	moderator := fx.addUser("noam")
	community := fx.addCommunity(enums.CommunityVisibilityPublic, false)
	fx.repo.moderators[community.ID] = []uuid.UUID{moderator.ID}
	fx.addMember(community.ID, user.ID, enums.MembershipStatusMember)

	if err := fx.svc.Ban(context.Background(), community.ID, moderator.ID, user.ID); err != nil {
		t.Fatalf("unexpected ban error: %v", err)
	}

	membership, _ := fx.repo.FindMembership(context.Background(), community.ID, user.ID)
	if membership.Status != enums.MembershipStatusBanned {
		t.Fatalf("expected banned status, got %s", membership.Status)
	}
	if len(fx.emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(fx.emitter.events))
	}
	if !strings.Contains(fx.emitter.events[0].Title, "Banned from") {
		t.Fatalf("unexpected title %q", fx.emitter.events[0].Title)
	}
}

func TestLeaveRecomputesCount(t *testing.T) {
	fx := newFixture(t)
	user := fx.addUser("maya")
	community := fx.addCommunity(enums.CommunityVisibilityPublic, false)
	fx.addMember(community.ID, user.ID, enums.MembershipStatusMember)

	if err := fx.svc.Leave(context.Background(), community.ID, user.ID); err != nil {
		t.Fatalf("unexpected leave error: %v", err)
	}
	if fx.repo.membersRecomputes != 1 {
		t.Fatalf("expected one members recompute, got %d", fx.repo.membersRecomputes)
	}

	err := fx.svc.Leave(context.Background(), community.ID, user.ID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found on second leave, got %v", err)
	}
}

func TestInviteEmitsInvitation(t *testing.T) {
	fx := newFixture(t)
	inviter := fx.addUser("maya")
	invitee := fx.addUser("noam")
	community := fx.addCommunity(enums.CommunityVisibilityPrivate, false)
	fx.addMember(community.ID, inviter.ID, enums.MembershipStatusMember)

	invitation, err := fx.svc.Invite(context.Background(), InviteParams{
		CommunityID: community.ID,
		InviterID:   inviter.ID,
		InviteeID:   invitee.ID,
	})
	if err != nil {
		t.Fatalf("unexpected invite error: %v", err)
	}
	if invitation.Status != enums.InvitationStatusPending {
		t.Fatalf("expected pending invitation, got %s", invitation.Status)
	}

	if len(fx.emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(fx.emitter.events))
	}
	event := fx.emitter.events[0]
	if event.RecipientID != invitee.ID || event.Kind != enums.NotificationKindInvitation {
		t.Fatalf("unexpected event %+v", event)
	}
	if !strings.Contains(event.Title, "Invitation to Join") {
		t.Fatalf("unexpected title %q", event.Title)
	}
}

func TestInviteRequiresMembership(t *testing.T) {
	fx := newFixture(t)
	inviter := fx.addUser("maya")
	invitee := fx.addUser("noam")
	community := fx.addCommunity(enums.CommunityVisibilityPublic, false)

	_, err := fx.svc.Invite(context.Background(), InviteParams{
		CommunityID: community.ID,
		InviterID:   inviter.ID,
		InviteeID:   invitee.ID,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestInvitePendingDuplicateConflict(t *testing.T) {
	fx := newFixture(t)
	inviter := fx.addUser("maya")
	invitee := fx.addUser("noam")
	community := fx.addCommunity(enums.CommunityVisibilityPublic, false)
	fx.addMember(community.ID, inviter.ID, enums.MembershipStatusMember)
	fx.repo.createInvitationErr = &duplicateError{}

	_, err := fx.svc.Invite(context.Background(), InviteParams{
		CommunityID: community.ID,
		InviterID:   inviter.ID,
		InviteeID:   invitee.ID,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if len(fx.emitter.events) != 0 {
		t.Fatal("failed invite must not emit a notification")
	}
}

type duplicateError struct{}

func (*duplicateError) Error() string {
	return `duplicate key value violates unique constraint "idx_community_invitations_pending"`
}

func TestAcceptInvitationCreatesMembership(t *testing.T) {
	fx := newFixture(t)
	inviter := fx.addUser("maya")
	invitee := fx.addUser("noam")
	community := fx.addCommunity(enums.CommunityVisibilityPrivate, false)
	invitation := &models.CommunityInvitation{
		ID:          uuid.New(),
		CommunityID: community.ID,
		InviterID:   inviter.ID,
		InviteeID:   invitee.ID,
		Status:      enums.InvitationStatusPending,
	}
	fx.repo.invitations[invitation.ID] = invitation

	if err := fx.svc.AcceptInvitation(context.Background(), invitation.ID, invitee.ID); err != nil {
		t.Fatalf("unexpected accept error: %v", err)
	}

	if invitation.Status != enums.InvitationStatusAccepted {
		t.Fatalf("expected accepted status, got %s", invitation.Status)
	}
	if invitation.RespondedAt == nil {
		t.Fatal("expected responded timestamp")
	}
	membership, err := fx.repo.FindMembership(context.Background(), community.ID, invitee.ID)
	if err != nil {
		t.Fatalf("accept must create membership: %v", err)
	}
	if membership.Status != enums.MembershipStatusMember {
		t.Fatalf("expected member status, got %s", membership.Status)
	}
	if fx.repo.membersRecomputes != 1 {
		t.Fatalf("expected one members recompute, got %d", fx.repo.membersRecomputes)
	}

	if len(fx.emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(fx.emitter.events))
	}
	if fx.emitter.events[0].RecipientID != inviter.ID {
		t.Fatal("acceptance must notify the inviter")
	}
}

func TestAcceptInvitationWrongInvitee(t *testing.T) {
	fx := newFixture(t)
	inviter := fx.addUser("maya")
	invitee := fx.addUser("noam")
	community := fx.addCommunity(enums.CommunityVisibilityPrivate, false)
	invitation := &models.CommunityInvitation{
		ID:          uuid.New(),
		CommunityID: community.ID,
		InviterID:   inviter.ID,
		InviteeID:   invitee.ID,
		Status:      enums.InvitationStatusPending,
	}
	fx.repo.invitations[invitation.ID] = invitation

	err := fx.svc.AcceptInvitation(context.Background(), invitation.ID, uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDeclineInvitationStaysSilent(t *testing.T) {
	fx := newFixture(t)
	inviter := fx.addUser("maya")
	invitee := fx.addUser("noam")
	community := fx.addCommunity(enums.CommunityVisibilityPrivate, false)
	invitation := &models.CommunityInvitation{
		ID:          uuid.New(),
		CommunityID: community.ID,
		InviterID:   inviter.ID,
		InviteeID:   invitee.ID,
		Status:      enums.InvitationStatusPending,
	}
	fx.repo.invitations[invitation.ID] = invitation

	if err := fx.svc.DeclineInvitation(context.Background(), invitation.ID, invitee.ID); err != nil {
		t.Fatalf("unexpected decline error: %v", err)
	}
	if invitation.Status != enums.InvitationStatusDeclined {
		t.Fatalf("expected declined status, got %s", invitation.Status)
	}
	if len(fx.emitter.events) != 0 {
		t.Fatal("decline must not notify anyone")
	}

	err := fx.svc.DeclineInvitation(context.Background(), invitation.ID, invitee.ID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict on second decline, got %v", err)
	}
}

func TestCreatePostApprovedWhenNoReview(t *testing.T) {
	fx := newFixture(t)
	author := fx.addUser("maya")
	community := fx.addCommunity(enums.CommunityVisibilityPublic, false)
	fx.addMember(community.ID, author.ID, enums.MembershipStatusMember)

	post, err := fx.svc.CreatePost(context.Background(), CreatePostParams{
		CommunityID: community.ID,
		AuthorID:    author.ID,
		Title:       "Go 1.25 notes",
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if post.Status != enums.CommunityPostStatusApproved {
		t.Fatalf("expected approved status, got %s", post.Status)
	}
	if fx.repo.postsRecomputes != 1 {
		t.Fatalf("expected one posts recompute, got %d", fx.repo.postsRecomputes)
	}
	if len(fx.emitter.events) != 0 {
		t.Fatal("auto-approved posts must not notify moderators")
	}
}

func TestCreatePostPendingNotifiesModerators(t *testing.T) {
	fx := newFixture(t)
	author := fx.addUser("maya")
	moderator := fx.addUser("noam")
	community := fx.addCommunity(enums.CommunityVisibilityPublic, true)
	fx.repo.moderators[community.ID] = []uuid.UUID{moderator.ID}
	fx.addMember(community.ID, author.ID, enums.MembershipStatusMember)

	post, err := fx.svc.CreatePost(context.Background(), CreatePostParams{
		CommunityID: community.ID,
		AuthorID:    author.ID,
		Title:       "Go 1.25 notes",
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if post.Status != enums.CommunityPostStatusPending {
		t.Fatalf("expected pending status, got %s", post.Status)
	}
	if fx.repo.postsRecomputes != 0 {
		t.Fatal("pending posts must not touch posts_count")
	}
	if len(fx.emitter.events) != 1 || fx.emitter.events[0].RecipientID != moderator.ID {
		t.Fatal("pending post must notify the moderators")
	}
}

func TestApprovePostRecomputesAndNotifies(t *testing.T) {
	fx := newFixture(t)
	author := fx.addUser("maya")
	moderator := fx.addUser("noam")
	community := fx.addCommunity(enums.CommunityVisibilityPublic, true)
	fx.repo.moderators[community.ID] = []uuid.UUID{moderator.ID}
	post := &models.CommunityPost{
		ID:          uuid.New(),
		CommunityID: community.ID,
		AuthorID:    author.ID,
		Title:       "Go 1.25 notes",
		Status:      enums.CommunityPostStatusPending,
	}
	fx.repo.posts[post.ID] = post

	if err := fx.svc.ApprovePost(context.Background(), post.ID, moderator.ID); err != nil {
		t.Fatalf("unexpected approve error: %v", err)
	}
	if post.Status != enums.CommunityPostStatusApproved {
		t.Fatalf("expected approved status, got %s", post.Status)
	}
	if fx.repo.postsRecomputes != 1 {
		t.Fatalf("expected one posts recompute, got %d", fx.repo.postsRecomputes)
	}
	if len(fx.emitter.events) != 1 || fx.emitter.events[0].RecipientID != author.ID {
		t.Fatal("approval must notify the author")
	}
	if !strings.Contains(fx.emitter.events[0].Title, "Post Approved in") {
		t.Fatalf("unexpected title %q", fx.emitter.events[0].Title)
	}
}

func TestRejectPostIncludesReason(t *testing.T) {
	fx := newFixture(t)
	author := fx.addUser("maya")
	moderator := fx.addUser("noam")
	community := fx.addCommunity(enums.CommunityVisibilityPublic, true)
	fx.repo.moderators[community.ID] = []uuid.UUID{moderator.ID}
	post := &models.CommunityPost{
		ID:          uuid.New(),
		CommunityID: community.ID,
		AuthorID:    author.ID,
		Title:       "Spam",
		Status:      enums.CommunityPostStatusPending,
	}
	fx.repo.posts[post.ID] = post

	if err := fx.svc.RejectPost(context.Background(), post.ID, moderator.ID, "off topic"); err != nil {
		t.Fatalf("unexpected reject error: %v", err)
	}
	if post.Status != enums.CommunityPostStatusRejected {
		t.Fatalf("expected rejected status, got %s", post.Status)
	}
	if fx.repo.postsRecomputes != 0 {
		t.Fatal("rejection must not touch posts_count")
	}
	if len(fx.emitter.events) != 1 || !strings.Contains(fx.emitter.events[0].Message, "off topic") {
		t.Fatal("rejection must notify the author with the reason")
	}
}

func TestApprovePostRequiresModerator(t *testing.T) {
	fx := newFixture(t)
	author := fx.addUser("maya")
	community := fx.addCommunity(enums.CommunityVisibilityPublic, true)
	post := &models.CommunityPost{
		ID:          uuid.New(),
		CommunityID: community.ID,
		AuthorID:    author.ID,
		Title:       "Go 1.25 notes",
		Status:      enums.CommunityPostStatusPending,
	}
	fx.repo.posts[post.ID] = post

	err := fx.svc.ApprovePost(context.Background(), post.ID, author.ID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}
