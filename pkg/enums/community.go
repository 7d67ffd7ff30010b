package enums

import "fmt"

// CommunityVisibility controls who can see and join a community.
type CommunityVisibility string

const (
	// CommunityVisibilityPublic communities accept any join request directly.
	CommunityVisibilityPublic CommunityVisibility = "public"
	// CommunityVisibilityRestricted communities queue join requests for
	// moderator approval.
	CommunityVisibilityRestricted CommunityVisibility = "restricted"
	// CommunityVisibilityPrivate communities are invite-only.
	CommunityVisibilityPrivate CommunityVisibility = "private"
)

func (v CommunityVisibility) IsValid() bool {
	switch v {
	case CommunityVisibilityPublic, CommunityVisibilityRestricted, CommunityVisibilityPrivate:
		return true
	}
	return false
}

// MembershipStatus maps to the membership_status enum in Postgres.
type MembershipStatus string

const (
	MembershipStatusPending MembershipStatus = "pending"
	MembershipStatusMember  MembershipStatus = "member"
	MembershipStatusBanned  MembershipStatus = "banned"
)

func (m MembershipStatus) IsValid() bool {
	switch m {
	case MembershipStatusPending, MembershipStatusMember, MembershipStatusBanned:
		return true
	}
	return false
}

// InvitationStatus tracks the lifecycle of a community invitation.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

func (i InvitationStatus) IsValid() bool {
	switch i {
	case InvitationStatusPending, InvitationStatusAccepted, InvitationStatusDeclined:
		return true
	}
	return false
}

// CommunityPostStatus is the moderation state of a community post.
type CommunityPostStatus string

const (
	CommunityPostStatusPending  CommunityPostStatus = "pending"
	CommunityPostStatusApproved CommunityPostStatus = "approved"
	CommunityPostStatusRejected CommunityPostStatus = "rejected"
)

func (s CommunityPostStatus) IsValid() bool {
	switch s {
	case CommunityPostStatusPending, CommunityPostStatusApproved, CommunityPostStatusRejected:
		return true
	}
	return false
}

// ParseCommunityVisibility converts raw strings into CommunityVisibility.
func ParseCommunityVisibility(value string) (CommunityVisibility, error) {
	v := CommunityVisibility(value)
	if !v.IsValid() {
		return "", fmt.Errorf("invalid community visibility %q", value)
	}
	return v, nil
}
