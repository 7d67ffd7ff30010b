package enums

import "fmt"

// NotificationKind maps to the notification_kind enum in Postgres.
type NotificationKind string

const (
	NotificationKindFollow     NotificationKind = "follow"
	NotificationKindLike       NotificationKind = "like"
	NotificationKindComment    NotificationKind = "comment"
	NotificationKindMention    NotificationKind = "mention"
	NotificationKindMessage    NotificationKind = "message"
	NotificationKindInvitation NotificationKind = "invitation"
	NotificationKindSystem     NotificationKind = "system"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindFollow,
	NotificationKindLike,
	NotificationKindComment,
	NotificationKindMention,
	NotificationKindMessage,
	NotificationKindInvitation,
	NotificationKindSystem,
}

// IsValid checks whether the given kind matches the canonical enum.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}

// NotificationKinds returns every kind in declaration order.
func NotificationKinds() []NotificationKind {
	kinds := make([]NotificationKind, len(validNotificationKinds))
	copy(kinds, validNotificationKinds)
	return kinds
}
