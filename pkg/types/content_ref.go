package types

import (
	"fmt"

	"github.com/google/uuid"
)

// ContentKind discriminates which table a ContentRef points into.
type ContentKind string

const (
	ContentKindPost          ContentKind = "post"
	ContentKindCommunityPost ContentKind = "community_post"
)

// IsValid checks whether the kind names a known content table.
func (k ContentKind) IsValid() bool {
	switch k {
	case ContentKindPost, ContentKindCommunityPost:
		return true
	}
	return false
}

// ParseContentKind converts raw strings into ContentKind.
func ParseContentKind(value string) (ContentKind, error) {
	kind := ContentKind(value)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid content kind %q", value)
	}
	return kind, nil
}

// ContentRef is a typed reference to a piece of user content. Comments,
// reactions and saves attach to either a Post or a CommunityPost; the kind
// tag keeps that variant explicit instead of an untyped type+id pair.
type ContentRef struct {
	Kind ContentKind `json:"kind"`
	ID   uuid.UUID   `json:"id"`
}

// NewPostRef builds a reference to a regular post.
func NewPostRef(id uuid.UUID) ContentRef {
	return ContentRef{Kind: ContentKindPost, ID: id}
}

// NewCommunityPostRef builds a reference to a community post.
func NewCommunityPostRef(id uuid.UUID) ContentRef {
	return ContentRef{Kind: ContentKindCommunityPost, ID: id}
}

// Validate reports whether the reference is fully specified.
func (r ContentRef) Validate() error {
	if !r.Kind.IsValid() {
		return fmt.Errorf("invalid content kind %q", r.Kind)
	}
	if r.ID == uuid.Nil {
		return fmt.Errorf("content id required")
	}
	return nil
}

func (r ContentRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}
