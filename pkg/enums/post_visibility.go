package enums

// PostVisibility controls who may view a post.
type PostVisibility string

const (
	PostVisibilityPublic    PostVisibility = "public"
	PostVisibilityFollowers PostVisibility = "followers"
	PostVisibilityPrivate   PostVisibility = "private"
)

func (v PostVisibility) IsValid() bool {
	switch v {
	case PostVisibilityPublic, PostVisibilityFollowers, PostVisibilityPrivate:
		return true
	}
	return false
}
