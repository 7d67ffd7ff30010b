package enums

import "fmt"

// ReactionType enumerates the reactions users can leave on content.
type ReactionType string

const (
	ReactionTypeLike    ReactionType = "like"
	ReactionTypeLove    ReactionType = "love"
	ReactionTypeLaugh   ReactionType = "laugh"
	ReactionTypeWow     ReactionType = "wow"
	ReactionTypeSad     ReactionType = "sad"
	ReactionTypeAngry   ReactionType = "angry"
	ReactionTypeSupport ReactionType = "support"
)

var validReactionTypes = []ReactionType{
	ReactionTypeLike,
	ReactionTypeLove,
	ReactionTypeLaugh,
	ReactionTypeWow,
	ReactionTypeSad,
	ReactionTypeAngry,
	ReactionTypeSupport,
}

func (r ReactionType) IsValid() bool {
	for _, candidate := range validReactionTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReactionType converts raw strings into ReactionType.
func ParseReactionType(value string) (ReactionType, error) {
	for _, candidate := range validReactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reaction type %q", value)
}
