package notifications

import "regexp"

var mentionRe = regexp.MustCompile(`@(\w+)`)

// ExtractMentions pulls @username tokens out of free text. Matching is
// case-sensitive and duplicates collapse to the first occurrence, preserving
// order of appearance.
func ExtractMentions(body string) []string {
	matches := mentionRe.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	usernames := make([]string, 0, len(matches))
	for _, match := range matches {
		name := match[1]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		usernames = append(usernames, name)
	}
	return usernames
}
