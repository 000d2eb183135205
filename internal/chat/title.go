package chat

import "strings"

// DefaultTitle is the title of a session with no user messages yet.
const DefaultTitle = "New Chat"

// titleMaxRunes is the number of leading characters kept from the first
// user message before the ellipsis is appended.
const titleMaxRunes = 30

// DeriveTitle computes a session title from its messages: the first user
// message's content, trimmed, truncated to 30 characters plus "..." when
// longer. Falls back to DefaultTitle when no user message exists.
func DeriveTitle(messages []Message) string {
	for _, m := range messages {
		if !m.IsUser {
			continue
		}
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		runes := []rune(content)
		if len(runes) > titleMaxRunes {
			return string(runes[:titleMaxRunes]) + "..."
		}
		return content
	}
	return DefaultTitle
}
