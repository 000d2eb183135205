// Package provider defines the contract between the chat core and LLM
// provider adapters: the role-tagged turn list going out, the plain
// completion text coming back, and the uniform error shape for every
// adapter failure. Concrete adapters live in separate modules (e.g.
// modules/provider/gemini), each fully responsible for translating the
// abstract turn list into its own request schema.
package provider

// Role identifies the speaker of a turn.
type Role string

// Role constants for conversation turns.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged unit of conversation sent to a provider.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// UserTurn builds a user turn.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// AssistantTurn builds an assistant turn.
func AssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Text: text}
}
