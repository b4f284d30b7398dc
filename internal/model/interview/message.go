package interview

import "time"

// Message roles. Alternation is the common case but never enforced.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one persisted turn fragment of a project's interview transcript.
// Within a project, messages are totally ordered by CreatedAt.
type Message struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
