package database

// Roles a turn may carry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is a stored chat session.
type Conversation struct {
	ID             string
	Title          string
	SourceFilename *string
	LastResponse   *string
	TurnCount      int
	CreatedAt      *string
	UpdatedAt      *string
}

// Turn is one message in a conversation, ordered by Position.
type Turn struct {
	ID             int64
	ConversationID string
	Position       int
	Role           string
	Content        string
	CreatedAt      *string
}
