package chat

// 消息角色 / Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is an OpenAI-compatible chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System 构造 system 消息 / System builds a system message
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User 构造 user 消息 / User builds a user message
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}
