package ai

import openai "github.com/sashabaranov/go-openai"

type ReplyFormat int

const (
	ReplyText ReplyFormat = iota
	ReplyJSON
)

// Session is one conversation with the model. It is a value: Ask and
// Answered return a new session and never touch the receiver, so every
// phase of a generation starts from its own instruction context.
type Session struct {
	messages []openai.ChatCompletionMessage
	format   ReplyFormat
}

func NewSession(systemPrompt string) Session {
	return Session{
		messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		},
	}
}

// Ask appends a user turn and sets the reply format expected for it.
func (s Session) Ask(content string, format ReplyFormat) Session {
	return Session{
		messages: s.with(openai.ChatMessageRoleUser, content),
		format:   format,
	}
}

// Answered records the assistant reply so the next turn can refer to it.
func (s Session) Answered(content string) Session {
	return Session{
		messages: s.with(openai.ChatMessageRoleAssistant, content),
		format:   s.format,
	}
}

func (s Session) Messages() []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s Session) Format() ReplyFormat {
	return s.format
}

func (s Session) with(role, content string) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(s.messages), len(s.messages)+1)
	copy(out, s.messages)
	return append(out, openai.ChatCompletionMessage{Role: role, Content: content})
}
