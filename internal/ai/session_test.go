package ai

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestSession_ValueSemantics(t *testing.T) {
	base := NewSession("system")
	asked := base.Ask("hello", ReplyJSON)
	answered := asked.Answered("hi")

	assert.Len(t, base.Messages(), 1)
	assert.Equal(t, ReplyText, base.Format())

	assert.Len(t, asked.Messages(), 2)
	assert.Equal(t, ReplyJSON, asked.Format())

	msgs := answered.Messages()
	assert.Len(t, msgs, 3)
	assert.Equal(t, openai.ChatMessageRoleSystem, msgs[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, msgs[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, msgs[2].Role)

	// branching from the same session does not leak turns between branches
	a := asked.Ask("first branch", ReplyText)
	b := asked.Ask("second branch", ReplyText)
	assert.Equal(t, "first branch", a.Messages()[2].Content)
	assert.Equal(t, "second branch", b.Messages()[2].Content)
}

func TestSession_MessagesIsACopy(t *testing.T) {
	s := NewSession("system")
	msgs := s.Messages()
	msgs[0].Content = "changed"

	assert.Equal(t, "system", s.Messages()[0].Content)
}
