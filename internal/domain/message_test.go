package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageIsIM(t *testing.T) {
	assert.True(t, Message{ChannelType: "im"}.IsIM())
	assert.False(t, Message{ChannelType: "channel"}.IsIM())
	assert.False(t, Message{}.IsIM())
}

func TestMessageFromBot(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"plain user message", Message{User: "U123", Text: "hello"}, false},
		{"bot id set", Message{BotID: "B042"}, true},
		{"bot_message subtype", Message{Subtype: "bot_message"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.FromBot())
		})
	}
}

func TestReplyEmpty(t *testing.T) {
	assert.True(t, Reply{}.Empty())
	assert.False(t, Reply{Channel: "C1", Text: "hi"}.Empty())
}

func TestDomainErrorFormatting(t *testing.T) {
	err := NewDomainError(ErrCodeValidation, "space key is required")
	assert.Equal(t, "[VALIDATION_ERROR] space key is required", err.Error())

	wrapped := NewDomainErrorWithCause(ErrCodeUpstream, "confluence api call failed", assert.AnError)
	assert.Contains(t, wrapped.Error(), "UPSTREAM_ERROR")
	assert.ErrorIs(t, wrapped, assert.AnError)
}
