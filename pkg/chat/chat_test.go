package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemAndUser(t *testing.T) {
	msgs := SystemAndUser("be brief", "hello")

	assert.Equal(t, []ChatMessage{
		{Role: ChatRoleSystem, Content: "be brief"},
		{Role: ChatRoleUser, Content: "hello"},
	}, msgs)
}
