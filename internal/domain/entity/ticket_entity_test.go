package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketStatusValid(t *testing.T) {
	assert.True(t, TicketStatusOpen.Valid())
	assert.True(t, TicketStatusInProgress.Valid())
	assert.True(t, TicketStatusDone.Valid())

	assert.False(t, TicketStatus("closed").Valid())
	assert.False(t, TicketStatus("OPEN").Valid())
	assert.False(t, TicketStatus("").Valid())
}
