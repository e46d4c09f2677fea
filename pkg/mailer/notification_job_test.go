package mailer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentJobMail(t *testing.T) {
	j := AssignmentJob{
		TicketID:      7,
		TicketTitle:   "broken build",
		AssigneeEmail: "bob@example.com",
		AssigneeName:  "Bob",
		CreatorName:   "Ada",
	}

	assert.Equal(t, "Ticket #7 assigned to you: broken build", j.Subject())
	body := j.Text()
	assert.Contains(t, body, "Hi Bob,")
	assert.Contains(t, body, "Ada assigned ticket #7")
	assert.Contains(t, body, `"broken build"`)
}

func TestAssignmentJobRoundTrip(t *testing.T) {
	in := AssignmentJob{TicketID: 3, TicketTitle: "t", AssigneeEmail: "a@b.com", AssigneeName: "A", CreatorName: "C"}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out AssignmentJob
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}
