package crew

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMembership_StatusHelpers(t *testing.T) {
	tests := []struct {
		status   MembershipStatus
		accepted bool
		pending  bool
		rejected bool
	}{
		{StatusAccepted, true, false, false},
		{StatusPending, false, true, false},
		{StatusRejected, false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			m := &Membership{Status: tt.status}
			assert.Equal(t, tt.accepted, m.IsAccepted())
			assert.Equal(t, tt.pending, m.IsPending())
			assert.Equal(t, tt.rejected, m.IsRejected())
		})
	}
}

func TestMembership_IsCreator(t *testing.T) {
	assert.True(t, (&Membership{Role: RoleCreator}).IsCreator())
	assert.False(t, (&Membership{Role: RoleParticipant}).IsCreator())
}
