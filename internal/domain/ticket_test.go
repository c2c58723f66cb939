package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketStatusOpen, TicketStatusAssigned, true},
		{TicketStatusAssigned, TicketStatusResolved, true},
		{TicketStatusOpen, TicketStatusResolved, false},
		{TicketStatusResolved, TicketStatusOpen, false},
		{TicketStatusResolved, TicketStatusAssigned, false},
		{TicketStatusAssigned, TicketStatusOpen, false},
		{TicketStatusOpen, TicketStatusOpen, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidStatuses(t *testing.T) {
	assert.True(t, ValidTicketStatus(TicketStatusOpen))
	assert.False(t, ValidTicketStatus("Closed"))
	assert.True(t, ValidAssetStatus(AssetStatusUnderRepair))
	assert.False(t, ValidAssetStatus("broken"))
	assert.True(t, ValidWorkerRole(WorkerRoleAdmin))
	assert.False(t, ValidWorkerRole("dispatcher"))
}
