package expense

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToResponseTimestampsInUTC(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	e := &Expense{
		ID:             "exp-1",
		UserID:         "alice",
		Date:           time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		CreatedOn:      time.Date(2026, 3, 10, 14, 30, 0, 0, zone),
		LastModifiedOn: time.Date(2026, 3, 10, 16, 45, 0, 0, zone),
	}

	resp := e.ToResponse()
	assert.Equal(t, "2026-03-10T12:30:00Z", resp.CreatedOn)
	assert.Equal(t, "2026-03-10T14:45:00Z", resp.LastModifiedOn)
}
