package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakePurger struct {
	cutoff time.Time
	purged int64
	calls  int
}

func (p *fakePurger) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	p.cutoff = cutoff
	p.calls++
	return p.purged, nil
}

func TestRunUsesRetentionCutoff(t *testing.T) {
	p := &fakePurger{purged: 3}
	j := NewJob(p, 30, zerolog.Nop())

	before := time.Now().Add(-30 * 24 * time.Hour)
	j.Run()
	after := time.Now().Add(-30 * 24 * time.Hour)

	assert.Equal(t, 1, p.calls)
	assert.False(t, p.cutoff.Before(before))
	assert.False(t, p.cutoff.After(after))
}

func TestStartAndStop(t *testing.T) {
	j := NewJob(&fakePurger{}, 30, zerolog.Nop())

	assert.NoError(t, j.Start())
	j.Stop()
}
