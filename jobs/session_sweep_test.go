package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advotecate/advotecate/internal/session"
	"github.com/advotecate/advotecate/jobs"
)

func TestSessionSweepJobRemovesDanglingReferences(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := session.NewManager(session.NewRedisStore(client), session.Config{
		Namespace:     "advotecate",
		TTL:           24 * time.Hour,
		InactivityMax: 2 * time.Hour,
		MaxPerUser:    5,
	}, nil)

	ctx := context.Background()
	kept, err := manager.Create(ctx, session.NewParams{UserID: "u1", Email: "a@advotecate.test", Role: "donor"})
	require.NoError(t, err)
	stale, err := manager.Create(ctx, session.NewParams{UserID: "u1", Email: "a@advotecate.test", Role: "donor"})
	require.NoError(t, err)

	// Simulate redis expiring a session record while its set member lingers.
	mr.Del("advotecate:session:" + stale.ID)

	task, err := jobs.NewSessionSweepTask()
	require.NoError(t, err)

	job := jobs.NewSessionSweepJob(manager, nil, nil)
	require.NoError(t, job.Handle(ctx, task))

	active, err := manager.ActiveSessions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, kept.ID, active[0].ID)
}
