package wizard

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salon-booking/internal/booking"
)

func sampleSession() *Session {
	sess := NewSession(fixedNow)
	sess.Step = booking.StepStylist
	sess.Draft = sess.Draft.
		ToggleService(booking.ServiceEntry{ID: "svc-cut", Name: "Haircut", DurationMinutes: 30, Price: price(40)}).
		SetLocation("loc-a", "Downtown").
		SetDate(monday)
	sess.Location = &booking.Location{ID: "loc-a", Name: "Downtown", BranchRef: "branch-a"}
	sess.Stylists = StylistOptions{LocationID: "loc-a", Options: []booking.Stylist{{ID: "sty-ana", Name: "Ana"}}}
	return sess
}

func TestMemoryStore_RoundTripAndIsolation(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()
	sess := sampleSession()
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Draft, got.Draft)
	assert.Equal(t, booking.StepStylist, got.Step)
	require.NotNil(t, got.Draft.Date)
	assert.Equal(t, monday, *got.Draft.Date)

	got.Step = booking.StepConfirm
	again, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StepStylist, again.Step, "callers get copies")

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_Expires(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := fixedNow
	store.now = func() time.Time { return now }
	ctx := context.Background()
	sess := sampleSession()
	require.NoError(t, store.Save(ctx, sess))

	now = now.Add(59 * time.Second)
	_, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)

	// Saving slides the expiry.
	require.NoError(t, store.Save(ctx, sess))
	now = now.Add(59 * time.Second)
	_, err = store.Get(ctx, sess.ID)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := fixedNow
	store.now = func() time.Time { return now }
	ctx := context.Background()

	stale := sampleSession()
	require.NoError(t, store.Save(ctx, stale))
	now = now.Add(30 * time.Second)
	fresh := NewSession(now)
	require.NoError(t, store.Save(ctx, fresh))

	now = now.Add(31 * time.Second)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Sweep())

	_, err := store.Get(ctx, fresh.ID)
	require.NoError(t, err)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_RoundTripWithTTL(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisStore(client, 30*time.Minute)
	ctx := context.Background()
	sess := sampleSession()

	require.NoError(t, store.Save(ctx, sess))
	assert.True(t, mr.Exists("booking:session:"+sess.ID))
	assert.Equal(t, 30*time.Minute, mr.TTL("booking:session:"+sess.ID))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Draft, got.Draft)
	assert.Equal(t, sess.Stylists, got.Stylists)
	assert.Equal(t, sess.Location, got.Location)

	mr.FastForward(31 * time.Minute)
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_DeleteAndMissing(t *testing.T) {
	_, client := newRedis(t)
	store := NewRedisStore(client, 0)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	sess := sampleSession()
	require.NoError(t, store.Save(ctx, sess))
	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_DecodeError(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisStore(client, time.Minute)
	require.NoError(t, mr.Set("booking:session:bad", "{not json"))

	_, err := store.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_RejectsUnknownStep(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisStore(client, time.Minute)
	require.NoError(t, mr.Set("booking:session:old", `{"id":"old","step":"payment"}`))

	_, err := store.Get(context.Background(), "old")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown step")
}

func TestMemoryStore_RejectsUnknownStep(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()
	sess := sampleSession()
	sess.Step = booking.Step("payment")
	require.NoError(t, store.Save(ctx, sess))

	_, err := store.Get(ctx, sess.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestApplyStylists(t *testing.T) {
	sess := sampleSession()
	assert.False(t, ApplyStylists(sess, StylistOptions{LocationID: "loc-b", Options: []booking.Stylist{{ID: "x"}}}))
	assert.Equal(t, "sty-ana", sess.CurrentStylists()[0].ID)

	assert.False(t, ApplyStylists(sess, StylistOptions{}))
	assert.True(t, ApplyStylists(sess, StylistOptions{LocationID: "loc-a", Options: []booking.Stylist{{ID: "sty-new"}}}))
	assert.Equal(t, "sty-new", sess.CurrentStylists()[0].ID)

	sess.Draft = sess.Draft.SetLocation("loc-b", "Uptown")
	assert.Nil(t, sess.CurrentStylists(), "options tagged with an old location are hidden")
}
