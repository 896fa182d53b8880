package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, time.January, 5, 12, 0, 0, 0, time.UTC)}
	s := NewStore(ttl)
	s.now = clock.Now
	return s, clock
}

func TestCreateAndGet(t *testing.T) {
	s, _ := newTestStore(time.Hour)

	c := s.Create()
	require.NotEqual(t, uuid.Nil, c.ID)
	assert.Empty(t, c.Items)
	assert.NotNil(t, c.Items)

	got, ok := s.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, c.ID, got.ID)

	_, ok = s.Get(uuid.New())
	assert.False(t, ok)
}

func TestNewStoreDefaultsTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, NewStore(0).ttl)
}

func TestAddItemMergesLines(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	c := s.Create()
	pizza, chips := uuid.New(), uuid.New()

	_, err := s.AddItem(c.ID, pizza, 1)
	require.NoError(t, err)
	_, err = s.AddItem(c.ID, chips, 2)
	require.NoError(t, err)
	got, err := s.AddItem(c.ID, pizza, 2)
	require.NoError(t, err)

	require.Len(t, got.Items, 2)
	assert.Equal(t, Line{MenuItemID: pizza, Quantity: 3}, got.Items[0])
	assert.Equal(t, Line{MenuItemID: chips, Quantity: 2}, got.Items[1])
}

func TestAddItemRejectsBadInput(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	c := s.Create()

	_, err := s.AddItem(c.ID, uuid.New(), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = s.AddItem(uuid.New(), uuid.New(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddItemCapsMergedQuantity(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	c := s.Create()
	item := uuid.New()

	_, err := s.AddItem(c.ID, item, MaxQuantity+1)
	assert.ErrorIs(t, err, ErrQuantityLimit)

	_, err = s.AddItem(c.ID, item, 60)
	require.NoError(t, err)
	_, err = s.AddItem(c.ID, item, 40)
	assert.ErrorIs(t, err, ErrQuantityLimit)

	got, err := s.AddItem(c.ID, item, 39)
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, got.Items[0].Quantity)

	_, err = s.SetQuantity(c.ID, item, MaxQuantity+1)
	assert.ErrorIs(t, err, ErrQuantityLimit)
}

func TestClaimIsExclusive(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	c := s.Create()
	item := uuid.New()
	_, _ = s.AddItem(c.ID, item, 2)

	got, err := s.Claim(c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Items[0].Quantity)

	_, err = s.Claim(c.ID)
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	_, err = s.AddItem(c.ID, item, 1)
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	_, err = s.Clear(c.ID)
	assert.ErrorIs(t, err, ErrCheckoutInProgress)

	// The cart stays readable while claimed.
	_, ok := s.Get(c.ID)
	assert.True(t, ok)

	s.Release(c.ID)
	_, err = s.AddItem(c.ID, item, 1)
	require.NoError(t, err)
	_, err = s.Claim(c.ID)
	require.NoError(t, err)

	s.Delete(c.ID)
	_, err = s.Claim(c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClaimConcurrently(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	c := s.Create()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Claim(c.ID); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
}

func TestClaimedCartSurvivesCleanup(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	c := s.Create()
	_, err := s.Claim(c.ID)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	assert.Zero(t, s.CleanupExpired())

	_, err = s.Claim(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetQuantityAndRemove(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	c := s.Create()
	pizza, chips := uuid.New(), uuid.New()
	_, _ = s.AddItem(c.ID, pizza, 1)
	_, _ = s.AddItem(c.ID, chips, 1)

	got, err := s.SetQuantity(c.ID, pizza, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Items[0].Quantity)

	got, err = s.RemoveItem(c.ID, pizza)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, chips, got.Items[0].MenuItemID)

	_, err = s.SetQuantity(c.ID, pizza, 2)
	assert.ErrorIs(t, err, ErrItemNotInCart)

	_, err = s.SetQuantity(c.ID, chips, -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	got, err = s.Clear(c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	c := s.Create()
	item := uuid.New()
	got, _ := s.AddItem(c.ID, item, 1)

	got.Items[0].Quantity = 99

	again, ok := s.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestExpiry(t *testing.T) {
	s, clock := newTestStore(time.Hour)
	stale := s.Create()
	clock.Advance(40 * time.Minute)
	fresh := s.Create()

	// Touching a cart refreshes it.
	clock.Advance(30 * time.Minute)
	_, err := s.AddItem(fresh.ID, uuid.New(), 1)
	require.NoError(t, err)

	_, ok := s.Get(stale.ID)
	assert.False(t, ok)
	_, err = s.AddItem(stale.ID, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, s.CleanupExpired())
	assert.Equal(t, 1, s.Len())

	_, ok = s.Get(fresh.ID)
	assert.True(t, ok)
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	c := s.Create()

	s.Delete(c.ID)

	_, ok := s.Get(c.ID)
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestRunJanitorStopsWithContext(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	s.Create()
	clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	swept := make(chan int, 1)
	done := make(chan struct{})
	go func() {
		s.RunJanitor(ctx, 5*time.Millisecond, func(removed int) {
			select {
			case swept <- removed:
			default:
			}
		})
		close(done)
	}()

	select {
	case removed := <-swept:
		assert.Equal(t, 1, removed)
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not run")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
	assert.Zero(t, s.Len())
}

func TestConcurrentAccess(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	c := s.Create()
	item := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AddItem(c.ID, item, 1)
			s.Get(c.ID)
		}()
	}
	wg.Wait()

	got, ok := s.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, 50, got.Items[0].Quantity)
}
