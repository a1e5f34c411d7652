package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
}

func TestSessionStoreOpenGetClose(t *testing.T) {
	telemetry := &stubTelemetry{}
	store := NewSessionStore(PageOptions{Telemetry: telemetry}, time.Minute, WithSessionIDs(sequentialIDs()))

	page := store.Open(context.Background())
	assert.Equal(t, "session-1", page.ID)
	assert.Equal(t, 1, store.Len())

	got, ok := store.Get("session-1")
	require.True(t, ok)
	assert.Same(t, page, got)

	assert.True(t, store.Close(context.Background(), "session-1"))
	assert.False(t, store.Close(context.Background(), "session-1"))
	_, ok = store.Get("session-1")
	assert.False(t, ok)

	assert.Len(t, telemetry.named(EventSessionOpen), 1)
	assert.Len(t, telemetry.named(EventSessionClose), 1)
}

func TestSessionStoreSweepExpiresIdlePages(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := NewSessionStore(PageOptions{}, 10*time.Minute, WithSessionClock(clock), WithSessionIDs(sequentialIDs()))

	store.Open(context.Background())
	store.Open(context.Background())

	now = now.Add(6 * time.Minute)
	_, ok := store.Get("session-2")
	require.True(t, ok)

	now = now.Add(6 * time.Minute)
	assert.Equal(t, 1, store.Sweep(context.Background()))
	_, ok = store.Get("session-1")
	assert.False(t, ok)
	_, ok = store.Get("session-2")
	assert.True(t, ok)
}

func TestClosedPageDiscardsLateResults(t *testing.T) {
	release := make(chan struct{})
	repo := &blockingCustomers{started: make(chan struct{}), release: release, record: sampleCustomer()}
	store := NewSessionStore(PageOptions{Customers: repo}, time.Minute, WithSessionIDs(sequentialIDs()))
	page := store.Open(context.Background())

	done := make(chan CustomerLookupView, 1)
	go func() {
		view, _ := page.Lookup.SubmitLookup(context.Background(), "6000007393575")
		done <- view
	}()
	<-repo.started
	store.Close(context.Background(), page.ID)
	close(release)

	view := <-done
	assert.Nil(t, view.Customer)
	assert.NotEqual(t, StateSuccess, page.Lookup.Snapshot().State)
}

type blockingCustomers struct {
	started chan struct{}
	release chan struct{}
	record  CustomerRecord
}

func (b *blockingCustomers) FetchCustomer(_ context.Context, _ string) (CustomerRecord, error) {
	close(b.started)
	<-b.release
	return b.record, nil
}
