package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetUnknownSession(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreAppendAndGetPreservesOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1",
		Message{Role: RoleUser, Content: "first"},
		Message{Role: RoleAssistant, Content: "second"},
	))
	require.NoError(t, store.Append(ctx, "s1", Message{Role: RoleUser, Content: "third"}))

	history, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[1].Content)
	assert.Equal(t, "third", history[2].Content)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", Message{Role: RoleUser, Content: "original"}))

	history, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	history[0].Content = "mutated"

	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Content)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", Message{Role: RoleUser, Content: "hello"}))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreConcurrentAppendsSameSession(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const writers = 10
	const perWriter = 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				_ = store.Append(ctx, "shared", Message{
					Role:    RoleUser,
					Content: fmt.Sprintf("w%d-%d", n, j),
				})
			}
		}(i)
	}
	wg.Wait()

	history, err := store.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, history, writers*perWriter)
}

func TestLockerIndependentKeys(t *testing.T) {
	locker := NewLocker()
	locker.Lock("a")
	// A different key must not block.
	done := make(chan struct{})
	go func() {
		locker.Lock("b")
		locker.Unlock("b")
		close(done)
	}()
	<-done
	locker.Unlock("a")
}
