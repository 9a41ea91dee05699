package wallet

import (
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/revpay/internal/common"
)

// keyMutex serializes operations per account. Acquisition is bounded: a
// caller that cannot take the lock within the timeout gets ErrLockTimeout
// instead of blocking indefinitely.
type keyMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	ch   chan struct{} // capacity 1; holding the token is holding the lock
	refs int
}

func newKeyMutex() *keyMutex {
	return &keyMutex{locks: make(map[string]*lockEntry)}
}

func (k *keyMutex) entry(key string) *lockEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	return e
}

func (k *keyMutex) put(key string, e *lockEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}

// Lock acquires the per-key lock, failing with ErrLockTimeout if the key
// stays held for longer than timeout.
func (k *keyMutex) Lock(key string, timeout time.Duration) error {
	e := k.entry(key)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e.ch <- struct{}{}:
		return nil
	case <-timer.C:
		k.put(key, e)
		return common.ErrLockTimeout
	}
}

// Unlock releases the per-key lock. It must pair with a successful Lock.
func (k *keyMutex) Unlock(key string) {
	k.mu.Lock()
	e := k.locks[key]
	k.mu.Unlock()

	<-e.ch
	k.put(key, e)
}

// LockOrdered acquires several per-key locks in lexicographic key order so
// that two transfers touching the same pair of accounts in opposite
// directions cannot deadlock. On timeout, already-held locks are released.
// Duplicate keys are locked once.
func (k *keyMutex) LockOrdered(timeout time.Duration, keys ...string) error {
	sorted := dedupSorted(keys)
	for i, key := range sorted {
		if err := k.Lock(key, timeout); err != nil {
			for j := i - 1; j >= 0; j-- {
				k.Unlock(sorted[j])
			}
			return err
		}
	}
	return nil
}

// UnlockOrdered releases locks taken by LockOrdered.
func (k *keyMutex) UnlockOrdered(keys ...string) {
	for _, key := range dedupSorted(keys) {
		k.Unlock(key)
	}
}

func dedupSorted(keys []string) []string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	out := sorted[:0]
	for i, key := range sorted {
		if i == 0 || key != sorted[i-1] {
			out = append(out, key)
		}
	}
	return out
}
