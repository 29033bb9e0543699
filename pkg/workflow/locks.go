package workflow

import "sync"

// keyedMutex serializes work per submission id. Entries are reference
// counted and removed once the last holder releases, so the map does not
// grow with the number of submissions ever seen.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

// lock acquires the mutex for the key and returns its release function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()

	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}

	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--

		if entry.refs == 0 {
			delete(k.locks, key)
		}

		k.mu.Unlock()
	}
}
