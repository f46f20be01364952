package requestcache

import (
	"sync"
)

// a mutex per string key; keys that were never locked cost nothing. held entries
// carry a chan whose close signals waiters to try again.
type keyedMutex struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		held: map[string]chan struct{}{},
	}
}

// blocks until the key is ours. the returned func releases it.
func (k *keyedMutex) lock(key string) func() {
	for {
		k.mu.Lock()

		wait, alreadyHeld := k.held[key]
		if !alreadyHeld {
			released := make(chan struct{})
			k.held[key] = released
			k.mu.Unlock()

			return func() {
				k.mu.Lock()
				defer k.mu.Unlock()

				delete(k.held, key)
				close(released)
			}
		}

		k.mu.Unlock()

		// not guaranteed to win the retry - someone else may grab the key first
		<-wait
	}
}
