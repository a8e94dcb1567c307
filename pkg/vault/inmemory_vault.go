package vault

import (
	"errors"
	"sync"
)

var (
	ErrKeyNotFound = errors.New("vault: key not found")
)

// InMemoryVault stores whole byte values under string keys. Writes replace
// the value atomically, so readers never observe a partial record.
type InMemoryVault struct {
	lock   sync.RWMutex
	values map[string][]byte
}

func NewInMemoryVault() *InMemoryVault {
	return &InMemoryVault{
		values: make(map[string][]byte),
	}
}

func (store *InMemoryVault) Import(keyID string, value []byte) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	store.values[keyID] = value
	return nil
}

func (store *InMemoryVault) Get(keyID string) ([]byte, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()

	value, ok := store.values[keyID]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return value, nil
}

func (store *InMemoryVault) Delete(keyID string) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	delete(store.values, keyID)
	return nil
}
