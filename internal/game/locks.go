package game

import "sync"

// lockTable hands out one mutex per room so concurrent actions on the same
// room are serialized while unrelated rooms proceed independently.
type lockTable struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[int64]*sync.Mutex)}
}

// acquire locks the room's mutex, creating it on first use, and returns it
// for the caller to unlock. Callers must re-validate the room from the store
// after acquiring: the room may have been deleted while they waited.
func (t *lockTable) acquire(roomID int64) *sync.Mutex {
	t.mu.Lock()
	l, ok := t.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[roomID] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l
}

// drop forgets a deleted room's mutex.
func (t *lockTable) drop(roomID int64) {
	t.mu.Lock()
	delete(t.locks, roomID)
	t.mu.Unlock()
}
