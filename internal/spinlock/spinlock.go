// Package spinlock provides the one mutual-exclusion primitive the
// kernel core uses before a scheduler exists: a ticket lock built
// directly on sync/atomic. There is no blocking primitive available
// this early in boot (no thread to park against, no timer to wake one
// on), so every holder of a TicketLock spins.
package spinlock

import "sync/atomic"

// TicketLock is a fair spinlock: each waiter draws a ticket and spins
// until it is being served, so harts acquire the lock strictly in
// arrival order. The zero value is an unlocked lock.
type TicketLock struct {
	next    uint64
	serving uint64
}

// Lock blocks the calling hart until it holds the lock.
func (l *TicketLock) Lock() {
	ticket := atomic.AddUint64(&l.next, 1) - 1
	for atomic.LoadUint64(&l.serving) != ticket {
	}
}

// Unlock releases the lock, admitting the next waiting ticket holder.
func (l *TicketLock) Unlock() {
	atomic.AddUint64(&l.serving, 1)
}
