package services

import "sync"

// TournamentLocker serializes bracket mutations per tournament. One instance
// is shared by the bracket and progression services: regeneration uses
// TryLock so a second concurrent rebuild is rejected rather than queued,
// while progression uses Lock and waits its turn, which also makes writes to
// the two slots of a shared downstream match atomic with respect to each
// other.
type TournamentLocker struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewTournamentLocker() *TournamentLocker {
	return &TournamentLocker{locks: make(map[int]*sync.Mutex)}
}

func (l *TournamentLocker) lockFor(tournamentID int) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[tournamentID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tournamentID] = m
	}
	return m
}

func (l *TournamentLocker) Lock(tournamentID int) {
	l.lockFor(tournamentID).Lock()
}

func (l *TournamentLocker) TryLock(tournamentID int) bool {
	return l.lockFor(tournamentID).TryLock()
}

func (l *TournamentLocker) Unlock(tournamentID int) {
	l.lockFor(tournamentID).Unlock()
}
