package services

import "sync"

// TournamentLocks сериализует мутации одного турнира внутри процесса.
// Несколько терминалов регистрации могут одновременно слать команды по одному
// турниру; блокировка на уровне БД (FOR UPDATE) защищает данные, а этот мьютекс
// дополнительно упорядочивает каскадные побочные эффекты команды до её коммита.
type TournamentLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewTournamentLocks() *TournamentLocks {
	return &TournamentLocks{locks: make(map[int]*sync.Mutex)}
}

// Acquire блокирует турнир и возвращает функцию освобождения.
func (l *TournamentLocks) Acquire(tournamentID int) func() {
	l.mu.Lock()
	m, ok := l.locks[tournamentID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tournamentID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
