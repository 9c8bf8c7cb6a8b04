// Package memory provides a volatile, process-local implementation of the
// repository interfaces. It exists for demos and tests; nothing survives a
// restart. Selected with STORAGE_DRIVER=memory.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/speechpath/speechpath-server/internal/domain"
	"github.com/speechpath/speechpath-server/internal/repository"
)

// store holds every table in plain maps guarded by one mutex. Entries are
// copied on the way in and out so callers never alias stored values.
type store struct {
	mu sync.RWMutex

	users    map[uuid.UUID]*domain.User
	tokens   map[uuid.UUID]*domain.AuthToken
	audio    map[uuid.UUID]*domain.AudioFile
	analyses map[uuid.UUID]*domain.SpeechAnalysis
	reports  map[uuid.UUID]*domain.Report

	// seq orders records with identical creation timestamps so that
	// newest-first listings are stable.
	seq   uint64
	seqOf map[uuid.UUID]uint64
}

func newStore() *store {
	return &store{
		users:    make(map[uuid.UUID]*domain.User),
		tokens:   make(map[uuid.UUID]*domain.AuthToken),
		audio:    make(map[uuid.UUID]*domain.AudioFile),
		analyses: make(map[uuid.UUID]*domain.SpeechAnalysis),
		reports:  make(map[uuid.UUID]*domain.Report),
		seqOf:    make(map[uuid.UUID]uint64),
	}
}

func (s *store) nextSeq(id uuid.UUID) {
	s.seq++
	s.seqOf[id] = s.seq
}

func NewRepositories() *repository.Repositories {
	s := newStore()
	return &repository.Repositories{
		User:      &userRepository{s: s},
		AuthToken: &authTokenRepository{s: s},
		AudioFile: &audioFileRepository{s: s},
		Analysis:  &analysisRepository{s: s},
		Report:    &reportRepository{s: s},
	}
}
