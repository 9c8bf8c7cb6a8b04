package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/speechpath/speechpath-server/internal/domain"
)

type audioFileRepository struct {
	s *store
}

func (r *audioFileRepository) Create(ctx context.Context, file *domain.AudioFile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	cp := *file
	r.s.audio[file.ID] = &cp
	r.s.nextSeq(file.ID)
	return nil
}

func (r *audioFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AudioFile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.audio[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *audioFileRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.AudioFile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var files []*domain.AudioFile
	for _, f := range r.s.audio {
		if f.UserID == userID {
			cp := *f
			files = append(files, &cp)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return r.s.seqOf[files[i].ID] > r.s.seqOf[files[j].ID]
	})
	return files, nil
}

func (r *audioFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.audio, id)
	return nil
}
