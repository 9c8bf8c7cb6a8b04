package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/speechpath/speechpath-server/internal/domain"
)

type reportRepository struct {
	s *store
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	cp := *report
	r.s.reports[report.ID] = &cp
	r.s.nextSeq(report.ID)
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rep, ok := r.s.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rep
	return &cp, nil
}

func (r *reportRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Report, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var reports []*domain.Report
	for _, rep := range r.s.reports {
		if rep.UserID == userID {
			cp := *rep
			reports = append(reports, &cp)
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		return r.s.seqOf[reports[i].ID] > r.s.seqOf[reports[j].ID]
	})
	return reports, nil
}

func (r *reportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.reports, id)
	return nil
}
