package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/speechpath/speechpath-server/internal/domain"
)

type authTokenRepository struct {
	s *store
}

func (r *authTokenRepository) Create(ctx context.Context, token *domain.AuthToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.tokens {
		if t.TokenHash == token.TokenHash {
			return domain.ErrDuplicate
		}
	}
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	cp := *token
	r.s.tokens[token.ID] = &cp
	r.s.nextSeq(token.ID)
	return nil
}

func (r *authTokenRepository) GetByHash(ctx context.Context, hash string, kind domain.TokenKind) (*domain.AuthToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, t := range r.s.tokens {
		if t.TokenHash == hash && t.Kind == kind && !t.Used {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *authTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Used = true
	return nil
}

func (r *authTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.tokens, id)
	return nil
}

func (r *authTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID, kind domain.TokenKind) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, t := range r.s.tokens {
		if t.UserID == userID && t.Kind == kind {
			delete(r.s.tokens, id)
		}
	}
	return nil
}

func (r *authTokenRepository) DeleteExpired(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	for id, t := range r.s.tokens {
		if t.Expired(now) {
			delete(r.s.tokens, id)
		}
	}
	return nil
}
