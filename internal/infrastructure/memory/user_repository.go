package memory

import (
	"context"
	"sort"

	"github.com/Zhima-Mochi/minishop-orders/app/internal/domain/user"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]*user.User, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*user.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *userRepository) Save(ctx context.Context, u *user.User) error {
	_ = ctx
	if u == nil {
		return user.ErrNotFound
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if u.BalanceCents < 0 {
		return user.ErrInvalidBalance
	}
	if u.ID == 0 {
		r.store.userSeq++
		u.ID = r.store.userSeq
	}
	r.store.users[u.ID] = u.Clone()
	return nil
}
