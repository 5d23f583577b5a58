package user

import (
	"context"

	domain "github.com/Zhima-Mochi/minishop-orders/app/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-orders/app/internal/pkg/logging"
	"go.uber.org/zap"
)

// Service provisions accounts and exposes balance reads. Authentication
// and roles are out of scope; orders only need an owner with a balance.
type Service struct {
	users domain.Repository
}

func NewService(users domain.Repository) *Service {
	return &Service{users: users}
}

func (s *Service) Create(ctx context.Context, name string, balanceCents int64) (*domain.User, error) {
	u, err := domain.New(name, balanceCents)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("user_created",
		zap.Int64("user_id", u.ID),
		zap.String("name", u.Name),
	)
	return u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.FindAll(ctx)
}
