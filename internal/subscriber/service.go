package subscriber

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-coinova/internal/subscriber/entity"
	"github.com/ovaphlow/pitchfork/service-coinova/internal/subscriber/repo"
	"github.com/ovaphlow/pitchfork/service-coinova/pkg/utilities"
)

// ErrAlreadySubscribed is the conflict outcome: the email is already registered.
var ErrAlreadySubscribed = errors.New("email already subscribed")

// Repository is the storage the workflow needs. Insert must report a
// uniqueness conflict on email as repo.ErrDuplicateEmail.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*entity.Subscriber, error)
	Insert(ctx context.Context, s *entity.Subscriber) error
}

// Welcomer sends the welcome email.
type Welcomer interface {
	SendWelcome(ctx context.Context, name, email string) error
}

// Service runs the subscription workflow: dedupe, persist, welcome.
type Service struct {
	repo     Repository
	welcomer Welcomer
	logger   *zap.SugaredLogger
	now      func() time.Time
	newID    func() string
}

func NewService(r Repository, w Welcomer, logger *zap.SugaredLogger) *Service {
	return &Service{
		repo:     r,
		welcomer: w,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    utilities.NewSnowflakeID,
	}
}

// Subscribe registers email and sends the welcome message.
// The lookup only short-circuits the common case; the store's unique index
// decides concurrent registrations, and its conflict maps to ErrAlreadySubscribed too.
// A failed send leaves the stored subscriber in place.
func (s *Service) Subscribe(ctx context.Context, name, email, phone string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup subscriber: %w", err)
	}
	if existing != nil {
		s.logger.Debugw("subscribe rejected, email exists", "email", email)
		return ErrAlreadySubscribed
	}

	sub := &entity.Subscriber{
		ID:        s.newID(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, sub); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			s.logger.Debugw("subscribe lost insert race", "email", email)
			return ErrAlreadySubscribed
		}
		return fmt.Errorf("save subscriber: %w", err)
	}
	s.logger.Infow("subscriber saved", "id", sub.ID)

	if err := s.welcomer.SendWelcome(ctx, name, email); err != nil {
		return fmt.Errorf("send welcome email: %w", err)
	}
	return nil
}
