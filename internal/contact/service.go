package contact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-coinova/internal/contact/entity"
	"github.com/ovaphlow/pitchfork/service-coinova/pkg/utilities"
)

type Repository interface {
	Insert(ctx context.Context, m *entity.ContactMessage) error
}

// Notifier sends the two contact-form emails.
type Notifier interface {
	SendSupportNotice(ctx context.Context, name, email, message string) error
	SendContactAck(ctx context.Context, name, email string) error
}

// Service runs the contact workflow: persist, notify support, acknowledge.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *zap.SugaredLogger
	now      func() time.Time
	newID    func() string
}

func NewService(r Repository, n Notifier, logger *zap.SugaredLogger) *Service {
	return &Service{
		repo:     r,
		notifier: n,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    utilities.NewKSUID,
	}
}

// Submit stores the message, then notifies support and acknowledges the
// submitter, in that order. The acknowledgement is never attempted when the
// support notice fails.
func (s *Service) Submit(ctx context.Context, name, email, message string) error {
	m := &entity.ContactMessage{
		ID:        s.newID(),
		Name:      name,
		Email:     email,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return fmt.Errorf("save contact message: %w", err)
	}
	s.logger.Infow("contact message saved", "id", m.ID)

	if err := s.notifier.SendSupportNotice(ctx, name, email, message); err != nil {
		return fmt.Errorf("send support notice: %w", err)
	}
	if err := s.notifier.SendContactAck(ctx, name, email); err != nil {
		return fmt.Errorf("send contact acknowledgement: %w", err)
	}
	return nil
}
