package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"restaurant-ordering/internal/domain"
	"restaurant-ordering/internal/microservices/contact/repository"
)

type ContactServiceInterface interface {
	Submit(ctx context.Context, in MessageInput) (domain.Message, error)
	List(ctx context.Context, status domain.MessageStatus) ([]domain.Message, error)
	MarkRead(ctx context.Context, id string) error
	UnreadCount(ctx context.Context) (int, error)
}

type MessageInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ContactService struct {
	repo repository.MessageRepositoryInterface
	now  func() time.Time
}

func NewContactService(repo repository.MessageRepositoryInterface) *ContactService {
	return &ContactService{repo: repo, now: time.Now}
}

func (s *ContactService) Submit(ctx context.Context, in MessageInput) (domain.Message, error) {
	m := domain.Message{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Subject:   strings.TrimSpace(in.Subject),
		Body:      strings.TrimSpace(in.Message),
		Status:    domain.MessageUnread,
		CreatedAt: s.now().UTC(),
	}
	required := []struct{ field, value string }{
		{"name", m.Name}, {"email", m.Email}, {"subject", m.Subject}, {"message", m.Body},
	}
	for _, r := range required {
		if r.value == "" {
			return domain.Message{}, domain.Invalid(fmt.Sprintf("%s is required", r.field))
		}
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return domain.Message{}, domain.Invalid("email is not valid")
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return domain.Message{}, err
	}
	return m, nil
}

func (s *ContactService) List(ctx context.Context, status domain.MessageStatus) ([]domain.Message, error) {
	switch status {
	case "", domain.MessageRead, domain.MessageUnread:
	default:
		return nil, domain.Invalid(fmt.Sprintf("unknown status %q", status))
	}
	return s.repo.List(ctx, status)
}

func (s *ContactService) MarkRead(ctx context.Context, id string) error {
	return s.repo.SetStatus(ctx, id, domain.MessageRead)
}

func (s *ContactService) UnreadCount(ctx context.Context) (int, error) {
	return s.repo.CountUnread(ctx)
}
