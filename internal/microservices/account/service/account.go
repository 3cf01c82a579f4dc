package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"restaurant-ordering/internal/connections/blobstore"
	"restaurant-ordering/internal/domain"
	"restaurant-ordering/internal/microservices/account/repository"
)

type ImageStore interface {
	Put(ctx context.Context, contentType string, data []byte) (blobstore.Object, error)
}

type AccountServiceInterface interface {
	EnsureUser(ctx context.Context, id domain.Identity) error
	Profile(ctx context.Context, caller domain.Identity) (domain.User, error)
	UpdateProfile(ctx context.Context, caller domain.Identity, in ProfileInput) (domain.User, error)
	UploadPhoto(ctx context.Context, caller domain.Identity, contentType string, data []byte) (domain.User, error)
	RegisterToken(ctx context.Context, caller domain.Identity, in TokenInput) (domain.DeviceToken, error)
}

type ProfileInput struct {
	Name             string          `json:"name"`
	Phone            string          `json:"phone"`
	AlternativePhone string          `json:"alternative_phone"`
	Address          *domain.Address `json:"address,omitempty"`
}

type TokenInput struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type AccountService struct {
	repo   repository.AccountRepositoryInterface
	images ImageStore
	now    func() time.Time
}

func NewAccountService(repo repository.AccountRepositoryInterface, images ImageStore) *AccountService {
	return &AccountService{repo: repo, images: images, now: time.Now}
}

func (s *AccountService) EnsureUser(ctx context.Context, id domain.Identity) error {
	return s.repo.Ensure(ctx, domain.User{
		ID:      id.UID,
		Name:    id.Name,
		Email:   id.Email,
		Phone:   id.Phone,
		IsAdmin: id.IsAdmin,
	})
}

// Profile returns the stored profile, creating it from the token claims if
// the row is missing.
func (s *AccountService) Profile(ctx context.Context, caller domain.Identity) (domain.User, error) {
	u, err := s.repo.Get(ctx, caller.UID)
	if errors.Is(err, domain.ErrNotFound) {
		if err := s.EnsureUser(ctx, caller); err != nil {
			return domain.User{}, err
		}
		return s.repo.Get(ctx, caller.UID)
	}
	return u, err
}

func (s *AccountService) UpdateProfile(ctx context.Context, caller domain.Identity, in ProfileInput) (domain.User, error) {
	u, err := s.Profile(ctx, caller)
	if err != nil {
		return domain.User{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.User{}, domain.Invalid("name is required")
	}
	u.Name = name
	u.Phone = strings.TrimSpace(in.Phone)
	u.AlternativePhone = strings.TrimSpace(in.AlternativePhone)
	if in.Address != nil {
		a := domain.Address{
			Street:   strings.TrimSpace(in.Address.Street),
			City:     strings.TrimSpace(in.Address.City),
			Pincode:  strings.TrimSpace(in.Address.Pincode),
			Landmark: strings.TrimSpace(in.Address.Landmark),
		}
		if !a.Complete() {
			return domain.User{}, domain.Invalid("street, city and pincode are required")
		}
		u.Address = &a
	}
	u.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *AccountService) UploadPhoto(ctx context.Context, caller domain.Identity, contentType string, data []byte) (domain.User, error) {
	u, err := s.Profile(ctx, caller)
	if err != nil {
		return domain.User{}, err
	}
	obj, err := s.images.Put(ctx, contentType, data)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.repo.SetPhoto(ctx, u.ID, obj.URL); err != nil {
		return domain.User{}, err
	}
	u.PhotoURL = obj.URL
	return u, nil
}

func (s *AccountService) RegisterToken(ctx context.Context, caller domain.Identity, in TokenInput) (domain.DeviceToken, error) {
	tok := strings.TrimSpace(in.Token)
	if tok == "" {
		return domain.DeviceToken{}, domain.Invalid("token is required")
	}
	platform := strings.ToLower(strings.TrimSpace(in.Platform))
	if platform == "" {
		platform = "web"
	}
	t := domain.DeviceToken{
		Token:     tok,
		UserID:    caller.UID,
		Platform:  platform,
		IsAdmin:   caller.IsAdmin,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.repo.UpsertToken(ctx, t); err != nil {
		return domain.DeviceToken{}, err
	}
	return t, nil
}
