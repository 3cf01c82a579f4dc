package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"restaurant-ordering/internal/connections/blobstore"
	"restaurant-ordering/internal/domain"
	"restaurant-ordering/internal/microservices/menu/repository"
)

// ImageStore keeps uploaded images and hands back their public URL.
type ImageStore interface {
	Put(ctx context.Context, contentType string, data []byte) (blobstore.Object, error)
}

type MenuServiceInterface interface {
	ListAvailable(ctx context.Context, category, query string) ([]domain.MenuItem, error)
	ListAll(ctx context.Context, query string) ([]domain.MenuItem, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (domain.MenuItem, error)
	Create(ctx context.Context, in MenuItemInput) (domain.MenuItem, error)
	Update(ctx context.Context, id string, in MenuItemInput) (domain.MenuItem, error)
	Delete(ctx context.Context, id string) error
	ToggleAvailability(ctx context.Context, id string) (domain.MenuItem, error)
	UploadImage(ctx context.Context, id, contentType string, data []byte) (domain.MenuItem, error)

	Reviews(ctx context.Context, itemID string) ([]domain.Review, error)
	AddReview(ctx context.Context, caller domain.Identity, itemID string, in ReviewInput) (domain.Review, error)
}

type MenuItemInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	IsVeg       bool    `json:"is_veg"`
	IsAvailable *bool   `json:"is_available,omitempty"`
}

func (in *MenuItemInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	switch {
	case in.Name == "":
		return domain.Invalid("name is required")
	case in.Category == "":
		return domain.Invalid("category is required")
	case in.Price <= 0:
		return domain.Invalid("price must be greater than zero")
	}
	return nil
}

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type MenuService struct {
	repo   repository.MenuRepositoryInterface
	images ImageStore
	now    func() time.Time
}

func NewMenuService(repo repository.MenuRepositoryInterface, images ImageStore) *MenuService {
	return &MenuService{repo: repo, images: images, now: time.Now}
}

func (s *MenuService) ListAvailable(ctx context.Context, category, query string) ([]domain.MenuItem, error) {
	return s.repo.List(ctx, repository.Filter{
		Category:      strings.TrimSpace(category),
		Query:         strings.TrimSpace(query),
		AvailableOnly: true,
	})
}

func (s *MenuService) ListAll(ctx context.Context, query string) ([]domain.MenuItem, error) {
	return s.repo.List(ctx, repository.Filter{Query: strings.TrimSpace(query)})
}

func (s *MenuService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *MenuService) Get(ctx context.Context, id string) (domain.MenuItem, error) {
	return s.repo.Get(ctx, id)
}

func (s *MenuService) Create(ctx context.Context, in MenuItemInput) (domain.MenuItem, error) {
	if err := in.normalize(); err != nil {
		return domain.MenuItem{}, err
	}
	now := s.now().UTC()
	item := domain.MenuItem{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Image:       in.Image,
		IsVeg:       in.IsVeg,
		IsAvailable: in.IsAvailable == nil || *in.IsAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return domain.MenuItem{}, err
	}
	return item, nil
}

func (s *MenuService) Update(ctx context.Context, id string, in MenuItemInput) (domain.MenuItem, error) {
	if err := in.normalize(); err != nil {
		return domain.MenuItem{}, err
	}
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.MenuItem{}, err
	}
	item.Name = in.Name
	item.Description = in.Description
	item.Price = in.Price
	item.Category = in.Category
	item.IsVeg = in.IsVeg
	if in.Image != "" {
		item.Image = in.Image
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}
	item.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, item); err != nil {
		return domain.MenuItem{}, err
	}
	return item, nil
}

func (s *MenuService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *MenuService) ToggleAvailability(ctx context.Context, id string) (domain.MenuItem, error) {
	return s.repo.ToggleAvailability(ctx, id)
}

func (s *MenuService) UploadImage(ctx context.Context, id, contentType string, data []byte) (domain.MenuItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.MenuItem{}, err
	}
	obj, err := s.images.Put(ctx, contentType, data)
	if err != nil {
		return domain.MenuItem{}, err
	}
	if err := s.repo.SetImage(ctx, id, obj.URL); err != nil {
		return domain.MenuItem{}, err
	}
	item.Image = obj.URL
	return item, nil
}

func (s *MenuService) Reviews(ctx context.Context, itemID string) ([]domain.Review, error) {
	if _, err := s.repo.Get(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListReviews(ctx, itemID)
}

func (s *MenuService) AddReview(ctx context.Context, caller domain.Identity, itemID string, in ReviewInput) (domain.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return domain.Review{}, domain.Invalid("rating must be between 1 and 5")
	}
	if _, err := s.repo.Get(ctx, itemID); err != nil {
		return domain.Review{}, err
	}
	name := caller.Name
	if name == "" {
		name = "Anonymous"
	}
	rv := domain.Review{
		ID:         uuid.NewString(),
		MenuItemID: itemID,
		UserID:     caller.UID,
		UserName:   name,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.AddReview(ctx, rv); err != nil {
		return domain.Review{}, fmt.Errorf("add review: %w", err)
	}
	return rv, nil
}
