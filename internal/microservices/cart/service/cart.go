package service

import (
	"context"
	"fmt"

	"restaurant-ordering/internal/domain"
	"restaurant-ordering/internal/microservices/cart/repository"
)

// MenuReader looks up the current state of a menu item.
type MenuReader interface {
	Get(ctx context.Context, id string) (domain.MenuItem, error)
}

type CartServiceInterface interface {
	Get(ctx context.Context, userID string) (domain.Cart, error)
	Add(ctx context.Context, userID, menuItemID string, qty int) (domain.Cart, error)
	SetQuantity(ctx context.Context, userID, menuItemID string, qty int) (domain.Cart, error)
	Remove(ctx context.Context, userID, menuItemID string) (domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

const maxLineQuantity = 50

type CartService struct {
	repo repository.CartRepositoryInterface
	menu MenuReader
}

func NewCartService(repo repository.CartRepositoryInterface, menu MenuReader) *CartService {
	return &CartService{repo: repo, menu: menu}
}

func (s *CartService) Get(ctx context.Context, userID string) (domain.Cart, error) {
	items, err := s.repo.Items(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	return domain.NewCart(userID, items), nil
}

func (s *CartService) Add(ctx context.Context, userID, menuItemID string, qty int) (domain.Cart, error) {
	if qty == 0 {
		qty = 1
	}
	if qty < 0 || qty > maxLineQuantity {
		return domain.Cart{}, domain.Invalid(fmt.Sprintf("quantity must be between 1 and %d", maxLineQuantity))
	}
	item, err := s.menu.Get(ctx, menuItemID)
	if err != nil {
		return domain.Cart{}, err
	}
	if !item.IsAvailable {
		return domain.Cart{}, domain.Invalid(fmt.Sprintf("%s is currently unavailable", item.Name))
	}
	lines, err := s.repo.Items(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	for _, l := range lines {
		if l.MenuItemID == item.ID && l.Quantity+qty > maxLineQuantity {
			return domain.Cart{}, domain.Invalid(fmt.Sprintf("at most %d of %s per order", maxLineQuantity, item.Name))
		}
	}
	err = s.repo.Add(ctx, userID, domain.CartItem{
		MenuItemID: item.ID,
		Name:       item.Name,
		Price:      item.Price,
		Quantity:   qty,
		Image:      item.Image,
	})
	if err != nil {
		return domain.Cart{}, err
	}
	return s.Get(ctx, userID)
}

// SetQuantity overwrites a line's quantity; zero or less drops the line.
func (s *CartService) SetQuantity(ctx context.Context, userID, menuItemID string, qty int) (domain.Cart, error) {
	if qty <= 0 {
		return s.Remove(ctx, userID, menuItemID)
	}
	if qty > maxLineQuantity {
		return domain.Cart{}, domain.Invalid(fmt.Sprintf("quantity must be between 1 and %d", maxLineQuantity))
	}
	if err := s.repo.SetQuantity(ctx, userID, menuItemID, qty); err != nil {
		return domain.Cart{}, err
	}
	return s.Get(ctx, userID)
}

func (s *CartService) Remove(ctx context.Context, userID, menuItemID string) (domain.Cart, error) {
	if err := s.repo.Remove(ctx, userID, menuItemID); err != nil {
		return domain.Cart{}, err
	}
	return s.Get(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}
