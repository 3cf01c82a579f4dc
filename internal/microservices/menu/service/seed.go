package service

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed seed_menu.yaml
var defaultMenu []byte

type seedItem struct {
	Name        string  `yaml:"name"`
	Price       float64 `yaml:"price"`
	Category    string  `yaml:"category"`
	Description string  `yaml:"description"`
	Image       string  `yaml:"image"`
	IsVeg       bool    `yaml:"is_veg"`
}

// DefaultMenu parses the embedded starter menu.
func DefaultMenu() ([]MenuItemInput, error) {
	var items []seedItem
	if err := yaml.Unmarshal(defaultMenu, &items); err != nil {
		return nil, fmt.Errorf("parse default menu: %w", err)
	}
	out := make([]MenuItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, MenuItemInput{
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			Category:    it.Category,
			Image:       it.Image,
			IsVeg:       it.IsVeg,
		})
	}
	return out, nil
}

// Seed inserts every item whose name is not on the menu yet and returns
// how many were added.
func (s *MenuService) Seed(ctx context.Context, items []MenuItemInput) (int, error) {
	existing, err := s.repo.Names(ctx)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, in := range items {
		key := strings.ToLower(strings.TrimSpace(in.Name))
		if existing[key] {
			continue
		}
		if _, err := s.Create(ctx, in); err != nil {
			return added, fmt.Errorf("seed %q: %w", in.Name, err)
		}
		existing[key] = true
		added++
	}
	return added, nil
}
