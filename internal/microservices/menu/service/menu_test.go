package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"restaurant-ordering/internal/connections/blobstore"
	"restaurant-ordering/internal/domain"
	"restaurant-ordering/internal/microservices/menu/repository"
)

type fakeRepo struct {
	items   map[string]domain.MenuItem
	reviews []domain.Review
}

func newFakeRepo() *fakeRepo { return &fakeRepo{items: map[string]domain.MenuItem{}} }

func (f *fakeRepo) List(_ context.Context, flt repository.Filter) ([]domain.MenuItem, error) {
	out := []domain.MenuItem{}
	for _, m := range f.items {
		if flt.AvailableOnly && !m.IsAvailable {
			continue
		}
		if flt.Category != "" && m.Category != flt.Category {
			continue
		}
		if flt.Query != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(flt.Query)) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRepo) Categories(context.Context) ([]string, error) { return nil, nil }

func (f *fakeRepo) Get(_ context.Context, id string) (domain.MenuItem, error) {
	m, ok := f.items[id]
	if !ok {
		return domain.MenuItem{}, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeRepo) Create(_ context.Context, m domain.MenuItem) error {
	f.items[m.ID] = m
	return nil
}

func (f *fakeRepo) Update(_ context.Context, m domain.MenuItem) error {
	if _, ok := f.items[m.ID]; !ok {
		return domain.ErrNotFound
	}
	f.items[m.ID] = m
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeRepo) ToggleAvailability(_ context.Context, id string) (domain.MenuItem, error) {
	m, ok := f.items[id]
	if !ok {
		return domain.MenuItem{}, domain.ErrNotFound
	}
	m.IsAvailable = !m.IsAvailable
	f.items[id] = m
	return m, nil
}

func (f *fakeRepo) SetImage(_ context.Context, id, url string) error {
	m := f.items[id]
	m.Image = url
	f.items[id] = m
	return nil
}

func (f *fakeRepo) Names(context.Context) (map[string]bool, error) {
	out := map[string]bool{}
	for _, m := range f.items {
		out[strings.ToLower(m.Name)] = true
	}
	return out, nil
}

func (f *fakeRepo) ListReviews(_ context.Context, itemID string) ([]domain.Review, error) {
	out := []domain.Review{}
	for _, r := range f.reviews {
		if r.MenuItemID == itemID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) AddReview(_ context.Context, r domain.Review) error {
	f.reviews = append(f.reviews, r)
	return nil
}

type fakeImages struct{ puts int }

func (f *fakeImages) Put(_ context.Context, ct string, data []byte) (blobstore.Object, error) {
	f.puts++
	key := blobstore.Key(data, ct)
	return blobstore.Object{Key: key, URL: "https://shop.test/images/" + key, ContentType: ct, Size: len(data)}, nil
}

func TestCreateValidates(t *testing.T) {
	svc := NewMenuService(newFakeRepo(), &fakeImages{})
	tests := []struct {
		name string
		in   MenuItemInput
	}{
		{"missing name", MenuItemInput{Price: 10, Category: "Biryani"}},
		{"missing category", MenuItemInput{Name: "Biryani", Price: 10}},
		{"zero price", MenuItemInput{Name: "Biryani", Category: "Biryani"}},
		{"negative price", MenuItemInput{Name: "Biryani", Category: "Biryani", Price: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tt.in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("Create() error = %v, want validation error", err)
			}
		})
	}
}

func TestCreateDefaultsToAvailable(t *testing.T) {
	svc := NewMenuService(newFakeRepo(), &fakeImages{})
	item, err := svc.Create(context.Background(), MenuItemInput{Name: " Veg Biryani ", Price: 140, Category: "Biryani"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !item.IsAvailable || item.Name != "Veg Biryani" || item.ID == "" {
		t.Fatalf("Create() = %+v", item)
	}
}

func TestListAvailableHidesUnavailable(t *testing.T) {
	repo := newFakeRepo()
	svc := NewMenuService(repo, &fakeImages{})
	ctx := context.Background()
	a, _ := svc.Create(ctx, MenuItemInput{Name: "A", Price: 1, Category: "X"})
	if _, err := svc.Create(ctx, MenuItemInput{Name: "B", Price: 1, Category: "X"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ToggleAvailability(ctx, a.ID); err != nil {
		t.Fatal(err)
	}

	got, err := svc.ListAvailable(ctx, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "B" {
		t.Fatalf("ListAvailable() = %+v, want only B", got)
	}
	all, _ := svc.ListAll(ctx, "")
	if len(all) != 2 {
		t.Fatalf("ListAll() len = %d, want 2", len(all))
	}
}

func TestUpdateKeepsImageWhenOmitted(t *testing.T) {
	svc := NewMenuService(newFakeRepo(), &fakeImages{})
	ctx := context.Background()
	item, _ := svc.Create(ctx, MenuItemInput{Name: "A", Price: 1, Category: "X", Image: "https://img/a.jpg"})

	off := false
	got, err := svc.Update(ctx, item.ID, MenuItemInput{Name: "A2", Price: 2, Category: "X", IsAvailable: &off})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Image != "https://img/a.jpg" || got.IsAvailable || got.Price != 2 {
		t.Fatalf("Update() = %+v", got)
	}

	if _, err := svc.Update(ctx, "missing", MenuItemInput{Name: "A", Price: 1, Category: "X"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update(missing) error = %v, want not found", err)
	}
}

func TestUploadImageStoresURL(t *testing.T) {
	repo := newFakeRepo()
	imgs := &fakeImages{}
	svc := NewMenuService(repo, imgs)
	ctx := context.Background()
	item, _ := svc.Create(ctx, MenuItemInput{Name: "A", Price: 1, Category: "X"})

	got, err := svc.UploadImage(ctx, item.ID, "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("UploadImage() error = %v", err)
	}
	if !strings.HasPrefix(got.Image, "https://shop.test/images/") || repo.items[item.ID].Image != got.Image {
		t.Fatalf("image url = %q, stored %q", got.Image, repo.items[item.ID].Image)
	}

	if _, err := svc.UploadImage(ctx, "missing", "image/png", []byte("x")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("UploadImage(missing) error = %v", err)
	}
	if imgs.puts != 1 {
		t.Fatalf("puts = %d, want 1", imgs.puts)
	}
}

func TestAddReview(t *testing.T) {
	svc := NewMenuService(newFakeRepo(), &fakeImages{})
	ctx := context.Background()
	item, _ := svc.Create(ctx, MenuItemInput{Name: "A", Price: 1, Category: "X"})
	caller := domain.Identity{UID: "u1"}

	for _, rating := range []int{0, 6} {
		if _, err := svc.AddReview(ctx, caller, item.ID, ReviewInput{Rating: rating}); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("AddReview(rating=%d) error = %v, want validation error", rating, err)
		}
	}
	if _, err := svc.AddReview(ctx, caller, "missing", ReviewInput{Rating: 4}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AddReview(missing item) error = %v, want not found", err)
	}

	rv, err := svc.AddReview(ctx, caller, item.ID, ReviewInput{Rating: 5, Comment: " great "})
	if err != nil {
		t.Fatalf("AddReview() error = %v", err)
	}
	if rv.UserName != "Anonymous" || rv.Comment != "great" {
		t.Fatalf("AddReview() = %+v", rv)
	}
	list, _ := svc.Reviews(ctx, item.ID)
	if len(list) != 1 {
		t.Fatalf("Reviews() len = %d, want 1", len(list))
	}
}

func TestSeedSkipsExistingNames(t *testing.T) {
	repo := newFakeRepo()
	svc := NewMenuService(repo, &fakeImages{})
	ctx := context.Background()

	items, err := DefaultMenu()
	if err != nil {
		t.Fatalf("DefaultMenu() error = %v", err)
	}
	if len(items) == 0 {
		t.Fatal("default menu is empty")
	}
	if _, err := svc.Create(ctx, MenuItemInput{Name: strings.ToUpper(items[0].Name), Price: 1, Category: "X"}); err != nil {
		t.Fatal(err)
	}

	added, err := svc.Seed(ctx, items)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if added != len(items)-1 {
		t.Fatalf("Seed() added %d, want %d", added, len(items)-1)
	}
	again, _ := svc.Seed(ctx, items)
	if again != 0 {
		t.Fatalf("second Seed() added %d, want 0", again)
	}
}
