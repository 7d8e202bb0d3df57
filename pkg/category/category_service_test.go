package category

import (
	"context"
	"errors"
	"sort"
	"testing"

	"lifecycle/domain"
	"lifecycle/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockCategoryRepository struct {
	rows    map[string]*entities.Category
	deletes int
}

func (m *mockCategoryRepository) GetCategories(_ context.Context, userID string) ([]*entities.Category, error) {
	var out []*entities.Category
	for _, c := range m.rows {
		if c.UserID.String() == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockCategoryRepository) GetCategoryByID(_ context.Context, id string) (*entities.Category, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCategoryRepository) CreateCategory(_ context.Context, c *entities.Category) error {
	m.rows[c.ID.String()] = c
	return nil
}

func (m *mockCategoryRepository) UpdateCategory(_ context.Context, c *entities.Category) error {
	m.rows[c.ID.String()] = c
	return nil
}

func (m *mockCategoryRepository) DeleteCategory(_ context.Context, id string) error {
	m.deletes++
	delete(m.rows, id)
	return nil
}

type staticCounter map[string]int

func (s staticCounter) CountProductsByCategory(context.Context, string) (map[string]int, error) {
	return s, nil
}

var testUser = uuid.MustParse("3a9d4c2e-6b1f-4f8a-9c7d-2e5b8a1f0c63")

func newTestService(counts staticCounter) (CategoryService, *mockCategoryRepository) {
	repo := &mockCategoryRepository{rows: map[string]*entities.Category{}}
	return NewCategoryService(repo, counts), repo
}

func TestCreateCategory(t *testing.T) {
	svc, repo := newTestService(staticCounter{})
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, testUser.String(), domain.CategoryRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrCategoryNameRequired)
	assert.Empty(t, repo.rows)

	res, err := svc.CreateCategory(ctx, testUser.String(), domain.CategoryRequest{Name: " Dairy ", Description: "  "})
	require.NoError(t, err)
	assert.Equal(t, "Dairy", res.Name)
	assert.Nil(t, res.Description)
}

func TestDeleteCategoryInUse(t *testing.T) {
	svc, repo := newTestService(staticCounter{"Dairy": 3})
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, testUser.String(), domain.CategoryRequest{Name: "Dairy"})
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, testUser.String(), c.ID)
	require.Error(t, err)

	var inUse *domain.CategoryInUseError
	require.True(t, errors.As(err, &inUse))
	assert.Equal(t, 3, inUse.Count)
	assert.Equal(t, "3 product(s) use this category. Change their category first.", err.Error())
	assert.Equal(t, 0, repo.deletes)
	assert.Contains(t, repo.rows, c.ID)
}

func TestDeleteUnusedCategory(t *testing.T) {
	svc, repo := newTestService(staticCounter{"Produce": 2})
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, testUser.String(), domain.CategoryRequest{Name: "Dairy"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, testUser.String(), c.ID))
	assert.Equal(t, 1, repo.deletes)
	assert.Empty(t, repo.rows)
}

func TestCategoryOwnership(t *testing.T) {
	svc, repo := newTestService(staticCounter{})
	other := &entities.Category{ID: uuid.New(), UserID: uuid.New(), Name: "Theirs"}
	repo.rows[other.ID.String()] = other

	err := svc.DeleteCategory(context.Background(), testUser.String(), other.ID.String())
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assert.Equal(t, 0, repo.deletes)

	_, err = svc.UpdateCategory(context.Background(), testUser.String(), other.ID.String(), domain.CategoryRequest{Name: "Mine"})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestGetCategoriesWithCounts(t *testing.T) {
	svc, _ := newTestService(staticCounter{"Dairy": 2, "Bakery": 1})
	ctx := context.Background()

	for _, name := range []string{"Dairy", "Bakery", "Frozen"} {
		_, err := svc.CreateCategory(ctx, testUser.String(), domain.CategoryRequest{Name: name})
		require.NoError(t, err)
	}

	list, err := svc.GetCategories(ctx, testUser.String())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Bakery", list[0].Name)
	assert.Equal(t, 1, list[0].ProductCount)
	assert.Equal(t, "Dairy", list[1].Name)
	assert.Equal(t, 2, list[1].ProductCount)
	assert.Equal(t, 0, list[2].ProductCount)
}

func TestUpdateCategory(t *testing.T) {
	svc, _ := newTestService(staticCounter{"Milk": 4})
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, testUser.String(), domain.CategoryRequest{Name: "Dairy", Description: "cold"})
	require.NoError(t, err)

	res, err := svc.UpdateCategory(ctx, testUser.String(), c.ID, domain.CategoryRequest{Name: " Milk ", Description: ""})
	require.NoError(t, err)
	assert.Equal(t, "Milk", res.Name)
	assert.Nil(t, res.Description)
	assert.Equal(t, 4, res.ProductCount)
}
