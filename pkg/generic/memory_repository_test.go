package generic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type widget struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
	Tags []string           `bson:"tags"`
}

func (w *widget) GetID() primitive.ObjectID   { return w.ID }
func (w *widget) SetID(id primitive.ObjectID) { w.ID = id }

func TestMemoryRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBaseRepository[*widget]()

	w := &widget{Name: "first"}
	require.NoError(t, repo.Create(ctx, w))
	require.False(t, w.ID.IsZero())

	got, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)

	// returned values are copies
	got.Name = "mutated"
	again, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", again.Name)

	w.Name = "renamed"
	require.NoError(t, repo.Update(ctx, w))
	again, err = repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", again.Name)

	require.NoError(t, repo.Delete(ctx, w.ID))
	_, err = repo.GetByID(ctx, w.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryCreateDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBaseRepository[*widget]()

	w := &widget{Name: "a"}
	require.NoError(t, repo.Create(ctx, w))
	assert.ErrorIs(t, repo.Create(ctx, &widget{ID: w.ID, Name: "b"}), ErrDuplicate)
}

func TestMemoryRepositoryUpdateMissing(t *testing.T) {
	repo := NewMemoryBaseRepository[*widget]()
	err := repo.Update(context.Background(), &widget{ID: primitive.NewObjectID()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBaseRepository[*widget]()
	for _, name := range []string{"a", "b", "c", "b"} {
		require.NoError(t, repo.Create(ctx, &widget{Name: name}))
	}

	isB := func(w *widget) bool { return w.Name == "b" }

	n, err := repo.Count(ctx, isB)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	first, err := repo.FindOne(ctx, func(w *widget) bool { return w.Name == "c" })
	require.NoError(t, err)
	assert.Equal(t, "c", first.Name)

	_, err = repo.FindOne(ctx, func(w *widget) bool { return w.Name == "z" })
	assert.ErrorIs(t, err, ErrNotFound)

	changed, err := repo.Mutate(ctx, isB, func(w *widget) { w.Tags = []string{"seen"} })
	require.NoError(t, err)
	assert.EqualValues(t, 2, changed)

	bs, err := repo.Find(ctx, isB)
	require.NoError(t, err)
	for _, w := range bs {
		assert.Equal(t, []string{"seen"}, w.Tags)
	}

	removed, err := repo.DeleteMany(ctx, isB)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	all, err := repo.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, "c", all[1].Name)
}

func TestSortBy(t *testing.T) {
	items := []int{3, 1, 2}
	SortBy(items, func(a, b int) bool { return a < b })
	assert.Equal(t, []int{1, 2, 3}, items)
}
