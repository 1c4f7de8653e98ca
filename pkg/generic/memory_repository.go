package generic

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryBaseRepository keeps entities in a map. Stored values are bson
// round-tripped on the way in and out so callers never share state with the store,
// which also gives the same field and time truncation behavior as MongoDB.
// This implementation is safe for concurrent use.
type MemoryBaseRepository[T Entity] struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID][]byte
	// order keeps insertion order for stable iteration
	order []primitive.ObjectID
}

func NewMemoryBaseRepository[T Entity]() *MemoryBaseRepository[T] {
	return &MemoryBaseRepository[T]{items: make(map[primitive.ObjectID][]byte)}
}

func (r *MemoryBaseRepository[T]) Create(_ context.Context, entity T) error {
	if entity.GetID().IsZero() {
		entity.SetID(primitive.NewObjectID())
	}
	data, err := bson.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to encode entity: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[entity.GetID()]; exists {
		return ErrDuplicate
	}
	r.items[entity.GetID()] = data
	r.order = append(r.order, entity.GetID())
	return nil
}

func (r *MemoryBaseRepository[T]) GetByID(_ context.Context, id primitive.ObjectID) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return decode[T](data)
}

func (r *MemoryBaseRepository[T]) Update(_ context.Context, entity T) error {
	data, err := bson.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to encode entity: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[entity.GetID()]; !ok {
		return ErrNotFound
	}
	r.items[entity.GetID()] = data
	return nil
}

func (r *MemoryBaseRepository[T]) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(id)
	return nil
}

// Find returns every entity matching pred in insertion order. A nil pred matches all.
func (r *MemoryBaseRepository[T]) Find(_ context.Context, pred func(T) bool) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []T{}
	for _, id := range r.order {
		entity, err := decode[T](r.items[id])
		if err != nil {
			return nil, err
		}
		if pred == nil || pred(entity) {
			out = append(out, entity)
		}
	}
	return out, nil
}

// FindOne returns the first match or ErrNotFound
func (r *MemoryBaseRepository[T]) FindOne(ctx context.Context, pred func(T) bool) (T, error) {
	all, err := r.Find(ctx, pred)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(all) == 0 {
		var zero T
		return zero, ErrNotFound
	}
	return all[0], nil
}

// Count returns the number of matches
func (r *MemoryBaseRepository[T]) Count(ctx context.Context, pred func(T) bool) (int64, error) {
	all, err := r.Find(ctx, pred)
	return int64(len(all)), err
}

// DeleteMany removes every match and returns how many went
func (r *MemoryBaseRepository[T]) DeleteMany(ctx context.Context, pred func(T) bool) (int64, error) {
	matches, err := r.Find(ctx, pred)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entity := range matches {
		r.remove(entity.GetID())
	}
	return int64(len(matches)), nil
}

// Mutate applies fn to every match under the write lock and stores the result
func (r *MemoryBaseRepository[T]) Mutate(_ context.Context, pred func(T) bool, fn func(T)) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, id := range r.order {
		entity, err := decode[T](r.items[id])
		if err != nil {
			return n, err
		}
		if pred != nil && !pred(entity) {
			continue
		}
		fn(entity)
		data, err := bson.Marshal(entity)
		if err != nil {
			return n, fmt.Errorf("failed to encode entity: %w", err)
		}
		r.items[id] = data
		n++
	}
	return n, nil
}

// SortBy orders items in place using less
func SortBy[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

func (r *MemoryBaseRepository[T]) remove(id primitive.ObjectID) {
	if _, ok := r.items[id]; !ok {
		return
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func decode[T Entity](data []byte) (T, error) {
	var entity T
	if err := bson.Unmarshal(data, &entity); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to decode entity: %w", err)
	}
	return entity, nil
}
