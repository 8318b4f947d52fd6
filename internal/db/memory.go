package db

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"foodshare/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory keeps collections in process memory. It backs local runs without a
// database and the handler tests.
type Memory struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memoryCollection)}
}

func (m *Memory) Collection(name string) Collection {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[name]
	if !ok {
		c = &memoryCollection{docs: make(map[string]models.Document)}
		m.collections[name] = c
	}
	return c
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close(context.Context) error { return nil }

type memoryCollection struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]models.Document
}

// copyDoc is shallow: nested values are shared, top-level keys are not.
func copyDoc(d models.Document) models.Document {
	out := make(models.Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func idKey(v any) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(v)
}

func matches(d models.Document, filter Filter) bool {
	for k, want := range filter {
		got, ok := d[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func (c *memoryCollection) Find(_ context.Context, filter Filter) ([]models.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	docs := make([]models.Document, 0)
	for _, key := range c.order {
		if d := c.docs[key]; matches(d, filter) {
			docs = append(docs, copyDoc(d))
		}
	}
	return docs, nil
}

func (c *memoryCollection) EstimatedCount(context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.docs)), nil
}

func (c *memoryCollection) FindByID(_ context.Context, id string) (models.Document, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("db.memory.FindByID: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.docs[oid.Hex()]
	if !ok {
		return nil, nil
	}
	return copyDoc(d), nil
}

func (c *memoryCollection) Insert(_ context.Context, doc models.Document) (*models.InsertResult, error) {
	const op = "db.memory.Insert"

	if doc == nil {
		return nil, fmt.Errorf("%s: nil document", op)
	}

	d := copyDoc(doc)
	if _, ok := d["_id"]; !ok {
		d["_id"] = primitive.NewObjectID()
	}
	key := idKey(d["_id"])

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[key]; exists {
		return nil, fmt.Errorf("%s: duplicate _id %s", op, key)
	}
	c.docs[key] = d
	c.order = append(c.order, key)

	return &models.InsertResult{Acknowledged: true, InsertedID: d["_id"]}, nil
}

func (c *memoryCollection) UpsertByID(_ context.Context, id string, fields models.Document) (*models.UpdateResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("db.memory.UpsertByID: %w", err)
	}
	key := oid.Hex()

	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.docs[key]
	if !ok {
		d := copyDoc(fields)
		d["_id"] = oid
		c.docs[key] = d
		c.order = append(c.order, key)
		return &models.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: oid}, nil
	}

	res := &models.UpdateResult{Acknowledged: true, MatchedCount: 1}
	updated := copyDoc(current)
	for k, v := range fields {
		updated[k] = v
	}
	if !reflect.DeepEqual(current, updated) {
		c.docs[key] = updated
		res.ModifiedCount = 1
	}
	return res, nil
}

func (c *memoryCollection) DeleteByID(_ context.Context, id string) (*models.DeleteResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, fmt.Errorf("db.memory.DeleteByID: %w", err)
	}
	key := oid.Hex()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[key]; !ok {
		return &models.DeleteResult{Acknowledged: true}, nil
	}
	delete(c.docs, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return &models.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}
