package docstoretest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WonderFarm/internal/docstore"
)

func TestMemStore_FindFiltersAndOrders(t *testing.T) {
	s := NewMemStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Put("orders", "a", []byte(`{"buyer":{"userId":"1"}}`), base)
	s.Put("orders", "b", []byte(`{"buyer":{"userId":"1"}}`), base.Add(time.Hour))
	s.Put("orders", "c", []byte(`{"buyer":{"userId":"2"}}`), base.Add(2*time.Hour))

	docs, err := s.Find(context.Background(), "orders", docstore.Filter{Path: []string{"buyer", "userId"}, Value: "1"}, docstore.NewestFirst)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].ID)
	assert.Equal(t, "a", docs[1].ID)
}

func TestMemStore_FindNumericAndFoldCase(t *testing.T) {
	s := NewMemStore()
	now := time.Now()
	s.Put("products", "1", []byte(`{"category":"Silo","price":5}`), now)
	s.Put("products", "2", []byte(`{"category":"granero","price":7}`), now)

	docs, err := s.Find(context.Background(), "products", docstore.Filter{Path: []string{"category"}, Value: "silo", FoldCase: true}, docstore.OldestFirst)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "1", docs[0].ID)

	docs, err = s.Find(context.Background(), "products", docstore.Filter{Path: []string{"price"}, Value: "7"}, docstore.OldestFirst)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "2", docs[0].ID)

	docs, err = s.Find(context.Background(), "products", docstore.Filter{Path: []string{"missing"}, Value: "x"}, docstore.OldestFirst)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemStore_InsertAssignsIdentity(t *testing.T) {
	s := NewMemStore()
	fixed := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return fixed }

	d, err := s.Insert(context.Background(), "orders", map[string]any{"total": 10})
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, fixed, d.CreatedAt)

	got, err := s.Get(context.Background(), "orders", d.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":10}`, string(got.Body))

	_, err = s.Get(context.Background(), "orders", "nope")
	assert.ErrorIs(t, err, docstore.ErrNoDocument)
}

func TestMemStore_Fail(t *testing.T) {
	s := NewMemStore()
	s.Fail = errors.New("unreachable")

	_, err := s.List(context.Background(), "products", docstore.OldestFirst)
	assert.EqualError(t, err, "unreachable")
	assert.Error(t, s.Ping(context.Background()))
}
