package store_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adjelloud/stockbook/internal/credit"
	"github.com/adjelloud/stockbook/internal/credit/store"
	"github.com/adjelloud/stockbook/internal/storage"
)

func TestStore_RoundTrip(t *testing.T) {
	kv := storage.NewMemory()
	s := store.New(kv)

	userID := uuid.New()
	productID := uuid.New()

	credits := []*credit.Credit{{
		ID:              uuid.New(),
		ProductID:       &productID,
		CustomerName:    "Walid",
		TotalAmount:     1000,
		AmountPaid:      200,
		AmountRemaining: 800,
	}}

	require.NoError(t, s.ReplaceAll(userID, credits))

	got, err := s.List(userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, credits[0], got[0])

	// Another user's partition stays empty.
	other, err := s.List(uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStore_MalformedCollectionDiscarded(t *testing.T) {
	kv := storage.NewMemory()
	userID := uuid.New()

	require.NoError(t, kv.Set("stockbook_"+userID.String()+"_credits", []byte("not an array")))

	got, err := store.New(kv).List(userID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
