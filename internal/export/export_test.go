package export_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	creditStore "github.com/adjelloud/stockbook/internal/credit/store"
	"github.com/adjelloud/stockbook/internal/export"
	"github.com/adjelloud/stockbook/internal/product"
	productStore "github.com/adjelloud/stockbook/internal/product/store"
	"github.com/adjelloud/stockbook/internal/storage"
	"github.com/adjelloud/stockbook/internal/store"
	"github.com/adjelloud/stockbook/internal/user"
)

func seededStore(t *testing.T) (*store.Store, *user.User) {
	t.Helper()

	kv := storage.NewMemory()
	s := store.New(kv, productStore.New(kv), creditStore.New(kv))

	u, err := s.CreateUser(user.CreateParams{Username: "amine", FullName: "Amine Djelloud"})
	require.NoError(t, err)
	s.SetActiveUser(u)

	_, err = s.AddProduct(product.CreateParams{Name: "Dell XPS 13", SalePrice: 1000})
	require.NoError(t, err)

	return s, u
}

func TestBuild(t *testing.T) {
	s, u := seededStore(t)
	svc := export.NewService(s)

	b, err := svc.Build(u.ID)
	require.NoError(t, err)

	assert.Equal(t, u.ID, b.User.ID)
	require.Len(t, b.Products, 1)
	assert.Equal(t, "Dell XPS 13", b.Products[0].Name)
	assert.Empty(t, b.Credits)
	assert.Equal(t, 1, b.Analytics.Products.Total)
	assert.Equal(t, export.FormatVersion, b.Version)
	assert.False(t, b.ExportDate.IsZero())
}

func TestBuild_UnknownUser(t *testing.T) {
	s, _ := seededStore(t)

	_, err := export.NewService(s).Build(uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWriteFile(t *testing.T) {
	s, u := seededStore(t)
	svc := export.NewService(s)

	b, err := svc.Build(u.ID)
	require.NoError(t, err)

	dir := t.TempDir()

	path, err := svc.WriteFile(b, dir)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got export.Bundle
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "amine", got.User.Username)
	require.Len(t, got.Products, 1)
	assert.Equal(t, b.Products[0].ID, got.Products[0].ID)
	assert.Equal(t, export.FormatVersion, got.Version)
}
