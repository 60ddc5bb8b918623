package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adjelloud/stockbook/internal/analytics"
	"github.com/adjelloud/stockbook/internal/credit"
	"github.com/adjelloud/stockbook/internal/product"
	"github.com/adjelloud/stockbook/internal/store"
	"github.com/adjelloud/stockbook/internal/user"
)

// FormatVersion tags exported bundles so future readers can tell them apart.
const FormatVersion = "1.0.0"

// Bundle is a self-contained snapshot of one user's data for external
// handoff. Building it has no side effects.
type Bundle struct {
	User       *user.User         `json:"user"`
	Products   []*product.Product `json:"products"`
	Credits    []*credit.Credit   `json:"credits"`
	Analytics  analytics.Report   `json:"analytics"`
	ExportDate time.Time          `json:"exportDate"`
	Version    string             `json:"version"`
}

// Service assembles export bundles and writes them to disk.
type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) Build(userID uuid.UUID) (*Bundle, error) {
	u, ok := s.store.UserByID(userID)
	if !ok {
		return nil, fmt.Errorf("exporting user %s: %w", userID, store.ErrNotFound)
	}

	products, err := s.store.UserProducts(userID)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	credits, err := s.store.UserCredits(userID)
	if err != nil {
		return nil, fmt.Errorf("listing credits: %w", err)
	}

	return &Bundle{
		User:       u,
		Products:   products,
		Credits:    credits,
		Analytics:  analytics.Compute(products, credits),
		ExportDate: time.Now(),
		Version:    FormatVersion,
	}, nil
}

// WriteFile writes the bundle as pretty-printed JSON into dir and returns
// the file path.
func (s *Service) WriteFile(b *Bundle, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding bundle: %w", err)
	}

	name := fmt.Sprintf("stockbook_%s_%s.json", sanitize(b.User.Username), b.ExportDate.Format("20060102"))
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("writing bundle: %w", err)
	}

	return path, nil
}

// sanitize keeps the username usable as a filename fragment.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, name)
}
