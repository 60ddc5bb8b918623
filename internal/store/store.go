package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/adjelloud/stockbook/internal/analytics"
	"github.com/adjelloud/stockbook/internal/credit"
	"github.com/adjelloud/stockbook/internal/product"
	"github.com/adjelloud/stockbook/internal/storage"
	"github.com/adjelloud/stockbook/internal/user"
)

//go:generate mockgen -source=store.go -destination=repository_mock.go -package=store

type ProductRepository interface {
	List(userID uuid.UUID) ([]*product.Product, error)
	ReplaceAll(userID uuid.UUID, products []*product.Product) error
	DeletePartition(userID uuid.UUID) error
}

type CreditRepository interface {
	List(userID uuid.UUID) ([]*credit.Credit, error)
	ReplaceAll(userID uuid.UUID, credits []*credit.Credit) error
	DeletePartition(userID uuid.UUID) error
}

var (
	ErrNoActiveUser  = errors.New("no active user selected")
	ErrUsernameTaken = errors.New("username already taken")
	ErrNotFound      = errors.New("record not found")
)

// stateKey holds the global snapshot: user list, active user, preferences.
const stateKey = "stockbook_state"

// State is the global snapshot persisted on every mutation that touches it.
// Product and credit collections live under their own per-user keys.
type State struct {
	Users                []*user.User `json:"users"`
	CurrentUser          *user.User   `json:"currentUser"`
	DarkMode             bool         `json:"darkMode"`
	ShowAdvancedFeatures bool         `json:"showAdvancedFeatures"`
}

// Store is the single source of truth for the application. All reads and
// writes of users, products and credits go through it; the presentation
// layer never touches storage directly. Operations are synchronous and run
// on the single UI goroutine, so no locking is needed.
type Store struct {
	kv       storage.KV
	products ProductRepository
	credits  CreditRepository

	state  State
	subs   map[int]func(State)
	nextID int

	now    func() time.Time
	logger *slog.Logger
	fold   cases.Caser
}

type Option func(*Store)

// WithClock injects the time source, so tests can pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New builds a store seeded from the persisted snapshot. A missing or
// malformed snapshot falls back to an empty default state; that is logged
// and never fatal.
func New(kv storage.KV, products ProductRepository, credits CreditRepository, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		products: products,
		credits:  credits,
		subs:     make(map[int]func(State)),
		now:      time.Now,
		logger:   slog.Default(),
		fold:     cases.Fold(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.loadState()

	return s
}

func (s *Store) loadState() {
	raw, ok, err := s.kv.Get(stateKey)
	if err != nil {
		s.logger.Warn("reading saved state failed, starting empty", "error", err)
		return
	}

	if !ok {
		return
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		s.logger.Warn("discarding malformed saved state", "error", err)
		return
	}

	s.state = st
}

func (s *Store) persistState() {
	raw, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Warn("encoding state failed", "error", err)
		return
	}

	if err := s.kv.Set(stateKey, raw); err != nil {
		s.logger.Warn("persisting state failed, continuing in memory", "error", err)
	}
}

// Subscribe registers fn to be called with a state copy after every
// successful mutation. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() { delete(s.subs, id) }
}

func (s *Store) notify() {
	snap := s.State()
	for _, fn := range s.subs {
		fn(snap)
	}
}

// State returns a copy of the global snapshot. Users are deep-copied so
// subscribers cannot mutate records underneath the store.
func (s *Store) State() State {
	st := s.state

	st.Users = make([]*user.User, len(s.state.Users))
	for i, u := range s.state.Users {
		st.Users[i] = u.Clone()
	}

	if s.state.CurrentUser != nil {
		st.CurrentUser = s.state.CurrentUser.Clone()
	}

	return st
}

func (s *Store) CurrentUser() *user.User { return s.state.CurrentUser }

func (s *Store) Users() []*user.User {
	return append([]*user.User(nil), s.state.Users...)
}

func (s *Store) UserByID(id uuid.UUID) (*user.User, bool) {
	for _, u := range s.state.Users {
		if u.ID == id {
			return u, true
		}
	}

	return nil, false
}

// SetActiveUser switches the scope of all product and credit operations.
// Passing nil logs out. The reference is not validated against the user
// list; that is the caller's job.
func (s *Store) SetActiveUser(u *user.User) {
	s.state.CurrentUser = u
	s.persistState()
	s.notify()
}

// CreateUser appends a new profile. Usernames must be unique under Unicode
// case folding; the check lives here rather than in the forms so every
// caller gets it.
func (s *Store) CreateUser(params user.CreateParams) (*user.User, error) {
	folded := s.fold.String(params.Username)
	for _, u := range s.state.Users {
		if s.fold.String(u.Username) == folded {
			return nil, ErrUsernameTaken
		}
	}

	u := &user.User{
		ID:           newID(),
		Username:     params.Username,
		FullName:     params.FullName,
		BusinessName: params.BusinessName,
		Location:     params.Location,
		CreatedAt:    s.now(),
	}

	s.state.Users = append(s.state.Users, u)
	s.persistState()
	s.notify()

	return u, nil
}

// UpdateUser merges the given fields into the matching profile. An unknown
// id is a silent no-op and returns nil.
func (s *Store) UpdateUser(id uuid.UUID, up user.UpdateParams) *user.User {
	u, ok := s.UserByID(id)
	if !ok {
		return nil
	}

	u.Apply(up)

	if s.state.CurrentUser != nil && s.state.CurrentUser.ID == id {
		s.state.CurrentUser = u
	}

	s.persistState()
	s.notify()

	return u
}

// DeleteUser removes the profile and both of its storage partitions, and
// clears the active user if it was the one deleted.
func (s *Store) DeleteUser(id uuid.UUID) error {
	users := s.state.Users[:0:0]
	for _, u := range s.state.Users {
		if u.ID != id {
			users = append(users, u)
		}
	}

	s.state.Users = users

	if s.state.CurrentUser != nil && s.state.CurrentUser.ID == id {
		s.state.CurrentUser = nil
	}

	if err := s.products.DeletePartition(id); err != nil {
		return fmt.Errorf("deleting user products: %w", err)
	}

	if err := s.credits.DeletePartition(id); err != nil {
		return fmt.Errorf("deleting user credits: %w", err)
	}

	s.persistState()
	s.notify()

	return nil
}

func (s *Store) ToggleDarkMode() bool {
	s.state.DarkMode = !s.state.DarkMode
	s.persistState()
	s.notify()

	return s.state.DarkMode
}

func (s *Store) ToggleAdvancedFeatures() bool {
	s.state.ShowAdvancedFeatures = !s.state.ShowAdvancedFeatures
	s.persistState()
	s.notify()

	return s.state.ShowAdvancedFeatures
}

// Products lists the active user's products.
func (s *Store) Products() ([]*product.Product, error) {
	cu := s.state.CurrentUser
	if cu == nil {
		return nil, ErrNoActiveUser
	}

	return s.products.List(cu.ID)
}

// UserProducts lists products for an explicit user, regardless of who is
// active.
func (s *Store) UserProducts(userID uuid.UUID) ([]*product.Product, error) {
	return s.products.List(userID)
}

func (s *Store) AddProduct(params product.CreateParams) (*product.Product, error) {
	cu := s.state.CurrentUser
	if cu == nil {
		return nil, ErrNoActiveUser
	}

	products, err := s.products.List(cu.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	p := &product.Product{
		ID:             newID(),
		Name:           params.Name,
		Category:       params.Category,
		CostPriceCad:   params.CostPriceCad,
		CostPriceDzd:   params.CostPriceDzd,
		TransportPrice: params.TransportPrice,
		SalePrice:      params.SalePrice,
		PackageSize:    params.PackageSize,
		Quantity:       1,
		ArrivalDate:    params.ArrivalDate,
		Status:         params.Status,
		PicturePath:    params.PicturePath,
		ImageURL:       params.ImageURL,
		Notes:          params.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if params.Quantity != nil {
		p.Quantity = *params.Quantity
	}

	if p.Status == "" {
		p.Status = product.StatusInStock
	}

	if err := s.products.ReplaceAll(cu.ID, append(products, p)); err != nil {
		return nil, err
	}

	s.notify()

	return p, nil
}

func (s *Store) UpdateProduct(id uuid.UUID, up product.UpdateParams) (*product.Product, error) {
	cu := s.state.CurrentUser
	if cu == nil {
		return nil, ErrNoActiveUser
	}

	products, err := s.products.List(cu.ID)
	if err != nil {
		return nil, err
	}

	var updated *product.Product

	for _, p := range products {
		if p.ID == id {
			p.Apply(up)
			p.UpdatedAt = s.now()
			updated = p

			break
		}
	}

	if updated == nil {
		return nil, ErrNotFound
	}

	if err := s.products.ReplaceAll(cu.ID, products); err != nil {
		return nil, err
	}

	s.notify()

	return updated, nil
}

func (s *Store) DeleteProduct(id uuid.UUID) error {
	cu := s.state.CurrentUser
	if cu == nil {
		return ErrNoActiveUser
	}

	products, err := s.products.List(cu.ID)
	if err != nil {
		return err
	}

	kept := products[:0:0]
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}

	if len(kept) == len(products) {
		return ErrNotFound
	}

	// Credits referencing the product are left in place; the reference is
	// allowed to dangle.
	if err := s.products.ReplaceAll(cu.ID, kept); err != nil {
		return err
	}

	s.notify()

	return nil
}

// Credits lists the active user's credit sales.
func (s *Store) Credits() ([]*credit.Credit, error) {
	cu := s.state.CurrentUser
	if cu == nil {
		return nil, ErrNoActiveUser
	}

	return s.credits.List(cu.ID)
}

func (s *Store) UserCredits(userID uuid.UUID) ([]*credit.Credit, error) {
	return s.credits.List(userID)
}

// AddCredit records a credit sale. The remaining amount is derived here and
// clamped at zero. When the credit references a product, its status cascades:
// Reserved while money is outstanding, Sold (with the sale date stamped) when
// the sale was fully paid up front. A reference to an unknown product is
// accepted and the cascade simply matches nothing.
func (s *Store) AddCredit(params credit.CreateParams) (*credit.Credit, error) {
	cu := s.state.CurrentUser
	if cu == nil {
		return nil, ErrNoActiveUser
	}

	credits, err := s.credits.List(cu.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	remaining := params.TotalAmount - params.AmountPaid

	if remaining < 0 {
		remaining = 0
	}

	c := &credit.Credit{
		ID:              newID(),
		ProductID:       params.ProductID,
		CustomerName:    params.CustomerName,
		TotalAmount:     params.TotalAmount,
		AmountPaid:      params.AmountPaid,
		AmountRemaining: remaining,
		Notes:           params.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.credits.ReplaceAll(cu.ID, append(credits, c)); err != nil {
		return nil, err
	}

	if c.ProductID != nil {
		status := product.StatusReserved

		var saleDate *time.Time

		if remaining == 0 {
			status = product.StatusSold
			saleDate = &now
		}

		if err := s.cascadeProductStatus(*c.ProductID, status, saleDate); err != nil {
			return nil, err
		}
	}

	s.notify()

	return c, nil
}

// UpdateCredit merges fields and restamps updatedAt. It does not recompute
// the remaining amount and never cascades to the product; only AddPayment
// does.
func (s *Store) UpdateCredit(id uuid.UUID, up credit.UpdateParams) (*credit.Credit, error) {
	cu := s.state.CurrentUser
	if cu == nil {
		return nil, ErrNoActiveUser
	}

	credits, err := s.credits.List(cu.ID)
	if err != nil {
		return nil, err
	}

	var updated *credit.Credit

	for _, c := range credits {
		if c.ID == id {
			c.Apply(up)
			c.UpdatedAt = s.now()
			updated = c

			break
		}
	}

	if updated == nil {
		return nil, ErrNotFound
	}

	if err := s.credits.ReplaceAll(cu.ID, credits); err != nil {
		return nil, err
	}

	s.notify()

	return updated, nil
}

// AddPayment applies a partial payment. The paid total always accumulates
// the full amount; the remaining amount clamps at zero, silently discarding
// any excess. Once the remaining amount reaches zero the referenced product
// is marked Sold with the sale date set to the payment time.
func (s *Store) AddPayment(creditID uuid.UUID, amount float64) (*credit.Credit, error) {
	cu := s.state.CurrentUser
	if cu == nil {
		return nil, ErrNoActiveUser
	}

	credits, err := s.credits.List(cu.ID)
	if err != nil {
		return nil, err
	}

	var paid *credit.Credit

	for _, c := range credits {
		if c.ID == creditID {
			c.AmountPaid += amount
			c.AmountRemaining -= amount

			if c.AmountRemaining < 0 {
				c.AmountRemaining = 0
			}

			c.UpdatedAt = s.now()
			paid = c

			break
		}
	}

	if paid == nil {
		return nil, ErrNotFound
	}

	if err := s.credits.ReplaceAll(cu.ID, credits); err != nil {
		return nil, err
	}

	if paid.AmountRemaining == 0 && paid.ProductID != nil {
		saleDate := s.now()
		if err := s.cascadeProductStatus(*paid.ProductID, product.StatusSold, &saleDate); err != nil {
			return nil, err
		}
	}

	s.notify()

	return paid, nil
}

// cascadeProductStatus applies a credit-driven status transition to the
// active user's product. An unknown product id matches nothing (lenient
// reference).
func (s *Store) cascadeProductStatus(productID uuid.UUID, status product.Status, saleDate *time.Time) error {
	products, err := s.products.List(s.state.CurrentUser.ID)
	if err != nil {
		return err
	}

	for _, p := range products {
		if p.ID != productID {
			continue
		}

		p.Status = status
		p.SaleDate = saleDate
		p.UpdatedAt = s.now()

		return s.products.ReplaceAll(s.state.CurrentUser.ID, products)
	}

	return nil
}

// Analytics computes the summary report for the given user, or for the
// active user when id is uuid.Nil.
func (s *Store) Analytics(userID uuid.UUID) (analytics.Report, error) {
	if userID == uuid.Nil {
		if s.state.CurrentUser == nil {
			return analytics.Report{}, ErrNoActiveUser
		}

		userID = s.state.CurrentUser.ID
	}

	products, err := s.products.List(userID)
	if err != nil {
		return analytics.Report{}, err
	}

	credits, err := s.credits.List(userID)
	if err != nil {
		return analytics.Report{}, err
	}

	return analytics.Compute(products, credits), nil
}

// newID returns a time-ordered UUID so records sort by creation.
func newID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}
