package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/adjelloud/stockbook/internal/credit"
	creditStore "github.com/adjelloud/stockbook/internal/credit/store"
	"github.com/adjelloud/stockbook/internal/product"
	productStore "github.com/adjelloud/stockbook/internal/product/store"
	"github.com/adjelloud/stockbook/internal/storage"
	"github.com/adjelloud/stockbook/internal/store"
	"github.com/adjelloud/stockbook/internal/user"
)

var testTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*store.Store, *storage.Memory) {
	t.Helper()

	kv := storage.NewMemory()
	s := store.New(kv, productStore.New(kv), creditStore.New(kv),
		store.WithClock(func() time.Time { return testTime }))

	return s, kv
}

func login(t *testing.T, s *store.Store, username string) *user.User {
	t.Helper()

	u, err := s.CreateUser(user.CreateParams{Username: username})
	require.NoError(t, err)
	s.SetActiveUser(u)

	return u
}

func TestCreateUser_UsernameUniqueness(t *testing.T) {
	type testCase struct {
		name     string
		existing []string
		username string
		wantErr  error
	}

	tests := []testCase{
		{
			name:     "FirstUser",
			username: "amine",
		},
		{
			name:     "ExactDuplicate",
			existing: []string{"amine"},
			username: "amine",
			wantErr:  store.ErrUsernameTaken,
		},
		{
			name:     "CaseInsensitiveDuplicate",
			existing: []string{"amine"},
			username: "AMINE",
			wantErr:  store.ErrUsernameTaken,
		},
		{
			name:     "MixedCaseDuplicate",
			existing: []string{"Walid"},
			username: "wAlId",
			wantErr:  store.ErrUsernameTaken,
		},
		{
			name:     "DistinctUsername",
			existing: []string{"amine"},
			username: "walid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)

			for _, name := range tt.existing {
				_, err := s.CreateUser(user.CreateParams{Username: name})
				require.NoError(t, err)
			}

			u, err := s.CreateUser(user.CreateParams{Username: tt.username})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				assert.Len(t, s.Users(), len(tt.existing))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.username, u.Username)
			assert.NotEqual(t, uuid.Nil, u.ID)
			assert.Equal(t, testTime, u.CreatedAt)
		})
	}
}

func TestMutations_RequireActiveUser(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.AddProduct(product.CreateParams{Name: "Dell XPS 13"})
	assert.ErrorIs(t, err, store.ErrNoActiveUser)

	_, err = s.UpdateProduct(uuid.New(), product.UpdateParams{})
	assert.ErrorIs(t, err, store.ErrNoActiveUser)

	assert.ErrorIs(t, s.DeleteProduct(uuid.New()), store.ErrNoActiveUser)

	_, err = s.AddCredit(credit.CreateParams{CustomerName: "Walid"})
	assert.ErrorIs(t, err, store.ErrNoActiveUser)

	_, err = s.AddPayment(uuid.New(), 100)
	assert.ErrorIs(t, err, store.ErrNoActiveUser)

	_, err = s.Products()
	assert.ErrorIs(t, err, store.ErrNoActiveUser)

	_, err = s.Credits()
	assert.ErrorIs(t, err, store.ErrNoActiveUser)
}

func TestAddCredit_RemainingAndCascade(t *testing.T) {
	type testCase struct {
		name          string
		total, paid   float64
		wantRemaining float64
		wantStatus    product.Status
		wantSaleDate  bool
	}

	tests := []testCase{
		{
			name:          "PartialPaymentReserves",
			total:         1000,
			paid:          200,
			wantRemaining: 800,
			wantStatus:    product.StatusReserved,
		},
		{
			name:          "FullPaymentSells",
			total:         1000,
			paid:          1000,
			wantRemaining: 0,
			wantStatus:    product.StatusSold,
			wantSaleDate:  true,
		},
		{
			name:          "OverpaymentClampsToZero",
			total:         500,
			paid:          700,
			wantRemaining: 0,
			wantStatus:    product.StatusSold,
			wantSaleDate:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			login(t, s, "amine")

			p, err := s.AddProduct(product.CreateParams{Name: "Dell XPS 13", SalePrice: tt.total})
			require.NoError(t, err)
			require.Equal(t, product.StatusInStock, p.Status)

			c, err := s.AddCredit(credit.CreateParams{
				ProductID:    &p.ID,
				CustomerName: "Walid",
				TotalAmount:  tt.total,
				AmountPaid:   tt.paid,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantRemaining, c.AmountRemaining)
			assert.Equal(t, tt.paid, c.AmountPaid)

			products, err := s.Products()
			require.NoError(t, err)
			require.Len(t, products, 1)
			assert.Equal(t, tt.wantStatus, products[0].Status)

			if tt.wantSaleDate {
				require.NotNil(t, products[0].SaleDate)
				assert.Equal(t, testTime, *products[0].SaleDate)
			} else {
				assert.Nil(t, products[0].SaleDate)
			}
		})
	}
}

func TestAddCredit_UnknownProductIsAccepted(t *testing.T) {
	s, _ := newTestStore(t)
	login(t, s, "amine")

	ghost := uuid.New()

	c, err := s.AddCredit(credit.CreateParams{
		ProductID:    &ghost,
		CustomerName: "Walid",
		TotalAmount:  300,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(300), c.AmountRemaining)
}

func TestAddPayment(t *testing.T) {
	t.Run("UnknownCredit", func(t *testing.T) {
		s, _ := newTestStore(t)
		login(t, s, "amine")

		_, err := s.AddPayment(uuid.New(), 100)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("OverpaymentClamps", func(t *testing.T) {
		s, _ := newTestStore(t)
		login(t, s, "amine")

		p, err := s.AddProduct(product.CreateParams{Name: "iPhone 13", SalePrice: 600})
		require.NoError(t, err)

		c, err := s.AddCredit(credit.CreateParams{
			ProductID:    &p.ID,
			CustomerName: "Sara",
			TotalAmount:  600,
			AmountPaid:   100,
		})
		require.NoError(t, err)
		require.Equal(t, float64(500), c.AmountRemaining)

		// Payment exceeds the outstanding amount: paid accumulates in full,
		// remaining clamps to zero, product is sold.
		paid, err := s.AddPayment(c.ID, 900)
		require.NoError(t, err)
		assert.Equal(t, float64(1000), paid.AmountPaid)
		assert.Equal(t, float64(0), paid.AmountRemaining)

		products, err := s.Products()
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, product.StatusSold, products[0].Status)
		require.NotNil(t, products[0].SaleDate)
		assert.Equal(t, testTime, *products[0].SaleDate)
	})

	t.Run("PartialPaymentKeepsReservation", func(t *testing.T) {
		s, _ := newTestStore(t)
		login(t, s, "amine")

		p, err := s.AddProduct(product.CreateParams{Name: "iPad Air"})
		require.NoError(t, err)

		c, err := s.AddCredit(credit.CreateParams{
			ProductID:    &p.ID,
			CustomerName: "Sara",
			TotalAmount:  400,
		})
		require.NoError(t, err)

		paid, err := s.AddPayment(c.ID, 150)
		require.NoError(t, err)
		assert.Equal(t, float64(150), paid.AmountPaid)
		assert.Equal(t, float64(250), paid.AmountRemaining)

		products, err := s.Products()
		require.NoError(t, err)
		assert.Equal(t, product.StatusReserved, products[0].Status)
	})
}

func TestUpdateCredit(t *testing.T) {
	now := testTime
	kv := storage.NewMemory()
	s := store.New(kv, productStore.New(kv), creditStore.New(kv),
		store.WithClock(func() time.Time { return now }))

	u, err := s.CreateUser(user.CreateParams{Username: "amine"})
	require.NoError(t, err)
	s.SetActiveUser(u)

	p, err := s.AddProduct(product.CreateParams{Name: "Dell XPS 13", SalePrice: 1000})
	require.NoError(t, err)

	c, err := s.AddCredit(credit.CreateParams{
		ProductID:    &p.ID,
		CustomerName: "Walid",
		TotalAmount:  1000,
		AmountPaid:   200,
	})
	require.NoError(t, err)
	require.Equal(t, float64(800), c.AmountRemaining)

	now = testTime.Add(time.Hour)

	customer := "Walid B."
	total := 1200.0
	paid := 1100.0
	notes := "renegotiated"

	updated, err := s.UpdateCredit(c.ID, credit.UpdateParams{
		CustomerName: &customer,
		TotalAmount:  &total,
		AmountPaid:   &paid,
		Notes:        &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, "Walid B.", updated.CustomerName)
	assert.Equal(t, float64(1200), updated.TotalAmount)
	assert.Equal(t, float64(1100), updated.AmountPaid)
	assert.Equal(t, "renegotiated", updated.Notes)

	// The remaining amount is merged, never recomputed, by this operation.
	assert.Equal(t, float64(800), updated.AmountRemaining)
	assert.Equal(t, testTime.Add(time.Hour), updated.UpdatedAt)
	assert.Equal(t, testTime, updated.CreatedAt)

	// No cascade: the referenced product keeps its reservation.
	products, err := s.Products()
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, product.StatusReserved, products[0].Status)
	assert.Nil(t, products[0].SaleDate)

	// The merge was persisted.
	credits, err := s.Credits()
	require.NoError(t, err)
	require.Len(t, credits, 1)
	assert.Equal(t, "Walid B.", credits[0].CustomerName)

	_, err = s.UpdateCredit(uuid.New(), credit.UpdateParams{Notes: &notes})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAddProduct_QuantityDefaults(t *testing.T) {
	s, _ := newTestStore(t)
	login(t, s, "amine")

	// Unset defaults to 1.
	p, err := s.AddProduct(product.CreateParams{Name: "Dell XPS 13"})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Quantity)

	// An explicit zero is kept.
	zero := 0
	p, err = s.AddProduct(product.CreateParams{Name: "USB-C Hub", Quantity: &zero})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Quantity)

	three := 3
	p, err = s.AddProduct(product.CreateParams{Name: "Phone Case", Quantity: &three})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Quantity)
}

func TestState_CopiesUserRecords(t *testing.T) {
	s, _ := newTestStore(t)
	login(t, s, "amine")

	st := s.State()
	require.Len(t, st.Users, 1)
	require.NotNil(t, st.CurrentUser)

	st.Users[0].Username = "mallory"
	st.CurrentUser.FullName = "Mallory"

	assert.Equal(t, "amine", s.Users()[0].Username)
	assert.Equal(t, "", s.CurrentUser().FullName)
}

func TestScenario_CreditSaleLifecycle(t *testing.T) {
	s, _ := newTestStore(t)

	u, err := s.CreateUser(user.CreateParams{Username: "amine", FullName: "Amine Djelloud"})
	require.NoError(t, err)
	s.SetActiveUser(u)

	p, err := s.AddProduct(product.CreateParams{Name: "Dell XPS 13", SalePrice: 1000})
	require.NoError(t, err)
	assert.Equal(t, product.StatusInStock, p.Status)

	c, err := s.AddCredit(credit.CreateParams{
		ProductID:    &p.ID,
		CustomerName: "Walid",
		TotalAmount:  1000,
		AmountPaid:   200,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(800), c.AmountRemaining)

	products, err := s.Products()
	require.NoError(t, err)
	assert.Equal(t, product.StatusReserved, products[0].Status)

	paid, err := s.AddPayment(c.ID, 800)
	require.NoError(t, err)
	assert.Equal(t, float64(0), paid.AmountRemaining)
	assert.Equal(t, float64(1000), paid.AmountPaid)

	products, err = s.Products()
	require.NoError(t, err)
	assert.Equal(t, product.StatusSold, products[0].Status)
	require.NotNil(t, products[0].SaleDate)
	assert.Equal(t, testTime, *products[0].SaleDate)
}

func TestUserIsolation(t *testing.T) {
	s, _ := newTestStore(t)

	alice, err := s.CreateUser(user.CreateParams{Username: "alice"})
	require.NoError(t, err)
	bob, err := s.CreateUser(user.CreateParams{Username: "bob"})
	require.NoError(t, err)

	s.SetActiveUser(alice)

	_, err = s.AddProduct(product.CreateParams{Name: "MacBook Pro 14"})
	require.NoError(t, err)
	_, err = s.AddCredit(credit.CreateParams{CustomerName: "Walid", TotalAmount: 100})
	require.NoError(t, err)

	aliceProducts, err := s.UserProducts(alice.ID)
	require.NoError(t, err)
	assert.Len(t, aliceProducts, 1)

	bobProducts, err := s.UserProducts(bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobProducts)

	bobCredits, err := s.UserCredits(bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobCredits)
}

func TestUpdateProduct(t *testing.T) {
	s, _ := newTestStore(t)
	login(t, s, "amine")

	p, err := s.AddProduct(product.CreateParams{Name: "Galaxy S23", SalePrice: 700})
	require.NoError(t, err)

	name := "Galaxy S23 Ultra"
	status := product.StatusDamaged

	updated, err := s.UpdateProduct(p.ID, product.UpdateParams{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Galaxy S23 Ultra", updated.Name)
	assert.Equal(t, product.StatusDamaged, updated.Status)
	assert.Equal(t, float64(700), updated.SalePrice)

	_, err = s.UpdateProduct(uuid.New(), product.UpdateParams{Name: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteProduct_LeavesCreditsDangling(t *testing.T) {
	s, _ := newTestStore(t)
	login(t, s, "amine")

	p, err := s.AddProduct(product.CreateParams{Name: "Pixel 8"})
	require.NoError(t, err)

	_, err = s.AddCredit(credit.CreateParams{ProductID: &p.ID, CustomerName: "Walid", TotalAmount: 400})
	require.NoError(t, err)

	require.NoError(t, s.DeleteProduct(p.ID))
	assert.ErrorIs(t, s.DeleteProduct(p.ID), store.ErrNotFound)

	// No cascade: the credit keeps its now-dangling reference.
	credits, err := s.Credits()
	require.NoError(t, err)
	require.Len(t, credits, 1)
	assert.Equal(t, p.ID, *credits[0].ProductID)
}

func TestUpdateUser(t *testing.T) {
	s, _ := newTestStore(t)
	u := login(t, s, "amine")

	fullName := "Amine Djelloud"
	location := "Algiers"

	updated := s.UpdateUser(u.ID, user.UpdateParams{FullName: &fullName, Location: &location})
	require.NotNil(t, updated)
	assert.Equal(t, "Amine Djelloud", updated.FullName)
	assert.Equal(t, "Algiers", updated.Location)
	assert.Equal(t, "amine", updated.Username)

	// Unknown ids are a silent no-op.
	assert.Nil(t, s.UpdateUser(uuid.New(), user.UpdateParams{FullName: &fullName}))
}

func TestDeleteUser_CascadesPartitions(t *testing.T) {
	s, kv := newTestStore(t)
	u := login(t, s, "amine")

	_, err := s.AddProduct(product.CreateParams{Name: "ThinkPad X1"})
	require.NoError(t, err)
	_, err = s.AddCredit(credit.CreateParams{CustomerName: "Walid", TotalAmount: 50})
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(u.ID))

	assert.Nil(t, s.CurrentUser())
	assert.Empty(t, s.Users())

	_, ok, err := kv.Get("stockbook_" + u.ID.String() + "_products")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = kv.Get("stockbook_" + u.ID.String() + "_credits")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToggles(t *testing.T) {
	s, _ := newTestStore(t)

	assert.True(t, s.ToggleDarkMode())
	assert.False(t, s.ToggleDarkMode())

	assert.True(t, s.ToggleAdvancedFeatures())

	st := s.State()
	assert.False(t, st.DarkMode)
	assert.True(t, st.ShowAdvancedFeatures)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	kv := storage.NewMemory()

	s := store.New(kv, productStore.New(kv), creditStore.New(kv),
		store.WithClock(func() time.Time { return testTime }))

	u, err := s.CreateUser(user.CreateParams{Username: "amine", BusinessName: "AD Electronics"})
	require.NoError(t, err)
	s.SetActiveUser(u)
	s.ToggleDarkMode()

	// A fresh store over the same KV must see the same snapshot.
	restarted := store.New(kv, productStore.New(kv), creditStore.New(kv))
	st := restarted.State()

	require.Len(t, st.Users, 1)
	assert.Equal(t, "amine", st.Users[0].Username)
	assert.Equal(t, "AD Electronics", st.Users[0].BusinessName)
	require.NotNil(t, st.CurrentUser)
	assert.Equal(t, u.ID, st.CurrentUser.ID)
	assert.True(t, st.DarkMode)
}

func TestSnapshot_CorruptFallsBackToDefaults(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Set("stockbook_state", []byte("{not json")))

	s := store.New(kv, productStore.New(kv), creditStore.New(kv))
	st := s.State()

	assert.Empty(t, st.Users)
	assert.Nil(t, st.CurrentUser)
	assert.False(t, st.DarkMode)
	assert.False(t, st.ShowAdvancedFeatures)
}

func TestSubscribe(t *testing.T) {
	s, _ := newTestStore(t)

	var seen []store.State

	unsubscribe := s.Subscribe(func(st store.State) {
		seen = append(seen, st)
	})

	_, err := s.CreateUser(user.CreateParams{Username: "amine"})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Len(t, seen[0].Users, 1)

	unsubscribe()

	_, err = s.CreateUser(user.CreateParams{Username: "walid"})
	require.NoError(t, err)
	assert.Len(t, seen, 1)
}

func TestAddProduct_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	products := store.NewMockProductRepository(ctrl)
	credits := store.NewMockCreditRepository(ctrl)

	kv := storage.NewMemory()
	s := store.New(kv, products, credits)

	u, err := s.CreateUser(user.CreateParams{Username: "amine"})
	require.NoError(t, err)
	s.SetActiveUser(u)

	products.EXPECT().List(u.ID).Return(nil, errors.New("disk error"))

	_, err = s.AddProduct(product.CreateParams{Name: "Dell XPS 13"})
	assert.Error(t, err)
}

func TestAnalytics_EmptyUser(t *testing.T) {
	s, _ := newTestStore(t)
	u := login(t, s, "amine")

	report, err := s.Analytics(u.ID)
	require.NoError(t, err)

	assert.Zero(t, report.Products.Total)
	assert.Zero(t, report.Financial.TotalRevenue)
	assert.Zero(t, report.Credits.TotalOutstanding)
	assert.Zero(t, report.ProfitMargin)
}
