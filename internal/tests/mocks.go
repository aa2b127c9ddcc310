package tests

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository. ReserveSeats
// keeps the conditional-update semantics of the real repository: the check
// and the decrement happen under one lock, so concurrent reservations cannot
// oversell.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	ReserveSeatsCallCount int32
	ReleaseSeatsCallCount int32

	// Error injection
	ReserveSeatsError error
	ReleaseSeatsError error
	UpdateStatusError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.DriverID == driverID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockRideRepository) UpdateStatus(ctx context.Context, id string, status domain.RideStatus) error {
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	ride.Status = status
	return nil
}

func (m *MockRideRepository) ReserveSeats(ctx context.Context, rideID string, n int) (bool, error) {
	atomic.AddInt32(&m.ReserveSeatsCallCount, 1)
	if m.ReserveSeatsError != nil {
		return false, m.ReserveSeatsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if ride.SeatsAvailable < n {
		return false, nil
	}
	ride.SeatsAvailable -= n
	return true, nil
}

func (m *MockRideRepository) ReleaseSeats(ctx context.Context, rideID string, n int) error {
	atomic.AddInt32(&m.ReleaseSeatsCallCount, 1)
	if m.ReleaseSeatsError != nil {
		return m.ReleaseSeatsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	ride.SeatsAvailable += n
	if ride.SeatsAvailable > ride.SeatsTotal {
		ride.SeatsAvailable = ride.SeatsTotal
	}
	return nil
}

// SeatsAvailable returns the current seat count for test assertions.
func (m *MockRideRepository) SeatsAvailable(rideID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return -1
	}
	return ride.SeatsAvailable
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORIES
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
// Update carries the same status compare-and-swap as the real repository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error

	// GetByIDHook runs after a read, outside the lock. Tests use it to
	// interleave a competing writer into a read-then-act window.
	GetByIDHook func(booking *domain.Booking)
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	booking, ok := m.bookings[id]
	var copy domain.Booking
	if ok {
		copy = *booking
	}
	m.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	if m.GetByIDHook != nil {
		m.GetByIDHook(&copy)
	}
	return &copy, nil
}

func (m *MockBookingRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.RideID == rideID {
			copy := *b
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockBookingRepository) CountActiveByRider(ctx context.Context, riderID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, b := range m.bookings {
		if b.RiderID == riderID && b.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

func (m *MockBookingRepository) ListDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if len(result) >= limit {
			break
		}
		expirable := b.Status == domain.BookingStatusRequested || b.Status == domain.BookingStatusPaymentPending
		if expirable && !b.HoldExpiresAt.After(now) {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.bookings[booking.ID]
	if !ok || stored.Status != from {
		return repository.ErrStaleStatus
	}
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

// GetBooking returns a booking for test assertions.
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookings[id]
}

// CountBookings returns the number of stored bookings.
func (m *MockBookingRepository) CountBookings() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

// MockBookingEventRepository is a mock implementation of
// BookingEventRepository.
type MockBookingEventRepository struct {
	mu     sync.RWMutex
	events []*domain.BookingEvent

	// Error injection
	AppendError error
}

// NewMockBookingEventRepository creates a new mock event repository.
func NewMockBookingEventRepository() *MockBookingEventRepository {
	return &MockBookingEventRepository{}
}

func (m *MockBookingEventRepository) Append(ctx context.Context, event *domain.BookingEvent) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockBookingEventRepository) ListByBooking(ctx context.Context, bookingID string) ([]*domain.BookingEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.BookingEvent
	for _, e := range m.events {
		if e.BookingID == bookingID {
			result = append(result, e)
		}
	}
	return result, nil
}

// EventNames returns the names recorded for a booking, in append order.
func (m *MockBookingEventRepository) EventNames(bookingID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for _, e := range m.events {
		if e.BookingID == bookingID {
			names = append(names, e.Name)
		}
	}
	return names
}

// ──────────────────────────────────────────────
// MOCK WALLET REPOSITORIES
// ──────────────────────────────────────────────

// MockWalletRepository is a mock implementation of WalletRepository.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*domain.DriverWallet // keyed by driver ID

	// Error injection
	CreateError error
}

// NewMockWalletRepository creates a new mock wallet repository.
func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]*domain.DriverWallet),
	}
}

// AddWallet adds a wallet to the mock repository.
func (m *MockWalletRepository) AddWallet(wallet *domain.DriverWallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.DriverID] = wallet
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *domain.DriverWallet) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.wallets[wallet.DriverID]; ok {
		return repository.ErrDuplicate
	}
	copy := *wallet
	m.wallets[wallet.DriverID] = &copy
	return nil
}

func (m *MockWalletRepository) GetByDriverID(ctx context.Context, driverID string) (*domain.DriverWallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wallet, ok := m.wallets[driverID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *wallet
	return &copy, nil
}

func (m *MockWalletRepository) GetByDriverIDForUpdate(ctx context.Context, driverID string) (*domain.DriverWallet, error) {
	return m.GetByDriverID(ctx, driverID)
}

func (m *MockWalletRepository) UpdateBalances(ctx context.Context, wallet *domain.DriverWallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.wallets[wallet.DriverID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Balance = wallet.Balance
	stored.LifetimeEarned = wallet.LifetimeEarned
	stored.LifetimeWithdrawn = wallet.LifetimeWithdrawn
	return nil
}

// Balance returns the stored balance for test assertions.
func (m *MockWalletRepository) Balance(driverID string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wallet, ok := m.wallets[driverID]
	if !ok {
		return 0
	}
	return wallet.Balance
}

// MockWalletTransactionRepository is a mock implementation of
// WalletTransactionRepository.
type MockWalletTransactionRepository struct {
	mu   sync.RWMutex
	rows []*domain.WalletTransaction

	// Error injection
	CreateError error
}

// NewMockWalletTransactionRepository creates a new mock ledger repository.
func NewMockWalletTransactionRepository() *MockWalletTransactionRepository {
	return &MockWalletTransactionRepository{}
}

func (m *MockWalletTransactionRepository) Create(ctx context.Context, tx *domain.WalletTransaction) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *tx
	m.rows = append(m.rows, &copy)
	return nil
}

func (m *MockWalletTransactionRepository) ListByWallet(ctx context.Context, walletID string) ([]*domain.WalletTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.WalletTransaction
	for _, row := range m.rows {
		if row.WalletID == walletID {
			copy := *row
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockWalletTransactionRepository) GetEarningByBooking(ctx context.Context, walletID, bookingID string) (*domain.WalletTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, row := range m.rows {
		if row.WalletID == walletID && row.BookingID == bookingID &&
			row.Type == domain.WalletTxEarning && row.Direction == domain.WalletTxCredit {
			copy := *row
			return &copy, nil
		}
	}
	return nil, nil
}

// Rows returns all ledger rows for test assertions.
func (m *MockWalletTransactionRepository) Rows() []*domain.WalletTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.WalletTransaction, len(m.rows))
	copy(result, m.rows)
	return result
}

// ──────────────────────────────────────────────
// MOCK PAYOUT REPOSITORY
// ──────────────────────────────────────────────

// MockPayoutRepository is a mock implementation of PayoutRepository.
// Update carries the same status compare-and-swap as the real repository.
type MockPayoutRepository struct {
	mu      sync.RWMutex
	payouts map[string]*domain.PayoutRequest

	// Error injection
	CreateError error
	UpdateError error

	// GetByIDHook runs after a read, outside the lock. Tests use it to
	// interleave a competing writer into a read-then-act window.
	GetByIDHook func(payout *domain.PayoutRequest)
}

// NewMockPayoutRepository creates a new mock payout repository.
func NewMockPayoutRepository() *MockPayoutRepository {
	return &MockPayoutRepository{
		payouts: make(map[string]*domain.PayoutRequest),
	}
}

// AddPayout adds a payout to the mock repository.
func (m *MockPayoutRepository) AddPayout(payout *domain.PayoutRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payouts[payout.ID] = payout
}

func (m *MockPayoutRepository) Create(ctx context.Context, payout *domain.PayoutRequest) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *payout
	m.payouts[payout.ID] = &copy
	return nil
}

func (m *MockPayoutRepository) GetByID(ctx context.Context, id string) (*domain.PayoutRequest, error) {
	m.mu.RLock()
	payout, ok := m.payouts[id]
	var copy domain.PayoutRequest
	if ok {
		copy = *payout
	}
	m.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	if m.GetByIDHook != nil {
		m.GetByIDHook(&copy)
	}
	return &copy, nil
}

func (m *MockPayoutRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.PayoutRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.PayoutRequest
	for _, p := range m.payouts {
		if p.DriverID == driverID {
			copy := *p
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockPayoutRepository) ListByStatus(ctx context.Context, status domain.PayoutStatus) ([]*domain.PayoutRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.PayoutRequest
	for _, p := range m.payouts {
		if p.Status == status {
			copy := *p
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockPayoutRepository) Update(ctx context.Context, payout *domain.PayoutRequest, from domain.PayoutStatus) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.payouts[payout.ID]
	if !ok || stored.Status != from {
		return repository.ErrStaleStatus
	}
	copy := *payout
	m.payouts[payout.ID] = &copy
	return nil
}

// GetPayout returns a payout for test assertions.
func (m *MockPayoutRepository) GetPayout(id string) *domain.PayoutRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payouts[id]
}

// ──────────────────────────────────────────────
// MOCK CITY AND DRIVER REPOSITORIES
// ──────────────────────────────────────────────

// MockCityRepository is a mock implementation of CityRepository.
type MockCityRepository struct {
	mu     sync.RWMutex
	cities map[string]*domain.City
	areas  map[string][]*domain.ServiceArea

	// Counters for verification
	ListAreasCallCount int32
}

// NewMockCityRepository creates a new mock city repository.
func NewMockCityRepository() *MockCityRepository {
	return &MockCityRepository{
		cities: make(map[string]*domain.City),
		areas:  make(map[string][]*domain.ServiceArea),
	}
}

// AddCity adds a city and its areas to the mock repository.
func (m *MockCityRepository) AddCity(city *domain.City, areas ...*domain.ServiceArea) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cities[city.ID] = city
	m.areas[city.ID] = areas
}

func (m *MockCityRepository) GetByID(ctx context.Context, id string) (*domain.City, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	city, ok := m.cities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *city
	return &copy, nil
}

func (m *MockCityRepository) ListActiveAreas(ctx context.Context, cityID string) ([]*domain.ServiceArea, error) {
	atomic.AddInt32(&m.ListAreasCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.ServiceArea
	for _, a := range m.areas[cityID] {
		if a.Active {
			result = append(result, a)
		}
	}
	return result, nil
}

// MockDriverProfileRepository is a mock implementation of
// DriverProfileRepository.
type MockDriverProfileRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.DriverProfile
}

// NewMockDriverProfileRepository creates a new mock driver profile
// repository.
func NewMockDriverProfileRepository() *MockDriverProfileRepository {
	return &MockDriverProfileRepository{
		drivers: make(map[string]*domain.DriverProfile),
	}
}

// AddDriver adds a driver profile to the mock repository.
func (m *MockDriverProfileRepository) AddDriver(driver *domain.DriverProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverProfileRepository) Create(ctx context.Context, driver *domain.DriverProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverProfileRepository) GetByID(ctx context.Context, id string) (*domain.DriverProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK UNIT OF WORK
// ──────────────────────────────────────────────

// MockUnitOfWork implements UnitOfWork over the mocks above. There is no
// rollback emulation: tests injecting mid-transaction errors assert on the
// compensating calls instead of restored state.
type MockUnitOfWork struct {
	RideRepo     *MockRideRepository
	BookingRepo  *MockBookingRepository
	EventRepo    *MockBookingEventRepository
	WalletRepo   *MockWalletRepository
	WalletTxRepo *MockWalletTransactionRepository
	PayoutRepo   *MockPayoutRepository

	// Counters for verification
	WithinTxCallCount int32

	// Error injection
	WithinTxError error
}

// NewMockUnitOfWork creates a unit of work over fresh mocks.
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		RideRepo:     NewMockRideRepository(),
		BookingRepo:  NewMockBookingRepository(),
		EventRepo:    NewMockBookingEventRepository(),
		WalletRepo:   NewMockWalletRepository(),
		WalletTxRepo: NewMockWalletTransactionRepository(),
		PayoutRepo:   NewMockPayoutRepository(),
	}
}

func (m *MockUnitOfWork) WithinTx(ctx context.Context, fn func(tx repository.TxRepositories) error) error {
	atomic.AddInt32(&m.WithinTxCallCount, 1)
	if m.WithinTxError != nil {
		return m.WithinTxError
	}
	return fn(m)
}

func (m *MockUnitOfWork) Rides() repository.RideRepository             { return m.RideRepo }
func (m *MockUnitOfWork) Bookings() repository.BookingRepository       { return m.BookingRepo }
func (m *MockUnitOfWork) BookingEvents() repository.BookingEventRepository {
	return m.EventRepo
}
func (m *MockUnitOfWork) Wallets() repository.WalletRepository { return m.WalletRepo }
func (m *MockUnitOfWork) WalletTransactions() repository.WalletTransactionRepository {
	return m.WalletTxRepo
}
func (m *MockUnitOfWork) Payouts() repository.PayoutRepository { return m.PayoutRepo }

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockHoldStore is an in-memory hold index.
type MockHoldStore struct {
	mu    sync.Mutex
	holds map[string]time.Time

	// Counters for verification
	TrackCallCount   int32
	UntrackCallCount int32
}

// NewMockHoldStore creates a new mock hold store.
func NewMockHoldStore() *MockHoldStore {
	return &MockHoldStore{holds: make(map[string]time.Time)}
}

func (m *MockHoldStore) Track(ctx context.Context, bookingID string, expiresAt time.Time) error {
	atomic.AddInt32(&m.TrackCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holds[bookingID] = expiresAt
	return nil
}

func (m *MockHoldStore) Untrack(ctx context.Context, bookingID string) error {
	atomic.AddInt32(&m.UntrackCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holds, bookingID)
	return nil
}

func (m *MockHoldStore) Due(ctx context.Context, now time.Time, limit int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, deadline := range m.holds {
		if int64(len(ids)) >= limit {
			break
		}
		if !deadline.After(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Tracked reports whether a booking is in the index.
func (m *MockHoldStore) Tracked(bookingID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.holds[bookingID]
	return ok
}

// MockLockStore is an in-memory lock store.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireBookingLock(ctx context.Context, bookingID string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[bookingID] {
		return false, nil
	}
	m.locks[bookingID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseBookingLock(ctx context.Context, bookingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, bookingID)
	return nil
}

// MockAreaCache is an in-memory service-area cache.
type MockAreaCache struct {
	mu    sync.Mutex
	areas map[string][]*domain.ServiceArea

	// Counters for verification
	HitCount int32
}

// NewMockAreaCache creates a new mock area cache.
func NewMockAreaCache() *MockAreaCache {
	return &MockAreaCache{areas: make(map[string][]*domain.ServiceArea)}
}

func (m *MockAreaCache) GetCityAreas(ctx context.Context, cityID string) ([]*domain.ServiceArea, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	areas, ok := m.areas[cityID]
	if ok {
		atomic.AddInt32(&m.HitCount, 1)
	}
	return areas, ok, nil
}

func (m *MockAreaCache) SetCityAreas(ctx context.Context, cityID string, areas []*domain.ServiceArea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.areas[cityID] = areas
	return nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT GATEWAY AND NOTIFIER
// ──────────────────────────────────────────────

// RefundCall records one Refund invocation.
type RefundCall struct {
	PaymentRef string
	Amount     int64
}

// MockPaymentGateway is a controllable PaymentGateway.
type MockPaymentGateway struct {
	mu          sync.Mutex
	intents     int
	RefundCalls []RefundCall

	// Counters for verification
	CreateIntentCallCount int32
	VerifyCallCount       int32

	// Behavior control
	VerifyResult      bool
	CreateIntentError error
	VerifyError       error
	RefundError       error
}

// NewMockPaymentGateway creates a gateway that settles every payment.
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{VerifyResult: true}
}

func (g *MockPaymentGateway) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	atomic.AddInt32(&g.CreateIntentCallCount, 1)
	if g.CreateIntentError != nil {
		return "", g.CreateIntentError
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents++
	return fmt.Sprintf("intent-%d", g.intents), nil
}

func (g *MockPaymentGateway) Verify(ctx context.Context, intentID, proof string) (bool, error) {
	atomic.AddInt32(&g.VerifyCallCount, 1)
	if g.VerifyError != nil {
		return false, g.VerifyError
	}
	return g.VerifyResult, nil
}

func (g *MockPaymentGateway) Refund(ctx context.Context, paymentRef string, amount int64) (string, error) {
	if g.RefundError != nil {
		return "", g.RefundError
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.RefundCalls = append(g.RefundCalls, RefundCall{PaymentRef: paymentRef, Amount: amount})
	return fmt.Sprintf("refund-%d", len(g.RefundCalls)), nil
}

// MockNotifier records transition events.
type MockNotifier struct {
	mu     sync.Mutex
	events []service.TransitionEvent
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (n *MockNotifier) Notify(ctx context.Context, event service.TransitionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

// EventNames returns the names of recorded events in order.
func (n *MockNotifier) EventNames() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	names := make([]string, 0, len(n.events))
	for _, e := range n.events {
		names = append(names, e.Name)
	}
	return names
}
