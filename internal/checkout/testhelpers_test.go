package checkout

import (
	"context"
	"sync"

	"guestpost-checkout/pkg/api"
)

// Shared fakes for the checkout engine tests.

type fakeAPI struct {
	mu sync.Mutex

	profile    *api.Profile
	profileErr error
	updateErr  error

	countries []api.Country
	codes     []api.CallingCode
	services  []api.PaymentService

	cart    []api.CartItem
	cartErr error

	uploadURL string
	uploadErr error

	orderResult *api.OrderResult
	orderErr    error

	lastClientOrder    *api.ClientOrderRequest
	lastPublisherOrder *api.PublisherOrderRequest

	statusResults []statusResult
	statusCalls   int
}

type statusResult struct {
	paid bool
	err  error
}

func (f *fakeAPI) Profile(ctx context.Context, token string) (*api.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile == nil {
		return &api.Profile{}, nil
	}
	return f.profile, nil
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, token string, upd api.ProfileUpdate) error {
	return f.updateErr
}

func (f *fakeAPI) Countries(ctx context.Context) ([]api.Country, error) {
	return f.countries, nil
}

func (f *fakeAPI) CallingCodes(ctx context.Context) ([]api.CallingCode, error) {
	return f.codes, nil
}

func (f *fakeAPI) PaymentServices(ctx context.Context) ([]api.PaymentService, error) {
	return f.services, nil
}

func (f *fakeAPI) Cart(ctx context.Context, userID string) ([]api.CartItem, error) {
	if f.cartErr != nil {
		return nil, f.cartErr
	}
	return f.cart, nil
}

func (f *fakeAPI) UploadFile(ctx context.Context, token, name string, data []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.uploadURL, nil
}

func (f *fakeAPI) SubmitClientOrder(ctx context.Context, token string, order api.ClientOrderRequest) (*api.OrderResult, error) {
	f.mu.Lock()
	f.lastClientOrder = &order
	f.mu.Unlock()
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return f.orderResult, nil
}

func (f *fakeAPI) SubmitPublisherOrder(ctx context.Context, token string, order api.PublisherOrderRequest) (*api.OrderResult, error) {
	f.mu.Lock()
	f.lastPublisherOrder = &order
	f.mu.Unlock()
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return f.orderResult, nil
}

func (f *fakeAPI) PaymentStatus(ctx context.Context, uuid, orderID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.statusCalls
	f.statusCalls++
	if idx >= len(f.statusResults) {
		idx = len(f.statusResults) - 1
	}
	res := f.statusResults[idx]
	return res.paid, res.err
}

func (f *fakeAPI) StatusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

// memState is an in-memory PersistedState.
type memState struct {
	mu          sync.Mutex
	uuid        string
	orderID     string
	cartIDs     []string
	manual      bool
	displayName string
}

func (m *memState) SetPaymentResume(ctx context.Context, userID, uuid, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uuid, m.orderID = uuid, orderID
	return nil
}

func (m *memState) PaymentResume(ctx context.Context, userID string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uuid, m.orderID, nil
}

func (m *memState) ClearPaymentResume(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uuid, m.orderID = "", ""
	return nil
}

func (m *memState) SetCachedCartIDs(ctx context.Context, userID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cartIDs = ids
	return nil
}

func (m *memState) CachedCartIDs(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cartIDs, nil
}

func (m *memState) ClearCachedCart(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cartIDs = nil
	return nil
}

func (m *memState) SetDisplayName(ctx context.Context, userID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.displayName = name
	return nil
}

func (m *memState) DisplayName(ctx context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.displayName, nil
}

func (m *memState) SetManualCallingCode(ctx context.Context, userID string, manual bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manual = manual
	return nil
}

func (m *memState) ManualCallingCode(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.manual, nil
}

func (m *memState) Resume() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uuid, m.orderID
}

func (m *memState) CartIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cartIDs
}

// toastRecorder implements Notifier.
type toastRecorder struct {
	mu     sync.Mutex
	errors []string
	succ   []string
}

func (t *toastRecorder) Success(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.succ = append(t.succ, code)
}

func (t *toastRecorder) Error(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errors = append(t.errors, CodeOf(err))
}

func (t *toastRecorder) ErrorCodes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.errors...)
}

func (t *toastRecorder) SuccessCodes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.succ...)
}

// navRecorder implements Navigator and signals each route on a channel.
type navRecorder struct {
	mu     sync.Mutex
	routes []string
	ch     chan string
}

func newNavRecorder() *navRecorder {
	return &navRecorder{ch: make(chan string, 4)}
}

func (n *navRecorder) NavigateTo(route string) {
	n.mu.Lock()
	n.routes = append(n.routes, route)
	n.mu.Unlock()
	select {
	case n.ch <- route:
	default:
	}
}

func (n *navRecorder) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}
