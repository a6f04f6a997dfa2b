package checkout

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"guestpost-checkout/pkg/api"
)

type controllerFixture struct {
	ctrl    *Controller
	api     *fakeAPI
	state   *memState
	toasts  *toastRecorder
	nav     *navRecorder
	baseCtx context.Context
	cancel  context.CancelFunc
}

func newControllerFixture(t *testing.T, apiClient *fakeAPI) *controllerFixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	state := &memState{}
	toasts := &toastRecorder{}
	nav := newNavRecorder()

	ctrl := NewController(ctx, ControllerConfig{
		API:                apiClient,
		State:              state,
		Notifier:           toasts,
		Navigator:          nav,
		Logger:             zap.NewNop(),
		PollInterval:       10 * time.Millisecond,
		InitialLoadingDamp: 5 * time.Millisecond,
		AuthRedirectDelay:  20 * time.Millisecond,
		SignInRoute:        "/signin",
		OrderConfirmRoute:  "/order-confirmation/%s",
	}, "token", "user-1")
	t.Cleanup(ctrl.Teardown)

	return &controllerFixture{
		ctrl:    ctrl,
		api:     apiClient,
		state:   state,
		toasts:  toasts,
		nav:     nav,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

func mountedFixture(t *testing.T, apiClient *fakeAPI) *controllerFixture {
	t.Helper()
	fx := newControllerFixture(t, apiClient)
	fx.api.profile = &api.Profile{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Phone:      "+1 5551234567",
		Country:    "United States",
		City:       "New York",
		PostalCode: "10001",
	}
	fx.api.cart = []api.CartItem{
		{ProductID: "p1", SiteName: "alpha.com", AdjustedPrice: decimal.NewFromInt(40), Currency: "EUR"},
	}
	fx.ctrl.Mount(context.Background(), "Ada L.", []string{"p1"})
	return fx
}

func TestController_InitialState(t *testing.T) {
	fx := newControllerFixture(t, &fakeAPI{})
	sess := fx.ctrl.Session()

	assert.Equal(t, StepContentSelection, sess.Step)
	assert.NotEmpty(t, sess.ID)
	assert.True(t, sess.EditMode)
}

func TestController_MountIdentity(t *testing.T) {
	t.Run("stores a new display name", func(t *testing.T) {
		fx := mountedFixture(t, &fakeAPI{})
		assert.Equal(t, "Ada L.", fx.ctrl.Session().DisplayName)
		assert.Equal(t, "Ada L.", fx.state.displayName)
	})

	t.Run("restores a stored display name", func(t *testing.T) {
		fx := newControllerFixture(t, &fakeAPI{})
		fx.state.displayName = "Returning Buyer"
		fx.ctrl.Mount(context.Background(), "", nil)
		assert.Equal(t, "Returning Buyer", fx.ctrl.Session().DisplayName)
	})
}

func TestController_ProceedClientURLMode(t *testing.T) {
	// Content option client, file mode url, valid URL and backup email.
	fx := mountedFixture(t, &fakeAPI{})

	err := fx.ctrl.Proceed(validClient())
	require.NoError(t, err)

	sess := fx.ctrl.Session()
	assert.Equal(t, StepDetails, sess.Step)
	assert.Equal(t, ContentClient, sess.ContentOption)
	assert.Equal(t, "please link to our product page", sess.Client.Notes)
}

func TestController_ProceedBlockedOnValidation(t *testing.T) {
	fx := mountedFixture(t, &fakeAPI{})

	content := validClient()
	content.BackupEmail = "bad"
	err := fx.ctrl.Proceed(content)
	require.ErrorIs(t, err, ErrBackupEmailInvalid)

	// No partial advance.
	sess := fx.ctrl.Session()
	assert.Equal(t, StepContentSelection, sess.Step)
	assert.Contains(t, fx.toasts.ErrorCodes(), "backup_email_invalid")
}

func TestController_ProceedPublisherTotal(t *testing.T) {
	fx := mountedFixture(t, &fakeAPI{})

	require.NoError(t, fx.ctrl.Proceed(validPublisher()))

	sess := fx.ctrl.Session()
	assert.Equal(t, StepDetails, sess.Step)
	assert.Equal(t, 750, sess.WordCount)
	// 40.00 line item + 20 surcharge for 750 words.
	assert.True(t, sess.Total.Equal(decimal.NewFromInt(60)), "got %s", sess.Total)
}

func TestController_BackKeepsDataAndUnlocksEdit(t *testing.T) {
	fx := mountedFixture(t, &fakeAPI{})
	require.NoError(t, fx.ctrl.Proceed(validPublisher()))

	require.NoError(t, fx.ctrl.SaveProfile(context.Background(), validInfo()))
	assert.False(t, fx.ctrl.Session().EditMode)

	fx.ctrl.Back()
	sess := fx.ctrl.Session()
	assert.Equal(t, StepContentSelection, sess.Step)
	assert.True(t, sess.EditMode)
	// Step-2 data survives.
	assert.Equal(t, "Ada", sess.Info.FirstName)
	assert.Equal(t, 750, sess.WordCount)
}

func TestController_SaveProfileFailureKeepsEditOpen(t *testing.T) {
	fx := mountedFixture(t, &fakeAPI{})
	fx.api.updateErr = assertionError("profile update rejected")

	err := fx.ctrl.SaveProfile(context.Background(), validInfo())
	require.Error(t, err)

	sess := fx.ctrl.Session()
	assert.True(t, sess.EditMode)
	assert.Contains(t, fx.toasts.ErrorCodes(), "update_profile")
}

func TestController_CompletePurchaseOpensPopupAndPolls(t *testing.T) {
	apiClient := &fakeAPI{
		orderResult:   &api.OrderResult{StatusCode: http.StatusCreated, Transaction: goodTransaction()},
		statusResults: []statusResult{{paid: false}, {paid: true}},
	}
	fx := mountedFixture(t, apiClient)
	require.NoError(t, fx.ctrl.Proceed(validPublisher()))

	err := fx.ctrl.CompletePurchase(context.Background(), validPublisher(), "EUR", "TRON")
	require.NoError(t, err)

	sess := fx.ctrl.Session()
	assert.True(t, sess.PopupOpen)
	// Transient order fields cleared after the order is placed.
	assert.Empty(t, sess.Publisher.Topic)
	assert.Empty(t, sess.Items)

	// Polling confirms the payment and closes the popup.
	require.Eventually(t, func() bool {
		return fx.ctrl.Session().Paid
	}, 2*time.Second, time.Millisecond)

	sess = fx.ctrl.Session()
	assert.False(t, sess.PopupOpen)
	assert.False(t, sess.InitialLoading)
	assert.False(t, sess.WaitingPayment)

	// Confirmation cleanup: resume keys and cached cart cleared, navigation
	// to the confirmation view.
	require.Eventually(t, func() bool {
		uuid, orderID := fx.state.Resume()
		return uuid == "" && orderID == ""
	}, time.Second, time.Millisecond)
	assert.Empty(t, fx.state.CartIDs())
	require.Eventually(t, func() bool {
		routes := fx.nav.Routes()
		return len(routes) == 1 && routes[0] == "/order-confirmation/ORD-1"
	}, time.Second, time.Millisecond)
}

func TestController_CompletePurchaseMalformedQR(t *testing.T) {
	// Order API responds 201 but the QR is not a png data URI: no popup,
	// QR-format error surfaced, order fields still cleared.
	tx := goodTransaction()
	tx.AddressQRCode = "https://example.com/qr.png"
	apiClient := &fakeAPI{
		orderResult: &api.OrderResult{StatusCode: http.StatusCreated, Transaction: tx},
	}
	fx := mountedFixture(t, apiClient)
	require.NoError(t, fx.ctrl.Proceed(validPublisher()))

	err := fx.ctrl.CompletePurchase(context.Background(), validPublisher(), "EUR", "TRON")
	require.ErrorIs(t, err, ErrQRCodeFormat)

	sess := fx.ctrl.Session()
	assert.False(t, sess.PopupOpen)
	assert.Empty(t, sess.Publisher.Topic)
	assert.Empty(t, sess.Items)
	assert.Contains(t, fx.toasts.ErrorCodes(), "qr_code_format")

	// The order was still placed: resume keys survive for the payment view.
	uuid, orderID := fx.state.Resume()
	assert.Equal(t, "tx-uuid", uuid)
	assert.Equal(t, "ORD-1", orderID)
}

func TestController_CompletePurchaseExpiredToken(t *testing.T) {
	// The literal token-failure message redirects to sign-in after the
	// configured delay, regardless of HTTP status.
	apiClient := &fakeAPI{
		orderResult: &api.OrderResult{StatusCode: http.StatusOK, Message: api.MsgInvalidToken},
	}
	fx := mountedFixture(t, apiClient)
	require.NoError(t, fx.ctrl.Proceed(validPublisher()))

	err := fx.ctrl.CompletePurchase(context.Background(), validPublisher(), "EUR", "TRON")
	require.ErrorIs(t, err, ErrTokenExpired)
	assert.Contains(t, fx.toasts.ErrorCodes(), "token_expired")

	// Not immediate.
	assert.Empty(t, fx.nav.Routes())

	select {
	case route := <-fx.nav.ch:
		assert.Equal(t, "/signin", route)
	case <-time.After(time.Second):
		t.Fatal("expected redirect to sign-in")
	}
}

func TestController_CompletePurchaseValidationFailure(t *testing.T) {
	fx := mountedFixture(t, &fakeAPI{})
	require.NoError(t, fx.ctrl.Proceed(validPublisher()))

	content := validPublisher()
	fx.state.mu.Lock()
	fx.state.cartIDs = nil
	fx.state.mu.Unlock()

	// Break a required field.
	infoBroken := fx.ctrl.Session().Info
	infoBroken.PostalCode = ""
	fx.api.profile = &api.Profile{}
	fx.ctrl.sess.Info = infoBroken

	err := fx.ctrl.CompletePurchase(context.Background(), content, "EUR", "TRON")
	require.Error(t, err)

	// ValidationFailed is terminal-in-place: no popup, step unchanged.
	sess := fx.ctrl.Session()
	assert.False(t, sess.PopupOpen)
	assert.Equal(t, StepDetails, sess.Step)
}

func TestController_ClosePopupStopsPolling(t *testing.T) {
	apiClient := &fakeAPI{
		orderResult:   &api.OrderResult{StatusCode: http.StatusCreated, Transaction: goodTransaction()},
		statusResults: []statusResult{{paid: false}},
	}
	fx := mountedFixture(t, apiClient)
	require.NoError(t, fx.ctrl.Proceed(validPublisher()))
	require.NoError(t, fx.ctrl.CompletePurchase(context.Background(), validPublisher(), "EUR", "TRON"))

	require.Eventually(t, func() bool {
		return apiClient.StatusCalls() >= 1
	}, time.Second, time.Millisecond)

	fx.ctrl.ClosePopup()
	fx.ctrl.ClosePopup() // double-close is a no-op

	assert.False(t, fx.ctrl.Session().PopupOpen)

	require.Eventually(t, func() bool {
		calls := apiClient.StatusCalls()
		time.Sleep(30 * time.Millisecond)
		return calls == apiClient.StatusCalls()
	}, time.Second, 5*time.Millisecond)
}

func TestController_ResumePayment(t *testing.T) {
	fx := mountedFixture(t, &fakeAPI{statusResults: []statusResult{{paid: false}}})

	// Nothing to resume yet.
	assert.False(t, fx.ctrl.ResumePayment(context.Background()))

	require.NoError(t, fx.state.SetPaymentResume(context.Background(), "user-1", "tx-uuid", "ORD-9"))
	assert.True(t, fx.ctrl.ResumePayment(context.Background()))
	assert.True(t, fx.ctrl.Session().PopupOpen)
}

func TestController_SelectCallingCodeIsSticky(t *testing.T) {
	fx := newControllerFixture(t, &fakeAPI{
		codes: []api.CallingCode{{Country: "Germany", DialCode: "+49"}},
	})
	ctx := context.Background()

	fx.ctrl.SelectCallingCode(ctx, "+380")
	fx.ctrl.SelectCountry(ctx, "Germany")

	// Manual choice survives the country-driven derivation.
	assert.Equal(t, "+380", fx.ctrl.Session().Info.Phone.CountryCode)

	manual, err := fx.state.ManualCallingCode(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, manual)
}

// assertionError is a trivial error type for fakes.
type assertionError string

func (e assertionError) Error() string { return string(e) }
