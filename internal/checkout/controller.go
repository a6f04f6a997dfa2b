package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"guestpost-checkout/pkg/api"
)

// ControllerConfig wires a Controller's collaborators and timing knobs.
type ControllerConfig struct {
	API       MarketplaceAPI
	State     PersistedState
	Journal   Journal
	Notifier  Notifier
	Navigator Navigator
	Operator  OperatorNotifier
	Logger    *zap.Logger

	PollInterval       time.Duration
	InitialLoadingDamp time.Duration
	AuthRedirectDelay  time.Duration

	SignInRoute       string
	OrderConfirmRoute string // fmt pattern with one %s for the order number
}

// Controller is the top-level checkout state machine: it owns the session,
// drives validators and the submitter, and manages the QR popup lifecycle.
type Controller struct {
	mu sync.Mutex

	baseCtx   context.Context
	cfg       ControllerConfig
	profile   *ProfileSync
	cart      *CartResolver
	submitter *Submitter
	poller    *Poller
	logger    *zap.Logger

	token  string
	userID string

	sess       *Session
	activePoll *Poll
}

// NewController builds a controller for one buyer session. The token is the
// existing auth cookie value; userID is the stored session identity.
func NewController(baseCtx context.Context, cfg ControllerConfig, token, userID string) *Controller {
	logger := cfg.Logger
	profile := NewProfileSync(cfg.API, cfg.State, logger)

	return &Controller{
		baseCtx:   baseCtx,
		cfg:       cfg,
		profile:   profile,
		cart:      NewCartResolver(cfg.API, logger),
		submitter: NewSubmitter(cfg.API, profile, cfg.State, cfg.Journal, logger),
		poller:    NewPoller(cfg.API, cfg.PollInterval, cfg.InitialLoadingDamp, logger),
		logger:    logger,
		token:     token,
		userID:    userID,
		sess: &Session{
			ID:       uuid.NewString(),
			Step:     StepContentSelection,
			EditMode: true,
		},
	}
}

// Mount loads the profile, the three reference lists and the cart. Every
// load is independently tolerant of failure; the cascades re-run after each
// arrival so ordering never matters. A non-empty displayName replaces the
// stored identity; otherwise the stored one is restored.
func (c *Controller) Mount(ctx context.Context, displayName string, cartIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if displayName != "" {
		c.sess.DisplayName = displayName
		if err := c.cfg.State.SetDisplayName(ctx, c.userID, displayName); err != nil {
			c.logger.Warn("Failed to persist display name", zap.Error(err))
		}
	} else if stored, err := c.cfg.State.DisplayName(ctx, c.userID); err == nil {
		c.sess.DisplayName = stored
	}

	if err := c.profile.Load(ctx, c.token, c.sess); err != nil {
		c.cfg.Notifier.Error(err)
	}

	if countries, err := c.cfg.API.Countries(ctx); err == nil {
		c.sess.Countries = countries
		c.applyCascades(ctx)
	} else {
		c.logger.Warn("Country list unavailable", zap.Error(err))
	}
	if codes, err := c.cfg.API.CallingCodes(ctx); err == nil {
		c.sess.CallingCodes = codes
		c.applyCascades(ctx)
	} else {
		c.logger.Warn("Calling-code list unavailable", zap.Error(err))
	}
	if services, err := c.cfg.API.PaymentServices(ctx); err == nil {
		c.sess.PaymentServices = services
	} else {
		c.logger.Warn("Payment-service list unavailable", zap.Error(err))
	}

	if len(cartIDs) > 0 {
		c.sess.Items = c.cart.Resolve(ctx, c.userID, cartIDs)
		if err := c.cfg.State.SetCachedCartIDs(ctx, c.userID, cartIDs); err != nil {
			c.logger.Warn("Failed to cache cart ids", zap.Error(err))
		}
		c.recalcTotal()
	}
}

// Proceed gates the step 1 -> 2 transition. On success the step-1 fields are
// snapshotted into the session; on failure the first failing rule is
// surfaced and nothing advances.
func (c *Controller) Proceed(req ContentRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ValidateStepOne(req); err != nil {
		c.cfg.Notifier.Error(err)
		return err
	}

	c.snapshot(req)
	c.sess.Step = StepDetails
	c.recalcTotal()
	return nil
}

// Back returns to content selection without discarding step-2 data and
// unlocks the profile form so its fields can be reloaded.
func (c *Controller) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sess.Step = StepContentSelection
	c.sess.EditMode = true
}

// SaveProfile persists the edited personal info. Success flips the form to
// read-only; failure leaves it open for retry.
func (c *Controller) SaveProfile(ctx context.Context, info PersonalInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.profile.Save(ctx, c.token, info); err != nil {
		c.cfg.Notifier.Error(err)
		return err
	}

	c.sess.Info = info
	c.sess.EditMode = false
	c.cfg.Notifier.Success("profile_updated")
	return nil
}

// SelectCountry changes the country and re-derives the dependent fields.
func (c *Controller) SelectCountry(ctx context.Context, country string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sess.Info.Country = country
	c.applyCascades(ctx)
}

// SelectCallingCode records a manual calling-code choice. Manual selection
// wins over the country-derived suggestion for the rest of the session and
// across reloads.
func (c *Controller) SelectCallingCode(ctx context.Context, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sess.Info.Phone.CountryCode = code
	if err := c.cfg.State.SetManualCallingCode(ctx, c.userID, true); err != nil {
		c.logger.Warn("Failed to persist manual calling-code flag", zap.Error(err))
	}
}

// CompletePurchase dispatches to the submitter for the given content
// variant, holding the loading flag for the duration. Terminal states:
// popup open with polling, order placed without a usable QR, or a surfaced
// error with no state change.
func (c *Controller) CompletePurchase(ctx context.Context, req ContentRequest, currency, network string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sess.Currency = currency
	c.sess.Network = network
	c.sess.Loading = true
	defer func() { c.sess.Loading = false }()

	tx, err := c.submitter.Submit(ctx, c.token, c.userID, c.sess, req)
	if err == nil {
		rec := c.orderRecord(tx)
		c.sess.ResetOrderFields()
		c.notifyOperator(ctx, rec)
		c.openPopup(ctx, tx)
		return nil
	}

	switch KindOf(err) {
	case KindAuth:
		c.cfg.Notifier.Error(err)
		c.scheduleSignInRedirect()
	case KindPaymentData:
		// The order exists server-side; only the payment view is unusable.
		rec := c.orderRecord(tx)
		c.sess.ResetOrderFields()
		if tx != nil {
			c.sess.Payment = tx
			c.notifyOperator(ctx, rec)
		}
		c.cfg.Notifier.Error(err)
	default:
		c.cfg.Notifier.Error(err)
	}
	return err
}

// orderRecord captures the operator-facing order summary before the
// transient order fields are cleared.
func (c *Controller) orderRecord(tx *api.PaymentTransaction) OrderRecord {
	rec := OrderRecord{
		ContentOption: c.sess.ContentOption,
		Email:         c.sess.Info.Email,
		Total:         c.sess.Total,
		Currency:      c.sess.Currency,
		Network:       c.sess.Network,
	}
	for _, item := range c.sess.Items {
		rec.Products = append(rec.Products, item.ProductID)
	}
	if tx != nil {
		rec.OrderNumber = tx.OrderNumber
		rec.PaymentUUID = tx.UUID
	}
	return rec
}

func (c *Controller) notifyOperator(ctx context.Context, rec OrderRecord) {
	if c.cfg.Operator == nil {
		return
	}
	c.cfg.Operator.OrderPlaced(ctx, rec)
}

// ResumePayment reopens the payment popup from the durable resume keys, for
// a buyer returning to the payment view after a reload.
func (c *Controller) ResumePayment(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.openPopup(ctx, c.sess.Payment)
}

// ClosePopup closes the QR popup and cancels polling. Safe to call twice.
func (c *Controller) ClosePopup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sess.PopupOpen = false
	c.stopPollLocked()
}

// Teardown releases the controller's resources on view unmount.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopPollLocked()
}

// Session returns a copy of the current session for rendering.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	return *c.sess
}

// openPopup opens the QR popup and starts polling. The entry condition is
// that both resume keys exist in durable storage.
func (c *Controller) openPopup(ctx context.Context, tx *api.PaymentTransaction) bool {
	paymentUUID, orderID, err := c.cfg.State.PaymentResume(ctx, c.userID)
	if err != nil {
		c.logger.Error("Failed to read payment resume keys", zap.Error(err))
		return false
	}
	if paymentUUID == "" || orderID == "" {
		return false
	}

	if tx != nil {
		c.sess.Payment = tx
	}
	c.sess.PopupOpen = true
	c.sess.InitialLoading = true
	c.sess.WaitingPayment = false

	c.stopPollLocked()
	poll := c.poller.Start(c.baseCtx, paymentUUID, orderID)
	c.activePoll = poll
	go c.consume(poll, orderID)
	return true
}

func (c *Controller) consume(poll *Poll, orderID string) {
	for ev := range poll.Events() {
		c.mu.Lock()
		switch ev.Kind {
		case PollLoaded:
			c.sess.InitialLoading = false

		case PollWaiting:
			c.sess.WaitingPayment = true

		case PollFailed:
			c.cfg.Notifier.Error(ev.Err)

		case PollPaid:
			c.sess.InitialLoading = false
			c.sess.WaitingPayment = false
			c.sess.PopupOpen = false
			c.sess.Paid = true
			c.confirmPayment(orderID)
			poll.Stop()
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	if c.activePoll == poll {
		c.activePoll = nil
	}
	c.mu.Unlock()
}

// confirmPayment runs the post-confirmation cleanup: cached cart and resume
// keys cleared, journal updated, navigation to the confirmation view.
func (c *Controller) confirmPayment(orderID string) {
	ctx := c.baseCtx

	if err := c.cfg.State.ClearCachedCart(ctx, c.userID); err != nil {
		c.logger.Warn("Failed to clear cached cart", zap.Error(err))
	}
	if err := c.cfg.State.ClearPaymentResume(ctx, c.userID); err != nil {
		c.logger.Warn("Failed to clear payment resume keys", zap.Error(err))
	}
	if c.cfg.Journal != nil {
		if err := c.cfg.Journal.MarkPaid(ctx, orderID); err != nil {
			c.logger.Error("Failed to mark order paid",
				zap.String("order_number", orderID),
				zap.Error(err))
		}
	}
	if c.cfg.Operator != nil {
		c.cfg.Operator.PaymentConfirmed(ctx, orderID)
	}

	c.cfg.Navigator.NavigateTo(fmt.Sprintf(c.cfg.OrderConfirmRoute, orderID))
}

func (c *Controller) scheduleSignInRedirect() {
	time.AfterFunc(c.cfg.AuthRedirectDelay, func() {
		c.cfg.Navigator.NavigateTo(c.cfg.SignInRoute)
	})
}

func (c *Controller) stopPollLocked() {
	if c.activePoll != nil {
		c.activePoll.Stop()
	}
}

func (c *Controller) snapshot(req ContentRequest) {
	c.sess.ContentOption = req.Option()
	switch content := req.(type) {
	case ClientContent:
		c.sess.Client = content
		c.sess.FileMode = content.FileMode
	case *ClientContent:
		c.sess.Client = *content
		c.sess.FileMode = content.FileMode
	case PublisherContent:
		c.sess.Publisher = content
		c.sess.WordCount = content.WordCount
	case *PublisherContent:
		c.sess.Publisher = *content
		c.sess.WordCount = content.WordCount
	}
}

func (c *Controller) recalcTotal() {
	c.sess.Total = CartTotal(c.sess.Items, c.sess.ContentOption, c.sess.WordCount)
}

// applyCascades re-derives city list, auto-selected city and calling code
// from whatever reference data has arrived so far.
func (c *Controller) applyCascades(ctx context.Context) {
	c.sess.Cities = DeriveCities(c.sess.Countries, c.sess.Info.Country)
	c.sess.Info.City = AutoSelectCity(c.sess.Cities, c.sess.Info.City, c.sess.EditMode)

	manual, err := c.cfg.State.ManualCallingCode(ctx, c.userID)
	if err != nil {
		c.logger.Warn("Failed to read manual calling-code flag", zap.Error(err))
	}
	c.sess.Info.Phone.CountryCode = DeriveCallingCode(
		c.sess.CallingCodes,
		c.sess.Info.Country,
		c.sess.Info.Phone.CountryCode,
		manual,
	)
}
