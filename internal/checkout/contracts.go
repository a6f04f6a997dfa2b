package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"guestpost-checkout/pkg/api"
)

// MarketplaceAPI is the slice of the marketplace client the checkout engine
// consumes.
type MarketplaceAPI interface {
	Profile(ctx context.Context, token string) (*api.Profile, error)
	UpdateProfile(ctx context.Context, token string, upd api.ProfileUpdate) error
	Countries(ctx context.Context) ([]api.Country, error)
	CallingCodes(ctx context.Context) ([]api.CallingCode, error)
	PaymentServices(ctx context.Context) ([]api.PaymentService, error)
	Cart(ctx context.Context, userID string) ([]api.CartItem, error)
	UploadFile(ctx context.Context, token, name string, data []byte) (string, error)
	SubmitClientOrder(ctx context.Context, token string, order api.ClientOrderRequest) (*api.OrderResult, error)
	SubmitPublisherOrder(ctx context.Context, token string, order api.PublisherOrderRequest) (*api.OrderResult, error)
	PaymentStatus(ctx context.Context, uuid, orderID string) (bool, error)
}

// StatusClient is the poller's view of the API.
type StatusClient interface {
	PaymentStatus(ctx context.Context, uuid, orderID string) (bool, error)
}

// PersistedState is the durable per-user key-value state that survives a
// reload: payment-resume keys, the cached cart-id list and the manual
// calling-code flag. Missing keys read back as zero values.
type PersistedState interface {
	SetPaymentResume(ctx context.Context, userID, uuid, orderID string) error
	PaymentResume(ctx context.Context, userID string) (uuid, orderID string, err error)
	ClearPaymentResume(ctx context.Context, userID string) error

	SetCachedCartIDs(ctx context.Context, userID string, ids []string) error
	CachedCartIDs(ctx context.Context, userID string) ([]string, error)
	ClearCachedCart(ctx context.Context, userID string) error

	SetManualCallingCode(ctx context.Context, userID string, manual bool) error
	ManualCallingCode(ctx context.Context, userID string) (bool, error)

	SetDisplayName(ctx context.Context, userID, name string) error
	DisplayName(ctx context.Context, userID string) (string, error)
}

// Notifier delivers user-visible toasts. Codes are localized by the front
// end.
type Notifier interface {
	Success(code string)
	Error(err error)
}

// Navigator performs route changes on behalf of the controller.
type Navigator interface {
	NavigateTo(route string)
}

// OrderRecord is the journal's view of a placed order.
type OrderRecord struct {
	OrderNumber   string
	PaymentUUID   string
	ContentOption string
	Email         string
	Total         decimal.Decimal
	Currency      string
	Network       string
	Products      []string
}

// Journal records placed orders and payment confirmations. Journal failures
// must never fail checkout.
type Journal interface {
	RecordOrder(ctx context.Context, rec OrderRecord) error
	MarkPaid(ctx context.Context, orderNumber string) error
}

// OperatorNotifier informs the marketplace operator about order lifecycle
// events. Implementations must be safe to call with a nil transport.
type OperatorNotifier interface {
	OrderPlaced(ctx context.Context, rec OrderRecord)
	PaymentConfirmed(ctx context.Context, orderNumber string)
}
