package checkout

import (
	"github.com/shopspring/decimal"

	"guestpost-checkout/pkg/api"
)

// Steps of the wizard.
const (
	StepContentSelection = "content_selection"
	StepDetails          = "details"
)

// Content supply options.
const (
	ContentClient    = "client"
	ContentPublisher = "publisher"
)

// File modes for the client variant.
const (
	FileModeUpload = "upload"
	FileModeURL    = "url"
)

// Publisher word-count tiers.
var WordCounts = []int{650, 750, 850}

// ContentRequest is the step-1 payload, one variant per content supply
// option.
type ContentRequest interface {
	Option() string
}

// ClientContent is the buyer-supplied-article variant.
type ClientContent struct {
	Notes       string `json:"notes"`
	AnchorLink  string `json:"anchor_link"`
	BackupEmail string `json:"backup_email"`
	FileMode    string `json:"file_mode"`
	FileName    string `json:"file_name"`
	FileData    []byte `json:"file_data,omitempty"`
	FileURL     string `json:"file_url"`
}

func (ClientContent) Option() string { return ContentClient }

// PublisherContent is the publisher-written-article variant.
type PublisherContent struct {
	Topic       string `json:"topic"`
	Anchor      string `json:"anchor"`
	AnchorLink  string `json:"anchor_link"`
	BackupEmail string `json:"backup_email"`
	WordCount   int    `json:"word_count"`
}

func (PublisherContent) Option() string { return ContentPublisher }

// PersonalInfo is the buyer's profile as edited during checkout.
type PersonalInfo struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      Phone  `json:"phone"`
	Country    string `json:"country"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// CartLineItem is one resolved checkout line. Immutable once resolved.
type CartLineItem struct {
	ProductID     string          `json:"product_id"`
	SiteName      string          `json:"site_name"`
	AdjustedPrice decimal.Decimal `json:"adjusted_price"`
	Currency      string          `json:"currency"`
	Categories    []string        `json:"categories"`
}

// Session holds all per-checkout state. It is owned by a single Controller
// and discarded on navigation away or after a successful order reset.
type Session struct {
	ID   string `json:"id"`
	Step string `json:"step"`

	DisplayName string `json:"display_name"`

	ContentOption string `json:"content_option"`
	WordCount     int    `json:"word_count"`
	FileMode      string `json:"file_mode"`

	// Step-1 snapshots, filled by Proceed.
	Client    ClientContent    `json:"client"`
	Publisher PublisherContent `json:"publisher"`

	Info     PersonalInfo `json:"info"`
	EditMode bool         `json:"edit_mode"`

	Currency string `json:"currency"`
	Network  string `json:"network"`

	Items []CartLineItem  `json:"items"`
	Total decimal.Decimal `json:"total"`

	// Reference data, each load independent and order-free.
	Countries       []api.Country        `json:"-"`
	CallingCodes    []api.CallingCode    `json:"-"`
	PaymentServices []api.PaymentService `json:"-"`
	Cities          []string             `json:"cities"`

	Payment *api.PaymentTransaction `json:"payment,omitempty"`

	PopupOpen      bool `json:"popup_open"`
	Loading        bool `json:"loading"`
	InitialLoading bool `json:"initial_loading"`
	WaitingPayment bool `json:"waiting_payment"`
	Paid           bool `json:"paid"`
}

// ResetOrderFields clears the transient form state after a placed order.
// Profile fields survive, matching the dialog reset that preserves the
// buyer's contact data.
func (s *Session) ResetOrderFields() {
	s.Client = ClientContent{}
	s.Publisher = PublisherContent{}
	s.Items = nil
	s.Total = decimal.Zero
	s.WordCount = 0
	s.FileMode = ""
}
