package api

import "github.com/shopspring/decimal"

// MsgInvalidToken is the literal response message the marketplace returns for
// an expired or rejected bearer token. The upstream contract matches on this
// exact string regardless of HTTP status, so it must not change.
const MsgInvalidToken = "Invalid or expired token"

type Profile struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Country    string `json:"country"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

type ProfileUpdate struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Country    string `json:"country"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

type Country struct {
	Name   string   `json:"name"`
	Code   string   `json:"code"`
	Cities []string `json:"cities"`
}

type CallingCode struct {
	Country  string `json:"country"`
	DialCode string `json:"dial_code"`
}

// PaymentService is one crypto network/currency pair the payment provider
// accepts.
type PaymentService struct {
	Network  string `json:"network"`
	Currency string `json:"currency"`
}

type CartItem struct {
	ProductID     string          `json:"product_id"`
	SiteName      string          `json:"site_name"`
	AdjustedPrice decimal.Decimal `json:"adjusted_price"`
	Currency      string          `json:"currency"`
	Categories    []string        `json:"categories"`
}

type ClientOrderRequest struct {
	Email       string   `json:"email"`
	BackupEmail string   `json:"backup_email"`
	Notes       string   `json:"notes"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Phone       string   `json:"phone"`
	Country     string   `json:"country"`
	City        string   `json:"city"`
	PostalCode  string   `json:"postal_code"`
	AnchorLink  string   `json:"anchorLink"`
	File        string   `json:"file"`
	Network     string   `json:"network"`
	ToCurrency  string   `json:"to_currency"`
	Products    []string `json:"products"`
}

type PublisherOrderRequest struct {
	Email      string   `json:"email"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Phone      string   `json:"phone"`
	Country    string   `json:"country"`
	City       string   `json:"city"`
	PostalCode string   `json:"postal_code"`
	Anchor     string   `json:"anchor"`
	AnchorLink string   `json:"anchorLink"`
	WordLimit  int      `json:"wordLimit"`
	Network    string   `json:"network"`
	ToCurrency string   `json:"to_currency"`
	Products   []string `json:"products"`
}

// PaymentTransaction is the nested payload of a successful order response.
// Field names follow the payment provider's wire format.
type PaymentTransaction struct {
	UUID          string `json:"uuid"`
	OrderNumber   string `json:"orderNumber"`
	Address       string `json:"address"`
	AddressQRCode string `json:"address_qr_code"`
	PayerAmount   string `json:"payer_amount"`
	PayerCurrency string `json:"payer_currency"`
	Network       string `json:"network"`
}

// OrderResult carries the raw outcome of an order submission. Interpretation
// (201-only success, literal token-failure message) is the caller's job.
type OrderResult struct {
	StatusCode  int
	Message     string
	Transaction *PaymentTransaction
}
