package checkout

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"guestpost-checkout/pkg/api"
)

const qrPrefix = "data:image/png;base64,"

// Submitter assembles and submits an order, then interprets the response
// into either a payment transaction or a terminal error. One code path for
// both content variants; the request shape is picked by matching on the
// variant.
type Submitter struct {
	api     MarketplaceAPI
	profile *ProfileSync
	state   PersistedState
	journal Journal
	logger  *zap.Logger
}

func NewSubmitter(
	apiClient MarketplaceAPI,
	profile *ProfileSync,
	state PersistedState,
	journal Journal,
	logger *zap.Logger,
) *Submitter {
	return &Submitter{
		api:     apiClient,
		profile: profile,
		state:   state,
		journal: journal,
		logger:  logger,
	}
}

// Submit runs the full submission sequence. On an auth failure it returns
// ErrTokenExpired regardless of status code. A transaction may be returned
// together with a payment-data error: the order is placed but the QR flow
// cannot open.
func (s *Submitter) Submit(ctx context.Context, token, userID string, sess *Session, req ContentRequest) (*api.PaymentTransaction, error) {
	if err := s.profile.Save(ctx, token, sess.Info); err != nil {
		return nil, err
	}

	if err := ValidateRequiredFields(sess.Info, sess.Currency, sess.Network); err != nil {
		return nil, err
	}

	products, err := s.resolveProducts(ctx, userID, sess)
	if err != nil {
		return nil, err
	}

	var result *api.OrderResult
	switch content := req.(type) {
	case ClientContent:
		result, err = s.submitClient(ctx, token, sess, content, products)
	case *ClientContent:
		result, err = s.submitClient(ctx, token, sess, *content, products)
	case PublisherContent:
		result, err = s.submitPublisher(ctx, token, sess, content, products)
	case *PublisherContent:
		result, err = s.submitPublisher(ctx, token, sess, *content, products)
	default:
		return nil, fmt.Errorf("unknown content request %T", req)
	}
	if err != nil {
		if KindOf(err) != 0 {
			return nil, err
		}
		return nil, wrap(ErrProcessOrder, err)
	}

	return s.interpret(ctx, userID, sess, req, products, result)
}

// resolveProducts prefers the resolved line items, falling back to the
// cached id list from the last visit.
func (s *Submitter) resolveProducts(ctx context.Context, userID string, sess *Session) ([]string, error) {
	if len(sess.Items) > 0 {
		ids := make([]string, 0, len(sess.Items))
		for _, item := range sess.Items {
			ids = append(ids, item.ProductID)
		}
		return ids, nil
	}

	cached, err := s.state.CachedCartIDs(ctx, userID)
	if err != nil {
		s.logger.Warn("Cached cart ids unavailable",
			zap.String("user_id", userID),
			zap.Error(err))
	}
	if len(cached) == 0 {
		return nil, ErrNoProducts
	}
	return cached, nil
}

func (s *Submitter) submitClient(ctx context.Context, token string, sess *Session, content ClientContent, products []string) (*api.OrderResult, error) {
	fileURL, err := s.resolveFile(ctx, token, content)
	if err != nil {
		return nil, err
	}

	order := api.ClientOrderRequest{
		Email:       sess.Info.Email,
		BackupEmail: content.BackupEmail,
		Notes:       content.Notes,
		FirstName:   sess.Info.FirstName,
		LastName:    sess.Info.LastName,
		Phone:       FormatFullPhone(sess.Info.Phone),
		Country:     sess.Info.Country,
		City:        sess.Info.City,
		PostalCode:  sess.Info.PostalCode,
		AnchorLink:  content.AnchorLink,
		File:        fileURL,
		Network:     sess.Network,
		ToCurrency:  sess.Currency,
		Products:    products,
	}
	return s.api.SubmitClientOrder(ctx, token, order)
}

func (s *Submitter) submitPublisher(ctx context.Context, token string, sess *Session, content PublisherContent, products []string) (*api.OrderResult, error) {
	order := api.PublisherOrderRequest{
		Email:      sess.Info.Email,
		FirstName:  sess.Info.FirstName,
		LastName:   sess.Info.LastName,
		Phone:      FormatFullPhone(sess.Info.Phone),
		Country:    sess.Info.Country,
		City:       sess.Info.City,
		PostalCode: sess.Info.PostalCode,
		Anchor:     content.Anchor,
		AnchorLink: content.AnchorLink,
		WordLimit:  content.WordCount,
		Network:    sess.Network,
		ToCurrency: sess.Currency,
		Products:   products,
	}
	return s.api.SubmitPublisherOrder(ctx, token, order)
}

// resolveFile uploads the article first when in upload mode and uses the
// returned URL; in url mode the typed URL is used directly.
func (s *Submitter) resolveFile(ctx context.Context, token string, content ClientContent) (string, error) {
	switch {
	case content.FileMode == FileModeUpload && len(content.FileData) > 0:
		url, err := s.api.UploadFile(ctx, token, content.FileName, content.FileData)
		if err != nil {
			return "", wrap(ErrProcessOrder, fmt.Errorf("upload file: %w", err))
		}
		return url, nil
	case content.FileMode == FileModeURL && content.FileURL != "":
		return content.FileURL, nil
	default:
		return "", ErrFileOrURLRequired
	}
}

// interpret applies the response contract: the literal token-failure message
// is authoritative over any status; only 201 is success; a missing payment
// payload or malformed QR still counts as a placed order.
func (s *Submitter) interpret(ctx context.Context, userID string, sess *Session, req ContentRequest, products []string, result *api.OrderResult) (*api.PaymentTransaction, error) {
	if result.Message == api.MsgInvalidToken {
		return nil, ErrTokenExpired
	}
	if result.StatusCode != http.StatusCreated {
		return nil, wrap(ErrProcessOrder, fmt.Errorf("unexpected status: %d", result.StatusCode))
	}

	tx := result.Transaction
	if tx == nil {
		return nil, ErrPaymentDataMissing
	}

	if err := s.state.SetPaymentResume(ctx, userID, tx.UUID, tx.OrderNumber); err != nil {
		s.logger.Error("Failed to persist payment resume keys",
			zap.String("order_number", tx.OrderNumber),
			zap.Error(err))
	}

	s.record(ctx, userID, sess, req, products, tx)

	if !ValidQRCode(tx.AddressQRCode) {
		return tx, ErrQRCodeFormat
	}
	return tx, nil
}

func (s *Submitter) record(ctx context.Context, userID string, sess *Session, req ContentRequest, products []string, tx *api.PaymentTransaction) {
	if s.journal == nil {
		return
	}
	rec := OrderRecord{
		OrderNumber:   tx.OrderNumber,
		PaymentUUID:   tx.UUID,
		ContentOption: req.Option(),
		Email:         sess.Info.Email,
		Total:         CartTotal(sess.Items, req.Option(), sess.WordCount),
		Currency:      sess.Currency,
		Network:       sess.Network,
		Products:      products,
	}
	if err := s.journal.RecordOrder(ctx, rec); err != nil {
		s.logger.Error("Failed to journal order",
			zap.String("order_number", tx.OrderNumber),
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

// ValidQRCode reports whether the QR string is a well-formed
// data:image/png;base64 URI. The popup opens only on a valid QR.
func ValidQRCode(qr string) bool {
	if !strings.HasPrefix(qr, qrPrefix) {
		return false
	}
	payload := strings.TrimPrefix(qr, qrPrefix)
	if payload == "" {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(payload)
	return err == nil
}
