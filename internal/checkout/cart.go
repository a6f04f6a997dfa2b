package checkout

import (
	"context"

	"go.uber.org/zap"
)

// CartResolver reconciles the authoritative server cart against the product
// ids carried in from navigation. Read-only: it never mutates server state.
type CartResolver struct {
	api    MarketplaceAPI
	logger *zap.Logger
}

func NewCartResolver(apiClient MarketplaceAPI, logger *zap.Logger) *CartResolver {
	return &CartResolver{
		api:    apiClient,
		logger: logger,
	}
}

// Resolve intersects the user's server cart with requestedIDs, preserving
// the authoritative item data. Missing user id or an unavailable cart yields
// an empty list; the submitter then falls back to the cached id list.
func (r *CartResolver) Resolve(ctx context.Context, userID string, requestedIDs []string) []CartLineItem {
	if len(requestedIDs) == 0 {
		return nil
	}
	if userID == "" {
		r.logger.Warn("Cart resolve skipped: no user id in session identity")
		return nil
	}

	cart, err := r.api.Cart(ctx, userID)
	if err != nil {
		r.logger.Warn("Server cart unavailable, deferring to cached ids",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil
	}

	requested := make(map[string]bool, len(requestedIDs))
	for _, id := range requestedIDs {
		requested[id] = true
	}

	items := make([]CartLineItem, 0, len(requestedIDs))
	for _, item := range cart {
		if !requested[item.ProductID] {
			continue
		}
		items = append(items, CartLineItem{
			ProductID:     item.ProductID,
			SiteName:      item.SiteName,
			AdjustedPrice: item.AdjustedPrice,
			Currency:      item.Currency,
			Categories:    item.Categories,
		})
	}
	return items
}
