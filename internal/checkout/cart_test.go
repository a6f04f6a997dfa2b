package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"guestpost-checkout/pkg/api"
)

func TestCartResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	serverCart := []api.CartItem{
		{ProductID: "p1", SiteName: "alpha.com", AdjustedPrice: decimal.NewFromInt(40), Currency: "EUR", Categories: []string{"tech"}},
		{ProductID: "p2", SiteName: "beta.com", AdjustedPrice: decimal.NewFromInt(25), Currency: "EUR"},
		{ProductID: "p3", SiteName: "gamma.com", AdjustedPrice: decimal.NewFromInt(10), Currency: "EUR"},
	}

	t.Run("intersects with requested ids", func(t *testing.T) {
		resolver := NewCartResolver(&fakeAPI{cart: serverCart}, zap.NewNop())
		items := resolver.Resolve(ctx, "user-1", []string{"p1", "p3", "missing"})

		require.Len(t, items, 2)
		// Authoritative item data is preserved.
		assert.Equal(t, "alpha.com", items[0].SiteName)
		assert.True(t, items[0].AdjustedPrice.Equal(decimal.NewFromInt(40)))
		assert.Equal(t, "p3", items[1].ProductID)
	})

	t.Run("no requested ids", func(t *testing.T) {
		resolver := NewCartResolver(&fakeAPI{cart: serverCart}, zap.NewNop())
		assert.Nil(t, resolver.Resolve(ctx, "user-1", nil))
	})

	t.Run("missing user id", func(t *testing.T) {
		resolver := NewCartResolver(&fakeAPI{cart: serverCart}, zap.NewNop())
		assert.Nil(t, resolver.Resolve(ctx, "", []string{"p1"}))
	})

	t.Run("cart service unavailable", func(t *testing.T) {
		resolver := NewCartResolver(&fakeAPI{cartErr: errors.New("timeout")}, zap.NewNop())
		assert.Nil(t, resolver.Resolve(ctx, "user-1", []string{"p1"}))
	})
}
