package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/coffee-order/models"
	"gorm.io/gorm/clause"
)

func newCart(t *testing.T) (*CartService, models.User) {
	t.Helper()
	db := newTestDB(t)
	user := createUser(t, db, "ada@example.com")
	createItem(t, db, "Latte", "latte", "5.00")
	createItem(t, db, "Mocha", "mocha", "3.00")
	return NewCartService(db, NewCatalogService(db)), user
}

func countRows(t *testing.T, cart *CartService, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, cart.db.Model(model).Count(&n).Error)
	return n
}

func TestAddItemTwiceIncrementsQuantity(t *testing.T) {
	cart, user := newCart(t)
	ctx := context.Background()

	line, err := cart.AddItem(ctx, user.ID, "latte")
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)

	line, err = cart.AddItem(ctx, user.ID, "latte")
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	assert.EqualValues(t, 1, countRows(t, cart, &models.OrderItem{}))
	assert.EqualValues(t, 1, countRows(t, cart, &models.Order{}))

	order, found, err := cart.GetOpenOrder(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "Latte", order.Items[0].Item.Name)
}

func TestAddItemsShareOneOpenOrder(t *testing.T) {
	cart, user := newCart(t)
	ctx := context.Background()

	for _, slug := range []string{"latte", "mocha", "latte", "mocha", "mocha"} {
		_, err := cart.AddItem(ctx, user.ID, slug)
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, countRows(t, cart, &models.Order{}))
	assert.EqualValues(t, 2, countRows(t, cart, &models.OrderItem{}))

	order, found, err := cart.GetOpenOrder(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Latte:2, Mocha:3", order.Description())
	assert.True(t, decimal.NewFromInt(19).Equal(order.Total()), order.Total().String())
	assert.False(t, order.OrderedDate.IsZero())
}

func TestAddItemUnknownSlug(t *testing.T) {
	cart, user := newCart(t)

	_, err := cart.AddItem(context.Background(), user.ID, "espresso")
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Zero(t, countRows(t, cart, &models.OrderItem{}))
	assert.Zero(t, countRows(t, cart, &models.Order{}))
}

func TestRemoveSingleItemDownToNothing(t *testing.T) {
	cart, user := newCart(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := cart.AddItem(ctx, user.ID, "latte")
		require.NoError(t, err)
	}

	for i := 0; i < 3; i++ {
		removed, err := cart.RemoveSingleItem(ctx, user.ID, "latte")
		require.NoError(t, err)
		assert.True(t, removed)
	}

	assert.Zero(t, countRows(t, cart, &models.OrderItem{}))

	order, found, err := cart.GetOpenOrder(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, found, "order survives with zero lines")
	assert.Empty(t, order.Items)

	removed, err := cart.RemoveSingleItem(ctx, user.ID, "latte")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRemoveItemDeletesWholeLine(t *testing.T) {
	cart, user := newCart(t)
	ctx := context.Background()

	for _, slug := range []string{"latte", "latte", "mocha"} {
		_, err := cart.AddItem(ctx, user.ID, slug)
		require.NoError(t, err)
	}

	removed, err := cart.RemoveItem(ctx, user.ID, "latte")
	require.NoError(t, err)
	assert.True(t, removed)

	order, _, err := cart.GetOpenOrder(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "mocha", order.Items[0].Item.Slug)

	// re-adding after removal starts a fresh line at quantity 1
	line, err := cart.AddItem(ctx, user.ID, "latte")
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)
}

func TestRemoveWhenAbsentIsNoop(t *testing.T) {
	cart, user := newCart(t)
	ctx := context.Background()

	removed, err := cart.RemoveItem(ctx, user.ID, "latte")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = cart.AddItem(ctx, user.ID, "mocha")
	require.NoError(t, err)

	removed, err = cart.RemoveItem(ctx, user.ID, "latte")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = cart.RemoveItem(ctx, user.ID, "unknown")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	cart, ada := newCart(t)
	grace := createUser(t, cart.db, "grace@example.com")
	ctx := context.Background()

	_, err := cart.AddItem(ctx, ada.ID, "latte")
	require.NoError(t, err)
	_, err = cart.AddItem(ctx, grace.ID, "latte")
	require.NoError(t, err)

	assert.EqualValues(t, 2, countRows(t, cart, &models.Order{}))

	_, found, err := cart.GetOpenOrder(ctx, grace.ID)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSecondOpenOrderIsRejected(t *testing.T) {
	cart, user := newCart(t)
	_, err := cart.AddItem(context.Background(), user.ID, "latte")
	require.NoError(t, err)

	key := user.ID
	dup := models.Order{UserID: user.ID, OpenKey: &key}
	dup.OrderedDate = cart.now()
	assert.Error(t, cart.db.Omit(clause.Associations).Create(&dup).Error)
}
