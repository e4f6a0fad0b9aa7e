package services_test

import (
	"testing"

	"telar/internal/models"
	"telar/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newGuestCartService() (*services.GuestCartService, *MockCartRepository, *MockProductRepository, *MockUserRepository) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	shopRepo := new(MockShopRepository)
	cartService := services.NewCartService(cartRepo, userRepo, shopRepo)
	return services.NewGuestCartService(cartRepo, productRepo, cartService, "COP"), cartRepo, productRepo, userRepo
}

func TestSyncGuestCartIntoExistingCart(t *testing.T) {
	svc, cartRepo, productRepo, _ := newGuestCartService()

	cart := &models.Cart{ID: "cart-1", BuyerUserID: "buyer-1", Currency: "COP", Status: models.CartStatusOpen, Version: 1}
	cartRepo.On("FindOpenByBuyer", "buyer-1").Return(cart, nil)
	cartRepo.On("GetItems", "cart-1").Return([]models.CartItem{}, nil)
	productRepo.On("FindByIDs", []string{"prod-1", "prod-2"}).Return([]models.Product{
		{ID: "prod-1", ShopID: "shop-1", Price: decimal.RequireFromString("5000.00"), Active: true},
		{ID: "prod-2", ShopID: "shop-2", Price: decimal.RequireFromString("120.50"), Active: true},
	}, nil)

	var created []models.CartItem
	cartRepo.On("SaveItems", cart, mock.AnythingOfType("[]models.CartItem"), mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).([]models.CartItem)
		}).Return(nil)

	res, err := svc.SyncGuestCart("buyer-1", []services.GuestCartItem{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-2", VariantID: "color=rojo", Quantity: 1},
	})
	assert.NoError(t, err)
	assert.Equal(t, "cart-1", res.CartID)
	assert.Equal(t, 2, res.ItemsSynced)

	assert.Len(t, created, 2)
	assert.Equal(t, "500000", created[0].UnitPriceMinor.String())
	assert.Equal(t, models.PriceSourceProductBase, created[0].PriceSource)
	assert.Equal(t, "12050", created[1].UnitPriceMinor.String())
	assert.Equal(t, "color=rojo", created[1].VariantKey)
	assert.Equal(t, "color=rojo", created[1].Metadata["variantId"])
}

func TestSyncGuestCartOpensCartWhenNoneExists(t *testing.T) {
	svc, cartRepo, productRepo, userRepo := newGuestCartService()

	cartRepo.On("FindOpenByBuyer", "buyer-1").Return(nil, nil)
	userRepo.On("Exists", "buyer-1").Return(true, nil)
	cartRepo.On("Create", mock.AnythingOfType("*models.Cart")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*models.Cart).ID = "cart-new"
		}).Return(nil)
	cartRepo.On("GetItems", "cart-new").Return([]models.CartItem{}, nil)
	productRepo.On("FindByIDs", []string{"prod-1"}).Return([]models.Product{
		{ID: "prod-1", ShopID: "shop-1", Price: decimal.RequireFromString("100.00"), Active: true},
	}, nil)
	cartRepo.On("SaveItems", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := svc.SyncGuestCart("buyer-1", []services.GuestCartItem{{ProductID: "prod-1", Quantity: 1}})
	assert.NoError(t, err)
	assert.Equal(t, "cart-new", res.CartID)
	assert.Equal(t, 1, res.ItemsSynced)
}

func TestSyncGuestCartMergesByIdentity(t *testing.T) {
	svc, cartRepo, productRepo, _ := newGuestCartService()

	cart := &models.Cart{ID: "cart-1", BuyerUserID: "buyer-1", Currency: "COP", Status: models.CartStatusOpen, Version: 3}
	cartRepo.On("FindOpenByBuyer", "buyer-1").Return(cart, nil)
	cartRepo.On("GetItems", "cart-1").Return([]models.CartItem{{
		ID:             "item-1",
		CartID:         "cart-1",
		ProductID:      "prod-1",
		SellerShopID:   "shop-1",
		Quantity:       2,
		Currency:       "COP",
		UnitPriceMinor: models.NewMinor(10000),
		PriceSource:    models.PriceSourceProductBase,
	}}, nil)
	productRepo.On("FindByIDs", []string{"prod-1"}).Return([]models.Product{
		// The catalog price moved since the snapshot; the existing line
		// must keep its original snapshot.
		{ID: "prod-1", ShopID: "shop-1", Price: decimal.RequireFromString("250.00"), Active: true},
	}, nil)

	var created, updated []models.CartItem
	cartRepo.On("SaveItems", cart, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created, _ = args.Get(1).([]models.CartItem)
			updated, _ = args.Get(2).([]models.CartItem)
		}).Return(nil)

	res, err := svc.SyncGuestCart("buyer-1", []services.GuestCartItem{{ProductID: "prod-1", Quantity: 3}})
	assert.NoError(t, err)
	assert.Equal(t, 1, res.ItemsSynced)

	assert.Empty(t, created)
	assert.Len(t, updated, 1)
	assert.Equal(t, "item-1", updated[0].ID)
	assert.Equal(t, 5, updated[0].Quantity)
	assert.Equal(t, "10000", updated[0].UnitPriceMinor.String())
}

func TestSyncGuestCartDropsStaleLines(t *testing.T) {
	svc, cartRepo, productRepo, _ := newGuestCartService()

	cart := &models.Cart{ID: "cart-1", BuyerUserID: "buyer-1", Currency: "COP", Status: models.CartStatusOpen, Version: 1}
	cartRepo.On("FindOpenByBuyer", "buyer-1").Return(cart, nil)
	cartRepo.On("GetItems", "cart-1").Return([]models.CartItem{}, nil)
	productRepo.On("FindByIDs", []string{"prod-gone", "prod-inactive", "prod-ok"}).Return([]models.Product{
		{ID: "prod-inactive", ShopID: "shop-1", Price: decimal.RequireFromString("100.00"), Active: false},
		{ID: "prod-ok", ShopID: "shop-1", Price: decimal.RequireFromString("100.00"), Active: true},
	}, nil)

	var created []models.CartItem
	cartRepo.On("SaveItems", cart, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created, _ = args.Get(1).([]models.CartItem)
		}).Return(nil)

	res, err := svc.SyncGuestCart("buyer-1", []services.GuestCartItem{
		{ProductID: "prod-gone", Quantity: 1},
		{ProductID: "prod-inactive", Quantity: 1},
		{ProductID: "prod-ok", Quantity: 1},
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, res.ItemsSynced)
	assert.Len(t, created, 1)
	assert.Equal(t, "prod-ok", created[0].ProductID)
}

func TestSyncGuestCartCollapsesDuplicateGuestLines(t *testing.T) {
	svc, cartRepo, productRepo, _ := newGuestCartService()

	cart := &models.Cart{ID: "cart-1", BuyerUserID: "buyer-1", Currency: "COP", Status: models.CartStatusOpen, Version: 1}
	cartRepo.On("FindOpenByBuyer", "buyer-1").Return(cart, nil)
	cartRepo.On("GetItems", "cart-1").Return([]models.CartItem{}, nil)
	productRepo.On("FindByIDs", []string{"prod-1", "prod-1"}).Return([]models.Product{
		{ID: "prod-1", ShopID: "shop-1", Price: decimal.RequireFromString("100.00"), Active: true},
	}, nil)

	var created []models.CartItem
	cartRepo.On("SaveItems", cart, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created, _ = args.Get(1).([]models.CartItem)
		}).Return(nil)

	res, err := svc.SyncGuestCart("buyer-1", []services.GuestCartItem{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-1", Quantity: 3},
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, res.ItemsSynced)
	assert.Len(t, created, 1)
	assert.Equal(t, 5, created[0].Quantity)
}

func TestSyncGuestCartValidation(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		svc, _, _, _ := newGuestCartService()
		_, err := svc.SyncGuestCart("buyer-1", nil)
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("bad quantity", func(t *testing.T) {
		svc, _, _, _ := newGuestCartService()
		_, err := svc.SyncGuestCart("buyer-1", []services.GuestCartItem{{ProductID: "prod-1", Quantity: 0}})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("locked cart", func(t *testing.T) {
		svc, cartRepo, _, _ := newGuestCartService()
		cartRepo.On("FindOpenByBuyer", "buyer-1").Return(&models.Cart{ID: "cart-1", Status: models.CartStatusLocked}, nil)

		_, err := svc.SyncGuestCart("buyer-1", []services.GuestCartItem{{ProductID: "prod-1", Quantity: 1}})
		assert.ErrorIs(t, err, models.ErrCartNotEditable)
	})
}
