package services

import (
	"sync"
	"testing"

	"tweeps/internal/models"
	"tweeps/internal/repositories"
	"tweeps/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher captures published order events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []rabbitmq.OrderEvent
}

func (p *recordingPublisher) PublishOrderEvent(event rabbitmq.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) last() *rabbitmq.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return &p.events[len(p.events)-1]
}

type orderFixture struct {
	service   *OrderService
	carts     *repositories.MockCartRepository
	menu      *repositories.MockMenuItemRepository
	orders    *repositories.MockOrderRepository
	publisher *recordingPublisher
	item      *models.MenuItem
	user      *models.User
	admin     *models.User
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	menu := repositories.NewMockMenuItemRepository()
	carts := repositories.NewMockCartRepository()
	orders := repositories.NewMockOrderRepository()
	publisher := &recordingPublisher{}

	item := &models.MenuItem{
		Name:        "Pizza",
		Price:       10.00,
		IsAvailable: true,
		Toppings: models.ToppingList{
			{Name: "Cheese", Price: 1.00},
		},
	}
	require.NoError(t, menu.Create(item))

	user := &models.User{Username: "testuser", Email: "test@example.com", Address: "1 Main St"}
	user.ID = "user-1"
	admin := &models.User{Username: "admin", Email: "admin@example.com", IsAdmin: true}
	admin.ID = "admin-1"

	return &orderFixture{
		service:   NewOrderService(orders, carts, menu, publisher),
		carts:     carts,
		menu:      menu,
		orders:    orders,
		publisher: publisher,
		item:      item,
		user:      user,
		admin:     admin,
	}
}

func (f *orderFixture) fillCart(t *testing.T, quantity int, toppings []string) {
	t.Helper()
	cart := models.NewCart(f.user.ID)
	require.NoError(t, cart.AddLine(f.item, quantity, toppings))
	require.NoError(t, f.carts.Create(cart))
}

func TestCheckout(t *testing.T) {
	f := newOrderFixture(t)
	f.fillCart(t, 2, []string{"Cheese"})

	order, err := f.service.Checkout(f.user, "ring the bell", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, f.user.ID, order.UserID)
	assert.Equal(t, "ring the bell", order.Notes)
	// Delivery address defaults to the user's.
	assert.Equal(t, "1 Main St", order.DeliveryAddress)
	// (10.00 + 1.00) * 2, frozen at checkout.
	assert.Equal(t, 22.00, order.Total)

	line := order.Items[f.item.ID]
	assert.Equal(t, "Pizza", line.Name)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 10.00, line.UnitPrice)
	assert.Equal(t, 1.00, line.ToppingPrice)

	// The cart is cleared after checkout.
	cart, err := f.carts.GetByUserID(f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	event := f.publisher.last()
	require.NotNil(t, event)
	assert.Equal(t, "order.created", event.Event)
	assert.Equal(t, order.ID, event.OrderID)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newOrderFixture(t)

	// No cart at all.
	_, err := f.service.Checkout(f.user, "", "")
	assert.ErrorIs(t, err, models.ErrValidation)

	// A cart with no lines.
	require.NoError(t, f.carts.Create(models.NewCart(f.user.ID)))
	_, err = f.service.Checkout(f.user, "", "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCheckoutUnavailableItem(t *testing.T) {
	f := newOrderFixture(t)
	f.fillCart(t, 1, nil)

	_, err := f.menu.UpdateFields(f.item.ID, map[string]interface{}{"is_available": false})
	require.NoError(t, err)

	_, err = f.service.Checkout(f.user, "", "")
	assert.ErrorIs(t, err, models.ErrUnavailable)

	// The cart survives the failed checkout.
	cart, err := f.carts.GetByUserID(f.user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCheckoutTotalFrozenAgainstPriceChanges(t *testing.T) {
	f := newOrderFixture(t)
	f.fillCart(t, 2, nil)

	order, err := f.service.Checkout(f.user, "", "")
	require.NoError(t, err)
	assert.Equal(t, 20.00, order.Total)

	_, err = f.menu.UpdateFields(f.item.ID, map[string]interface{}{"price": 12.00})
	require.NoError(t, err)

	stored, err := f.service.GetOrder(f.user, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.00, stored.Total)

	// The reconciliation total reflects the new price.
	current, err := f.service.CalculateTotal(f.user, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 24.00, current)
}

func TestCalculateTotalIgnoresVanishedItems(t *testing.T) {
	f := newOrderFixture(t)
	f.fillCart(t, 2, nil)

	order, err := f.service.Checkout(f.user, "", "")
	require.NoError(t, err)

	require.NoError(t, f.menu.SoftDelete(f.item.ID))

	// Soft-deleted items still resolve for reconciliation.
	current, err := f.service.CalculateTotal(f.user, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.00, current)
}

func TestGetOrderAuthorization(t *testing.T) {
	f := newOrderFixture(t)
	f.fillCart(t, 1, nil)

	order, err := f.service.Checkout(f.user, "", "")
	require.NoError(t, err)

	// Owner and admin can read it.
	_, err = f.service.GetOrder(f.user, order.ID)
	assert.NoError(t, err)
	_, err = f.service.GetOrder(f.admin, order.ID)
	assert.NoError(t, err)

	// A stranger cannot.
	stranger := &models.User{Username: "stranger", Email: "s@example.com"}
	stranger.ID = "user-2"
	_, err = f.service.GetOrder(stranger, order.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	f := newOrderFixture(t)
	f.fillCart(t, 1, nil)

	order, err := f.service.Checkout(f.user, "", "")
	require.NoError(t, err)

	for _, next := range []models.OrderStatus{
		models.StatusConfirmed,
		models.StatusPreparing,
		models.StatusReady,
		models.StatusDelivered,
	} {
		updated, err := f.service.UpdateStatus(f.admin, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)

		event := f.publisher.last()
		require.NotNil(t, event)
		assert.Equal(t, "order.status_changed", event.Event)
		assert.Equal(t, string(next), event.Status)
	}

	// Delivered is terminal.
	_, err = f.service.UpdateStatus(f.admin, order.ID, models.StatusCancelled)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestUpdateStatusRejectsSkippedStates(t *testing.T) {
	f := newOrderFixture(t)
	f.fillCart(t, 1, nil)

	order, err := f.service.Checkout(f.user, "", "")
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(f.admin, order.ID, models.StatusDelivered)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = f.service.UpdateStatus(f.admin, order.ID, "shipped")
	assert.ErrorIs(t, err, models.ErrValidation)

	// The order is untouched.
	stored, err := f.service.GetOrder(f.admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestUpdateStatusOwnerMayOnlyCancel(t *testing.T) {
	f := newOrderFixture(t)
	f.fillCart(t, 1, nil)

	order, err := f.service.Checkout(f.user, "", "")
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(f.user, order.ID, models.StatusConfirmed)
	assert.ErrorIs(t, err, models.ErrForbidden)

	updated, err := f.service.UpdateStatus(f.user, order.ID, models.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)
}

func TestUpdateStatusStrangerForbidden(t *testing.T) {
	f := newOrderFixture(t)
	f.fillCart(t, 1, nil)

	order, err := f.service.Checkout(f.user, "", "")
	require.NoError(t, err)

	stranger := &models.User{Username: "stranger", Email: "s@example.com"}
	stranger.ID = "user-2"
	_, err = f.service.UpdateStatus(stranger, order.ID, models.StatusCancelled)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestListOrders(t *testing.T) {
	f := newOrderFixture(t)
	f.fillCart(t, 1, nil)

	order, err := f.service.Checkout(f.user, "", "")
	require.NoError(t, err)

	own, err := f.service.ListOrders(f.user)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, order.ID, own[0].ID)

	all, err := f.service.ListAllOrders(f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.service.ListAllOrders(f.user)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestDeleteOrder(t *testing.T) {
	f := newOrderFixture(t)
	f.fillCart(t, 1, nil)

	order, err := f.service.Checkout(f.user, "", "")
	require.NoError(t, err)

	err = f.service.DeleteOrder(f.user, order.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	require.NoError(t, f.service.DeleteOrder(f.admin, order.ID))

	// Soft-deleted: gone from default reads, still addressable with the flag.
	_, err = f.service.GetOrder(f.admin, order.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	kept, err := f.orders.GetByID(order.ID, true)
	require.NoError(t, err)
	assert.True(t, kept.IsDeleted)
}

func TestCheckoutWithoutPublisher(t *testing.T) {
	f := newOrderFixture(t)
	f.service = NewOrderService(f.orders, f.carts, f.menu, nil)
	f.fillCart(t, 1, nil)

	order, err := f.service.Checkout(f.user, "", "custom address")
	require.NoError(t, err)
	assert.Equal(t, "custom address", order.DeliveryAddress)
}
