package reconciliation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/buy2brands/wholesale-api/internal/cart"
	"github.com/buy2brands/wholesale-api/internal/orders"
	"github.com/buy2brands/wholesale-api/internal/shipping"
	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/buy2brands/wholesale-api/pkg/metrics"
	"github.com/buy2brands/wholesale-api/pkg/outbox"
	"github.com/buy2brands/wholesale-api/pkg/outbox/payloads"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type shippingCalculator interface {
	TotalFor(ctx context.Context, lines []shipping.Line) (types.Money, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type notifier interface {
	SendCustomerConfirmation(ctx context.Context, order *models.Order, user *models.User) error
	SendAdminConfirmation(ctx context.Context, order *models.Order, user *models.User) error
	BroadcastNewOrder(ctx context.Context, order *models.Order, user *models.User) error
}

// Reference identifies the gateway object a completion arrived for.
// LinkedIntentID is the payment intent behind a checkout session, when known.
type Reference struct {
	Kind           enums.GatewayRefKind
	ID             string
	LinkedIntentID string
}

func (r Reference) validate() error {
	if !r.Kind.IsValid() {
		return fmt.Errorf("unknown gateway reference kind %q", r.Kind)
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("gateway reference id is required")
	}
	return nil
}

// Result is the outcome of a reconciliation. Created is false when the order
// already existed for the reference.
type Result struct {
	Order   *models.Order
	Created bool
}

// EngineParams wires the reconciliation engine. Shipping is optional; without
// it the drift check is skipped.
type EngineParams struct {
	Tx       txRunner
	Orders   orders.Repository
	Carts    cart.CartRepository
	Products productLookup
	Users    userLookup
	Shipping shippingCalculator
	Notifier notifier
	Outbox   outboxPublisher
	Metrics  *metrics.ReconcileMetrics
	Logger   *logger.Logger
}

// Engine turns a confirmed payment into exactly one order, whichever channel
// reports it first.
type Engine struct {
	tx       txRunner
	orders   orders.Repository
	carts    cart.CartRepository
	products productLookup
	users    userLookup
	shipping shippingCalculator
	notifier notifier
	outbox   outboxPublisher
	metrics  *metrics.ReconcileMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewEngine(params EngineParams) (*Engine, error) {
	switch {
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Orders == nil:
		return nil, fmt.Errorf("orders repository required")
	case params.Carts == nil:
		return nil, fmt.Errorf("cart repository required")
	case params.Products == nil:
		return nil, fmt.Errorf("product lookup required")
	case params.Users == nil:
		return nil, fmt.Errorf("user lookup required")
	case params.Notifier == nil:
		return nil, fmt.Errorf("notifier required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox publisher required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &Engine{
		tx:       params.Tx,
		orders:   params.Orders,
		carts:    params.Carts,
		products: params.Products,
		users:    params.Users,
		shipping: params.Shipping,
		notifier: params.Notifier,
		outbox:   params.Outbox,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Reconcile creates the order for ref from the user's cart, or returns the
// order already recorded for it.
func (e *Engine) Reconcile(ctx context.Context, channel enums.ReconcileChannel, ref Reference, meta Metadata) (*Result, error) {
	if err := ref.validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment reference")
	}
	ctx = e.logg.WithGatewayRef(ctx, string(ref.Kind), ref.ID)
	ctx = e.logg.WithField(ctx, "channel", string(channel))

	existing, err := e.findExisting(ctx, e.orders, ref)
	if err != nil {
		e.observe(channel, metrics.OutcomeFailed)
		return nil, err
	}
	if existing != nil {
		e.logg.Info(e.logg.WithField(ctx, "order_id", existing.ID.String()), "reconcile.duplicate")
		e.observe(channel, metrics.OutcomeDuplicate)
		return &Result{Order: existing}, nil
	}

	if meta.UserID == uuid.Nil {
		e.observe(channel, metrics.OutcomeFailed)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment is missing user metadata")
	}
	user, err := e.users.FindByID(ctx, meta.UserID)
	if err != nil {
		e.observe(channel, metrics.OutcomeFailed)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		e.observe(channel, metrics.OutcomeFailed)
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}
	ctx = e.logg.WithField(ctx, "user_id", user.ID.String())

	userCart, err := e.carts.FindByUser(ctx, user.ID)
	if err != nil {
		e.observe(channel, metrics.OutcomeFailed)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if userCart == nil || len(userCart.Items) == 0 {
		e.observe(channel, metrics.OutcomeEmptyCart)
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "No cart found")
	}

	items, lines, err := e.snapshot(ctx, userCart.Items)
	if err != nil {
		e.observe(channel, metrics.OutcomeFailed)
		return nil, err
	}
	if len(items) == 0 {
		e.observe(channel, metrics.OutcomeEmptyCart)
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "No cart found")
	}
	e.checkShippingDrift(ctx, lines, meta.Shipping)

	order := e.buildOrder(user, ref, meta, items)

	err = e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := e.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		if err := e.carts.WithTx(tx).Clear(ctx, user.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return e.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: user.ID, Role: string(user.Role)},
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				UserID:        user.ID,
				TotalCents:    int64(order.Total),
				ItemCount:     len(order.Items),
				GatewayRef:    ref.ID,
				GatewayRefKey: string(ref.Kind),
				Channel:       string(channel),
			},
			OccurredAt: order.CreatedAt,
		})
	})
	if err != nil {
		// A concurrent channel may have committed the same reference first.
		recovered, findErr := e.findExisting(ctx, e.orders, ref)
		if findErr == nil && recovered != nil {
			e.logg.Info(e.logg.WithField(ctx, "order_id", recovered.ID.String()), "reconcile.recovered")
			e.observe(channel, metrics.OutcomeRecovered)
			return &Result{Order: recovered}, nil
		}
		e.logg.Error(ctx, "reconcile.create_failed", err)
		e.observe(channel, metrics.OutcomeFailed)
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	ctx = e.logg.WithFields(ctx, map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
	})
	e.logg.Info(ctx, "reconcile.order_created")
	e.notify(ctx, order, user)
	e.observe(channel, metrics.OutcomeCreated)
	return &Result{Order: order, Created: true}, nil
}

func (e *Engine) findExisting(ctx context.Context, repo orders.Repository, ref Reference) (*models.Order, error) {
	found, err := repo.FindByReference(ctx, ref.Kind, ref.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up order by payment reference")
	}
	if found != nil || ref.LinkedIntentID == "" {
		return found, nil
	}
	found, err = repo.FindByReference(ctx, enums.GatewayRefPaymentIntent, ref.LinkedIntentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up order by payment intent")
	}
	return found, nil
}

// snapshot copies cart lines into order items. Lines whose product no longer
// exists are dropped.
func (e *Engine) snapshot(ctx context.Context, cartItems types.CartItems) (types.OrderItems, []shipping.Line, error) {
	items := make(types.OrderItems, 0, len(cartItems))
	lines := make([]shipping.Line, 0, len(cartItems))
	for _, line := range cartItems {
		product, err := e.products.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product == nil {
			e.logg.Warn(e.logg.WithField(ctx, "product_id", line.ProductID.String()), "reconcile.product_missing")
			continue
		}
		name := line.Name
		if name == "" {
			name = product.Name
		}
		brand := line.Brand
		if brand == "" {
			brand = product.Brand
		}
		items = append(items, types.OrderItem{
			ProductID:      product.ID,
			Name:           name,
			Brand:          brand,
			UnitPrice:      line.UnitPrice(),
			Quantity:       line.Quantity,
			TotalPrice:     line.TotalPrice,
			IsPack:         line.IsPack,
			PackMultiplier: line.PackMultiplier,
			Size:           line.Size,
			Color:          line.Color,
			Variations:     line.Variations,
		})
		lines = append(lines, shipping.Line{StructureID: product.ShippingStructureID, Units: line.Units()})
	}
	return items, lines, nil
}

// checkShippingDrift compares checkout-time shipping with the current rules.
// The metadata value always wins.
func (e *Engine) checkShippingDrift(ctx context.Context, lines []shipping.Line, charged types.Money) {
	if e.shipping == nil {
		return
	}
	current, err := e.shipping.TotalFor(ctx, lines)
	if err != nil {
		e.logg.Warn(ctx, "reconcile.shipping_check_failed")
		return
	}
	if current == charged {
		return
	}
	e.logg.Warn(e.logg.WithFields(ctx, map[string]any{
		"charged_shipping": charged.String(),
		"current_shipping": current.String(),
	}), "reconcile.shipping_drift")
	e.metrics.IncShippingDrift()
}

func (e *Engine) buildOrder(user *models.User, ref Reference, meta Metadata, items types.OrderItems) *models.Order {
	now := e.now()
	address := meta.Address
	if address.Email == "" {
		address.Email = user.Email
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          user.ID,
		User:            user,
		Items:           items,
		ShippingAddress: address,
		PaymentMethod:   enums.PaymentMethodCard,
		Status:          enums.OrderStatusPending,
		Subtotal:        items.Subtotal(),
		Tax:             meta.Tax,
		ShippingCost:    meta.Shipping,
		StatusHistory: types.StatusHistory{}.Append(types.StatusEntry{
			Status:    enums.OrderStatusPending,
			Note:      "Order placed",
			ChangedAt: now,
		}),
		CreatedAt: now,
		UpdatedAt: now,
	}
	order.Total = order.Subtotal + order.Tax + order.ShippingCost

	refID := ref.ID
	switch ref.Kind {
	case enums.GatewayRefPaymentIntent:
		order.PaymentStatus = enums.PaymentStatusCompleted
		order.StripePaymentIntentID = &refID
	case enums.GatewayRefCheckoutSession:
		order.PaymentStatus = enums.PaymentStatusPaid
		order.StripeSessionID = &refID
		if ref.LinkedIntentID != "" {
			linked := ref.LinkedIntentID
			order.StripePaymentIntentID = &linked
		}
	}
	return order
}

// notify runs after commit. Failures are logged and never undo the order.
func (e *Engine) notify(ctx context.Context, order *models.Order, user *models.User) {
	failed := func(msg string, err error) {
		e.logg.Warn(e.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"error":    err.Error(),
		}), msg)
	}
	if err := e.notifier.SendCustomerConfirmation(ctx, order, user); err != nil {
		failed("reconcile.customer_email_failed", err)
	}
	if err := e.notifier.SendAdminConfirmation(ctx, order, user); err != nil {
		failed("reconcile.admin_email_failed", err)
	}
	if err := e.notifier.BroadcastNewOrder(ctx, order, user); err != nil {
		failed("reconcile.broadcast_failed", err)
	}
}

func (e *Engine) observe(channel enums.ReconcileChannel, outcome string) {
	e.metrics.Observe(string(channel), outcome)
}
