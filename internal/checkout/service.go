package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/buy2brands/wholesale-api/internal/reconciliation"
	"github.com/buy2brands/wholesale-api/internal/shipping"
	"github.com/buy2brands/wholesale-api/pkg/db/models"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
)

type cartReader interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

type productLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type shippingCalculator interface {
	TotalFor(ctx context.Context, lines []shipping.Line) (types.Money, error)
}

// Gateway is the write side of the payment gateway.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Currency() string
}

// URLs are the storefront redirect targets for hosted checkout.
type URLs struct {
	FrontendURL string
	SuccessPath string
	CancelPath  string
}

type ServiceParams struct {
	Carts    cartReader
	Products productLookup
	Shipping shippingCalculator
	Gateway  Gateway
	URLs     URLs
	Logger   *logger.Logger
}

// Service prices carts and opens payments for them. Orders are only created
// later, by reconciliation.
type Service interface {
	Quote(ctx context.Context, userID uuid.UUID) (*Quote, error)
	CreatePaymentIntent(ctx context.Context, caller Caller, input StartInput) (*PaymentIntentResult, error)
	CreateCheckoutSession(ctx context.Context, caller Caller, input StartInput) (*CheckoutSessionResult, error)
}

type service struct {
	carts    cartReader
	products productLookup
	shipping shippingCalculator
	gateway  Gateway
	urls     URLs
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Carts == nil:
		return nil, fmt.Errorf("cart reader required")
	case params.Products == nil:
		return nil, fmt.Errorf("product lookup required")
	case params.Shipping == nil:
		return nil, fmt.Errorf("shipping calculator required")
	case params.Gateway == nil:
		return nil, fmt.Errorf("payment gateway required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:    params.Carts,
		products: params.Products,
		shipping: params.Shipping,
		gateway:  params.Gateway,
		urls:     params.URLs,
		logg:     params.Logger,
	}, nil
}

// Quote prices the user's cart. Tax is charged per line at the product's
// rate; shipping is charged per shipping structure over the units it covers.
func (s *service) Quote(ctx context.Context, userID uuid.UUID) (*Quote, error) {
	userCart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if userCart == nil || len(userCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "Cart is empty")
	}

	quote := &Quote{Lines: make([]QuoteLine, 0, len(userCart.Items))}
	shipLines := make([]shipping.Line, 0, len(userCart.Items))
	for _, item := range userCart.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product == nil {
			s.logg.Warn(s.logg.WithField(ctx, "product_id", item.ProductID.String()), "checkout.product_missing")
			continue
		}
		line := QuoteLine{
			CartItemID:  item.CartItemID,
			ProductID:   product.ID,
			Name:        product.Name,
			Description: describe(item),
			ImageURL:    imageURL(product),
			Quantity:    item.Quantity,
			Units:       item.Units(),
			Total:       item.TotalPrice,
			Tax:         item.TotalPrice.Percent(product.TaxPercentage),
		}
		quote.Lines = append(quote.Lines, line)
		quote.Subtotal += line.Total
		quote.Tax += line.Tax
		quote.TotalItems += line.Units
		shipLines = append(shipLines, shipping.Line{StructureID: product.ShippingStructureID, Units: line.Units})
	}
	if len(quote.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "Cart is empty")
	}

	quote.Shipping, err = s.shipping.TotalFor(ctx, shipLines)
	if err != nil {
		return nil, err
	}
	quote.Total = quote.Subtotal + quote.Tax + quote.Shipping
	return quote, nil
}

func (s *service) CreatePaymentIntent(ctx context.Context, caller Caller, input StartInput) (*PaymentIntentResult, error) {
	quote, meta, err := s.prepare(ctx, caller, input)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(quote.Total)),
		Currency: stripe.String(s.gateway.Currency()),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if email := strings.TrimSpace(caller.Email); email != "" {
		params.ReceiptEmail = stripe.String(email)
	}
	for k, v := range meta.Encode() {
		params.AddMetadata(k, v)
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}
	s.logg.Info(s.logg.WithGatewayRef(ctx, "payment_intent", intent.ID), "checkout.payment_intent_created")
	return &PaymentIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Quote:           quote,
	}, nil
}

func (s *service) CreateCheckoutSession(ctx context.Context, caller Caller, input StartInput) (*CheckoutSessionResult, error) {
	quote, meta, err := s.prepare(ctx, caller, input)
	if err != nil {
		return nil, err
	}
	currency := s.gateway.Currency()

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(quote.Lines)+2)
	for _, line := range quote.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:        stripe.String(line.Name),
			Description: stripe.String(line.Description),
		}
		if line.ImageURL != "" {
			product.Images = stripe.StringSlice([]string{line.ImageURL})
		}
		lineItems = append(lineItems, sessionLine(currency, product, line.Total))
	}
	if quote.Tax > 0 {
		lineItems = append(lineItems, sessionLine(currency, &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String("Tax"),
		}, quote.Tax))
	}
	if quote.Shipping > 0 {
		lineItems = append(lineItems, sessionLine(currency, &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String("Shipping"),
		}, quote.Shipping))
	}

	encoded := meta.Encode()
	base := s.baseURL(input.Origin)
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(base + s.urls.SuccessPath),
		CancelURL:          stripe.String(base + s.urls.CancelPath),
		ClientReferenceID:  stripe.String(caller.UserID.String()),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: encoded,
		},
	}
	if email := strings.TrimSpace(caller.Email); email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	for k, v := range encoded {
		params.AddMetadata(k, v)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	s.logg.Info(s.logg.WithGatewayRef(ctx, "checkout_session", session.ID), "checkout.session_created")
	return &CheckoutSessionResult{URL: session.URL, SessionID: session.ID, Quote: quote}, nil
}

func (s *service) prepare(ctx context.Context, caller Caller, input StartInput) (*Quote, reconciliation.Metadata, error) {
	if caller.UserID == uuid.Nil {
		return nil, reconciliation.Metadata{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	quote, err := s.Quote(ctx, caller.UserID)
	if err != nil {
		return nil, reconciliation.Metadata{}, err
	}
	address := input.ShippingAddress.toAddress()
	if address.Email == "" {
		address.Email = strings.ToLower(strings.TrimSpace(caller.Email))
	}
	return quote, reconciliation.Metadata{
		UserID:     caller.UserID,
		Address:    address,
		Tax:        quote.Tax,
		Shipping:   quote.Shipping,
		TotalItems: len(quote.Lines),
	}, nil
}

func (s *service) baseURL(origin string) string {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		origin = s.urls.FrontendURL
	}
	return strings.TrimRight(origin, "/")
}

func sessionLine(currency string, product *stripe.CheckoutSessionLineItemPriceDataProductDataParams, amount types.Money) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:    stripe.String(currency),
			ProductData: product,
			UnitAmount:  stripe.Int64(int64(amount)),
		},
		Quantity: stripe.Int64(1),
	}
}

func describe(item types.CartItem) string {
	if item.IsPack {
		return fmt.Sprintf("%d× Pack (%d items)", item.PackMultiplier, item.ItemCount)
	}
	return fmt.Sprintf("Size: %s, Color: %s, Qty: %d", orNA(item.Size), orNA(item.Color), item.Quantity)
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return "N/A"
	}
	return v
}

// imageURL returns the product image only when the gateway can fetch it.
func imageURL(product *models.Product) string {
	if product.ImageURL == nil {
		return ""
	}
	url := strings.TrimSpace(*product.ImageURL)
	if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://") {
		return url
	}
	return ""
}
