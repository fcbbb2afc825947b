package stripegw

import (
	"context"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/fx"

	cfgpkg "github.com/zenova/wms-billing/pkg/config"
)

// CreateIntentInput is what the checkout flow supplies. Amount is in the
// currency's minor units, as the provider expects.
type CreateIntentInput struct {
	Amount   int64
	Currency string
	PlanID   string
	UserID   string
}

// CreatedIntent carries the handles the mobile client needs to confirm the
// payment: the intent itself plus the customer/ephemeral-key pair.
type CreatedIntent struct {
	ID           string
	ClientSecret string
	CustomerID   string
	EphemeralKey string
}

// Gateway is the card-network adapter. Constructed once and injected;
// substitutable with a fake in tests.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, in *CreateIntentInput) (*CreatedIntent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	// ConstructEvent verifies the webhook signature over the exact raw
	// payload bytes and decodes the event.
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

type gw struct {
	api           *client.API
	webhookSecret string
}

func New(cfg *cfgpkg.Config) Gateway {
	api := &client.API{}
	api.Init(cfg.Stripe.SecretKey, nil)
	return &gw{api: api, webhookSecret: cfg.Stripe.WebhookSecret}
}

func (g *gw) CreatePaymentIntent(ctx context.Context, in *CreateIntentInput) (*CreatedIntent, error) {
	out := &CreatedIntent{}

	if in.UserID != "" {
		custParams := &stripe.CustomerParams{}
		custParams.Context = ctx
		custParams.AddMetadata("userId", in.UserID)
		custParams.AddMetadata("planId", in.PlanID)
		cust, err := g.api.Customers.New(custParams)
		if err != nil {
			return nil, err
		}
		out.CustomerID = cust.ID
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.Amount),
		Currency: stripe.String(in.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("planId", in.PlanID)
	params.AddMetadata("userId", in.UserID)
	if out.CustomerID != "" {
		params.Customer = stripe.String(out.CustomerID)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	out.ID = pi.ID
	out.ClientSecret = pi.ClientSecret

	if out.CustomerID != "" {
		ekParams := &stripe.EphemeralKeyParams{
			Customer:      stripe.String(out.CustomerID),
			StripeVersion: stripe.String(stripe.APIVersion),
		}
		ekParams.Context = ctx
		ek, err := g.api.EphemeralKeys.New(ekParams)
		if err != nil {
			return nil, err
		}
		out.EphemeralKey = ek.Secret
	}

	return out, nil
}

func (g *gw) RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	return g.api.PaymentIntents.Get(id, params)
}

func (g *gw) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

var Module = fx.Options(
	fx.Provide(New),
)
