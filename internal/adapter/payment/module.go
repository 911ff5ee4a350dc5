package payment

import (
	"go.uber.org/fx"

	"github.com/polkiloo/orderdesk/internal/config"
)

// Module exposes the payment gateway implementation to the fx graph.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Config *config.Config
}

func newGateway(p gatewayParams) Gateway {
	return NewMerchant(
		p.Config.MerchantLogin,
		p.Config.MerchantPassword1,
		p.Config.MerchantPassword2,
		p.Config.PaymentTestMode,
	)
}
