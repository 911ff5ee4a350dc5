package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/orderdesk/internal/app"
	"github.com/polkiloo/orderdesk/internal/server/http/handlers"
)

// Module registers HTTP router construction for the fx runtime.
var Module = fx.Options(
	fx.Provide(func(facade *app.DeskFacade) handlers.DeskFacade { return facade }),
	fx.Provide(Setup),
)
