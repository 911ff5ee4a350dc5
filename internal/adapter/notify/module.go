package notify

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module binds the default notification channel.
var Module = fx.Provide(newChannel)

type channelParams struct {
	fx.In

	Logger *slog.Logger
}

func newChannel(p channelParams) Channel {
	return NewLogChannel(p.Logger)
}
