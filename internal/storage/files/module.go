package files

import (
	"go.uber.org/fx"

	"github.com/polkiloo/orderdesk/internal/config"
)

// Module wires the filesystem attachment store.
var Module = fx.Provide(newStore)

type storeParams struct {
	fx.In

	Config *config.Config
}

func newStore(p storeParams) (*Store, error) {
	return NewStore(p.Config.UploadDir, p.Config.DeliveredDir, p.Config.MaxFileSize)
}
