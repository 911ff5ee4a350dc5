package config

import "go.uber.org/fx"

// Module provides the parsed runtime configuration.
var Module = fx.Provide(Load)
