// Command storefront runs the HTTP API server.
package main

import (
	"context"

	"github.com/go-faster/errors"
	sdk "github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/dwarforca/storefront/internal/app"
)

func main() {
	sdk.Run(serve)
}

func serve(ctx context.Context, lg *zap.Logger, m *sdk.Telemetry) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return errors.Wrap(err, "configuration")
	}
	return app.Run(ctx, lg, m, cfg)
}
