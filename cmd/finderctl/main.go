// Command finderctl runs the hospital finder and disease extraction from the
// command line, using the same configuration as the API server.
package main

import (
	"context"
	"os"

	"github.com/zatekoja/specialistfinder/backend/internal/app"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/observability"
	"github.com/zatekoja/specialistfinder/backend/pkg/config"
)

func main() {
	root := newRootCmd(os.Stdout, func(ctx context.Context) (*app.Container, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		observability.InitLogger(cfg.OTEL.ServiceName, "development")
		observability.SetLevel(cfg.Server.LogLevel)
		return app.New(ctx, cfg, nil)
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
