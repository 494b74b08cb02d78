package cli

import (
	"context"
	"fmt"

	"github.com/zeedivx/web-starter/internal/config"
	"github.com/zeedivx/web-starter/internal/migration"
)

func getTool(ctx context.Context) (*migration.Tool, error) {
	t, ok := ctx.Value(ctxToolKey).(*migration.Tool)
	if !ok {
		return nil, fmt.Errorf("internal error: migration tool not found in context")
	}
	return t, nil
}

func getConfig(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(ctxConfigKey).(*config.Config)
	if !ok {
		return nil, fmt.Errorf("internal error: config not found in context")
	}
	return cfg, nil
}
