// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package datasvc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jeranaias/nums-tui/internal/config"
)

// Open builds the Backend selected by cfg.
func Open(ctx context.Context, cfg config.BackendConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Kind {
	case "", "rest":
		return NewREST(cfg.URL, cfg.APIKey,
			WithTimeout(cfg.Timeout()),
			WithMaxRetries(cfg.MaxRetries),
			WithRateLimit(cfg.RateLimitRPS),
			WithLogger(logger),
		)
	case "postgres":
		return NewPostgres(ctx, cfg.DSN, logger)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend kind %q", cfg.Kind)
	}
}
