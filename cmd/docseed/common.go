// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kraklabs/docseed/internal/bootstrap"
	"github.com/kraklabs/docseed/internal/config"
	"github.com/kraklabs/docseed/internal/errors"
	"github.com/kraklabs/docseed/internal/events"
	"github.com/kraklabs/docseed/internal/ui"
	"github.com/kraklabs/docseed/pkg/storage"
)

// newFlagSet returns a flag set for a command that reports parse errors as
// input errors.
func (c *cli) newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		fmt.Fprint(c.stderr, usage)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return err
		}
		return errors.NewInputError(fmt.Sprintf("Invalid options for %s", fs.Name()), err.Error(), fmt.Sprintf("Run 'docseed %s --help'", fs.Name()))
	}
	if fs.NArg() > 0 {
		return errors.NewInputError(fmt.Sprintf("Unexpected argument %q", fs.Arg(0)), fmt.Sprintf("%s takes no arguments", fs.Name()), fmt.Sprintf("Run 'docseed %s --help'", fs.Name()))
	}
	return nil
}

// loadConfig loads and validates the configuration.
func (c *cli) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(c.globals.ConfigPath)
	if err != nil {
		return nil, errors.NewConfigError("Cannot load configuration", err.Error(), "Check docseed.yaml, .env and the MONGO_*/OLLAMA_*/KAFKA_* variables", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError("Invalid configuration", err.Error(), "Fix the listed settings", err)
	}
	return cfg, nil
}

// connectServer connects to MongoDB, or returns an empty in-memory server
// for dry runs.
func connectServer(ctx context.Context, cfg *config.Config, dryRun bool, logger *slog.Logger) (storage.Server, error) {
	if dryRun {
		return storage.NewMemoryServer(storage.MemoryOptions{}), nil
	}
	srv, err := storage.NewMongoServer(ctx, storage.MongoConfig{
		URI:            cfg.Mongo.URI,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
		AppName:        "docseed",
	}, logger)
	if err != nil {
		return nil, errors.NewNetworkError(
			fmt.Sprintf("Cannot connect to MongoDB at %s", redactURI(cfg.Mongo.URI)),
			err.Error(),
			"Check that MongoDB is running and MONGO_URI is correct",
			err,
		)
	}
	return srv, nil
}

// open connects and prints the target.
func (c *cli) open(ctx context.Context, cfg *config.Config, dryRun bool) (storage.Server, error) {
	if dryRun {
		ui.Info("Dry run: writing to an in-memory database")
	} else {
		ui.Infof("Connecting to MongoDB at %s", ui.DimText(redactURI(cfg.Mongo.URI)))
	}
	return c.connect(ctx, cfg, dryRun, c.logger)
}

func closeServer(srv storage.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Close(ctx); err != nil {
		logger.Warn("mongo.close.error", "err", err)
	}
}

// redactURI hides the password of a connection string.
func redactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "<invalid uri>"
	}
	return u.Redacted()
}

// commandError converts a failure of a database step into a UserError.
func commandError(msg string, err error) error {
	var ue *errors.UserError
	if stderrors.As(err, &ue) {
		return err
	}
	switch {
	case stderrors.Is(err, context.Canceled):
		return errors.NewInternalError(msg, "interrupted", "", err)
	case stderrors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return errors.NewNetworkError(msg, err.Error(), "Check that MongoDB is reachable and retry", err)
	default:
		return errors.NewDatabaseError(msg, err.Error(), "Check the MongoDB user's roles and the server logs", err)
	}
}

// startMetricsServer serves /metrics on addr until the returned function is
// called. An empty addr disables it.
func startMetricsServer(addr string, logger *slog.Logger) func() {
	if addr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics.http.start", "addr", addr, "path", "/metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics.http.error", "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// publish sends ev when events are configured. Failures are warnings.
func (c *cli) publish(ctx context.Context, cfg *config.Config, ev events.Event) {
	p := c.publisher(cfg.Events, c.logger)
	defer func() {
		if err := p.Close(); err != nil {
			c.logger.Warn("events.close.error", "err", err)
		}
	}()
	if err := p.Publish(ctx, ev); err != nil {
		c.logger.Warn("events.publish.error", "kind", ev.Kind, "err", err)
		ui.Warningf("Could not publish %s event: %v", ev.Kind, err)
	}
}

// countsOf merges status reports into one collection -> count map.
func countsOf(reports ...*bootstrap.StatusReport) map[string]int64 {
	counts := make(map[string]int64)
	for _, r := range reports {
		if r == nil {
			continue
		}
		for _, cc := range r.Counts {
			counts[cc.Collection] = cc.Count
		}
	}
	return counts
}

// printCounts prints a statistics block for report.
func printCounts(title string, report *bootstrap.StatusReport) {
	ui.Header(title)
	width := 0
	for _, cc := range report.Counts {
		if len(cc.Collection) > width {
			width = len(cc.Collection)
		}
	}
	for _, cc := range report.Counts {
		ui.Stat(cc.Collection, width, cc.Count)
	}
}
