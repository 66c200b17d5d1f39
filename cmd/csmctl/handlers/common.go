// Package handlers implements the business logic for CLI commands.
//
// Handlers are framework-agnostic: commands bind flags and delegate here.
// Factory variables at the top of this file can be swapped in tests.
package handlers

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/shastaops/csmgo/internal/config"
	"github.com/shastaops/csmgo/internal/csm"
	"github.com/shastaops/csmgo/internal/csm/auth"
	"github.com/shastaops/csmgo/internal/csm/bos"
	"github.com/shastaops/csmgo/internal/csm/cfs"
	"github.com/shastaops/csmgo/internal/csm/hsm"
	"github.com/shastaops/csmgo/internal/csm/ims"
	"github.com/shastaops/csmgo/internal/csm/pcs"
	"github.com/shastaops/csmgo/internal/groups"
)

// GlobalOptions are the flags every command shares.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
}

// Factory function variables - replaced in tests for dependency injection.
var (
	loadConfig = func(path string) (config.Config, error) {
		if path == "" {
			return config.FromEnv()
		}
		return config.Load(path)
	}

	// newTokenSource prefers a pre-provisioned token from CSM_TOKEN and
	// falls back to the password grant with CSM_USERNAME/CSM_PASSWORD.
	newTokenSource = func(cfg config.Config, log logr.Logger) (csm.TokenSource, error) {
		if token := os.Getenv("CSM_TOKEN"); token != "" {
			return auth.StaticSource(token), nil
		}
		username := os.Getenv("CSM_USERNAME")
		password := os.Getenv("CSM_PASSWORD")
		if username == "" || password == "" {
			return nil, fmt.Errorf("no credentials: set CSM_TOKEN, or CSM_USERNAME and CSM_PASSWORD")
		}
		return auth.NewPasswordGrantSource(cfg.Endpoints.TokenURL, username, password, auth.WithLogger(log))
	}

	newAPIClient = func(cfg config.Config, tokens csm.TokenSource, log logr.Logger) (*csm.Client, error) {
		return csm.NewClient(cfg, tokens, csm.WithLogger(log))
	}
)

// clients bundles everything a handler needs against one site.
type clients struct {
	cfg config.Config
	api *csm.Client
	log logr.Logger
}

// connect loads configuration, acquires credentials, and builds the shared
// API client.
func connect(opts GlobalOptions) (*clients, error) {
	log := newLogger(opts.Verbose)

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	tokens, err := newTokenSource(cfg, log)
	if err != nil {
		return nil, err
	}
	api, err := newAPIClient(cfg, tokens, log)
	if err != nil {
		return nil, err
	}
	return &clients{cfg: cfg, api: api, log: log}, nil
}

func (c *clients) hsm() *hsm.Client { return hsm.NewClient(c.api) }
func (c *clients) pcs() *pcs.Client { return pcs.NewClient(c.api) }
func (c *clients) bos() *bos.Client { return bos.NewClient(c.api) }
func (c *clients) cfs() *cfs.Client { return cfs.NewClient(c.api) }
func (c *clients) ims() *ims.Client { return ims.NewClient(c.api) }

func (c *clients) resolver() *groups.Resolver {
	return groups.NewResolver(groups.NewHSMInventory(c.hsm()), groups.WithLogger(c.log))
}

// newLogger writes structured lines to stderr; verbose raises the
// verbosity threshold so V(1) debug output shows.
func newLogger(verbose bool) logr.Logger {
	level := 0
	if verbose {
		level = 1
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: level})
}
