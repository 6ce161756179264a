package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/idilsaglam/tada/internal/auth"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/gateway"
	"github.com/idilsaglam/tada/internal/gateway/httpgw"
	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/store/jsonstore"
	"github.com/idilsaglam/tada/internal/store/sqlitestore"
)

// release closes c, logging a failure.
func (a *app) release(c io.Closer) {
	if err := c.Close(); err != nil {
		a.logger.Warn("close failed", "error", err)
	}
}

func (a *app) authStore() auth.Store { return auth.Store{Dir: a.cfg.DataDir} }

// openStore opens the configured local backend.
func (a *app) openStore() (store.Store, error) {
	switch a.cfg.Backend {
	case config.BackendSQLite:
		return sqlitestore.Open(filepath.Join(a.cfg.DataDir, sqlitestore.DataFileName))
	default:
		return jsonstore.Open(filepath.Join(a.cfg.DataDir, jsonstore.DataFileName))
	}
}

// openGateway returns the remote client when a server is configured, else the
// local store called in-process.
func (a *app) openGateway() (gateway.Gateway, io.Closer, error) {
	if a.cfg.Server != "" {
		token, err := a.authStore().Token()
		if err != nil {
			return nil, nil, err
		}
		c, err := httpgw.New(a.cfg.Server, httpgw.WithToken(token), httpgw.WithTimeout(a.cfg.Timeout))
		if err != nil {
			return nil, nil, err
		}
		a.logger.Debug("using remote service", "server", a.cfg.Server)
		return c, nopCloser{}, nil
	}
	s, err := a.openStore()
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	a.logger.Debug("using local store", "backend", a.cfg.Backend, "dir", a.cfg.DataDir)
	return gateway.Local{Store: s}, s, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
