// internal/vault/vault.go
//
// Vault client wrapper for trailhead.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK for the one thing the CLI needs:
//     reading single keys out of KV-v2 secrets while configuration loads.
//   - Adds per-key caching so repeated references to one secret cost one
//     round trip.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, zap.S().Debugf)
//  2. pw,  err := cli.GetKV(ctx, "secret/trailhead", "db_password", ttl)
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – token (falls back to ~/.vault-token via the SDK).
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
)

//
// SECTION 1.  Public façade
//

// kvReader is the slice of the SDK GetKV uses; tests substitute it.
type kvReader interface {
	Get(ctx context.Context, mount, rel string) (map[string]any, error)
}

type sdkReader struct{ api *vault.Client }

func (r sdkReader) Get(ctx context.Context, mount, rel string) (map[string]any, error) {
	sec, err := r.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return nil, err
	}
	return sec.Data, nil
}

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	kv    kvReader
	logFn func(string, ...any)
	now   func() time.Time

	cacheMu sync.RWMutex
	cache   map[string]cached // canonical path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client from the environment.  ctx is accepted for
// parity with other constructors; the SDK does not dial until first use.
func New(_ context.Context, logFn func(string, ...any)) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}

	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}
	return newClient(sdkReader{apiCli}, logFn), nil
}

func newClient(kv kvReader, logFn func(string, ...any)) *Client {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}
	return &Client{
		kv:    kv,
		logFn: logFn,
		now:   time.Now,
		cache: make(map[string]cached),
	}
}

// GetKV fetches a single key from a KV-v2 secret.  If ttl > 0 the result is
// cached for that duration.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		if cv, ok := c.cache[canonical]; ok && c.now().Before(cv.exp) {
			c.cacheMu.RUnlock()
			return cv.val, nil
		}
		c.cacheMu.RUnlock()
	}

	mount, rel := splitMount(secretPath)
	data, err := c.kv.Get(ctx, mount, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}

	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}
	c.logFn("vault: read %s", canonical)

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: c.now().Add(ttl)}
		c.cacheMu.Unlock()
	}

	return sval, nil
}

//
// SECTION 2.  Helpers
//

func splitMount(p string) (mount, rel string) {
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}
