// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `<root>/conf/.env`.
  2. `conf/trailhead.yaml`.
  3. Environment variables prefixed `TRAILHEAD_`, where `__` maps to "."
     (e.g., `TRAILHEAD_SITE__BASE_URL → site.base_url`).

After merging, every string value of the form `vault:<mount>/<path>#<key>`
is replaced by the secret it names.  The tree is then unmarshalled into
typed structs, defaulted, validated, enriched with the runtime root path,
and cached in an `atomic.Pointer` for lock-free reads.

Instrumentation
---------------
  • DEBUG spans, root discovery, YAML read, env overlay, vault lookups.
  • ERROR spans, YAML parse, unmarshal, validation failures.
  • Logs use the global sugared logger (`zap.S()`) so early boot issues
    surface before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/trailhead.yaml`;
    this lets the CLI work from any sub-directory of a site.
  • The Vault client is created only when a `vault:` value is present.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/trailhead/internal/vault"
)

const (
	fileName    = "trailhead.yaml"
	envPrefix   = "TRAILHEAD_"
	vaultPrefix = "vault:"
	vaultTTL    = 5 * time.Minute
)

var current atomic.Pointer[Config]

// secretGetter is the part of the Vault client the loader needs.
type secretGetter interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// newSecrets is swapped out by tests.
var newSecrets = func(ctx context.Context) (secretGetter, error) {
	return vault.New(ctx, zap.S().Debugf)
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// RootDir resolves TRAILHEAD_ROOT or climbs directories until
// conf/trailhead.yaml is found.  Falls back to the working directory.
func RootDir() string {
	if r := os.Getenv("TRAILHEAD_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", fileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads configuration from the discovered root.
func Load() (*Config, error) { return LoadFrom(RootDir()) }

// LoadFrom reads .env, YAML, env overrides, resolves vault references,
// validates, and caches Config.
func LoadFrom(root string) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", fileName)
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: TRAILHEAD_SITE__BASE_URL → site.base_url
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(k); err != nil {
		zap.S().Errorw("config vault resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	applyDefaults(&cfg)
	cfg.Paths.Root = root
	if !filepath.IsAbs(cfg.Site.OutputDir) {
		cfg.Site.OutputDir = filepath.Join(root, cfg.Site.OutputDir)
	}
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"site", cfg.Site.Name,
		"base_url", cfg.Site.BaseURL,
		"output_dir", cfg.Site.OutputDir,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── vault references ─────────────────────────────*/

// resolveSecrets replaces every `vault:` string in k with its secret.
func resolveSecrets(k *koanf.Koanf) error {
	var keys []string
	for key, val := range k.All() {
		if s, ok := val.(string); ok && strings.HasPrefix(s, vaultPrefix) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cli, err := newSecrets(ctx)
	if err != nil {
		return fmt.Errorf("vault client: %w", err)
	}
	for _, key := range keys {
		path, field, err := parseVaultRef(k.String(key))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		val, err := cli.GetKV(ctx, path, field, vaultTTL)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return err
		}
		zap.S().Debugw("config value resolved from vault", "key", key, "path", path)
	}
	return nil
}

// parseVaultRef splits `vault:<mount>/<path>#<key>`.
func parseVaultRef(ref string) (path, key string, err error) {
	rest := strings.TrimPrefix(ref, vaultPrefix)
	path, key, ok := strings.Cut(rest, "#")
	if !ok || path == "" || key == "" || !strings.Contains(path, "/") {
		return "", "", fmt.Errorf("malformed vault reference %q", ref)
	}
	return path, key, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }

// DatabaseDSN returns the DSN with the password substituted when the
// template asks for one.
func (c *Config) DatabaseDSN() string {
	if strings.Contains(c.Database.DSN, "%s") {
		return fmt.Sprintf(c.Database.DSN, c.Database.Password)
	}
	return c.Database.DSN
}
