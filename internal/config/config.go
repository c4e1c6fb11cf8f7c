package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/grpm/internal/app"
	"github.com/atomicstack/grpm/internal/cache"
	"github.com/atomicstack/grpm/internal/filter"
	"github.com/atomicstack/grpm/internal/github"
	"github.com/atomicstack/grpm/internal/input"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

// Error marks a configuration problem; the process exits with status 2.
type Error struct {
	Err error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func invalid(format string, args ...interface{}) error {
	return &Error{Err: fmt.Errorf(format, args...)}
}

const (
	keyConfig           = "config"
	keyToken            = "token"
	keyAPIURL           = "api-url"
	keyMatch            = "match"
	keyRecompile        = "recompile"
	keyTickRate         = "tick-rate"
	keyFetchTimeout     = "fetch-timeout"
	keyMinFetchInterval = "min-fetch-interval"
	keyDescHeight       = "desc-height"
	keyCacheFile        = "cache-file"
	keyCacheTTL         = "cache-ttl"
	keyLogFile          = "log-file"
	keyTrace            = "trace"
)

const (
	envPrefix      = "GRPM_"
	envGitHubToken = "GITHUB_TOKEN"

	defaultFetchTimeout     = 30 * time.Second
	defaultMinFetchInterval = 250 * time.Millisecond
	defaultDescHeight       = 10
	minDescHeight           = 3
)

var keys = []string{
	keyToken, keyAPIURL, keyMatch, keyRecompile, keyTickRate, keyFetchTimeout,
	keyMinFetchInterval, keyDescHeight, keyCacheFile, keyCacheTTL, keyLogFile, keyTrace,
}

// envName maps a key to its environment variable, e.g. api-url -> GRPM_API_URL.
func envName(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// RegisterFlags declares every configuration flag on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(keyConfig, "", "path to a config file (yaml, toml or json)")
	fs.String(keyToken, "", "GitHub token (defaults to $GITHUB_TOKEN)")
	fs.String(keyAPIURL, github.DefaultAPIURL, "GitHub API base URL")
	fs.String(keyMatch, filter.ModeRegex.String(), "pattern language: regex or fuzzy")
	fs.String(keyRecompile, filter.RecompileLive.String(), "when patterns apply: live or confirm")
	fs.Int(keyTickRate, input.DefaultTickRate, "redraw ticks per second")
	fs.Duration(keyFetchTimeout, defaultFetchTimeout, "timeout for a single GitHub request (0 disables)")
	fs.Duration(keyMinFetchInterval, defaultMinFetchInterval, "minimum spacing between GitHub requests")
	fs.Int(keyDescHeight, defaultDescHeight, "height of the description box in rows")
	fs.String(keyCacheFile, "", "SQLite file caching release listings (disabled when empty)")
	fs.Duration(keyCacheTTL, cache.DefaultTTL, "how long cached listings are served without refetching")
	fs.String(keyLogFile, "", "path to the log file")
	fs.Bool(keyTrace, false, "enable verbose JSON trace logging")
}

// NewFlagSet returns a flag set with every configuration flag registered.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	RegisterFlags(fs)
	return fs
}

// LoadArgs parses args and resolves them against environ.
func LoadArgs(args []string, environ []string) (Config, error) {
	fs := NewFlagSet("grpm")
	if err := fs.Parse(args); err != nil {
		return Config{}, &Error{Err: err}
	}
	return Resolve(fs, fs.Args(), environ)
}

// Resolve builds the configuration from parsed flags, positional arguments
// and the environment. Precedence: flag, environment, config file, default.
func Resolve(fs *pflag.FlagSet, positional []string, environ []string) (Config, error) {
	env := parseEnv(environ)
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, &Error{Err: err}
	}

	path := envOrDefault(env, envName(keyConfig), "")
	if f := fs.Lookup(keyConfig); f != nil && f.Changed {
		path = f.Value.String()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, invalid("read config %s: %w", path, err)
		}
	}

	if _, ok := env[envName(keyToken)]; !ok {
		if tok, ok := env[envGitHubToken]; ok {
			env[envName(keyToken)] = tok
		}
	}
	for _, key := range keys {
		if f := fs.Lookup(key); f != nil && f.Changed {
			continue
		}
		if val, ok := env[envName(key)]; ok && strings.TrimSpace(val) != "" {
			v.Set(key, val)
		}
	}

	owner, repo, relPattern, assetPattern, err := splitPositional(positional)
	if err != nil {
		return Config{}, err
	}
	mode, err := filter.ParseMode(v.GetString(keyMatch))
	if err != nil {
		return Config{}, &Error{Err: err}
	}
	policy, err := filter.ParsePolicy(v.GetString(keyRecompile))
	if err != nil {
		return Config{}, &Error{Err: err}
	}
	tickRate, err := intOf(v, keyTickRate)
	if err != nil {
		return Config{}, err
	}
	descHeight, err := intOf(v, keyDescHeight)
	if err != nil {
		return Config{}, err
	}
	fetchTimeout, err := durationOf(v, keyFetchTimeout)
	if err != nil {
		return Config{}, err
	}
	minInterval, err := durationOf(v, keyMinFetchInterval)
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := durationOf(v, keyCacheTTL)
	if err != nil {
		return Config{}, err
	}
	trace, err := boolOf(v, keyTrace)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		App: app.Config{
			Owner:            owner,
			Repo:             repo,
			ReleasePattern:   relPattern,
			AssetPattern:     assetPattern,
			Token:            v.GetString(keyToken),
			APIURL:           v.GetString(keyAPIURL),
			Match:            mode,
			Recompile:        policy,
			TickRate:         tickRate,
			FetchTimeout:     fetchTimeout,
			MinFetchInterval: minInterval,
			DescHeight:       descHeight,
			CacheFile:        v.GetString(keyCacheFile),
			CacheTTL:         cacheTTL,
		},
		Logging: Logging{
			FilePath: v.GetString(keyLogFile),
			Trace:    trace,
		},
		Args: append([]string(nil), positional...),
	}
	cfg.Flags = map[string]string{
		"config":           path,
		"apiURL":           cfg.App.APIURL,
		"match":            mode.String(),
		"recompile":        policy.String(),
		"tickRate":         strconv.Itoa(tickRate),
		"fetchTimeout":     fetchTimeout.String(),
		"minFetchInterval": minInterval.String(),
		"descHeight":       strconv.Itoa(descHeight),
		"cacheFile":        cfg.App.CacheFile,
		"cacheTTL":         cacheTTL.String(),
		"trace":            strconv.FormatBool(trace),
		"logFile":          cfg.Logging.FilePath,
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// splitPositional maps [OWNER[/REPO]] [REPO] [RELEASE-PATTERN] [ASSET-PATTERN].
func splitPositional(args []string) (owner, repo, rel, asset string, err error) {
	if len(args) == 0 {
		return "", "", "", "", nil
	}
	rest := args[1:]
	if o, r, ok := strings.Cut(args[0], "/"); ok {
		owner, repo = o, r
	} else {
		owner = args[0]
		if len(rest) > 0 {
			repo, rest = rest[0], rest[1:]
		}
	}
	if len(rest) > 2 {
		return "", "", "", "", invalid("too many arguments: %q", rest[2:])
	}
	if len(rest) > 0 {
		rel = rest[0]
	}
	if len(rest) > 1 {
		asset = rest[1]
	}
	return owner, repo, rel, asset, nil
}

func intOf(v *viper.Viper, key string) (int, error) {
	switch val := v.Get(key).(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, invalid("%s: %q is not a number", key, val)
		}
		return n, nil
	default:
		return v.GetInt(key), nil
	}
}

func durationOf(v *viper.Viper, key string) (time.Duration, error) {
	switch val := v.Get(key).(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(val))
		if err != nil {
			return 0, invalid("%s: %q is not a duration", key, val)
		}
		return d, nil
	default:
		return v.GetDuration(key), nil
	}
}

func boolOf(v *viper.Viper, key string) (bool, error) {
	if val, ok := v.Get(key).(string); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return false, invalid("%s: %q is not a boolean", key, val)
		}
		return b, nil
	}
	return v.GetBool(key), nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

// Validate ensures the configuration is usable.
func Validate(cfg Config) error {
	a := cfg.App
	if a.TickRate <= 0 {
		return invalid("%s must be > 0 (got %d)", keyTickRate, a.TickRate)
	}
	if a.DescHeight < minDescHeight {
		return invalid("%s must be >= %d (got %d)", keyDescHeight, minDescHeight, a.DescHeight)
	}
	if a.FetchTimeout < 0 || a.MinFetchInterval < 0 || a.CacheTTL < 0 {
		return invalid("durations must not be negative")
	}
	if strings.TrimSpace(a.APIURL) == "" {
		return invalid("%s must not be empty", keyAPIURL)
	}
	return nil
}

// IsConfigError reports whether err is a configuration problem.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}
