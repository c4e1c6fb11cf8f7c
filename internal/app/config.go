package app

import (
	"time"

	"github.com/atomicstack/grpm/internal/filter"
)

// Config describes user-provided application options.
type Config struct {
	Owner          string
	Repo           string
	ReleasePattern string
	AssetPattern   string

	Token  string
	APIURL string

	Match     filter.Mode
	Recompile filter.RecompilePolicy

	TickRate         int
	FetchTimeout     time.Duration
	MinFetchInterval time.Duration
	DescHeight       int

	CacheFile string
	CacheTTL  time.Duration
}
