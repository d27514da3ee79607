// Package version carries build metadata injected with ldflags, e.g.
//
//	go build -ldflags "-X github.com/rickgao/coinsync/internal/version.Version=0.3.1 \
//	    -X github.com/rickgao/coinsync/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String formats all build metadata for startup logs.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}

// UserAgent is sent with every CoinGecko request.
func UserAgent() string {
	return "coinsync/" + Version
}
