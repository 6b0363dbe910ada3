package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"marquee/internal/catalog"
	"marquee/internal/services"
)

const tmdbCheckTimeout = 5 * time.Second

// Pinger is satisfied by the TMDB client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCatalog verifies that the artifact exists, is readable, and loads.
func CheckCatalog(ctx context.Context, path string) Result {
	const name = "Catalog"

	if path == "" {
		return Result{Name: name, Detail: "catalog_path not configured"}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (missing; run 'marquee catalog import')", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	c, err := catalog.Load(ctx, path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d movies)", path, c.Len())}
}

// CheckTMDB verifies that TMDB answers an authenticated request. It uses a
// five-second timeout and a single attempt.
func CheckTMDB(ctx context.Context, client Pinger) Result {
	const name = "TMDB"

	checkCtx, cancel := context.WithTimeout(ctx, tmdbCheckTimeout)
	defer cancel()

	if err := client.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeTMDBError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// summarizeTMDBError produces a human-readable summary for TMDB check failures.
func summarizeTMDBError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, services.ErrTimeout) {
		return "health check timed out (TMDB unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (TMDB unreachable)"
	}
	if errors.Is(err, services.ErrConfiguration) {
		return "auth failed (invalid api token)"
	}
	return err.Error()
}
