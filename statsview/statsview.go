//go:build statsview
// +build statsview

package statsview

import (
	"errors"
	"net/http"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/tuboc/chip8vm/logger"
)

// milliseconds between samples of the runtime statistics
const interval = 1000

// Launch serves the runtime statistics on addr in the background. The
// returned function shuts the server down.
func Launch(addr string) (stop func()) {
	viewer.SetConfiguration(viewer.WithAddr(addr), viewer.WithInterval(interval))
	mgr := statsview.New()

	go func() {
		if err := mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logf("statsview", "%v", err)
		}
	}()

	logger.Logf("statsview", "runtime stats at http://%s%s", addr, Path)
	return mgr.Stop
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return true
}
