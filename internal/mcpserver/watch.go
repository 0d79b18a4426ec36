package mcpserver

import (
	"context"
	"os"
	"time"

	"arketype/internal/logging"
)

// WatchParent polls for parent process death in a background goroutine and
// calls cancel when the parent PID changes, so an orphaned server shuts
// itself down instead of lingering after the client is gone.
//
// It must NOT read from stdin: the SDK's StdioTransport owns stdin
// exclusively, and stealing bytes here would corrupt the JSON-RPC stream.
//
// The goroutine exits when ctx is canceled or parent death is detected.
func WatchParent(ctx context.Context, cancel context.CancelFunc) {
	log := logging.New("mcpserver")
	ppid := os.Getppid()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				if os.Getppid() != ppid {
					log.Warn("parent process died, shutting down", "was_pid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
