package flow

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/relloyd/aorist/logger"
)

// HandleSignals cancels the returned context on CTRL-C or SIGTERM.
// Call the returned func to stop listening.
func HandleSignals(ctx context.Context, log logger.Logger) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case x := <-c:
			if isatty.IsTerminal(os.Stdout.Fd()) {
				fmt.Println() // clean CLI look n feel after ^C
			}
			log.Info("Caught ", x.String(), ", shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(c)
		cancel()
	}
}
