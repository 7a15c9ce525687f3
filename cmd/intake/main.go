package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/five82/intake/internal/app"
	"github.com/five82/intake/internal/revision"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override intake config path (optional)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	rev := flag.String("revision", "", "form revision: "+strings.Join(revision.Names(), ", ")+" (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		Revision:   *rev,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "intake: %v\n", err)
		return 1
	}
	return 0
}
