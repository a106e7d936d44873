package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/chemviz/chemviz/internal/stubserver"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	var addr string
	var username string
	var password string
	var showVersion bool

	flag.StringVar(&addr, "addr", "127.0.0.1:8000", "listen address")
	flag.StringVar(&username, "username", "demo", "accepted login username")
	flag.StringVar(&password, "password", "demo", "accepted login password")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("ChemViz Dev API\n")
		fmt.Printf("  Version: %s\n", version)
		fmt.Printf("  Commit:  %s\n", commit)
		fmt.Printf("  Built:   %s\n", buildTime)
		return
	}

	if err := run(addr, username, password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(addr, username, password string) error {
	srv := stubserver.New(stubserver.Config{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := srv.Start(); err != nil {
		return fmt.Errorf("starting dev API: %w", err)
	}
	defer srv.Stop()

	log.Printf("devapi: listening on http://%s/api (login %s/%s)", addr, username, password)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-sigCh:
			log.Printf("devapi: shutting down")
			cancel()
		case <-gctx.Done():
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return srv.Stop()
	})

	return g.Wait()
}
