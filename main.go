// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/netip"
	"os"

	"github.com/copernet/peercrawler/conf"
	"github.com/copernet/peercrawler/log"
	"github.com/copernet/peercrawler/net/limits"
)

// crawlerMain is the real main function. It is necessary to work around
// the fact that deferred functions do not run when os.Exit() is called.
func crawlerMain() error {
	cfg, err := conf.InitConfig(os.Args[1:])
	if err != nil {
		return err
	}
	if err := initLog(cfg); err != nil {
		return err
	}
	log.Print("main", "info", "config: %+v", *cfg)

	// Every session of a round holds a socket.
	if err := limits.SetLimits(); err != nil {
		log.Print("main", "warn", "failed to set limits: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Get a channel that will be closed when a shutdown signal has been
	// triggered from an OS signal such as SIGINT (Ctrl+C).
	interrupt := interruptListener()
	go func() {
		select {
		case <-interrupt:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Return now if an interrupt signal was triggered.
	if interruptRequested(interrupt) {
		return nil
	}

	if cfg.Metrics.Listen != "" {
		srv := startMetricsServer(cfg.Metrics.Listen)
		defer srv.Close()
	}

	addrs, err := newCrawler(cfg).Crawl(ctx)
	if err != nil {
		log.Print("main", "error", "crawl failed: %v", err)
		return err
	}
	log.Print("main", "info", "crawl finished with %d addresses", len(addrs))

	return writeAddresses(os.Stdout, addrs)
}

// writeAddresses prints one ip:port per line.
func writeAddresses(w io.Writer, addrs []netip.AddrPort) error {
	bw := bufio.NewWriter(w)
	for _, addr := range addrs {
		if _, err := fmt.Fprintln(bw, addr); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func main() {
	if err := crawlerMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
