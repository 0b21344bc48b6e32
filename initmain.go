package main

import (
	"net/http"
	"time"

	"github.com/copernet/peercrawler/conf"
	"github.com/copernet/peercrawler/log"
	"github.com/copernet/peercrawler/net/connmgr"
	"github.com/copernet/peercrawler/net/crawler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func initLog(cfg *conf.Configuration) error {
	return log.InitLogger(cfg.Log.FileName, cfg.Log.Level, cfg.Log.Module)
}

func newCrawler(cfg *conf.Configuration) *crawler.Crawler {
	dialer := connmgr.NewDialer(&connmgr.Config{
		ChainNet:    cfg.BitcoinNet(),
		IdleTimeout: cfg.IdleTimeout(),
		DialRate:    cfg.Crawl.DialRate,
	})

	return crawler.New(&crawler.Config{
		Seed:                  cfg.SeedAddress(),
		Local:                 cfg.LocalAddr(),
		UserAgent:             cfg.P2P.UserAgent,
		AddressLimit:          cfg.Crawl.AddressLimit,
		SeedTimeout:           cfg.SeedTimeout(),
		PeerTimeout:           cfg.PeerTimeout(),
		PeerAddressCap:        cfg.Crawl.PeerAddressCap,
		MaxConcurrentSessions: cfg.Crawl.MaxConcurrentSessions,
	}, dialer)
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Print("main", "info", "serving metrics on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Print("main", "error", "metrics server: %v", err)
		}
	}()
	return srv
}
