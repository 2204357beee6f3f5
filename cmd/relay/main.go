package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-login-relay/internal/config"
	"github.com/jrsteele09/go-login-relay/internal/metrics"
	"github.com/jrsteele09/go-login-relay/providers"
	"github.com/jrsteele09/go-login-relay/relay"
	"github.com/jrsteele09/go-login-relay/relay/authflowrepo"
	"github.com/jrsteele09/go-login-relay/relay/loginsession"
	"github.com/prometheus/client_golang/prometheus"
)

const cleanupInterval = time.Minute

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running relay: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Relay stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	// Fails when any provider credential or origin is missing: a
	// misconfigured relay must not come up.
	c, err := config.Load()
	if err != nil {
		return err
	}
	displayAppname(c.GetAppName())

	registry := providers.NewRegistry()
	sessionRepo := loginsession.NewInMemoryRepo()
	flowRepo := authflowrepo.NewInMemoryRepo(c.GetPendingAuthTTL())

	promRegistry := prometheus.NewRegistry()
	collector := metrics.NewCollector(promRegistry)

	relayServer, err := relay.New(c, registry, sessionRepo, flowRepo, collector, promRegistry)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relayServer.StartCleanup(ctx, cleanupInterval)

	server := &http.Server{Addr: c.GetPort(), Handler: relayServer}
	go listenAndServe(server)
	waitForStopSignal()
	returnError = shutdown(server)
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Printf("Relay listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
