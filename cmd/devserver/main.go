package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/martory/go-tenant-session/devserver"
	"github.com/martory/go-tenant-session/internal/config"
	"github.com/martory/go-tenant-session/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	c := config.New()
	logging.SetupDefault(logging.Setup(os.Stdout, c.GetLogLevel()))

	for attempt := 1; ; attempt++ {
		err := run(c)
		if err == nil {
			break
		}
		log.Error().Err(err).Int("attempt", attempt).Msg("Error running dev server")
		if attempt >= 3 {
			os.Exit(1)
		}
		time.Sleep(1 * time.Second)
	}
	log.Info().Msg("Server stopped")
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())
	handler, err := devserver.New(c, devserver.NewInMemoryRepos(), devserver.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("devserver.New: %w", err)
	}
	if pw := handler.GeneratedPassword(); pw != "" {
		fmt.Printf("Super admin password: %s\n\n", pw)
	}

	server := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(server) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
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
