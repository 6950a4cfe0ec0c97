package main

import (
	"fmt"
	"io"
	"time"

	"github.com/martory/go-tenant-session/apiclient"
	"github.com/martory/go-tenant-session/directory"
	"github.com/martory/go-tenant-session/events"
	"github.com/martory/go-tenant-session/internal/logging"
	"github.com/martory/go-tenant-session/session"
	"github.com/martory/go-tenant-session/storage"
	"github.com/martory/go-tenant-session/switcher"
	"github.com/martory/go-tenant-session/tenant"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type appOptions struct {
	APIURL    string
	Host      string
	StateFile string
	Timeout   time.Duration
	LogLevel  string
}

// app wires the client side components for one command invocation
type app struct {
	out      io.Writer
	logger   zerolog.Logger
	session  *session.Session
	client   *apiclient.Client
	auth     *apiclient.Authenticator
	dir      *directory.Directory
	bus      *events.Bus
	switcher *switcher.Coordinator
}

func newApp(opts appOptions, stdout, stderr io.Writer) (*app, error) {
	logger := logging.SetupConsole(stderr, opts.LogLevel)

	store, err := storage.OpenFile(opts.StateFile)
	if err != nil {
		return nil, errors.Wrap(err, "open state file")
	}
	sess := session.New(store, session.WithLogger(logger))

	var resolverOpts []tenant.Option
	if opts.Host != "" {
		resolverOpts = append(resolverOpts, tenant.WithStaticHost(opts.Host))
	}
	headers := apiclient.NewHeaderBuilder(sess, tenant.NewResolver(store, resolverOpts...))

	clientOpts := []apiclient.Option{apiclient.WithLogger(logger)}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, apiclient.WithTimeout(opts.Timeout))
	}
	client := apiclient.New(opts.APIURL, headers, clientOpts...)

	loader := directory.NewLoader(directory.DefaultTiers(client, sess),
		directory.WithCache(sess),
		directory.WithLoaderLogger(logger),
	)
	dir := directory.New(loader, sess, directory.WithLogger(logger))
	bus := events.NewBus(events.WithLogger(logger))

	a := &app{
		out:     stdout,
		logger:  logger,
		session: sess,
		client:  client,
		auth:    apiclient.NewAuthenticator(client, sess),
		dir:     dir,
		bus:     bus,
		switcher: switcher.New(sess, bus,
			switcher.WithDirectory(dir),
			switcher.WithLogger(logger),
		),
	}
	return a, nil
}

func (a *app) close() {
	a.dir.Close()
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
