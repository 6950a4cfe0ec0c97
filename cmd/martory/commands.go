package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/martory/go-tenant-session/apiclient"
	"github.com/martory/go-tenant-session/events"
	"github.com/martory/go-tenant-session/inventory"
	"github.com/martory/go-tenant-session/reports"
	"github.com/martory/go-tenant-session/session"
	"github.com/martory/go-tenant-session/stores"
	"github.com/martory/go-tenant-session/switcher"
	"github.com/pkg/errors"
)

type command struct {
	usage string
	run   func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":    {usage: "log in (--email, --password, --admin)", run: (*app).login},
	"register": {usage: "create a store owner account (--name, --email, --password)", run: (*app).register},
	"logout":   {usage: "end the session and forget local state", run: (*app).logout},
	"stores":   {usage: "list the stores you can reach (--refresh)", run: (*app).listStores},
	"switch":   {usage: "make a store active: switch <id|subdomain>", run: (*app).switchStore},
	"whoami":   {usage: "show the account and the active store", run: (*app).whoami},
	"settings": {usage: "show or change display settings (--theme, --language, --currency)", run: (*app).settings},
	"report":   {usage: "stock report for the active store (--from, --to, --type, --top)", run: (*app).report},
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	admin := fs.Bool("admin", false, "log in as super admin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	creds := apiclient.Credentials{Email: *email, Password: *password}

	var (
		user *session.User
		err  error
	)
	if *admin {
		user, err = a.auth.SuperAdminLogin(ctx, creds)
	} else {
		user, err = a.auth.Login(ctx, creds)
	}
	if err != nil {
		return err
	}
	a.printf("Logged in as %s (%s)\n", user.Email, a.session.Role())
	if len(user.Stores) > 0 {
		a.printf("%d store(s) available, run \"martory switch <store>\" to pick one\n", len(user.Stores))
	}
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	name := fs.String("name", "", "your name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, err := a.auth.Register(ctx, apiclient.Registration{Name: *name, Email: *email, Password: *password})
	if err != nil {
		return err
	}
	a.printf("Welcome %s, you are logged in\n", user.Name)
	return nil
}

func (a *app) logout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("backend logout failed, local session cleared anyway")
	}
	a.printf("Logged out\n")
	return nil
}

func (a *app) listStores(ctx context.Context, args []string) error {
	fs := newFlagSet("stores")
	refresh := fs.Bool("refresh", false, "ask the backend instead of using the cached list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	list, cached := a.session.CachedStores()
	if *refresh || !cached || len(list) == 0 {
		res, err := a.dir.Refresh(ctx)
		if err != nil {
			return err
		}
		list = res.Stores
		if res.Notice != "" {
			a.printf("Note: %s\n", res.Notice)
		}
	}
	if len(list) == 0 {
		a.printf("No stores yet\n")
		return nil
	}

	active, _ := a.session.ActiveStore()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tSUBDOMAIN\tNAME\tSTATUS")
	for _, s := range list {
		mark := ""
		if s.Same(active) {
			mark = "*"
		}
		status := "-"
		if s.Status != nil {
			status = *s.Status
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", mark, s.ID, s.Subdomain, s.DisplayName(), status)
	}
	return tw.Flush()
}

func (a *app) switchStore(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("expected exactly one store id or subdomain")
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	res, err := a.dir.Refresh(ctx)
	if err != nil {
		return err
	}
	target, ok := stores.Lookup(res.Stores, args[0])
	if !ok {
		return errors.Errorf("no store %q among your %d store(s)", args[0], len(res.Stores))
	}

	unsubscribe := a.bus.SubscribeFunc(func(ev events.StoreChanged) {
		a.logger.Debug().Str("subdomain", ev.Store.Subdomain).Msg("store changed")
	})
	defer unsubscribe()

	switched, err := a.switcher.Switch(ctx, target, func() {
		a.printf("Switched to %s\n", target.DisplayName())
	})
	if err != nil {
		return errors.New(switcher.UserMessage(err))
	}
	if !switched {
		a.printf("%s is already the active store\n", target.DisplayName())
	}
	return nil
}

func (a *app) whoami(_ context.Context, _ []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if u, ok := a.session.User(); ok {
		a.printf("User:    %s <%s>\n", u.Name, u.Email)
	}
	a.printf("Role:    %s\n", a.session.Role())
	if exp, ok := a.session.TokenExpiry(); ok {
		a.printf("Expires: %s\n", exp.Local().Format(time.RFC1123))
	}
	if s, ok := a.session.ActiveStore(); ok {
		a.printf("Store:   %s (id %d)\n", s.Subdomain, s.ID)
	} else {
		a.printf("Store:   none selected\n")
	}
	return nil
}

func (a *app) settings(_ context.Context, args []string) error {
	fs := newFlagSet("settings")
	theme := fs.String("theme", "", "light or dark")
	language := fs.String("language", "", "interface language")
	currency := fs.String("currency", "", "currency code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ds := a.session.DisplaySettings()
	if *theme != "" || *language != "" || *currency != "" {
		if *theme != "" {
			ds.Theme = *theme
		}
		if *language != "" {
			ds.Language = *language
		}
		if *currency != "" {
			ds.Currency = strings.ToUpper(*currency)
		}
		if err := a.session.SetDisplaySettings(ds); err != nil {
			return err
		}
	}
	a.printf("theme=%s language=%s currency=%s\n", ds.Theme, ds.Language, ds.Currency)
	return nil
}

func (a *app) report(ctx context.Context, args []string) error {
	fs := newFlagSet("report")
	from := fs.String("from", "", "first day, YYYY-MM-DD")
	to := fs.String("to", "", "last day, YYYY-MM-DD")
	kind := fs.String("type", "", "in or out")
	top := fs.Int("top", 5, "number of best selling products")
	if err := fs.Parse(args); err != nil {
		return err
	}
	filter, err := parseFilter(*from, *to, *kind)
	if err != nil {
		return err
	}

	movements, err := a.client.StockHistory(ctx)
	if err != nil {
		return err
	}
	products, err := a.client.ListProducts(ctx)
	if err != nil {
		return err
	}
	movements = filter.Apply(movements)
	sum := reports.Summarize(movements, products)

	a.printf("Movements %d  In %d  Out %d  Net %d\n", sum.Movements, sum.TotalIn, sum.TotalOut, sum.Net)
	a.printf("Products %d  Low stock %d  Stock value %.2f\n", sum.Products, sum.LowStock, sum.StockValue)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tIN\tOUT\tNET")
	for _, t := range reports.ByCategory(movements) {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", t.Key, t.In, t.Out, t.Net)
	}
	fmt.Fprintln(tw, "TOP PRODUCT\tOUT\tVALUE\t")
	for _, t := range reports.TopProducts(movements, *top) {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t\n", t.Key, t.Out, t.Value)
	}
	return tw.Flush()
}

func (a *app) requireLogin() error {
	tok := a.client.Headers().Token()
	if tok == nil {
		return errors.New("not logged in, run \"martory login\" first")
	}
	if !tok.Valid() {
		return errors.Errorf("session expired at %s, run \"martory login\" again", tok.Expiry.Local().Format(time.RFC1123))
	}
	return nil
}

func parseFilter(from, to, kind string) (reports.Filter, error) {
	var f reports.Filter
	if from != "" {
		t, err := time.ParseInLocation(time.DateOnly, from, time.Local)
		if err != nil {
			return f, errors.Wrap(err, "--from")
		}
		f.From = t
	}
	if to != "" {
		t, err := time.ParseInLocation(time.DateOnly, to, time.Local)
		if err != nil {
			return f, errors.Wrap(err, "--to")
		}
		f.To = t.AddDate(0, 0, 1)
	}
	switch inventory.MovementType(kind) {
	case "", inventory.MovementIn, inventory.MovementOut:
		f.Type = inventory.MovementType(kind)
	default:
		return f, errors.Errorf("--type must be %q or %q", inventory.MovementIn, inventory.MovementOut)
	}
	return f, nil
}
