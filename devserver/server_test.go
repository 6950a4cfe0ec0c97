package devserver_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/martory/go-tenant-session/apiclient"
	"github.com/martory/go-tenant-session/devserver"
	"github.com/martory/go-tenant-session/directory"
	"github.com/martory/go-tenant-session/internal/config"
	internalerrors "github.com/martory/go-tenant-session/internal/errors"
	"github.com/martory/go-tenant-session/inventory"
	"github.com/martory/go-tenant-session/session"
	"github.com/martory/go-tenant-session/storage"
	"github.com/martory/go-tenant-session/stores"
	"github.com/martory/go-tenant-session/tenant"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@martory.test"
	adminPassword = "Adm1nPassword"
	ownerPassword = "Str0ngPassword"
)

type testConfig struct {
	config.Config
	userStoresDisabled bool
	loginRate          int
}

func (c testConfig) GetUserStoresDisabled() bool { return c.userStoresDisabled }
func (c testConfig) GetLoginRatePerMinute() int { return c.loginRate }
func (testConfig) GetSuperAdminEmail() string { return adminEmail }
func (testConfig) GetSuperAdminPassword() string { return adminPassword }
func (testConfig) GetEnv() string { return "TEST" }

type testClient struct {
	store   *storage.Memory
	session *session.Session
	client  *apiclient.Client
	auth    *apiclient.Authenticator
}

type testFixture struct {
	server *httptest.Server
}

func setupTestFixture(t *testing.T, cfg testConfig) *testFixture {
	t.Helper()
	cfg.Config = config.New()
	if cfg.loginRate == 0 {
		cfg.loginRate = 1000
	}
	srv, err := devserver.New(cfg, devserver.NewInMemoryRepos())
	require.NoError(t, err)
	require.Empty(t, srv.GeneratedPassword())

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return &testFixture{server: ts}
}

func (f *testFixture) newClient() *testClient {
	store := storage.NewMemory()
	sess := session.New(store)
	client := apiclient.New(f.server.URL, apiclient.NewHeaderBuilder(sess, tenant.NewResolver(store)))
	return &testClient{
		store:   store,
		session: sess,
		client:  client,
		auth:    apiclient.NewAuthenticator(client, sess),
	}
}

// registerOwner signs up a store owner and creates their stores
func (f *testFixture) registerOwner(t *testing.T, email string, subdomains ...string) *testClient {
	t.Helper()
	c := f.newClient()
	ctx := context.Background()
	_, err := c.auth.Register(ctx, apiclient.Registration{Name: "Owner", Email: email, Password: ownerPassword})
	require.NoError(t, err)
	for _, sub := range subdomains {
		_, err := c.client.CreateStore(ctx, stores.Store{Subdomain: sub, StoreName: strings.ToUpper(sub)})
		require.NoError(t, err)
	}
	return c
}

func TestHealth(t *testing.T) {
	f := setupTestFixture(t, testConfig{})
	resp, err := http.Get(f.server.URL + devserver.RouteHealth)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginLoadSwitchAndTrade(t *testing.T) {
	f := setupTestFixture(t, testConfig{})
	f.registerOwner(t, "owner@acme.pk", "alpha", "beta")
	ctx := context.Background()

	c := f.newClient()
	user, err := c.auth.Login(ctx, apiclient.Credentials{Email: "owner@acme.pk", Password: ownerPassword})
	require.NoError(t, err)
	require.Len(t, user.Stores, 2)
	_, ok := c.session.TokenExpiry()
	require.True(t, ok)

	dir := directory.New(directory.NewLoader(directory.DefaultTiers(c.client, c.session), directory.WithCache(c.session)), c.session)
	res, err := dir.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, directory.TierUserStores, res.Source)
	require.Len(t, res.Stores, 2)

	_, err = c.client.ListProducts(ctx)
	require.ErrorIs(t, err, internalerrors.ErrNoTenant)

	beta, ok := stores.FindBySubdomain(res.Stores, "beta")
	require.True(t, ok)
	require.NoError(t, c.session.SetTenant(beta.Subdomain, beta.ID))
	require.Equal(t, "BETA", dir.Current().StoreName)

	product, err := c.client.AddProduct(ctx, inventory.Product{Name: "Rice", Category: "Grocery", Price: 3})
	require.NoError(t, err)
	require.Equal(t, beta.ID, product.StoreID)

	_, err = c.client.AddStockIn(ctx, inventory.StockMovement{ProductID: product.ID, Quantity: 10})
	require.NoError(t, err)
	_, err = c.client.AddStockOut(ctx, inventory.StockMovement{ProductID: product.ID, Quantity: 25})
	require.True(t, apiclient.IsRejected(err))
	require.Equal(t, http.StatusBadRequest, apiclient.StatusCode(err))
	out, err := c.client.AddStockOut(ctx, inventory.StockMovement{ProductID: product.ID, Quantity: 4})
	require.NoError(t, err)
	require.Equal(t, "BETA", out.StoreName)

	history, err := c.client.StockHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)

	overview, err := c.client.StockOverview(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 6, overview.Summary.Net)
	require.Equal(t, "Rice", overview.TopProducts[0].Key)

	// the other store's data is separate
	alpha, _ := stores.FindBySubdomain(res.Stores, "alpha")
	require.NoError(t, c.session.SetTenant(alpha.Subdomain, alpha.ID))
	products, err := c.client.ListProducts(ctx)
	require.NoError(t, err)
	require.Empty(t, products)
}

func TestUserStoresEndpointMissing(t *testing.T) {
	f := setupTestFixture(t, testConfig{userStoresDisabled: true})
	c := f.registerOwner(t, "owner@acme.pk", "alpha")

	loader := directory.NewLoader(directory.DefaultTiers(c.client, c.session))
	res := loader.Load(context.Background())

	require.Equal(t, directory.TierProfile, res.Source)
	require.Empty(t, res.Notice)
	require.Len(t, res.Stores, 1)
	require.Equal(t, "alpha", res.Stores[0].Subdomain)
}

func TestTenantIsolation(t *testing.T) {
	f := setupTestFixture(t, testConfig{})
	f.registerOwner(t, "a@acme.pk", "alpha")
	intruder := f.registerOwner(t, "b@acme.pk")
	ctx := context.Background()

	require.NoError(t, intruder.session.SetTenant("alpha", 1))
	_, err := intruder.client.ListProducts(ctx)
	require.True(t, apiclient.IsRejected(err))
	require.Equal(t, http.StatusForbidden, apiclient.StatusCode(err))

	require.Error(t, intruder.client.DeleteStore(ctx, 1))

	require.NoError(t, intruder.session.SetTenant("ghost", 99))
	_, err = intruder.client.ListProducts(ctx)
	require.Equal(t, http.StatusNotFound, apiclient.StatusCode(err))
}

func TestNumericSubdomainIsNotTakenForAnID(t *testing.T) {
	f := setupTestFixture(t, testConfig{})
	owner := f.registerOwner(t, "a@acme.pk", "shop1", "shop2", "shop3")
	numeric := f.registerOwner(t, "b@acme.pk", "2")
	ctx := context.Background()

	list, err := numeric.client.UserStores(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.EqualValues(t, 4, list[0].ID)

	require.NoError(t, numeric.session.SetTenant("2", 4))
	_, err = numeric.client.AddProduct(ctx, inventory.Product{Name: "Tea", Price: 1})
	require.NoError(t, err)
	products, err := numeric.client.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)

	// owner of store id 2 does not see the tenant named "2"
	require.NoError(t, owner.session.SetTenant("2", 4))
	_, err = owner.client.ListProducts(ctx)
	require.Equal(t, http.StatusForbidden, apiclient.StatusCode(err))

	// an id is still accepted when no subdomain matches
	req, err := http.NewRequest(http.MethodGet, f.server.URL+devserver.RouteListProducts, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+owner.session.Token())
	req.Header.Set(apiclient.HeaderTenant, "1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateStoreValidation(t *testing.T) {
	f := setupTestFixture(t, testConfig{})
	c := f.registerOwner(t, "owner@acme.pk", "alpha")
	ctx := context.Background()

	_, err := c.client.CreateStore(ctx, stores.Store{Subdomain: "Not Valid", StoreName: "X", CNIC: "1"})
	require.Equal(t, http.StatusBadRequest, apiclient.StatusCode(err))
	require.Contains(t, err.Error(), "validation failed")

	_, err = c.client.CreateStore(ctx, stores.Store{Subdomain: "alpha", StoreName: "Again"})
	require.Equal(t, http.StatusConflict, apiclient.StatusCode(err))
}

func TestLogoutRevokesToken(t *testing.T) {
	f := setupTestFixture(t, testConfig{})
	c := f.registerOwner(t, "owner@acme.pk")
	ctx := context.Background()
	token := c.session.Token()

	require.NoError(t, c.auth.Logout(ctx))
	require.False(t, c.session.IsAuthenticated())

	req, err := http.NewRequest(http.MethodGet, f.server.URL+devserver.RouteProfile, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginFailures(t *testing.T) {
	f := setupTestFixture(t, testConfig{})
	f.registerOwner(t, "owner@acme.pk")
	c := f.newClient()

	_, err := c.auth.Login(context.Background(), apiclient.Credentials{Email: "owner@acme.pk", Password: "nope"})
	require.Equal(t, http.StatusUnauthorized, apiclient.StatusCode(err))
	require.Contains(t, err.Error(), "invalid credentials")

	_, err = c.auth.SuperAdminLogin(context.Background(), apiclient.Credentials{Email: "owner@acme.pk", Password: ownerPassword})
	require.Equal(t, http.StatusUnauthorized, apiclient.StatusCode(err))
	require.False(t, c.session.IsAuthenticated())
}

func TestSuperAdmin(t *testing.T) {
	f := setupTestFixture(t, testConfig{})
	owner := f.registerOwner(t, "owner@acme.pk", "alpha", "beta")
	f.registerOwner(t, "other@acme.pk", "gamma")
	ctx := context.Background()

	_, err := owner.client.GetAllStores(ctx)
	require.Equal(t, http.StatusForbidden, apiclient.StatusCode(err))

	admin := f.newClient()
	_, err = admin.auth.SuperAdminLogin(ctx, apiclient.Credentials{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	require.Equal(t, session.RoleSuperAdmin, admin.session.Role())

	all, err := admin.client.GetAllStores(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	// super admins may enter any tenant
	require.NoError(t, admin.session.SetTenant("gamma", 3))
	_, err = admin.client.ListProducts(ctx)
	require.NoError(t, err)

	require.NoError(t, admin.auth.Logout(ctx))
}

func TestLoginRateLimit(t *testing.T) {
	f := setupTestFixture(t, testConfig{loginRate: 1})
	c := f.newClient()
	ctx := context.Background()
	creds := apiclient.Credentials{Email: "nobody@acme.pk", Password: "x"}

	_, err := c.auth.Login(ctx, creds)
	require.Equal(t, http.StatusUnauthorized, apiclient.StatusCode(err))
	_, err = c.auth.Login(ctx, creds)
	require.Equal(t, http.StatusTooManyRequests, apiclient.StatusCode(err))
}

func TestMetricsAndCors(t *testing.T) {
	f := setupTestFixture(t, testConfig{})
	f.registerOwner(t, "owner@acme.pk", "alpha")

	resp, err := http.Get(f.server.URL + devserver.RouteMetrics)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(body), "martory_http_status_total")

	req, err := http.NewRequest(http.MethodOptions, f.server.URL+devserver.RouteListProducts, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "x-tenant")
}
