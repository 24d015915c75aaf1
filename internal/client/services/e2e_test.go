package services

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/storeadmin/internal/client/cache"
	"github.com/dmitrijs2005/storeadmin/internal/client/client"
	"github.com/dmitrijs2005/storeadmin/internal/client/models"
	"github.com/dmitrijs2005/storeadmin/internal/client/nav"
	"github.com/dmitrijs2005/storeadmin/internal/client/notify"
	"github.com/dmitrijs2005/storeadmin/internal/client/session"
	"github.com/dmitrijs2005/storeadmin/internal/client/validation"
	"github.com/dmitrijs2005/storeadmin/internal/fakeapi"
	"github.com/dmitrijs2005/storeadmin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stack struct {
	store    *session.Store
	router   *nav.Router
	notes    *notify.Recorder
	auth     AuthService
	list     *ProductList
	products ProductService
	editor   *Editor
}

func newStack(t *testing.T) *stack {
	t.Helper()

	cfg := &fakeapi.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "e2e"
	cfg.BcryptCost = bcrypt.MinCost
	app, err := fakeapi.NewApp(cfg, logging.Discard())
	require.NoError(t, err)
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	store := newStore(t)
	api, err := client.NewHTTPClient(srv.URL, store)
	require.NoError(t, err)

	c := cache.New()
	notes := &notify.Recorder{}
	router := newRouter(store)
	products := NewProductService(api, store, c, notes, logging.Discard())
	list := NewProductList(api, c, 0, nil, logging.Discard())
	t.Cleanup(list.Close)

	return &stack{
		store:    store,
		router:   router,
		notes:    notes,
		auth:     NewAuthService(api, store, router, notes, logging.Discard()),
		list:     list,
		products: products,
		editor:   NewEditor(products),
	}
}

func TestEndToEnd_LoginSuccessAndFailure(t *testing.T) {
	ctx := context.Background()
	st := newStack(t)

	_, err := st.auth.Register(ctx, validation.RegisterInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.org", Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, st.auth.Logout(ctx))
	st.notes.Reset()

	_, err = st.auth.Login(ctx, "ada@example.org", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, st.store.Read().IsAuthenticated())
	assert.Equal(t, nav.ViewLogin, st.router.Current())

	s, err := st.auth.Login(ctx, "ada@example.org", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.org", s.User.Email)
	assert.NotEmpty(t, s.AccessToken)
	assert.Equal(t, nav.ViewHome, st.router.Current())

	exp, ok := st.store.Expiry()
	assert.True(t, ok)
	assert.False(t, exp.IsZero())

	assert.Equal(t, []notify.Message{
		{Kind: notify.KindError, Text: notify.MsgInvalidCredentials},
		{Kind: notify.KindSuccess, Text: notify.MsgLoginSuccess},
	}, st.notes.Messages())
}

func TestEndToEnd_ProductLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newStack(t)

	_, err := st.auth.Register(ctx, validation.RegisterInput{FirstName: "Ada", LastName: "L", Email: "ada@example.org", Password: "secret"})
	require.NoError(t, err)

	v, err := st.list.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, Empty, v.State)

	st.editor.OpenCreate()
	st.editor.SetDraft(models.Draft{
		Name: "Red Shoe", Description: "Comfortable", Price: 30,
		Image: &models.ImageFile{Name: "shoe.png", ContentType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n")},
	})
	created, err := st.editor.Submit(ctx)
	require.NoError(t, err)
	assert.False(t, st.editor.IsOpen())

	v, err = st.list.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, Populated, v.State)
	assert.Equal(t, []models.Product{created}, v.Products)

	st.editor.OpenEdit(created)
	d := st.editor.Draft()
	d.Price = 45
	st.editor.SetDraft(d)
	updated, err := st.editor.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.ImageURL, updated.ImageURL)
	assert.Equal(t, 45.0, updated.Price)

	require.NoError(t, st.products.Delete(ctx, created.ID))
	v, err = st.list.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, Empty, v.State)

	texts := make([]string, 0)
	for _, m := range st.notes.Messages() {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{
		notify.MsgRegistrationSuccess,
		notify.MsgProductCreated,
		notify.MsgProductUpdated,
		notify.MsgProductDeleted,
	}, texts)
}

func TestEndToEnd_SessionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	store := session.New(ctx, db, logging.Discard())

	cfg := &fakeapi.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost
	app, err := fakeapi.NewApp(cfg, logging.Discard())
	require.NoError(t, err)
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	api, err := client.NewHTTPClient(srv.URL, store)
	require.NoError(t, err)
	auth := NewAuthService(api, store, newRouter(store), &notify.Recorder{}, logging.Discard())

	_, err = auth.Register(ctx, validation.RegisterInput{FirstName: "A", LastName: "B", Email: "a@b.co", Password: "secret"})
	require.NoError(t, err)

	restarted := session.New(ctx, db, logging.Discard())
	assert.True(t, restarted.Read().Equal(store.Read()))
	assert.Equal(t, nav.ViewHome, nav.NewRouter(restarted, nav.ViewHome).Current())
}
