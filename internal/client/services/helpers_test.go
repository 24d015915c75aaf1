package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/storeadmin/internal/client/client"
	"github.com/dmitrijs2005/storeadmin/internal/client/models"
	"github.com/dmitrijs2005/storeadmin/internal/client/nav"
	"github.com/dmitrijs2005/storeadmin/internal/client/session"
	"github.com/dmitrijs2005/storeadmin/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newStore(t *testing.T) *session.Store {
	t.Helper()
	return session.New(context.Background(), setupDB(t), logging.Discard())
}

func signedIn(t *testing.T) *session.Store {
	t.Helper()
	s := newStore(t)
	require.NoError(t, s.Replace(context.Background(), models.Session{
		User:        &models.Identity{ID: "u1", Email: "a@b.co"},
		AccessToken: "tok",
	}))
	return s
}

func newRouter(s nav.SessionReader) *nav.Router {
	return nav.NewRouter(s, nav.ViewLogin)
}

// ---- fake client ----

// fakeClient implements client.Client and records every call.
type fakeClient struct {
	mu sync.Mutex

	LoginRet    client.AuthResponse
	LoginErr    error
	RegisterRet client.AuthResponse
	RegisterErr error

	Products  []models.Product
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
	PingErr   error

	// block, when set, is waited on by Login before answering.
	block chan struct{}

	Calls         []string
	LastPayload   client.ProductPayload
	LastUpdateID  string
	LastRegister  client.RegisterRequest
	ListCallCount int
}

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
}

func (f *fakeClient) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (client.AuthResponse, error) {
	f.record("login")
	if f.block != nil {
		<-f.block
	}
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, req client.RegisterRequest) (client.AuthResponse, error) {
	f.record("register")
	f.mu.Lock()
	f.LastRegister = req
	f.mu.Unlock()
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	f.record("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCallCount++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]models.Product(nil), f.Products...), nil
}

func (f *fakeClient) CreateProduct(ctx context.Context, p client.ProductPayload) (models.Product, error) {
	f.record("create")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastPayload = p
	if f.CreateErr != nil {
		return models.Product{}, f.CreateErr
	}
	created := models.Product{ID: "new", Name: p.Name, Description: p.Description, Price: p.Price, ImageURL: "http://img/new.png"}
	f.Products = append(f.Products, created)
	return created, nil
}

func (f *fakeClient) UpdateProduct(ctx context.Context, id string, p client.ProductPayload) (models.Product, error) {
	f.record("update")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastPayload = p
	f.LastUpdateID = id
	if f.UpdateErr != nil {
		return models.Product{}, f.UpdateErr
	}
	for i := range f.Products {
		if f.Products[i].ID == id {
			f.Products[i].Name = p.Name
			f.Products[i].Description = p.Description
			f.Products[i].Price = p.Price
			f.Products[i].ImageURL = p.ImageURL
			return f.Products[i], nil
		}
	}
	return models.Product{ID: id, Name: p.Name, Description: p.Description, Price: p.Price, ImageURL: p.ImageURL}, nil
}

func (f *fakeClient) DeleteProduct(ctx context.Context, id string) error {
	f.record("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	kept := f.Products[:0]
	for _, p := range f.Products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.Products = kept
	return nil
}

func (f *fakeClient) Ping(ctx context.Context) error {
	f.record("ping")
	return f.PingErr
}
