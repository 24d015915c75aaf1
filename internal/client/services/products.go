package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/storeadmin/internal/client/cache"
	"github.com/dmitrijs2005/storeadmin/internal/client/client"
	"github.com/dmitrijs2005/storeadmin/internal/client/debounce"
	"github.com/dmitrijs2005/storeadmin/internal/client/models"
	"github.com/dmitrijs2005/storeadmin/internal/client/notify"
	"github.com/dmitrijs2005/storeadmin/internal/client/validation"
	"github.com/dmitrijs2005/storeadmin/internal/logging"
)

// ProductsTag is the cache tag of the product collection.
const ProductsTag = "products"

// ErrNotAuthenticated is returned by mutations attempted without a token.
var ErrNotAuthenticated = errors.New("not authenticated")

type ListState int

const (
	Loading ListState = iota
	Empty
	Populated
)

func (s ListState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Empty:
		return "empty"
	case Populated:
		return "populated"
	default:
		return fmt.Sprintf("ListState(%d)", int(s))
	}
}

// ListView is what the product list shows for the committed search term.
type ListView struct {
	State    ListState
	Products []models.Product
	Term     string
	// Stale is set while the cached collection waits for a refetch.
	Stale bool
}

// ProductList is the read side of the catalogue: a cached collection plus a
// debounced, case-insensitive name filter.
type ProductList struct {
	api    client.Client
	cache  *cache.Cache
	search *debounce.Debouncer[string]
	log    logging.Logger

	mu        sync.Mutex
	raw       string
	committed string
	onCommit  []func(term string)
}

// NewProductList wires the list to api and c. wait is the search quiet
// period (debounce.DefaultWait when zero); clock may be nil.
func NewProductList(api client.Client, c *cache.Cache, wait time.Duration, clock debounce.Clock, log logging.Logger) *ProductList {
	if wait <= 0 {
		wait = debounce.DefaultWait
	}
	l := &ProductList{api: api, cache: c, log: log.With("component", "products")}
	l.search = debounce.New(wait, clock, l.commit)
	return l
}

// SetSearch records a keystroke. The raw term changes immediately; the
// committed term follows after the quiet period.
func (l *ProductList) SetSearch(raw string) {
	l.mu.Lock()
	l.raw = raw
	l.mu.Unlock()
	l.search.Push(raw)
}

// CommitSearch applies a pending search term without waiting.
func (l *ProductList) CommitSearch() bool {
	return l.search.Flush()
}

func (l *ProductList) commit(term string) {
	l.mu.Lock()
	l.committed = term
	fns := append([]func(string){}, l.onCommit...)
	l.mu.Unlock()

	l.log.Debug(context.Background(), "search committed", "term", term)
	for _, fn := range fns {
		fn(term)
	}
}

// OnCommit registers fn to run whenever a search term is committed.
func (l *ProductList) OnCommit(fn func(term string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onCommit = append(l.onCommit, fn)
}

func (l *ProductList) Terms() (raw, committed string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.raw, l.committed
}

// Fetch reads the collection through the cache.
func (l *ProductList) Fetch(ctx context.Context) ([]models.Product, error) {
	return cache.Fetch(ctx, l.cache, ProductsTag, l.api.ListProducts)
}

// Refresh fetches (or re-fetches when invalidated) and returns the filtered
// view. On failure the last-known view is returned together with the error.
func (l *ProductList) Refresh(ctx context.Context) (ListView, error) {
	if _, err := l.Fetch(ctx); err != nil {
		l.log.Warn(ctx, "fetch products", "error", err)
		return l.Current(), err
	}
	return l.Current(), nil
}

// Current builds the view from cached data only.
func (l *ProductList) Current() ListView {
	_, term := l.Terms()

	all, ok, stale := cache.Peek[[]models.Product](l.cache, ProductsTag)
	if !ok {
		return ListView{State: Loading, Term: term}
	}

	filtered := FilterByName(all, term)
	v := ListView{Products: filtered, Term: term, Stale: stale, State: Populated}
	if len(filtered) == 0 {
		v.State = Empty
	}
	return v
}

// Close drops a pending search term.
func (l *ProductList) Close() {
	l.search.Stop()
}

// FilterByName keeps products whose name contains term, ignoring case.
// An empty term keeps everything.
func FilterByName(all []models.Product, term string) []models.Product {
	needle := strings.ToLower(term)
	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

// ProductService creates, updates and deletes products. Every success
// invalidates the cached collection before it is reported.
type ProductService interface {
	Create(ctx context.Context, d models.Draft) (models.Product, error)
	Update(ctx context.Context, id string, d models.Draft) (models.Product, error)
	Delete(ctx context.Context, id string) error
}

type productService struct {
	api      client.Client
	tokens   client.TokenSource
	cache    *cache.Cache
	notifier notify.Notifier
	log      logging.Logger
}

func NewProductService(api client.Client, tokens client.TokenSource, c *cache.Cache, notifier notify.Notifier, log logging.Logger) ProductService {
	return &productService{
		api:      api,
		tokens:   tokens,
		cache:    c,
		notifier: notifier,
		log:      log.With("component", "products"),
	}
}

func (s *productService) Create(ctx context.Context, d models.Draft) (models.Product, error) {
	if err := s.precheck(); err != nil {
		return models.Product{}, err
	}
	if err := validation.RequireImage(d); err != nil {
		s.notifier.Error(notify.MsgSomethingWentWrong)
		return models.Product{}, err
	}

	p, err := s.api.CreateProduct(ctx, client.PayloadFromDraft(d))
	if err != nil {
		return models.Product{}, s.failed(ctx, "create product", err)
	}
	s.succeeded(ctx, notify.MsgProductCreated, "created", p.ID)
	return p, nil
}

func (s *productService) Update(ctx context.Context, id string, d models.Draft) (models.Product, error) {
	if err := s.precheck(); err != nil {
		return models.Product{}, err
	}
	if id == "" {
		s.notifier.Error(notify.MsgSomethingWentWrong)
		return models.Product{}, validation.Errors{{Field: "id", Message: "Required"}}
	}

	p, err := s.api.UpdateProduct(ctx, id, client.PayloadFromDraft(d))
	if err != nil {
		return models.Product{}, s.failed(ctx, "update product", err)
	}
	s.succeeded(ctx, notify.MsgProductUpdated, "updated", id)
	return p, nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	if err := s.precheck(); err != nil {
		return err
	}
	if id == "" {
		s.notifier.Error(notify.MsgSomethingWentWrong)
		return validation.Errors{{Field: "id", Message: "Required"}}
	}

	if err := s.api.DeleteProduct(ctx, id); err != nil {
		return s.failed(ctx, "delete product", err)
	}
	s.succeeded(ctx, notify.MsgProductDeleted, "deleted", id)
	return nil
}

func (s *productService) precheck() error {
	if s.tokens == nil || s.tokens.AccessToken() == "" {
		s.notifier.Error(notify.MsgSomethingWentWrong)
		return ErrNotAuthenticated
	}
	return nil
}

func (s *productService) succeeded(ctx context.Context, msg, action, id string) {
	s.cache.Invalidate(ProductsTag)
	s.log.Info(ctx, "product "+action, "id", id)
	s.notifier.Success(msg)
}

func (s *productService) failed(ctx context.Context, op string, err error) error {
	s.log.Warn(ctx, op, "error", err)
	s.notifier.Error(notify.MsgSomethingWentWrong)
	return fmt.Errorf("%s: %w", op, err)
}
