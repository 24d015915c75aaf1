package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/storeadmin/internal/client/cache"
	"github.com/dmitrijs2005/storeadmin/internal/client/client"
	"github.com/dmitrijs2005/storeadmin/internal/client/debounce"
	"github.com/dmitrijs2005/storeadmin/internal/client/models"
	"github.com/dmitrijs2005/storeadmin/internal/client/notify"
	"github.com/dmitrijs2005/storeadmin/internal/client/validation"
	"github.com/dmitrijs2005/storeadmin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	prodA = models.Product{ID: "a", Name: "Red Shoe", Description: "left and right", Price: 10, ImageURL: "http://img/a.png"}
	prodB = models.Product{ID: "b", Name: "Blue Hat", Description: "wool", Price: 5, ImageURL: "http://img/b.png"}
)

func pngImage() *models.ImageFile {
	return &models.ImageFile{Name: "pic.png", ContentType: "image/png", Data: []byte("png")}
}

func TestProductList_LoadingUntilFirstFetch(t *testing.T) {
	fc := &fakeClient{Products: []models.Product{prodA, prodB}}
	l := NewProductList(fc, cache.New(), 0, debounce.NewFakeClock(time.Now()), logging.Discard())

	assert.Equal(t, Loading, l.Current().State)

	v, err := l.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Populated, v.State)
	assert.Equal(t, []models.Product{prodA, prodB}, v.Products)
}

func TestProductList_DebouncedSearch(t *testing.T) {
	clock := debounce.NewFakeClock(time.Unix(0, 0))
	fc := &fakeClient{Products: []models.Product{prodA, prodB}}
	l := NewProductList(fc, cache.New(), debounce.DefaultWait, clock, logging.Discard())
	_, err := l.Refresh(context.Background())
	require.NoError(t, err)

	var commits []string
	l.OnCommit(func(term string) { commits = append(commits, term) })

	l.SetSearch("s")
	clock.Advance(100 * time.Millisecond)
	l.SetSearch("sh")
	clock.Advance(100 * time.Millisecond)
	l.SetSearch("shoe")

	raw, committed := l.Terms()
	assert.Equal(t, "shoe", raw)
	assert.Empty(t, committed)
	assert.Len(t, l.Current().Products, 2)

	clock.Advance(999 * time.Millisecond)
	assert.Empty(t, commits)

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"shoe"}, commits)

	v := l.Current()
	assert.Equal(t, "shoe", v.Term)
	assert.Equal(t, []models.Product{prodA}, v.Products)

	l.SetSearch("SOCK")
	assert.True(t, l.CommitSearch())
	assert.Equal(t, Empty, l.Current().State)

	assert.Equal(t, 1, fc.ListCallCount)
}

func TestProductList_StaleDataStaysVisible(t *testing.T) {
	fc := &fakeClient{Products: []models.Product{prodA, prodB}}
	c := cache.New()
	l := NewProductList(fc, c, 0, nil, logging.Discard())
	defer l.Close()

	_, err := l.Refresh(context.Background())
	require.NoError(t, err)

	c.Invalidate(ProductsTag)
	v := l.Current()
	assert.Equal(t, Populated, v.State)
	assert.True(t, v.Stale)

	fc.ListErr = client.ErrUnavailable
	v, err = l.Refresh(context.Background())
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Equal(t, Populated, v.State)
	assert.Equal(t, []models.Product{prodA, prodB}, v.Products)
}

func TestFilterByName(t *testing.T) {
	all := []models.Product{prodA, prodB}
	assert.Equal(t, all, FilterByName(all, ""))
	assert.Equal(t, []models.Product{prodB}, FilterByName(all, "HAT"))
	assert.Empty(t, FilterByName(all, "boot"))
	assert.NotNil(t, FilterByName(nil, "x"))
}

func TestListState_String(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "populated", Populated.String())
	assert.Equal(t, "ListState(9)", ListState(9).String())
}

func newProductService(t *testing.T, fc *fakeClient, c *cache.Cache) (ProductService, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	return NewProductService(fc, signedIn(t), c, rec, logging.Discard()), rec
}

func TestDelete_InvalidatesCollection(t *testing.T) {
	fc := &fakeClient{Products: []models.Product{prodA, prodB}}
	c := cache.New()
	l := NewProductList(fc, c, 0, nil, logging.Discard())
	svc, rec := newProductService(t, fc, c)

	got, err := l.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Product{prodA, prodB}, got)

	require.NoError(t, svc.Delete(context.Background(), "a"))

	got, err = l.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Product{prodB}, got)
	assert.Equal(t, 2, fc.ListCallCount)

	assert.Equal(t, []notify.Message{{Kind: notify.KindSuccess, Text: notify.MsgProductDeleted}}, rec.Messages())
}

func TestCreate_WithoutImageMakesNoCall(t *testing.T) {
	fc := &fakeClient{}
	c := cache.New()
	svc, rec := newProductService(t, fc, c)

	_, err := svc.Create(context.Background(), models.Draft{Name: "Shoe", Description: "Red", Price: 3})
	require.ErrorIs(t, err, validation.ErrValidation)

	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.NotEmpty(t, errs.Field("image"))

	assert.Empty(t, fc.calls())
	assert.Zero(t, c.Generation(ProductsTag))
	last, _ := rec.Last()
	assert.Equal(t, notify.KindError, last.Kind)
}

func TestCreate_Success(t *testing.T) {
	fc := &fakeClient{}
	c := cache.New()
	svc, rec := newProductService(t, fc, c)

	var invalidated []string
	c.OnInvalidate(func(tag string) { invalidated = append(invalidated, tag) })

	p, err := svc.Create(context.Background(), models.Draft{Name: "Shoe", Description: "Red", Price: 3, Image: pngImage()})
	require.NoError(t, err)
	assert.Equal(t, "new", p.ID)
	assert.Equal(t, pngImage(), fc.LastPayload.Image)
	assert.Equal(t, []string{ProductsTag}, invalidated)

	last, _ := rec.Last()
	assert.Equal(t, notify.Message{Kind: notify.KindSuccess, Text: notify.MsgProductCreated}, last)
}

func TestUpdate_WithoutImageSendsExistingURL(t *testing.T) {
	fc := &fakeClient{Products: []models.Product{prodA}}
	svc, rec := newProductService(t, fc, cache.New())

	d := models.DraftFrom(prodA)
	d.Name = "Green Shoe"

	p, err := svc.Update(context.Background(), d.ID, d)
	require.NoError(t, err)

	assert.Equal(t, "a", fc.LastUpdateID)
	assert.Nil(t, fc.LastPayload.Image)
	assert.Equal(t, prodA.ImageURL, fc.LastPayload.ImageURL)
	assert.Equal(t, "Green Shoe", p.Name)

	last, _ := rec.Last()
	assert.Equal(t, notify.MsgProductUpdated, last.Text)
}

func TestUpdate_EmptyIDRejected(t *testing.T) {
	fc := &fakeClient{}
	svc, _ := newProductService(t, fc, cache.New())

	_, err := svc.Update(context.Background(), "", models.Draft{Name: "x"})
	require.ErrorIs(t, err, validation.ErrValidation)
	assert.Empty(t, fc.calls())
}

func TestMutations_FailureDoesNotInvalidate(t *testing.T) {
	boom := errors.New("boom")
	fc := &fakeClient{CreateErr: boom, UpdateErr: boom, DeleteErr: boom}
	c := cache.New()
	svc, rec := newProductService(t, fc, c)

	_, err := svc.Create(context.Background(), models.Draft{Name: "n", Description: "d", Price: 1, Image: pngImage()})
	require.ErrorIs(t, err, boom)
	_, err = svc.Update(context.Background(), "a", models.Draft{Name: "n", Description: "d", Price: 1})
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, svc.Delete(context.Background(), "a"), boom)

	assert.Zero(t, c.Generation(ProductsTag))
	for _, m := range rec.Messages() {
		assert.Equal(t, notify.Message{Kind: notify.KindError, Text: notify.MsgSomethingWentWrong}, m)
	}
	assert.Len(t, rec.Messages(), 3)
}

func TestMutations_RequireToken(t *testing.T) {
	fc := &fakeClient{}
	rec := &notify.Recorder{}
	svc := NewProductService(fc, newStore(t), cache.New(), rec, logging.Discard())

	_, err := svc.Create(context.Background(), models.Draft{Image: pngImage()})
	require.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = svc.Update(context.Background(), "a", models.Draft{})
	require.ErrorIs(t, err, ErrNotAuthenticated)
	require.ErrorIs(t, svc.Delete(context.Background(), "a"), ErrNotAuthenticated)

	assert.Empty(t, fc.calls())
}
