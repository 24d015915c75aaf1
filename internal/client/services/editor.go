package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/storeadmin/internal/client/models"
	"github.com/dmitrijs2005/storeadmin/internal/client/validation"
)

var ErrEditorClosed = errors.New("editor is not open")

type EditorMode int

const (
	ModeCreate EditorMode = iota
	ModeEdit
)

func (m EditorMode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "add"
}

// Editor holds the selected-product draft behind the add/edit dialog.
// Once a submission settles, whatever its outcome, the draft goes back to
// the empty template and the dialog closes.
type Editor struct {
	products ProductService
	guard    Guard

	mu    sync.Mutex
	open  bool
	mode  EditorMode
	draft models.Draft
}

func NewEditor(products ProductService) *Editor {
	return &Editor{products: products, draft: models.EmptyDraft()}
}

func (e *Editor) OpenCreate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = true
	e.mode = ModeCreate
	e.draft = models.EmptyDraft()
}

func (e *Editor) OpenEdit(p models.Product) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = true
	e.mode = ModeEdit
	e.draft = models.DraftFrom(p)
}

func (e *Editor) Draft() models.Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

func (e *Editor) SetDraft(d models.Draft) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = d
}

func (e *Editor) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

func (e *Editor) Mode() EditorMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Cancel closes the dialog and drops the draft.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

// Submit validates the draft and sends it. Field errors leave the dialog
// open with the draft intact; anything that reaches the product service
// settles the editor.
func (e *Editor) Submit(ctx context.Context) (models.Product, error) {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return models.Product{}, ErrEditorClosed
	}
	d, mode := e.draft, e.mode
	e.mu.Unlock()

	if err := validation.ProductForm(d); err != nil {
		return models.Product{}, err
	}

	var p models.Product
	err := e.guard.Do(func() error {
		defer e.settle()

		var err error
		if mode == ModeEdit {
			p, err = e.products.Update(ctx, d.ID, d)
		} else {
			p, err = e.products.Create(ctx, d)
		}
		return err
	})
	return p, err
}

func (e *Editor) settle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Editor) reset() {
	e.open = false
	e.draft = models.EmptyDraft()
}
