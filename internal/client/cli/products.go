package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/storeadmin/internal/client/models"
	"github.com/dmitrijs2005/storeadmin/internal/client/nav"
	"github.com/dmitrijs2005/storeadmin/internal/client/services"
)

var (
	errNotSignedIn     = errors.New("not signed in")
	errProductNotFound = errors.New("product not found")
)

// requireSession lands on the home view. When the gate refuses, the user is
// sent to the login prompt and the command continues only if that succeeds.
func (a *App) requireSession(ctx context.Context) bool {
	if a.router.Navigate(nav.ViewHome, true) == nav.ViewHome {
		return true
	}
	fmt.Fprintln(a.out, "Please sign in first.")
	if err := a.Login(ctx); err != nil {
		return false
	}
	return a.router.Current() == nav.ViewHome
}

// List prints the products matching the committed search term.
func (a *App) List(ctx context.Context) error {
	if !a.requireSession(ctx) {
		return errNotSignedIn
	}
	return a.showProducts(ctx)
}

// Search applies term as the name filter right away and lists the result.
// An empty term clears the filter.
func (a *App) Search(ctx context.Context, term string) error {
	if !a.requireSession(ctx) {
		return errNotSignedIn
	}
	a.list.SetSearch(term)
	a.list.CommitSearch()
	return a.showProducts(ctx)
}

// Refresh marks the cached collection stale and loads it again.
func (a *App) Refresh(ctx context.Context) error {
	if !a.requireSession(ctx) {
		return errNotSignedIn
	}
	a.cache.Invalidate(services.ProductsTag)
	return a.showProducts(ctx)
}

func (a *App) showProducts(ctx context.Context) error {
	view, err := a.list.Refresh(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Could not load products:", err)
	}
	a.printView(view)
	return err
}

func (a *App) printView(v services.ListView) {
	switch v.State {
	case services.Loading:
		fmt.Fprintln(a.out, "Products are not loaded yet.")
		return
	case services.Empty:
		if v.Term != "" {
			fmt.Fprintf(a.out, "No products match %q.\n", v.Term)
		} else {
			fmt.Fprintln(a.out, "No products yet.")
		}
	default:
		if v.Term != "" {
			fmt.Fprintf(a.out, "Products matching %q:\n", v.Term)
		}
		for _, p := range v.Products {
			fmt.Fprintln(a.out, p.String())
		}
	}
	if v.Stale {
		fmt.Fprintln(a.out, "(showing cached data)")
	}
}

// Add opens the editor with an empty draft and submits it.
func (a *App) Add(ctx context.Context) error {
	if !a.requireSession(ctx) {
		return errNotSignedIn
	}
	a.editor.OpenCreate()
	return a.runEditor(ctx)
}

// Edit opens the editor on the product with the given id.
func (a *App) Edit(ctx context.Context, id string) error {
	if !a.requireSession(ctx) {
		return errNotSignedIn
	}
	p, err := a.findProduct(ctx, id)
	if err != nil {
		return err
	}
	a.editor.OpenEdit(p)
	return a.runEditor(ctx)
}

// Delete removes a product after the user confirms.
func (a *App) Delete(ctx context.Context, id string) error {
	if !a.requireSession(ctx) {
		return errNotSignedIn
	}
	p, err := a.findProduct(ctx, id)
	if err != nil {
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete %q (%s)?", p.Name, p.ID), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	return a.products.Delete(ctx, p.ID)
}

func (a *App) findProduct(ctx context.Context, id string) (models.Product, error) {
	all, err := a.list.Fetch(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Could not load products:", err)
		return models.Product{}, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	fmt.Fprintf(a.out, "Product %s not found.\n", id)
	return models.Product{}, errProductNotFound
}

// runEditor fills the open draft from the prompt and submits it. Field errors
// keep the editor open and the user may correct the form.
func (a *App) runEditor(ctx context.Context) error {
	for retry := false; ; retry = true {
		d, err := a.promptDraft(a.editor.Draft(), retry || a.editor.Mode() == services.ModeEdit)
		if err != nil {
			a.editor.Cancel()
			return err
		}
		a.editor.SetDraft(d)

		p, err := a.editor.Submit(ctx)
		if err == nil {
			fmt.Fprintln(a.out, p.String())
			return nil
		}

		a.printFieldErrors(err)
		if !a.editor.IsOpen() {
			return err
		}

		again, cerr := Confirm(a.reader, "Fix the form?", a.out)
		if cerr != nil || !again {
			a.editor.Cancel()
			return err
		}
	}
}

// promptDraft asks for every editable field. When editing (or correcting a
// rejected form) an empty answer keeps the current value.
func (a *App) promptDraft(d models.Draft, editing bool) (models.Draft, error) {
	name, err := getSimpleText(a.reader, withCurrent("Enter name", d.Name, editing), a.out)
	if err != nil {
		return d, err
	}
	if name != "" || !editing {
		d.Name = name
	}

	desc, err := GetMultiline(a.reader, withCurrent("Enter description", models.Excerpt(d.Description, 40), editing), a.out)
	if err != nil {
		return d, err
	}
	if desc != "" || !editing {
		d.Description = desc
	}

	price, err := getSimpleText(a.reader, withCurrent("Enter price", models.FormatPrice(d.Price), editing), a.out)
	if err != nil {
		return d, err
	}
	switch {
	case price == "" && editing:
	case price == "":
		d.Price = 0
	default:
		v, perr := strconv.ParseFloat(strings.TrimPrefix(price, "$"), 64)
		if perr != nil {
			fmt.Fprintln(a.out, "Price must be a number.")
			v = 0
		}
		d.Price = v
	}

	imagePrompt := "Enter image file path (JPEG, PNG or WEBP)"
	if editing {
		imagePrompt += ", empty keeps the current image"
	}
	path, err := getSimpleText(a.reader, imagePrompt, a.out)
	if err != nil {
		return d, err
	}
	if path != "" {
		img, lerr := models.LoadImageFile(path)
		if lerr != nil {
			fmt.Fprintln(a.out, "Could not read image:", lerr)
		} else {
			d.Image = img
		}
	}
	return d, nil
}

func withCurrent(prompt, current string, editing bool) string {
	if !editing || current == "" {
		return prompt
	}
	return fmt.Sprintf("%s [%s]", prompt, current)
}
