// Package ui holds the model picker overlay state. Drawing happens in the
// game loop; this package only tracks what the panel shows and forwards
// the apply action.
package ui

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/skinswap/internal/logger"
	"github.com/Faultbox/skinswap/internal/registry"
	"github.com/Faultbox/skinswap/internal/swap"
)

// Catalog lists selectable models.
type Catalog interface {
	Scan() error
	List() []registry.Model
}

// Applier switches the character's model.
type Applier interface {
	Apply(name string) error
	Current() string
}

// SelectionStore persists the applied model name.
type SelectionStore interface {
	SetSelectedModel(name string) error
}

// Entry is one row of the panel.
type Entry struct {
	Model    registry.Model
	Selected bool // highlighted by the cursor
	Active   bool // currently applied
}

// Overlay is a toggleable model list with an apply action.
type Overlay struct {
	catalog Catalog
	applier Applier
	store   SelectionStore
	log     *zap.Logger

	visible  bool
	models   []registry.Model
	cursor   int
	applying bool
	status   string
}

// New creates a hidden overlay and loads the current model list.
func New(catalog Catalog, applier Applier, store SelectionStore, log *zap.Logger) *Overlay {
	o := &Overlay{
		catalog: catalog,
		applier: applier,
		store:   store,
		log:     logger.OrNamed(log, "overlay"),
	}
	o.models = catalog.List()
	o.focus(applier.Current())
	return o
}

// Toggle shows or hides the panel. Showing it rescans the models.
func (o *Overlay) Toggle() {
	o.visible = !o.visible
	if o.visible {
		if err := o.Refresh(); err != nil {
			o.status = fmt.Sprintf("Scan failed: %v", err)
		}
	}
}

// Visible reports whether the panel is shown.
func (o *Overlay) Visible() bool {
	return o.visible
}

// Refresh rescans the catalog, keeping the cursor on the same model when
// it still exists.
func (o *Overlay) Refresh() error {
	prev := o.Selected()
	if err := o.catalog.Scan(); err != nil {
		o.log.Warn("model scan failed", zap.Error(err))
		return err
	}
	o.models = o.catalog.List()
	o.cursor = 0
	if !o.focus(prev) {
		o.focus(o.applier.Current())
	}
	return nil
}

func (o *Overlay) focus(name string) bool {
	for i, m := range o.models {
		if strings.EqualFold(m.Name, name) {
			o.cursor = i
			return true
		}
	}
	return false
}

// Entries returns the rows to draw.
func (o *Overlay) Entries() []Entry {
	current := o.applier.Current()
	out := make([]Entry, len(o.models))
	for i, m := range o.models {
		out[i] = Entry{
			Model:    m,
			Selected: i == o.cursor,
			Active:   strings.EqualFold(m.Name, current),
		}
	}
	return out
}

// Selected returns the model under the cursor, or "" when the list is empty.
func (o *Overlay) Selected() string {
	if o.cursor < 0 || o.cursor >= len(o.models) {
		return ""
	}
	return o.models[o.cursor].Name
}

// Move shifts the cursor by delta, wrapping around the list.
func (o *Overlay) Move(delta int) {
	n := len(o.models)
	if n == 0 {
		return
	}
	o.cursor = ((o.cursor+delta)%n + n) % n
}

// Select puts the cursor on the named model.
func (o *Overlay) Select(name string) bool {
	return o.focus(name)
}

// Applying reports whether an apply is running.
func (o *Overlay) Applying() bool {
	return o.applying
}

// Status returns the result of the last action.
func (o *Overlay) Status() string {
	return o.status
}

// Apply applies the model under the cursor and persists the choice.
func (o *Overlay) Apply() error {
	if o.applying {
		return swap.ErrBusy
	}
	name := o.Selected()
	if name == "" {
		return fmt.Errorf("%w: nothing selected", swap.ErrUnknownModel)
	}

	o.applying = true
	defer func() { o.applying = false }()

	if err := o.applier.Apply(name); err != nil {
		o.status = fmt.Sprintf("Failed to apply %s: %v", name, err)
		return err
	}
	o.status = fmt.Sprintf("Applied %s", name)

	if o.store != nil {
		if err := o.store.SetSelectedModel(name); err != nil {
			o.log.Warn("selection not saved", zap.String("model", name), zap.Error(err))
		}
	}
	return nil
}
