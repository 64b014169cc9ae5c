// Package dialog drives the add-city dialog.
package dialog

import (
	"context"
	"fmt"
	"sync"

	"pwa-weather/internal/modules/forecast/types"
)

// VisibleClass is the CSS class that makes the dialog container visible.
const VisibleClass = "dialog-container--visible"

type Fetcher interface {
	Fetch(ctx context.Context, identifier, label string)
}

type CityList interface {
	Append(entry types.CityEntry)
	Save(ctx context.Context) error
}

type Dialog struct {
	fetcher Fetcher
	cities  CityList

	mu      sync.Mutex
	visible bool
}

func New(fetcher Fetcher, cities CityList) *Dialog {
	return &Dialog{fetcher: fetcher, cities: cities}
}

func (d *Dialog) Show() { d.setVisible(true) }

func (d *Dialog) Hide() { d.setVisible(false) }

func (d *Dialog) Visible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible
}

// Class returns the CSS class for the dialog container's current state.
func (d *Dialog) Class() string {
	if d.Visible() {
		return VisibleClass
	}
	return ""
}

// ConfirmAdd starts loading the city, appends it to the list, saves the list
// and closes the dialog. The dialog is closed even when saving fails.
func (d *Dialog) ConfirmAdd(ctx context.Context, identifier, label string) error {
	d.fetcher.Fetch(ctx, identifier, label)
	d.cities.Append(types.CityEntry{Identifier: identifier, Label: label})
	err := d.cities.Save(ctx)
	d.Hide()
	if err != nil {
		return fmt.Errorf("add city %q: %w", identifier, err)
	}
	return nil
}

// Cancel closes the dialog and changes nothing else.
func (d *Dialog) Cancel() { d.Hide() }

func (d *Dialog) setVisible(v bool) {
	d.mu.Lock()
	d.visible = v
	d.mu.Unlock()
}
