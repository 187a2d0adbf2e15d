// Package labels maintains the session cache mapping label names to provider
// label IDs, creating labels remotely only when they are genuinely absent.
package labels

import (
	"context"
	"fmt"
	"strings"

	"github.com/mailsift/mailsift/internal/provider"
)

// ResolveError is returned when a label name could not be resolved or
// created. The rule action that needed the label is treated as not-applied.
type ResolveError struct {
	Name string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("failed to resolve label %q: %v", e.Name, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Directory caches the provider's label name-to-ID mapping for one session.
// Names are compared case-insensitively. The remote label list is the source
// of truth; the cache is advisory and is refreshed on every local miss
// before a create is attempted, so concurrent sessions referencing the same
// new name do not produce duplicates.
type Directory struct {
	gateway provider.MailGateway
	byName  map[string]string // lower-cased name -> label ID
}

// NewDirectory creates an empty directory over the given gateway.
func NewDirectory(gateway provider.MailGateway) *Directory {
	return &Directory{
		gateway: gateway,
		byName:  make(map[string]string),
	}
}

// ResolveOrCreate returns the label ID for the given name, creating the
// label remotely only if it exists neither in the cache nor in a fresh
// remote listing.
func (d *Directory) ResolveOrCreate(ctx context.Context, name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "", &ResolveError{Name: name, Err: fmt.Errorf("label name is empty")}
	}

	if id, ok := d.byName[key]; ok {
		return id, nil
	}

	// Local miss: the label may have been created out-of-band, so re-list
	// before creating.
	if err := d.refresh(ctx); err != nil {
		return "", &ResolveError{Name: name, Err: err}
	}
	if id, ok := d.byName[key]; ok {
		return id, nil
	}

	created, err := d.gateway.CreateLabel(ctx, strings.TrimSpace(name))
	if err != nil {
		return "", &ResolveError{Name: name, Err: err}
	}
	d.byName[key] = created.ID
	return created.ID, nil
}

// refresh replaces the cache with the current remote label list.
func (d *Directory) refresh(ctx context.Context) error {
	labels, err := d.gateway.ListLabels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list labels: %w", err)
	}
	byName := make(map[string]string, len(labels))
	for _, l := range labels {
		byName[strings.ToLower(l.Name)] = l.ID
	}
	d.byName = byName
	return nil
}
