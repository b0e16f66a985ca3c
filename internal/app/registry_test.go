package app_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mapcollab/boardd/internal/app"
	"github.com/mapcollab/boardd/internal/domain"
)

func TestRegistryBindLookupUnbind(t *testing.T) {
	r := app.NewRegistry()

	if _, ok := r.Lookup("conn-a"); ok {
		t.Fatal("Lookup on empty registry returned ok")
	}

	r.Bind("conn-a", "b1", domain.Profile{ID: "u1", Name: "Ada"})
	sess, ok := r.Lookup("conn-a")
	if !ok {
		t.Fatal("Lookup after Bind returned !ok")
	}
	want := app.Session{BoardID: "b1", Profile: domain.Profile{ID: "u1", Name: "Ada"}}
	if diff := cmp.Diff(want, sess); diff != "" {
		t.Errorf("session mismatch (-want +got):\n%s", diff)
	}

	// Last-write-wins rebinding.
	r.Bind("conn-a", "b2", domain.Profile{ID: "u1"})
	sess, _ = r.Lookup("conn-a")
	if sess.BoardID != "b2" {
		t.Errorf("rebind BoardID = %q, want b2", sess.BoardID)
	}

	r.Unbind("conn-a")
	r.Unbind("conn-a") // idempotent
	if _, ok := r.Lookup("conn-a"); ok {
		t.Fatal("Lookup after Unbind returned ok")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}
