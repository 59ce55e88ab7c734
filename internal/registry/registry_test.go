package registry

import (
	"testing"

	sgerr "shellgate/internal/errors"
	"shellgate/internal/store"
)

func newTestRegistry() *Registry {
	return New(store.NewMemStore())
}

func mustAdd(t *testing.T, r *Registry, host, user string) Record {
	t.Helper()
	rec, err := r.Add(host, user, "pw", "1001")
	if err != nil {
		t.Fatalf("Add(%s): %v", host, err)
	}
	return rec
}

func TestAdd_AssignsAscendingIndices(t *testing.T) {
	r := newTestRegistry()

	a := mustAdd(t, r, "10.0.0.1", "root")
	b := mustAdd(t, r, "10.0.0.2", "root")

	if a.Index != 1 || b.Index != 2 {
		t.Errorf("indices = %d, %d, want 1, 2", a.Index, b.Index)
	}

	list, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	for i, rec := range list {
		if rec.Index != i+1 {
			t.Errorf("list[%d].Index = %d", i, rec.Index)
		}
	}
}

func TestAdd_Validation(t *testing.T) {
	r := newTestRegistry()

	tests := []struct {
		name             string
		host, user, pass string
		kind             sgerr.ValidationKind
	}{
		{"empty host", "", "root", "pw", sgerr.MissingField},
		{"empty user", "10.0.0.1", "  ", "pw", sgerr.MissingField},
		{"empty secret", "10.0.0.1", "root", "", sgerr.MissingField},
		{"bad host chars", "host;rm", "root", "pw", sgerr.InvalidHost},
		{"empty label", "a..b", "root", "pw", sgerr.InvalidHost},
		{"leading dash label", "-bad.example.com", "root", "pw", sgerr.InvalidHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Add(tt.host, tt.user, tt.pass, "1")
			if _, ok := sgerr.IsValidation(err, tt.kind); !ok {
				t.Errorf("Add() = %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestAdd_AcceptsIPAndHostname(t *testing.T) {
	r := newTestRegistry()

	for _, host := range []string{"10.0.0.5", "2001:db8::1", "db-01.internal", "localhost"} {
		if _, err := r.Add(host, "root", "pw", "1"); err != nil {
			t.Errorf("Add(%s): %v", host, err)
		}
	}
}

func TestGet(t *testing.T) {
	r := newTestRegistry()
	mustAdd(t, r, "10.0.0.1", "root")
	mustAdd(t, r, "10.0.0.2", "deploy")

	rec, err := r.Get(2)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Host != "10.0.0.2" || rec.Username != "deploy" {
		t.Errorf("Get(2) = %+v", rec)
	}

	for _, idx := range []int{0, -1, 3, 99} {
		_, err := r.Get(idx)
		var nf *sgerr.NotFoundError
		if !sgerr.As(err, &nf) {
			t.Errorf("Get(%d) = %v, want NotFoundError", idx, err)
			continue
		}
		if nf.Index != idx {
			t.Errorf("NotFound index = %d, want %d", nf.Index, idx)
		}
	}
}

// Removal compacts: the removed index disappears and higher records
// shift down, so list() never returns the removed record and a fresh
// add reuses the freed tail index.
func TestRemove_Compacts(t *testing.T) {
	r := newTestRegistry()
	mustAdd(t, r, "10.0.0.1", "root")
	mustAdd(t, r, "10.0.0.2", "root")
	mustAdd(t, r, "10.0.0.3", "root")

	removed, err := r.Remove(2)
	if err != nil {
		t.Fatal(err)
	}
	if removed.Host != "10.0.0.2" {
		t.Errorf("removed %q, want 10.0.0.2", removed.Host)
	}

	list, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Host != "10.0.0.1" || list[1].Host != "10.0.0.3" {
		t.Errorf("list = %v, %v", list[0].Host, list[1].Host)
	}
	if list[1].Index != 2 {
		t.Errorf("shifted record index = %d, want 2", list[1].Index)
	}

	// The freed index is the first free one again.
	added := mustAdd(t, r, "10.0.0.4", "root")
	if added.Index != 3 {
		t.Errorf("new index = %d, want 3", added.Index)
	}
}

func TestRemove_NotFound(t *testing.T) {
	r := newTestRegistry()
	mustAdd(t, r, "10.0.0.1", "root")
	mustAdd(t, r, "10.0.0.2", "root")

	_, err := r.Remove(99)
	var nf *sgerr.NotFoundError
	if !sgerr.As(err, &nf) || nf.Index != 99 {
		t.Errorf("Remove(99) = %v, want NotFound{99}", err)
	}

	// Nothing was deleted.
	list, _ := r.List()
	if len(list) != 2 {
		t.Errorf("len = %d after failed remove, want 2", len(list))
	}
}

func TestAddedAtRoundTrip(t *testing.T) {
	r := newTestRegistry()
	added := mustAdd(t, r, "10.0.0.1", "root")

	got, err := r.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if got.AddedAt.IsZero() {
		t.Error("AddedAt lost in round trip")
	}
	if !got.AddedAt.Equal(added.AddedAt) {
		t.Errorf("AddedAt = %s, want %s", got.AddedAt, added.AddedAt)
	}
	if got.AddedBy != "1001" {
		t.Errorf("AddedBy = %q", got.AddedBy)
	}
}
