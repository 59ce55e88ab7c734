// Package registry manages the list of known remote hosts.
//
// Records are addressed by the 1-based index shown to the operator.
// The backing store compacts on every rewrite, so after a removal all
// higher records shift down by one: indices are stable between
// mutations, not across them.  List and Remove always agree because
// both read the same compacted sequence.
package registry

import (
	"net"
	"strings"
	"time"

	sgerr "shellgate/internal/errors"
	"shellgate/internal/store"
)

// Record is one known remote host.  Index is assigned at read time
// from the record's position in the compacted list.
type Record struct {
	Index    int
	Host     string
	Username string
	Secret   string
	AddedBy  string
	AddedAt  time.Time
}

// timeLayout matches the store's AddedAt encoding.
const timeLayout = "2006-01-02 15:04:05"

// Registry is CRUD over server records.  It holds no state of its own;
// every call reads or rewrites the store.
type Registry struct {
	store store.Store
}

// New creates a Registry over the given store.
func New(s store.Store) *Registry { return &Registry{store: s} }

// List returns all records ordered by index ascending, starting at 1.
func (r *Registry) List() ([]Record, error) {
	rows, err := r.store.Servers()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		rec := Record{
			Index:    i + 1,
			Host:     row.Host,
			Username: row.Username,
			Secret:   row.Secret,
			AddedBy:  row.AddedBy,
		}
		if t, err := time.Parse(timeLayout, row.AddedAt); err == nil {
			rec.AddedAt = t
		}
		records = append(records, rec)
	}
	return records, nil
}

// Get resolves a 1-based index to its record.
func (r *Registry) Get(index int) (Record, error) {
	records, err := r.List()
	if err != nil {
		return Record{}, err
	}
	if index < 1 || index > len(records) {
		return Record{}, &sgerr.NotFoundError{What: "server", Index: index}
	}
	return records[index-1], nil
}

// ValidateFields checks a prospective record without persisting it.
// The gateway calls this before the credential probe so an obviously
// bad record never triggers a network dial.
func ValidateFields(host, username, secret string) error {
	host = strings.TrimSpace(host)
	if host == "" || strings.TrimSpace(username) == "" || secret == "" {
		return sgerr.Rejected(sgerr.MissingField, "host, username, and secret are required")
	}
	if !validHost(host) {
		return sgerr.Rejected(sgerr.InvalidHost, host)
	}
	return nil
}

// Add validates and persists a new record.  The new record receives
// the first free index, which under compaction is always len+1.
func (r *Registry) Add(host, username, secret, addedBy string) (Record, error) {
	if err := ValidateFields(host, username, secret); err != nil {
		return Record{}, err
	}
	host = strings.TrimSpace(host)
	username = strings.TrimSpace(username)

	rows, err := r.store.Servers()
	if err != nil {
		return Record{}, err
	}
	now := time.Now().UTC()
	row := store.ServerRow{
		Host:     host,
		Username: username,
		Secret:   secret,
		AddedBy:  addedBy,
		AddedAt:  now.Format(timeLayout),
	}
	if err := r.store.PutServers(append(rows, row)); err != nil {
		return Record{}, err
	}
	return Record{
		Index:    len(rows) + 1,
		Host:     host,
		Username: username,
		Secret:   secret,
		AddedBy:  addedBy,
		AddedAt:  now.Truncate(time.Second),
	}, nil
}

// Remove deletes the record at the given 1-based index and compacts
// the list.  Indices of all higher records shift down by one.
func (r *Registry) Remove(index int) (Record, error) {
	records, err := r.List()
	if err != nil {
		return Record{}, err
	}
	if index < 1 || index > len(records) {
		return Record{}, &sgerr.NotFoundError{What: "server", Index: index}
	}
	removed := records[index-1]

	rows := make([]store.ServerRow, 0, len(records)-1)
	for i, rec := range records {
		if i == index-1 {
			continue
		}
		rows = append(rows, store.ServerRow{
			Host:     rec.Host,
			Username: rec.Username,
			Secret:   rec.Secret,
			AddedBy:  rec.AddedBy,
			AddedAt:  rec.AddedAt.Format(timeLayout),
		})
	}
	if err := r.store.PutServers(rows); err != nil {
		return Record{}, err
	}
	return removed, nil
}

// validHost accepts an IP address or a plausible hostname.
func validHost(host string) bool {
	if net.ParseIP(host) != nil {
		return true
	}
	if len(host) > 253 {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		for i, c := range label {
			ok := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
				c == '-' && i > 0 && i < len(label)-1
			if !ok {
				return false
			}
		}
	}
	return true
}
