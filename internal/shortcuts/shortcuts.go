// Package shortcuts manages the user-curated list of default commands.
//
// Shortcuts are convenience, not trust: every addition passes the
// policy engine first, and execution of a shortcut revalidates like
// any other command.
package shortcuts

import (
	sgerr "shellgate/internal/errors"
	"shellgate/internal/policy"
	"shellgate/internal/store"
)

// List is the ordered default-command list, addressed by 1-based index.
type List struct {
	store  store.Store
	engine *policy.Engine
}

// New creates a shortcut list over the given store, validating
// additions with the given engine.
func New(s store.Store, e *policy.Engine) *List {
	return &List{store: s, engine: e}
}

// All returns the shortcuts in stored order.
func (l *List) All() ([]string, error) { return l.store.Commands() }

// Add validates text against the policy engine and appends it.
// Returns the command as it will be stored.
func (l *List) Add(text string) (string, error) {
	cmd, err := l.engine.Validate(text)
	if err != nil {
		return "", err
	}
	cmds, err := l.store.Commands()
	if err != nil {
		return "", err
	}
	return cmd, l.store.PutCommands(append(cmds, cmd))
}

// Remove deletes the shortcut at the given 1-based index and returns
// the removed text.
func (l *List) Remove(index int) (string, error) {
	cmds, err := l.store.Commands()
	if err != nil {
		return "", err
	}
	if index < 1 || index > len(cmds) {
		return "", &sgerr.NotFoundError{What: "command", Index: index}
	}
	removed := cmds[index-1]
	rest := append(append([]string(nil), cmds[:index-1]...), cmds[index:]...)
	return removed, l.store.PutCommands(rest)
}

// Get resolves a 1-based index to its shortcut text.
func (l *List) Get(index int) (string, error) {
	cmds, err := l.store.Commands()
	if err != nil {
		return "", err
	}
	if index < 1 || index > len(cmds) {
		return "", &sgerr.NotFoundError{What: "command", Index: index}
	}
	return cmds[index-1], nil
}
