package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	bank "github.com/plightick/kursovaya"
	"github.com/plightick/kursovaya/internal/logger"
)

// UserFiles persists one user per flat text file at <root>/<username>.txt.
// Every save is a whole-file overwrite; there is no partial update and no
// cross-file atomicity. Concurrent processes race last-writer-wins per file.
type UserFiles struct {
	root string
	log  *logger.Logger
}

func NewUserFiles(root string, log *logger.Logger) *UserFiles {
	return &UserFiles{root: root, log: log}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserFiles)(nil)

const userFileExt = ".txt"

func (r *UserFiles) path(username string) string {
	return filepath.Join(r.root, username+userFileExt)
}

// EnsureRoot creates the storage root directory if absent.
func (r *UserFiles) EnsureRoot() error {
	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return bank.NewStorageError(fmt.Sprintf("create storage root %q", r.root), err)
	}
	return nil
}

// Save overwrites the user's file with the full serialized record.
func (r *UserFiles) Save(u bank.User) error {
	if err := r.EnsureRoot(); err != nil {
		return err
	}
	if err := os.WriteFile(r.path(u.Username), []byte(EncodeUser(u)), 0o644); err != nil {
		return bank.NewStorageError("cannot write user file: "+r.path(u.Username), err)
	}
	return nil
}

// Load reads and decodes one user record.
func (r *UserFiles) Load(username string) (bank.User, error) {
	f, err := os.Open(r.path(username))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return bank.User{}, bank.NewNotFoundError("user not found: " + username)
		}
		return bank.User{}, bank.NewStorageError("cannot read user file: "+r.path(username), err)
	}
	defer func() { _ = f.Close() }()

	u, err := DecodeUser(f)
	if err != nil {
		return bank.User{}, bank.NewStorageError("cannot decode user file: "+r.path(username), err)
	}
	return u, nil
}

// Exists reports whether a file for the username is present.
func (r *UserFiles) Exists(username string) bool {
	_, err := os.Stat(r.path(username))
	return err == nil
}

// ListUsernames returns all stored usernames in sorted order.
func (r *UserFiles) ListUsernames() ([]string, error) {
	if err := r.EnsureRoot(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, bank.NewStorageError(fmt.Sprintf("list storage root %q", r.root), err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), userFileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), userFileExt))
	}
	sort.Strings(names)
	return names, nil
}

// LoadAll loads every listed user, skipping any record that fails to load so
// one corrupt file cannot break an aggregate listing. Skips are logged.
func (r *UserFiles) LoadAll() ([]bank.User, error) {
	names, err := r.ListUsernames()
	if err != nil {
		return nil, err
	}
	out := make([]bank.User, 0, len(names))
	for _, name := range names {
		u, err := r.Load(name)
		if err != nil {
			if r.log != nil {
				r.log.Warnw("skipping unreadable user record", "username", name, "err", err)
			}
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// RemoveAll deletes every stored user file. Irreversible.
func (r *UserFiles) RemoveAll() error {
	names, err := r.ListUsernames()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.Remove(r.path(name)); err != nil {
			return bank.NewStorageError("cannot remove user file: "+r.path(name), err)
		}
	}
	return nil
}
