// Package userstore loads the credential file the login endpoint checks
// passwords against.
//
// The file is one user per line:
//
//	name:bcrypt-hash:role1,role2
//
// Blank lines and lines starting with '#' are skipped. Passwords are bcrypt
// hashes, so the file holds nothing directly usable even if it leaks. The
// store keeps an immutable snapshot behind an RWMutex; Reload swaps in a new
// snapshot atomically and never replaces a good one with a bad parse.
package userstore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown user and for a wrong
// password alike, so responses cannot be used to enumerate user names.
var ErrInvalidCredentials = errors.New("userstore: invalid credentials")

// user is one parsed credential line.
type user struct {
	name  string
	hash  string
	roles string
}

// Store holds the parsed credential file.
type Store struct {
	path string

	mu    sync.RWMutex
	users map[string]user
}

// Open loads the credential file at path. The initial load must succeed;
// later reloads may fail without losing the current snapshot.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the credential file and swaps in the new snapshot. On any
// parse or read error the previous snapshot stays in place.
func (s *Store) Reload() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("userstore: open %s: %w", s.path, err)
	}
	defer f.Close()

	users := make(map[string]user)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			return fmt.Errorf("userstore: %s:%d: expected name:hash:roles", s.path, lineNo)
		}
		name := strings.TrimSpace(parts[0])
		hash := strings.TrimSpace(parts[1])
		roles := strings.TrimSpace(parts[2])
		if name == "" {
			return fmt.Errorf("userstore: %s:%d: empty user name", s.path, lineNo)
		}
		if !strings.HasPrefix(hash, "$2") {
			return fmt.Errorf("userstore: %s:%d: password hash is not bcrypt", s.path, lineNo)
		}
		if _, dup := users[name]; dup {
			return fmt.Errorf("userstore: %s:%d: duplicate user %q", s.path, lineNo, name)
		}
		users[name] = user{name: name, hash: hash, roles: roles}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("userstore: read %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}

// Authenticate checks a name/password pair and returns the user's role
// string. Unknown user and wrong password are indistinguishable to the
// caller.
func (s *Store) Authenticate(name, password string) (string, error) {
	s.mu.RLock()
	u, ok := s.users[name]
	s.mu.RUnlock()

	if !ok {
		// Burn a bcrypt comparison anyway so a missing user costs the
		// same time as a wrong password.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.hash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return u.roles, nil
}

// Len returns the number of loaded users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Path returns the credential file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// dummyHash is a valid bcrypt hash of an unguessable value, used to equalize
// timing for unknown users.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("userstore-timing-equalizer"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()
