// Package user stores shopper profile records keyed by username. It shares
// the persistent store with the cart but owns separate keys and has no
// interaction with cart invariants.
package user

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/dwarforca/storefront/internal/storage/kv"
)

// Storage keys owned by this package. The cart manager never touches them.
const (
	UsersKey       = "dwarforca_users"
	CurrentUserKey = "dwarforca_current_user"
)

var (
	// ErrNotLoggedIn is returned when no session is active.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrEmptyUsername is returned by Login for a blank username.
	ErrEmptyUsername = errors.New("username required")
)

// Account is one shopper's profile record. The JSON field names match the
// records earlier storefront builds persisted.
type Account struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	Contact  string `json:"contact"`
}

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	Contact  string `json:"contact"`
}

// Service manages profile records and the active session.
type Service struct {
	store kv.Store
}

// NewService creates a Service over the given store.
func NewService(store kv.Store) *Service {
	return &Service{store: store}
}

// Login activates a session for username, creating a blank profile record
// on first login.
func (s *Service) Login(ctx context.Context, username string) (Account, error) {
	if username == "" {
		return Account{}, ErrEmptyUsername
	}

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return Account{}, err
	}

	acct, ok := accounts[username]
	if !ok {
		acct = Account{Username: username}
		accounts[username] = acct
		if err := s.saveAccounts(ctx, accounts); err != nil {
			return Account{}, err
		}
	}

	if err := s.setCurrent(ctx, acct); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// Current returns the active session's account.
func (s *Service) Current(ctx context.Context) (Account, error) {
	raw, err := s.store.Get(ctx, CurrentUserKey)
	if errors.Is(err, kv.ErrNotFound) {
		return Account{}, ErrNotLoggedIn
	}
	if err != nil {
		return Account{}, errors.Wrap(err, "read current user")
	}

	var acct Account
	if err := json.Unmarshal([]byte(raw), &acct); err != nil {
		return Account{}, errors.Wrap(err, "decode current user")
	}
	return acct, nil
}

// UpdateProfile writes the editable fields of the active account to both
// the account map and the session record.
func (s *Service) UpdateProfile(ctx context.Context, update ProfileUpdate) (Account, error) {
	acct, err := s.Current(ctx)
	if err != nil {
		return Account{}, err
	}

	acct.FullName = update.FullName
	acct.Address = update.Address
	acct.Contact = update.Contact

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return Account{}, err
	}
	accounts[acct.Username] = acct

	if err := s.saveAccounts(ctx, accounts); err != nil {
		return Account{}, err
	}
	if err := s.setCurrent(ctx, acct); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// Logout ends the active session. The profile record itself is kept.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, CurrentUserKey); err != nil {
		return errors.Wrap(err, "clear current user")
	}
	return nil
}

func (s *Service) loadAccounts(ctx context.Context) (map[string]Account, error) {
	raw, err := s.store.Get(ctx, UsersKey)
	if errors.Is(err, kv.ErrNotFound) {
		return make(map[string]Account), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read users")
	}

	accounts := make(map[string]Account)
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		return nil, errors.Wrap(err, "decode users")
	}
	return accounts, nil
}

func (s *Service) saveAccounts(ctx context.Context, accounts map[string]Account) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return errors.Wrap(err, "encode users")
	}
	if err := s.store.Set(ctx, UsersKey, string(data)); err != nil {
		return errors.Wrap(err, "write users")
	}
	return nil
}

func (s *Service) setCurrent(ctx context.Context, acct Account) error {
	data, err := json.Marshal(acct)
	if err != nil {
		return errors.Wrap(err, "encode current user")
	}
	if err := s.store.Set(ctx, CurrentUserKey, string(data)); err != nil {
		return errors.Wrap(err, "write current user")
	}
	return nil
}
