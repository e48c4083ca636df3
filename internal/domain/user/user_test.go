package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwarforca/storefront/internal/storage/kv"
)

func TestLogin_CreatesAccountAndSession(t *testing.T) {
	svc := NewService(kv.NewMemoryStore())
	ctx := context.Background()

	acct, err := svc.Login(ctx, "nerissa")
	require.NoError(t, err)
	assert.Equal(t, "nerissa", acct.Username)
	assert.Empty(t, acct.FullName)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "nerissa", current.Username)
}

func TestLogin_EmptyUsername(t *testing.T) {
	svc := NewService(kv.NewMemoryStore())
	_, err := svc.Login(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyUsername)
}

func TestLogin_ExistingAccountKeepsProfile(t *testing.T) {
	svc := NewService(kv.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Login(ctx, "nerissa")
	require.NoError(t, err)
	_, err = svc.UpdateProfile(ctx, ProfileUpdate{FullName: "Nerissa R.", Address: "12 Fjord Way", Contact: "555-0199"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))

	acct, err := svc.Login(ctx, "nerissa")
	require.NoError(t, err)
	assert.Equal(t, "Nerissa R.", acct.FullName)
	assert.Equal(t, "12 Fjord Way", acct.Address)
}

func TestCurrent_NotLoggedIn(t *testing.T) {
	svc := NewService(kv.NewMemoryStore())
	_, err := svc.Current(context.Background())
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestUpdateProfile_RequiresSession(t *testing.T) {
	svc := NewService(kv.NewMemoryStore())
	_, err := svc.UpdateProfile(context.Background(), ProfileUpdate{FullName: "X"})
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestLogout_KeepsAccountRecord(t *testing.T) {
	store := kv.NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.Login(ctx, "nerissa")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))

	_, err = svc.Current(ctx)
	require.ErrorIs(t, err, ErrNotLoggedIn)

	// Account map is untouched.
	raw, err := store.Get(ctx, UsersKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"nerissa"`)
}

func TestAccountsAreIsolatedPerUsername(t *testing.T) {
	svc := NewService(kv.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Login(ctx, "ahab")
	require.NoError(t, err)
	_, err = svc.UpdateProfile(ctx, ProfileUpdate{FullName: "Captain Ahab"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ishmael")
	require.NoError(t, err)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ishmael", current.Username)
	assert.Empty(t, current.FullName)
}
