package services_test

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/ciphersafe/internal/common"
	"github.com/dmitrijs2005/ciphersafe/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVault_NeverSaved(t *testing.T) {
	db, m := setupDB(t)
	cfg := testConfig()
	accounts := newAccountService(t, db, m, cfg)
	vaults := services.NewVaultService(db, m, cfg)
	ctx := context.Background()

	user, _, err := accounts.Register(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	data, version, err := vaults.GetVault(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, int64(1), version)
}

func TestSaveVault_ThenGet(t *testing.T) {
	db, m := setupDB(t)
	cfg := testConfig()
	accounts := newAccountService(t, db, m, cfg)
	vaults := services.NewVaultService(db, m, cfg)
	ctx := context.Background()

	user, _, err := accounts.Register(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	version, err := vaults.SaveVault(ctx, user.ID, "blob-A", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	data, version, err := vaults.GetVault(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "blob-A", *data)
	assert.Equal(t, int64(2), version)
}

func TestSaveVault_StaleVersion(t *testing.T) {
	db, m := setupDB(t)
	cfg := testConfig()
	accounts := newAccountService(t, db, m, cfg)
	vaults := services.NewVaultService(db, m, cfg)
	ctx := context.Background()

	user, _, err := accounts.Register(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = vaults.SaveVault(ctx, user.ID, "blob-A", 1)
	require.NoError(t, err)
	_, err = vaults.SaveVault(ctx, user.ID, "blob-B", 2)
	require.NoError(t, err)

	_, err = vaults.SaveVault(ctx, user.ID, "blob-C", 2)
	require.ErrorIs(t, err, common.ErrVersionConflict)

	// the losing write must not have touched the stored state
	data, version, err := vaults.GetVault(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "blob-B", *data)
	assert.Equal(t, int64(3), version)
}

func TestSaveVault_InvalidVersion(t *testing.T) {
	db, m := setupDB(t)
	cfg := testConfig()
	vaults := services.NewVaultService(db, m, cfg)
	ctx := context.Background()

	_, err := vaults.SaveVault(ctx, "u-1", "blob", 0)
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = vaults.SaveVault(ctx, "u-1", "blob", -3)
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestSaveVault_EmptyPayload(t *testing.T) {
	db, m := setupDB(t)
	cfg := testConfig()
	accounts := newAccountService(t, db, m, cfg)
	vaults := services.NewVaultService(db, m, cfg)
	ctx := context.Background()

	user, _, err := accounts.Register(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = vaults.SaveVault(ctx, user.ID, "", 1)
	require.NoError(t, err)

	// stored empty string, not the "no vault yet" nil
	data, version, err := vaults.GetVault(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "", *data)
	assert.Equal(t, int64(2), version)
}
