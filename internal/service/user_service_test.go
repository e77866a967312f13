package service

import (
	"BrainScript/internal/api/config"
	"BrainScript/internal/api/dto"
	"BrainScript/internal/pkg/consts"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(f *fixture) UserService {
	return NewUserService(f.userRepo, config.AuthConfig{WebhookSecret: "whsec"})
}

func TestVerifyWebhookSecret(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)

	assert.NoError(t, svc.VerifyWebhookSecret("whsec"))
	assert.ErrorIs(t, svc.VerifyWebhookSecret("wrong"), ErrWebhookSecretMismatch)
	assert.ErrorIs(t, svc.VerifyWebhookSecret(""), ErrWebhookSecretMismatch)

	unset := NewUserService(f.userRepo, config.AuthConfig{})
	assert.ErrorIs(t, unset.VerifyWebhookSecret(""), ErrWebhookSecretMismatch)
}

func TestSyncFromProviderKeepsRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newUserService(f)

	evt := &dto.IdentityWebhookDTO{
		Type: "user.created",
		Data: dto.IdentityWebhookUser{Email: "Ada@Example.com"},
	}
	require.NoError(t, svc.SyncFromProvider(ctx, evt))

	user, err := f.userRepo.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "ada", user.Name)
	assert.Equal(t, consts.RoleUser, user.Role)

	require.NoError(t, f.userRepo.UpdateRole(ctx, user.ID, consts.RoleAdmin))

	evt.Type = "user.updated"
	evt.Data.FirstName = "Ada"
	evt.Data.LastName = "Lovelace"
	require.NoError(t, svc.SyncFromProvider(ctx, evt))

	user, err = f.userRepo.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, consts.RoleAdmin, user.Role)

	count, err := f.userRepo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.ErrorIs(t, svc.SyncFromProvider(ctx, &dto.IdentityWebhookDTO{Type: "user.deleted"}), ErrParamInvalid)
}

func TestUpdateThemeAndProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newUserService(f)
	user := f.user(t, "ada@example.com", consts.RoleUser)

	assert.ErrorIs(t, svc.UpdateTheme(ctx, user.ID, "neon"), ErrInvalidTheme)
	require.NoError(t, svc.UpdateTheme(ctx, user.ID, consts.ThemeDark))

	blank := "  "
	_, err := svc.UpdateProfile(ctx, user.ID, &dto.UpdateProfileDTO{Name: &blank})
	assert.ErrorIs(t, err, ErrParamInvalid)

	org := " Analytical Engines "
	me, err := svc.UpdateProfile(ctx, user.ID, &dto.UpdateProfileDTO{Organization: &org})
	require.NoError(t, err)
	assert.Equal(t, "Analytical Engines", me.Organization)
	assert.Equal(t, consts.ThemeDark, me.Theme)

	suggestions, err := svc.GetSuggestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Analytical Engines"}, suggestions.Organizations)
	assert.Empty(t, suggestions.Passions)
}

func TestLogoutRevokesSignature(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newUserService(f)

	require.NoError(t, svc.Logout(ctx, "head.body.sig123", time.Minute))
	assert.True(t, f.redis.Exists(consts.TokenRevokedKey+"sig123"))
	assert.Equal(t, time.Minute, f.redis.TTL(consts.TokenRevokedKey+"sig123"))

	require.NoError(t, svc.Logout(ctx, "head.body.expired", 0))
	assert.False(t, f.redis.Exists(consts.TokenRevokedKey+"expired"))

	assert.ErrorIs(t, svc.Logout(ctx, "garbage", time.Minute), ErrParamInvalid)
}
