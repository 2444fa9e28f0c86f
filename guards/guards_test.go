package guards

import (
	"errors"
	"testing"
	"time"

	"lms/features"
	"lms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGuard struct {
	name string
	err  error
	log  *[]string
}

func (g recordingGuard) Name() string { return g.name }

func (g recordingGuard) Check(c *Context) error {
	*g.log = append(*g.log, g.name)
	return g.err
}

type fakeSubStore struct {
	sub *models.Subscription
	err error
}

func (f fakeSubStore) FindActiveSubscription(userID uint) (*models.Subscription, error) {
	return f.sub, f.err
}

type fakeOwnerStore struct {
	owner uint
	err   error
}

func (f fakeOwnerStore) ResourceOwner(kind string, id uint) (uint, error) {
	return f.owner, f.err
}

func studentCtx() *Context {
	return &Context{
		Principal: &Principal{ID: 7, Email: "s@test.com", Role: models.RoleStudent},
		Now:       time.Now(),
	}
}

func TestChainEvaluatesInOrderAndShortCircuits(t *testing.T) {
	var log []string
	deny := errors.New("denied")

	chain := Chain{
		recordingGuard{name: "first", log: &log},
		recordingGuard{name: "second", err: deny, log: &log},
		recordingGuard{name: "third", log: &log},
	}

	err := chain.Check(studentCtx())
	require.ErrorIs(t, err, deny)
	assert.Equal(t, []string{"first", "second"}, log, "guards after the first denial must not run")
}

func TestChainAllowsWhenEveryGuardPasses(t *testing.T) {
	var log []string
	chain := Chain{
		recordingGuard{name: "a", log: &log},
		recordingGuard{name: "b", log: &log},
	}
	require.NoError(t, chain.Check(studentCtx()))
	assert.Equal(t, []string{"a", "b"}, log)
}

func TestEmptyChainAllows(t *testing.T) {
	require.NoError(t, Chain{}.Check(&Context{}))
}

func TestAuthenticated(t *testing.T) {
	assert.ErrorIs(t, Authenticated{}.Check(&Context{}), ErrUnauthenticated)
	assert.NoError(t, Authenticated{}.Check(studentCtx()))
}

func TestHasRole(t *testing.T) {
	g := HasRole{Allowed: []string{models.RoleInstructor, models.RoleAdmin}}

	assert.ErrorIs(t, g.Check(&Context{}), ErrUnauthenticated)
	assert.ErrorIs(t, g.Check(studentCtx()), ErrRoleForbidden)

	ctx := studentCtx()
	ctx.Principal.Role = models.RoleInstructor
	assert.NoError(t, g.Check(ctx))
}

func TestHasFeature(t *testing.T) {
	registry := features.NewRegistry()
	require.NoError(t, registry.SetRoleFeatures(models.RoleStudent, []string{models.FeatureViewCourses}))
	require.NoError(t, registry.SetRoleFeatures(models.RoleAdmin, []string{models.FeatureAll}))

	view := HasFeature{Registry: registry, Feature: models.FeatureViewCourses}
	manage := HasFeature{Registry: registry, Feature: models.FeatureManageCourses}

	assert.ErrorIs(t, view.Check(&Context{}), ErrUnauthenticated)
	assert.NoError(t, view.Check(studentCtx()))
	assert.ErrorIs(t, manage.Check(studentCtx()), ErrFeatureDisabled)

	// '*' grants everything, including features never named explicitly.
	admin := studentCtx()
	admin.Principal.Role = models.RoleAdmin
	assert.NoError(t, manage.Check(admin))
}

func TestHasActiveSubscription(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name    string
		sub     *models.Subscription
		wantErr error
	}{
		{name: "no subscription", sub: nil, wantErr: ErrSubscriptionRequired},
		{
			name:    "cancelled",
			sub:     &models.Subscription{Status: models.SubscriptionCancelled, ExpiresAt: &future},
			wantErr: ErrSubscriptionRequired,
		},
		{
			name:    "active but expired",
			sub:     &models.Subscription{Status: models.SubscriptionActive, ExpiresAt: &past},
			wantErr: ErrSubscriptionRequired,
		},
		{
			name: "active and unexpired",
			sub:  &models.Subscription{Status: models.SubscriptionActive, ExpiresAt: &future},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := HasActiveSubscription{Store: fakeSubStore{sub: tt.sub}}
			ctx := studentCtx()
			ctx.Now = now
			err := g.Check(ctx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHasActiveSubscriptionAdminBypass(t *testing.T) {
	g := HasActiveSubscription{Store: fakeSubStore{sub: nil}}
	ctx := studentCtx()
	ctx.Principal.Role = models.RoleAdmin
	assert.NoError(t, g.Check(ctx))
}

func TestIsResourceOwner(t *testing.T) {
	ctx := studentCtx()
	ctx.ResourceID = 42

	owned := IsResourceOwner{Store: fakeOwnerStore{owner: ctx.Principal.ID}, Kind: "course"}
	assert.NoError(t, owned.Check(ctx))

	foreign := IsResourceOwner{Store: fakeOwnerStore{owner: 99}, Kind: "course"}
	assert.ErrorIs(t, foreign.Check(ctx), ErrNotOwner)

	// A missing resource is a lookup failure, not a denial.
	missing := IsResourceOwner{Store: fakeOwnerStore{err: ErrNotFound}, Kind: "course"}
	assert.ErrorIs(t, missing.Check(ctx), ErrNotFound)
}

func TestIsResourceOwnerAdminBypass(t *testing.T) {
	ctx := studentCtx()
	ctx.Principal.Role = models.RoleAdmin
	ctx.ResourceID = 42

	g := IsResourceOwner{Store: fakeOwnerStore{owner: 99}, Kind: "course"}
	assert.NoError(t, g.Check(ctx))
}
