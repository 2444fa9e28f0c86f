package guards

import (
	"errors"
	"time"

	"lms/features"
	"lms/models"
)

// Denial reasons and lookup failures surfaced by guards. ErrNotFound is a
// lookup error, not an authorization denial; callers map it to 404.
var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrRoleForbidden        = errors.New("role forbidden")
	ErrFeatureDisabled      = errors.New("feature disabled")
	ErrSubscriptionRequired = errors.New("subscription required")
	ErrNotOwner             = errors.New("not resource owner")
	ErrNotFound             = errors.New("resource not found")
)

// Principal is the verified identity a request carries.
type Principal struct {
	ID    uint
	Email string
	Role  string
}

// Context is the request context a chain is evaluated against. Principal is
// nil for anonymous requests. ResourceID identifies the resource named in the
// request for ownership checks.
type Context struct {
	Principal  *Principal
	ResourceID uint
	Now        time.Time
}

// SubscriptionStore looks up a user's current subscription.
type SubscriptionStore interface {
	FindActiveSubscription(userID uint) (*models.Subscription, error)
}

// OwnerStore resolves the owner of a resource by kind and id.
type OwnerStore interface {
	ResourceOwner(kind string, id uint) (uint, error)
}

// Guard is a predicate deciding whether a request may proceed.
type Guard interface {
	Name() string
	Check(c *Context) error
}

// Chain is an ordered guard list. Evaluation short-circuits: the first
// non-nil error stops the chain and is returned as the result.
type Chain []Guard

func (ch Chain) Check(c *Context) error {
	for _, g := range ch {
		if err := g.Check(c); err != nil {
			return err
		}
	}
	return nil
}

// Authenticated allows requests carrying a verified principal.
type Authenticated struct{}

func (Authenticated) Name() string { return "authenticated" }

func (Authenticated) Check(c *Context) error {
	if c.Principal == nil {
		return ErrUnauthenticated
	}
	return nil
}

// HasRole allows principals whose role is in the allowed set.
type HasRole struct {
	Allowed []string
}

func (HasRole) Name() string { return "has-role" }

func (g HasRole) Check(c *Context) error {
	if c.Principal == nil {
		return ErrUnauthenticated
	}
	for _, r := range g.Allowed {
		if c.Principal.Role == r {
			return nil
		}
	}
	return ErrRoleForbidden
}

// HasFeature allows principals whose role has the feature enabled in the
// registry.
type HasFeature struct {
	Registry *features.Registry
	Feature  string
}

func (HasFeature) Name() string { return "has-feature" }

func (g HasFeature) Check(c *Context) error {
	if c.Principal == nil {
		return ErrUnauthenticated
	}
	if !g.Registry.IsEnabled(c.Principal.Role, g.Feature) {
		return ErrFeatureDisabled
	}
	return nil
}

// HasActiveSubscription allows principals with an unexpired ACTIVE
// subscription at evaluation time. Admins pass without one.
type HasActiveSubscription struct {
	Store SubscriptionStore
}

func (HasActiveSubscription) Name() string { return "has-active-subscription" }

func (g HasActiveSubscription) Check(c *Context) error {
	if c.Principal == nil {
		return ErrUnauthenticated
	}
	if c.Principal.Role == models.RoleAdmin {
		return nil
	}
	sub, err := g.Store.FindActiveSubscription(c.Principal.ID)
	if err != nil {
		return err
	}
	if sub == nil || sub.Status != models.SubscriptionActive {
		return ErrSubscriptionRequired
	}
	if sub.ExpiresAt != nil && !sub.ExpiresAt.After(c.Now) {
		return ErrSubscriptionRequired
	}
	return nil
}

// IsResourceOwner allows the owner of the resource named in the request, or
// any admin. A missing resource surfaces ErrNotFound.
type IsResourceOwner struct {
	Store OwnerStore
	Kind  string
}

func (IsResourceOwner) Name() string { return "is-resource-owner" }

func (g IsResourceOwner) Check(c *Context) error {
	if c.Principal == nil {
		return ErrUnauthenticated
	}
	if c.Principal.Role == models.RoleAdmin {
		return nil
	}
	ownerID, err := g.Store.ResourceOwner(g.Kind, c.ResourceID)
	if err != nil {
		return err
	}
	if ownerID != c.Principal.ID {
		return ErrNotOwner
	}
	return nil
}
