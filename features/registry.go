package features

import (
	"sync"

	"lms/models"

	"gorm.io/gorm"
)

// Registry holds the role -> enabled-feature-set table. Reads go to the
// in-memory table; writes replace a role's set atomically and persist the new
// rows in the same call (last-writer-wins, no merge).
type Registry struct {
	mu     sync.RWMutex
	byRole map[string]map[string]struct{}
	db     *gorm.DB
}

// defaultRoleFeatures seeds the table on first boot.
func defaultRoleFeatures() map[string][]string {
	return map[string][]string{
		models.RoleAdmin: {models.FeatureAll},
		models.RoleInstructor: {
			models.FeatureViewCourses,
			models.FeatureEnrollCourses,
			models.FeatureCreateCourses,
			models.FeatureManageCourses,
		},
		models.RoleStudent: {
			models.FeatureViewCourses,
			models.FeatureEnrollCourses,
		},
	}
}

// LoadRegistry builds the registry from persisted feature-flag rows, seeding
// role defaults when the table is empty.
func LoadRegistry(db *gorm.DB) (*Registry, error) {
	r := &Registry{byRole: make(map[string]map[string]struct{}), db: db}

	var flags []models.FeatureFlag
	if err := db.Find(&flags).Error; err != nil {
		return nil, err
	}

	if len(flags) == 0 {
		for role, feats := range defaultRoleFeatures() {
			if err := r.SetRoleFeatures(role, feats); err != nil {
				return nil, err
			}
		}
		return r, nil
	}

	for _, f := range flags {
		set, ok := r.byRole[f.Role]
		if !ok {
			set = make(map[string]struct{})
			r.byRole[f.Role] = set
		}
		set[f.Feature] = struct{}{}
	}
	return r, nil
}

// NewRegistry returns an empty, non-persistent registry. Used in tests.
func NewRegistry() *Registry {
	return &Registry{byRole: make(map[string]map[string]struct{})}
}

// IsEnabled reports whether a feature is enabled for a role. A role holding
// the '*' feature has every feature enabled.
func (r *Registry) IsEnabled(role, feature string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.byRole[role]
	if !ok {
		return false
	}
	if _, ok := set[models.FeatureAll]; ok {
		return true
	}
	_, ok = set[feature]
	return ok
}

// RoleFeatures returns a snapshot of the role's enabled features.
func (r *Registry) RoleFeatures(role string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	feats := make([]string, 0, len(r.byRole[role]))
	for f := range r.byRole[role] {
		feats = append(feats, f)
	}
	return feats
}

// SetRoleFeatures replaces the role's feature set. The persisted rows are
// replaced in one transaction before the in-memory set is swapped, so a
// failed write leaves the old set visible.
func (r *Registry) SetRoleFeatures(role string, feats []string) error {
	set := make(map[string]struct{}, len(feats))
	for _, f := range feats {
		set[f] = struct{}{}
	}

	if r.db != nil {
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Unscoped().Where("role = ?", role).Delete(&models.FeatureFlag{}).Error; err != nil {
				return err
			}
			for f := range set {
				if err := tx.Create(&models.FeatureFlag{Role: role, Feature: f}).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.byRole[role] = set
	r.mu.Unlock()
	return nil
}
