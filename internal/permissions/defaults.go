// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package permissions

import "github.com/pmdworks/pmd-backend/models"

// crudActions is the full action set granted by the default tables.
var crudActions = []string{"create", "read", "update", "delete"}

// roleDefaults is the fallback permission table for roles seeded without
// an explicit permission document. The sets are written pre-filter; the
// forbidden-module pass still runs on top of them.
var roleDefaults = map[string][]string{
	models.RoleAdministration: grant(crudActions,
		"works", "expenses", "suppliers", "contracts", "cashboxes",
		"accounting", "documents", "organizations"),
	models.RoleDirection: grant(crudActions,
		"works", "expenses", "suppliers", "contracts", "cashboxes",
		"accounting", "documents", "organizations", "users", "roles", "audit"),
	models.RoleSupervisor: grant([]string{"create", "read", "update"},
		"works", "expenses", "suppliers", "contracts", "documents"),
	models.RoleOperator: grant([]string{"create", "read"},
		"works", "expenses", "documents"),
}

// DefaultsForRole returns a copy of the fallback permission list for the
// given role name, or nil when the role has no default table entry.
func DefaultsForRole(roleName string) []string {
	defaults, ok := roleDefaults[roleName]
	if !ok {
		return nil
	}
	out := make([]string, len(defaults))
	copy(out, defaults)
	return out
}

// CanonicalAdministrationSet is the permission document the bootstrap
// reconciler enforces for the administration role: the default grant,
// post-filter, in grouped map-of-arrays form.
func CanonicalAdministrationSet() map[string][]string {
	doc := make(map[string][]string)
	for _, perm := range FilterForbidden(models.RoleAdministration, DefaultsForRole(models.RoleAdministration)) {
		module, action, found := cutDot(perm)
		if !found {
			continue
		}
		doc[module] = append(doc[module], action)
	}
	return doc
}

// MergeCanonicalAdministration unions the canonical administration
// grant into perms, reporting whether the union added anything. The
// input is filtered and deduplicated; the result is in grouped
// map-of-arrays form, ready to be stored as a permission document.
func MergeCanonicalAdministration(perms []string) (map[string][]string, bool) {
	have := make(map[string]struct{}, len(perms))
	doc := make(map[string][]string)
	for _, perm := range FilterForbidden(models.RoleAdministration, perms) {
		if _, seen := have[perm]; seen {
			continue
		}
		have[perm] = struct{}{}
		if module, action, ok := cutDot(perm); ok {
			doc[module] = append(doc[module], action)
		}
	}

	changed := false
	for module, actions := range CanonicalAdministrationSet() {
		for _, action := range actions {
			perm := module + "." + action
			if _, seen := have[perm]; seen {
				continue
			}
			have[perm] = struct{}{}
			doc[module] = append(doc[module], action)
			changed = true
		}
	}
	return doc, changed
}

func grant(actions []string, modules ...string) []string {
	out := make([]string, 0, len(modules)*len(actions))
	for _, module := range modules {
		for _, action := range actions {
			out = append(out, module+"."+action)
		}
	}
	return out
}

func cutDot(perm string) (module, action string, found bool) {
	for i := 0; i < len(perm); i++ {
		if perm[i] == '.' {
			return perm[:i], perm[i+1:], true
		}
	}
	return perm, "", false
}
