// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

// Package permissions turns a role's raw permission document, in any of
// its three historical encodings, into a flat, security-filtered list of
// "module.action" strings.
//
// The same Normalize function is invoked by every producer of a
// permission set (login/register/refresh responses, the /auth/me
// endpoint, and the per-request auth middleware). Keeping a single
// implementation is what makes the forbidden-permission invariant hold
// at all call sites at once.
package permissions

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/pmdworks/pmd-backend/models"
)

// shape identifies which historical encoding a permission document uses.
type shape int

const (
	shapeUnknown shape = iota
	shapeList          // ["works.create", "works.read"]
	shapeGrouped       // {"works": ["create", "read"]}
	shapeLegacy        // {"works.create": true} or {"works": true}
	shapeNested        // {"works": {"create": true}}
)

// forbiddenModules maps a role name to the modules that role must never
// carry permissions for, regardless of what is stored in the database.
// Applied unconditionally at every normalization.
var forbiddenModules = map[string][]string{
	models.RoleAdministration: {"users", "roles", "audit"},
	models.RoleSupervisor:     {"users", "roles", "audit", "accounting"},
}

// Normalize flattens raw into "module.action" strings, substitutes the
// role-name default set when the result is empty, and strips entries
// denied to the role. raw may be nil or empty, in which case only the
// default table applies.
func Normalize(raw json.RawMessage, roleName string) []string {
	perms := flatten(raw)

	if len(perms) == 0 {
		perms = append(perms, DefaultsForRole(roleName)...)
	}

	return FilterForbidden(roleName, perms)
}

// flatten decodes the document, detects its shape, and dispatches to the
// matching converter. Undecodable or unrecognized documents yield an
// empty set rather than an error: the default table and the forbidden
// filter still apply downstream.
func flatten(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}

	switch detectShape(doc) {
	case shapeList:
		return fromList(doc.([]any))
	case shapeGrouped, shapeLegacy, shapeNested:
		return fromMap(doc.(map[string]any))
	default:
		return nil
	}
}

func detectShape(doc any) shape {
	switch v := doc.(type) {
	case []any:
		return shapeList
	case map[string]any:
		for _, value := range v {
			switch value.(type) {
			case []any:
				return shapeGrouped
			case bool:
				return shapeLegacy
			case map[string]any:
				return shapeNested
			}
		}
		return shapeLegacy
	default:
		return shapeUnknown
	}
}

func fromList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// fromMap handles the three object encodings. Mixed documents are
// tolerated: each entry is interpreted by its own value type.
func fromMap(doc map[string]any) []string {
	out := make([]string, 0, len(doc)*4)

	modules := make([]string, 0, len(doc))
	for module := range doc {
		modules = append(modules, module)
	}
	sort.Strings(modules)

	for _, module := range modules {
		switch value := doc[module].(type) {
		case []any:
			for _, action := range value {
				if s, ok := action.(string); ok && s != "" {
					out = append(out, module+"."+s)
				}
			}
		case bool:
			// Legacy flag form: the key is either already a
			// "module.action" pair or a bare module grant.
			if value {
				out = append(out, module)
			}
		case map[string]any:
			actions := make([]string, 0, len(value))
			for action := range value {
				actions = append(actions, action)
			}
			sort.Strings(actions)
			for _, action := range actions {
				if enabled, ok := value[action].(bool); ok && enabled {
					out = append(out, module+"."+action)
				}
			}
		}
	}

	return out
}

// FilterForbidden removes every permission the named role must not
// carry. Both "module.action" entries and bare legacy "module" grants
// are stripped. Roles without a denylist pass through unchanged.
func FilterForbidden(roleName string, perms []string) []string {
	denied, ok := forbiddenModules[roleName]
	if !ok {
		return perms
	}

	out := make([]string, 0, len(perms))
	for _, perm := range perms {
		if isDenied(perm, denied) {
			continue
		}
		out = append(out, perm)
	}
	return out
}

func isDenied(perm string, denied []string) bool {
	for _, module := range denied {
		if perm == module || strings.HasPrefix(perm, module+".") {
			return true
		}
	}
	return false
}
