package universe

import (
	"fmt"
	"sort"
)

const (
	RoleGlobalPermissionsAdmin = "GlobalPermissionsAdmin"

	PermissionGiteaAdmin  = "gitea/admin"
	PermissionRangerAdmin = "ranger/admin"
)

// rolePermissions holds the permissions granted by each known role type.
var rolePermissions = map[string][]string{
	RoleGlobalPermissionsAdmin: {PermissionGiteaAdmin, PermissionRangerAdmin},
}

// Role is a named set of permissions.
type Role struct {
	Type string `mapstructure:"type" json:"type" mandatory:"yes" errorTxt:"role type"`
}

// Permissions returns the permissions granted by r.
// An unknown role type is an error.
func (r Role) Permissions() ([]string, error) {
	p, ok := rolePermissions[r.Type]
	if !ok {
		return nil, fmt.Errorf("unknown role type %q", r.Type)
	}
	retval := make([]string, len(p))
	copy(retval, p)
	return retval, nil
}

// User is a person known to the universe.
type User struct {
	FirstName string `mapstructure:"firstName" json:"firstName" mandatory:"yes" errorTxt:"user firstName"`
	LastName  string `mapstructure:"lastName" json:"lastName" mandatory:"yes" errorTxt:"user lastName"`
	Email     string `mapstructure:"email" json:"email" mandatory:"yes" errorTxt:"user email"`
	UnixName  string `mapstructure:"unixName" json:"unixName" mandatory:"yes" errorTxt:"user unixName"`
	Roles     []Role `mapstructure:"roles" json:"roles,omitempty"`
}

// UserGroup collects users by unix name.
type UserGroup struct {
	Name   string            `mapstructure:"name" json:"name" mandatory:"yes" errorTxt:"group name"`
	Users  []string          `mapstructure:"users" json:"users"`
	Labels map[string]string `mapstructure:"labels" json:"labels,omitempty"`
}

// RoleBinding grants a role to a user.
type RoleBinding struct {
	Name     string `mapstructure:"name" json:"name" mandatory:"yes" errorTxt:"role binding name"`
	UserName string `mapstructure:"userName" json:"userName" mandatory:"yes" errorTxt:"role binding userName"`
	Role     Role   `mapstructure:"role" json:"role"`
}

// UserPermissions returns unix name -> sorted permissions, gathered from each user's
// own roles and from the role bindings.
// A binding that names an unknown user is an error.
func (u *Universe) UserPermissions() (map[string][]string, error) {
	sets := make(map[string]map[string]struct{}, len(u.Users))
	add := func(unixName string, r Role) error {
		perms, err := r.Permissions()
		if err != nil {
			return fmt.Errorf("user %q: %w", unixName, err)
		}
		for _, p := range perms {
			sets[unixName][p] = struct{}{}
		}
		return nil
	}
	for _, usr := range u.Users {
		sets[usr.UnixName] = make(map[string]struct{})
		for _, r := range usr.Roles {
			if err := add(usr.UnixName, r); err != nil {
				return nil, err
			}
		}
	}
	for _, rb := range u.RoleBindings {
		if _, ok := sets[rb.UserName]; !ok {
			return nil, fmt.Errorf("role binding %q refers to unknown user %q", rb.Name, rb.UserName)
		}
		if err := add(rb.UserName, rb.Role); err != nil {
			return nil, err
		}
	}
	retval := make(map[string][]string, len(sets))
	for name, set := range sets {
		perms := make([]string, 0, len(set))
		for p := range set {
			perms = append(perms, p)
		}
		sort.Strings(perms)
		retval[name] = perms
	}
	return retval, nil
}
