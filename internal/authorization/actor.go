package authorization

import (
	"strings"
)

// Actor is the chat user behind a request, as reported by the gateway.
type Actor struct {
	ID      string
	Name    string
	RoleIDs []string
	// Admin is set when the gateway saw server administrator permissions.
	Admin bool
}

func (a Actor) HasRole(roleID string) bool {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return false
	}
	for _, r := range a.RoleIDs {
		if strings.TrimSpace(r) == roleID {
			return true
		}
	}
	return false
}

// ParseRoleIDs splits a comma separated role id list.
func ParseRoleIDs(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GuildRoles names the guild-level chat roles that carry permissions.
type GuildRoles struct {
	ChefRoleID    string
	OfficerRoleID string
}

// CompanyRoles names the company-level chat roles and the owning user.
type CompanyRoles struct {
	OwnerID        string
	CEORoleID      string
	ManagerRoleID  string
	EmployeeRoleID string
}

// GuildSubjects maps the actor's chat roles to policy subjects for a guild.
func GuildSubjects(actor Actor, roles GuildRoles) []string {
	var subjects []string
	if actor.Admin {
		subjects = append(subjects, RoleGuildAdmin)
	}
	if actor.HasRole(roles.ChefRoleID) {
		subjects = append(subjects, RoleGuildChef)
	}
	if actor.HasRole(roles.OfficerRoleID) {
		subjects = append(subjects, RoleGuildOfficer)
	}
	return subjects
}

// CompanySubjects maps the actor's chat roles to policy subjects for one
// company.
func CompanySubjects(actor Actor, roles CompanyRoles) []string {
	var subjects []string
	if id := strings.TrimSpace(roles.OwnerID); id != "" && id == strings.TrimSpace(actor.ID) {
		subjects = append(subjects, RoleCompanyOwner)
	}
	if actor.HasRole(roles.CEORoleID) {
		subjects = append(subjects, RoleCompanyCEO)
	}
	if actor.HasRole(roles.ManagerRoleID) {
		subjects = append(subjects, RoleCompanyManager)
	}
	if actor.HasRole(roles.EmployeeRoleID) {
		subjects = append(subjects, RoleCompanyEmployee)
	}
	return subjects
}
