// Package access decides who may read a document.
//
// One precedence table drives every read decision, listing scope and delegation check:
//
//	Role      | owner | public | administrative | grant
//	----------+-------+--------+----------------+------
//	Admin     |  yes  |  yes   | yes (all)      |  yes
//	HoD       |  yes  |  yes   | yes (dept)     |  yes
//	Lecturer  |  yes  |  yes   |                |  yes
//	Student   |  yes  |  yes   |                |  yes
//	(unknown) |  yes  |        |                |  yes
//
// Rules are tried left to right and the first match wins.
package access

import "docvault/internal/model"

// Rule names the rule that produced a decision.
type Rule string

const (
	RuleNone           Rule = "none"
	RuleOwner          Rule = "owner"
	RulePublic         Rule = "public"
	RuleAdministrative Rule = "administrative"
	RuleGrant          Rule = "grant"
)

// Subject is the requester.
type Subject struct {
	UserID       string
	Role         string
	DepartmentID string
}

// SubjectFromUser builds a Subject from a directory entry.
func SubjectFromUser(u model.User) Subject {
	return Subject{UserID: u.ID, Role: u.Role, DepartmentID: u.DepartmentID}
}

// Resource is the document being accessed. OwnerDepartmentID is the owner's department
// as known to the user directory; it may be empty.
type Resource struct {
	DocumentID        string
	OwnerID           string
	OwnerDepartmentID string
	Visibility        model.Visibility
}

// GrantSet holds the grantee ids that have an explicit grant on the resource.
type GrantSet map[string]struct{}

// NewGrantSet builds a GrantSet from grantee ids.
func NewGrantSet(granteeIDs ...string) GrantSet {
	gs := make(GrantSet, len(granteeIDs))
	for _, id := range granteeIDs {
		gs[id] = struct{}{}
	}
	return gs
}

func (g GrantSet) Has(userID string) bool {
	_, ok := g[userID]
	return ok
}

type Decision struct {
	Allowed bool
	Rule    Rule
}

type rolePolicy struct {
	public         bool
	administrative administrativeReach
}

type administrativeReach int

const (
	reachNone administrativeReach = iota
	reachDepartment
	reachAll
)

var table = map[string]rolePolicy{
	model.RoleAdmin:    {public: true, administrative: reachAll},
	model.RoleHoD:      {public: true, administrative: reachDepartment},
	model.RoleLecturer: {public: true},
	model.RoleStudent:  {public: true},
}

func policyFor(role string) rolePolicy {
	return table[role]
}

// Decide is pure and deterministic.
func Decide(s Subject, r Resource, grants GrantSet) Decision {
	p := policyFor(s.Role)

	if s.UserID != "" && s.UserID == r.OwnerID {
		return Decision{Allowed: true, Rule: RuleOwner}
	}
	if p.public && r.Visibility == model.VisibilityPublic {
		return Decision{Allowed: true, Rule: RulePublic}
	}
	switch p.administrative {
	case reachAll:
		return Decision{Allowed: true, Rule: RuleAdministrative}
	case reachDepartment:
		if s.DepartmentID != "" && s.DepartmentID == r.OwnerDepartmentID {
			return Decision{Allowed: true, Rule: RuleAdministrative}
		}
	}
	if s.UserID != "" && grants.Has(s.UserID) {
		return Decision{Allowed: true, Rule: RuleGrant}
	}
	return Decision{Allowed: false, Rule: RuleNone}
}

// Scope is the set of documents a subject may list, derived from the same table as Decide.
// A document is in scope when any of the enabled conditions holds.
type Scope struct {
	UserID string
	// All is set for subjects with unrestricted administrative reach.
	All bool
	// Public includes documents with public visibility.
	Public bool
	// Department, when non-empty, includes documents whose owner belongs to it.
	Department string
	// Grants includes documents explicitly shared with UserID.
	Grants bool
}

func ScopeFor(s Subject) Scope {
	p := policyFor(s.Role)
	sc := Scope{UserID: s.UserID, Public: p.public, Grants: true}
	switch p.administrative {
	case reachAll:
		sc.All = true
	case reachDepartment:
		sc.Department = s.DepartmentID
	}
	return sc
}

// CanDelegate reports whether the role may share documents it does not own.
func CanDelegate(role string) bool {
	return role == model.RoleHoD || role == model.RoleAdmin
}

// CanAdminister reports whether the role may mutate or delete other users' content.
func CanAdminister(role string) bool {
	return role == model.RoleAdmin
}
