package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docvault/internal/model"
)

func TestDecide(t *testing.T) {
	private := Resource{DocumentID: "d1", OwnerID: "owner", OwnerDepartmentID: "cs", Visibility: model.VisibilityPrivate}
	public := private
	public.Visibility = model.VisibilityPublic

	tests := []struct {
		name     string
		subject  Subject
		resource Resource
		grants   GrantSet
		want     Decision
	}{
		{name: "owner", subject: Subject{UserID: "owner", Role: model.RoleStudent}, resource: private, want: Decision{true, RuleOwner}},
		{name: "owner with unknown role", subject: Subject{UserID: "owner", Role: "Guest"}, resource: private, want: Decision{true, RuleOwner}},
		{name: "owner wins over public", subject: Subject{UserID: "owner", Role: model.RoleAdmin}, resource: public, want: Decision{true, RuleOwner}},
		{name: "student public", subject: Subject{UserID: "s1", Role: model.RoleStudent}, resource: public, want: Decision{true, RulePublic}},
		{name: "lecturer public", subject: Subject{UserID: "l1", Role: model.RoleLecturer}, resource: public, want: Decision{true, RulePublic}},
		{name: "unknown role public denied", subject: Subject{UserID: "g1", Role: "Guest"}, resource: public, want: Decision{false, RuleNone}},
		{name: "public wins over administrative", subject: Subject{UserID: "a1", Role: model.RoleAdmin}, resource: public, want: Decision{true, RulePublic}},
		{name: "admin private", subject: Subject{UserID: "a1", Role: model.RoleAdmin}, resource: private, want: Decision{true, RuleAdministrative}},
		{name: "hod same department", subject: Subject{UserID: "h1", Role: model.RoleHoD, DepartmentID: "cs"}, resource: private, want: Decision{true, RuleAdministrative}},
		{name: "hod other department", subject: Subject{UserID: "h1", Role: model.RoleHoD, DepartmentID: "math"}, resource: private, want: Decision{false, RuleNone}},
		{
			name:     "hod without department",
			subject:  Subject{UserID: "h1", Role: model.RoleHoD},
			resource: Resource{OwnerID: "owner", Visibility: model.VisibilityPrivate},
			want:     Decision{false, RuleNone},
		},
		{name: "hod other department with grant", subject: Subject{UserID: "h1", Role: model.RoleHoD, DepartmentID: "math"}, resource: private, grants: NewGrantSet("h1"), want: Decision{true, RuleGrant}},
		{name: "lecturer private denied", subject: Subject{UserID: "l1", Role: model.RoleLecturer, DepartmentID: "cs"}, resource: private, want: Decision{false, RuleNone}},
		{name: "student grant", subject: Subject{UserID: "s1", Role: model.RoleStudent}, resource: private, grants: NewGrantSet("s1"), want: Decision{true, RuleGrant}},
		{name: "unknown role grant", subject: Subject{UserID: "g1", Role: "Guest"}, resource: private, grants: NewGrantSet("g1"), want: Decision{true, RuleGrant}},
		{name: "grant for someone else", subject: Subject{UserID: "s1", Role: model.RoleStudent}, resource: private, grants: NewGrantSet("s2"), want: Decision{false, RuleNone}},
		{name: "shared visibility needs grant", subject: Subject{UserID: "s1", Role: model.RoleStudent}, resource: Resource{OwnerID: "owner", Visibility: model.VisibilityShared}, want: Decision{false, RuleNone}},
		{name: "empty subject never matches owner", subject: Subject{}, resource: Resource{Visibility: model.VisibilityPrivate}, grants: NewGrantSet(""), want: Decision{false, RuleNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.subject, tt.resource, tt.grants)
			assert.Equal(t, tt.want, got)
			// deterministic
			assert.Equal(t, got, Decide(tt.subject, tt.resource, tt.grants))
		})
	}
}

func TestScopeFor(t *testing.T) {
	tests := []struct {
		name    string
		subject Subject
		want    Scope
	}{
		{name: "admin", subject: Subject{UserID: "a1", Role: model.RoleAdmin}, want: Scope{UserID: "a1", All: true, Public: true, Grants: true}},
		{name: "hod", subject: Subject{UserID: "h1", Role: model.RoleHoD, DepartmentID: "cs"}, want: Scope{UserID: "h1", Public: true, Department: "cs", Grants: true}},
		{name: "lecturer", subject: Subject{UserID: "l1", Role: model.RoleLecturer, DepartmentID: "cs"}, want: Scope{UserID: "l1", Public: true, Grants: true}},
		{name: "student", subject: Subject{UserID: "s1", Role: model.RoleStudent}, want: Scope{UserID: "s1", Public: true, Grants: true}},
		{name: "unknown", subject: Subject{UserID: "g1", Role: "Guest"}, want: Scope{UserID: "g1", Grants: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScopeFor(tt.subject))
		})
	}
}

func TestRoleChecks(t *testing.T) {
	assert.True(t, CanDelegate(model.RoleAdmin))
	assert.True(t, CanDelegate(model.RoleHoD))
	assert.False(t, CanDelegate(model.RoleLecturer))
	assert.False(t, CanDelegate(model.RoleStudent))

	assert.True(t, CanAdminister(model.RoleAdmin))
	assert.False(t, CanAdminister(model.RoleHoD))
}

func TestSubjectFromUser(t *testing.T) {
	u := model.User{ID: "u1", Name: "Ana", Role: model.RoleHoD, DepartmentID: "cs"}
	assert.Equal(t, Subject{UserID: "u1", Role: model.RoleHoD, DepartmentID: "cs"}, SubjectFromUser(u))
}
