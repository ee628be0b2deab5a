package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleEngineer, RoleTechnician, RoleStorekeeper, RoleViewer} {
		assert.True(t, r.IsValid(), r)
	}
	assert.False(t, Role("Admin").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestRole_Capabilities(t *testing.T) {
	tests := []struct {
		role             Role
		adminOrManager   bool
		manageUsers      bool
		manageActivities bool
		deleteActivities bool
	}{
		{RoleAdmin, true, true, true, true},
		{RoleManager, true, false, true, false},
		{RoleEngineer, false, false, false, false},
		{RoleTechnician, false, false, false, false},
		{RoleViewer, false, false, false, false},
		{Role("MANAGER"), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.adminOrManager, tt.role.IsAdminOrManager())
			assert.Equal(t, tt.manageUsers, tt.role.CanManageUsers())
			assert.Equal(t, tt.manageActivities, tt.role.CanManageActivities())
			assert.Equal(t, tt.deleteActivities, tt.role.CanDeleteActivities())
		})
	}
}

func TestActivity_ToSummaryOmitsSections(t *testing.T) {
	a := &Activity{Type: ActivityTypeCOW, Title: "COW 배치", SiteCode: "S-9"}

	summary := a.ToSummary()
	full := a.ToResponse()

	assert.Nil(t, summary.Assignment)
	assert.Nil(t, summary.Survey)
	assert.NotNil(t, full.Assignment)
	assert.NotNil(t, full.AssignActivityTasks)
	assert.NotNil(t, full.Dispatch)
	assert.Equal(t, "S-9", full.SiteCode)
}

func TestActivityTasks_Assignees(t *testing.T) {
	tasks := ActivityTasks{
		AssignSurveyTo:      RefIDs("s"),
		AssignDismantlingTo: RefIDs("d"),
		AssignStoreTo:       RefIDs("w"),
	}

	assert.Equal(t, "s", tasks.Assignees(TaskSurvey)[0].Normalize())
	assert.Equal(t, "d", tasks.Assignees(TaskDismantling)[0].Normalize())
	assert.Equal(t, "w", tasks.Assignees(TaskStore)[0].Normalize())
	assert.Nil(t, tasks.Assignees(TaskCategory("inventory")))
}
