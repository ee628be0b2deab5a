package permission

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"fieldops-service/internal/domain"
)

// ============================================================
// 테스트 헬퍼
// ============================================================

func newTestUser(role domain.Role) *domain.User {
	return &domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Role:      role,
	}
}

func newTestActivity() *domain.Activity {
	return &domain.Activity{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Type:      domain.ActivityTypeDismantling,
		Title:     "BTS 철거",
		SiteCode:  "SITE-001",
	}
}

// decodeSection은 레거시 JSON 문서를 섹션 타입으로 디코딩합니다.
func decodeSection[T any](t *testing.T, raw string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

// ============================================================
// 시나리오 테스트
// ============================================================

func TestResolve_MainAssigneeSeesEveryTab(t *testing.T) {
	// Given: 메인 담당자로만 배정된 technician
	user := newTestUser(domain.RoleTechnician)
	activity := newTestActivity()
	activity.Assignment = datatypes.NewJSONType(domain.Assignment{
		AssignedTo: domain.RefIDs(user.ID.String()),
	})

	// When
	set := Resolve(user, activity)

	// Then: 메인 담당자는 네 탭 모두 허용
	assert.True(t, set.CanViewOverview)
	assert.True(t, set.CanViewSurvey)
	assert.True(t, set.CanViewDismantling)
	assert.True(t, set.CanViewDispatch)
	assert.Equal(t, TabOrder, set.AllowedTabs)
}

func TestResolve_SurveyTaskAssignee(t *testing.T) {
	// Given: survey 작업에만 배정된 technician
	user := newTestUser(domain.RoleTechnician)
	activity := newTestActivity()
	activity.Tasks = datatypes.NewJSONType(domain.ActivityTasks{
		AssignSurveyTo: domain.RefIDs(user.ID.String()),
	})

	// When
	set := Resolve(user, activity)

	// Then
	assert.False(t, set.CanViewOverview)
	assert.True(t, set.CanViewSurvey)
	assert.False(t, set.CanViewDismantling)
	assert.False(t, set.CanViewDispatch)
	assert.Equal(t, []Tab{TabSurvey}, set.AllowedTabs)
}

func TestResolve_AdminWithoutAssignmentData(t *testing.T) {
	// Given: 배정 데이터가 전혀 없는 활동
	user := newTestUser(domain.RoleAdmin)
	activity := newTestActivity()

	// When
	set := Resolve(user, activity)

	// Then
	assert.True(t, set.CanViewOverview)
	assert.True(t, set.CanViewSurvey)
	assert.True(t, set.CanViewDismantling)
	assert.True(t, set.CanViewDispatch)
	assert.Equal(t, []Tab{TabOverview, TabSurvey, TabDismantling, TabDispatch}, set.AllowedTabs)
	assert.Equal(t, "full", set.Outcome())
}

func TestResolve_EmbeddedTeamMember(t *testing.T) {
	// Given: teamMembers에 {"_id": ...} 객체로 들어간 engineer
	user := newTestUser(domain.RoleEngineer)
	activity := newTestActivity()
	activity.Dismantling = datatypes.NewJSONType(decodeSection[domain.DismantlingDetails](t,
		`{"teamMembers":[{"_id":"`+user.ID.String()+`","name":"Kim"}]}`))

	// When
	set := Resolve(user, activity)

	// Then
	assert.False(t, set.CanViewOverview)
	assert.False(t, set.CanViewSurvey)
	assert.True(t, set.CanViewDismantling)
	assert.False(t, set.CanViewDispatch)
	assert.Equal(t, []Tab{TabDismantling}, set.AllowedTabs)
	assert.Equal(t, "partial", set.Outcome())
}

func TestResolve_StoreTaskAssignee(t *testing.T) {
	user := newTestUser(domain.RoleStorekeeper)
	activity := newTestActivity()
	activity.Tasks = datatypes.NewJSONType(domain.ActivityTasks{
		AssignStoreTo: domain.RefIDs(uuid.NewString(), user.ID.String()),
	})

	set := Resolve(user, activity)

	assert.Equal(t, []Tab{TabDispatch}, set.AllowedTabs)
	assert.True(t, set.CanViewDispatch)
	assert.False(t, set.CanViewOverview)
}

func TestResolve_ManagerRoleIsExactMatch(t *testing.T) {
	tests := []struct {
		name     string
		role     domain.Role
		overview bool
	}{
		{"admin", domain.RoleAdmin, true},
		{"manager", domain.RoleManager, true},
		{"대문자 Admin은 일반 역할", domain.Role("Admin"), false},
		{"project_manager는 일반 역할", domain.Role("project_manager"), false},
		{"빈 역할", domain.Role(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := Resolve(newTestUser(tt.role), newTestActivity())
			assert.Equal(t, tt.overview, set.CanViewOverview)
		})
	}
}

// ============================================================
// 설문 담당자 (survey.conductedBy) 판정
// ============================================================

func TestResolve_SurveyOwnerShapes(t *testing.T) {
	user := newTestUser(domain.RoleTechnician)
	uid := user.ID.String()

	tests := []struct {
		name   string
		survey string
		want   bool
	}{
		{"bare id", `{"conductedBy":"` + uid + `"}`, true},
		{"_id 객체", `{"conductedBy":{"_id":"` + uid + `","name":"Lee"}}`, true},
		{"id 객체", `{"conductedBy":{"id":"` + uid + `"}}`, true},
		{"$oid 객체", `{"conductedBy":{"$oid":"` + uid + `"}}`, true},
		{"다른 사용자", `{"conductedBy":"` + uuid.NewString() + `"}`, false},
		{"null", `{"conductedBy":null}`, false},
		{"id 없는 객체", `{"conductedBy":{"name":"Lee"}}`, false},
		{"conductedBy 없음", `{"status":"pending"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			activity := newTestActivity()
			activity.Survey = datatypes.NewJSONType(decodeSection[domain.SurveyDetails](t, tt.survey))

			set := Resolve(user, activity)

			assert.Equal(t, tt.want, set.CanViewSurvey)
			assert.False(t, set.CanViewOverview)
		})
	}
}

// ============================================================
// 잘못된 참조 데이터 처리
// ============================================================

func TestResolve_MalformedEntriesAreSkipped(t *testing.T) {
	// Given: 깨진 항목 뒤에 정상 항목이 있는 teamMembers
	user := newTestUser(domain.RoleEngineer)
	activity := newTestActivity()
	activity.Dismantling = datatypes.NewJSONType(decodeSection[domain.DismantlingDetails](t,
		`{"teamMembers":[null,true,[],{"name":"no id"},{"_id":{"nested":1}},"`+user.ID.String()+`"]}`))

	// When
	set := Resolve(user, activity)

	// Then: 깨진 항목은 무시되고 나머지는 평가됨
	assert.True(t, set.CanViewDismantling)
	assert.Equal(t, []Tab{TabDismantling}, set.AllowedTabs)
}

func TestResolve_MalformedOnlyEntriesDenyAccess(t *testing.T) {
	user := newTestUser(domain.RoleTechnician)
	activity := newTestActivity()
	activity.Assignment = datatypes.NewJSONType(decodeSection[domain.Assignment](t,
		`{"assignedTo":[null,false,{"name":"x"}]}`))

	set := Resolve(user, activity)

	assert.Equal(t, None(), set)
}

func TestResolve_TaskListComparesWholeValue(t *testing.T) {
	// Task 목록 항목은 통째로 문자열화해서 비교하므로 객체 형태는 매칭되지 않음
	user := newTestUser(domain.RoleTechnician)
	activity := newTestActivity()
	activity.Tasks = datatypes.NewJSONType(decodeSection[domain.ActivityTasks](t,
		`{"assignSurveyTo":[{"_id":"`+user.ID.String()+`"}]}`))

	set := Resolve(user, activity)

	assert.False(t, set.CanViewSurvey)
	assert.True(t, set.IsEmpty())
}

func TestResolve_MainAssigneeEmbeddedObject(t *testing.T) {
	user := newTestUser(domain.RoleViewer)
	activity := newTestActivity()
	activity.Assignment = datatypes.NewJSONType(decodeSection[domain.Assignment](t,
		`{"assignedTo":[{"_id":"`+user.ID.String()+`","email":"a@b.c"}]}`))

	set := Resolve(user, activity)

	assert.True(t, set.CanViewOverview)
	assert.Equal(t, TabOrder, set.AllowedTabs)
}

// ============================================================
// Fail-closed
// ============================================================

func TestResolve_FailClosed(t *testing.T) {
	admin := newTestUser(domain.RoleAdmin)

	tests := []struct {
		name     string
		user     *domain.User
		activity *domain.Activity
	}{
		{"user 없음", nil, newTestActivity()},
		{"user id 없음", &domain.User{Role: domain.RoleAdmin}, newTestActivity()},
		{"activity 없음", admin, nil},
		{"activity id 없음", admin, &domain.Activity{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := Resolve(tt.user, tt.activity)

			assert.False(t, set.CanViewOverview)
			assert.False(t, set.CanViewSurvey)
			assert.False(t, set.CanViewDismantling)
			assert.False(t, set.CanViewDispatch)
			assert.NotNil(t, set.AllowedTabs)
			assert.Empty(t, set.AllowedTabs)
			assert.Equal(t, "none", set.Outcome())
		})
	}
}

// ============================================================
// Property 테스트
// ============================================================

const (
	memberMain = 1 << iota
	memberSurveyTask
	memberDismantlingTask
	memberStoreTask
	memberSurveyOwner
	memberTeam
	memberAll = 1<<iota - 1
)

var allRoles = []interface{}{
	domain.RoleAdmin,
	domain.RoleManager,
	domain.RoleEngineer,
	domain.RoleTechnician,
	domain.RoleStorekeeper,
	domain.RoleViewer,
}

// activityWithMembership은 mask에 따라 user를 각 배정 목록에 넣은 활동을 만듭니다.
// 다른 사용자도 항상 섞어 넣습니다.
func activityWithMembership(user *domain.User, mask int) *domain.Activity {
	uid := user.ID.String()
	other := uuid.NewString()

	pick := func(bit int) []string {
		if mask&bit != 0 {
			return []string{other, uid}
		}
		return []string{other}
	}

	activity := newTestActivity()
	activity.Assignment = datatypes.NewJSONType(domain.Assignment{
		AssignedTo: domain.RefIDs(pick(memberMain)...),
	})
	activity.Tasks = datatypes.NewJSONType(domain.ActivityTasks{
		AssignSurveyTo:      domain.RefIDs(pick(memberSurveyTask)...),
		AssignDismantlingTo: domain.RefIDs(pick(memberDismantlingTask)...),
		AssignStoreTo:       domain.RefIDs(pick(memberStoreTask)...),
	})

	owner := domain.EmbeddedRef(other)
	if mask&memberSurveyOwner != 0 {
		owner = domain.EmbeddedRef(uid)
	}
	activity.Survey = datatypes.NewJSONType(domain.SurveyDetails{ConductedBy: &owner})

	team := make([]domain.UserRef, 0, 2)
	for _, id := range pick(memberTeam) {
		team = append(team, domain.EmbeddedRef(id))
	}
	activity.Dismantling = datatypes.NewJSONType(domain.DismantlingDetails{TeamMembers: team})

	return activity
}

func newProperties() *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	return gopter.NewProperties(parameters)
}

func TestProperty_AdminOrManagerAlwaysSeesOverview(t *testing.T) {
	properties := newProperties()

	properties.Property("admin/manager always has overview", prop.ForAll(
		func(role domain.Role, mask int) bool {
			user := newTestUser(role)
			set := Resolve(user, activityWithMembership(user, mask))
			return set.CanViewOverview && set.Outcome() == "full"
		},
		gen.OneConstOf(domain.RoleAdmin, domain.RoleManager),
		gen.IntRange(0, memberAll),
	))

	properties.TestingRun(t)
}

func TestProperty_UnassignedUserGetsNothing(t *testing.T) {
	properties := newProperties()

	properties.Property("unassigned non-admin gets empty set", prop.ForAll(
		func(role domain.Role) bool {
			user := newTestUser(role)
			set := Resolve(user, activityWithMembership(user, 0))
			return !set.CanViewOverview && !set.CanViewSurvey &&
				!set.CanViewDismantling && !set.CanViewDispatch &&
				len(set.AllowedTabs) == 0
		},
		gen.OneConstOf(domain.RoleEngineer, domain.RoleTechnician, domain.RoleStorekeeper, domain.RoleViewer),
	))

	properties.TestingRun(t)
}

func TestProperty_AllowedTabsMatchFlagsInOrder(t *testing.T) {
	properties := newProperties()

	properties.Property("allowedTabs is the ordered subsequence of true flags", prop.ForAll(
		func(role domain.Role, mask int) bool {
			user := newTestUser(role)
			set := Resolve(user, activityWithMembership(user, mask))

			flags := map[Tab]bool{
				TabOverview:    set.CanViewOverview,
				TabSurvey:      set.CanViewSurvey,
				TabDismantling: set.CanViewDismantling,
				TabDispatch:    set.CanViewDispatch,
			}
			expected := make([]Tab, 0, len(TabOrder))
			for _, tab := range TabOrder {
				if flags[tab] {
					expected = append(expected, tab)
				}
			}
			if len(expected) != len(set.AllowedTabs) {
				return false
			}
			for i := range expected {
				if expected[i] != set.AllowedTabs[i] {
					return false
				}
			}
			return true
		},
		gen.OneConstOf(allRoles...),
		gen.IntRange(0, memberAll),
	))

	properties.TestingRun(t)
}

func TestProperty_OverviewImpliesEveryOtherTab(t *testing.T) {
	properties := newProperties()

	properties.Property("overview access implies survey, dismantling and dispatch", prop.ForAll(
		func(role domain.Role, mask int) bool {
			user := newTestUser(role)
			set := Resolve(user, activityWithMembership(user, mask))
			if !set.CanViewOverview {
				return true
			}
			return set.CanViewSurvey && set.CanViewDismantling && set.CanViewDispatch
		},
		gen.OneConstOf(allRoles...),
		gen.IntRange(0, memberAll),
	))

	properties.TestingRun(t)
}

func TestProperty_ResolveIsIdempotent(t *testing.T) {
	properties := newProperties()

	properties.Property("same inputs give equal sets", prop.ForAll(
		func(role domain.Role, mask int) bool {
			user := newTestUser(role)
			activity := activityWithMembership(user, mask)
			first := Resolve(user, activity)
			second := Resolve(user, activity)
			return assert.ObjectsAreEqual(first, second)
		},
		gen.OneConstOf(allRoles...),
		gen.IntRange(0, memberAll),
	))

	properties.TestingRun(t)
}
