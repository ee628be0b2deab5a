// Package permission은 활동 상세 화면의 탭 권한을 계산합니다.
// 사용자 역할과 활동 배정 데이터만 보는 순수 함수이며 I/O를 하지 않습니다.
package permission

import (
	"github.com/google/uuid"

	"fieldops-service/internal/domain"
)

// Set is the derived permission set of one user on one activity.
// AllowedTabs always lists exactly the tabs whose flag is true, in TabOrder.
type Set struct {
	CanViewOverview    bool  `json:"canViewOverview"`
	CanViewSurvey      bool  `json:"canViewSurvey"`
	CanViewDismantling bool  `json:"canViewDismantling"`
	CanViewDispatch    bool  `json:"canViewDispatch"`
	AllowedTabs        []Tab `json:"allowedTabs"`
}

// None returns the fail-closed permission set
func None() Set {
	return Set{AllowedTabs: []Tab{}}
}

// Allows reports whether the tab is in AllowedTabs
func (s Set) Allows(t Tab) bool {
	return containsTab(s.AllowedTabs, t)
}

// IsEmpty reports whether no tab is allowed
func (s Set) IsEmpty() bool {
	return len(s.AllowedTabs) == 0
}

// Outcome classifies the set for metrics: none, partial or full
func (s Set) Outcome() string {
	switch len(s.AllowedTabs) {
	case 0:
		return "none"
	case len(TabOrder):
		return "full"
	default:
		return "partial"
	}
}

func newSet(overview, survey, dismantling, dispatch bool) Set {
	s := Set{
		CanViewOverview:    overview,
		CanViewSurvey:      survey,
		CanViewDismantling: dismantling,
		CanViewDispatch:    dispatch,
		AllowedTabs:        make([]Tab, 0, len(TabOrder)),
	}
	flags := []bool{overview, survey, dismantling, dispatch}
	for i, tab := range TabOrder {
		if flags[i] {
			s.AllowedTabs = append(s.AllowedTabs, tab)
		}
	}
	return s
}

// Resolve computes which tabs of the activity the user may view.
// A nil user, a user without id or an activity without id yields None().
func Resolve(user *domain.User, activity *domain.Activity) Set {
	if user == nil || user.ID == uuid.Nil || activity == nil || activity.ID == uuid.Nil {
		return None()
	}

	userID := user.ID.String()
	adminOrManager := user.Role.IsAdminOrManager()

	assignment := activity.Assignment.Data()
	tasks := activity.Tasks.Data()
	survey := activity.Survey.Data()
	dismantling := activity.Dismantling.Data()

	mainAssignee := containsNormalized(assignment.AssignedTo, userID)
	surveyTask := containsStringified(tasks.Assignees(domain.TaskSurvey), userID)
	dismantlingTask := containsStringified(tasks.Assignees(domain.TaskDismantling), userID)
	storeTask := containsStringified(tasks.Assignees(domain.TaskStore), userID)
	surveyOwner := isSurveyOwner(survey.ConductedBy, userID)
	teamMember := containsNormalized(dismantling.TeamMembers, userID)

	return newSet(
		adminOrManager || mainAssignee,
		adminOrManager || mainAssignee || surveyTask || surveyOwner,
		adminOrManager || mainAssignee || dismantlingTask || teamMember,
		adminOrManager || mainAssignee || storeTask,
	)
}

// containsNormalized matches bare ids and objects carrying an id field
func containsNormalized(refs []domain.UserRef, userID string) bool {
	for _, ref := range refs {
		if ref.Normalize() == userID {
			return true
		}
	}
	return false
}

// containsStringified matches task lists, whose entries are stored as bare ids
func containsStringified(refs []domain.UserRef, userID string) bool {
	for _, ref := range refs {
		if ref.String() == userID {
			return true
		}
	}
	return false
}

// isSurveyOwner checks the id field first, then the whole value stringified.
func isSurveyOwner(ref *domain.UserRef, userID string) bool {
	if ref == nil {
		return false
	}
	if ref.Normalize() == userID {
		return true
	}
	return ref.String() == userID
}
