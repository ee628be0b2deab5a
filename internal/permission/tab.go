package permission

// Tab identifies a section of the activity detail view
type Tab string

const (
	TabOverview    Tab = "overview"
	TabSurvey      Tab = "survey"
	TabDismantling Tab = "dismantling"
	TabDispatch    Tab = "dispatch"
)

// TabOrder is the fixed priority order of the detail view tabs
var TabOrder = []Tab{TabOverview, TabSurvey, TabDismantling, TabDispatch}

// IsValid checks if the tab is one of the known tabs
func (t Tab) IsValid() bool {
	for _, known := range TabOrder {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTab converts a navigation parameter into a Tab.
// Unknown values are returned as-is with ok=false; they can never be allowed.
func ParseTab(s string) (Tab, bool) {
	t := Tab(s)
	return t, t.IsValid()
}

func containsTab(tabs []Tab, t Tab) bool {
	for _, tab := range tabs {
		if tab == t {
			return true
		}
	}
	return false
}
