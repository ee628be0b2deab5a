package permission

// TabStatus is the state of the detail view tab machine
type TabStatus string

const (
	// TabStatusUninitialized: user, activity or permissions not loaded yet
	TabStatusUninitialized TabStatus = "uninitialized"
	// TabStatusNoAccess: no tab is allowed. Terminal until permissions are reloaded.
	TabStatusNoAccess TabStatus = "no_access"
	// TabStatusActive: ActiveTab is shown
	TabStatusActive TabStatus = "active"
)

// TabState is a snapshot of the synchronizer
type TabState struct {
	Status    TabStatus `json:"status"`
	ActiveTab Tab       `json:"activeTab,omitempty"`
}

// Navigation is the outcome of loading permissions or applying a tab hint
type Navigation struct {
	TabState
	// Changed is true when the active tab moved
	Changed bool `json:"changed"`
	// RewriteHint is true when the navigation parameter no longer matches ActiveTab
	// and should be replaced so the shareable URL reflects the shown tab.
	RewriteHint bool `json:"rewriteHint"`
}

// Synchronizer keeps the active tab of one detail view consistent with the
// allowed tabs and an external tab hint. It is not safe for concurrent use.
type Synchronizer struct {
	allowed []Tab
	state   TabState
}

// NewSynchronizer creates a synchronizer in the Uninitialized state
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{state: TabState{Status: TabStatusUninitialized}}
}

// State returns the current state
func (s *Synchronizer) State() TabState {
	return s.state
}

// Load performs the initial resolution, or a full reload after the permission
// set changed. The hint wins when allowed, otherwise the first allowed tab.
func (s *Synchronizer) Load(set Set, hint Tab) Navigation {
	prev := s.state
	s.allowed = append([]Tab(nil), set.AllowedTabs...)

	if len(s.allowed) == 0 {
		s.state = TabState{Status: TabStatusNoAccess}
		return Navigation{TabState: s.state, Changed: prev != s.state}
	}

	active := s.allowed[0]
	if containsTab(s.allowed, hint) {
		active = hint
	}
	s.state = TabState{Status: TabStatusActive, ActiveTab: active}

	return Navigation{
		TabState:    s.state,
		Changed:     prev != s.state,
		RewriteHint: hint != active,
	}
}

// ApplyHint moves to the hinted tab only when it is allowed.
// Forbidden or unknown hints are ignored and the current tab is kept.
// Nothing happens before Load or in NoAccess.
func (s *Synchronizer) ApplyHint(hint Tab) Navigation {
	if s.state.Status != TabStatusActive {
		return Navigation{TabState: s.state}
	}

	if hint == s.state.ActiveTab || !containsTab(s.allowed, hint) {
		return Navigation{
			TabState:    s.state,
			RewriteHint: hint != s.state.ActiveTab,
		}
	}

	s.state.ActiveTab = hint
	return Navigation{TabState: s.state, Changed: true}
}

// InitialTab resolves the tab for a freshly loaded view without keeping state
func InitialTab(set Set, hint Tab) Navigation {
	return NewSynchronizer().Load(set, hint)
}

// Navigate resolves a hint change from the current tab without keeping state.
// The current tab is first re-validated against the set, as after a reload.
func Navigate(set Set, current, requested Tab) Navigation {
	sync := NewSynchronizer()
	loaded := sync.Load(set, current)
	nav := sync.ApplyHint(requested)
	if loaded.ActiveTab != current && sync.State().Status == TabStatusActive {
		nav.Changed = true
	}
	return nav
}
