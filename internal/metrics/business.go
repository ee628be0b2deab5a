package metrics

// RecordPermissionResolution counts a resolved permission set by outcome (none, partial, full)
func (m *Metrics) RecordPermissionResolution(outcome string) {
	if m == nil {
		return
	}
	m.PermissionResolutions.WithLabelValues(outcome).Inc()
}

// RecordPermissionCache counts a permission cache lookup (hit, miss, error)
func (m *Metrics) RecordPermissionCache(result string) {
	if m == nil {
		return
	}
	m.PermissionCache.WithLabelValues(result).Inc()
}

// RecordTabNavigation counts a tab navigation result (moved, kept, ignored, no_access)
func (m *Metrics) RecordTabNavigation(result string) {
	if m == nil {
		return
	}
	m.TabNavigations.WithLabelValues(result).Inc()
}

// IncrementActivityCreated는 활동 생성 카운터를 증가시킵니다.
func (m *Metrics) IncrementActivityCreated(activityType string) {
	if m == nil {
		return
	}
	m.ActivityCreatedTotal.WithLabelValues(activityType).Inc()
}

// AddAuditLogsPurged는 보존 기간이 지나 삭제된 감사 로그 수를 더합니다.
func (m *Metrics) AddAuditLogsPurged(count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.AuditLogsPurgedTotal.Add(float64(count))
}

// SetActivitiesTotal은 유형별 활동 수 게이지를 설정합니다.
func (m *Metrics) SetActivitiesTotal(counts map[string]int64) {
	if m == nil {
		return
	}
	m.ActivitiesTotal.Reset()
	for activityType, count := range counts {
		m.ActivitiesTotal.WithLabelValues(activityType).Set(float64(count))
	}
}

// SetStaffActiveTotal은 활성 직원 수 게이지를 설정합니다.
func (m *Metrics) SetStaffActiveTotal(count int64) {
	if m == nil {
		return
	}
	m.StaffActiveTotal.Set(float64(count))
}
