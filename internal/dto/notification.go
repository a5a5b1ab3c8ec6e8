package dto

// ── 通知模块 DTO ──

// NotificationListRequest 通知列表查询
type NotificationListRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread_only"`
}

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	IsRead      bool    `json:"is_read"`
	RelatedType *string `json:"related_type,omitempty"`
	RelatedID   *string `json:"related_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// UpdatePreferenceRequest 通知偏好更新请求
type UpdatePreferenceRequest struct {
	AbsenceMarked    *bool `json:"absence_marked"`
	LateArrival      *bool `json:"late_arrival"`
	JournalPublished *bool `json:"journal_published"`
}

// PreferenceResponse 通知偏好响应
type PreferenceResponse struct {
	AbsenceMarked    bool `json:"absence_marked"`
	LateArrival      bool `json:"late_arrival"`
	JournalPublished bool `json:"journal_published"`
}
