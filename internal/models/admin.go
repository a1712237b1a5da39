// internal/models/admin.go
package models

type AuditLog struct {
	BaseModel
	ActorID      string `json:"actor_id,omitempty" gorm:"size:128;index"`
	Action       string `json:"action" gorm:"size:100;not null;index"`
	ResourceType string `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   string `json:"resource_id,omitempty" gorm:"size:64;index"`
	RequestBody  JSONB  `json:"request_body,omitempty" gorm:"type:jsonb"`
	StatusCode   int    `json:"status_code"`
	IPAddress    string `json:"ip_address" gorm:"size:45"`
	UserAgent    string `json:"user_agent" gorm:"type:text"`
}
