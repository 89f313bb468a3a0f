package store

import "time"

// Turn is one archived conversation exchange. The context document
// keeps only the most recent window; the archive keeps everything.
type Turn struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UserText      string `json:"user_text"`
	AssistantText string `json:"assistant_text"`
	SkillName     string `gorm:"index" json:"skill_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// SkillRun records one supervised skill execution.
type SkillRun struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Skill      string `gorm:"index" json:"skill"`
	Success    bool   `json:"success"`
	TimedOut   bool   `json:"timed_out"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
