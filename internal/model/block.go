package model

import (
	"time"
)

// Block 屏蔽关系（Blocker 屏蔽 Blocked），有向，不自动互相屏蔽
type Block struct {
	BlockerID uint `gorm:"primaryKey;autoIncrement:false"`
	BlockedID uint `gorm:"primaryKey;autoIncrement:false;index:idx_blockers_blocked"`
	// 复合主键 (blocker_id, blocked_id)，重复屏蔽只会命中冲突
	CreatedAt time.Time
}

func (Block) TableName() string { return "blockers" }
