package model

import "time"

// VRSession 实验练习记录表 vr_sessions
// 进度不可减少, 已完成的记录不可再修改
type VRSession struct {
	SessionID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      string     `gorm:"type:uuid;not null;index"                        json:"userId"`
	EquipmentID string     `gorm:"type:uuid;not null"                              json:"equipmentId"`
	StartTime   time.Time  `gorm:"not null"                                        json:"startTime"`
	EndTime     *time.Time `                                                       json:"endTime,omitempty"`
	Progress    int        `gorm:"type:smallint;not null;default:0"                json:"progress"`
	Completed   bool       `gorm:"not null;default:false"                          json:"completed"`
	VersionedModel

	Equipment *EquipmentKit `gorm:"foreignKey:EquipmentID;references:EquipmentID" json:"equipment,omitempty"`
}

// TableName 表名
func (VRSession) TableName() string { return "vr_sessions" }
