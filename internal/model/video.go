package model

// Video 课程视频表 videos
type Video struct {
	VideoID          string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title            string      `gorm:"type:varchar(200);not null"                      json:"title"`
	Description      string      `gorm:"type:text;not null;default:''"                   json:"description"`
	YoutubeID        string      `gorm:"type:varchar(32);not null"                       json:"youtubeId"`
	TeacherID        string      `gorm:"type:uuid;not null;index"                        json:"teacherId"`
	BranchID         string      `gorm:"type:uuid;not null;index"                        json:"branchId"`
	Tags             StringArray `gorm:"type:text[];not null;default:'{}'"               json:"tags"`
	RestrictedAccess bool        `gorm:"not null;default:true"                           json:"restrictedAccess"`
	Views            int         `gorm:"not null;default:0"                              json:"views"`
	BaseModel
}

// TableName 表名
func (Video) TableName() string { return "videos" }
