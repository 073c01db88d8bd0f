package model

// Branch 课程方向表 branches
// Price 为主货币单位, 分期金额由其计算
type Branch struct {
	BranchID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name          string `gorm:"type:varchar(120);not null;uniqueIndex"          json:"name"`
	Description   string `gorm:"type:text;not null;default:''"                   json:"description"`
	Location      string `gorm:"type:varchar(120);not null;default:''"           json:"location"`
	ImageURL      string `gorm:"type:varchar(500);not null;default:''"           json:"imageUrl"`
	Price         int64  `gorm:"not null"                                        json:"price"`
	StudentsCount int    `gorm:"not null;default:0"                              json:"studentsCount"`
	TeachersCount int    `gorm:"not null;default:0"                              json:"teachersCount"`
	BaseModel
}

// TableName 表名
func (Branch) TableName() string { return "branches" }

// EquipmentKit 模拟实验设备表 equipment_kits
type EquipmentKit struct {
	EquipmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BranchID    string `gorm:"type:uuid;not null;index"                        json:"branchId"`
	Name        string `gorm:"type:varchar(120);not null"                      json:"name"`
	Description string `gorm:"type:text;not null;default:''"                   json:"description"`
	Icon        string `gorm:"type:varchar(60);not null;default:''"            json:"icon"`
	BaseModel
}

// TableName 表名
func (EquipmentKit) TableName() string { return "equipment_kits" }

// Specialization 方向细分表 specializations
type Specialization struct {
	SpecializationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BranchID         string `gorm:"type:uuid;not null;index"                        json:"branchId"`
	Name             string `gorm:"type:varchar(120);not null"                      json:"name"`
	Description      string `gorm:"type:text;not null;default:''"                   json:"description"`
	TeachersCount    int    `gorm:"not null;default:0"                              json:"teachersCount"`
	ModulesCount     int    `gorm:"not null;default:0"                              json:"modulesCount"`
	BaseModel
}

// TableName 表名
func (Specialization) TableName() string { return "specializations" }
