package dto

import "vr-school/backend/internal/model"

// ── 方向与设备 ──

// CreateBranchRequest 管理员创建方向
type CreateBranchRequest struct {
	Name        string `json:"name"        binding:"required,max=120"`
	Description string `json:"description"`
	Location    string `json:"location"    binding:"max=120"`
	ImageURL    string `json:"imageUrl"    binding:"omitempty,url,max=500"`
	Price       int64  `json:"price"       binding:"required,min=1"`
}

// CreateEquipmentRequest 管理员添加设备
type CreateEquipmentRequest struct {
	Name        string `json:"name"        binding:"required,max=120"`
	Description string `json:"description"`
	Icon        string `json:"icon"        binding:"max=60"`
}

// CreateSpecializationRequest 管理员添加细分方向
type CreateSpecializationRequest struct {
	Name          string `json:"name"          binding:"required,max=120"`
	Description   string `json:"description"`
	TeachersCount int    `json:"teachersCount" binding:"min=0"`
	ModulesCount  int    `json:"modulesCount"  binding:"min=0"`
}

// BranchDetailResponse 方向详情, 含实验设备与细分方向
type BranchDetailResponse struct {
	Branch          *model.Branch          `json:"branch"`
	Equipment       []model.EquipmentKit   `json:"equipment"`
	Specializations []model.Specialization `json:"specializations"`
}

// ── 视频 ──

// CreateVideoRequest 教师发布视频 (YouTube 托管)
type CreateVideoRequest struct {
	Title            string   `json:"title"            binding:"required,max=200"`
	Description      string   `json:"description"`
	YoutubeID        string   `json:"youtubeId"        binding:"required,youtubeid"`
	BranchID         string   `json:"branchId"         binding:"required,uuid"`
	Tags             []string `json:"tags"             binding:"max=20,dive,min=1,max=30"`
	RestrictedAccess *bool    `json:"restrictedAccess"`
}

// ── VR 练习 ──

// StartVRSessionRequest 使用某套设备开始练习
type StartVRSessionRequest struct {
	EquipmentID string `json:"equipmentId" binding:"required,uuid"`
}

// UpdateVRSessionRequest 保存进度
type UpdateVRSessionRequest struct {
	Progress  *int `json:"progress"  binding:"required,min=0,max=100"`
	Completed bool `json:"completed"`
}
