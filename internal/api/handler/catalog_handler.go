package handler

import (
	"github.com/gin-gonic/gin"

	"vr-school/backend/internal/dto"
	"vr-school/backend/internal/service"
	"vr-school/backend/pkg/response"
)

// CatalogHandler 方向、实验设备与细分方向
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

// NewCatalogHandler 创建 CatalogHandler 实例
func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// ListBranches 方向列表
func (h *CatalogHandler) ListBranches(c *gin.Context) {
	branches, err := h.catalogSvc.ListBranches(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, branches)
}

// GetBranch 方向详情
func (h *CatalogHandler) GetBranch(c *gin.Context) {
	detail, err := h.catalogSvc.GetBranch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, detail)
}

// ListEquipment 方向实验设备
func (h *CatalogHandler) ListEquipment(c *gin.Context) {
	kits, err := h.catalogSvc.ListEquipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, kits)
}

// ListSpecializations 方向细分
func (h *CatalogHandler) ListSpecializations(c *gin.Context) {
	specs, err := h.catalogSvc.ListSpecializations(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, specs)
}

// ── 管理员初始化数据 ──

// CreateBranch 创建方向
func (h *CatalogHandler) CreateBranch(c *gin.Context) {
	var req dto.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	branch, err := h.catalogSvc.CreateBranch(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, branch)
}

// AddEquipment 添加实验设备
func (h *CatalogHandler) AddEquipment(c *gin.Context) {
	var req dto.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	kit, err := h.catalogSvc.AddEquipment(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, kit)
}

// AddSpecialization 添加细分方向
func (h *CatalogHandler) AddSpecialization(c *gin.Context) {
	var req dto.CreateSpecializationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	spec, err := h.catalogSvc.AddSpecialization(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, spec)
}
