package model

import "time"

// DocumentType 认证文档类型
type DocumentType string

const (
	DocNationalID           DocumentType = "national_id"
	DocPassport             DocumentType = "passport"
	DocBirthCertificate     DocumentType = "birth_certificate"
	DocAcademicTranscript   DocumentType = "academic_transcript"
	DocMarksheet            DocumentType = "marksheet"
	DocTransferCertificate  DocumentType = "transfer_certificate"
	DocAdmissionLetter      DocumentType = "admission_letter"
	DocEntranceResult       DocumentType = "entrance_result"
	DocProfilePhoto         DocumentType = "profile_photo"
	DocDegreeCertificate    DocumentType = "degree_certificate"
	DocUGCNet               DocumentType = "ugc_net"
	DocExperienceLetter     DocumentType = "experience_letter"
	DocResume               DocumentType = "resume"
	DocTeacherCertification DocumentType = "teacher_certification"
	DocPANCard              DocumentType = "pan_card"
	DocSignature            DocumentType = "signature"
)

// AllowedDocumentTypes 角色 -> 可上传文档类型的唯一权威表
// 表中没有的角色 (admin) 不能上传任何文档
var AllowedDocumentTypes = map[Role][]DocumentType{
	RoleStudent: {
		DocNationalID, DocPassport, DocBirthCertificate, DocAcademicTranscript,
		DocMarksheet, DocTransferCertificate, DocAdmissionLetter,
		DocEntranceResult, DocProfilePhoto,
	},
	RoleTeacher: {
		DocNationalID, DocPassport, DocDegreeCertificate, DocUGCNet,
		DocExperienceLetter, DocResume, DocTeacherCertification, DocPANCard,
		DocProfilePhoto, DocSignature,
	},
	RoleLecturer: {
		DocNationalID, DocPassport, DocDegreeCertificate, DocResume,
		DocTeacherCertification, DocPANCard, DocProfilePhoto, DocSignature,
		DocUGCNet,
	},
}

// AllDocumentTypes 所有已知类型, 按声明顺序
var AllDocumentTypes = []DocumentType{
	DocNationalID, DocPassport, DocBirthCertificate, DocAcademicTranscript,
	DocMarksheet, DocTransferCertificate, DocAdmissionLetter, DocEntranceResult,
	DocProfilePhoto, DocDegreeCertificate, DocUGCNet, DocExperienceLetter,
	DocResume, DocTeacherCertification, DocPANCard, DocSignature,
}

// IsDocumentTypeAllowed 判断 role 是否可上传 t
func IsDocumentTypeAllowed(role Role, t DocumentType) bool {
	for _, allowed := range AllowedDocumentTypes[role] {
		if allowed == t {
			return true
		}
	}
	return false
}

// IsKnownDocumentType 判断 t 是否为已声明类型
func IsKnownDocumentType(t DocumentType) bool {
	for _, known := range AllDocumentTypes {
		if known == t {
			return true
		}
	}
	return false
}

// DocumentStatus 文档审核状态
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

// CanReviewTo 审核人能否将文档从 s 改为 next
// 只审核 pending 文档, approved 与 rejected 在用户重新提交前为终态
func (s DocumentStatus) CanReviewTo(next DocumentStatus) bool {
	return s == DocumentPending && (next == DocumentApproved || next == DocumentRejected)
}

// Document 认证文档表 documents, (user, type) 唯一
type Document struct {
	DocumentID  string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"      json:"id"`
	UserID      string         `gorm:"type:uuid;not null;uniqueIndex:uq_documents_user_type" json:"userId"`
	Type        DocumentType   `gorm:"column:doc_type;type:varchar(40);not null;uniqueIndex:uq_documents_user_type" json:"type"`
	Role        Role           `gorm:"type:varchar(16);not null"                           json:"-"`
	StorageKey  string         `gorm:"type:varchar(255);not null"                          json:"-"`
	ContentType string         `gorm:"type:varchar(100);not null"                          json:"contentType"`
	SizeBytes   int64          `gorm:"not null"                                            json:"size"`
	Status      DocumentStatus `gorm:"type:varchar(16);not null;default:'pending'"         json:"status"`
	Feedback    string         `gorm:"type:text;not null;default:''"                       json:"feedback"`
	UploadedAt  time.Time      `gorm:"not null"                                            json:"uploadedAt"`
	ReviewedAt  *time.Time     `                                                           json:"reviewedAt,omitempty"`
	ReviewedBy  *string        `gorm:"type:uuid"                                           json:"reviewedBy,omitempty"`
	BaseModel
}

// TableName 表名
func (Document) TableName() string { return "documents" }
