package service

import "vr-school/backend/internal/model"

// CanViewVideo 判断 id 能否观看 v: 教师可看全部,
// 其他人可看不受限视频及已报名方向的视频
func CanViewVideo(id model.Identity, v *model.Video) bool {
	if id.Role == model.RoleTeacher {
		return true
	}
	if !v.RestrictedAccess {
		return true
	}
	return id.IsEnrolled(v.BranchID)
}

// CanManageVideo 判断 id 是否为 v 的所属教师
func CanManageVideo(id model.Identity, v *model.Video) bool {
	return id.Role == model.RoleTeacher && v.TeacherID == id.UserID
}

// FilterVideos 保留 allow 允许的视频, 顺序不变
func FilterVideos(id model.Identity, videos []model.Video, allow func(model.Identity, *model.Video) bool) []model.Video {
	out := make([]model.Video, 0, len(videos))
	for i := range videos {
		if allow(id, &videos[i]) {
			out = append(out, videos[i])
		}
	}
	return out
}
