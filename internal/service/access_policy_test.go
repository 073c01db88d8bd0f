package service

import (
	"testing"

	"vr-school/backend/internal/model"
)

func TestCanViewVideo_AllCombinations(t *testing.T) {
	roles := []model.Role{model.RoleStudent, model.RoleTeacher, model.RoleLecturer, model.RoleAdmin}

	for _, role := range roles {
		for _, enrolled := range []bool{false, true} {
			for _, restricted := range []bool{false, true} {
				id := model.Identity{UserID: "u1", Role: role, EnrolledBranches: map[string]struct{}{}}
				if enrolled {
					id.EnrolledBranches["b1"] = struct{}{}
				}
				video := &model.Video{VideoID: "v1", BranchID: "b1", TeacherID: "t1", RestrictedAccess: restricted}

				want := role == model.RoleTeacher || enrolled || !restricted
				if got := CanViewVideo(id, video); got != want {
					t.Errorf("role=%s enrolled=%v restricted=%v: got %v, want %v", role, enrolled, restricted, got, want)
				}
			}
		}
	}
}

func TestCanViewVideo_OtherBranchEnrollment(t *testing.T) {
	id := model.Identity{UserID: "u1", Role: model.RoleStudent, EnrolledBranches: map[string]struct{}{"b2": {}}}
	video := &model.Video{BranchID: "b1", RestrictedAccess: true}

	if CanViewVideo(id, video) {
		t.Error("enrollment in another branch must not unlock a restricted video")
	}
}

func TestCanManageVideo(t *testing.T) {
	video := &model.Video{VideoID: "v1", TeacherID: "t1", BranchID: "b1"}

	tests := []struct {
		name string
		id   model.Identity
		want bool
	}{
		{"owning teacher", model.Identity{UserID: "t1", Role: model.RoleTeacher}, true},
		{"other teacher", model.Identity{UserID: "t2", Role: model.RoleTeacher}, false},
		{"admin", model.Identity{UserID: "t1", Role: model.RoleAdmin}, false},
		{"lecturer", model.Identity{UserID: "t1", Role: model.RoleLecturer}, false},
		{"student", model.Identity{UserID: "s1", Role: model.RoleStudent}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanManageVideo(tt.id, video); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterVideos_KeepsOrder(t *testing.T) {
	id := model.Identity{UserID: "s1", Role: model.RoleStudent}
	videos := []model.Video{
		{VideoID: "a", RestrictedAccess: false},
		{VideoID: "b", RestrictedAccess: true, BranchID: "x"},
		{VideoID: "c", RestrictedAccess: false},
	}

	got := FilterVideos(id, videos, CanViewVideo)
	if len(got) != 2 || got[0].VideoID != "a" || got[1].VideoID != "c" {
		t.Errorf("unexpected filter result %+v", got)
	}
}
