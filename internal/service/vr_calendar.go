package service

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"vr-school/backend/internal/model"
)

// ── iCalendar 导出 ────────────────────────────────────────
//
// 每次练习一个 VEVENT, UID 为 "<session id>@vr-school"
// 仍在进行的练习以最后一次保存时间作为结束时间
// ─────────────────────────────────────────────────────────────

const calendarProductID = "-//VR School//Lab Sessions//EN"

// RenderSessionCalendar 将练习记录序列化为 RFC 5545 日历
func RenderSessionCalendar(sessions []model.VRSession, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	for i := range sessions {
		vs := &sessions[i]

		end := vs.UpdatedAt
		if vs.EndTime != nil {
			end = *vs.EndTime
		}
		if end.Before(vs.StartTime) {
			end = vs.StartTime
		}

		evt := cal.AddEvent(vs.SessionID + "@vr-school")
		evt.SetDtStampTime(stamp.UTC())
		evt.SetStartAt(vs.StartTime.UTC())
		evt.SetEndAt(end.UTC())
		evt.SetSummary(sessionTitle(vs))
		evt.SetDescription(fmt.Sprintf("Progress: %d%%", vs.Progress))
		if vs.Completed {
			evt.SetStatus(ics.ObjectStatusConfirmed)
		} else {
			evt.SetStatus(ics.ObjectStatusTentative)
		}
	}

	return cal.Serialize()
}

func sessionTitle(vs *model.VRSession) string {
	if vs.Equipment != nil && vs.Equipment.Name != "" {
		return "VR practice: " + vs.Equipment.Name
	}
	return "VR practice"
}
