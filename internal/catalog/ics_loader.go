package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"course-planner/internal/model"
)

// ── ICS 目录解析 ──────────────────────────────────────────────
//
// 职责：把学校课表系统导出的 iCalendar 转为每周模板。
//
//   - DTSTART/DTEND 确定星期与起止时刻；RRULE/EXDATE 不影响模板
//   - UID 作为模板 id；缺失时按出现顺序生成 ics-N
//   - CATEGORIES 作为类型，X-LINKED-ID / X-LECTURER 为可选扩展属性
//   - 同名、同星期、同时段的多个单次事件合并为一个模板
//   - UTC 时间按日历的 X-WR-TIMEZONE 换算，未声明时按 UTC
// ─────────────────────────────────────────────────────────────

const (
	icsPropLinkedID = "X-LINKED-ID"
	icsPropLecturer = "X-LECTURER"
	icsPropTimezone = "X-WR-TIMEZONE"
)

func readICS(path string) ([]model.LectureTemplate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取课程目录失败: %w", err)
	}
	defer f.Close()
	return parseICS(f)
}

func parseICS(r io.Reader) ([]model.LectureTemplate, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	loc := time.UTC
	for _, prop := range cal.CalendarProperties {
		if prop.IANAToken != icsPropTimezone {
			continue
		}
		if l, err := time.LoadLocation(strings.TrimSpace(prop.Value)); err == nil {
			loc = l
		}
	}

	type slotKey struct {
		title, day, start, end string
	}
	kept := make(map[slotKey]int)
	// 被合并事件的 UID → 保留事件的 id，关联关系随之改指
	alias := make(map[string]string)

	var templates []model.LectureTemplate
	for i, evt := range cal.Events() {
		t, ok := eventToTemplate(evt, loc)
		if !ok {
			continue
		}
		if t.ID == "" {
			t.ID = fmt.Sprintf("ics-%d", i+1)
		}
		k := slotKey{t.Title, t.Day, t.StartTime, t.EndTime}
		if j, dup := kept[k]; dup {
			if t.ID != templates[j].ID {
				alias[t.ID] = templates[j].ID
			}
			if templates[j].LinkedID == "" {
				templates[j].LinkedID = t.LinkedID
			}
			continue
		}
		kept[k] = len(templates)
		templates = append(templates, t)
	}

	for i := range templates {
		if to, ok := alias[templates[i].LinkedID]; ok {
			templates[i].LinkedID = to
		}
	}
	return templates, nil
}

// eventToTemplate 解析单个 VEVENT，缺少标题或起止时间的事件跳过
func eventToTemplate(evt *ics.VEvent, loc *time.Location) (model.LectureTemplate, bool) {
	title := propValue(evt, string(ics.ComponentPropertySummary))
	if title == "" {
		return model.LectureTemplate{}, false
	}
	start, err := eventTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return model.LectureTemplate{}, false
	}
	end, err := eventTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		return model.LectureTemplate{}, false
	}

	return model.LectureTemplate{
		ID:        propValue(evt, string(ics.ComponentPropertyUniqueId)),
		LinkedID:  propValue(evt, icsPropLinkedID),
		Title:     title,
		Day:       start.Weekday().String(),
		StartTime: start.Format("15:04"),
		EndTime:   end.Format("15:04"),
		Type:      strings.ToLower(propValue(evt, string(ics.ComponentPropertyCategories))),
		Location:  propValue(evt, string(ics.ComponentPropertyLocation)),
		Lecturer:  propValue(evt, icsPropLecturer),
	}, true
}

func propValue(evt *ics.VEvent, name string) string {
	for _, prop := range evt.Properties {
		if strings.EqualFold(prop.IANAToken, name) {
			return unescapeText(strings.TrimSpace(prop.Value))
		}
	}
	return ""
}

// eventTime 解析 DTSTART/DTEND，支持 UTC、TZID 与浮动时间
func eventTime(evt *ics.VEvent, name ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(name)
	if prop == nil {
		return time.Time{}, fmt.Errorf("缺少属性 %s", name)
	}
	val := strings.TrimSpace(prop.Value)

	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.In(loc), nil
	}
	t, err := time.Parse("20060102T150405", val)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析时间: %s", val)
	}
	if tzid := prop.ICalParameters["TZID"]; len(tzid) > 0 {
		if tzLoc, err := time.LoadLocation(tzid[0]); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, tzLoc), nil
		}
	}
	// 浮动时间按字面时刻处理
	return t, nil
}

var icsTextReplacer = strings.NewReplacer(`\,`, ",", `\;`, ";", `\n`, "\n", `\N`, "\n", `\\`, `\`)

func unescapeText(s string) string {
	return icsTextReplacer.Replace(s)
}
