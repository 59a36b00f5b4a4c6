package service

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"course-planner/internal/model"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmpty        = errors.New("课表为空，无可导出内容")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

const (
	excelSheetName = "课表"
	excelFileName  = "scheduled_courses.xlsx"
	icsFileName    = "scheduled_courses.ics"
	icsProductID   = "-//course-planner//schedule export//ZH"
)

var excelHeaders = []string{"TimeSlot", "Day", "Type", "Course", "Location", "Lecturer", "Note"}

// ExportService 导出业务接口
//
// 设计说明：
//   - 只读取 PlannerService.ListAll 的快照，不访问存储
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Excel 按课表插入顺序逐行输出，单元格底色取课程背景色
//   - ICS 每门课一个 VEVENT，以 RRULE:FREQ=WEEKLY 按周重复
type ExportService interface {
	// ExportExcel 导出课表为 Excel
	ExportExcel() (*bytes.Buffer, string, error)
	// ExportICS 导出课表为 iCalendar；weeks>0 时限定重复次数
	ExportICS(weeks int) (*bytes.Buffer, string, error)
}

type exportService struct {
	planner PlannerService
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(planner PlannerService, loc *time.Location, logger *zap.Logger) ExportService {
	if loc == nil {
		loc = time.Local
	}
	return &exportService{planner: planner, loc: loc, now: time.Now, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportExcel 导出课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "课表"
//   - 表头：TimeSlot | Day | Type | Course | Location | Lecturer | Note
//   - 每行一门课，Course 列以课程背景色填充

func (s *exportService) ExportExcel() (*bytes.Buffer, string, error) {
	sessions := s.planner.ListAll()
	if len(sessions) == 0 {
		return nil, "", ErrExportEmpty
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(excelSheetName)
	if err != nil {
		s.logger.Error("创建 Excel Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(excelSheetName, "A", "A", 14)
	f.SetColWidth(excelSheetName, "B", "C", 10)
	f.SetColWidth(excelSheetName, "D", "F", 22)
	f.SetColWidth(excelSheetName, "G", "G", 30)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	for i, h := range excelHeaders {
		f.SetCellValue(excelSheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(excelSheetName, "A1", cell(colName(len(excelHeaders)-1), 1), headerStyle)

	// 数据行；相同颜色共用一个样式
	styles := make(map[string]int)
	for i, sess := range sessions {
		row := i + 2
		start := sess.StartDate.In(s.loc)
		end := sess.EndDate.In(s.loc)

		values := []string{
			start.Format("15:04") + " - " + end.Format("15:04"),
			start.Weekday().String(),
			sess.Type,
			sess.Title,
			sess.Location,
			sess.Lecturer,
			sess.CustomText,
		}
		for col, v := range values {
			f.SetCellValue(excelSheetName, cell(colName(col), row), v)
		}

		if !isHexColor(sess.BackgroundColor) {
			continue
		}
		styleID, ok := styles[sess.BackgroundColor]
		if !ok {
			styleID, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Color: []string{sess.BackgroundColor}, Pattern: 1},
			})
			if err != nil {
				s.logger.Warn("创建单元格样式失败", zap.String("color", sess.BackgroundColor), zap.Error(err))
				continue
			}
			styles[sess.BackgroundColor] = styleID
		}
		courseCell := cell("D", row)
		f.SetCellStyle(excelSheetName, courseCell, courseCell, styleID)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, excelFileName, nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS 导出课表为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportICS(weeks int) (*bytes.Buffer, string, error) {
	sessions := s.planner.ListAll()
	if len(sessions) == 0 {
		return nil, "", ErrExportEmpty
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	stamp := s.now().UTC()
	for _, sess := range sessions {
		start := sess.StartDate.In(s.loc)

		event := cal.AddEvent(sess.ID + "@course-planner")
		event.SetDtStampTime(stamp)
		event.SetStartAt(sess.StartDate)
		event.SetEndAt(sess.EndDate)
		event.SetSummary(summaryFor(sess))
		if sess.Location != "" {
			event.SetLocation(sess.Location)
		}
		if desc := descriptionFor(sess); desc != "" {
			event.SetDescription(desc)
		}
		event.AddProperty(ics.ComponentPropertyRrule, weeklyRule(start.Weekday(), weeks))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, icsFileName, nil
}

// ── 辅助函数 ──

var rruleWeekdays = [...]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// weeklyRule 生成 RRULE 值（不含 "RRULE:" 前缀）
func weeklyRule(day time.Weekday, weeks int) string {
	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rruleWeekdays[day]},
	}
	if weeks > 0 {
		opt.Count = weeks
	}
	return opt.RRuleString()
}

func summaryFor(sess model.ScheduledSession) string {
	if sess.Type == "" || sess.Type == model.TypeUnknown || sess.Type == model.TypeCustom {
		return sess.Title
	}
	return fmt.Sprintf("%s (%s)", sess.Title, sess.Type)
}

func descriptionFor(sess model.ScheduledSession) string {
	parts := make([]string, 0, 2)
	if sess.Lecturer != "" {
		parts = append(parts, "Lecturer: "+sess.Lecturer)
	}
	if sess.CustomText != "" {
		parts = append(parts, sess.CustomText)
	}
	return strings.Join(parts, "\n")
}

// isHexColor 判断是否为 #rrggbb 形式，其他颜色写法不做 Excel 填充
func isHexColor(c string) bool {
	if len(c) != 7 || c[0] != '#' {
		return false
	}
	for _, r := range c[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
