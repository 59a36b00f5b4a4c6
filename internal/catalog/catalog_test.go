package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"course-planner/internal/model"
)

// ── 测试辅助 ──

func testWindow(t *testing.T) model.DayWindow {
	t.Helper()
	w, err := model.ParseDayWindow("08:00", "21:00")
	if err != nil {
		t.Fatalf("ParseDayWindow 失败: %v", err)
	}
	return w
}

func cs101() []model.LectureTemplate {
	return []model.LectureTemplate{
		{ID: "L1", LinkedID: "B1", Title: "CS101", Day: "Monday", StartTime: "10:00", EndTime: "12:00", Type: "lecture", Location: "A-101", Lecturer: "Dr. Levi"},
		{ID: "B1", LinkedID: "L1", Title: "CS101", Day: "Wednesday", StartTime: "14:00", EndTime: "16:00", Type: "lab", Location: "Lab 3", Lecturer: "Mr. Cohen"},
		{ID: "E1", Title: "CS101", Day: "ה", StartTime: "16:00", EndTime: "17:00", Type: "exercise"},
		{ID: "M1", Title: "Calculus", Day: "Sunday", StartTime: "08:30", EndTime: "10:30", Type: "N/A"},
	}
}

// ── New 校验 ──

func TestNew_Valid(t *testing.T) {
	c, err := New(cs101(), testWindow(t))
	if err != nil {
		t.Fatalf("New 应成功: %v", err)
	}
	if c.Len() != 4 {
		t.Errorf("期望 4 个模板，实际=%d", c.Len())
	}
}

func TestNew_IntegrityErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func([]model.LectureTemplate) []model.LectureTemplate
	}{
		{"未知星期", func(ts []model.LectureTemplate) []model.LectureTemplate {
			ts[2].Day = "Saturday"
			return ts
		}},
		{"重复 id", func(ts []model.LectureTemplate) []model.LectureTemplate {
			ts[3].ID = "E1"
			return ts
		}},
		{"空 id", func(ts []model.LectureTemplate) []model.LectureTemplate {
			ts[3].ID = " "
			return ts
		}},
		{"悬空关联", func(ts []model.LectureTemplate) []model.LectureTemplate {
			ts[2].LinkedID = "X9"
			return ts
		}},
		{"单向关联", func(ts []model.LectureTemplate) []model.LectureTemplate {
			ts[1].LinkedID = "E1"
			return ts
		}},
		{"关联自身", func(ts []model.LectureTemplate) []model.LectureTemplate {
			ts[3].LinkedID = "M1"
			return ts
		}},
		{"起止倒置", func(ts []model.LectureTemplate) []model.LectureTemplate {
			ts[3].StartTime, ts[3].EndTime = "12:00", "10:00"
			return ts
		}},
		{"超出时间窗", func(ts []model.LectureTemplate) []model.LectureTemplate {
			ts[3].StartTime = "07:00"
			return ts
		}},
		{"无效时刻", func(ts []model.LectureTemplate) []model.LectureTemplate {
			ts[3].EndTime = "late"
			return ts
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.mutate(cs101()), testWindow(t))
			if !errors.Is(err, ErrCatalogIntegrity) {
				t.Errorf("期望 ErrCatalogIntegrity，实际: %v", err)
			}
		})
	}
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	in := cs101()
	c, err := New(in, testWindow(t))
	if err != nil {
		t.Fatalf("New 应成功: %v", err)
	}
	in[0].Title = "changed"
	got, _ := c.TemplateByID("L1")
	if got.Title != "CS101" {
		t.Error("目录不应受输入切片修改影响")
	}
}

// ── 查询 ──

func TestAccessors(t *testing.T) {
	c, err := New(cs101(), testWindow(t))
	if err != nil {
		t.Fatalf("New 应成功: %v", err)
	}

	if _, ok := c.TemplateByID("nope"); ok {
		t.Error("不存在的 id 应返回 false")
	}
	tpl, ok := c.TemplateByID("B1")
	if !ok || tpl.LinkedID != "L1" {
		t.Errorf("TemplateByID(B1) 错误: %+v", tpl)
	}

	titles := c.AllTitles()
	if len(titles) != 2 || titles[0] != "CS101" || titles[1] != "Calculus" {
		t.Errorf("AllTitles 期望 [CS101 Calculus]，实际=%v", titles)
	}

	forTitle := c.TemplatesForTitle("CS101")
	if len(forTitle) != 3 || forTitle[0].ID != "L1" || forTitle[2].ID != "E1" {
		t.Errorf("TemplatesForTitle 顺序错误: %v", forTitle)
	}

	if got := c.SearchTitles("calc"); len(got) != 1 || got[0] != "Calculus" {
		t.Errorf("SearchTitles(calc) 错误: %v", got)
	}
	if got := c.SearchTitles(""); len(got) != 2 {
		t.Errorf("空查询应返回全部课程，实际=%v", got)
	}
	if got := c.SearchTitles("physics"); len(got) != 0 {
		t.Errorf("无匹配应返回空，实际=%v", got)
	}
}

func TestAllTitles_ReturnsCopy(t *testing.T) {
	c, _ := New(cs101(), testWindow(t))
	titles := c.AllTitles()
	titles[0] = "mutated"
	if c.AllTitles()[0] != "CS101" {
		t.Error("AllTitles 应返回副本")
	}
}

// ── 文件加载 ──

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `templates:
  - id: L1
    linked_id: B1
    title: CS101
    day: Monday
    start_time: "10:00"
    end_time: "12:00"
    type: lecture
  - id: B1
    linked_id: L1
    title: CS101
    day: Wednesday
    start_time: "14:00"
    end_time: "16:00"
    type: lab
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}

	c, err := LoadFile(path, testWindow(t))
	if err != nil {
		t.Fatalf("LoadFile 应成功: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("期望 2 个模板，实际=%d", c.Len())
	}
}

func TestLoadFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	content := `[{"id":"M1","title":"Calculus","day":"Sunday","startTime":"08:30","endTime":"10:30","type":"N/A"}]`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}

	c, err := LoadFile(path, testWindow(t))
	if err != nil {
		t.Fatalf("LoadFile 应成功: %v", err)
	}
	tpl, ok := c.TemplateByID("M1")
	if !ok || tpl.StartTime != "08:30" {
		t.Errorf("JSON 模板解析错误: %+v", tpl)
	}
}

func TestLoadFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"id", "linked_id", "title", "day", "start_time", "end_time", "type", "location", "lecturer"},
		{"L1", "B1", "CS101", "ב", "10:00", "12:00", "lecture", "A-101", "Dr. Levi"},
		{"B1", "L1", "CS101", "ד", "14:00", "16:00", "lab", "Lab 3", "Mr. Cohen"},
		{},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("写入行失败: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("保存 xlsx 失败: %v", err)
	}
	f.Close()

	c, err := LoadFile(path, testWindow(t))
	if err != nil {
		t.Fatalf("LoadFile 应成功: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("期望 2 个模板，实际=%d", c.Len())
	}
	tpl, _ := c.TemplateByID("L1")
	if tpl.Lecturer != "Dr. Levi" || tpl.LinkedID != "B1" {
		t.Errorf("xlsx 模板解析错误: %+v", tpl)
	}
}

func TestLoadFile_UnsupportedFormat(t *testing.T) {
	_, err := LoadFile("catalog.csv", testWindow(t))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("期望 ErrUnsupportedFormat，实际: %v", err)
	}
}

func TestRowsToTemplates_MissingColumn(t *testing.T) {
	_, err := rowsToTemplates([][]string{{"id", "title"}, {"1", "x"}})
	if err == nil {
		t.Error("缺少必要列应返回错误")
	}
}
