package catalog

import (
	"errors"
	"fmt"
	"strings"

	"course-planner/internal/model"
)

// ── 课程目录错误 ──

var (
	// ErrCatalogIntegrity 目录数据不一致（未知星期、单向关联等），属于编程/数据错误，加载时即失败
	ErrCatalogIntegrity = errors.New("课程目录数据不一致")
	// ErrUnsupportedFormat 不支持的目录文件格式
	ErrUnsupportedFormat = errors.New("不支持的课程目录格式")
)

// Catalog 只读课程目录，加载一次后不再修改
type Catalog struct {
	templates []model.LectureTemplate
	byID      map[string]int
	byTitle   map[string][]int
	titles    []string
	window    model.DayWindow
}

// New 校验模板并建立索引
//
// 校验规则：
//   - id 非空且唯一
//   - 星期符号在固定表内（周日至周五）
//   - 起止时刻可解析、start < end，且落在每日时间窗内
//   - linkedId 指向的模板存在，且对方的 linkedId 指回本模板
func New(templates []model.LectureTemplate, window model.DayWindow) (*Catalog, error) {
	c := &Catalog{
		templates: make([]model.LectureTemplate, len(templates)),
		byID:      make(map[string]int, len(templates)),
		byTitle:   make(map[string][]int),
		window:    window,
	}
	copy(c.templates, templates)

	for i := range c.templates {
		t := &c.templates[i]
		t.ID = strings.TrimSpace(t.ID)
		t.LinkedID = strings.TrimSpace(t.LinkedID)

		if t.ID == "" {
			return nil, fmt.Errorf("%w: 第 %d 个模板缺少 id", ErrCatalogIntegrity, i+1)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("%w: 模板 id %q 重复", ErrCatalogIntegrity, t.ID)
		}
		if err := c.validateSlot(t); err != nil {
			return nil, err
		}
		if t.Type == "" {
			t.Type = model.TypeUnknown
		}

		c.byID[t.ID] = i
		if _, seen := c.byTitle[t.Title]; !seen {
			c.titles = append(c.titles, t.Title)
		}
		c.byTitle[t.Title] = append(c.byTitle[t.Title], i)
	}

	for i := range c.templates {
		t := &c.templates[i]
		if !t.IsLinked() {
			continue
		}
		if t.LinkedID == t.ID {
			return nil, fmt.Errorf("%w: 模板 %q 关联了自身", ErrCatalogIntegrity, t.ID)
		}
		j, ok := c.byID[t.LinkedID]
		if !ok {
			return nil, fmt.Errorf("%w: 模板 %q 关联的 %q 不存在", ErrCatalogIntegrity, t.ID, t.LinkedID)
		}
		if c.templates[j].LinkedID != t.ID {
			return nil, fmt.Errorf("%w: 模板 %q 与 %q 的关联不对称", ErrCatalogIntegrity, t.ID, t.LinkedID)
		}
	}

	return c, nil
}

func (c *Catalog) validateSlot(t *model.LectureTemplate) error {
	if _, ok := model.ParseWeekday(t.Day); !ok {
		return fmt.Errorf("%w: 模板 %q 的星期 %q 未知", ErrCatalogIntegrity, t.ID, t.Day)
	}
	start, err := model.ParseClock(t.StartTime)
	if err != nil {
		return fmt.Errorf("%w: 模板 %q: %v", ErrCatalogIntegrity, t.ID, err)
	}
	end, err := model.ParseClock(t.EndTime)
	if err != nil {
		return fmt.Errorf("%w: 模板 %q: %v", ErrCatalogIntegrity, t.ID, err)
	}
	if !c.window.Contains(start, end) {
		return fmt.Errorf("%w: 模板 %q 的时间 %s-%s 不在 %s-%s 内或起止倒置",
			ErrCatalogIntegrity, t.ID, start, end, c.window.Start, c.window.End)
	}
	return nil
}

// ── 查询 ──

// Len 模板数量
func (c *Catalog) Len() int { return len(c.templates) }

// Window 每日时间窗
func (c *Catalog) Window() model.DayWindow { return c.window }

// TemplateByID 按 id 查询模板
func (c *Catalog) TemplateByID(id string) (model.LectureTemplate, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.LectureTemplate{}, false
	}
	return c.templates[i], true
}

// TemplatesForTitle 返回某课程的全部模板（目录顺序）
func (c *Catalog) TemplatesForTitle(title string) []model.LectureTemplate {
	idx := c.byTitle[title]
	out := make([]model.LectureTemplate, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.templates[i])
	}
	return out
}

// AllTitles 返回去重后的课程名（首次出现顺序）
func (c *Catalog) AllTitles() []string {
	out := make([]string, len(c.titles))
	copy(out, c.titles)
	return out
}

// SearchTitles 不区分大小写的子串匹配，query 为空时返回全部
func (c *Catalog) SearchTitles(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.AllTitles()
	}
	var out []string
	for _, title := range c.titles {
		if strings.Contains(strings.ToLower(title), q) {
			out = append(out, title)
		}
	}
	return out
}
