package service

import (
	"errors"

	"go.uber.org/zap"

	"course-planner/internal/catalog"
	"course-planner/internal/model"
)

// ── 课程目录业务错误 ──

var (
	ErrTemplateNotFound = errors.New("课程模板不存在")
	ErrTitleNotFound    = errors.New("课程不存在")
)

// SelectionOption 选课面板中的一个可选项
// 关联对只出现一次，Key 为 "idA,idB"
type SelectionOption struct {
	Key      string                   `json:"key"`
	Type     string                   `json:"type"`
	Sessions []model.ScheduledSession `json:"sessions"`
	Disabled bool                     `json:"disabled"`
}

// CatalogService 课程目录查询接口（选课面板使用）
type CatalogService interface {
	// Titles 课程名称列表，q 非空时按子串过滤（不区分大小写）
	Titles(q string) []string
	// Template 按 id 查询模板
	Template(id string) (model.LectureTemplate, error)
	// Options 某门课程的可选项，含预览草稿与禁用标记
	Options(title string) ([]SelectionOption, error)
}

type catalogService struct {
	catalog   *catalog.Catalog
	planner   PlannerService
	projector *WeekProjector
	logger    *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(cat *catalog.Catalog, planner PlannerService, projector *WeekProjector, logger *zap.Logger) CatalogService {
	return &catalogService{
		catalog:   cat,
		planner:   planner,
		projector: projector,
		logger:    logger,
	}
}

func (s *catalogService) Titles(q string) []string {
	if q == "" {
		return s.catalog.AllTitles()
	}
	return s.catalog.SearchTitles(q)
}

func (s *catalogService) Template(id string) (model.LectureTemplate, error) {
	t, ok := s.catalog.TemplateByID(id)
	if !ok {
		return model.LectureTemplate{}, ErrTemplateNotFound
	}
	return t, nil
}

// Options 按目录顺序列出可选项
//
// 关联对以先出现的一方为 First；任一 id 已在课表中即标记 Disabled。
func (s *catalogService) Options(title string) ([]SelectionOption, error) {
	templates := s.catalog.TemplatesForTitle(title)
	if len(templates) == 0 {
		return nil, ErrTitleNotFound
	}

	seen := make(map[string]bool, len(templates))
	options := make([]SelectionOption, 0, len(templates))
	for _, t := range templates {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true

		group := []model.LectureTemplate{t}
		var sel Selection = SingleSelection{ID: t.ID}
		if t.IsLinked() {
			partner, ok := s.catalog.TemplateByID(t.LinkedID)
			if ok {
				seen[partner.ID] = true
				group = append(group, partner)
				sel = PairSelection{First: t.ID, Second: partner.ID}
			}
		}

		opt := SelectionOption{
			Key:      sel.Key(),
			Type:     model.NormalizeType(t.Type),
			Sessions: make([]model.ScheduledSession, 0, len(group)),
		}
		for _, g := range group {
			draft, err := s.projector.Project(g)
			if err != nil {
				s.logger.Error("模板投影失败", zap.String("template_id", g.ID), zap.Error(err))
				return nil, err
			}
			draft.BackgroundColor = ColorFor(draft.Type)
			opt.Sessions = append(opt.Sessions, draft)
			if s.planner.IsPresent(g.ID) {
				opt.Disabled = true
			}
		}
		options = append(options, opt)
	}
	return options, nil
}
