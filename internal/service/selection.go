package service

import (
	"errors"
	"strings"
)

// ErrInvalidSelectionKey 选择键格式错误
var ErrInvalidSelectionKey = errors.New("无效的选择键")

// Selection 选择请求：单个模板或一对关联模板
type Selection interface {
	// Key 编码为边界层使用的字符串键
	Key() string
	isSelection()
}

// SingleSelection 按单个模板 id 选择
type SingleSelection struct {
	ID string
}

// PairSelection 按关联对选择
type PairSelection struct {
	First  string
	Second string
}

func (s SingleSelection) Key() string { return s.ID }
func (p PairSelection) Key() string   { return p.First + "," + p.Second }

func (SingleSelection) isSelection() {}
func (PairSelection) isSelection()   {}

// ParseSelectionKey 在边界层一次性解码 "id" 或 "idA,idB"
func ParseSelectionKey(key string) (Selection, error) {
	first, second, isPair := strings.Cut(key, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return nil, ErrInvalidSelectionKey
	}
	if !isPair {
		return SingleSelection{ID: first}, nil
	}

	second = strings.TrimSpace(second)
	if second == "" || strings.Contains(second, ",") || second == first {
		return nil, ErrInvalidSelectionKey
	}
	return PairSelection{First: first, Second: second}, nil
}
