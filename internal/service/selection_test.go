package service

import (
	"errors"
	"testing"
)

func TestParseSelectionKey(t *testing.T) {
	cases := []struct {
		key     string
		want    Selection
		wantErr bool
	}{
		{"L1", SingleSelection{ID: "L1"}, false},
		{" L1 ", SingleSelection{ID: "L1"}, false},
		{"L1,B1", PairSelection{First: "L1", Second: "B1"}, false},
		{"L1, B1", PairSelection{First: "L1", Second: "B1"}, false},
		{"", nil, true},
		{",B1", nil, true},
		{"L1,", nil, true},
		{"L1,L1", nil, true},
		{"a,b,c", nil, true},
	}
	for _, tc := range cases {
		got, err := ParseSelectionKey(tc.key)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidSelectionKey) {
				t.Errorf("ParseSelectionKey(%q) 期望 ErrInvalidSelectionKey，实际 %v", tc.key, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSelectionKey(%q) 失败: %v", tc.key, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSelectionKey(%q) 期望 %#v，实际 %#v", tc.key, tc.want, got)
		}
	}
}

func TestSelection_KeyRoundTrip(t *testing.T) {
	for _, key := range []string{"L1", "L1,B1"} {
		sel := mustSelection(t, key)
		if sel.Key() != key {
			t.Errorf("期望 Key()=%q，实际 %q", key, sel.Key())
		}
	}
}
