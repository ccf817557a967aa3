package normalize

import "testing"

func TestExtractCity(t *testing.T) {
	e := NewExtractor(nil, nil)

	tests := []struct {
		in   string
		want string
	}{
		{"广东省/深圳市/南山区", "深圳"},
		{"浙江省/杭州市/西湖区", "杭州"},
		{"江苏省 苏州市 园区", "苏州"},
		{"上海 浦东新区", "上海"},
		{"杭州", "杭州"},
		{"我在北京工作", "北京"},
		{"福建省莆田市", "莆田"},
		{"火星", SentinelCity},
		{"", SentinelCity},
		{"   ", SentinelCity},
	}
	for _, tt := range tests {
		if got := e.ExtractCity(tt.in); got != tt.want {
			t.Errorf("ExtractCity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractCity_Deterministic(t *testing.T) {
	e := NewExtractor(nil, nil)
	in := "广东省/深圳市/南山区"
	want := e.ExtractCity(in)
	for i := 0; i < 100; i++ {
		if got := e.ExtractCity(in); got != want {
			t.Fatalf("iteration %d: got %q, want %q", i, got, want)
		}
	}
}

func TestExtractCity_ExtraVocabAndOverrides(t *testing.T) {
	e := NewExtractor([]string{"喀什"}, map[string]string{"南疆地区": "喀什"})
	if got := e.ExtractCity("新疆/喀什市/某区"); got != "喀什" {
		t.Fatalf("extra vocabulary ignored: %q", got)
	}
	if got := e.ExtractCity("南疆地区"); got != "喀什" {
		t.Fatalf("override ignored: %q", got)
	}
}

func TestExtractCity_OverlappingOverridesDeterministic(t *testing.T) {
	// Both override patterns are contained in the input; the rules are
	// ordered, so the same one must win on every construction.
	overrides := map[string]string{"南疆": "喀什", "疆地": "和田"}
	for i := 0; i < 200; i++ {
		e := NewExtractor(nil, overrides)
		if got := e.ExtractCity("南疆地区"); got != "喀什" {
			t.Fatalf("iteration %d: got %q, want 喀什", i, got)
		}
	}
}

func TestInferCity_MultipleEmployersDeterministic(t *testing.T) {
	// Company string names two employers; the first table entry wins.
	for i := 0; i < 200; i++ {
		got, ok := InferCity("某人", "", "腾讯百度战略合作部", "")
		if !ok || got != "深圳" {
			t.Fatalf("iteration %d: got %q,%v want 深圳,true", i, got, ok)
		}
	}
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"AI、出海、编程", []string{"AI", "出海", "编程"}},
		{"a,b，c;d；e、f/g", []string{"a", "b", "c", "d", "e"}}, // capped at 5
		{"无", nil},
		{"", nil},
		{" AI , , 产品 ", []string{"AI", "产品"}},
	}
	for _, tt := range tests {
		got := SplitTags(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("SplitTags(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitTags(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestTagsJSON_EmptyIsArray(t *testing.T) {
	if got := TagsJSON(""); got != "[]" {
		t.Fatalf("expected empty JSON array, got %q", got)
	}
	if got := TagsJSON("AI、编程"); got != `["AI","编程"]` {
		t.Fatalf("unexpected serialization: %q", got)
	}
}

func TestSynthesizeLoginID(t *testing.T) {
	tests := []struct {
		phone, extID, contactID string
		row                     int
		want                    string
	}{
		{"13800138000", "1001", "wx1", 2, "13800138000"},
		{"１３８００１３８０００", "1001", "wx1", 2, "13800138000"}, // full-width digits folded
		{"无", "1001", "wx1", 2, "S1001"},
		{"123", "1001", "wx1", 2, "S1001"}, // too short to be real
		{"", "", "wx1", 2, "wx_wx1"},
		{"", "", "", 17, "user_17"},
	}
	for _, tt := range tests {
		if got := SynthesizeLoginID(tt.phone, tt.extID, tt.contactID, tt.row); got != tt.want {
			t.Errorf("SynthesizeLoginID(%q,%q,%q,%d) = %q, want %q",
				tt.phone, tt.extID, tt.contactID, tt.row, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("深海圈成员", 3); got != "深海圈" {
		t.Fatalf("rune truncation wrong: %q", got)
	}
	if got := Truncate("ok", 10); got != "ok" {
		t.Fatalf("short string changed: %q", got)
	}
}

func TestInferCity(t *testing.T) {
	tests := []struct {
		name, bio, company, phone string
		want                      string
		ok                        bool
	}{
		{"杨昌", "", "", "", "北京", true}, // pinned name
		{"某人", "在中关村做AI创业", "", "", "北京", true},
		{"某人", "", "腾讯", "", "深圳", true},
		{"某人", "", "ByteDance Ltd", "", "北京", true},
		{"某人", "", "", "广东省/深圳市/龙岗区", "深圳", true},
		{"某人", "没有线索", "个体", "13800000000", "", false},
	}
	for _, tt := range tests {
		got, ok := InferCity(tt.name, tt.bio, tt.company, tt.phone)
		if got != tt.want || ok != tt.ok {
			t.Errorf("InferCity(%q,%q,%q,%q) = %q,%v want %q,%v",
				tt.name, tt.bio, tt.company, tt.phone, got, ok, tt.want, tt.ok)
		}
	}
}

func TestValidStoredLocation(t *testing.T) {
	if ValidStoredLocation("") || ValidStoredLocation("【公告】请查看最新的课程安排") {
		t.Fatal("leaked text accepted as location")
	}
	if !ValidStoredLocation("深圳") {
		t.Fatal("plain city rejected")
	}
}
