// Package normalize derives canonical values from the free-text fields of a
// roster export. Everything here is rule-table driven so the tables can be
// unit-tested and extended without touching the pipeline.
package normalize

import (
	"sort"
	"strings"
)

// SentinelCity is returned when no vocabulary entry matches a location.
const SentinelCity = "其他"

// Cities is the canonical city vocabulary. Order matters for the substring
// scan: the first vocabulary entry found anywhere in the input wins.
var Cities = []string{
	"北京", "上海", "天津", "重庆", "深圳", "广州", "杭州", "成都", "武汉", "西安",
	"南京", "苏州", "厦门", "青岛", "大连", "郑州", "长沙", "合肥", "福州", "昆明",
	"济南", "哈尔滨", "沈阳", "长春", "石家庄", "太原", "南昌", "贵阳", "南宁", "兰州",
	"银川", "海口", "珠海", "佛山", "东莞", "中山", "惠州", "无锡", "常州", "宁波",
	"温州", "嘉兴", "绍兴", "台州", "烟台", "潍坊", "临沂", "唐山", "保定", "廊坊",
	"洛阳", "宜昌", "襄阳", "岳阳", "常德", "株洲", "湘潭", "衡阳", "南通", "徐州",
	"扬州", "泰州", "镇江", "芜湖", "马鞍山", "淮安", "连云港", "淮南", "泉州", "莆田",
	"漳州", "龙岩", "三明", "南平", "宁德", "九江", "赣州", "吉安", "萍乡", "新余",
	"鹰潭", "景德镇", "威海", "日照", "德州", "聊城", "滨州", "菏泽", "济宁", "枣庄",
	"淄博", "包头", "呼和浩特", "鄂尔多斯", "通辽", "赤峰", "西宁", "拉萨", "乌鲁木齐",
	"桂林", "柳州", "梧州", "北海", "钦州", "防城港", "玉林", "贵港", "河池", "来宾",
	"崇左", "三亚", "儋州", "五指山", "琼海", "文昌", "东方", "定安", "屯昌", "澄迈",
	"东营",
}

// LocationRule maps a full-text pattern to a city. Rule lists are scanned
// in order; the first pattern contained in the input wins.
type LocationRule struct {
	Pattern string
	City    string
}

// SpecialLocations lists known problematic full-text inputs and their city.
// Checked last, after the structural rules and the substring scan.
var SpecialLocations = []LocationRule{
	{"福建省莆田", "莆田"},
	{"山东省东营", "东营"},
	{"广东惠州", "惠州"},
	{"广东东莞", "东莞"},
	{"浙江杭州", "杭州"},
	{"浙江宁波", "宁波"},
	{"江苏苏州", "苏州"},
	{"江苏南京", "南京"},
}

// Extractor resolves free-text locations against a vocabulary. The zero
// value is not usable; construct with NewExtractor.
type Extractor struct {
	cities   []string
	inVocab  map[string]bool
	specials []LocationRule
}

// NewExtractor builds an Extractor from the built-in tables plus any extra
// cities and full-text overrides (rule-file additions). Overrides are
// appended after the built-in rules, sorted by pattern, so overlapping
// patterns always resolve the same way.
func NewExtractor(extraCities []string, overrides map[string]string) *Extractor {
	e := &Extractor{
		cities:   append(append([]string(nil), Cities...), extraCities...),
		inVocab:  make(map[string]bool, len(Cities)+len(extraCities)),
		specials: append([]LocationRule(nil), SpecialLocations...),
	}
	for _, c := range e.cities {
		e.inVocab[c] = true
	}
	patterns := make([]string, 0, len(overrides))
	for p := range overrides {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	for _, p := range patterns {
		e.specials = append(e.specials, LocationRule{Pattern: p, City: overrides[p]})
	}
	return e
}

// ExtractCity derives one canonical city name from a free-text location.
// Precedence: "省/市/区" slash format, then space-separated "省 市 区"
// tokens, then a plain substring scan of the vocabulary, then the special
// override table. Anything else resolves to SentinelCity.
//
// This is a heuristic, not an address parser: a city name appearing as a
// substring of an unrelated token is a false positive we accept.
func (e *Extractor) ExtractCity(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return SentinelCity
	}

	if strings.Contains(location, "/") {
		parts := strings.Split(location, "/")
		if len(parts) >= 2 {
			city := strings.TrimSpace(strings.TrimSuffix(parts[1], "市"))
			if e.inVocab[city] {
				return city
			}
		}
	}

	if strings.Contains(location, " ") {
		for _, part := range strings.Fields(location) {
			city := strings.TrimSuffix(part, "市")
			if e.inVocab[city] {
				return city
			}
		}
	}

	for _, city := range e.cities {
		if strings.Contains(location, city) {
			return city
		}
	}

	for _, rule := range e.specials {
		if strings.Contains(location, rule.Pattern) {
			return rule.City
		}
	}

	return SentinelCity
}
