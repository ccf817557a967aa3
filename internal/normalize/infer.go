package normalize

import "strings"

// KnownMemberCities pins members whose city was confirmed manually.
// Consulted before any heuristic.
var KnownMemberCities = map[string]string{
	"杨昌": "北京",
}

// cityKeywords maps a city to phrases that imply it when found in a bio.
var cityKeywords = map[string][]string{
	"北京": {"北京", "帝都", "Beijing", "海淀", "朝阳", "中关村", "望京"},
	"上海": {"上海", "魔都", "Shanghai", "浦东", "徐汇", "黄浦", "陆家嘴"},
	"深圳": {"深圳", "鹏城", "Shenzhen", "南山", "福田", "龙岗"},
	"广州": {"广州", "羊城", "Guangzhou", "天河", "越秀", "番禺"},
	"杭州": {"杭州", "Hangzhou", "西湖", "滨江", "萧山"},
	"成都": {"成都", "Chengdu", "锦江"},
	"武汉": {"武汉", "Wuhan", "江汉", "武昌", "汉口"},
	"西安": {"西安", "Xi'an", "雁塔", "碑林"},
	"南京": {"南京", "Nanjing", "鼓楼", "玄武", "建邺"},
	"苏州": {"苏州", "Suzhou", "姑苏"},
	"重庆": {"重庆", "Chongqing", "渝中", "江北"},
	"天津": {"天津", "Tianjin", "滨海"},
	"厦门": {"厦门", "Xiamen", "思明", "湖里"},
}

// keywordOrder fixes the scan order over cityKeywords so a bio mentioning
// two cities always resolves the same way.
var keywordOrder = []string{
	"北京", "上海", "深圳", "广州", "杭州", "成都", "武汉", "西安", "南京", "苏州", "重庆", "天津", "厦门",
}

// employerCities maps well-known employers to their home city. Scanned in
// order: a company string naming two employers always resolves to the
// first one listed.
var employerCities = []struct {
	employer string
	city     string
}{
	{"腾讯", "深圳"},
	{"阿里巴巴", "杭州"},
	{"阿里", "杭州"},
	{"字节跳动", "北京"},
	{"字节", "北京"},
	{"百度", "北京"},
	{"美团", "北京"},
	{"京东", "北京"},
	{"网易", "杭州"},
	{"华为", "深圳"},
	{"小米", "北京"},
	{"滴滴", "北京"},
	{"bytedance", "北京"},
	{"alibaba", "杭州"},
	{"tencent", "深圳"},
	{"baidu", "北京"},
}

// InferCity guesses a city for an entity whose stored location is unusable,
// in order: confirmed name pins, bio keywords, employer table, then a
// slash-format address accidentally stored in the phone field.
// Returns ("", false) when nothing matches.
func InferCity(name, bio, company, phone string) (string, bool) {
	if city, ok := KnownMemberCities[name]; ok {
		return city, true
	}

	if bio != "" {
		bioLower := strings.ToLower(bio)
		for _, city := range keywordOrder {
			for _, kw := range cityKeywords[city] {
				if strings.Contains(bioLower, strings.ToLower(kw)) {
					return city, true
				}
			}
		}
	}

	if company != "" {
		companyLower := strings.ToLower(company)
		for _, ec := range employerCities {
			if strings.Contains(companyLower, ec.employer) {
				return ec.city, true
			}
		}
	}

	if strings.Contains(phone, "/") {
		for _, city := range keywordOrder {
			if strings.Contains(phone, city) {
				return city, true
			}
		}
	}

	return "", false
}

// ValidStoredLocation reports whether an already-stored location looks like
// a city name rather than leaked free text.
func ValidStoredLocation(loc string) bool {
	return loc != "" &&
		len([]rune(loc)) <= 10 &&
		!strings.Contains(loc, "【") &&
		!strings.Contains(loc, "】")
}
