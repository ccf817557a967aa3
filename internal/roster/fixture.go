package roster

import (
	"fmt"
	"math/rand"
	"strings"
)

// FixtureOptions controls the generated roster file.
type FixtureOptions struct {
	Seed        int64
	Rows        int
	MultiLine   bool // embed newlines inside quoted bios
	NamelessPct int  // percentage of rows with no usable name, 0-100
}

var fixtureCities = []string{
	"广东省/深圳市/南山区", "北京", "浙江省/杭州市/西湖区", "上海 浦东新区",
	"江苏省 苏州市 园区", "四川省/成都市/高新区", "火星", "",
}

var fixtureIndustries = []string{"互联网", "教育", "金融", "自由职业", "AI产品"}

// BuildFixture renders a deterministic roster export for tests. The same
// seed and options always produce the same bytes.
func BuildFixture(opts FixtureOptions) []byte {
	rng := rand.New(rand.NewSource(opts.Seed))
	var b strings.Builder
	b.WriteString("\ufeff星球编号,微信昵称,星球昵称,微信ID,星球头像,行业,身份,自我介绍,个人标签,城市,资源,手机号\n")

	for i := 0; i < opts.Rows; i++ {
		id := 1000 + i
		name := fmt.Sprintf("成员%03d", i)
		alt := fmt.Sprintf("wx昵称%03d", i)
		if opts.NamelessPct > 0 && rng.Intn(100) < opts.NamelessPct {
			name = "."
			alt = ""
		}
		bio := fmt.Sprintf("做AI产品的第%d年", i%9+1)
		if opts.MultiLine && i%3 == 0 {
			bio = fmt.Sprintf("\"第一行介绍, 带逗号\n第二行 %d\"", i)
		}
		city := fixtureCities[rng.Intn(len(fixtureCities))]
		phone := ""
		if i%4 != 0 {
			phone = fmt.Sprintf("138%08d", id)
		}
		fmt.Fprintf(&b, "%d,%s,%s,wxid_%d,https://cdn.example.com/a/%d.jpg,%s,开发者,%s,AI、出海、编程,%s,,%s\n",
			id, alt, name, id, id,
			fixtureIndustries[rng.Intn(len(fixtureIndustries))],
			bio, city, phone)
	}
	return []byte(b.String())
}
