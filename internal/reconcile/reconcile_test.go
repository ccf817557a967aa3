package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rostersync/internal/normalize"
	"rostersync/internal/roster"
	"rostersync/internal/store"
)

func testPlanner(t *testing.T) *Planner {
	t.Helper()
	hash, err := HashPassword("deepsea2024")
	require.NoError(t, err)
	return &Planner{
		Extractor:    normalize.NewExtractor(nil, nil),
		Rules:        DefaultRules(),
		PasswordHash: hash,
	}
}

func rec(row int, name, phone, location string) roster.Record {
	return roster.Record{
		Row:        row,
		ExternalID: "1000",
		Name:       name,
		Phone:      phone,
		Location:   location,
		Industry:   "互联网",
		Identity:   "开发者",
		Bio:        "简介",
	}
}

func TestPlan_SkipWhenFieldsEqual(t *testing.T) {
	p := testPlanner(t)

	existing := store.User{
		ID: "u1", Name: "小明", Phone: "13800000001",
		Location: "深圳", Company: "互联网", Position: "开发者", Bio: "简介",
	}
	plan := p.Build([]roster.Record{rec(2, "小明", "13800000001", "广东省/深圳市/南山区")}, []store.User{existing})

	require.Equal(t, 1, plan.Skipped)
	require.Empty(t, plan.Updates)
	require.Empty(t, plan.Inserts)
	require.Empty(t, plan.Deletes)
}

func TestPlan_UpdateTouchesOnlyChangedFields(t *testing.T) {
	p := testPlanner(t)

	existing := store.User{
		ID: "u1", Name: "小明", Phone: "13800000001",
		Location: "其他", Company: "互联网", Position: "开发者", Bio: "简介",
	}
	plan := p.Build([]roster.Record{rec(2, "小明", "13800000001", "广东省/深圳市/南山区")}, []store.User{existing})

	require.Len(t, plan.Updates, 1)
	up := plan.Updates[0]
	require.Equal(t, map[string]string{"location": "深圳"}, up.Fields)
	require.Equal(t, []FieldChange{{Field: "location", Old: "其他", New: "深圳"}}, up.Changes)
}

func TestPlan_MatchByPhoneWhenNameDiffers(t *testing.T) {
	p := testPlanner(t)

	existing := store.User{
		ID: "u1", Name: "旧昵称", Phone: "13800000001",
		Location: "深圳", Company: "互联网", Position: "开发者", Bio: "简介",
	}
	plan := p.Build([]roster.Record{rec(2, "新昵称", "13800000001", "深圳")}, []store.User{existing})

	require.Empty(t, plan.Inserts, "phone match should prevent an insert")
	require.Equal(t, 1, plan.Skipped)
}

func TestPlan_UnmatchedClassification(t *testing.T) {
	p := testPlanner(t)

	users := []store.User{
		{ID: "u1", Name: "test_account"},
		{ID: "u2", Name: "测试用户甲"},
		{ID: "u3", Name: "张三"},
		{ID: "u4", Name: "用户_9527"},
		{ID: "u5", Name: "真实成员"},
	}
	plan := p.Build(nil, users)

	require.Len(t, plan.Deletes, 4)
	require.Len(t, plan.Extras, 1)
	require.Equal(t, "真实成员", plan.Extras[0].Name)
}

func TestPlan_ProtectedNameNeverDeleted(t *testing.T) {
	p := testPlanner(t)
	p.Rules.ProtectedNames["测试用户甲"] = true

	plan := p.Build(nil, []store.User{{ID: "u1", Name: "测试用户甲"}})
	require.Empty(t, plan.Deletes)
	require.Len(t, plan.Extras, 1)
}

func TestPlan_InsertDerivesFields(t *testing.T) {
	p := testPlanner(t)

	r := roster.Record{
		Row: 5, ExternalID: "1042", Name: "新成员", ContactID: "wx42",
		Location: "浙江省/杭州市/西湖区", Industry: "教育", Identity: "老师",
		Bio: "简介", RawTags: "AI、出海", Phone: "",
	}
	plan := p.Build([]roster.Record{r}, nil)

	require.Len(t, plan.Inserts, 1)
	u := plan.Inserts[0].User
	require.Equal(t, "新成员", u.Name)
	require.Equal(t, "S1042", u.Phone)
	require.Equal(t, "杭州", u.Location)
	require.Equal(t, `["AI","出海"]`, u.Skills)
	require.Equal(t, "USER", u.Role)
	require.NotEmpty(t, u.Password)
	require.True(t, u.IsActive)
}

func TestPlan_FullWidthPhoneMatchesPriorInsert(t *testing.T) {
	p := testPlanner(t)

	// A member inserted by an earlier run carries the folded phone; the
	// same roster row, parsed again with full-width digits, must match it
	// instead of inserting a duplicate.
	data := []byte("星球编号,微信昵称,星球昵称,微信ID,星球头像,行业,身份,自我介绍,个人标签,城市,资源,手机号\n" +
		"1001,wx,改名成员,wxid,,互联网,开发者,简介,标签,深圳,,１３８００００００２０\n")
	parsed := roster.Parse(data)
	require.Len(t, parsed.Records, 1)

	existing := store.User{
		ID: "u1", Name: "旧昵称", Phone: "13800000020",
		Location: "深圳", Company: "互联网", Position: "开发者", Bio: "简介",
	}
	plan := p.Build(parsed.Records, []store.User{existing})
	require.Empty(t, plan.Inserts)
	require.Empty(t, plan.Deletes)
}

func TestApply_InsertFailureIsolation(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()
	p := testPlanner(t)

	// Two records synthesize the same phone: the second insert hits the
	// unique constraint and must not abort the batch.
	records := []roster.Record{
		rec(2, "成员一", "13800000001", "深圳"),
		rec(3, "成员二", "13800000001", "北京"),
		rec(4, "成员三", "13800000002", "上海"),
	}
	plan := p.Build(records, nil)
	require.Len(t, plan.Inserts, 3)

	out := Apply(ctx, st, plan, zap.NewNop(), false)
	require.Equal(t, 2, out.Inserted)
	require.Equal(t, 1, out.Failed)

	failed := 0
	for _, op := range out.Operations {
		if op.Error != "" {
			failed++
			require.Equal(t, "insert", op.Type)
		}
	}
	require.Equal(t, 1, failed)

	n, err := st.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestApply_CountConsistency(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()
	p := testPlanner(t)

	// Seed: one matching member, one to update, one test account.
	_, err = st.CreateUser(ctx, store.User{
		Name: "老成员", Phone: "13800000010",
		Location: "深圳", Company: "互联网", Position: "开发者", Bio: "简介",
	})
	require.NoError(t, err)
	_, err = st.CreateUser(ctx, store.User{
		Name: "待更新", Phone: "13800000011",
		Location: "其他", Company: "互联网", Position: "开发者", Bio: "简介",
	})
	require.NoError(t, err)
	_, err = st.CreateUser(ctx, store.User{Name: "demo账号", Phone: "13800000012"})
	require.NoError(t, err)

	before, err := st.CountUsers(ctx)
	require.NoError(t, err)

	records := []roster.Record{
		rec(2, "老成员", "13800000010", "深圳"),
		rec(3, "待更新", "13800000011", "杭州"),
		rec(4, "新成员", "13800000013", "北京"),
	}
	users, err := st.Users(ctx)
	require.NoError(t, err)
	plan := p.Build(records, users)
	out := Apply(ctx, st, plan, zap.NewNop(), false)

	require.Equal(t, len(records), out.Inserted+out.Updated+out.Skipped)

	after, err := st.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, before+out.Inserted-out.Deleted, after)
	require.Equal(t, 1, out.Deleted, "demo account should be removed")
	require.Equal(t, 1, out.Updated)
	require.Equal(t, 1, out.Skipped)
	require.Equal(t, 1, out.Inserted)
}

func TestApply_DryRunWritesNothing(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()
	p := testPlanner(t)

	plan := p.Build([]roster.Record{rec(2, "新成员", "13800000001", "深圳")}, nil)
	out := Apply(ctx, st, plan, zap.NewNop(), true)
	require.Equal(t, 1, out.Inserted)

	n, err := st.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestRules_IsTestData(t *testing.T) {
	r := DefaultRules()
	for _, name := range []string{"test123", "Demo会员", "测试号", "示例数据", "演示人", "用户_42", "张三", "John Doe"} {
		if !r.IsTestData(name) {
			t.Errorf("expected %q to be test data", name)
		}
	}
	for _, name := range []string{"正式成员", "陈demo", "小测试迷"} {
		if r.IsTestData(name) {
			t.Errorf("did not expect %q to be test data", name)
		}
	}
}
