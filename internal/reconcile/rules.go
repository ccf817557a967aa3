package reconcile

import (
	"regexp"
	"strings"
)

// Test-data detection. Only members matching these rules may ever be
// deleted by reconciliation; every other unmatched member is retained.
var (
	testNamePrefixes = regexp.MustCompile(`(?i)^(test|demo|测试|示例|演示)`)
	placeholderInfix = "用户_"
	placeholderNames = map[string]bool{
		"John Doe": true,
		"张三":       true,
		"李四":       true,
		"王五":       true,
	}
)

// Rules parameterizes a reconciliation run.
type Rules struct {
	// ExtraTestPatterns extends the built-in test-data regexes.
	ExtraTestPatterns []*regexp.Regexp
	// ProtectedNames are never deleted, whatever they match.
	ProtectedNames map[string]bool
	// DefaultPassword is bcrypt-hashed once per run for inserted members.
	DefaultPassword string
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		ProtectedNames:  map[string]bool{},
		DefaultPassword: "deepsea2024",
	}
}

// IsTestData reports whether a member name marks it as deletable
// test/placeholder data.
func (r Rules) IsTestData(name string) bool {
	if r.ProtectedNames[name] {
		return false
	}
	if testNamePrefixes.MatchString(name) || placeholderNames[name] {
		return true
	}
	if strings.Contains(name, placeholderInfix) {
		return true
	}
	for _, re := range r.ExtraTestPatterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
