package translation

import "strings"

// rulePair is one directional substitution. Rules apply in slice order as
// plain substring replacements.
type rulePair struct {
	from string
	to   string
}

var cnToEnRules = []rulePair{
	{"保证金", "margin"},
	{"上调", "increase"},
	{"下调", "decrease"},
	{"评级", "rating"},
	{"展望", "outlook"},
	{"负面", "negative"},
	{"正面", "positive"},
	{"补贴", "subsidy"},
	{"资助", "grant"},
	{"入股", "equity stake"},
	{"出口管制", "export controls"},
	{"逢低", "buy the dip"},
	{"回调", "pullback"},
	{"阶段性", "phase"},
	{"调整", "correction"},
	{"价格", "price"},
	{"水平", "level"},
	{"触发", "trigger"},
	{"失效", "invalidate"},
}

var enToCnRules = []rulePair{
	{"margin", "保证金"},
	{"increase", "上调"},
	{"decrease", "下调"},
	{"rating", "评级"},
	{"outlook", "展望"},
	{"negative", "负面"},
	{"positive", "正面"},
	{"subsidy", "补贴"},
	{"grant", "资助"},
	{"equity stake", "入股"},
	{"export controls", "出口管制"},
	{"buy the dip", "逢低"},
	{"pullback", "回调"},
	{"phase", "阶段性"},
	{"correction", "调整"},
	{"price", "价格"},
	{"level", "水平"},
	{"trigger", "触发"},
	{"invalidate", "失效"},
}

func applyRules(text string, rules []rulePair) string {
	for _, rule := range rules {
		text = strings.ReplaceAll(text, rule.from, rule.to)
	}
	return text
}
