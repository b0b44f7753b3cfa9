package taxonomy

import "genka/internal/core"

// CodeRule maps a site expense code number to its target taxonomy element.
// Review is set for codes whose target is a provisional best match.
type CodeRule struct {
	Code      int
	ElementID string
	Label     string
	Review    string
}

// KeywordRule maps a substring of a free-text description to a target element.
type KeywordRule struct {
	Keyword   string
	ElementID string
	Label     string
	Category  core.Category
}

// The site code system and the national cost taxonomy number things
// differently, so 30s and 50s are mapped by name.
var defaultCodes = []CodeRule{
	// 直接工事費: element numbers match the code
	{11, "E11", "材料費", ""},
	{12, "E12", "機械経費", ""},
	{13, "E13", "機械経費（損料）", ""},
	{14, "E14", "外注費", ""},
	{15, "E15", "労務費", ""},

	// 共通仮設費
	{31, "F32", "調査・準備費", ""},
	{32, "F31", "運搬費", ""},
	{33, "F39", "営繕費", ""},
	{34, "F35", "安全対策費", ""},
	{35, "F36", "水道光熱費", ""},
	{36, "F38", "役務費", ""},
	{37, "F38", "役務費", "REVIEW: 技術管理費→役務費として暫定分類"},
	{38, "F34", "公害防止対策費", "REVIEW: 地元対策費→公害防止対策費として暫定分類"},
	{39, "F39", "営繕費", "REVIEW: 共通仮設雑費→営繕費として暫定分類"},

	// 現場管理費
	{51, "F51", "労務管理費", ""},
	{52, "F53", "租税公課", ""},
	{53, "F55", "保険料", ""},
	{54, "F56", "従業員給料手当", ""},
	{55, "F52", "法定福利費", ""},
	{56, "F59", "福利厚生費", ""},
	{57, "F60", "事務用品費", ""},
	{58, "F61", "旅費・交通費・通信費", ""},
	{59, "F67", "雑費", "REVIEW: 現場管理費/水道光熱費→雑費として暫定分類"},
	{60, "F67", "雑費", ""},
}

// defaultKeywords is the petty-cash priority list. It is consulted top to
// bottom and the first keyword contained in the description wins, so more
// specific keywords must come before generic ones.
var defaultKeywords = []KeywordRule{
	{"トーチバーナー", "F39", "営繕費", core.CommonTemporary},
	{"釘", "E11", "材料費", core.DirectWork},
	{"椅子", "F39", "営繕費", core.CommonTemporary},
	{"水道材料", "E11", "材料費", core.DirectWork},
	{"掃除機", "F67", "雑費", core.SiteManagement},
	{"お茶", "F67", "雑費", core.SiteManagement},
	{"床材料", "F39", "営繕費", core.CommonTemporary},
	{"電材", "E11", "材料費", core.DirectWork},
	{"マグネットクリップ", "F60", "事務用品費", core.SiteManagement},
}

// CatchAll is returned when neither the code table nor the keyword list applies.
var CatchAll = core.TaxonomyEntry{
	ElementID: "F67",
	Label:     "雑費",
	Category:  core.SiteManagement,
}

// DefaultCodes returns a copy of the built-in code table.
func DefaultCodes() []CodeRule {
	return append([]CodeRule(nil), defaultCodes...)
}

// DefaultKeywords returns a copy of the built-in keyword priority list.
func DefaultKeywords() []KeywordRule {
	return append([]KeywordRule(nil), defaultKeywords...)
}
