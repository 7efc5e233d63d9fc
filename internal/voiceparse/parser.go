// Package voiceparse turns a finished speech transcript into a best-effort
// structured expense guess. Extraction is heuristic and total: every input,
// including the empty string, yields a defined result, never an error.
package voiceparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultCurrency is assumed when the transcript names no currency at all.
const DefaultCurrency = "CNY"

// ParsedExpense is the extractor's best-effort guess. Nil fields mean the
// transcript gave no usable signal; Notes always carries the trimmed verbatim
// transcript.
type ParsedExpense struct {
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency"`
	Category *string  `json:"category"`
	Method   *string  `json:"method"`
	Notes    string   `json:"notes"`
}

type keywordEntry struct {
	label    string
	keywords []string
}

// Ordered: the first matching entry wins. This is a deliberate, simple
// tie-break, not a confidence ranking.
var categoryKeywords = []keywordEntry{
	{"餐饮", []string{"吃", "餐", "饭", "早餐", "午餐", "晚餐", "宵夜", "美食", "餐厅", "餐馆", "点餐", "饮料", "奶茶"}},
	{"交通", []string{"打车", "出租", "地铁", "公交", "滴滴", "高铁", "动车", "火车", "飞机", "车票", "船票", "交通", "机票"}},
	{"住宿", []string{"酒店", "民宿", "住宿", "房费", "旅馆", "入住"}},
	{"门票", []string{"门票", "景区", "景点", "入园", "展览", "博物馆"}},
	{"购物", []string{"购物", "买", "买了", "纪念品", "特产", "免税", "商场"}},
	{"娱乐", []string{"歌剧", "演出", "娱乐", "游玩", "体验", "项目"}},
}

var methodKeywords = []keywordEntry{
	{"移动支付", []string{"微信", "支付宝", "扫码", "二维码", "花呗"}},
	{"信用卡", []string{"信用卡", "刷卡", "visa", "master", "amex"}},
	{"现金", []string{"现金", "付现金", "零钱", "钞票"}},
}

var currencyPatterns = []struct {
	matcher *regexp.Regexp
	code    string
}{
	{regexp.MustCompile(`(?i)(美元|美金|usd)`), "USD"},
	{regexp.MustCompile(`(?i)(日元|日币|jpy)`), "JPY"},
	{regexp.MustCompile(`(?i)(欧元|eur)`), "EUR"},
	{regexp.MustCompile(`(?i)(港币|hkd)`), "HKD"},
	{regexp.MustCompile(`(?i)(新台币|ntd|twd)`), "TWD"},
	{regexp.MustCompile(`(?i)(韩元|krw)`), "KRW"},
}

var (
	cnyMarkers = regexp.MustCompile(`(?i)(人民币|rmb|¥|￥|元|块)`)

	amountLeading  = regexp.MustCompile(`(?i)(?:¥|￥|人民币|RMB|美元|美金|USD|日元|JPY|欧元|EUR|港币|HKD|新台币|NTD|TWD|韩元|KRW)\s*(\d+(?:\.\d+)?)`)
	amountTrailing = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:元|块|人民币|RMB|美元|美金|USD|日元|JPY|欧元|EUR|港币|HKD|新台币|NTD|TWD|韩元|KRW)`)
	anyNumber      = regexp.MustCompile(`\d+(?:\.\d+)?`)

	commaNormalizer = strings.NewReplacer("，", " ", ",", " ")
)

// Parse extracts amount, currency, category and payment method from a
// free-form transcript. Deterministic and side-effect free.
func Parse(transcript string) ParsedExpense {
	safe := strings.TrimSpace(transcript)
	normalized := commaNormalizer.Replace(safe)

	return ParsedExpense{
		Amount:   detectAmount(normalized),
		Currency: detectCurrency(normalized),
		Category: detectKeyword(normalized, categoryKeywords),
		Method:   detectKeyword(normalized, methodKeywords),
		Notes:    safe,
	}
}

func detectCurrency(text string) string {
	for _, p := range currencyPatterns {
		if p.matcher.MatchString(text) {
			return p.code
		}
	}
	if cnyMarkers.MatchString(text) {
		return "CNY"
	}
	return DefaultCurrency
}

// detectAmount tries, in priority order: a currency symbol or name directly
// before the number, a number directly before a currency word, and finally the
// first positive number anywhere in the text.
func detectAmount(text string) *float64 {
	if m := amountLeading.FindStringSubmatch(text); m != nil {
		if v, ok := positiveNumber(m[1]); ok {
			return &v
		}
	}
	if m := amountTrailing.FindStringSubmatch(text); m != nil {
		if v, ok := positiveNumber(m[1]); ok {
			return &v
		}
	}
	for _, m := range anyNumber.FindAllString(text, -1) {
		if v, ok := positiveNumber(m); ok {
			return &v
		}
	}
	return nil
}

func positiveNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

func detectKeyword(text string, entries []keywordEntry) *string {
	lower := strings.ToLower(text)
	for _, entry := range entries {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				label := entry.label
				return &label
			}
		}
	}
	return nil
}
