package voiceparse

import (
	"reflect"
	"testing"
)

func TestParseEmptyTranscript(t *testing.T) {
	got := Parse("")
	if got.Amount != nil {
		t.Errorf("expected nil amount, got %v", *got.Amount)
	}
	if got.Currency != "CNY" {
		t.Errorf("expected default currency CNY, got %q", got.Currency)
	}
	if got.Category != nil || got.Method != nil {
		t.Error("expected nil category and method for empty transcript")
	}
	if got.Notes != "" {
		t.Errorf("expected empty notes, got %q", got.Notes)
	}
}

func TestParseDeterministic(t *testing.T) {
	input := "滴滴打车用微信支付了28元"
	first := Parse(input)
	second := Parse(input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("parse is not deterministic: %+v vs %+v", first, second)
	}
}

func TestParseFullExample(t *testing.T) {
	got := Parse("滴滴打车用微信支付了28元")

	if got.Amount == nil || *got.Amount != 28 {
		t.Errorf("expected amount 28, got %v", got.Amount)
	}
	if got.Currency != "CNY" {
		t.Errorf("expected CNY, got %q", got.Currency)
	}
	if got.Category == nil || *got.Category != "交通" {
		t.Errorf("expected category 交通, got %v", got.Category)
	}
	if got.Method == nil || *got.Method != "移动支付" {
		t.Errorf("expected method 移动支付, got %v", got.Method)
	}
	if got.Notes != "滴滴打车用微信支付了28元" {
		t.Errorf("notes must carry the verbatim transcript, got %q", got.Notes)
	}
}

func TestAmountPriority(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		// Symbol-adjacent match beats a plain number later in the string.
		{"leading symbol wins", "打车花了¥35，一共35.5公里", 35},
		{"leading fullwidth symbol", "￥12.5的奶茶", 12.5},
		{"trailing unit", "吃饭花了45.5元", 45.5},
		{"trailing kuai", "停车费10块", 10},
		{"currency name leading", "USD 20 for the taxi", 20},
		{"plain number fallback", "今天花了 99", 99},
		{"skips zero", "0 然后买了 15 元的水", 15},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.input)
			if got.Amount == nil {
				t.Fatalf("expected amount %v, got nil", tc.want)
			}
			if *got.Amount != tc.want {
				t.Errorf("expected amount %v, got %v", tc.want, *got.Amount)
			}
		})
	}
}

func TestAmountAbsent(t *testing.T) {
	got := Parse("今天逛了博物馆")
	if got.Amount != nil {
		t.Errorf("expected nil amount, got %v", *got.Amount)
	}
	if got.Category == nil || *got.Category != "门票" {
		t.Errorf("expected category 门票, got %v", got.Category)
	}
}

func TestCurrencyDetection(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"花了20美元", "USD"},
		{"usd 20", "USD"},
		{"1000日元的拉面", "JPY"},
		{"买了50欧元的票", "EUR"},
		{"港币300的酒店", "HKD"},
		{"新台币150", "TWD"},
		{"韩元5000", "KRW"},
		{"人民币88", "CNY"},
		{"88块钱", "CNY"},
		{"¥66", "CNY"},
		{"没有提到钱", "CNY"}, // default
	}

	for _, tc := range cases {
		if got := Parse(tc.input); got.Currency != tc.want {
			t.Errorf("Parse(%q).Currency = %q, want %q", tc.input, got.Currency, tc.want)
		}
	}
}

func TestCategoryOrderTieBreak(t *testing.T) {
	// "吃" (dining) is listed before any transport keyword, so a transcript
	// matching both resolves to dining.
	got := Parse("在火车上吃了盒饭30元")
	if got.Category == nil || *got.Category != "餐饮" {
		t.Errorf("expected first-listed category 餐饮, got %v", got.Category)
	}
}

func TestMethodDetection(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"支付宝付了100", "移动支付"},
		{"刷卡买的", "信用卡"},
		{"用VISA付的", "信用卡"},
		{"付现金200", "现金"},
	}

	for _, tc := range cases {
		got := Parse(tc.input)
		if got.Method == nil || *got.Method != tc.want {
			t.Errorf("Parse(%q).Method = %v, want %q", tc.input, got.Method, tc.want)
		}
	}

	if got := Parse("还没付钱"); got.Method != nil {
		t.Errorf("expected nil method, got %v", *got.Method)
	}
}

func TestNotesTrimmed(t *testing.T) {
	got := Parse("  打车28元  ")
	if got.Notes != "打车28元" {
		t.Errorf("expected surrounding whitespace trimmed, got %q", got.Notes)
	}
}
