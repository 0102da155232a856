package parser

import "strings"

// StripFences はコードフェンス記号と先頭の "json" タグを取り除くのだ。
// 本文中に現れる "json" という文字列には手を付けません。
func StripFences(raw string) string {
	s := fenceRegex.ReplaceAllString(raw, "")
	s = strings.TrimSpace(s)
	s = langTagRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ExtractBraces は最初の '{' から最後の '}' までを返します。見つからなければ空文字なのだ。
func ExtractBraces(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// Truncate はログ出力用に文字列をルーン単位で切り詰めるのだ。
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
