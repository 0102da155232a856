package enrich

import (
	"strings"
	"unicode"
)

// idReplacer は空白と '&' を公開ID向けの表現に置き換えるのだ。
var idReplacer = strings.NewReplacer(
	" ", "_",
	"&", "and",
)

// Sanitize はメディアホストの公開IDとして安全な文字列に変換します。
// 小文字化、空白を '_'、'&' を "and" に置き換え、Unicode の文字と数字、'_' 以外を取り除きます。
// 何度適用しても結果は変わりません。
func Sanitize(s string) string {
	s = idReplacer.Replace(strings.ToLower(s))
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// compactName は名前を小文字化し、空白を詰めたものを返します。
func compactName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "")
}
