package parser

import "regexp"

var (
	// fenceRegex は ```json / ``` のコードフェンス記号にマッチします。
	fenceRegex = regexp.MustCompile("```(?:json|JSON)?")

	// langTagRegex はフェンス除去後の先頭に残った言語タグにマッチするのだ。
	langTagRegex = regexp.MustCompile(`^(?:json|JSON)\s*`)
)
