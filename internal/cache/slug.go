package cache

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold 去掉组合附加符号，"Grüße" → "Gruße"。
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var transliterations = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae", "Æ", "AE",
	"ø", "o", "Ø", "O",
	"œ", "oe", "Œ", "OE",
	"đ", "d", "Đ", "D",
	"ł", "l", "Ł", "L",
)

// Slugify 生成 URL 安全的 slug：
//   - 先做 ASCII 折叠；
//   - "_" 视为分隔符，"@" 展开为 "-at-"；
//   - 删除字母、数字、"-"、空白以外的字符（因此 "/"、"?"、"=" 直接消失）；
//   - 连续的分隔符与空白折叠为单个 "-"，转小写并去掉首尾 "-"。
func Slugify(value string) string {
	folded, _, err := transform.String(asciiFold, value)
	if err != nil {
		folded = value
	}
	folded = transliterations.Replace(folded)
	folded = strings.ReplaceAll(folded, "_", "-")
	folded = strings.ReplaceAll(folded, "@", "-at-")

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r == '-' || unicode.IsSpace(r):
			pendingDash = b.Len() > 0
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDash {
				b.WriteByte('-')
				pendingDash = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
