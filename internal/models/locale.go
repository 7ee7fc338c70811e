package models

// Locale identifies the dominant language of a text span.
type Locale string

const (
	LocaleChinese Locale = "zh-CN"
	LocaleEnglish Locale = "en-US"
	LocaleMixed   Locale = "mixed"
)

// String returns the locale tag
func (l Locale) String() string {
	return string(l)
}
