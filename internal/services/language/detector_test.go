package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/playbook/internal/models"
)

func TestDetect(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name string
		text string
		want models.Locale
	}{
		{"chinese transcript", "建议关注稀土板块，出口管制可能推高价格。", models.LocaleChinese},
		{"english transcript", "MP Materials will rally on rare earth export controls.", models.LocaleEnglish},
		{"mixed transcript", "关注稀土板块 MP Materials, export controls are a catalyst.", models.LocaleMixed},
		{"short text defaults to english", "稀土", models.LocaleEnglish},
		{"empty text", "", models.LocaleEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.text))
		})
	}
}

func TestDetect_Deterministic(t *testing.T) {
	d := NewDetector()
	text := "关注IONQ，政府补贴是催化剂。"

	first := d.Detect(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.Detect(text))
	}
}

func TestSplitSentences(t *testing.T) {
	d := NewDetector()

	cn := d.SplitSentences("艾恩Q获得政府补贴。分析师看涨！存在延迟风险？", models.LocaleChinese)
	assert.Equal(t, []string{"艾恩Q获得政府补贴", "分析师看涨", "存在延迟风险"}, cn)

	en := d.SplitSentences("Buy MP on the pullback. Rare earths are strategic! Risk remains?", models.LocaleEnglish)
	assert.Equal(t, []string{"Buy MP on the pullback", "Rare earths are strategic", "Risk remains"}, en)
}

func TestSplitSentences_DropsEmptyFragments(t *testing.T) {
	d := NewDetector()

	got := d.SplitSentences("第一句。。\n\n第二句。", models.LocaleChinese)
	assert.Equal(t, []string{"第一句", "第二句"}, got)
}

func TestCleanText(t *testing.T) {
	got := CleanText("  多个   空格\t在这里\n\n\n换行  ")
	assert.Equal(t, "多个 空格 在这里\n换行", got)
}

func TestNormalizeNumbers(t *testing.T) {
	assert.Equal(t, "price 15.5", NormalizeNumbers("price １５．５"))
}

func TestExtractNumbers(t *testing.T) {
	got := ExtractNumbers("price >= 10.5, stop at -2 or 1e3")
	assert.Equal(t, []float64{10.5, -2, 1000}, got)
}
