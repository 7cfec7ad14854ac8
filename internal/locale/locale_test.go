package locale_test

import (
	"testing"

	"github.com/CaiJingLong/Tally/internal/config"
	"github.com/CaiJingLong/Tally/internal/locale"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Languages(t *testing.T) {
	c := locale.Load()
	assert.ElementsMatch(t, []string{"en", "ja", "zh"}, c.Languages())
}

func TestLocalizer_RemainingDays(t *testing.T) {
	c := locale.Load()

	tests := []struct {
		name string
		lang string
		days int
		want string
	}{
		{"English singular", "en", 1, "1 day left"},
		{"English plural", "en", 12, "12 days left"},
		{"English expired", "en", 0, "Expired"},
		{"Chinese", "zh-CN", 3, "剩余 3 天"},
		{"Chinese expired", "zh", -2, "已过期"},
		{"Japanese", "ja", 5, "残り 5 日"},
		{"Unknown language falls back", "fr", 2, "2 days left"},
		{"Invalid tag falls back", "!!", 2, "2 days left"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.For(tt.lang).RemainingDays(tt.days))
		})
	}
}

func TestLocalizer_EventSummary(t *testing.T) {
	c := locale.Load()

	assert.Equal(t, "cdn expires", c.For("en").EventSummary("cdn", ""))
	assert.Equal(t, "云服务器（阿里云）到期", c.For("zh").EventSummary("云服务器", "阿里云"))
	assert.Equal(t, "cdn expires on January 2, 2026.", c.For("en").EventDescription("cdn", "January 2, 2026"))
}

func TestLocalizer_Preferences(t *testing.T) {
	c := locale.Load()

	l := c.For("", "zh-CN,zh;q=0.9,en;q=0.8")
	assert.Equal(t, "zh-CN,zh;q=0.9,en;q=0.8", l.Lang())
	assert.Equal(t, "已过期", l.Msg(config.TKeyExpired))

	assert.Equal(t, config.DefaultLanguage, c.For().Lang())
	assert.Equal(t, "Expired", c.For().Msg(config.TKeyExpired))
}

func TestLocalizer_Fallbacks(t *testing.T) {
	var nilLoc *locale.Localizer
	assert.Equal(t, config.TKeyExpired, nilLoc.Msg(config.TKeyExpired))
	assert.Equal(t, config.DefaultLanguage, nilLoc.Lang())

	c := locale.Load()
	assert.Equal(t, "no_such_key", c.For("en").Msg("no_such_key"))
}
