package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "open seam", StripHTML("<b>open seam</b>"))
	assert.Equal(t, "alert(1)", StripHTML("&lt;script&gt;alert(1)&lt;/script&gt;"))
}

func TestRemark(t *testing.T) {
	assert.Equal(t, "线头 过多 open seam", Remark("  线头\n过多\t<i>open</i>  seam ", 0))
	assert.Equal(t, "线头过", Remark("线头过多", 3))
	assert.Equal(t, "short", Remark("short", 10))
}
