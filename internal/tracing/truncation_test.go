package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))

	long := strings.Repeat("a", 50) + strings.Repeat("b", 50)
	got := TruncateString(long, 20)
	assert.LessOrEqual(t, len([]rune(got)), 20)
	assert.Contains(t, got, "...")
}

func TestMaskPII(t *testing.T) {
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("a"))
	assert.Equal(t, "z*", MaskPII("zh"))
	assert.Equal(t, "zh*******om", MaskPII("zhang@x.com"))
}

func TestSafeAttributeValue(t *testing.T) {
	// 属性名含敏感关键字时掩码，否则只截断
	masked := SafeAttributeValue("candidate.email", "someone@example.com", DefaultMaxLength)
	assert.NotContains(t, masked, "someone")

	plain := SafeAttributeValue("document.type", "resume.pdf", DefaultMaxLength)
	assert.Equal(t, "resume.pdf", plain)
}
