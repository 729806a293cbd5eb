package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanStripsMarkupAndPunctuation(t *testing.T) {
	c := NewCleaner()

	assert.Equal(t, "成都 火锅 推荐", c.Clean("<p>成都，火锅！</p><br/>推荐🔥"))
	assert.Equal(t, "Tom Jerry", c.Clean("Tom &amp; Jerry"))
	assert.Equal(t, "a b", c.Clean("  a \n\t b  "))
}

func TestCleanFoldsFullWidthForms(t *testing.T) {
	c := NewCleaner()

	assert.Equal(t, "ABC 123", c.Clean("ＡＢＣ　１２３"))
}

func TestCleanKeepsOriginalWhenNothingRemains(t *testing.T) {
	c := NewCleaner()

	assert.Equal(t, "!!!", c.Clean("!!!"))
	assert.Equal(t, "", c.Clean(""))
}
