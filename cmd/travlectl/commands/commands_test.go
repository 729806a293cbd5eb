package commands

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilters(t *testing.T) {
	filters, err := parseFilters([]string{"keyword=成都", " source =xiaohongshu", "title=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"keyword": "成都", "source": "xiaohongshu", "title": "a=b"}, filters)

	filters, err = parseFilters(nil)
	require.NoError(t, err)
	assert.Nil(t, filters)

	_, err = parseFilters([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseFilters([]string{"=x"})
	assert.Error(t, err)
}

func TestKeygenAction(t *testing.T) {
	var buf bytes.Buffer
	Stdout = &buf
	t.Cleanup(func() { Stdout = os.Stdout })

	require.NoError(t, KeygenAction(context.Background(), nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "TRAVLE_SECURITY_ENCRYPTION_KEY="))
	assert.Regexp(t, `^TRAVLE_SECURITY_API_KEY=[0-9a-f]{32}$`, lines[1])
}
