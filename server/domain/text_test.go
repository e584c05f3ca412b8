package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trim", in: "  안녕하세요  ", want: "안녕하세요"},
		{name: "line endings", in: "a\r\nb\rc", want: "a\nb\nc"},
		{name: "control characters", in: "a\x00b\x07c\td", want: "abc\td"},
		{name: "nfc composition", in: "\u1100\u1161\u11a8", want: "\uac01"},
		{name: "punctuation kept", in: "밥 먹었어? 응.", want: "밥 먹었어? 응."},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeInput(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeInputKeepsLongText(t *testing.T) {
	t.Parallel()

	in := strings.Repeat("문장입니다. ", 500)
	got, err := NormalizeInput(in)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(in), got)
}

func TestNormalizeInputRejectsNonString(t *testing.T) {
	t.Parallel()

	_, err := NormalizeInput([]byte("hi"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	p, err := Prepare(" 어디 가?  학교 가!\r\n")
	require.NoError(t, err)
	assert.Equal(t, "어디 가?  학교 가!", p.Canonical)
	assert.Equal(t, "어디 가 학교 가", p.Model)
	assert.Equal(t, " 어디 가?  학교 가!\r\n", p.Raw)
}
