package cmd

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/ponyo877/signtalk/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintServerMessage(t *testing.T) {
	var buf bytes.Buffer
	printServerMessage(&buf, rpc.ServerMessage{
		SenderName: "Alice",
		Message:    "학교 가?",
		Gloss:      "학교 가다",
		URLs:       []string{"/v/school.mp4"},
		Miss:       []string{"가다"},
		Time:       "12:04",
	})
	assert.Equal(t, "[12:04] Alice: 학교 가?\n    gloss: 학교 가다\n    /v/school.mp4\n    missing: 가다\n", buf.String())
}

func TestFormatServerMessageEscapesTags(t *testing.T) {
	line := formatServerMessage(rpc.ServerMessage{SenderName: "[red]eve", Message: "hi", Time: "09:00"})
	assert.Contains(t, line, "[red[]eve")
	assert.NotContains(t, line, "clips")
}

func TestFormatDate(t *testing.T) {
	at := time.Date(2024, 5, 1, 3, 4, 0, 0, time.UTC)
	assert.Equal(t, at.Local().Format("01/02 15:04"), formatDate(at.Format(time.RFC3339)))
	assert.Equal(t, "yesterday", formatDate("yesterday"))
}

func TestResetFlags(t *testing.T) {
	require.NoError(t, tailCmd.Flags().Set("follow", "true"))
	require.NoError(t, tailCmd.Flags().Set("lines", "3"))

	resetFlags(rootCmd)

	assert.False(t, follow)
	assert.Equal(t, 10, tailLines)
	assert.False(t, tailCmd.Flags().Changed("follow"))
}

func TestExecutorExits(t *testing.T) {
	var codes []int
	osExit = func(code int) { codes = append(codes, code) }
	t.Cleanup(func() { osExit = os.Exit })

	executor("   ")
	assert.Empty(t, codes)

	executor("exit")
	executor(" quit ")
	assert.Equal(t, []int{0, 0}, codes)
}
