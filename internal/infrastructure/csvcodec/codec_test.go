package csvcodec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmanager/task-api/internal/core/ports"
)

func TestParseRows(t *testing.T) {
	rows, err := New().ParseRows([]byte("\xef\xbb\xbfsku,qty\nA1,3\nB2,\"1,5\"\n"))
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "A1", rows[0]["sku"])
	assert.Equal(t, "3", rows[0]["qty"])
	assert.Equal(t, "1,5", rows[1]["qty"])
}

func TestParseRows_HeaderOnly(t *testing.T) {
	rows, err := New().ParseRows([]byte("sku,qty\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
}

func TestParseRows_Errors(t *testing.T) {
	_, err := New().ParseRows([]byte("   \n"))
	require.Error(t, err)

	_, err = New().ParseRows([]byte("a,b\n1,2,3\n"))
	require.Error(t, err, "ragged rows must be rejected")

	_, err = New().ParseRows([]byte("a,b\n\"unterminated,2\n"))
	require.Error(t, err)
}

func TestEncodeTasks(t *testing.T) {
	out, err := New().EncodeTasks([]ports.TaskExportRow{{
		ID:          "64b7",
		Title:       "Write, review",
		Description: "two\nlines",
		Priority:    "high",
		DueDate:     "2025-03-10T12:00:00Z",
		Status:      "pending",
		CreatedAt:   "2025-03-01T08:00:00Z",
		Owner:       "Alice",
	}})
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "id,title,description,priority,dueDate,status,createdAt,owner\n"), text)
	assert.Contains(t, text, `"Write, review"`)
	assert.Contains(t, text, "Alice")
}

func TestEncodeTasks_EmptyStillHasHeader(t *testing.T) {
	out, err := New().EncodeTasks(nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), "id,title")
}
