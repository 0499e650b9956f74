package runlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2021, 3, 1, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		RunID:     "2b1c0f5e-3c5e-4a8f-9a51-000000000001",
		GroupID:   "2021-01-002",
		Date:      time.Date(2021, 1, 10, 0, 0, 0, 0, time.UTC),
		Outcome:   OutcomeDuplicate,
		RemoteID:  "7995",
		Details:   "Checking -> Savings, 100",
	}
}

func TestAppend_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "import-log.csv")
	require.NoError(t, Append(path, []Entry{testEntry()}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, OutcomeDuplicate, entries[0].Outcome)
}

func TestAppend_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import-log.csv")
	require.NoError(t, Append(path, []Entry{testEntry()}))

	e2 := testEntry()
	e2.GroupID = "2021-01-003"
	e2.Outcome = OutcomeCreated
	require.NoError(t, Append(path, []Entry{e2}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2021-01-002", entries[0].GroupID)
	assert.Equal(t, OutcomeCreated, entries[1].Outcome)
}

func TestAppend_NothingToWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import-log.csv")
	require.NoError(t, Append(path, nil))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import-log.csv")
	want := testEntry()
	require.NoError(t, Append(path, []Entry{want}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, want.Timestamp.Equal(got.Timestamp))
	assert.True(t, want.Date.Equal(got.Date))
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, want.RemoteID, got.RemoteID)
	assert.Equal(t, want.Details, got.Details)
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import-log.csv")
	require.NoError(t, os.WriteFile(path, []byte(Header+"\n"), 0o644))

	entries, err := Read(path)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_BadFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected 7 fields")
}

func TestMarshalEntry_Formats(t *testing.T) {
	row := MarshalEntry(testEntry())
	assert.Equal(t, "2021-03-01T10:30:00Z", row[0])
	assert.Equal(t, "2021-01-10", row[3])
}

func TestUnmarshalEntry_BadGroupID(t *testing.T) {
	row := MarshalEntry(testEntry())
	row[2] = "January"
	_, err := UnmarshalEntry(row)
	assert.ErrorContains(t, err, "group ID")
}
