package session

import (
	"math"
	"strconv"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageFromLen(t *testing.T) {
	usage, err := usageFromLen(0)
	require.NoError(t, err)
	assert.Zero(t, usage)

	if strconv.IntSize < 64 {
		t.Skip("overflow needs a 64-bit int")
	}

	limit := uint64(math.MaxUint32)
	usage, err = usageFromLen(int(limit))
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), usage)

	_, err = usageFromLen(int(limit + 1))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestClear(t *testing.T) {
	s := newTestState()
	fill(s, []byte("some bytes"))

	s.Clear()
	usage, err := s.Usage()
	require.NoError(t, err)
	assert.Zero(t, usage)

	s.Clear()
	assert.Zero(t, s.Len())
}

func TestSave(t *testing.T) {
	payload := []byte{'o', 'k', 0x00, 0xff, '\n'}

	tests := []struct {
		name      string
		mode      SaveMode
		dumpAfter bool
		wantLen   int
	}{
		{"text keep", SaveText, false, len(payload)},
		{"text dump", SaveText, true, 0},
		{"binary keep", SaveBinary, false, len(payload)},
		{"binary dump", SaveBinary, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			s := newTestState(WithFs(fs))
			fill(s, payload)

			require.NoError(t, s.Save("/captures/out.log", tt.mode, tt.dumpAfter))

			got, err := afero.ReadFile(fs, "/captures/out.log")
			require.NoError(t, err)
			assert.Equal(t, payload, got)
			assert.Equal(t, tt.wantLen, s.Len())
		})
	}
}

func TestSaveTruncatesExistingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "out.log", []byte("a much longer previous capture"), 0o644))

	s := newTestState(WithFs(fs))
	fill(s, []byte("new"))
	require.NoError(t, s.Save("out.log", SaveText, false))

	got, err := afero.ReadFile(fs, "out.log")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestSaveEmptyBuffer(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newTestState(WithFs(fs))

	require.NoError(t, s.Save("empty.log", SaveBinary, true))

	got, err := afero.ReadFile(fs, "empty.log")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveFailureKeepsBuffer(t *testing.T) {
	s := newTestState(WithFs(afero.NewReadOnlyFs(afero.NewMemMapFs())))
	fill(s, []byte("precious"))

	err := s.Save("out.log", SaveText, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteFailed)

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "out.log", writeErr.Path)

	assert.Equal(t, len("precious"), s.Len())
}

func TestSaveModeString(t *testing.T) {
	assert.Equal(t, "text", SaveText.String())
	assert.Equal(t, "binary", SaveBinary.String())
	assert.Equal(t, "SaveMode(7)", SaveMode(7).String())
}
