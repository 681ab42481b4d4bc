package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordAndRecentRunsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	r := Run{
		StartedAt:    time.Unix(1000, 0),
		NParts:       1000,
		MaxLeafN:     16,
		Ncrit:        16,
		Theta:        0.75,
		Eps:          0.01,
		Mac:          "bh",
		Workers:      4,
		BuildMs:      12.5,
		WalkMs:       3.2,
		MaxRelErr:    1e-4,
		MedianRelErr: 1e-6,
	}
	require.NoError(t, s.Record(r))

	runs, err := s.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, r.NParts, runs[0].NParts)
	require.Equal(t, r.Mac, runs[0].Mac)
	require.InDelta(t, r.Theta, runs[0].Theta, 1e-12)
}
