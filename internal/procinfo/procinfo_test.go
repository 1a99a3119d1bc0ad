package procinfo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectSelf(t *testing.T) {
	info, err := Gopsutil{}.Inspect(context.Background(), os.Getpid())
	require.NoError(t, err)
	assert.NotEmpty(t, info.Name)
	assert.NotZero(t, info.RSSBytes)
	assert.WithinDuration(t, time.Now(), info.StartedAt, time.Hour)
}

func TestInspectMissing(t *testing.T) {
	_, err := Gopsutil{}.Inspect(context.Background(), 1<<30)
	assert.Error(t, err)
}
