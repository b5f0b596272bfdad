//go:build integration

package audio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordDefaultSourceIntegration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	selection, err := SelectDevice(ctx, "default", "default")
	require.NoError(t, err)

	p, err := Open(ctx, selection.Device, Options{TempDir: t.TempDir()})
	require.NoError(t, err)
	defer p.Teardown()

	require.NoError(t, p.Start(nil))
	time.Sleep(300 * time.Millisecond)

	artifact, err := p.Stop()
	require.NoError(t, err)
	require.NotNil(t, artifact)
	require.FileExists(t, artifact.Path)

	p.CleanupArtifact()
	require.NoFileExists(t, artifact.Path)
}
