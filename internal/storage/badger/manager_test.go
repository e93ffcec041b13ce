package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestManagerLifecycle(t *testing.T) {
	manager, err := NewManager(newTestConfig(t), arbor.NewLogger())
	require.NoError(t, err)

	require.NotNil(t, manager.VectorStorage())
	require.NotNil(t, manager.AuditStorage())

	ctx := context.Background()
	require.NoError(t, manager.VectorStorage().ReplaceChunks(ctx, "physics", nil))

	require.NoError(t, manager.Close())
}
