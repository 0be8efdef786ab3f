package launcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellLaunchAndWaitSuccess(t *testing.T) {
	c, err := ShellLaunch("", "exit 0", Streams{})
	require.NoError(t, err)
	res, err := c.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
}

func TestShellLaunchShellStyleExitCode(t *testing.T) {
	c, err := ShellLaunch("", "exit 7", Streams{})
	require.NoError(t, err)
	// A non-zero child exit is not a wait failure; the status comes back in
	// the Result and the error stays nil.
	res, err := c.Wait()
	require.NoError(t, err)
	assert.Equal(t, 7, res.ExitCode)
}

func TestShellLaunchSignalledExitCode(t *testing.T) {
	c, err := ShellLaunch("", "kill -TERM $$", Streams{})
	require.NoError(t, err)
	res, err := c.Wait()
	require.NoError(t, err)
	assert.Equal(t, 128+15, res.ExitCode)
}

func TestShellExecute(t *testing.T) {
	assert.True(t, ShellExecute(context.Background(), "", "true"))
	assert.False(t, ShellExecute(context.Background(), "", "false"))
}

func TestExecDirectBadBinary(t *testing.T) {
	_, err := ExecDirect([]string{"/no/such/binary-csbench-test"}, Streams{}, false)
	assert.Error(t, err)
}
