package main

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/portwatch/internal/config"
	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/notify"
)

// closedPort returns a local port nothing listens on.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

// invoke runs one invocation with logs and state under a temp dir and no
// .env file in play.
func invoke(t *testing.T, stateFile string) int {
	t.Helper()
	dir := t.TempDir()
	return run([]string{
		"--env-file", filepath.Join(dir, "absent.env"),
		"--log-dir", filepath.Join(dir, "logs"),
		"--state-file", stateFile,
	})
}

func TestRun_MissingHostExits1(t *testing.T) {
	t.Setenv("HOST", "")
	t.Setenv("PORT", "9735")
	assert.Equal(t, 1, invoke(t, filepath.Join(t.TempDir(), "state.db")))
}

func TestRun_BadPortExits1(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "lightning")
	assert.Equal(t, 1, invoke(t, filepath.Join(t.TempDir(), "state.db")))
}

func TestRun_MissingStateDirExits1(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", strconv.Itoa(closedPort(t)))
	assert.Equal(t, 1, invoke(t, filepath.Join(t.TempDir(), "missing", "state.db")))
}

func TestRun_TargetDownExits0AndCounts(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", strconv.Itoa(closedPort(t)))
	state := filepath.Join(t.TempDir(), "state.db")

	assert.Equal(t, 0, invoke(t, state))
	data, err := os.ReadFile(state)
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))
}

func TestRun_TargetUpExits0(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", strconv.Itoa(ln.Addr().(*net.TCPAddr).Port))
	state := filepath.Join(t.TempDir(), "state.db")
	require.NoError(t, os.WriteFile(state, []byte("12"), 0o644))

	assert.Equal(t, 0, invoke(t, state))
	data, err := os.ReadFile(state)
	require.NoError(t, err)
	assert.Equal(t, "0", string(data))
}

func TestCheckStateDir(t *testing.T) {
	fsys := afero.NewOsFs()
	dir := t.TempDir()
	assert.NoError(t, checkStateDir(fsys, filepath.Join(dir, "state.db")))

	var ce *domain.ConfigurationError
	require.ErrorAs(t, checkStateDir(fsys, filepath.Join(dir, "missing", "state.db")), &ce)
	assert.Equal(t, "STATE_FILE", ce.Field)

	f := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	require.ErrorAs(t, checkStateDir(fsys, filepath.Join(f, "state.db")), &ce)
}

func TestCheckStateDir_UnwritableDirectory(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll("/state", 0o755))

	err := checkStateDir(afero.NewReadOnlyFs(base), "/state/state.db")
	var ce *domain.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "STATE_FILE", ce.Field)
	assert.Contains(t, ce.Reason, "not writable")
}

func TestBuildNotifier_PicksEmailTransport(t *testing.T) {
	m := buildNotifier(config.Config{EmailService: "brevo"}, zap.NewNop())
	require.Len(t, m, 2)
	assert.IsType(t, &notify.Brevo{}, m[0])
	assert.IsType(t, &notify.Pushover{}, m[1])

	m = buildNotifier(config.Config{EmailService: "gmail", PushoverPriority: "9"}, zap.NewNop())
	assert.IsType(t, &notify.Email{}, m[0])
	assert.Equal(t, 0, m[1].(*notify.Pushover).Priority)
}
