package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ungetc/dust/internal/cli"
	"github.com/ungetc/dust/pkg/dust"
	"github.com/ungetc/dust/pkg/fs"
)

func newTestApp(t *testing.T, stdin string) (*appContext, string) {
	t.Helper()

	storeDir := t.TempDir()

	cfg := dust.Config{
		IndexPath:  filepath.Join(storeDir, "index"),
		ArenaPath:  filepath.Join(storeDir, "arena"),
		NumBuckets: 64,
	}

	cliCfg := defaultCLIConfig()
	cliCfg.NumBuckets = 64

	app := &appContext{
		fsys:     fs.NewReal(),
		stdin:    strings.NewReader(stdin),
		storeCfg: cfg,
		cliCfg:   cliCfg,
	}

	return app, storeDir
}

func runDust(t *testing.T, app *appContext, args ...string) (stdout, stderr bytes.Buffer, code int) {
	t.Helper()

	code = cli.Run("dust", &stdout, &stderr, args, allCommands(app))
	return stdout, stderr, code
}

func Test_Archive_Extract_List_Check_Roundtrip(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	filePath := filepath.Join(srcDir, "note.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("remember the milk"), 0o644))

	app, _ := newTestApp(t, filePath+"\n")

	stdout, stderr, code := runDust(t, app, "archive")
	require.Equal(t, 0, code, stderr.String())
	require.NotEmpty(t, stdout.Bytes())

	archivePath := filepath.Join(t.TempDir(), "out.dustarchive")
	require.NoError(t, os.WriteFile(archivePath, stdout.Bytes(), 0o644))

	checkStdout, checkStderr, checkCode := runDust(t, app, "check")
	require.Equal(t, 0, checkCode, checkStderr.String())
	require.Contains(t, checkStdout.String(), "ok")

	listStdout, listStderr, listCode := runDust(t, app, "list", archivePath)
	require.Equal(t, 0, listCode, listStderr.String())
	require.Contains(t, listStdout.String(), "note.txt")

	require.NoError(t, os.Remove(filePath))

	_, extractStderr, extractCode := runDust(t, app, "extract", archivePath)
	require.Equal(t, 0, extractCode, extractStderr.String())

	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	require.Equal(t, "remember the milk", string(content))
}

func Test_Extract_DryRun_Does_Not_Write_Files(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	filePath := filepath.Join(srcDir, "dry.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("dry run content"), 0o644))

	app, _ := newTestApp(t, filePath+"\n")

	stdout, stderr, code := runDust(t, app, "archive")
	require.Equal(t, 0, code, stderr.String())

	archivePath := filepath.Join(t.TempDir(), "out.dustarchive")
	require.NoError(t, os.WriteFile(archivePath, stdout.Bytes(), 0o644))

	require.NoError(t, os.Remove(filePath))

	_, extractStderr, extractCode := runDust(t, app, "extract", archivePath, "--dry-run")
	require.Equal(t, 0, extractCode, extractStderr.String())

	_, statErr := os.Stat(filePath)
	require.True(t, os.IsNotExist(statErr))
}

func Test_Archive_Fails_Whole_Job_When_A_Path_Is_Missing(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	okPath := filepath.Join(srcDir, "note.txt")
	require.NoError(t, os.WriteFile(okPath, []byte("remember the milk"), 0o644))

	missingPath := filepath.Join(srcDir, "does-not-exist.txt")

	app, _ := newTestApp(t, missingPath+"\n"+okPath+"\n")

	stdout, stderr, code := runDust(t, app, "archive")
	require.Equal(t, 1, code)
	require.Empty(t, stdout.Bytes())
	require.Contains(t, stderr.String(), missingPath)
}

func Test_RebuildIndex_Rejects_Same_Path_As_Configured_Index(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, "")

	_, stderr, code := runDust(t, app, "rebuild-index", app.storeCfg.IndexPath)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "error:")
}

func Test_RebuildIndex_Writes_A_Usable_Index(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	filePath := filepath.Join(srcDir, "rebuild.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("rebuild target"), 0o644))

	app, storeDir := newTestApp(t, filePath+"\n")

	stdout, stderr, code := runDust(t, app, "archive")
	require.Equal(t, 0, code, stderr.String())

	archivePath := filepath.Join(t.TempDir(), "out.dustarchive")
	require.NoError(t, os.WriteFile(archivePath, stdout.Bytes(), 0o644))

	newIndexPath := filepath.Join(storeDir, "index-rebuilt")

	_, rebuildStderr, rebuildCode := runDust(t, app, "rebuild-index", newIndexPath)
	require.Equal(t, 0, rebuildCode, rebuildStderr.String())

	_, err := os.Stat(newIndexPath)
	require.NoError(t, err)

	rebuiltApp := *app
	rebuiltApp.storeCfg.IndexPath = newIndexPath

	listStdout, listStderr, listCode := runDust(t, &rebuiltApp, "list", archivePath)
	require.Equal(t, 0, listCode, listStderr.String())
	require.Contains(t, listStdout.String(), "rebuild.txt")
}
