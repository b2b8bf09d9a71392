package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ungetc/dust/internal/cli"
	"github.com/ungetc/dust/pkg/dust"
)

func Test_ParseFingerprint_Rejects_Bad_Hex_And_Bad_Length(t *testing.T) {
	t.Parallel()

	_, err := parseFingerprint("not-hex!")
	require.Error(t, err)

	_, err = parseFingerprint("aabb")
	require.Error(t, err)
}

func Test_ParseFingerprint_Roundtrips_A_Valid_Fingerprint(t *testing.T) {
	t.Parallel()

	var want dust.Fingerprint
	for i := range want {
		want[i] = byte(i)
	}

	got, err := parseFingerprint(hex.EncodeToString(want[:]))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func Test_InspectBucket_Prints_A_Deterministic_Bucket(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	o := cli.NewIO(&out, &errOut)

	var fp dust.Fingerprint
	for i := range fp {
		fp[i] = byte(i * 7)
	}

	inspectBucket(o, 16, hex.EncodeToString(fp[:]))

	want := dust.BucketFor(fp, 16)
	require.Contains(t, out.String(), "bucket")
	require.Contains(t, out.String(), "of 16")
	require.Contains(t, out.String(), fmt.Sprintf("bucket %d of 16", want))
	require.Less(t, want, uint64(16))
}

func Test_InspectGet_And_InspectStat_Against_A_Real_Store(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	filePath := filepath.Join(srcDir, "blob.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("inspect me"), 0o644))

	app, _ := newTestApp(t, filePath+"\n")

	_, stderr, code := runDust(t, app, "archive")
	require.Equal(t, 0, code, stderr.String())

	store, err := dust.Open(app.fsys, app.storeCfg)
	require.NoError(t, err)
	defer store.Close()

	fp, err := store.Put([]byte("inspect me"), dust.TypeFileData)
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	o := cli.NewIO(&out, &errOut)

	inspectGet(o, store, hex.EncodeToString(fp[:]))
	require.Contains(t, out.String(), "type=0")
	require.Contains(t, out.String(), "size=10")

	out.Reset()
	inspectStat(o, store, hex.EncodeToString(fp[:]))
	require.Contains(t, out.String(), "ok:")
}

func Test_InspectGet_Reports_Error_For_Unknown_Fingerprint(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, "")

	store, err := dust.Open(app.fsys, app.storeCfg)
	require.NoError(t, err)
	defer store.Close()

	var out, errOut bytes.Buffer
	o := cli.NewIO(&out, &errOut)

	var unknown dust.Fingerprint
	inspectGet(o, store, hex.EncodeToString(unknown[:]))

	require.Contains(t, out.String(), "error:")
}
