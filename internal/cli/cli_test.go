package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/padron/pkg/types"
)

// env is an isolated set of directories for one CLI test.
type env struct {
	configDir string
	dataDir   string
	asset     string
}

func newEnv(t *testing.T) env {
	t.Helper()
	for _, k := range []string{
		"PADRON_CONFIG_DIR", "PADRON_DATA_DIR", "PADRON_ASSET_PATH",
		"PADRON_LOG_LEVEL", "PADRON_LOG_FILE", "PADRON_LOG_FORMAT",
		"PADRON_LOG_MAX_SIZE_MB", "PADRON_LOG_MAX_FILES",
	} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	asset := filepath.Join(dir, "bundled.db")
	require.NoError(t, os.WriteFile(asset, nil, 0o644))
	return env{
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
		asset:     asset,
	}
}

// run executes padron with the env's directories and returns stdout, stderr
// and the exit code.
func (e env) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	return e.runApp(t, newApp(), append([]string{"--log-level", "error"}, args...)...)
}

// runApp is run without the forced log level, over a caller-owned app.
func (e env) runApp(t *testing.T, a *app, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{
		"--config-dir", e.configDir,
		"--data-dir", e.dataDir,
		"--asset", e.asset,
	}, args...)
	code := run(a, full, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out, _, code := e.run(t, "version")
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "padron v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	e := newEnv(t)
	out, stderr, code := e.run(t, "init")
	require.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, out, "padron initialized")
	assert.FileExists(t, filepath.Join(e.dataDir, types.DefaultDBName))
	assert.FileExists(t, filepath.Join(e.configDir, configFileExt))

	// Running again keeps the existing database.
	_, _, code = e.run(t, "save", "--dni", "1")
	require.Equal(t, exitSuccess, code)
	out, _, code = e.run(t, "--json", "init")
	require.Equal(t, exitSuccess, code)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, float64(1), got["records"])
}

func TestSaveGetFind(t *testing.T) {
	e := newEnv(t)
	_, stderr, code := e.run(t, "save", "--dni", "20123456", "--lastname", "PÉREZ", "--names", "Juan Carlos", "--locality", "Rosario")
	require.Equal(t, exitSuccess, code, stderr)
	_, _, code = e.run(t, "save", "--dni", "30111222", "--lastname", "Muñoz", "--names", "Ana")
	require.Equal(t, exitSuccess, code)

	out, _, code := e.run(t, "--json", "get", "20123456")
	require.Equal(t, exitSuccess, code)
	var rec types.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "Juan Carlos", rec.FirstName)

	out, _, code = e.run(t, "get", "20123456")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, types.OccupationUnspecified)

	out, _, code = e.run(t, "--json", "find", "--lastname", "perez")
	require.Equal(t, exitSuccess, code)
	var recs []types.Record
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "20123456", recs[0].NationalID)

	out, _, code = e.run(t, "find", "last_name=munoz")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "30111222")

	out, _, code = e.run(t, "find", "--lastname", "nadie")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "no records found")
}

func TestFind_UsageErrors(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		name string
		args []string
	}{
		{"no criteria", []string{"find"}},
		{"blank criteria", []string{"find", "--lastname", "  "}},
		{"unknown field", []string{"find", "color=blue"}},
		{"malformed filter", []string{"find", "perez"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, code := e.run(t, tt.args...)
			assert.Equal(t, exitUserError, code)
		})
	}
}

func TestGet_Missing(t *testing.T) {
	e := newEnv(t)
	_, stderr, code := e.run(t, "get", "99")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, types.ErrNotFound.Error())
}

func TestSave_Merge(t *testing.T) {
	e := newEnv(t)
	_, _, code := e.run(t, "save", "--dni", "5", "--lastname", "Vega", "--province", "Salta")
	require.Equal(t, exitSuccess, code)

	_, _, code = e.run(t, "save", "--dni", "5", "--merge", "--work", "Docente")
	require.Equal(t, exitSuccess, code)
	out, _, _ := e.run(t, "--json", "get", "5")
	var rec types.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "Vega", rec.LastName)
	assert.Equal(t, "Salta", rec.Province)
	assert.Equal(t, "Docente", rec.Occupation)

	// Without --merge the record is replaced.
	_, _, code = e.run(t, "save", "--dni", "5", "--lastname", "Vega")
	require.Equal(t, exitSuccess, code)
	out, _, _ = e.run(t, "--json", "get", "5")
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Empty(t, rec.Province)
}

func TestSave_RequiresDNI(t *testing.T) {
	e := newEnv(t)
	_, _, code := e.run(t, "save", "--lastname", "Vega")
	assert.Equal(t, exitUserError, code)
}

func TestDeleteAndCount(t *testing.T) {
	e := newEnv(t)
	for i := 0; i < 3; i++ {
		_, _, code := e.run(t, "save", "--dni", fmt.Sprint(i+1))
		require.Equal(t, exitSuccess, code)
	}
	out, _, code := e.run(t, "count")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, "3\n", out)

	_, _, code = e.run(t, "delete", "2")
	require.Equal(t, exitSuccess, code)
	_, _, code = e.run(t, "delete", "2")
	assert.Equal(t, exitUserError, code)

	out, _, _ = e.run(t, "--json", "count")
	assert.JSONEq(t, `{"records":2}`, out)
}

func TestImport(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(t.TempDir(), "records.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"dni":"1","lastname":"Ibáñez"}`+"\n"+
			`{"lastname":"sin dni"}`+"\n"+
			`{"dni":2,"lastname":"Quiroga"}`+"\n"), 0o644))

	out, stderr, code := e.run(t, "import", path)
	require.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, out, "read 3, inserted 2, updated 0, skipped 1")

	_, _, code = e.run(t, "import", filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Equal(t, exitSysError, code)
}

func TestProvisioningFailures(t *testing.T) {
	e := newEnv(t)

	e.asset = filepath.Join(t.TempDir(), "missing.db")
	_, stderr, code := e.run(t, "count")
	assert.Equal(t, exitSysError, code)
	assert.Contains(t, stderr, "provision")

	var stdout, errOut bytes.Buffer
	code = run(newApp(), []string{"--config-dir", e.configDir, "--data-dir", e.dataDir, "count"}, &stdout, &errOut)
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut.String(), "no bundled dataset configured")
}

func TestConfigCommand(t *testing.T) {
	e := newEnv(t)
	out, stderr, code := e.run(t, "--json", "config")
	require.Equal(t, exitSuccess, code, stderr)

	var cfg types.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, e.dataDir, cfg.DataDir)
	assert.Equal(t, types.DefaultDBName, cfg.DBName)
	assert.Equal(t, types.DefaultBusyTimeout, cfg.BusyTimeout)
	assert.Equal(t, "error", cfg.LogLevel)

	out, _, code = e.run(t, "config")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "db_name: padron.db")
	assert.Contains(t, out, "# database: "+filepath.Join(e.dataDir, types.DefaultDBName))
}

func TestConfigFileValues(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt),
		[]byte("db_name: custom.db\nbusy_timeout: 2s\nlog_level: warn\n"), 0o644))

	_, stderr, code := e.run(t, "init")
	require.Equal(t, exitSuccess, code, stderr)
	assert.FileExists(t, filepath.Join(e.dataDir, "custom.db"))

	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt),
		[]byte("db_name: ../escape.db\n"), 0o644))
	_, _, code = e.run(t, "count")
	assert.Equal(t, exitUserError, code)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"user", userError(errors.New("bad flag")), exitUserError},
		{"system", sysError(errors.New("disk")), exitSysError},
		{"provisioning", &types.ProvisioningError{Op: "copy", Err: errors.New("x")}, exitSysError},
		{"connection", fmt.Errorf("wrapped: %w", &types.ConnectionError{Err: errors.New("x")}), exitSysError},
		{"cobra", errors.New("unknown command"), exitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	e := newEnv(t)
	t.Setenv("PADRON_DB_NAME", "from-env.db")

	_, stderr, code := e.run(t, "init")
	require.Equal(t, exitSuccess, code, stderr)
	assert.FileExists(t, filepath.Join(e.dataDir, "from-env.db"))
}

func TestDotEnvLoaded(t *testing.T) {
	e := newEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PADRON_DB_NAME=from-dotenv.db\n"), 0o644))
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("PADRON_DB_NAME") })

	_, stderr, code := e.run(t, "init")
	require.Equal(t, exitSuccess, code, stderr)
	assert.FileExists(t, filepath.Join(e.dataDir, "from-dotenv.db"))
}

func TestLogSettingsFromConfigFile(t *testing.T) {
	e := newEnv(t)
	logFile := filepath.Join(t.TempDir(), "logs", "padron.log")
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte(
		"log_level: info\nlog_format: json\nlog_max_size_mb: 1\nlog_max_files: 2\nlog_file: "+logFile+"\n"), 0o644))

	_, stderr, code := e.runApp(t, newApp(), "count")
	require.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, stderr, `"message":"copying database"`)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"copying database"`)

	out, _, code := e.run(t, "--json", "config")
	require.Equal(t, exitSuccess, code)
	var cfg types.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, types.LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, 1, cfg.LogMaxSizeMB)
	assert.Equal(t, 2, cfg.LogMaxFiles)

	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt),
		[]byte("log_format: xml\n"), 0o644))
	_, _, code = e.run(t, "count")
	assert.Equal(t, exitUserError, code)
}

func TestRun_ClosesLogOnFailure(t *testing.T) {
	e := newEnv(t)
	logFile := filepath.Join(t.TempDir(), "padron.log")
	t.Setenv("PADRON_LOG_FILE", logFile)

	a := newApp()
	_, stderr, code := e.runApp(t, a, "--log-level", "info", "get", "99")
	require.Equal(t, exitUserError, code, stderr)
	assert.Nil(t, a.closeLog)
	assert.NoError(t, a.close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "copying database")
}
