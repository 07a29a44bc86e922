package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestInitWritesDailyFile(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Init("debug", true, dir))
	require.Equal(t, logrus.DebugLevel, Logger.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, Logger.Formatter)

	Logger.Info("hello")

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	content, err := os.ReadFile(filepath.Join(dir, files[0].Name()))
	require.NoError(t, err)
	require.Contains(t, string(content), `"msg":"hello"`)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, logrus.WarnLevel, parseLevel("WARNING"))
	require.Equal(t, logrus.ErrorLevel, parseLevel("error"))
	require.Equal(t, logrus.InfoLevel, parseLevel("verbose"))
}
