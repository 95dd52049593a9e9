package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifestGoMod(t *testing.T) {
	data := []byte("module example.com/app\n\ngo 1.24\n\nrequire (\n\tgithub.com/foo/bar v1.0.0\n\tgithub.com/baz/qux v2.3.4\n)\n")
	deps, err := parseManifest("go.mod", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"github.com/baz/qux", "github.com/foo/bar"}, deps)
}

func TestParseManifestPackageJSON(t *testing.T) {
	data := []byte(`{"dependencies": {"react": "^18.0.0"}, "devDependencies": {"jest": "^29.0.0"}}`)
	deps, err := parseManifest("package.json", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"jest", "react"}, deps)
}

func TestParseManifestCargoToml(t *testing.T) {
	data := []byte("[dependencies]\nserde = \"1.0\"\ntokio = { version = \"1\", features = [\"full\"] }\n")
	deps, err := parseManifest("Cargo.toml", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"serde", "tokio"}, deps)
}

func TestParseManifestPyprojectPoetry(t *testing.T) {
	data := []byte("[tool.poetry.dependencies]\npython = \"^3.11\"\nrequests = \"^2.31\"\n")
	deps, err := parseManifest("pyproject.toml", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"requests"}, deps)
}

func TestParseManifestUnknownExtension(t *testing.T) {
	_, err := parseManifest("unknown.txt", []byte(""))
	assert.Error(t, err)
}
