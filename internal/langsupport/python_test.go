package langsupport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPythonExtractsFunctionAndClass mirrors the original
// implementation's extracts_function_and_class unit test.
func TestPythonExtractsFunctionAndClass(t *testing.T) {
	source := []byte(`
def hello():
    """Says hello."""
    print("hi")

class Greeter:
    def greet(self):
        pass
`)
	lang := newPythonSupport()
	g, err := lang.Extract("test.py", source)
	require.NoError(t, err)

	var fnDefs []Definition
	for _, d := range g.Definitions {
		if d.Kind == SymbolFunction {
			fnDefs = append(fnDefs, d)
		}
	}
	require.Len(t, fnDefs, 2)
	assert.Equal(t, "hello", fnDefs[0].Name)
	require.NotNil(t, fnDefs[0].Doc)
	assert.Equal(t, "Says hello.", fnDefs[0].Doc.Text)
	assert.Equal(t, "Greeter.greet", fnDefs[1].QualifiedName)
}

func TestPythonExtractsImports(t *testing.T) {
	source := []byte(`
import os
from pathlib import Path
`)
	lang := newPythonSupport()
	g, err := lang.Extract("test.py", source)
	require.NoError(t, err)

	require.Len(t, g.Imports, 2)
	assert.Equal(t, "os", g.Imports[0].ImportedName)
}

func TestPythonDocstyleDetection(t *testing.T) {
	source := []byte(`
def f():
    """
    Args:
        x: the thing
    Returns:
        something
    """
    pass
`)
	lang := newPythonSupport()
	g, err := lang.Extract("test.py", source)
	require.NoError(t, err)

	require.Len(t, g.Definitions, 1)
	require.NotNil(t, g.Definitions[0].Doc)
	assert.Equal(t, DocGoogle, g.Definitions[0].Doc.Style)
}
