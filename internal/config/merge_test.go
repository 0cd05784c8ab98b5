package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeepMerge_ScalarOverwrite(t *testing.T) {
	dst := map[string]any{"a": 1, "b": "keep"}
	src := map[string]any{"a": 2}

	out := DeepMerge(dst, src)

	assert.Equal(t, 2, out["a"])
	assert.Equal(t, "keep", out["b"])
}

func TestDeepMerge_RecursesIntoObjects(t *testing.T) {
	dst := map[string]any{
		"settings": map[string]any{"output_format": "json", "color_theme": "dark"},
	}
	src := map[string]any{
		"settings": map[string]any{"output_format": "table"},
	}

	out := DeepMerge(dst, src)

	settings := out["settings"].(map[string]any)
	assert.Equal(t, "table", settings["output_format"])
	assert.Equal(t, "dark", settings["color_theme"])
}

func TestDeepMerge_ArraysOverwriteWholesale(t *testing.T) {
	dst := map[string]any{"list": []any{1, 2, 3}}
	src := map[string]any{"list": []any{4}}

	out := DeepMerge(dst, src)

	assert.Equal(t, []any{4}, out["list"])
}

func TestDeepMerge_ObjectReplacesScalar(t *testing.T) {
	dst := map[string]any{"v": "scalar"}
	src := map[string]any{"v": map[string]any{"nested": true}}

	out := DeepMerge(dst, src)

	assert.Equal(t, map[string]any{"nested": true}, out["v"])
}

func TestDeepMerge_DoesNotModifyInputs(t *testing.T) {
	dst := map[string]any{"nested": map[string]any{"a": 1}}
	src := map[string]any{"nested": map[string]any{"b": 2}}

	out := DeepMerge(dst, src)
	out["nested"].(map[string]any)["a"] = 99

	assert.Equal(t, 1, dst["nested"].(map[string]any)["a"])
	assert.NotContains(t, dst["nested"].(map[string]any), "b")
}
