package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// ResolveScene builds the scene a user named on the command line: a path to a
// .json file, a built-in scene, or <scenesDir>/<name>.json, in that order
func ResolveScene(name, scenesDir string) (*scene.Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("scene name is required")
	}

	if strings.HasSuffix(name, ".json") {
		return LoadScene(name)
	}

	if s, err := scene.NewBuiltin(name); err == nil {
		return s, nil
	}

	path := filepath.Join(scenesDir, name+".json")
	if _, err := os.Stat(path); err == nil {
		return LoadScene(path)
	}

	return nil, fmt.Errorf("%w: %q (not built in and no %s)", scene.ErrUnknownScene, name, path)
}
