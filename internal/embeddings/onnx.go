package embeddings

import (
	"os"
	"path/filepath"
	"runtime"
)

// EnvONNXPath overrides where the ONNX runtime shared library is loaded from.
const EnvONNXPath = "ONNX_PATH"

// libraryNames maps GOOS to the ONNX runtime shared library filename.
var libraryNames = map[string]string{
	"linux":   "libonnxruntime.so",
	"darwin":  "libonnxruntime.dylib",
	"windows": "onnxruntime.dll",
}

// systemLibraryDirs are searched after the managed install directory.
var systemLibraryDirs = []string{
	"/usr/local/lib",
	"/usr/lib",
	"/opt/homebrew/lib",
}

func getLibraryName(goos string) string {
	if name, ok := libraryNames[goos]; ok {
		return name
	}
	return "libonnxruntime.so"
}

// onnxInstallDir returns the managed install directory, ~/.config/embedkit/lib.
func onnxInstallDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "embedkit", "lib")
}

// ONNXLibraryPath returns the path to the ONNX runtime library, or "" if none is found.
// Checks in order:
//  1. ONNX_PATH environment variable
//  2. Managed install at ~/.config/embedkit/lib/
//  3. System library directories
func ONNXLibraryPath() string {
	if envPath := os.Getenv(EnvONNXPath); envPath != "" {
		return envPath
	}
	return findLibrary(getLibraryName(runtime.GOOS), append([]string{onnxInstallDir()}, systemLibraryDirs...))
}

func findLibrary(name string, dirs []string) string {
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// setONNXPathEnv exports the library location for fastembed-go.
var setONNXPathEnv = func(path string) error {
	return os.Setenv(EnvONNXPath, path)
}
