package newsbert

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultModelVersion is reported when a bundle carries no manifest.
const DefaultModelVersion = "bert-fake-news-v1.0"

// Files every usable bundle must contain.
var requiredBundleFiles = []string{
	"model.onnx",
	"vocab.txt",
	"label_map.json",
}

// ManifestFile describes one file entry in manifest.json.
type ManifestFile struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// Manifest mirrors an optional manifest.json at the bundle root.
type Manifest struct {
	Model     string         `json:"model"`
	Version   string         `json:"version"`
	CreatedAt string         `json:"created_at"`
	Files     []ManifestFile `json:"files"`
}

// ErrBundleStateNotFound is returned when state.json is missing.
var ErrBundleStateNotFound = errors.New("bundle state not found")

// BundleState tracks the active and previous bundle versions for versioned
// bundle directories (base/<version>/model.onnx ...).
type BundleState struct {
	CurrentVersion  string `json:"current_version"`
	PreviousVersion string `json:"previous_version,omitempty"`
}

func stateFilePath(baseDir string) string {
	return filepath.Join(baseDir, "state.json")
}

// LoadBundleState reads <base>/state.json.
func LoadBundleState(baseDir string) (BundleState, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return BundleState{}, errors.New("baseDir is empty")
	}

	data, err := os.ReadFile(stateFilePath(baseDir))
	if err != nil {
		if os.IsNotExist(err) {
			return BundleState{}, ErrBundleStateNotFound
		}
		return BundleState{}, fmt.Errorf("read bundle state: %w", err)
	}

	var state BundleState
	if err := json.Unmarshal(data, &state); err != nil {
		return BundleState{}, fmt.Errorf("decode bundle state: %w", err)
	}
	return state, nil
}

// SaveBundleState writes <base>/state.json atomically.
func SaveBundleState(baseDir string, state BundleState) error {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return errors.New("baseDir is empty")
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return fmt.Errorf("create bundle base dir: %w", err)
	}

	state.CurrentVersion = strings.TrimSpace(state.CurrentVersion)
	state.PreviousVersion = strings.TrimSpace(state.PreviousVersion)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bundle state: %w", err)
	}

	tmpFile, err := os.CreateTemp(baseDir, "state.json.tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		return fmt.Errorf("chmod temp state file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), stateFilePath(baseDir)); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// ResolveBundleDir maps a configured directory to the directory holding the
// model files. A state.json selects a version subdirectory; otherwise the
// directory itself is the bundle.
func ResolveBundleDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", errors.New("bundle dir is empty")
	}

	state, err := LoadBundleState(dir)
	switch {
	case err == nil:
		if state.CurrentVersion == "" {
			return "", fmt.Errorf("bundle state in %s has no current version", dir)
		}
		return resolveBundlePath(dir, state.CurrentVersion)
	case errors.Is(err, ErrBundleStateNotFound):
		return dir, nil
	default:
		return "", err
	}
}

// BundleFilesPresent checks that the key model files exist on disk.
func BundleFilesPresent(dir string) bool {
	for _, p := range requiredBundleFiles {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			return false
		}
	}
	return true
}

// ReadManifest loads manifest.json from a bundle directory.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// VerifyBundle checks every manifest entry against the files on disk: size
// and sha256 must match, and no entry may escape the bundle directory.
func VerifyBundle(dir string) error {
	m, err := ReadManifest(dir)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	if len(m.Files) == 0 {
		return errors.New("manifest lists no files")
	}

	for _, f := range m.Files {
		local, err := resolveBundlePath(dir, filepath.FromSlash(f.Path))
		if err != nil {
			return fmt.Errorf("resolve path %s: %w", f.Path, err)
		}
		info, err := os.Stat(local)
		if err != nil {
			return fmt.Errorf("stat %s: %w", f.Path, err)
		}
		if f.Size > 0 && info.Size() != f.Size {
			return fmt.Errorf("size mismatch for %s: expected %d got %d", f.Path, f.Size, info.Size())
		}

		h := sha256.New()
		fh, err := os.Open(local)
		if err != nil {
			return fmt.Errorf("open %s: %w", f.Path, err)
		}
		if _, err := io.Copy(h, fh); err != nil {
			fh.Close()
			return fmt.Errorf("hash %s: %w", f.Path, err)
		}
		fh.Close()

		sum := hex.EncodeToString(h.Sum(nil))
		if f.SHA256 != "" && !strings.EqualFold(sum, f.SHA256) {
			return fmt.Errorf("sha256 mismatch for %s: expected %s got %s", f.Path, f.SHA256, sum)
		}
	}
	return nil
}

// BundleInfo summarizes a bundle for display.
type BundleInfo struct {
	Dir     string   `json:"dir"`
	Version string   `json:"version"`
	Labels  []string `json:"labels"`
	Files   []string `json:"files"`
}

// InspectBundle gathers display information without loading the model.
func InspectBundle(dir string) (*BundleInfo, error) {
	resolved, err := ResolveBundleDir(dir)
	if err != nil {
		return nil, err
	}
	if !BundleFilesPresent(resolved) {
		return nil, fmt.Errorf("bundle at %s is missing required files", resolved)
	}

	info := &BundleInfo{Dir: resolved, Version: DefaultModelVersion}
	if m, err := ReadManifest(resolved); err == nil {
		if v := strings.TrimSpace(m.Version); v != "" {
			info.Version = v
		}
		for _, f := range m.Files {
			info.Files = append(info.Files, f.Path)
		}
	}
	if labels, err := loadLabels(filepath.Join(resolved, "label_map.json")); err == nil {
		info.Labels = labels
	}
	return info, nil
}

// resolveBundlePath joins rel onto dir, rejecting absolute paths and any
// traversal out of the bundle.
func resolveBundlePath(dir, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", errors.New("absolute path not allowed in bundle")
	}
	joined := filepath.Join(dir, rel)
	cleanDir := filepath.Clean(dir)
	if joined != cleanDir && !strings.HasPrefix(joined, cleanDir+string(filepath.Separator)) {
		return "", errors.New("path escapes bundle directory")
	}
	return joined, nil
}
