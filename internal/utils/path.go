package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// AppDir is the directory name used under the platform config location.
const AppDir = "wordhunt"

// PathResolver finds config, state and dictionary locations for the wordhunt binary.
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
	goos          string
	getenv        func(string) string
}

// NewPathResolver resolves locations from the running executable and the user's home.
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := newPathResolver(filepath.Dir(execPath), homeDir, runtime.GOOS, os.Getenv)
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

func newPathResolver(execDir, homeDir, goos string, getenv func(string) string) *PathResolver {
	return &PathResolver{
		executableDir: execDir,
		homeDir:       homeDir,
		configDir:     configDirFor(homeDir, goos, getenv),
		goos:          goos,
		getenv:        getenv,
	}
}

// configDirFor returns the appropriate config directory for the platform
func configDirFor(homeDir, goos string, getenv func(string) string) string {
	switch goos {
	case "darwin":
		return filepath.Join(homeDir, ".config", AppDir)
	case "linux":
		if configHome := getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppDir)
		}
		return filepath.Join(homeDir, ".config", AppDir)
	case "windows":
		if appData := getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppDir)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppDir)
	default:
		return filepath.Join(homeDir, "."+AppDir)
	}
}

// ConfigDir returns the config directory
func (pr *PathResolver) ConfigDir() string {
	return pr.configDir
}

// ConfigPath returns the full path for a config file in the first writable location:
// the config dir, ~/.wordhunt, the temp dir, then the executable dir.
func (pr *PathResolver) ConfigPath(filename string) string {
	candidates := []string{
		pr.configDir,
		filepath.Join(pr.homeDir, "."+AppDir),
		filepath.Join(os.TempDir(), AppDir),
		pr.executableDir,
	}
	for i, dir := range candidates {
		if CheckDirStatus(dir).Writable {
			path := filepath.Join(dir, filename)
			if i > 0 {
				log.Warnf("Using fallback config location: %s", path)
			}
			return path
		}
	}

	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", tempPath)
	return tempPath
}

// StatePath places session state files (snapshots, the SQLite database) next to the
// config. Absolute paths are returned unchanged.
func (pr *PathResolver) StatePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(filepath.Dir(pr.ConfigPath("config.toml")), name)
}

// DictDir resolves a directory containing dict_*.bin chunks. It tries the given path
// (as is, then relative to the executable and working directory) and then data/ next to
// the executable, its parent and the config dir. ok is false when none holds chunks.
func (pr *PathResolver) DictDir(userPath string) (dir string, ok bool) {
	var candidates []string
	if userPath != "" {
		if filepath.IsAbs(userPath) {
			candidates = append(candidates, userPath)
		} else {
			candidates = append(candidates, filepath.Join(pr.executableDir, userPath))
			if cwd, err := os.Getwd(); err == nil {
				candidates = append(candidates, filepath.Join(cwd, userPath))
			}
		}
	}
	candidates = append(candidates,
		filepath.Join(pr.executableDir, "data"),
		filepath.Join(filepath.Dir(pr.executableDir), "data"),
		filepath.Join(pr.configDir, "data"),
	)

	for _, path := range candidates {
		if hasChunks(path) {
			log.Debugf("Found dictionary directory: %s", path)
			return path, true
		}
		log.Debugf("Dictionary directory candidate not valid: %s", path)
	}
	return "", false
}

func hasChunks(path string) bool {
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return false
	}
	matches, err := filepath.Glob(filepath.Join(path, "dict_*.bin"))
	return err == nil && len(matches) > 0
}

// Runtime describes where wordhunt looks for its files.
type Runtime struct {
	ExecutableDir string `json:"executableDir" yaml:"executableDir"`
	WorkingDir    string `json:"workingDir" yaml:"workingDir"`
	HomeDir       string `json:"homeDir" yaml:"homeDir"`
	ConfigDir     string `json:"configDir" yaml:"configDir"`
	DictDir       string `json:"dictDir,omitempty" yaml:"dictDir,omitempty"`
	OS            string `json:"os" yaml:"os"`
	Arch          string `json:"arch" yaml:"arch"`
	XDGConfigHome string `json:"xdgConfigHome,omitempty" yaml:"xdgConfigHome,omitempty"`
	AppData       string `json:"appData,omitempty" yaml:"appData,omitempty"`
}

// RuntimeInfo reports the resolved locations. DictDir is empty when no chunks were found.
func (pr *PathResolver) RuntimeInfo() Runtime {
	cwd, _ := os.Getwd()
	info := Runtime{
		ExecutableDir: pr.executableDir,
		WorkingDir:    cwd,
		HomeDir:       pr.homeDir,
		ConfigDir:     pr.configDir,
		OS:            pr.goos,
		Arch:          runtime.GOARCH,
		XDGConfigHome: pr.getenv("XDG_CONFIG_HOME"),
		AppData:       pr.getenv("APPDATA"),
	}
	if dir, ok := pr.DictDir(""); ok {
		info.DictDir = dir
	}
	return info
}

// KeyVals flattens r into key value pairs for structured logging.
func (r Runtime) KeyVals() []any {
	kv := []any{
		"exec_dir", r.ExecutableDir,
		"cwd", r.WorkingDir,
		"config_dir", r.ConfigDir,
		"os", r.OS + "/" + r.Arch,
	}
	if r.DictDir != "" {
		kv = append(kv, "dict_dir", r.DictDir)
	}
	if r.XDGConfigHome != "" {
		kv = append(kv, "xdg_config_home", r.XDGConfigHome)
	}
	if r.AppData != "" {
		kv = append(kv, "appdata", r.AppData)
	}
	return kv
}
