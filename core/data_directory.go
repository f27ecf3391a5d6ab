package core

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user data directory.
const AppName = "cardupdater"

// DataDirectory returns where the note database and log file live unless
// configured otherwise. CARDUPDATER_HOME wins; then %APPDATA%\cardupdater on
// Windows and ~/.cardupdater elsewhere. The directory is not created here.
func DataDirectory() string {
	if dir := GetEnvOrDefault("CARDUPDATER_HOME", ""); dir != "" {
		return dir
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, "."+AppName)
}

// DataFilePath joins name onto DataDirectory.
func DataFilePath(name string) string {
	return filepath.Join(DataDirectory(), name)
}
