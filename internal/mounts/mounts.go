// Package mounts resolves the Windows drive letter -> subsystem mount point
// table used for path translation. Fixed drives follow the automount root
// pattern and need no explicit entry; subst drives resolve through their
// target so translated paths stay valid inside the subsystem.
//
// Enumeration results are cached at ~/.cache/wslbuild/mounts.json because
// drive layouts change rarely and Win32 enumeration touches every volume.
package mounts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/zerr"

	"github.com/existentialmutt/wsl-build/internal/config"
	"github.com/existentialmutt/wsl-build/internal/pathconv"
)

// Drive classifications.
const (
	DriveFixed     = "fixed"
	DriveNetwork   = "network"
	DriveSubst     = "subst"
	DriveRemovable = "removable"
	DriveCDROM     = "cdrom"
	DriveRAMDisk   = "ramdisk"
	DriveUnknown   = "unknown"
)

// Drive describes one active drive letter on the host.
type Drive struct {
	Letter string `json:"letter"`
	Type   string `json:"type"`

	// Target is the resolved path behind subst and network drives.
	Target string `json:"target,omitempty"`

	Label string `json:"label,omitempty"`
}

const defaultTTL = 1 * time.Hour

// Resolve produces the mount table for the given configuration: detected
// drives first, manual overrides on top. Detection failures are reported
// but never fatal; translation falls back to the automount root pattern.
func Resolve(cfg *config.Config) (map[string]string, error) {
	table := make(map[string]string)

	var detectErr error
	if cfg.Mounts.AutoDetect {
		drives, err := cachedDrives(defaultTTL)
		if err != nil {
			detectErr = err
		} else {
			for letter, mount := range Build(drives, cfg.Mounts.Root) {
				table[letter] = mount
			}
		}
	}

	for letter, mount := range cfg.Mounts.Overrides {
		table[letter] = mount
	}

	return table, detectErr
}

// Build derives mount-table entries from enumerated drives. Only subst
// drives produce entries; their targets translate under the automount root.
func Build(drives []Drive, root string) map[string]string {
	conv := pathconv.NewConverter(root, nil)

	table := make(map[string]string)
	for _, d := range drives {
		if d.Type != DriveSubst || d.Target == "" {
			continue
		}
		mount := conv.ToUnix(d.Target)
		if pathconv.Sniff(mount) != pathconv.SyntaxPosix {
			// Target didn't translate (e.g. subst onto a UNC share).
			continue
		}
		table[d.Letter] = mount
	}
	return table
}

func cachedDrives(ttl time.Duration) ([]Drive, error) {
	path := cachePath()
	if drives, err := loadCache(path, ttl); err == nil {
		return drives, nil
	}

	drives, err := enumerate()
	if err != nil {
		return nil, zerr.Wrap(err, "enumerating drives")
	}
	// Cache write failure shouldn't block operation.
	_ = saveCache(path, drives)
	return drives, nil
}

type cacheFile struct {
	Timestamp time.Time `json:"timestamp"`
	Drives    []Drive   `json:"drives"`
}

func loadCache(path string, ttl time.Duration) ([]Drive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	if time.Since(cf.Timestamp) > ttl {
		return nil, zerr.New("cache expired")
	}
	return cf.Drives, nil
}

func saveCache(path string, drives []Drive) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cacheFile{
		Timestamp: time.Now(),
		Drives:    drives,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func cachePath() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "wslbuild", "mounts.json")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "wslbuild", "mounts.json")
}
