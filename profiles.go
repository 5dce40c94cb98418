package cookiestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

// ErrProfileNotFound is returned when a profile name has no entry in the
// registry.
var ErrProfileNotFound = errors.New("cookiestore: profile not found")

const profilesFileName = "profiles.ini"

// Profile is one entry in a snapshot registry.
type Profile struct {
	Name string
	Path string
}

// Profiles lists the snapshot profiles registered in root's profiles.ini, in
// file order. A missing registry is an empty list, not an error.
func Profiles(root string) ([]Profile, error) {
	cfg, err := ini.Load(filepath.Join(root, profilesFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []Profile
	for _, secName := range cfg.SectionStrings() {
		if !strings.HasPrefix(secName, "Profile") {
			continue
		}
		sec := cfg.Section(secName)
		pathStr := filepath.FromSlash(sec.Key("Path").String())
		if pathStr == "" {
			continue
		}
		if sec.Key("IsRelative").String() == "1" {
			pathStr = filepath.Join(root, pathStr)
		}

		name := sec.Key("Name").String()
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(pathStr), filepath.Ext(pathStr))
		}
		out = append(out, Profile{Name: name, Path: pathStr})
	}
	return out, nil
}

// ResolveProfile returns the snapshot path registered under name.
func ResolveProfile(root, name string) (string, error) {
	profiles, err := Profiles(root)
	if err != nil {
		return "", err
	}
	for _, p := range profiles {
		if p.Name == name {
			return p.Path, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrProfileNotFound, name)
}

// RegisterProfile adds or updates the registry entry for name, creating
// profiles.ini if needed. Paths inside root are stored relative with
// IsRelative=1, matching how browser profile registries lay this out.
func RegisterProfile(root, name, path string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("cookiestore: profile name required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}

	iniPath := filepath.Join(root, profilesFileName)
	cfg, err := ini.Load(iniPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		cfg = ini.Empty()
	}

	sec := profileSection(cfg, name)
	if sec == nil {
		idx := countProfileSections(cfg)
		for {
			if _, err := cfg.GetSection(fmt.Sprintf("Profile%d", idx)); err != nil {
				break
			}
			idx++
		}
		sec, err = cfg.NewSection(fmt.Sprintf("Profile%d", idx))
		if err != nil {
			return err
		}
	}

	sec.Key("Name").SetValue(name)
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		sec.Key("IsRelative").SetValue("1")
		sec.Key("Path").SetValue(filepath.ToSlash(rel))
	} else {
		sec.Key("IsRelative").SetValue("0")
		sec.Key("Path").SetValue(filepath.ToSlash(path))
	}
	return cfg.SaveTo(iniPath)
}

func profileSection(cfg *ini.File, name string) *ini.Section {
	for _, secName := range cfg.SectionStrings() {
		if !strings.HasPrefix(secName, "Profile") {
			continue
		}
		sec := cfg.Section(secName)
		if sec.Key("Name").String() == name {
			return sec
		}
	}
	return nil
}

func countProfileSections(cfg *ini.File) int {
	n := 0
	for _, secName := range cfg.SectionStrings() {
		if strings.HasPrefix(secName, "Profile") {
			n++
		}
	}
	return n
}

// LoadProfile loads the snapshot registered under name in root's registry.
func LoadProfile(ctx context.Context, root, name string, opts SnapshotOptions) (*Store, []string, error) {
	path, err := ResolveProfile(root, name)
	if err != nil {
		return nil, nil, err
	}
	if !fileExists(path) {
		return nil, nil, fmt.Errorf("cookiestore: snapshot for profile %q not found at %q", name, path)
	}
	return LoadSnapshot(ctx, path, opts)
}

// SaveProfile saves the store's snapshot under name in root's registry,
// registering "<name>.cookies.sqlite" inside root on first use.
func (s *Store) SaveProfile(ctx context.Context, root, name string, opts SnapshotOptions) error {
	path, err := ResolveProfile(root, name)
	if errors.Is(err, ErrProfileNotFound) {
		path = filepath.Join(root, name+".cookies.sqlite")
		if err := RegisterProfile(root, name, path); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	return s.SaveSnapshot(ctx, path, opts)
}
