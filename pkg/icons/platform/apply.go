package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/encoding/unicode"

	"github.com/iconify-go/iconify/pkg/icons/errors"
	"github.com/iconify-go/iconify/pkg/utils/atomicfile"
)

// TargetKind selects the application strategy for a path.
type TargetKind uint8

const (
	TargetFolder TargetKind = iota + 1
	TargetDrive
)

func (k TargetKind) String() string {
	switch k {
	case TargetFolder:
		return "folder"
	case TargetDrive:
		return "drive"
	default:
		return "unknown"
	}
}

// Target is a filesystem location an icon bundle gets applied to.
type Target struct {
	Path string
	Kind TargetKind
}

var driveRootRe = regexp.MustCompile(`^[A-Za-z]:[\\/]?$`)

// DetectTarget classifies path as a drive root or a folder. Drive roots
// are only meaningful on Windows but the classification itself is portable.
func DetectTarget(path string) Target {
	if driveRootRe.MatchString(path) {
		return Target{Path: path, Kind: TargetDrive}
	}
	return Target{Path: path, Kind: TargetFolder}
}

// DriveLetter extracts the letter of a drive-root target, uppercased.
func (t Target) DriveLetter() string {
	if t.Kind != TargetDrive || t.Path == "" {
		return ""
	}
	return strings.ToUpper(t.Path[:1])
}

// Well-known artifact names inside an applied target.
const (
	FolderIconName = "folder.ico"
	DesktopIniName = "desktop.ini"
	VolumeIconName = ".VolumeIcon.ico"
	AutorunName    = "autorun.inf"
	writeProbeName = ".iconify-probe"
)

// PersistenceRecord lists what Apply actually put in place, so callers can
// report and tests can assert idempotence.
type PersistenceRecord struct {
	IconPath      string
	ConfigPath    string
	AttributesSet bool
	RegistryKeys  []string
}

// Applier writes bundle artifacts into a target and persists the icon
// association the way the shell expects for that target kind.
type Applier struct {
	logger   hclog.Logger
	elevated bool
}

func NewApplier(logger hclog.Logger) *Applier {
	return &Applier{logger: logger.Named("apply"), elevated: IsElevated()}
}

// Apply installs icoData into the target. The target is probed before any
// artifact is written: a missing path or an unwritable one fails with no
// side effects. Re-applying over a previous application is supported; old
// artifacts are replaced in place.
func (a *Applier) Apply(target Target, icoData []byte) (*PersistenceRecord, error) {
	info, err := os.Stat(target.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrTargetNotFound, target.Path)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", errors.ErrTargetNotFound, target.Path)
	}
	if err := probeWritable(target.Path); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrTargetNotWritable, target.Path)
	}

	a.logger.Info("💾 Applying icon", "target", target.Path, "kind", target.Kind.String())

	switch target.Kind {
	case TargetDrive:
		return a.applyDrive(target, icoData)
	default:
		return a.applyFolder(target, icoData)
	}
}

func (a *Applier) applyFolder(target Target, icoData []byte) (*PersistenceRecord, error) {
	iconPath := filepath.Join(target.Path, FolderIconName)
	iniPath := filepath.Join(target.Path, DesktopIniName)

	if err := a.writeArtifact(iconPath, icoData); err != nil {
		return nil, err
	}
	ini, err := encodeDesktopIni()
	if err != nil {
		return nil, err
	}
	if err := a.writeArtifact(iniPath, ini); err != nil {
		return nil, err
	}

	attrsOK := a.markSystemArtifacts(target.Path, iconPath, iniPath)

	rec := &PersistenceRecord{
		IconPath:      iconPath,
		ConfigPath:    iniPath,
		AttributesSet: attrsOK,
	}
	a.logger.Info("✅ Folder icon applied", "icon", iconPath)
	return rec, nil
}

func (a *Applier) applyDrive(target Target, icoData []byte) (*PersistenceRecord, error) {
	iconPath := filepath.Join(target.Path, VolumeIconName)
	infPath := filepath.Join(target.Path, AutorunName)

	if err := a.writeArtifact(iconPath, icoData); err != nil {
		return nil, err
	}
	if err := a.writeArtifact(infPath, []byte(autorunContent())); err != nil {
		return nil, err
	}

	attrsOK := a.markSystemArtifacts("", iconPath, infPath)

	keys, err := persistDriveIcon(target.DriveLetter(), iconPath, a.elevated)
	if err != nil {
		// Registry persistence is additive to the on-disk artifacts;
		// its absence degrades to autorun-only behavior.
		a.logger.Warn("⚠️ Drive registry persistence failed", "error", err)
	}

	rec := &PersistenceRecord{
		IconPath:      iconPath,
		ConfigPath:    infPath,
		AttributesSet: attrsOK,
		RegistryKeys:  keys,
	}
	a.logger.Info("✅ Drive icon applied", "icon", iconPath, "registry_keys", len(keys))
	return rec, nil
}

// writeArtifact replaces path with data, first stripping hidden/system
// attributes a previous application may have set.
func (a *Applier) writeArtifact(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		if err := clearAttributes(path); err != nil {
			a.logger.Debug("Could not clear attributes", "path", path, "error", err)
		}
	}
	tmp := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := atomicfile.Replace(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// markSystemArtifacts hides the bookkeeping files and, for folders, marks
// the directory itself system so the shell honors desktop.ini. Attribute
// failures are logged, not fatal.
func (a *Applier) markSystemArtifacts(dir string, files ...string) bool {
	ok := true
	for _, f := range files {
		if err := setHiddenSystem(f); err != nil {
			a.logger.Debug("Could not set attributes", "path", f, "error", err)
			ok = false
		}
	}
	if dir != "" {
		if err := setSystem(dir); err != nil {
			a.logger.Debug("Could not mark directory system", "path", dir, "error", err)
			ok = false
		}
	}
	return ok
}

func probeWritable(dir string) error {
	probe := filepath.Join(dir, writeProbeName)
	f, err := os.OpenFile(probe, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	f.Close()
	return os.Remove(probe)
}

func desktopIniContent() string {
	return "[.ShellClassInfo]\r\n" +
		"IconResource=" + FolderIconName + ",0\r\n" +
		"IconFile=" + FolderIconName + "\r\n" +
		"IconIndex=0\r\n" +
		"ConfirmFileOp=0\r\n"
}

// encodeDesktopIni produces the UTF-16LE form with BOM that Explorer
// requires for non-ASCII resilience.
func encodeDesktopIni() ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	out, err := enc.Bytes([]byte(desktopIniContent()))
	if err != nil {
		return nil, fmt.Errorf("encoding desktop.ini: %w", err)
	}
	return out, nil
}

func autorunContent() string {
	return "[autorun]\r\n" +
		"icon=" + VolumeIconName + "\r\n"
}
