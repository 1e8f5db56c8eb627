package budget

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/etnz/budget/date"
)

// Storage saves and loads ledgers by name or path, and keeps backups.
type Storage interface {
	Save(name string, l *Ledger) error
	Load(name string) (*Ledger, error)
	SaveToPath(path string, l *Ledger) error
	LoadFromPath(path string) (*Ledger, error)
	Backup(name string, l *Ledger, note string) (BackupInfo, error)
	ListBackups(name string) ([]BackupInfo, error)
	Restore(info BackupInfo) (*Ledger, error)
}

// BackupInfo describes a ledger backup.
type BackupInfo struct {
	Ledger    string    `json:"ledger"`
	Path      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	Note      string    `json:"note,omitempty"`
}

const (
	ledgerExt  = ".jsonl"
	backupsDir = ".backups"
)

// BackupTimeFormat formats the creation time of a backup in its file name.
const BackupTimeFormat = "20060102T150405.000000000Z"

// FileStore stores ledgers as JSONL files in a folder: a ledger named
// "home/2025" lives in "<Dir>/home/2025.jsonl" and its backups in
// "<Dir>/.backups/home/2025/".
type FileStore struct {
	Dir   string
	Clock date.Clock
}

var _ Storage = (*FileStore)(nil)

// NewFileStore returns a store in dir using the system clock.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, Clock: date.SystemClock{}}
}

func (s *FileStore) path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("ledger name is missing")
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid ledger name %q", name)
	}
	return filepath.Join(s.Dir, clean+ledgerExt), nil
}

// Save writes the ledger named name.
func (s *FileStore) Save(name string, l *Ledger) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	return s.SaveToPath(p, l)
}

// Load reads the ledger named name.
func (s *FileStore) Load(name string) (*Ledger, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return s.LoadFromPath(p)
}

// Exists reports whether the ledger named name has been saved.
func (s *FileStore) Exists(name string) bool {
	p, err := s.path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// SaveToPath writes the ledger to a file. The file is replaced atomically.
func (s *FileStore) SaveToPath(path string, l *Ledger) error {
	return writeAtomic(path, func(f *os.File) error { return EncodeLedger(f, l) })
}

// writeAtomic writes a temporary file next to path then renames it.
func writeAtomic(path string, write func(*os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory for ledger %q: %w", path, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error opening temporary file for %q: %w", path, err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing ledger %q: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("error syncing ledger %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing ledger %q: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("error replacing ledger %q: %w", path, err)
	}
	return nil
}

// LoadFromPath reads a ledger file.
func (s *FileStore) LoadFromPath(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open ledger file %q: %w", path, err)
	}
	defer f.Close()

	l, err := DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode ledger file %q: %w", path, err)
	}
	return l, nil
}

// List returns the names of the ledgers in the store.
func (s *FileStore) List() ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == backupsDir {
			return filepath.SkipDir
		}
		if d.IsDir() || !strings.HasSuffix(p, ledgerExt) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(s.Dir, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(strings.TrimSuffix(rel, ledgerExt)))
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return names, err
}

func (s *FileStore) backupDir(name string) (string, error) {
	if _, err := s.path(name); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, backupsDir, filepath.FromSlash(name)), nil
}

// Backup writes a copy of the ledger with a header record holding the note.
func (s *FileStore) Backup(name string, l *Ledger, note string) (BackupInfo, error) {
	dir, err := s.backupDir(name)
	if err != nil {
		return BackupInfo{}, err
	}
	now := s.Clock.Now().UTC()
	info := BackupInfo{
		Ledger:    name,
		Path:      filepath.Join(dir, now.Format(BackupTimeFormat)+ledgerExt),
		CreatedAt: now,
		Note:      note,
	}
	err = writeAtomic(info.Path, func(f *os.File) error {
		if err := newRecord(recordBackup).EmbedFrom(info).WriteLine(f); err != nil {
			return err
		}
		return EncodeLedger(f, l)
	})
	if err != nil {
		return BackupInfo{}, err
	}
	return info, nil
}

// ListBackups returns the backups of the ledger named name, oldest first.
func (s *FileStore) ListBackups(name string) ([]BackupInfo, error) {
	dir, err := s.backupDir(name)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not list backups of %q: %w", name, err)
	}
	var infos []BackupInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ledgerExt) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := readBackupHeader(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		info.Ledger = name
		infos = append(infos, info)
	}
	slices.SortFunc(infos, func(a, b BackupInfo) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return infos, nil
}

// readBackupHeader reads the backup record of a backup file.
func readBackupHeader(path string) (BackupInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("could not open backup %q: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	if !scanner.Scan() {
		return BackupInfo{}, fmt.Errorf("backup %q is empty", path)
	}
	var header struct {
		Record string `json:"record"`
		BackupInfo
	}
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil || header.Record != recordBackup {
		return BackupInfo{}, fmt.Errorf("backup %q has no backup header", path)
	}
	info := header.BackupInfo
	info.Path = path
	return info, nil
}

// Restore reads the ledger of a backup. Saving it is up to the caller.
func (s *FileStore) Restore(info BackupInfo) (*Ledger, error) {
	if info.Path == "" {
		return nil, fmt.Errorf("backup of %q has no path", info.Ledger)
	}
	return s.LoadFromPath(info.Path)
}
