package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/emogo-app/core/internal/config"
	"github.com/emogo-app/core/internal/models"
	"github.com/emogo-app/core/internal/pkg/prettylog"
)

const (
	backupRootDir       = "emogo"
	backupDBDir         = backupRootDir + "/db"
	backupManifestFile  = backupRootDir + "/manifest.json"
	backupFormat        = "emogo-bson"
	backupFormatVersion = 1
	defaultKeyTemplate  = "{Y}/{m}/{filename}"
)

// Dumper supplies complete record documents, video bytes included.
type Dumper interface {
	DumpAll(ctx context.Context) ([]models.RecordModel, error)
}

// Manifest describes the contents of one archive.
type Manifest struct {
	Format     string    `json:"format"`
	Version    int       `json:"version"`
	Engine     string    `json:"engine"`
	Collection string    `json:"collection"`
	Records    int       `json:"records"`
	CreatedAt  time.Time `json:"created_at"`
}

// Artifact is one archive written to the backup directory.
type Artifact struct {
	Filename string `json:"filename"`
	Path     string `json:"-"`
	Size     int64  `json:"-"`
	Records  int    `json:"records"`
}

// Item is one archive as listed to the admin surface.
type Item struct {
	Filename string `json:"filename"`
	Size     string `json:"size"`
}

type Service struct {
	store Dumper
	cfg   *config.AppConfig
	log   *zap.Logger
}

func NewService(store Dumper, cfg *config.AppConfig, log *zap.Logger) *Service {
	return &Service{store: store, cfg: cfg, log: log}
}

// Dir returns the archive directory.
func (s *Service) Dir() string { return s.cfg.BackupDir() }

// CreateArchive dumps every record to BSON rows, zips them together with a
// manifest, writes the archive to the backup directory, prunes archives
// beyond the retention count, and uploads to S3 when configured. A failed
// upload is returned as an error but the local archive stays on disk.
func (s *Service) CreateArchive(ctx context.Context) (*Artifact, error) {
	records, err := s.store.DumpAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("dump records: %w", err)
	}

	now := time.Now()
	buf, err := buildArchive(records, s.cfg.MongoDB.CollectionName(), now)
	if err != nil {
		return nil, fmt.Errorf("build archive: %w", err)
	}

	dir := s.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("backup-%s.zip", now.Format("2006-01-02T15-04-05"))
	fullPath := filepath.Join(dir, filename)
	if err := os.WriteFile(fullPath, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}

	artifact := &Artifact{
		Filename: filename,
		Path:     fullPath,
		Size:     int64(buf.Len()),
		Records:  len(records),
	}

	s.log.Info("備份完成",
		zap.String("file", filename),
		zap.Int("records", artifact.Records),
		zap.String("size", formatSize(artifact.Size)),
		prettylog.SuccessField(),
	)

	s.pruneArchives(dir)

	if s.cfg.Backup.S3.Enable {
		if err := s.uploadArchive(ctx, artifact, buf.Bytes(), now); err != nil {
			return artifact, fmt.Errorf("s3 upload: %w", err)
		}
	}
	return artifact, nil
}

func (s *Service) uploadArchive(ctx context.Context, artifact *Artifact, payload []byte, now time.Time) error {
	uploader, err := newS3Uploader(s.cfg.Backup.S3)
	if err != nil {
		return err
	}

	key := renderBackupObjectKey(s.cfg.Backup.S3.KeyTemplate, artifact.Filename, now)
	if err := uploader.Upload(ctx, key, payload, "application/zip"); err != nil {
		return err
	}

	s.log.Info("備份已上傳 S3", zap.String("key", key), zap.String("bucket", s.cfg.Backup.S3.Bucket))
	return nil
}

// pruneArchives removes the oldest archives beyond the retention count.
// Keep <= 0 disables pruning. The timestamped filenames sort by age.
func (s *Service) pruneArchives(dir string) {
	keep := s.cfg.Backup.Keep
	if keep <= 0 {
		return
	}

	names := archiveNames(dir)
	if len(names) <= keep {
		return
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			s.log.Warn("prune backup failed", zap.String("file", name), zap.Error(err))
			continue
		}
		s.log.Info("已清理過期備份", zap.String("file", name))
	}
}

// ListArchives reports the archives on disk, newest first.
func (s *Service) ListArchives() []Item {
	dir := s.Dir()
	names := archiveNames(dir)
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	items := make([]Item, 0, len(names))
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		items = append(items, Item{Filename: name, Size: formatSize(info.Size())})
	}
	return items
}

func archiveNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "backup-") || !strings.HasSuffix(e.Name(), ".zip") {
			continue
		}
		names = append(names, e.Name())
	}
	return names
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

// buildArchive zips the records as concatenated BSON documents plus a
// manifest describing the dump.
func buildArchive(records []models.RecordModel, collection string, now time.Time) (*bytes.Buffer, error) {
	payload, err := encodeBSONRows(records)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)

	f, err := w.Create(path.Join(backupDBDir, collection+".bson"))
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if _, err := f.Write(payload); err != nil {
			return nil, err
		}
	}

	manifest := Manifest{
		Format:     backupFormat,
		Version:    backupFormatVersion,
		Engine:     "mongodb",
		Collection: collection,
		Records:    len(records),
		CreatedAt:  now.UTC(),
	}
	manifestData, err := json.Marshal(manifest)
	if err != nil {
		return nil, err
	}
	mf, err := w.Create(backupManifestFile)
	if err != nil {
		return nil, err
	}
	if _, err := mf.Write(manifestData); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}

func encodeBSONRows(records []models.RecordModel) ([]byte, error) {
	if len(records) == 0 {
		return []byte{}, nil
	}
	buffer := bytes.NewBuffer(nil)
	for i := range records {
		b, err := bson.Marshal(&records[i])
		if err != nil {
			return nil, err
		}
		if _, err := buffer.Write(b); err != nil {
			return nil, err
		}
	}
	return buffer.Bytes(), nil
}

func decodeBSONRows(payload []byte) ([]models.RecordModel, error) {
	if len(payload) == 0 {
		return []models.RecordModel{}, nil
	}
	rows := make([]models.RecordModel, 0)
	cursor := 0
	for cursor < len(payload) {
		if cursor+4 > len(payload) {
			return nil, fmt.Errorf("invalid bson payload")
		}
		docLen := int(int32(binary.LittleEndian.Uint32(payload[cursor : cursor+4])))
		if docLen <= 0 || cursor+docLen > len(payload) {
			return nil, fmt.Errorf("invalid bson document length")
		}
		var row models.RecordModel
		if err := bson.Unmarshal(payload[cursor:cursor+docLen], &row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
		cursor += docLen
	}
	return rows, nil
}

func renderBackupObjectKey(template, filename string, now time.Time) string {
	tpl := strings.TrimSpace(template)
	if tpl == "" {
		tpl = defaultKeyTemplate
	}

	replacer := strings.NewReplacer(
		"{Y}", now.Format("2006"),
		"{m}", now.Format("01"),
		"{d}", now.Format("02"),
		"{H}", now.Format("15"),
		"{M}", now.Format("04"),
		"{s}", now.Format("05"),
		"{filename}", filename,
	)

	key := replacer.Replace(tpl)
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimSpace(strings.TrimPrefix(key, "/"))
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	if key == "" {
		return filename
	}
	return key
}
