package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/emogo-app/core/internal/config"
	"github.com/emogo-app/core/internal/models"
)

type memDumper struct {
	items []models.RecordModel
}

func (m *memDumper) DumpAll(context.Context) ([]models.RecordModel, error) {
	return m.items, nil
}

func testService(t *testing.T, items []models.RecordModel, keep int) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.AppConfig{
		MongoDB: config.MongoRuntimeConfig{Collection: "records"},
		Paths:   config.RuntimePathsConfig{Backups: dir},
		Backup:  config.BackupRuntimeConfig{Enable: true, Keep: keep},
	}
	return NewService(&memDumper{items: items}, cfg, zap.NewNop()), dir
}

func ptr(v float64) *float64 { return &v }

func sampleDump() []models.RecordModel {
	video := bytes.Repeat([]byte{0xAB, 0xCD}, 50)
	return []models.RecordModel{
		{
			ID:           primitive.NewObjectID(),
			MoodLabel:    "happy",
			MoodScore:    4,
			Latitude:     ptr(25.03),
			Longitude:    ptr(121.56),
			RecordedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			UploadedAt:   time.Date(2024, 5, 1, 10, 0, 5, 0, time.UTC),
			VideoData:    video,
			VideoPresent: true,
		},
		{
			ID:         primitive.NewObjectID(),
			MoodLabel:  "難過",
			MoodScore:  2,
			RecordedAt: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
			UploadedAt: time.Date(2024, 5, 2, 9, 0, 3, 0, time.UTC),
		},
	}
}

func readZipEntry(t *testing.T, zr *zip.Reader, name string) []byte {
	t.Helper()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return data
	}
	t.Fatalf("zip entry %s not found", name)
	return nil
}

func TestCreateArchive(t *testing.T) {
	items := sampleDump()
	svc, _ := testService(t, items, 7)

	artifact, err := svc.CreateArchive(context.Background())
	require.NoError(t, err)
	require.NotNil(t, artifact)
	assert.Equal(t, 2, artifact.Records)

	data, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var manifest Manifest
	require.NoError(t, json.Unmarshal(readZipEntry(t, zr, "emogo/manifest.json"), &manifest))
	assert.Equal(t, "emogo-bson", manifest.Format)
	assert.Equal(t, 1, manifest.Version)
	assert.Equal(t, "mongodb", manifest.Engine)
	assert.Equal(t, "records", manifest.Collection)
	assert.Equal(t, 2, manifest.Records)

	rows, err := decodeBSONRows(readZipEntry(t, zr, "emogo/db/records.bson"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, items[0].ID, rows[0].ID)
	assert.Equal(t, "happy", rows[0].MoodLabel)
	assert.Equal(t, items[0].VideoData, rows[0].VideoData, "video bytes ride along in the dump")
	assert.True(t, rows[0].VideoPresent)
	assert.True(t, rows[0].RecordedAt.Equal(items[0].RecordedAt))

	assert.Equal(t, "難過", rows[1].MoodLabel)
	assert.Nil(t, rows[1].Latitude)
	assert.Empty(t, rows[1].VideoData)
}

func TestCreateArchiveEmptyStore(t *testing.T) {
	svc, _ := testService(t, nil, 7)

	artifact, err := svc.CreateArchive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, artifact.Records)

	data, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	rows, err := decodeBSONRows(readZipEntry(t, zr, "emogo/db/records.bson"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPruneKeepsNewestArchives(t *testing.T) {
	svc, dir := testService(t, nil, 2)

	for _, name := range []string{
		"backup-2024-01-01T00-00-00.zip",
		"backup-2024-01-02T00-00-00.zip",
		"backup-2024-01-03T00-00-00.zip",
		"backup-2024-01-04T00-00-00.zip",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("zip"), 0o644))
	}

	artifact, err := svc.CreateArchive(context.Background())
	require.NoError(t, err)

	names := archiveNames(dir)
	require.Len(t, names, 2)
	assert.Contains(t, names, artifact.Filename, "the fresh archive survives pruning")
	assert.Contains(t, names, "backup-2024-01-04T00-00-00.zip")
}

func TestListArchives(t *testing.T) {
	svc, dir := testService(t, nil, 0)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "backup-2024-01-01T00-00-00.zip"), bytes.Repeat([]byte{0}, 2048), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backup-2024-02-01T00-00-00.zip"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))

	items := svc.ListArchives()
	require.Len(t, items, 2)
	assert.Equal(t, "backup-2024-02-01T00-00-00.zip", items[0].Filename, "newest first")
	assert.Equal(t, "2.00 KB", items[1].Size)
}

func TestRenderBackupObjectKey(t *testing.T) {
	now := time.Date(2024, 5, 1, 13, 45, 9, 0, time.UTC)

	assert.Equal(t, "2024/05/backup-x.zip", renderBackupObjectKey("", "backup-x.zip", now))
	assert.Equal(t, "dumps/2024/01/backup-x.zip", renderBackupObjectKey("dumps/{Y}/{d}/{filename}", "backup-x.zip", now))
	assert.Equal(t, "2024/05/backup-x.zip", renderBackupObjectKey("/{Y}//{m}/{filename}", "backup-x.zip", now))
	assert.Equal(t, "backup-x.zip", renderBackupObjectKey("/", "backup-x.zip", now))
}
