package export

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/emogo-app/core/internal/models"
)

type memLister struct {
	items []models.RecordModel
	err   error
}

func (m *memLister) ListAll(context.Context) ([]models.RecordModel, error) {
	return m.items, m.err
}

func newTestRouter(lister Lister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(NewService(lister), zap.NewNop())
	h.RegisterRoutes(r.Group(""))
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func oid(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return id
}

func ptr(v float64) *float64 { return &v }

func sampleRecords(t *testing.T) []models.RecordModel {
	t.Helper()
	return []models.RecordModel{
		{
			ID:           oid(t, "656565656565656565656565"),
			MoodLabel:    "happy",
			MoodScore:    4,
			Latitude:     ptr(25.03),
			Longitude:    ptr(121.56),
			RecordedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			UploadedAt:   time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC),
			VideoPresent: true,
		},
		{
			ID:           oid(t, "656565656565656565656566"),
			MoodLabel:    "難過",
			MoodScore:    2,
			RecordedAt:   time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC),
			UploadedAt:   time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
			VideoPresent: false,
		},
	}
}

func TestFormatTaipei(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024-01-01 08:00"},
		{time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC), "2024-05-02 07:30"},
		{time.Time{}, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatTaipei(tc.in))
	}
}

func TestBuildRow(t *testing.T) {
	recs := sampleRecords(t)

	row := buildRow(&recs[0])
	assert.Equal(t, "656565656565656565656565", row.ID)
	assert.Equal(t, "happy", row.MoodLabel)
	assert.Equal(t, "4", row.MoodScore)
	assert.Equal(t, "25.03", row.Latitude)
	assert.Equal(t, "121.56", row.Longitude)
	assert.Equal(t, "2024-01-01 08:00", row.RecordedAt)
	assert.Equal(t, "2024-01-01 08:05", row.UploadedAt)
	assert.Equal(t, "/records/656565656565656565656565/video", row.Video)
	assert.True(t, row.HasVideo)

	row = buildRow(&recs[1])
	assert.Equal(t, "", row.Latitude, "absent coordinate renders empty, not zero")
	assert.Equal(t, "", row.Longitude)
	assert.Equal(t, "no video", row.Video)
	assert.False(t, row.HasVideo)
}

func TestBuildRowZeroCoordinates(t *testing.T) {
	rec := models.RecordModel{
		ID:        oid(t, "656565656565656565656567"),
		MoodLabel: "lost",
		MoodScore: 1,
		Latitude:  ptr(0),
		Longitude: ptr(0),
	}
	row := buildRow(&rec)
	assert.Equal(t, "0", row.Latitude, "zero is a real coordinate")
	assert.Equal(t, "0", row.Longitude)
}

func TestCSVEndpoint(t *testing.T) {
	r := newTestRouter(&memLister{items: sampleRecords(t)})

	w := get(r, "/export/csv")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=emogo_records.csv", w.Header().Get("Content-Disposition"))

	parsed, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 3)

	assert.Equal(t, Columns, parsed[0])
	assert.Equal(t, []string{
		"656565656565656565656565", "happy", "4", "25.03", "121.56",
		"2024-01-01 08:00", "2024-01-01 08:05", "/records/656565656565656565656565/video",
	}, parsed[1])
	assert.Equal(t, []string{
		"656565656565656565656566", "難過", "2", "", "",
		"2024-05-02 07:30", "2024-05-02 08:00", "no video",
	}, parsed[2])
}

func TestCSVQuotingRoundTrips(t *testing.T) {
	label := "happy, \"very\"\nmuch"
	items := []models.RecordModel{{
		ID:        oid(t, "656565656565656565656568"),
		MoodLabel: label,
		MoodScore: 5,
	}}
	r := newTestRouter(&memLister{items: items})

	w := get(r, "/export/csv")
	require.Equal(t, http.StatusOK, w.Code)

	parsed, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, label, parsed[1][1], "delimiter, quote and newline must survive a round trip")
}

func TestHTMLEndpoint(t *testing.T) {
	r := newTestRouter(&memLister{items: sampleRecords(t)})

	w := get(r, "/export")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	body := w.Body.String()
	for _, col := range Columns {
		assert.Contains(t, body, "<th>"+col+"</th>")
	}
	assert.Contains(t, body, "共 2 筆紀錄")
	assert.Contains(t, body, `<a href="/records/656565656565656565656565/video">/records/656565656565656565656565/video</a>`)
	assert.Contains(t, body, "no video")
	assert.Contains(t, body, "<td>2024-01-01 08:00</td>")
	assert.Contains(t, body, "<td>難過</td>")
}

func TestHTMLEmptyStore(t *testing.T) {
	r := newTestRouter(&memLister{})

	w := get(r, "/export")
	require.Equal(t, http.StatusOK, w.Code, "an empty store renders an empty table, not an error")
	assert.Contains(t, w.Body.String(), "共 0 筆紀錄")
	assert.NotContains(t, w.Body.String(), "<td>")
}

func TestCSVEmptyStore(t *testing.T) {
	r := newTestRouter(&memLister{})

	w := get(r, "/export/csv")
	require.Equal(t, http.StatusOK, w.Code)

	parsed, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 1, "empty store yields the header line only")
	assert.Equal(t, Columns, parsed[0])
}

func TestCSVMatchesHTML(t *testing.T) {
	r := newTestRouter(&memLister{items: sampleRecords(t)})

	csvBody := get(r, "/export/csv").Body.String()
	htmlBody := get(r, "/export").Body.String()

	parsed, err := csv.NewReader(strings.NewReader(csvBody)).ReadAll()
	require.NoError(t, err)

	for _, row := range parsed[1:] {
		for _, value := range row {
			if value == "" {
				continue
			}
			assert.Contains(t, htmlBody, value, "every CSV value must appear in the HTML view")
		}
	}
}

func TestExportStorageError(t *testing.T) {
	r := newTestRouter(&memLister{err: errors.New("connection reset by peer")})

	for _, path := range []string{"/export", "/export/csv"} {
		w := get(r, path)
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.NotContains(t, w.Body.String(), "connection reset", "internal detail must not leak")
	}
}
