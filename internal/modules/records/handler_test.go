package records

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/emogo-app/core/internal/models"
)

type memStore struct {
	items []models.RecordModel
	fail  bool
}

func (m *memStore) Insert(_ context.Context, rec *models.RecordModel) (primitive.ObjectID, error) {
	if m.fail {
		return primitive.NilObjectID, errors.New("connection reset by peer")
	}
	rec.ID = primitive.NewObjectID()
	m.items = append(m.items, *rec)
	return rec.ID, nil
}

func (m *memStore) ListAll(_ context.Context) ([]models.RecordModel, error) {
	if m.fail {
		return nil, errors.New("connection reset by peer")
	}
	out := make([]models.RecordModel, len(m.items))
	for i, it := range m.items {
		it.VideoData = nil
		out[i] = it
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, id primitive.ObjectID) (*models.RecordModel, error) {
	if m.fail {
		return nil, errors.New("connection reset by peer")
	}
	for i := range m.items {
		if m.items[i].ID == id {
			rec := m.items[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(NewService(store, zap.NewNop()), zap.NewNop())
	h.RegisterRoutes(r.Group(""))
	return r
}

func postRecord(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/records", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func getVideo(r *gin.Engine, id string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/records/"+id+"/video", nil)
	r.ServeHTTP(w, req)
	return w
}

func decodeID(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.ID)
	return body.ID
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func TestSubmitStoresRecord(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store)

	video := bytes.Repeat([]byte{0x66, 0x74, 0x79, 0x70}, 25)
	payload := map[string]any{
		"mood_label":  "happy",
		"mood_score":  4,
		"latitude":    25.03,
		"longitude":   121.56,
		"recorded_at": "2024-05-01T10:00:00Z",
		"video_data":  base64.StdEncoding.EncodeToString(video),
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	w := postRecord(r, string(raw))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decodeID(t, w)

	require.Len(t, store.items, 1)
	rec := store.items[0]
	assert.Equal(t, id, rec.ID.Hex())
	assert.Equal(t, "happy", rec.MoodLabel)
	assert.Equal(t, 4, rec.MoodScore)
	require.NotNil(t, rec.Latitude)
	require.NotNil(t, rec.Longitude)
	assert.Equal(t, 25.03, *rec.Latitude)
	assert.Equal(t, 121.56, *rec.Longitude)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), rec.RecordedAt)
	assert.WithinDuration(t, time.Now().UTC(), rec.UploadedAt, 5*time.Second)
	assert.True(t, rec.VideoPresent)
	assert.Equal(t, video, rec.VideoData)
}

func TestSubmitWithoutVideo(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store)

	w := postRecord(r, `{"mood_label":"calm","mood_score":3,"recorded_at":"2024-05-01T10:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.Len(t, store.items, 1)
	rec := store.items[0]
	assert.False(t, rec.VideoPresent)
	assert.Empty(t, rec.VideoData)
	assert.Nil(t, rec.Latitude)
	assert.Nil(t, rec.Longitude)
}

func TestSubmitZeroCoordinates(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store)

	w := postRecord(r, `{"mood_label":"lost","mood_score":2,"latitude":0,"longitude":0,"recorded_at":"2024-05-01T10:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	rec := store.items[0]
	require.NotNil(t, rec.Latitude)
	require.NotNil(t, rec.Longitude)
	assert.Zero(t, *rec.Latitude)
	assert.Zero(t, *rec.Longitude)
}

func TestSubmitValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing mood_label", `{"mood_score":4,"recorded_at":"2024-05-01T10:00:00Z"}`, "mood_label"},
		{"empty mood_label", `{"mood_label":"","mood_score":4,"recorded_at":"2024-05-01T10:00:00Z"}`, "mood_label"},
		{"score above range", `{"mood_label":"happy","mood_score":7,"recorded_at":"2024-05-01T10:00:00Z"}`, "mood_score"},
		{"score below range", `{"mood_label":"happy","mood_score":0,"recorded_at":"2024-05-01T10:00:00Z"}`, "mood_score"},
		{"score not an integer", `{"mood_label":"happy","mood_score":4.5,"recorded_at":"2024-05-01T10:00:00Z"}`, "mood_score"},
		{"score as string", `{"mood_label":"happy","mood_score":"4","recorded_at":"2024-05-01T10:00:00Z"}`, "mood_score"},
		{"latitude not a number", `{"mood_label":"happy","mood_score":4,"latitude":"x","recorded_at":"2024-05-01T10:00:00Z"}`, "latitude"},
		{"missing recorded_at", `{"mood_label":"happy","mood_score":4}`, "recorded_at"},
		{"unparseable recorded_at", `{"mood_label":"happy","mood_score":4,"recorded_at":"yesterday"}`, "recorded_at"},
		{"malformed video_data", `{"mood_label":"happy","mood_score":4,"recorded_at":"2024-05-01T10:00:00Z","video_data":"!!!"}`, "video_data"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memStore{}
			r := newTestRouter(store)

			w := postRecord(r, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, errorMessage(t, w), tc.want)
			assert.Empty(t, store.items, "no record may be stored on validation failure")
		})
	}
}

func TestSubmitStorageFailure(t *testing.T) {
	store := &memStore{fail: true}
	r := newTestRouter(store)

	w := postRecord(r, `{"mood_label":"happy","mood_score":4,"recorded_at":"2024-05-01T10:00:00Z"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset", "internal detail must not leak")
}

func TestSubmitNotIdempotent(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store)

	body := `{"mood_label":"happy","mood_score":4,"recorded_at":"2024-05-01T10:00:00Z"}`
	first := postRecord(r, body)
	second := postRecord(r, body)
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, http.StatusCreated, second.Code)

	assert.NotEqual(t, decodeID(t, first), decodeID(t, second))
	assert.Len(t, store.items, 2)
}

func TestVideoRoundTrip(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store)

	video := make([]byte, 100)
	for i := range video {
		video[i] = byte(i)
	}
	payload := map[string]any{
		"mood_label":  "happy",
		"mood_score":  4,
		"recorded_at": "2024-05-01T10:00:00Z",
		"video_data":  base64.StdEncoding.EncodeToString(video),
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	id := decodeID(t, postRecord(r, string(raw)))

	w := getVideo(r, id)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="emogo_record_`+id+`.mp4"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, video, w.Body.Bytes(), "stored bytes must come back verbatim")
}

func TestVideoLookupErrors(t *testing.T) {
	store := &memStore{}
	r := newTestRouter(store)

	noVideoID := decodeID(t, postRecord(r, `{"mood_label":"calm","mood_score":3,"recorded_at":"2024-05-01T10:00:00Z"}`))

	w := getVideo(r, "not-a-hex-id")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid record id", errorMessage(t, w))

	w = getVideo(r, primitive.NewObjectID().Hex())
	assert.Equal(t, http.StatusNotFound, w.Code)
	missingMsg := errorMessage(t, w)
	assert.Equal(t, "Record not found", missingMsg)

	w = getVideo(r, noVideoID)
	assert.Equal(t, http.StatusNotFound, w.Code)
	noVideoMsg := errorMessage(t, w)
	assert.Equal(t, "No video stored for this record", noVideoMsg)

	assert.NotEqual(t, missingMsg, noVideoMsg, "missing record and missing video are distinct conditions")
}
