package export

import (
	"strconv"
	"time"

	"github.com/emogo-app/core/internal/models"
)

// Columns is the canonical field order shared by every export format. The
// HTML table header and the CSV header line both carry exactly these names.
var Columns = []string{
	"id",
	"mood_label",
	"mood_score",
	"latitude",
	"longitude",
	"recorded_at",
	"uploaded_at",
	"video_reference",
}

// Row is the rendered projection of one record. Both renderers consume the
// same Row values; HTML only adds markup around them. A missing coordinate
// stays an empty string, 0 is a real reading.
type Row struct {
	ID         string
	MoodLabel  string
	MoodScore  string
	Latitude   string
	Longitude  string
	RecordedAt string
	UploadedAt string
	Video      string
	HasVideo   bool
}

// Values returns the cells in canonical column order.
func (r Row) Values() []string {
	return []string{
		r.ID,
		r.MoodLabel,
		r.MoodScore,
		r.Latitude,
		r.Longitude,
		r.RecordedAt,
		r.UploadedAt,
		r.Video,
	}
}

// noVideoPlaceholder renders where a record carries no video payload.
const noVideoPlaceholder = "no video"

// taipeiZone is a fixed UTC+8 offset. Taiwan observes no daylight saving.
var taipeiZone = time.FixedZone("Asia/Taipei", 8*60*60)

// formatTaipei renders a stored UTC instant as Taipei wall-clock time.
func formatTaipei(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(taipeiZone).Format("2006-01-02 15:04")
}

func nowTaipei() string {
	return time.Now().In(taipeiZone).Format("2006-01-02 15:04:05")
}

func buildRow(rec *models.RecordModel) Row {
	row := Row{
		ID:         rec.ID.Hex(),
		MoodLabel:  rec.MoodLabel,
		MoodScore:  strconv.Itoa(rec.MoodScore),
		RecordedAt: formatTaipei(rec.RecordedAt),
		UploadedAt: formatTaipei(rec.UploadedAt),
		Video:      noVideoPlaceholder,
		HasVideo:   rec.VideoPresent,
	}
	if rec.Latitude != nil {
		row.Latitude = strconv.FormatFloat(*rec.Latitude, 'f', -1, 64)
	}
	if rec.Longitude != nil {
		row.Longitude = strconv.FormatFloat(*rec.Longitude, 'f', -1, 64)
	}
	if rec.VideoPresent {
		row.Video = "/records/" + rec.ID.Hex() + "/video"
	}
	return row
}
