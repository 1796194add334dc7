package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecordModel stores one mood record.
// Latitude and Longitude are pointers so an absent coordinate is
// distinguishable from a real 0.0 reading.
type RecordModel struct {
	ID           primitive.ObjectID `json:"id"           bson:"_id,omitempty"`
	MoodLabel    string             `json:"mood_label"   bson:"mood_label"`
	MoodScore    int                `json:"mood_score"   bson:"mood_score"`
	Latitude     *float64           `json:"latitude"     bson:"latitude,omitempty"`
	Longitude    *float64           `json:"longitude"    bson:"longitude,omitempty"`
	RecordedAt   time.Time          `json:"recorded_at"  bson:"recorded_at"`
	UploadedAt   time.Time          `json:"uploaded_at"  bson:"uploaded_at"`
	VideoData    []byte             `json:"-"            bson:"video_data,omitempty"`
	VideoPresent bool               `json:"has_video"    bson:"video_present"`
}
