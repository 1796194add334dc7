package records

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SubmitRecordDTO is one inbound mood submission. Latitude and Longitude
// are pointers because absence is a valid state distinct from 0.
type SubmitRecordDTO struct {
	MoodLabel  string   `json:"mood_label"  binding:"required"`
	MoodScore  int      `json:"mood_score"  binding:"min=1,max=5"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	RecordedAt string   `json:"recorded_at" binding:"required"`
	VideoData  string   `json:"video_data"`
}

var dtoFieldNames = map[string]string{
	"MoodLabel":  "mood_label",
	"MoodScore":  "mood_score",
	"Latitude":   "latitude",
	"Longitude":  "longitude",
	"RecordedAt": "recorded_at",
	"VideoData":  "video_data",
}

// bindErrorMessage turns a ShouldBindJSON failure into a message naming the
// offending field, so the client knows what to fix.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := dtoFieldNames[fe.StructField()]
		if field == "" {
			field = strings.ToLower(fe.StructField())
		}
		switch fe.Tag() {
		case "required":
			return field + " is required"
		case "min", "max":
			return field + " must be an integer between 1 and 5"
		}
		return field + " is invalid"
	}

	var jerr *json.UnmarshalTypeError
	if errors.As(err, &jerr) && jerr.Field != "" {
		switch jerr.Field {
		case "mood_score":
			return "mood_score must be an integer between 1 and 5"
		case "latitude", "longitude":
			return jerr.Field + " must be a number"
		}
		return jerr.Field + " must be of type " + jerr.Type.String()
	}

	return "request body must be valid JSON"
}
