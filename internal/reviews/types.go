package reviews

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxStars is the width of the rendered star rating.
const MaxStars = 5

// Rating is a review score. Older saved reviews carry the score as a string
// ("4"); both forms decode.
type Rating int

func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
		if len(data) == 0 {
			*r = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*r = Rating(int(f))
	return nil
}

// Review is one entry of a product's review list.
type Review struct {
	ID        uuid.UUID `json:"id"`
	Rating    Rating    `json:"rating"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// Stars renders a rating as filled and empty stars, clamped to 0..MaxStars.
func Stars(rating int) string {
	filled := min(max(rating, 0), MaxStars)
	return strings.Repeat("★", filled) + strings.Repeat("☆", MaxStars-filled)
}
