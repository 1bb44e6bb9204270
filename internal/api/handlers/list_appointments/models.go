package list_appointments

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
)

const dateFormat = "2006-01-02"

// ToServiceRequest формирует запрос к сервису из query параметров
// date=YYYY-MM-DD задаёт период в один день и имеет приоритет над from/to
func ToServiceRequest(query url.Values, loc *time.Location) (*models.ListRequest, error) {
	req := &models.ListRequest{}

	if track := query.Get("track"); track != "" {
		req.Track = &track
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if date := query.Get("date"); date != "" {
		day, err := time.ParseInLocation(dateFormat, date, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		next := day.AddDate(0, 0, 1)
		req.From = &day
		req.To = &next
	} else {
		from, err := handlers.ParseOptionalTimestamp(optional(query.Get("from")), loc)
		if err != nil {
			return nil, fmt.Errorf("invalid from: %w", err)
		}
		to, err := handlers.ParseOptionalTimestamp(optional(query.Get("to")), loc)
		if err != nil {
			return nil, fmt.Errorf("invalid to: %w", err)
		}
		req.From, req.To = from, to
	}

	if raw := query.Get("includeCancelled"); raw != "" {
		includeCancelled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid includeCancelled value: %w", err)
		}
		req.IncludeCancelled = includeCancelled
	}

	return req, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
