package analysis

import (
	"sort"
	"time"

	"spotwatch/internal/domain"
)

const hoursPerDay = 24

// DailyAverages buckets points by their local calendar day in loc and
// returns an average for every complete day. A bucket qualifies only when it
// holds exactly 24 points, each point's local hour equals its position in
// hour-sorted order, and all points share the local date. That rule drops
// DST transition days (23 or 25 local hours) instead of mis-averaging them.
// Partial days never appear in the output.
func DailyAverages(s domain.Series, loc *time.Location) []domain.DailyAverage {
	if len(s) == 0 {
		return nil
	}

	buckets := make(map[string]domain.Series)
	for _, p := range s {
		date := p.Timestamp.In(loc).Format("2006-01-02")
		buckets[date] = append(buckets[date], p)
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var daily []domain.DailyAverage
	for _, date := range dates {
		points := buckets[date]
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].Timestamp.Before(points[j].Timestamp)
		})
		if !isFullLocalDay(points, loc, date) {
			continue
		}
		sum := 0.0
		for _, p := range points {
			sum += p.Value
		}
		start := points[0].Timestamp.In(loc)
		daily = append(daily, domain.DailyAverage{
			Date:    date,
			Start:   start,
			End:     start.Add(hoursPerDay * time.Hour),
			Average: sum / float64(len(points)),
			Points:  points,
		})
	}
	return daily
}

func isFullLocalDay(points domain.Series, loc *time.Location, date string) bool {
	if len(points) != hoursPerDay {
		return false
	}
	for i, p := range points {
		local := p.Timestamp.In(loc)
		if local.Format("2006-01-02") != date {
			return false
		}
		if local.Hour() != i {
			return false
		}
	}
	return true
}
