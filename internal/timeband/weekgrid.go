package timeband

import (
	"time"

	"clinic-booking-server/internal/models"
)

// WeekRange computes the Monday-start 7-day window containing ref. Sunday
// belongs to the window opened by the preceding Monday.
func WeekRange(ref time.Time) (start, end time.Time) {
	d := dateOnly(ref)
	offset := (int(d.Weekday()) + 6) % 7 // days since Monday
	start = d.AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 6)
	return start, end
}

// GridCell holds the slots of one (day, band) cell of the weekly timetable.
type GridCell struct {
	Band  Band              `json:"band"`
	Slots []models.TimeSlot `json:"slots"`
}

// GridDay is one column of the weekly timetable.
type GridDay struct {
	Date  time.Time  `json:"date"`
	Cells []GridCell `json:"cells"`
}

// WeekGrid is the 7-day, per-band timetable view for one doctor.
type WeekGrid struct {
	WeekStart time.Time `json:"weekStart"`
	WeekEnd   time.Time `json:"weekEnd"`
	Days      []GridDay `json:"days"`
}

// BuildWeekGrid lays the given schedules out on the week containing ref.
// Days with no schedule simply produce empty cells.
func BuildWeekGrid(ref time.Time, schedules []models.Schedule) WeekGrid {
	start, end := WeekRange(ref)

	byDate := make(map[time.Time]models.Schedule, len(schedules))
	for _, sched := range schedules {
		byDate[dateOnly(sched.Date)] = sched
	}

	grid := WeekGrid{WeekStart: start, WeekEnd: end, Days: make([]GridDay, 0, 7)}
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		col := GridDay{Date: day, Cells: make([]GridCell, 0, len(Bands()))}
		sched, ok := byDate[day]
		for _, band := range Bands() {
			cell := GridCell{Band: band}
			if ok {
				cell.Slots = FilterByBand(sched.TimeSlots, band)
			}
			col.Cells = append(col.Cells, cell)
		}
		grid.Days = append(grid.Days, col)
	}
	return grid
}
