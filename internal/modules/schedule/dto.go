package schedule

// AvailableTimesResponse keeps the original route shape.
type AvailableTimesResponse struct {
	AvailableTimes []TimeSlot `json:"available_times"`
}

type HoursEntryRequest struct {
	Mode      string  `json:"mode" binding:"required"`
	DayOfWeek *int    `json:"day_of_week,omitempty"`
	OpenTime  *string `json:"open_time,omitempty"`
	CloseTime *string `json:"close_time,omitempty"`
	IsClosed  bool    `json:"is_closed"`
}

type SetHoursRequest struct {
	Entries []HoursEntryRequest `json:"entries" binding:"required"`
}
