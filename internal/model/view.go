package model

import "encoding/json"

// ScheduleDetail is a schedule with its auditorium's capacity and seats sold.
type ScheduleDetail struct {
	Schedule
	AuditoriumCapacity int   `json:"auditoriumCapacity"`
	TicketsSold        int64 `json:"ticketsSold"`
}

type ScheduleSales struct {
	Schedule    Schedule `json:"schedule"`
	TicketsSold int64    `json:"ticketsSold"`
}

// MarshalJSON exposes the bookings as the ordered usedSchedules array.
func (t SuperTicket) MarshalJSON() ([]byte, error) {
	type plain SuperTicket
	return json.Marshal(struct {
		plain
		UsedSchedules []uint `json:"usedSchedules"`
	}{plain: plain(t), UsedSchedules: t.UsedSchedules()})
}
