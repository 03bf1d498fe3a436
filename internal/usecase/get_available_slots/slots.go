package get_available_slots

import (
	"sort"

	"github.com/m04kA/SMC-VetBookingService/internal/domain"
)

// filterAvailableSlots оставляет слоты, которые целиком лежат внутри дня
// и не пересекаются ни с одним занимающим время приёмом или блоком своего врача
// Приём или блок относится к слоту, если у слота нет врача или врачи совпадают
func filterAvailableSlots(
	day domain.Interval,
	slots []*domain.TimeSlot,
	appointments []*domain.Appointment,
	blocks []*domain.AgendaBlock,
) []Slot {
	result := make([]Slot, 0, len(slots))

	for _, slot := range slots {
		if !slot.IsAvailable {
			continue
		}

		interval := slot.Interval()
		if !interval.Valid() || !day.Contains(interval) {
			continue
		}

		if isTakenByAppointment(slot, interval, appointments) || isBlocked(slot, interval, blocks) {
			continue
		}

		result = append(result, Slot{
			ID:              slot.ID,
			VetID:           slot.VetID,
			Start:           slot.StartAt,
			End:             slot.EndAt,
			DurationMinutes: slot.DurationMinutes(),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Start.Before(result[j].Start)
	})

	return result
}

// isTakenByAppointment проверяет пересечение слота с приёмами врача
// Отклонённые и отменённые приёмы время не занимают
func isTakenByAppointment(slot *domain.TimeSlot, interval domain.Interval, appointments []*domain.Appointment) bool {
	for _, a := range appointments {
		if !a.BlocksTime() || !slot.AppliesTo(a.VetID) {
			continue
		}
		if interval.Overlaps(a.Interval()) {
			return true
		}
	}
	return false
}

// isBlocked проверяет пересечение слота с блоками недоступности врача
func isBlocked(slot *domain.TimeSlot, interval domain.Interval, blocks []*domain.AgendaBlock) bool {
	for _, b := range blocks {
		if !slot.AppliesTo(b.VetID) {
			continue
		}
		if interval.Overlaps(b.Interval()) {
			return true
		}
	}
	return false
}
