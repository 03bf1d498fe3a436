package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestInterval_Overlaps(t *testing.T) {
	slot := Interval{Start: at(9, 0), End: at(9, 30)}

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"same interval", Interval{at(9, 0), at(9, 30)}, true},
		{"partial from left", Interval{at(8, 45), at(9, 15)}, true},
		{"inside", Interval{at(9, 10), at(9, 20)}, true},
		{"touching before", Interval{at(8, 30), at(9, 0)}, false},
		{"touching after", Interval{at(9, 30), at(10, 0)}, false},
		{"far away", Interval{at(12, 0), at(13, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slot.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(slot))
		})
	}
}

func TestDayBounds(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	day := DayBounds(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), loc)

	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, loc), day.Start)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, loc), day.End)
	assert.True(t, day.Contains(Interval{Start: day.Start, End: day.Start.Add(time.Hour)}))
	assert.False(t, day.Contains(Interval{Start: day.End.Add(-time.Minute), End: day.End.Add(time.Minute)}))
}

func TestRoleSet(t *testing.T) {
	set := NewRoleSet(RoleOwner, RoleVet)

	assert.True(t, set.Has(RoleOwner))
	assert.True(t, set.Has(RoleVet))
	assert.False(t, set.Has(RoleAdmin))
	assert.False(t, set.Has(Role("VETT")))
	assert.True(t, set.HasAny(RoleAdmin, RoleVet))
	assert.False(t, set.HasAny(StaffRoles...))
	assert.Equal(t, []string{"OWNER", "VET"}, set.Strings())

	parsed, err := RoleSetFromStrings([]string{"vet", " OWNER "})
	require.NoError(t, err)
	assert.Equal(t, set, parsed)

	_, err = RoleSetFromStrings([]string{"superuser"})
	assert.Error(t, err)
}

func TestUser_GrantRolePrimaryPrecedence(t *testing.T) {
	u := &User{PrimaryRole: RoleOwner, Roles: NewRoleSet(RoleOwner)}

	u.GrantRole(RoleAssistant)
	assert.Equal(t, RoleAssistant, u.PrimaryRole)

	u.GrantRole(RoleVet)
	assert.Equal(t, RoleVet, u.PrimaryRole)

	u.GrantRole(RoleOwner)
	assert.Equal(t, RoleVet, u.PrimaryRole)
	assert.True(t, u.Roles.Has(RoleAssistant))
}

func TestAppointment_Transitions(t *testing.T) {
	tests := []struct {
		status                            AppointmentStatus
		confirm, reject, complete, cancel bool
		blocksTime                        bool
	}{
		{AppointmentPending, true, true, false, true, true},
		{AppointmentConfirmed, false, true, true, true, true},
		{AppointmentRejected, false, false, false, false, false},
		{AppointmentCancelled, false, false, false, false, false},
		{AppointmentCompleted, false, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			a := &Appointment{Status: tt.status}
			assert.Equal(t, tt.confirm, a.CanConfirm())
			assert.Equal(t, tt.reject, a.CanReject())
			assert.Equal(t, tt.complete, a.CanComplete())
			assert.Equal(t, tt.cancel, a.CanCancel())
			assert.Equal(t, tt.blocksTime, a.BlocksTime())
		})
	}
}

func TestAppointment_Access(t *testing.T) {
	owner, vet, stranger := uuid.New(), uuid.New(), uuid.New()
	a := &Appointment{CreatedBy: owner, VetID: vet}

	assert.True(t, a.VisibleTo(Principal{UserID: owner, Roles: NewRoleSet(RoleOwner)}))
	assert.True(t, a.VisibleTo(Principal{UserID: vet, Roles: NewRoleSet(RoleVet)}))
	assert.False(t, a.VisibleTo(Principal{UserID: stranger, Roles: NewRoleSet(RoleVet)}))
	assert.True(t, a.VisibleTo(Principal{UserID: stranger, Roles: NewRoleSet(RoleAssistant)}))

	assert.False(t, a.ManageableBy(Principal{UserID: owner, Roles: NewRoleSet(RoleOwner)}))
	assert.True(t, a.ManageableBy(Principal{UserID: vet, Roles: NewRoleSet(RoleVet)}))
	assert.False(t, a.ManageableBy(Principal{UserID: stranger, Roles: NewRoleSet(RoleVet)}))

	// staff roles are platform-wide, not tied to the appointment's clinic
	assert.True(t, a.ManageableBy(Principal{UserID: stranger, Roles: NewRoleSet(RoleAssistant)}))
	assert.True(t, a.ManageableBy(Principal{UserID: stranger, Roles: NewRoleSet(RoleClinicAdmin)}))
}

func TestReminderRule_SendAt(t *testing.T) {
	start := at(10, 0)

	assert.Equal(t, start.AddDate(0, 0, -1), (&ReminderRule{OffsetDays: -1}).SendAt(start))
	assert.Equal(t, start, (&ReminderRule{OffsetDays: 0}).SendAt(start))
}

func TestTimeSlot_AppliesTo(t *testing.T) {
	vet := uuid.New()
	shared := &TimeSlot{StartAt: at(9, 0), EndAt: at(9, 30)}
	own := &TimeSlot{VetID: &vet}

	assert.True(t, shared.AppliesTo(uuid.New()))
	assert.True(t, own.AppliesTo(vet))
	assert.False(t, own.AppliesTo(uuid.New()))
	assert.Equal(t, 30, shared.DurationMinutes())
}
