package domain

import "testing"

func TestAllSlots(t *testing.T) {
	slots := AllSlots()
	if len(slots) != 18 {
		t.Fatalf("expected 18 half-hour slots, got %d", len(slots))
	}
	if slots[0] != "09:00" {
		t.Errorf("first slot = %q, want 09:00", slots[0])
	}
	if slots[len(slots)-1] != "17:30" {
		t.Errorf("last slot = %q, want 17:30", slots[len(slots)-1])
	}
}

func TestAppointmentBlocking(t *testing.T) {
	appt := &Appointment{Status: AppointmentCancelled}
	if appt.Blocking() {
		t.Error("cancelled appointment should not block its slot")
	}
	for _, status := range []AppointmentStatus{AppointmentPending, AppointmentConfirmed, AppointmentDone} {
		appt.Status = status
		if !appt.Blocking() {
			t.Errorf("status %q should block its slot", status)
		}
	}
}
