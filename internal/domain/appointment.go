package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppointmentStatus follows the Spanish labels the clinic uses.
type AppointmentStatus string

const (
	AppointmentConfirmed AppointmentStatus = "confirmada"
	AppointmentPending   AppointmentStatus = "pendiente"
	AppointmentCancelled AppointmentStatus = "cancelada"
	AppointmentDone      AppointmentStatus = "completada"
)

// AppointmentType distinguishes in-person from video consultations.
type AppointmentType string

const (
	AppointmentInPerson AppointmentType = "presencial"
	AppointmentVideo    AppointmentType = "videollamada"
)

// Appointment books a consultation slot. Two non-cancelled
// appointments can never share the same (date, time) pair.
type Appointment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID primitive.ObjectID `bson:"patientId" json:"patientId"`
	Date      string             `bson:"date" json:"date"` // "2006-01-02"
	Time      string             `bson:"time" json:"time"` // "15:04"
	Type      AppointmentType    `bson:"type" json:"type"`
	Status    AppointmentStatus  `bson:"status" json:"status"`
	Reason    string             `bson:"reason,omitempty" json:"reason,omitempty"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Blocking reports whether the appointment occupies its slot for
// conflict checks.
func (a *Appointment) Blocking() bool {
	return a.Status != AppointmentCancelled
}

// AllSlots enumerates the bookable half-hour slots of a working day,
// 09:00 through 17:30.
func AllSlots() []string {
	slots := make([]string, 0, 18)
	for h := 9; h < 18; h++ {
		slots = append(slots, fmtSlot(h, 0), fmtSlot(h, 30))
	}
	return slots
}

func fmtSlot(h, m int) string {
	return time.Date(0, 1, 1, h, m, 0, 0, time.UTC).Format("15:04")
}
