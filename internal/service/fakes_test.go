package service

import (
	"context"
	"nutrivida/clinic-app/internal/domain"
	"nutrivida/clinic-app/internal/repository"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes shared across the service tests. They
// mirror the behavior the Mongo implementations rely on, including the
// partial unique indexes (one active assignment per patient, one
// blocking appointment per slot, one tracking row per meal and day).

func sameDay(a, b time.Time) bool {
	return a.UTC().Format("2006-01-02") == b.UTC().Format("2006-01-02")
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	cp := *user
	cp.ID = id
	r.users[id] = &cp
	return id, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetAll(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateCurrentWeight(ctx context.Context, id primitive.ObjectID, weight float64) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.CurrentWeight = &weight
	return nil
}

func (r *fakeUserRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.UserStatus) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = status
	return nil
}

func (r *fakeUserRepo) SetPhotoKey(ctx context.Context, id primitive.ObjectID, key string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PhotoKey = key
	return nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type fakeAssignmentRepo struct {
	assignments []domain.PlanAssignment
}

func (r *fakeAssignmentRepo) Create(ctx context.Context, a *domain.PlanAssignment) (primitive.ObjectID, error) {
	if a.Status == domain.AssignmentActive {
		for _, existing := range r.assignments {
			if existing.PatientID == a.PatientID && existing.Status == domain.AssignmentActive {
				return primitive.NilObjectID, repository.ErrDuplicate
			}
		}
	}
	cp := *a
	cp.ID = primitive.NewObjectID()
	r.assignments = append(r.assignments, cp)
	return cp.ID, nil
}

func (r *fakeAssignmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanAssignment, error) {
	for i := range r.assignments {
		if r.assignments[i].ID == id {
			cp := r.assignments[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAssignmentRepo) GetByPatientID(ctx context.Context, patientID primitive.ObjectID) ([]domain.PlanAssignment, error) {
	var out []domain.PlanAssignment
	for _, a := range r.assignments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) GetActiveByPatientID(ctx context.Context, patientID primitive.ObjectID) (*domain.PlanAssignment, error) {
	for i := range r.assignments {
		if r.assignments[i].PatientID == patientID && r.assignments[i].Status == domain.AssignmentActive {
			cp := r.assignments[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAssignmentRepo) PauseActiveByPatientID(ctx context.Context, patientID primitive.ObjectID) (int64, error) {
	var n int64
	for i := range r.assignments {
		if r.assignments[i].PatientID == patientID && r.assignments[i].Status == domain.AssignmentActive {
			r.assignments[i].Status = domain.AssignmentPaused
			n++
		}
	}
	return n, nil
}

func (r *fakeAssignmentRepo) CountActiveByPlanID(ctx context.Context, planID primitive.ObjectID) (int64, error) {
	var n int64
	for _, a := range r.assignments {
		if a.MealPlanID == planID && a.Status == domain.AssignmentActive {
			n++
		}
	}
	return n, nil
}

func (r *fakeAssignmentRepo) CountActiveByMenuID(ctx context.Context, menuID primitive.ObjectID) (int64, error) {
	var n int64
	for _, a := range r.assignments {
		if a.MenuTemplateID == menuID && a.Status == domain.AssignmentActive {
			n++
		}
	}
	return n, nil
}

func (r *fakeAssignmentRepo) Update(ctx context.Context, a *domain.PlanAssignment) error {
	if a.Status == domain.AssignmentActive {
		for _, existing := range r.assignments {
			if existing.ID != a.ID && existing.PatientID == a.PatientID && existing.Status == domain.AssignmentActive {
				return repository.ErrDuplicate
			}
		}
	}
	for i := range r.assignments {
		if r.assignments[i].ID == a.ID {
			r.assignments[i] = *a
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeAssignmentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for i := range r.assignments {
		if r.assignments[i].ID == id {
			r.assignments = append(r.assignments[:i], r.assignments[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeDailyMealRepo struct {
	rows []domain.DailyMealAssignment
}

func (r *fakeDailyMealRepo) CreateMany(ctx context.Context, days []domain.DailyMealAssignment) error {
	for _, d := range days {
		if d.ID.IsZero() {
			d.ID = primitive.NewObjectID()
		}
		r.rows = append(r.rows, d)
	}
	return nil
}

func (r *fakeDailyMealRepo) GetByPatientAndDate(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*domain.DailyMealAssignment, error) {
	for i := range r.rows {
		if r.rows[i].PatientID == patientID && sameDay(r.rows[i].Date, date) {
			cp := r.rows[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeDailyMealRepo) GetByPatientRange(ctx context.Context, patientID primitive.ObjectID, from, to time.Time) ([]domain.DailyMealAssignment, error) {
	var out []domain.DailyMealAssignment
	for _, d := range r.rows {
		if d.PatientID == patientID && !d.Date.Before(from) && d.Date.Before(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDailyMealRepo) DeleteByPatientFromDate(ctx context.Context, patientID primitive.ObjectID, from time.Time) (int64, error) {
	var kept []domain.DailyMealAssignment
	var n int64
	for _, d := range r.rows {
		if d.PatientID == patientID && !d.Date.Before(from) {
			n++
			continue
		}
		kept = append(kept, d)
	}
	r.rows = kept
	return n, nil
}

func (r *fakeDailyMealRepo) DeleteByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) error {
	var kept []domain.DailyMealAssignment
	for _, d := range r.rows {
		if d.AssignmentID != assignmentID {
			kept = append(kept, d)
		}
	}
	r.rows = kept
	return nil
}

type fakeTrackingRepo struct {
	trackings []domain.MealTracking
	foods     []domain.MealFoodItem
}

func (r *fakeTrackingRepo) CreateTracking(ctx context.Context, t *domain.MealTracking) (primitive.ObjectID, error) {
	for _, existing := range r.trackings {
		if existing.PatientID == t.PatientID && existing.MealType == t.MealType && sameDay(existing.Date, t.Date) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	cp := *t
	cp.ID = primitive.NewObjectID()
	r.trackings = append(r.trackings, cp)
	return cp.ID, nil
}

func (r *fakeTrackingRepo) GetTracking(ctx context.Context, patientID primitive.ObjectID, date time.Time, mealType string) (*domain.MealTracking, error) {
	for i := range r.trackings {
		t := &r.trackings[i]
		if t.PatientID == patientID && t.MealType == mealType && sameDay(t.Date, date) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTrackingRepo) GetTrackingByID(ctx context.Context, id primitive.ObjectID) (*domain.MealTracking, error) {
	for i := range r.trackings {
		if r.trackings[i].ID == id {
			cp := r.trackings[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTrackingRepo) GetTrackingByDate(ctx context.Context, patientID primitive.ObjectID, date time.Time) ([]domain.MealTracking, error) {
	var out []domain.MealTracking
	for _, t := range r.trackings {
		if t.PatientID == patientID && sameDay(t.Date, date) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTrackingRepo) GetTrackingByRange(ctx context.Context, patientID primitive.ObjectID, from, to time.Time) ([]domain.MealTracking, error) {
	var out []domain.MealTracking
	for _, t := range r.trackings {
		if t.PatientID == patientID && !t.Date.Before(from) && t.Date.Before(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTrackingRepo) UpdateTracking(ctx context.Context, t *domain.MealTracking) error {
	for i := range r.trackings {
		if r.trackings[i].ID == t.ID {
			r.trackings[i] = *t
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeTrackingRepo) CreateFoodItem(ctx context.Context, item *domain.MealFoodItem) (primitive.ObjectID, error) {
	cp := *item
	cp.ID = primitive.NewObjectID()
	r.foods = append(r.foods, cp)
	return cp.ID, nil
}

func (r *fakeTrackingRepo) GetFoodItem(ctx context.Context, id primitive.ObjectID) (*domain.MealFoodItem, error) {
	for i := range r.foods {
		if r.foods[i].ID == id {
			cp := r.foods[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTrackingRepo) GetFoodItems(ctx context.Context, trackingID primitive.ObjectID) ([]domain.MealFoodItem, error) {
	var out []domain.MealFoodItem
	for _, f := range r.foods {
		if f.TrackingID == trackingID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (r *fakeTrackingRepo) UpdateFoodItem(ctx context.Context, item *domain.MealFoodItem) error {
	for i := range r.foods {
		if r.foods[i].ID == item.ID {
			r.foods[i] = *item
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeTrackingRepo) DeleteFoodItem(ctx context.Context, id primitive.ObjectID) error {
	for i := range r.foods {
		if r.foods[i].ID == id {
			r.foods = append(r.foods[:i], r.foods[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeWaterRepo struct {
	rows []domain.WaterTracking
}

func (r *fakeWaterRepo) Get(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*domain.WaterTracking, error) {
	for i := range r.rows {
		if r.rows[i].PatientID == patientID && sameDay(r.rows[i].Date, date) {
			cp := r.rows[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWaterRepo) Upsert(ctx context.Context, w *domain.WaterTracking) error {
	for i := range r.rows {
		if r.rows[i].PatientID == w.PatientID && sameDay(r.rows[i].Date, w.Date) {
			w.ID = r.rows[i].ID
			r.rows[i] = *w
			return nil
		}
	}
	cp := *w
	cp.ID = primitive.NewObjectID()
	w.ID = cp.ID
	r.rows = append(r.rows, cp)
	return nil
}

type fakeCustomFoodRepo struct {
	foods []domain.CustomFood
}

func (r *fakeCustomFoodRepo) Create(ctx context.Context, food *domain.CustomFood) (primitive.ObjectID, error) {
	cp := *food
	cp.ID = primitive.NewObjectID()
	r.foods = append(r.foods, cp)
	return cp.ID, nil
}

func (r *fakeCustomFoodRepo) Search(ctx context.Context, patientID primitive.ObjectID, query string) ([]domain.CustomFood, error) {
	var out []domain.CustomFood
	for _, f := range r.foods {
		if f.PatientID == patientID && strings.Contains(strings.ToLower(f.Name), strings.ToLower(query)) {
			out = append(out, f)
		}
	}
	return out, nil
}

type fakeMealPlanRepo struct {
	plans map[primitive.ObjectID]*domain.MealPlan
}

func newFakeMealPlanRepo() *fakeMealPlanRepo {
	return &fakeMealPlanRepo{plans: map[primitive.ObjectID]*domain.MealPlan{}}
}

func (r *fakeMealPlanRepo) Create(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *plan
	cp.ID = id
	r.plans[id] = &cp
	return id, nil
}

func (r *fakeMealPlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeMealPlanRepo) GetAll(ctx context.Context) ([]domain.MealPlan, error) {
	var out []domain.MealPlan
	for _, p := range r.plans {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeMealPlanRepo) Update(ctx context.Context, plan *domain.MealPlan) error {
	if _, ok := r.plans[plan.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *plan
	r.plans[plan.ID] = &cp
	return nil
}

func (r *fakeMealPlanRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

type fakeWeeklyMenuRepo struct {
	menus []domain.WeeklyMenu
}

func (r *fakeWeeklyMenuRepo) Create(ctx context.Context, menu *domain.WeeklyMenu) (primitive.ObjectID, error) {
	for _, m := range r.menus {
		if m.MealPlanID == menu.MealPlanID && m.WeekNumber == menu.WeekNumber {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	cp := *menu
	cp.ID = primitive.NewObjectID()
	r.menus = append(r.menus, cp)
	return cp.ID, nil
}

func (r *fakeWeeklyMenuRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WeeklyMenu, error) {
	for i := range r.menus {
		if r.menus[i].ID == id {
			cp := r.menus[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWeeklyMenuRepo) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.WeeklyMenu, error) {
	var out []domain.WeeklyMenu
	for _, m := range r.menus {
		if m.MealPlanID == planID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeWeeklyMenuRepo) GetByPlanAndWeek(ctx context.Context, planID primitive.ObjectID, week int) (*domain.WeeklyMenu, error) {
	for i := range r.menus {
		if r.menus[i].MealPlanID == planID && r.menus[i].WeekNumber == week {
			cp := r.menus[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWeeklyMenuRepo) Update(ctx context.Context, menu *domain.WeeklyMenu) error {
	for i := range r.menus {
		if r.menus[i].ID == menu.ID {
			r.menus[i] = *menu
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeWeeklyMenuRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for i := range r.menus {
		if r.menus[i].ID == id {
			r.menus = append(r.menus[:i], r.menus[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeWeeklyMenuRepo) DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error {
	var kept []domain.WeeklyMenu
	for _, m := range r.menus {
		if m.MealPlanID != planID {
			kept = append(kept, m)
		}
	}
	r.menus = kept
	return nil
}

type fakeTemplateRepo struct {
	templates map[primitive.ObjectID]*domain.MenuTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: map[primitive.ObjectID]*domain.MenuTemplate{}}
}

func (r *fakeTemplateRepo) Create(ctx context.Context, tpl *domain.MenuTemplate) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *tpl
	cp.ID = id
	r.templates[id] = &cp
	return id, nil
}

func (r *fakeTemplateRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MenuTemplate, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTemplateRepo) GetAll(ctx context.Context, category string) ([]domain.MenuTemplate, error) {
	var out []domain.MenuTemplate
	for _, t := range r.templates {
		if category == "" || t.Category == category {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) Update(ctx context.Context, tpl *domain.MenuTemplate) error {
	if _, ok := r.templates[tpl.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *tpl
	r.templates[tpl.ID] = &cp
	return nil
}

func (r *fakeTemplateRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.templates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

func (r *fakeTemplateRepo) Categories(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, t := range r.templates {
		if t.Category != "" && !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeNotificationRepo struct {
	notifications []domain.Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error) {
	cp := *n
	cp.ID = primitive.NewObjectID()
	r.notifications = append(r.notifications, cp)
	return cp.ID, nil
}

func (r *fakeNotificationRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			r.notifications[i].Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	for i := range r.notifications {
		if r.notifications[i].UserID == userID {
			r.notifications[i].Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].UserID == userID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, notif := range r.notifications {
		if notif.UserID == userID && !notif.Read {
			n++
		}
	}
	return n, nil
}

type fakeAppointmentRepo struct {
	appointments []domain.Appointment
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, appt *domain.Appointment) (primitive.ObjectID, error) {
	for _, existing := range r.appointments {
		if existing.Date == appt.Date && existing.Time == appt.Time && existing.Blocking() {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	cp := *appt
	cp.ID = primitive.NewObjectID()
	r.appointments = append(r.appointments, cp)
	return cp.ID, nil
}

func (r *fakeAppointmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Appointment, error) {
	for i := range r.appointments {
		if r.appointments[i].ID == id {
			cp := r.appointments[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAppointmentRepo) GetByPatientID(ctx context.Context, patientID primitive.ObjectID) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) GetByDate(ctx context.Context, date string) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range r.appointments {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) GetAll(ctx context.Context) ([]domain.Appointment, error) {
	out := make([]domain.Appointment, len(r.appointments))
	copy(out, r.appointments)
	return out, nil
}

func (r *fakeAppointmentRepo) FindBlocking(ctx context.Context, date, timeSlot string) (*domain.Appointment, error) {
	for i := range r.appointments {
		a := &r.appointments[i]
		if a.Date == date && a.Time == timeSlot && a.Blocking() {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAppointmentRepo) Update(ctx context.Context, appt *domain.Appointment) error {
	for i := range r.appointments {
		if r.appointments[i].ID == appt.ID {
			r.appointments[i] = *appt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeAppointmentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for i := range r.appointments {
		if r.appointments[i].ID == id {
			r.appointments = append(r.appointments[:i], r.appointments[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeProgressRepo struct {
	metrics      []domain.ProgressMetric
	achievements []domain.Achievement
	notes        []domain.NutritionistNote
}

func (r *fakeProgressRepo) UpsertMetric(ctx context.Context, metric *domain.ProgressMetric) (primitive.ObjectID, error) {
	for i := range r.metrics {
		if r.metrics[i].PatientID == metric.PatientID && sameDay(r.metrics[i].Date, metric.Date) {
			metric.ID = r.metrics[i].ID
			r.metrics[i] = *metric
			return metric.ID, nil
		}
	}
	cp := *metric
	cp.ID = primitive.NewObjectID()
	metric.ID = cp.ID
	r.metrics = append(r.metrics, cp)
	return cp.ID, nil
}

func (r *fakeProgressRepo) GetMetric(ctx context.Context, patientID primitive.ObjectID, date time.Time) (*domain.ProgressMetric, error) {
	for i := range r.metrics {
		if r.metrics[i].PatientID == patientID && sameDay(r.metrics[i].Date, date) {
			cp := r.metrics[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProgressRepo) GetMetrics(ctx context.Context, patientID primitive.ObjectID, limit int) ([]domain.ProgressMetric, error) {
	var out []domain.ProgressMetric
	for _, m := range r.metrics {
		if m.PatientID == patientID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeProgressRepo) DeleteMetric(ctx context.Context, patientID, id primitive.ObjectID) error {
	for i := range r.metrics {
		if r.metrics[i].ID == id && r.metrics[i].PatientID == patientID {
			r.metrics = append(r.metrics[:i], r.metrics[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeProgressRepo) GetEarliestMetric(ctx context.Context, patientID primitive.ObjectID) (*domain.ProgressMetric, error) {
	metrics, _ := r.GetMetrics(ctx, patientID, 0)
	if len(metrics) == 0 {
		return nil, repository.ErrNotFound
	}
	cp := metrics[0]
	return &cp, nil
}

func (r *fakeProgressRepo) CreateAchievement(ctx context.Context, a *domain.Achievement) (primitive.ObjectID, error) {
	cp := *a
	cp.ID = primitive.NewObjectID()
	r.achievements = append(r.achievements, cp)
	return cp.ID, nil
}

func (r *fakeProgressRepo) GetAchievements(ctx context.Context, patientID primitive.ObjectID) ([]domain.Achievement, error) {
	var out []domain.Achievement
	for _, a := range r.achievements {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) DeleteAchievement(ctx context.Context, id primitive.ObjectID) error {
	for i := range r.achievements {
		if r.achievements[i].ID == id {
			r.achievements = append(r.achievements[:i], r.achievements[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeProgressRepo) CreateNote(ctx context.Context, note *domain.NutritionistNote) (primitive.ObjectID, error) {
	cp := *note
	cp.ID = primitive.NewObjectID()
	r.notes = append(r.notes, cp)
	return cp.ID, nil
}

func (r *fakeProgressRepo) GetNotes(ctx context.Context, patientID primitive.ObjectID) ([]domain.NutritionistNote, error) {
	var out []domain.NutritionistNote
	for _, n := range r.notes {
		if n.PatientID == patientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) DeleteNote(ctx context.Context, id primitive.ObjectID) error {
	for i := range r.notes {
		if r.notes[i].ID == id {
			r.notes = append(r.notes[:i], r.notes[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeMessageRepo struct {
	messages []domain.Message
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *domain.Message) (primitive.ObjectID, error) {
	cp := *m
	cp.ID = primitive.NewObjectID()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.messages = append(r.messages, cp)
	return cp.ID, nil
}

func (r *fakeMessageRepo) GetConversation(ctx context.Context, a, b primitive.ObjectID) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkConversationRead(ctx context.Context, receiverID, senderID primitive.ObjectID) error {
	for i := range r.messages {
		if r.messages[i].ReceiverID == receiverID && r.messages[i].SenderID == senderID {
			r.messages[i].Read = true
		}
	}
	return nil
}

func (r *fakeMessageRepo) CountUnread(ctx context.Context, receiverID primitive.ObjectID) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.ReceiverID == receiverID && !m.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) GetPartners(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	seen := map[primitive.ObjectID]bool{}
	var out []primitive.ObjectID
	for _, m := range r.messages {
		var partner primitive.ObjectID
		switch userID {
		case m.SenderID:
			partner = m.ReceiverID
		case m.ReceiverID:
			partner = m.SenderID
		default:
			continue
		}
		if !seen[partner] {
			seen[partner] = true
			out = append(out, partner)
		}
	}
	return out, nil
}

type fakeRecipeRepo struct {
	recipes   []domain.Recipe
	favorites []domain.FavoriteRecipe
}

func (r *fakeRecipeRepo) Create(ctx context.Context, recipe *domain.Recipe) (primitive.ObjectID, error) {
	cp := *recipe
	cp.ID = primitive.NewObjectID()
	r.recipes = append(r.recipes, cp)
	return cp.ID, nil
}

func (r *fakeRecipeRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Recipe, error) {
	for i := range r.recipes {
		if r.recipes[i].ID == id {
			cp := r.recipes[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRecipeRepo) GetAll(ctx context.Context, category string) ([]domain.Recipe, error) {
	var out []domain.Recipe
	for _, recipe := range r.recipes {
		if category == "" || recipe.Category == category {
			out = append(out, recipe)
		}
	}
	return out, nil
}

func (r *fakeRecipeRepo) Update(ctx context.Context, recipe *domain.Recipe) error {
	for i := range r.recipes {
		if r.recipes[i].ID == recipe.ID {
			r.recipes[i] = *recipe
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRecipeRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for i := range r.recipes {
		if r.recipes[i].ID == id {
			r.recipes = append(r.recipes[:i], r.recipes[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRecipeRepo) AddFavorite(ctx context.Context, fav *domain.FavoriteRecipe) error {
	cp := *fav
	cp.ID = primitive.NewObjectID()
	r.favorites = append(r.favorites, cp)
	return nil
}

func (r *fakeRecipeRepo) RemoveFavorite(ctx context.Context, patientID, recipeID primitive.ObjectID) error {
	for i := range r.favorites {
		if r.favorites[i].PatientID == patientID && r.favorites[i].RecipeID == recipeID {
			r.favorites = append(r.favorites[:i], r.favorites[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRecipeRepo) GetFavorites(ctx context.Context, patientID primitive.ObjectID) ([]domain.FavoriteRecipe, error) {
	var out []domain.FavoriteRecipe
	for _, f := range r.favorites {
		if f.PatientID == patientID {
			out = append(out, f)
		}
	}
	return out, nil
}

// fakeFileStorage hands out deterministic URLs and records deletions.
type fakeFileStorage struct {
	deleted []string
}

func (s *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (s *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

// fakeTxRunner runs the function directly; the fakes have no
// transaction semantics to enforce.
type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
