package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"classtrack/backend/internal/model"
	"classtrack/backend/internal/repository"
	pkgerrors "classtrack/backend/pkg/errors"
)

// ── Mock Repositories ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + strconv.Itoa(len(m.users)+1)
	}
	for _, u := range m.users {
		if u.StudentNo == user.StudentNo || u.Email == user.Email {
			return pkgerrors.ErrDuplicateRecord
		}
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByStudentNo(_ context.Context, studentNo string) (*model.User, error) {
	for _, u := range m.users {
		if u.StudentNo == studentNo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.ClassID != "" && (u.ClassID == nil || *u.ClassID != filter.ClassID) {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(u.Name, filter.Keyword) && !strings.Contains(u.StudentNo, filter.Keyword) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) ListByClass(_ context.Context, classID string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == model.RoleStudent && u.ClassID != nil && *u.ClassID == classID {
			result = append(result, *u)
		}
	}
	// 与真实仓储一致：姓名升序、姓名同名时按 user_id 升序
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].UserID < result[j].UserID
	})
	return result, nil
}

func (m *mockUserRepo) CountByClass(_ context.Context, classID string) (int64, error) {
	var count int64
	for _, u := range m.users {
		if u.Role == model.RoleStudent && u.ClassID != nil && *u.ClassID == classID {
			count++
		}
	}
	return count, nil
}

type mockClassRepo struct {
	classes map[string]*model.Class
	users   *mockUserRepo
}

func newMockClassRepo(users *mockUserRepo) *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*model.Class), users: users}
}

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	if class.ClassID == "" {
		class.ClassID = "class-" + strconv.Itoa(len(m.classes)+1)
	}
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) List(_ context.Context) ([]model.Class, error) {
	var result []model.Class
	for _, c := range m.classes {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Grade != result[j].Grade {
			return result[i].Grade < result[j].Grade
		}
		return result[i].ClassID < result[j].ClassID
	})
	return result, nil
}

func (m *mockClassRepo) Update(_ context.Context, class *model.Class) error {
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.classes, id)
	return nil
}

func (m *mockClassRepo) AssignStudents(_ context.Context, classID string, studentIDs []string) error {
	for _, id := range studentIDs {
		if u, ok := m.users.users[id]; ok {
			cid := classID
			u.ClassID = &cid
		}
	}
	return nil
}

type mockTermRepo struct {
	terms map[string]*model.Term
}

func newMockTermRepo() *mockTermRepo {
	return &mockTermRepo{terms: make(map[string]*model.Term)}
}

func (m *mockTermRepo) Create(_ context.Context, term *model.Term) error {
	if term.TermID == "" {
		term.TermID = "term-" + strconv.Itoa(len(m.terms)+1)
	}
	m.terms[term.TermID] = term
	return nil
}

func (m *mockTermRepo) GetByID(_ context.Context, id string) (*model.Term, error) {
	if t, ok := m.terms[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) GetActive(_ context.Context) (*model.Term, error) {
	for _, t := range m.terms {
		if t.IsActive {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) List(_ context.Context) ([]model.Term, error) {
	var result []model.Term
	for _, t := range m.terms {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

func (m *mockTermRepo) Update(_ context.Context, term *model.Term) error {
	m.terms[term.TermID] = term
	return nil
}

func (m *mockTermRepo) ClearActive(_ context.Context) error {
	for _, t := range m.terms {
		t.IsActive = false
	}
	return nil
}

func (m *mockTermRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.terms, id)
	return nil
}

type mockAttendanceRepo struct {
	records map[string]*model.AttendanceRecord // key: record_id
	seq     int
	users   *mockUserRepo
}

func newMockAttendanceRepo(users *mockUserRepo) *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.AttendanceRecord), users: users}
}

func attKey(userID string, date time.Time) string {
	return userID + "@" + date.Format("2006-01-02")
}

func (m *mockAttendanceRepo) Create(_ context.Context, record *model.AttendanceRecord) error {
	for _, r := range m.records {
		if attKey(r.UserID, r.AttDate) == attKey(record.UserID, record.AttDate) {
			return pkgerrors.ErrDuplicateRecord
		}
	}
	m.seq++
	if record.RecordID == "" {
		record.RecordID = "rec-" + strconv.Itoa(m.seq)
	}
	if record.Version == 0 {
		record.Version = 1
	}
	m.records[record.RecordID] = record
	return nil
}

func (m *mockAttendanceRepo) GetByUserAndDate(_ context.Context, userID string, date time.Time) (*model.AttendanceRecord, error) {
	for _, r := range m.records {
		if attKey(r.UserID, r.AttDate) == attKey(userID, date) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) SetCheckOut(_ context.Context, recordID string, t time.Time, updatedBy string) error {
	r, ok := m.records[recordID]
	if !ok || r.CheckOut != nil {
		return repository.ErrAlreadyCompleted
	}
	r.CheckOut = &t
	r.UpdatedBy = &updatedBy
	return nil
}

func (m *mockAttendanceRepo) UpdateStatus(_ context.Context, record *model.AttendanceRecord) error {
	r, ok := m.records[record.RecordID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if r.Version != record.Version {
		return pkgerrors.ErrOptimisticLock
	}
	r.Status = record.Status
	r.LateMinutes = record.LateMinutes
	r.UpdatedBy = record.UpdatedBy
	r.Version++
	record.Version = r.Version
	return nil
}

func (m *mockAttendanceRepo) ListByDate(ctx context.Context, date time.Time, classID *string) ([]model.AttendanceRecord, error) {
	return m.ListByDateRange(ctx, date, date, classID)
}

func (m *mockAttendanceRepo) ListByDateRange(_ context.Context, start, end time.Time, classID *string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.AttDate.Before(start) || r.AttDate.After(end) {
			continue
		}
		cp := *r
		if u, ok := m.users.users[r.UserID]; ok {
			cu := *u
			cp.User = &cu
		}
		if classID != nil {
			if cp.User == nil || cp.User.ClassID == nil || *cp.User.ClassID != *classID {
				continue
			}
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].AttDate.Equal(result[j].AttDate) {
			return result[i].AttDate.Before(result[j].AttDate)
		}
		return result[i].UserID < result[j].UserID
	})
	return result, nil
}

type mockSettingRepo struct {
	setting *model.AttendanceSetting
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{
		setting: &model.AttendanceSetting{
			Singleton:            true,
			StudentArrivalTime:   "07:30",
			StudentDepartureTime: "15:30",
			StaffArrivalTime:     "07:00",
			StaffDepartureTime:   "16:00",
			DefaultMethod:        "mobile",
		},
	}
}

func (m *mockSettingRepo) Get(_ context.Context) (*model.AttendanceSetting, error) {
	if m.setting == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.setting, nil
}

func (m *mockSettingRepo) Update(_ context.Context, setting *model.AttendanceSetting) error {
	m.setting = setting
	return nil
}

type mockJournalRepo struct {
	journals map[string]*model.Journal
	seq      int
}

func newMockJournalRepo() *mockJournalRepo {
	return &mockJournalRepo{journals: make(map[string]*model.Journal)}
}

func (m *mockJournalRepo) Create(_ context.Context, journal *model.Journal) error {
	m.seq++
	if journal.JournalID == "" {
		journal.JournalID = "journal-" + strconv.Itoa(m.seq)
	}
	if journal.Version == 0 {
		journal.Version = 1
	}
	m.journals[journal.JournalID] = journal
	return nil
}

func (m *mockJournalRepo) GetByID(_ context.Context, id string) (*model.Journal, error) {
	if j, ok := m.journals[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJournalRepo) List(_ context.Context, filter repository.JournalFilter, offset, limit int) ([]model.Journal, int64, error) {
	var all []model.Journal
	for _, j := range m.journals {
		if filter.ClassID != "" && j.ClassID != filter.ClassID {
			continue
		}
		if filter.TeacherID != "" && j.TeacherID != filter.TeacherID {
			continue
		}
		if filter.StartDate != nil && j.JournalDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && j.JournalDate.After(*filter.EndDate) {
			continue
		}
		all = append(all, *j)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].JournalID < all[j].JournalID })
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

func (m *mockJournalRepo) Update(_ context.Context, journal *model.Journal) error {
	if _, ok := m.journals[journal.JournalID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.journals[journal.JournalID] = journal
	return nil
}

func (m *mockJournalRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.journals, id)
	return nil
}

type mockNotificationRepo struct {
	notifications []*model.Notification
	prefs         map[string]*model.NotificationPreference
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{prefs: make(map[string]*model.NotificationPreference)}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	m.seq++
	if notification.NotificationID == "" {
		notification.NotificationID = "notify-" + strconv.Itoa(m.seq)
	}
	m.notifications = append(m.notifications, notification)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var all []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		all = append(all, *n)
	}
	total := int64(len(all))
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	if offset > len(all) {
		return nil, total, nil
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id string, userID string) error {
	for _, n := range m.notifications {
		if n.NotificationID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) GetPreference(_ context.Context, userID string) (*model.NotificationPreference, error) {
	if p, ok := m.prefs[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) SavePreference(_ context.Context, pref *model.NotificationPreference) error {
	m.prefs[pref.UserID] = pref
	return nil
}

type mockCourseScheduleRepo struct {
	courses []*model.CourseSchedule
	seq     int
}

func newMockCourseScheduleRepo() *mockCourseScheduleRepo {
	return &mockCourseScheduleRepo{}
}

func (m *mockCourseScheduleRepo) BatchCreate(_ context.Context, courses []model.CourseSchedule) error {
	for i := range courses {
		m.seq++
		if courses[i].CourseScheduleID == "" {
			courses[i].CourseScheduleID = "course-" + strconv.Itoa(m.seq)
		}
		cp := courses[i]
		m.courses = append(m.courses, &cp)
	}
	return nil
}

func (m *mockCourseScheduleRepo) ListByClassAndTerm(_ context.Context, classID, termID string) ([]model.CourseSchedule, error) {
	var result []model.CourseSchedule
	for _, c := range m.courses {
		if c.ClassID == classID && c.TermID == termID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockCourseScheduleRepo) ReplaceByClassAndTerm(ctx context.Context, classID, termID string, courses []model.CourseSchedule) error {
	if err := m.DeleteByClassAndTerm(ctx, classID, termID); err != nil {
		return err
	}
	return m.BatchCreate(ctx, courses)
}

func (m *mockCourseScheduleRepo) DeleteByClassAndTerm(_ context.Context, classID, termID string) error {
	var kept []*model.CourseSchedule
	for _, c := range m.courses {
		if c.ClassID == classID && c.TermID == termID {
			continue
		}
		kept = append(kept, c)
	}
	m.courses = kept
	return nil
}

// newMockRepository 组装全 mock 的 Repository 聚合
func newMockRepository() (*repository.Repository, *mockUserRepo, *mockAttendanceRepo, *mockNotificationRepo) {
	userRepo := newMockUserRepo()
	attRepo := newMockAttendanceRepo(userRepo)
	notifyRepo := newMockNotificationRepo()
	repo := &repository.Repository{
		User:           userRepo,
		Class:          newMockClassRepo(userRepo),
		Term:           newMockTermRepo(),
		Attendance:     attRepo,
		Setting:        newMockSettingRepo(),
		Journal:        newMockJournalRepo(),
		Notification:   notifyRepo,
		CourseSchedule: newMockCourseScheduleRepo(),
	}
	return repo, userRepo, attRepo, notifyRepo
}
