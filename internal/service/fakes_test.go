package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/uniattend/attendance-backend/internal/biometric"
	"github.com/uniattend/attendance-backend/internal/config"
	"github.com/uniattend/attendance-backend/internal/model"
	"github.com/uniattend/attendance-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            "test-secret",
		AccessTTL:            15 * time.Minute,
		RefreshTTL:           7 * 24 * time.Hour,
		BcryptCost:           bcrypt.MinCost,
		JoinCodeTTL:          168 * time.Hour,
		MaxDistanceFeet:      30,
		TimeWindowMinutes:    30,
		FaceTolerance:        0.6,
		FaceLoginMaxAttempts: 3,
		FaceLoginWindow:      5 * time.Minute,
	}
}

var nopLog = zerolog.Nop()

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{t: t} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// ─── Classes ────────────────────────────────────────────────────────

type fakeClassStore struct {
	mu          sync.Mutex
	classes     map[string]model.ClassInfo
	weekly      map[string][]model.WeeklySchedule
	sessions    map[string][]model.ClassSession
	createCalls int
	nextID      int64
}

func newFakeClassStore() *fakeClassStore {
	return &fakeClassStore{
		classes:  make(map[string]model.ClassInfo),
		weekly:   make(map[string][]model.WeeklySchedule),
		sessions: make(map[string][]model.ClassSession),
	}
}

func (f *fakeClassStore) addClass(info model.ClassInfo, sessions ...model.ClassSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classes[info.Code] = info
	for _, s := range sessions {
		f.nextID++
		s.ID = f.nextID
		s.ClassCode = info.Code
		f.sessions[info.Code] = append(f.sessions[info.Code], s)
	}
}

func (f *fakeClassStore) CreateWithSchedule(_ context.Context, info model.ClassInfo, weekly []model.WeeklySchedule, sessions []model.ClassSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if _, ok := f.classes[info.Code]; ok {
		return repository.ErrClassExists
	}
	f.classes[info.Code] = info
	f.weekly[info.Code] = weekly
	for _, s := range sessions {
		f.nextID++
		s.ID = f.nextID
		f.sessions[info.Code] = append(f.sessions[info.Code], s)
	}
	return nil
}

func (f *fakeClassStore) GetByCode(_ context.Context, code string) (*model.ClassInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.classes[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (f *fakeClassStore) GetSessionForDate(_ context.Context, code, date string) (*model.ClassSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions[code] {
		if s.Date == date {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeClassStore) ListSessions(_ context.Context, code string) ([]model.SessionEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := []model.SessionEntry{}
	for _, s := range f.sessions[code] {
		entries = append(entries, model.SessionEntry{Date: s.Date, Time: s.Time})
	}
	return entries, nil
}

func (f *fakeClassStore) ListSessionsByProfessor(_ context.Context, euid string) ([]model.SessionEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := []model.SessionEntry{}
	for code, c := range f.classes {
		if c.ProfessorEUID != euid {
			continue
		}
		for _, s := range f.sessions[code] {
			entries = append(entries, model.SessionEntry{Code: code, Date: s.Date, Time: s.Time})
		}
	}
	return entries, nil
}

func (f *fakeClassStore) ListCodesByProfessor(_ context.Context, euid string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	codes := []string{}
	for code, c := range f.classes {
		if c.ProfessorEUID == euid {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

func (f *fakeClassStore) RotateJoinCode(_ context.Context, code, joinCode string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.classes[code]
	if !ok {
		return repository.ErrNotFound
	}
	c.JoinCode = joinCode
	c.JoinCodeCreatedAt = at
	f.classes[code] = c
	return nil
}

// ─── Attendance ─────────────────────────────────────────────────────

type attendanceKey struct {
	sessionID int64
	euid      string
}

type fakeAttendanceStore struct {
	mu      sync.Mutex
	records map[attendanceKey]int
	upserts int
}

func newFakeAttendanceStore() *fakeAttendanceStore {
	return &fakeAttendanceStore{records: make(map[attendanceKey]int)}
}

func (f *fakeAttendanceStore) Upsert(_ context.Context, sessionID int64, euid string, attended int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	f.records[attendanceKey{sessionID, euid}] = attended
	return nil
}

func (f *fakeAttendanceStore) ListByStudent(_ context.Context, euid string) ([]model.SessionEntry, error) {
	return []model.SessionEntry{}, nil
}

func (f *fakeAttendanceStore) ListByClass(_ context.Context, code string) ([]model.ClassAttendanceDay, error) {
	return []model.ClassAttendanceDay{}, nil
}

// ─── Biometrics ─────────────────────────────────────────────────────

type fakeVerifier struct {
	mu     sync.Mutex
	result biometric.Result
	err    error
	calls  int
	paths  []string
	// delay simulates the cost of running the face model.
	delay time.Duration
}

func (f *fakeVerifier) VerifyMatch(_, referencePath string, _ float64) (biometric.Result, error) {
	f.mu.Lock()
	f.calls++
	f.paths = append(f.paths, referencePath)
	result, err, delay := f.result, f.err, f.delay
	f.mu.Unlock()
	time.Sleep(delay)
	return result, err
}

func (f *fakeVerifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRefs struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func newFakeRefs() *fakeRefs { return &fakeRefs{saved: make(map[string][]byte)} }

func (f *fakeRefs) Path(euid string) string { return "/refs/Student/" + euid + "/reference_image.jpg" }

func (f *fakeRefs) Save(euid string, raw []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved[euid] = raw
	return nil
}

// ─── Users & tokens ─────────────────────────────────────────────────

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]model.UserAccount
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]model.UserAccount)}
}

func (f *fakeUserStore) add(euid string, role model.Role, password string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[euid] = model.UserAccount{EUID: euid, Role: role, PasswordHash: string(hash)}
}

func (f *fakeUserStore) role(euid string) (model.Role, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[euid]
	return u.Role, ok
}

func (f *fakeUserStore) GetByEUID(_ context.Context, euid string) (*model.UserAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[euid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type fakeRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]*model.RefreshToken
	users  *fakeUserStore
	now    func() time.Time
}

func newFakeRefreshStore(users *fakeUserStore, now func() time.Time) *fakeRefreshStore {
	return &fakeRefreshStore{tokens: make(map[string]*model.RefreshToken), users: users, now: now}
}

func (f *fakeRefreshStore) Create(_ context.Context, t *model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *t
	f.tokens[t.Token] = &stored
	return nil
}

func (f *fakeRefreshStore) Rotate(_ context.Context, token string, issue repository.IssueFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok || t.Revoked || !t.ExpiresAt.After(f.now()) {
		return repository.ErrTokenNotActive
	}
	role, ok := f.users.role(t.EUID)
	if !ok {
		return repository.ErrNotFound
	}
	next, err := issue(t.EUID, role)
	if err != nil {
		return err
	}
	t.Revoked = true
	stored := *next
	f.tokens[next.Token] = &stored
	return nil
}

func (f *fakeRefreshStore) Revoke(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[token]; ok {
		t.Revoked = true
	}
	return nil
}

// ─── Enrollments & feed ─────────────────────────────────────────────

type fakeEnrollmentStore struct {
	mu      sync.Mutex
	classes *fakeClassStore
	users   *fakeUserStore
	pairs   map[[2]string]bool
	// beforeJoin runs when JoinClass starts, standing in for whatever
	// commits between the service's own checks and the transaction.
	beforeJoin func()
}

func newFakeEnrollmentStore(classes *fakeClassStore, users *fakeUserStore) *fakeEnrollmentStore {
	return &fakeEnrollmentStore{classes: classes, users: users, pairs: make(map[[2]string]bool)}
}

func (f *fakeEnrollmentStore) Enroll(ctx context.Context, code, euid string) error {
	if _, err := f.classes.GetByCode(ctx, code); err != nil {
		return repository.ErrNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pairs[[2]string{code, euid}] {
		return repository.ErrAlreadyEnrolled
	}
	f.pairs[[2]string{code, euid}] = true
	return nil
}

// JoinClass mirrors the repository transaction: nothing is stored unless
// check and persist both succeed.
func (f *fakeEnrollmentStore) JoinClass(ctx context.Context, code string, student *model.UserAccount, check repository.JoinCheck, persist func() error) (*model.UserAccount, error) {
	if f.beforeJoin != nil {
		f.beforeJoin()
	}
	class, err := f.classes.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := check(class.JoinCode, class.JoinCodeCreatedAt); err != nil {
		return nil, err
	}

	stored, err := f.users.GetByEUID(ctx, student.EUID)
	switch {
	case err == nil && stored.Role != model.RoleStudent:
		return nil, repository.ErrNotStudent
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		stored = student
	default:
		return nil, err
	}
	if err := persist(); err != nil {
		return nil, err
	}

	if stored == student {
		if err := f.users.Create(ctx, student); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pairs[[2]string{code, student.EUID}] = true
	result := *stored
	return &result, nil
}

func (f *fakeEnrollmentStore) ListClassesByStudent(_ context.Context, euid string) ([]model.StudentClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	classes := []model.StudentClass{}
	for pair := range f.pairs {
		if pair[1] == euid {
			classes = append(classes, model.StudentClass{Code: pair[0]})
		}
	}
	return classes, nil
}

func (f *fakeEnrollmentStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pairs)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.AttendanceEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, e model.AttendanceEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func (f *fakeUserStore) Create(_ context.Context, u *model.UserAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.EUID]; ok {
		return repository.ErrUserExists
	}
	f.users[u.EUID] = *u
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, euid, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[euid]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	f.users[euid] = u
	return nil
}
