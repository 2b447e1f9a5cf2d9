package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-booking-api/internal/calendar"
	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/pkg/config"
)

// 2025-01-01 is a Wednesday.
var fixedNow = time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func testRules(t *testing.T) *calendar.Rules {
	t.Helper()
	rules, err := calendar.NewRules(config.CalendarConfig{
		Timezone:    "Europe/Berlin",
		ClosedStart: config.MonthDay{Month: time.June, Day: 1},
		ClosedEnd:   config.MonthDay{Month: time.September, Day: 30},
		ClosedName:  "summer break",
	})
	require.NoError(t, err)
	return rules
}

func testCatalog(t *testing.T) *calendar.Catalog {
	t.Helper()
	catalog, err := calendar.NewCatalog([]config.SlotEntry{
		{ID: 1, Weekday: "TUE", Start: "17:00", End: "20:00"},
		{ID: 2, Weekday: "THU", Start: "17:00", End: "20:00"},
		{ID: 3, Weekday: "SAT", Start: "10:00", End: "13:00"},
	})
	require.NoError(t, err)
	return catalog
}

// memBookings mimics the bookings table including its unique index.
type memBookings struct {
	mu        sync.Mutex
	rows      map[string]models.Booking
	createErr error
	deleteErr error
	creates   int
	deletes   int
	users     map[string]models.User
}

func newMemBookings() *memBookings {
	return &memBookings{rows: map[string]models.Booking{}}
}

func (m *memBookings) Create(ctx context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.rows {
		if existing.SlotTemplateID == b.SlotTemplateID && existing.CalendarDate.Equal(b.CalendarDate) {
			return fmt.Errorf("insert booking: %w", &pq.Error{Code: "23505", Constraint: "bookings_slot_date_key"})
		}
	}
	m.rows[b.ID] = *b
	return nil
}

func (m *memBookings) Delete(ctx context.Context, id string, ownerID *string) (*models.Booking, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.deleteErr != nil {
		return nil, false, m.deleteErr
	}
	b, ok := m.rows[id]
	if !ok || (ownerID != nil && b.UserID != *ownerID) {
		return nil, false, nil
	}
	delete(m.rows, id)
	return &b, true, nil
}

func (m *memBookings) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &b, nil
}

func (m *memBookings) ListForSlot(ctx context.Context, slotID int, date time.Time) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.rows {
		if b.SlotTemplateID == slotID && b.CalendarDate.Equal(date) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookings) ListForUser(ctx context.Context, userID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.rows {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CalendarDate.After(out[j].CalendarDate) })
	return out, nil
}

func (m *memBookings) ListRange(ctx context.Context, from, to time.Time) ([]models.BookingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BookingDetail
	for _, b := range m.rows {
		if b.CalendarDate.Before(from) || b.CalendarDate.After(to) {
			continue
		}
		u := m.users[b.UserID]
		out = append(out, models.BookingDetail{Booking: b, UserName: u.FullName, UserEmail: u.Email})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CalendarDate.Before(out[j].CalendarDate) })
	return out, nil
}

func (m *memBookings) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memBookings) at(slotID int, date time.Time) []models.Booking {
	out, _ := m.ListForSlot(context.Background(), slotID, date)
	return out
}

// auditSpy records appended entries.
type auditSpy struct {
	mu      sync.Mutex
	entries []models.AuditEntry
	err     error
}

func (a *auditSpy) Append(ctx context.Context, userID *string, action, details string, ts time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, models.AuditEntry{UserID: userID, Action: action, Details: details, CreatedAt: ts})
	return nil
}

func (a *auditSpy) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type inviteCall struct {
	To     models.Recipient
	SlotID int
	Date   time.Time
	Method models.InviteMethod
}

// dispatcherStub is a configurable notification transport.
type dispatcherStub struct {
	mu           sync.Mutex
	invites      []inviteCall
	broadcasts   []models.BroadcastMessage
	inviteErr    error
	inviteDelay  time.Duration
	panicOnSend  bool
	recipients   []string
	broadcastErr error
}

func (d *dispatcherStub) SendInvite(ctx context.Context, to models.Recipient, slot models.SlotTemplate, date time.Time, method models.InviteMethod) error {
	if d.panicOnSend {
		panic("transport exploded")
	}
	if d.inviteDelay > 0 {
		select {
		case <-time.After(d.inviteDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.invites = append(d.invites, inviteCall{To: to, SlotID: slot.ID, Date: date, Method: method})
	return d.inviteErr
}

func (d *dispatcherStub) SendAdminBroadcast(ctx context.Context, msg models.BroadcastMessage) []models.DeliveryResult {
	if d.panicOnSend {
		panic("transport exploded")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.broadcasts = append(d.broadcasts, msg)
	results := make([]models.DeliveryResult, 0, len(d.recipients))
	for _, r := range d.recipients {
		results = append(results, models.DeliveryResult{Recipient: r, Channel: "email", Err: d.broadcastErr})
	}
	return results
}

func (d *dispatcherStub) inviteMethods() []models.InviteMethod {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.InviteMethod, 0, len(d.invites))
	for _, c := range d.invites {
		out = append(out, c.Method)
	}
	return out
}

type usersStub map[string]models.User

func (u usersStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := u[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

func defaultUsers() usersStub {
	return usersStub{
		"user-a": {ID: "user-a", Email: "a@example.com", FullName: "Alice", Role: models.RoleMember, Active: true},
		"user-b": {ID: "user-b", Email: "b@example.com", FullName: "Bob", Role: models.RoleMember, Active: true},
		"admin":  {ID: "admin", Email: "admin@example.com", FullName: "Admin", Role: models.RoleAdmin, Active: true},
	}
}

// memFavorites mimics the favorites table.
type memFavorites struct {
	rows      map[string]models.Favorite
	removeErr error
	removed   int
}

func newMemFavorites() *memFavorites {
	return &memFavorites{rows: map[string]models.Favorite{}}
}

func favKey(userID string, slotID int, date time.Time) string {
	return userID + "|" + models.SlotInstance{SlotTemplateID: slotID, Date: date}.Key()
}

func (f *memFavorites) Add(ctx context.Context, fav *models.Favorite) (bool, error) {
	key := favKey(fav.UserID, fav.SlotTemplateID, fav.CalendarDate)
	if _, ok := f.rows[key]; ok {
		return false, nil
	}
	f.rows[key] = *fav
	return true, nil
}

func (f *memFavorites) Remove(ctx context.Context, userID string, slotID int, date time.Time) (bool, error) {
	if f.removeErr != nil {
		return false, f.removeErr
	}
	key := favKey(userID, slotID, date)
	if _, ok := f.rows[key]; !ok {
		return false, nil
	}
	delete(f.rows, key)
	f.removed++
	return true, nil
}

func (f *memFavorites) ListForUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	var out []models.Favorite
	for _, fav := range f.rows {
		if fav.UserID == userID {
			out = append(out, fav)
		}
	}
	return out, nil
}

// memDedup mimics ClaimIfUnbooked against the shared memBookings.
type memDedup struct {
	mu       sync.Mutex
	bookings *memBookings
	keys     map[string]time.Time
	err      error
}

func newMemDedup(bookings *memBookings) *memDedup {
	return &memDedup{bookings: bookings, keys: map[string]time.Time{}}
}

func (d *memDedup) ClaimIfUnbooked(ctx context.Context, slotID int, date time.Time, kind models.NotificationType, sentAt time.Time) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	if len(d.bookings.at(slotID, date)) > 0 {
		return false, nil
	}
	key := fmt.Sprintf("%s|%s", models.SlotInstance{SlotTemplateID: slotID, Date: date}.Key(), kind)
	if _, ok := d.keys[key]; ok {
		return false, nil
	}
	d.keys[key] = sentAt
	return true, nil
}

var errBoom = errors.New("boom")

type fixture struct {
	bookings  *memBookings
	favorites *memFavorites
	audit     *auditSpy
	dispatch  *dispatcherStub
	ledger    *LedgerService
	workflow  *WorkflowService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rules := testRules(t)
	catalog := testCatalog(t)
	f := &fixture{
		bookings:  newMemBookings(),
		favorites: newMemFavorites(),
		audit:     &auditSpy{},
		dispatch:  &dispatcherStub{recipients: []string{"admin@example.com"}},
	}
	f.bookings.users = map[string]models.User(defaultUsers())
	f.ledger = NewLedgerService(f.bookings, f.audit, nil, nil, nil)
	f.ledger.now = fixedClock

	gate := NewEligibilityService(rules, catalog, fixedClock)
	favorites := NewFavoriteService(f.favorites, catalog, f.audit, nil)
	notifier := NewNotificationService(f.dispatch, 200*time.Millisecond, nil, nil)
	f.workflow = NewWorkflowService(gate, f.ledger, catalog, favorites, notifier, defaultUsers(), nil, nil)
	return f
}
