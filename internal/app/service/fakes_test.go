package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"
	"tle_zone_dashboard/internal/domain/repository"
)

type noTx struct{}

func (noTx) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

// serialTx runs one transaction at a time, standing in for row locks.
type serialTx struct {
	mu sync.Mutex
}

func (s *serialTx) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(nil)
}

type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*model.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *model.User) error {
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) List(ctx context.Context, f repository.UserFilter) ([]model.User, int, error) {
	var out []model.User
	for id := int64(1); id <= r.nextID; id++ {
		u, ok := r.users[id]
		if !ok {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *u)
	}
	total := len(out)
	if f.Offset >= len(out) {
		return []model.User{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[f.Offset:end], total, nil
}

func (r *fakeUserRepo) UpdateStatus(ctx context.Context, id int64, status model.UserStatus) error {
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Status = status
	return nil
}

type fakeMailRepo struct {
	mails  map[int64]*model.Mail
	nextID int64
}

func newFakeMailRepo() *fakeMailRepo {
	return &fakeMailRepo{mails: map[int64]*model.Mail{}}
}

func (r *fakeMailRepo) Create(ctx context.Context, m *model.Mail) error {
	r.nextID++
	m.ID = r.nextID
	cp := *m
	r.mails[m.ID] = &cp
	return nil
}

func (r *fakeMailRepo) FindByID(ctx context.Context, id int64) (*model.Mail, error) {
	m, ok := r.mails[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMailRepo) List(ctx context.Context, unreadOnly bool, limit, offset int) ([]model.Mail, int, error) {
	var out []model.Mail
	for id := int64(1); id <= r.nextID; id++ {
		if m, ok := r.mails[id]; ok && (!unreadOnly || m.IsUnread()) {
			out = append(out, *m)
		}
	}
	return out, len(out), nil
}

func (r *fakeMailRepo) SetUnread(ctx context.Context, id int64, unread bool) error {
	m, ok := r.mails[id]
	if !ok {
		return common.ErrNotFound
	}
	m.Unread = &unread
	return nil
}

func (r *fakeMailRepo) SentAtBetween(ctx context.Context, rng model.Range) ([]time.Time, error) {
	var out []time.Time
	for _, m := range r.mails {
		if t := m.SentAt(); rng.Contains(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeMemberRepo struct {
	members map[string]*model.Member
}

func newFakeMemberRepo(members ...model.Member) *fakeMemberRepo {
	r := &fakeMemberRepo{members: map[string]*model.Member{}}
	for i := range members {
		m := members[i]
		r.members[m.Username] = &m
	}
	return r
}

func (r *fakeMemberRepo) Create(ctx context.Context, m *model.Member) error {
	if _, ok := r.members[m.Username]; ok {
		return common.ErrConflict
	}
	cp := *m
	r.members[m.Username] = &cp
	return nil
}

func (r *fakeMemberRepo) FindByUsername(ctx context.Context, tx *sql.Tx, username string) (*model.Member, error) {
	m, ok := r.members[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMemberRepo) List(ctx context.Context) ([]model.Member, error) {
	out := make([]model.Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *fakeMemberRepo) UpdateRole(ctx context.Context, tx *sql.Tx, username string, role model.MemberRole) error {
	m, ok := r.members[username]
	if !ok {
		return common.ErrNotFound
	}
	m.Role = role
	return nil
}

func (r *fakeMemberRepo) Delete(ctx context.Context, tx *sql.Tx, username string) error {
	if _, ok := r.members[username]; !ok {
		return common.ErrNotFound
	}
	delete(r.members, username)
	return nil
}

func (r *fakeMemberRepo) LockOwners(ctx context.Context, tx *sql.Tx) (int, error) {
	n := 0
	for _, m := range r.members {
		if m.Role == model.RoleOwner {
			n++
		}
	}
	return n, nil
}

type fakeQuestionRepo struct {
	questions map[string]*model.Question
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: map[string]*model.Question{}}
}

func (r *fakeQuestionRepo) Create(ctx context.Context, q *model.Question) error {
	if _, ok := r.questions[q.ID]; ok {
		return common.ErrConflict
	}
	cp := *q
	r.questions[q.ID] = &cp
	return nil
}

func (r *fakeQuestionRepo) FindByID(ctx context.Context, id string) (*model.Question, error) {
	q, ok := r.questions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (r *fakeQuestionRepo) List(ctx context.Context, level *int, limit, offset int) ([]model.Question, int, error) {
	var out []model.Question
	for _, q := range r.questions {
		if level == nil || q.Level == *level {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeQuestionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.questions[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.questions, id)
	return nil
}

type fakeNotificationRepo struct {
	notifications map[int64]*model.Notification
	nextID        int64
	createErr     error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: map[int64]*model.Notification{}}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, tx *sql.Tx, n *model.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	n.ID = r.nextID
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *fakeNotificationRepo) FindByID(ctx context.Context, id int64) (*model.Notification, error) {
	n, ok := r.notifications[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNotificationRepo) List(ctx context.Context, unreadOnly bool, limit, offset int) ([]model.Notification, int, error) {
	var out []model.Notification
	for id := int64(1); id <= r.nextID; id++ {
		if n, ok := r.notifications[id]; ok && (!unreadOnly || n.IsUnread()) {
			out = append(out, *n)
		}
	}
	return out, len(out), nil
}

func (r *fakeNotificationRepo) SetUnread(ctx context.Context, id int64, unread bool) error {
	n, ok := r.notifications[id]
	if !ok {
		return common.ErrNotFound
	}
	n.Unread = &unread
	return nil
}

func (r *fakeNotificationRepo) SentAtBetween(ctx context.Context, rng model.Range) ([]time.Time, error) {
	var out []time.Time
	for _, n := range r.notifications {
		if t := n.SentAt(); rng.Contains(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeDeliveryRepo struct {
	deliveries map[int64]*model.Delivery
}

func newFakeDeliveryRepo() *fakeDeliveryRepo {
	return &fakeDeliveryRepo{deliveries: map[int64]*model.Delivery{}}
}

func (r *fakeDeliveryRepo) Create(ctx context.Context, tx *sql.Tx, d *model.Delivery) error {
	cp := *d
	r.deliveries[d.NotificationID] = &cp
	return nil
}

func (r *fakeDeliveryRepo) FindByNotificationID(ctx context.Context, id int64) (*model.Delivery, error) {
	d, ok := r.deliveries[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDeliveryRepo) UpdateStatus(ctx context.Context, id int64, status model.DeliveryStatus, lastError *string) error {
	d, ok := r.deliveries[id]
	if !ok {
		return common.ErrNotFound
	}
	d.Status = status
	d.LastError = lastError
	return nil
}

func (r *fakeDeliveryRepo) IncrementAttempts(ctx context.Context, id int64) (int, error) {
	d, ok := r.deliveries[id]
	if !ok {
		return 0, common.ErrNotFound
	}
	d.Attempts++
	return d.Attempts, nil
}

func (r *fakeDeliveryRepo) ListPending(ctx context.Context, updatedBefore time.Time) ([]int64, error) {
	var ids []int64
	for id, d := range r.deliveries {
		if !d.Status.IsTerminal() && d.UpdatedAt.Before(updatedBefore) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []int64
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, id)
	return nil
}
