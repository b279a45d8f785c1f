package meeting

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting/meetingtest"
	"github.com/BruksfildServices01/meeting-rooms/internal/infra/lock"
	"github.com/BruksfildServices01/meeting-rooms/internal/infra/storage"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

var (
	ctx   = context.Background()
	day   = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	nopLg = zap.NewNop()
)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

type fixture struct {
	repo      *meetingtest.Memory
	store     *memStore
	locker    *lock.Local
	organizer models.User
	alice     models.User
	bob       models.User
	carol     models.User
	room      models.Room
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := meetingtest.New()
	return &fixture{
		repo:      repo,
		store:     newMemStore(),
		locker:    lock.NewLocal(time.Second),
		organizer: repo.AddUser(models.User{Email: "org@example.com", Role: string(access.RoleEmployee)}),
		alice:     repo.AddUser(models.User{Email: "alice@example.com", Role: string(access.RoleEmployee)}),
		bob:       repo.AddUser(models.User{Email: "bob@example.com", Role: string(access.RoleEmployee)}),
		carol:     repo.AddUser(models.User{Email: "carol@example.com", Role: string(access.RoleEmployee)}),
		room:      repo.AddRoom(models.Room{Name: "Fjord", Capacity: 2}),
	}
}

func actorOf(u models.User) access.Actor {
	role, _ := access.ParseRole(u.Role)
	return access.Actor{UserID: u.ID, Role: role}
}

func adminActor() access.Actor {
	return access.Actor{UserID: uuid.New(), Role: access.RoleAdmin}
}

func (f *fixture) meeting(t *testing.T, start, end time.Time) *models.Meeting {
	t.Helper()
	m, err := NewCreateMeeting(f.repo, nil).Execute(ctx, actorOf(f.organizer), CreateMeetingInput{
		Title:     "Weekly sync",
		RoomID:    &f.room.ID,
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)
	return m
}

// attendee invites u and accepts on their behalf.
func (f *fixture) attendee(t *testing.T, m *models.Meeting, u models.User) *models.Invitee {
	t.Helper()
	inv, err := NewAddInvitee(f.repo, nil).Execute(ctx, actorOf(f.organizer), m.ID, u.ID)
	require.NoError(t, err)
	inv, err = NewRespondToInvite(f.repo, nil).Execute(ctx, actorOf(u), m.ID, inv.ID, true)
	require.NoError(t, err)
	return inv
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *models.Meeting {
	t.Helper()
	m, err := f.repo.GetMeeting(ctx, id)
	require.NoError(t, err)
	return m
}

func file(name, content string) domain.UploadFile {
	return domain.UploadFile{
		Name: name,
		Size: int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

// memStore is a FileStore over a map. failAfter makes the n-th Put fail.
type memStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	puts      int
	failAfter int
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

var errStoreDown = errors.New("store down")

func (s *memStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.failAfter > 0 && s.puts >= s.failAfter {
		return errStoreDown
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = b
	return nil
}

func (s *memStore) Open(_ context.Context, key string) (*storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.Object{Body: io.NopCloser(bytes.NewReader(b)), Size: int64(len(b))}, nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objects))
	for k := range s.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
