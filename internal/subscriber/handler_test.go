package subscriber

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-coinova/internal/notify"
	"github.com/ovaphlow/pitchfork/service-coinova/internal/subscriber/entity"
	"github.com/ovaphlow/pitchfork/service-coinova/internal/subscriber/repo"
	"github.com/ovaphlow/pitchfork/service-coinova/pkg/mailer"
)

// memoryRepo enforces email uniqueness the way the unique index does.
type memoryRepo struct {
	mu      sync.Mutex
	rows    map[string]entity.Subscriber
	findErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[string]entity.Subscriber)}
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (*entity.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	s, ok := m.rows[email]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memoryRepo) Insert(_ context.Context, s *entity.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[s.Email]; ok {
		return repo.ErrDuplicateEmail
	}
	m.rows[s.Email] = *s
	return nil
}

func (m *memoryRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func newTestHandler(t *testing.T, r Repository, sender mailer.Sender) *Handler {
	t.Helper()
	n, err := notify.New(sender, notify.Config{
		FromName:     "Coinova",
		FromAddress:  "hello@coinova.ng",
		SupportEmail: "support@coinova.ng",
	})
	require.NoError(t, err)
	logger := zap.NewNop().Sugar()
	return NewHandler(NewService(r, n, logger), logger)
}

func postSubscribe(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Subscribe(rec, req)
	return rec
}

func TestHandler_SubscribeThenRepeat(t *testing.T) {
	t.Parallel()

	store := newMemoryRepo()
	sender := &mailer.MemorySender{}
	h := newTestHandler(t, store, sender)
	body := `{"name":"Ada","email":"ada@x.com","phone":"+2348000000000"}`

	rec := postSubscribe(h, body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"message":"Subscription successful!"}`, rec.Body.String())
	require.Equal(t, 1, store.count())

	out := sender.Outbox()
	require.Len(t, out, 1)
	require.Equal(t, []string{"ada@x.com"}, out[0].To)
	require.Equal(t, "Welcome to Coinova!", out[0].Subject)
	require.Contains(t, out[0].HTML, "Hi Ada,")

	rec = postSubscribe(h, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"message":"Email already subscribed."}`, rec.Body.String())
	require.Equal(t, 1, store.count())
	require.Len(t, sender.Outbox(), 1)
}

func TestHandler_ConcurrentSameEmail(t *testing.T) {
	t.Parallel()

	store := newMemoryRepo()
	sender := &mailer.MemorySender{}
	h := newTestHandler(t, store, sender)

	const n = 8
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = postSubscribe(h, `{"name":"Ada","email":"race@x.com"}`).Code
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, c := range codes {
		if c == http.StatusOK {
			ok++
			continue
		}
		require.Equal(t, http.StatusBadRequest, c)
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, store.count())
	require.Len(t, sender.Outbox(), 1)
}

func TestHandler_SendFailure(t *testing.T) {
	t.Parallel()

	store := newMemoryRepo()
	sender := &mailer.MemorySender{Fail: func(*mailer.Email) error { return errors.New("relay down") }}
	h := newTestHandler(t, store, sender)

	rec := postSubscribe(h, `{"name":"Ada","email":"ada@x.com"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"message":"An error occurred while subscribing."}`, rec.Body.String())
	require.Equal(t, 1, store.count())
}

func TestHandler_StoreFailure(t *testing.T) {
	t.Parallel()

	store := newMemoryRepo()
	store.findErr = errors.New("db down")
	sender := &mailer.MemorySender{}
	h := newTestHandler(t, store, sender)

	rec := postSubscribe(h, `{"name":"Ada","email":"ada@x.com"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"message":"An error occurred while subscribing."}`, rec.Body.String())
	require.Empty(t, sender.Outbox())
}

func TestHandler_InvalidBody(t *testing.T) {
	t.Parallel()

	store := newMemoryRepo()
	sender := &mailer.MemorySender{}
	h := newTestHandler(t, store, sender)

	for _, body := range []string{`{"name":`, `{"name":"Ada","email":{"addr":"ada@x.com"}}`} {
		rec := postSubscribe(h, body)
		require.Equal(t, http.StatusInternalServerError, rec.Code, body)
		require.JSONEq(t, `{"message":"An error occurred while subscribing."}`, rec.Body.String())
	}
	require.Zero(t, store.count())
	require.Empty(t, sender.Outbox())
}

func TestHandler_ScalarFields(t *testing.T) {
	t.Parallel()

	store := newMemoryRepo()
	sender := &mailer.MemorySender{}
	h := newTestHandler(t, store, sender)

	rec := postSubscribe(h, `{"name":"Ada","email":"ada@x.com","phone":2348000000000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Subscription successful!"}`, rec.Body.String())

	store.mu.Lock()
	row := store.rows["ada@x.com"]
	store.mu.Unlock()
	require.Equal(t, "2348000000000", row.Phone)
	require.Len(t, sender.Outbox(), 1)
}

func TestHandler_LongPhone(t *testing.T) {
	t.Parallel()

	store := newMemoryRepo()
	sender := &mailer.MemorySender{}
	h := newTestHandler(t, store, sender)
	phone := "+234 800 000 0000 ext. 1234 (office, weekdays only)"

	rec := postSubscribe(h, `{"name":"Ada","email":"ada@x.com","phone":"`+phone+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	store.mu.Lock()
	row := store.rows["ada@x.com"]
	store.mu.Unlock()
	require.Equal(t, phone, row.Phone)
}
