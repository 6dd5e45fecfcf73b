package bot

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/aspireledger/aspire-bot/internal/bot/handlers"
	apperrors "github.com/aspireledger/aspire-bot/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubContext struct {
	telebot.Context

	sender *telebot.User
	text   string
	sent   []string
}

func (c *stubContext) Sender() *telebot.User       { return c.sender }
func (c *stubContext) Text() string                { return c.text }
func (c *stubContext) Callback() *telebot.Callback { return nil }

func (c *stubContext) Send(what interface{}, _ ...interface{}) error {
	c.sent = append(c.sent, what.(string))
	return nil
}

type allowListPolicy struct {
	users map[int64]bool
}

func (p *allowListPolicy) Allowed(userID int64) bool { return p.users[userID] }

func TestAccessMiddleware(t *testing.T) {
	policy := &allowListPolicy{users: map[int64]bool{7: true}}

	tests := []struct {
		name       string
		sender     *telebot.User
		wantCalled bool
	}{
		{name: "allowed user passes", sender: &telebot.User{ID: 7}, wantCalled: true},
		{name: "unknown user dropped", sender: &telebot.User{ID: 8}, wantCalled: false},
		{name: "missing sender dropped", sender: nil, wantCalled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := handlers.Handler(func(c telebot.Context) error {
				called = true
				return nil
			})

			c := &stubContext{sender: tt.sender, text: "/start"}
			err := AccessMiddleware(policy, testLogger())(next)(c)

			require.NoError(t, err)
			assert.Equal(t, tt.wantCalled, called)
			assert.Empty(t, c.sent)
		})
	}
}

func TestAccessMiddlewareNilPolicyPassesThrough(t *testing.T) {
	called := false
	next := handlers.Handler(func(c telebot.Context) error {
		called = true
		return nil
	})

	err := AccessMiddleware(nil, testLogger())(next)(&stubContext{})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestErrorHandlingMiddlewareSendsUserMessage(t *testing.T) {
	errHandler := apperrors.NewHandler(testLogger(), false)
	next := handlers.Handler(func(c telebot.Context) error {
		return apperrors.NewSinkError(errors.New("append failed"))
	})

	c := &stubContext{sender: &telebot.User{ID: 7}}
	err := ErrorHandlingMiddleware(errHandler)(next)(c)

	require.NoError(t, err)
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Failed to save the transaction")
}

func TestErrorHandlingMiddlewareSilentWithoutUserMessage(t *testing.T) {
	errHandler := apperrors.NewHandler(testLogger(), false)
	next := handlers.Handler(func(c telebot.Context) error {
		return apperrors.NewRoutingError("unknown callback")
	})

	c := &stubContext{sender: &telebot.User{ID: 7}}
	err := ErrorHandlingMiddleware(errHandler)(next)(c)

	require.NoError(t, err)
	assert.Empty(t, c.sent)
}

func TestCommandToken(t *testing.T) {
	assert.Equal(t, "/start", commandToken("/start"))
	assert.Equal(t, "/start", commandToken("/start extra args"))
	assert.Equal(t, "/q", commandToken("/q"))
}

func TestRouterRoutesCommands(t *testing.T) {
	router := NewRouter(nil, testLogger())

	var got string
	router.RegisterCommand("/start", func(c telebot.Context) error {
		got = c.Text()
		return nil
	})

	c := &stubContext{sender: &telebot.User{ID: 7}, text: "/start"}
	require.NoError(t, router.Route(c))
	assert.Equal(t, "/start", got)
}

func TestRouterAppliesMiddlewaresInOrder(t *testing.T) {
	router := NewRouter(nil, testLogger())

	var order []string
	mw := func(name string) handlers.Middleware {
		return func(next handlers.Handler) handlers.Handler {
			return func(c telebot.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}

	router.Use(mw("outer"))
	router.Use(mw("inner"))
	router.RegisterCommand("/start", func(c telebot.Context) error {
		order = append(order, "handler")
		return nil
	})

	c := &stubContext{sender: &telebot.User{ID: 7}, text: "/start"}
	require.NoError(t, router.Route(c))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
