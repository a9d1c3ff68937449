package interceptors

import (
	"log/slog"
	"reflect"
	"slices"
	"time"

	"github.com/vango-dev/navstack/pkg/nav"
)

// Logging logs every request at Debug and lets it through.
func Logging(logger *slog.Logger) nav.Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return nav.InterceptFunc(func(key nav.Key, action nav.Action) nav.Decision {
		logger.Debug("navigation requested", "key", nav.TypeName(key), "action", action.String())
		return nav.Continue()
	})
}

// RequireLogin redirects to loginKey while isLoggedIn reports false. Requests
// for loginKey's own type always pass.
func RequireLogin(isLoggedIn func() bool, loginKey nav.Key) nav.Interceptor {
	loginType := reflect.TypeOf(loginKey)
	return nav.InterceptFunc(func(key nav.Key, _ nav.Action) nav.Decision {
		if reflect.TypeOf(key) == loginType || isLoggedIn() {
			return nav.Continue()
		}
		return nav.Redirect(loginKey)
	})
}

// Permission cancels requests for which allowed reports false.
func Permission(allowed func(nav.Key) bool, reason string) nav.Interceptor {
	if reason == "" {
		reason = "permission denied"
	}
	return nav.InterceptFunc(func(key nav.Key, _ nav.Action) nav.Decision {
		if allowed(key) {
			return nav.Continue()
		}
		return nav.Cancel(reason)
	})
}

// RedirectWhen sends requests matching match to target instead.
func RedirectWhen(match func(nav.Key) bool, target nav.Key) nav.Interceptor {
	return nav.InterceptFunc(func(key nav.Key, _ nav.Action) nav.Decision {
		if match(key) && !nav.Equal(key, target) {
			return nav.Redirect(target)
		}
		return nav.Continue()
	})
}

// ForKey runs fn only for keys of type K; other requests pass.
func ForKey[K nav.Key](fn func(key K, action nav.Action) nav.Decision) nav.Interceptor {
	return nav.InterceptFunc(func(key nav.Key, action nav.Action) nav.Decision {
		k, ok := key.(K)
		if !ok {
			return nav.Continue()
		}
		return fn(k, action)
	})
}

// OnlyActions applies inner to the listed actions and lets others through.
func OnlyActions(inner nav.Interceptor, actions ...nav.Action) nav.Interceptor {
	return nav.InterceptFunc(func(key nav.Key, action nav.Action) nav.Decision {
		if !slices.Contains(actions, action) {
			return nav.Continue()
		}
		return inner.Intercept(key, action)
	})
}

// DebounceReason is the cancel reason of Debounce.
const DebounceReason = "navigating too fast"

// DebounceOption configures Debounce.
type DebounceOption func(*debouncer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) DebounceOption {
	return func(d *debouncer) {
		d.now = now
	}
}

type debouncer struct {
	interval time.Duration
	now      func() time.Time
	lastKey  nav.Key
	lastAt   time.Time
}

// Debounce cancels a request for the same key as the previous accepted one
// when it arrives within interval. Cancelled requests do not extend the
// window.
func Debounce(interval time.Duration, opts ...DebounceOption) nav.Interceptor {
	d := &debouncer{interval: interval, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *debouncer) Intercept(key nav.Key, _ nav.Action) nav.Decision {
	now := d.now()
	if d.lastKey != nil && nav.Equal(key, d.lastKey) && now.Sub(d.lastAt) < d.interval {
		return nav.Cancel(DebounceReason)
	}
	d.lastKey = key
	d.lastAt = now
	return nav.Continue()
}
