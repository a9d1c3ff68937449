// Package interceptors provides stock navigation interceptors.
//
// Each constructor returns a fresh nav.Interceptor; keep the value to
// remove it later:
//
//	login := interceptors.RequireLogin(session.LoggedIn, screens.Login{})
//	ctrl.AddInterceptor(interceptors.Logging(logger))
//	ctrl.AddInterceptor(login)
//	ctrl.AddInterceptor(interceptors.Debounce(500*time.Millisecond))
//	...
//	ctrl.RemoveInterceptor(login)
//
// Interceptors run on the UI goroutine and are not safe for concurrent use
// by several controllers.
package interceptors
