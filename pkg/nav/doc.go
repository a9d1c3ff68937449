// Package nav is a navigation controller for stack-based UIs.
//
// Every UI host (a window, a terminal program, a test harness) owns a Stack
// of destinations. The host attaches its stack to a Controller with Attach;
// from then on any code holding the Controller can navigate without a
// reference to the host:
//
//	ctrl := nav.New(nav.WithLogger(logger))
//	stack := nav.NewStack(Home{})
//	ctrl.Attach(nav.OwnerOf(window), stack)
//
//	ctrl.Go(Profile{UserID: 7})
//	ctrl.Back()
//
// The controller keeps only a weak reference to each owner. An owner that is
// garbage collected without Detach is dropped from the table automatically.
//
// # Interceptors
//
// Every push request runs through an ordered chain of interceptors before it
// touches a stack. An interceptor may let the request through, cancel it, or
// redirect it to another key:
//
//	ctrl.AddInterceptor(nav.InterceptFunc(func(k nav.Key, a nav.Action) nav.Decision {
//	    if _, ok := k.(Settings); ok && !loggedIn() {
//	        return nav.Redirect(Login{})
//	    }
//	    return nav.Continue()
//	}))
//
// The chain runs exactly once per request. Back and Finish are not
// intercepted.
//
// # Results
//
// A key embedding Result[T] can send a T back to the caller that navigated
// to it:
//
//	nav.GoResult(ctrl, &AskName{}, func(name string) { greet(name) })
//
//	// inside the AskName screen
//	nav.FinishResult(ctrl, key, "Ada")
//
// GoResultWait and AwaitResult offer the same through a blocking Waiter for
// code that runs off the UI goroutine.
package nav
