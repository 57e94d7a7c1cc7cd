// Package discovery provides the global provider lookup used to find
// listeners and retry policies that are not attached explicitly.
//
// Packages contribute implementations from init functions, the way
// database/sql drivers register themselves:
//
//	func init() {
//	    testchain.Listeners.MustRegister("screenshots", func() (any, error) {
//	        return &ScreenshotListener{}, nil
//	    })
//	}
//
// A Provider keeps registration order, and Load returns values in that
// order so dispatch order is reproducible between runs.
package discovery
