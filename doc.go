// Package authsync keeps a client's notion of "who is signed in" in step with
// a remote identity provider and fires the presence and audit writes that
// follow sign in, sign out and profile edits.
//
// Session state:
//   - Observer subscribes to the IdentityProvider change stream before asking
//     for the current session. Provider events replace the state wholesale and
//     bump a generation counter; the one shot fetch only lands when no event
//     happened while it was in flight.
//   - Service wraps the observer together with the credential operations
//     (SignUp, SignIn, SignOut, UpdateProfile) and is meant to be built once
//     and injected, see WithContext and FromContext.
//
// Side effects:
//   - Dispatcher runs presence (ProfileStore.UpdateStatus) and activity
//     (ActivityStore.Append) writes on its own goroutine in FIFO order. Task
//     errors are logged and never reach the caller, a state update never
//     waits on them.
//
// Storage and the provider are interfaces. The repository package ships bun
// backed stores and provider/local a self hosted identity provider.
package authsync
