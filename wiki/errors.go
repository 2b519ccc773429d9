package wiki

import "fmt"

// Login result codes returned by the remote service.
const (
	LoginSuccess        = "Success"
	LoginErrorNeedToken = "NeedToken"
	LoginErrorWrongPass = "WrongPass"
	LoginErrorEmptyPass = "EmptyPass"
	LoginErrorNotExists = "NotExists"
	LoginErrorNoName    = "NoName"
)

// RemoteServiceError carries the error envelope returned by the API:
// {"error": {"code": ..., "info": ...}}. The code and info are surfaced
// verbatim so callers can decide on retry or backoff themselves.
type RemoteServiceError struct {
	Code string
	Info string
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("remote service error [%s]: %s", e.Code, e.Info)
}

// TransportError wraps a network-level failure (connection refused,
// timeout, malformed body). These are never retried by the client.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthenticationError reports a failed login with the remote's result
// code and a human-readable cause.
type AuthenticationError struct {
	Code   string
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed [%s]: %s", e.Code, e.Reason)
}

// loginFailure translates a login result code into an AuthenticationError
// with a cause distinct enough to show a user.
func loginFailure(code string) *AuthenticationError {
	var reason string
	switch code {
	case LoginErrorWrongPass:
		reason = "password incorrect"
	case LoginErrorEmptyPass:
		reason = "password is empty"
	case LoginErrorNotExists:
		reason = "username not found"
	case LoginErrorNoName:
		reason = "username is empty"
	case LoginErrorNeedToken:
		reason = "server demanded a second login token; refusing to loop"
	default:
		reason = fmt.Sprintf("unknown login error %q", code)
	}
	return &AuthenticationError{Code: code, Reason: reason}
}

// EditConflictError indicates the remote rejected a write because a newer
// revision exists. No merge is attempted; the caller decides what to do.
type EditConflictError struct {
	Title string
}

func (e *EditConflictError) Error() string {
	return fmt.Sprintf("edit conflict on %q: a newer revision exists on the server", e.Title)
}

// PermissionDeniedError indicates a token or rights rejection, as opposed
// to a detected conflict.
type PermissionDeniedError struct {
	Title string
	Code  string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied on %q [%s]", e.Title, e.Code)
}

// ProtocolError indicates the remote returned a structurally unexpected
// success payload (missing fields, wrong shapes).
type ProtocolError struct {
	Action string
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unexpected %s response: %s", e.Action, e.Detail)
}

// ParameterError reports use of a parameter outside an action's
// whitelist. This is a programming error, raised before any network I/O.
type ParameterError struct {
	Action string
	Param  string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter %q is not permitted for action %q", e.Param, e.Action)
}
