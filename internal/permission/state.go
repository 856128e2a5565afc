// Package permission gates inbox reads on the host's SMS permission and runs
// the one-shot request flow.
package permission

type State string

const (
	Granted       State = "granted"
	Denied        State = "denied"
	NotDetermined State = "notDetermined"
)

func (s State) String() string {
	return string(s)
}
