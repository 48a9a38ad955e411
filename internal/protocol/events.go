package protocol

type Event map[string]interface{}

// Event types the agent reacts to.
const (
	EventActionResult = "ACTION_RESULT"
	EventTaskDone     = "TASK_DONE"
	EventTaskFail     = "TASK_FAIL"
)

func (e Event) Type() string { return e.Str("type") }

func (e Event) Str(key string) string {
	s, _ := e[key].(string)
	return s
}

func (e Event) Bool(key string) bool {
	b, _ := e[key].(bool)
	return b
}

// Ref is the client-side request id an ACTION_RESULT answers.
func (e Event) Ref() string { return e.Str("ref") }

// TaskID is the server-assigned task id carried by task events.
func (e Event) TaskID() string { return e.Str("task_id") }

// Code is the error code of a failed result, empty on success.
func (e Event) Code() string { return e.Str("code") }
