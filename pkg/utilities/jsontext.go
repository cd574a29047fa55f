package utilities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Text is a JSON string field that also accepts numbers and booleans, keeping
// their literal form ("phone": 2348000000000 decodes to "2348000000000").
// null decodes to the empty string. Objects and arrays are rejected.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("text: empty value")
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case 'n':
		if string(b) != "null" {
			return fmt.Errorf("text: invalid literal %s", b)
		}
		*t = ""
	case 't', 'f':
		v, err := strconv.ParseBool(string(b))
		if err != nil {
			return fmt.Errorf("text: invalid literal %s", b)
		}
		*t = Text(strconv.FormatBool(v))
	case '{', '[':
		return fmt.Errorf("text: cannot use %c...%c as a string", b[0], b[len(b)-1])
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*t = Text(n.String())
	}
	return nil
}

func (t Text) String() string {
	return string(t)
}
