package hubs

import (
	"encoding/json"
	"fmt"
)

// Mode selects which side of the hub threshold a classification keeps.
type Mode int

const (
	// HideHubs keeps the nodes below the threshold.
	HideHubs Mode = iota + 1
	// ShowHubs keeps the nodes at or above the threshold.
	ShowHubs
)

// The labels of the two options in the frontend's hub dropdown.
const (
	hideHubsLabel = "Hide Hubs"
	showHubsLabel = "Show Hubs"
)

// ParseMode accepts the dropdown labels. Anything else is ErrInvalidMode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case hideHubsLabel:
		return HideHubs, nil
	case showHubsLabel:
		return ShowHubs, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

func (m Mode) Valid() bool {
	return m == HideHubs || m == ShowHubs
}

func (m Mode) String() string {
	switch m {
	case HideHubs:
		return hideHubsLabel
	case ShowHubs:
		return showHubsLabel
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (m Mode) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
	}
	return json.Marshal(m.String())
}

func (m *Mode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMode, string(b))
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
