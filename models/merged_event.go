package models

import (
	"encoding/json"

	"google.golang.org/api/calendar/v3"
)

// MergedEvent pairs a remote calendar event with its resolved local metadata.
//
// Its JSON form is the remote event's own JSON plus an "extendedProps"
// field. When Metadata is nil the field is "{}" unless OmitEmptyProps is set,
// in which case it is left out.
type MergedEvent struct {
	Remote         *calendar.Event
	Metadata       *EventMetadata
	OmitEmptyProps bool
}

func (m MergedEvent) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if m.Remote != nil {
		raw, err := json.Marshal(m.Remote)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
	}

	switch {
	case m.Metadata != nil:
		props, err := json.Marshal(m.Metadata)
		if err != nil {
			return nil, err
		}
		fields["extendedProps"] = props
	case !m.OmitEmptyProps:
		fields["extendedProps"] = json.RawMessage("{}")
	}

	return json.Marshal(fields)
}
