package services

import (
	"github.com/krushndayshmookh/krushn-calendar/models"
	"google.golang.org/api/calendar/v3"
)

// metadataKeys lists the ids an event's metadata may be stored under, most
// specific first: the instance itself, then its recurring series.
func metadataKeys(event *calendar.Event) []string {
	keys := []string{event.Id}
	if event.RecurringEventId != "" && event.RecurringEventId != event.Id {
		keys = append(keys, event.RecurringEventId)
	}
	return keys
}

// metadataTarget is where edits to an event's metadata are written. Edits
// to one instance of a recurring event apply to the whole series.
func metadataTarget(event *calendar.Event, fallbackID string) string {
	if event != nil && event.RecurringEventId != "" {
		return event.RecurringEventId
	}
	return fallbackID
}

// lookupIDs is the distinct union of every event's metadata keys, in
// first-seen order.
func lookupIDs(events []*calendar.Event) []string {
	seen := make(map[string]struct{}, len(events))
	ids := make([]string, 0, len(events))
	for _, event := range events {
		for _, key := range metadataKeys(event) {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			ids = append(ids, key)
		}
	}
	return ids
}

func indexMetadata(records []models.EventMetadata) map[string]*models.EventMetadata {
	index := make(map[string]*models.EventMetadata, len(records))
	for i := range records {
		index[records[i].GoogleEventID] = &records[i]
	}
	return index
}

// resolveMetadata returns the first record found along the event's keys.
func resolveMetadata(event *calendar.Event, index map[string]*models.EventMetadata) *models.EventMetadata {
	for _, key := range metadataKeys(event) {
		if record, ok := index[key]; ok {
			return record
		}
	}
	return nil
}

// mergeEvents attaches metadata to every event, keeping the remote order.
func mergeEvents(events []*calendar.Event, records []models.EventMetadata) []models.MergedEvent {
	index := indexMetadata(records)
	merged := make([]models.MergedEvent, 0, len(events))
	for _, event := range events {
		merged = append(merged, models.MergedEvent{
			Remote:   event,
			Metadata: resolveMetadata(event, index),
		})
	}
	return merged
}
