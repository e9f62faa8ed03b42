package telemetry

import "time"

type EventType string

const (
	EventFishCaught      EventType = "fish_caught"
	EventGarbageCaught   EventType = "garbage_caught"
	EventTreasureCaught  EventType = "treasure_caught"
	EventNothingCaught   EventType = "nothing_caught"
	EventLevelUp         EventType = "level_up"
	EventFishArchived    EventType = "fish_archived"
	EventSectionSold     EventType = "section_sold"
	EventOfflineSettled  EventType = "offline_settled"
	EventGuideResynced   EventType = "guide_resynced"
	EventGuideReset      EventType = "guide_reset"
	EventSessionFinished EventType = "session_finished"
	EventItemBought      EventType = "item_bought"
)

type Event struct {
	ID        int       `json:"id" csv:"id"`
	Type      EventType `json:"type" csv:"type"`
	Timestamp time.Time `json:"timestamp" csv:"timestamp"`
	Metadata  string    `json:"metadata" csv:"metadata"`
}

type EventMetadata map[string]interface{}
