// File: utils/constants.go
package utils

// HoldKeyPrefix is the prefix used for Redis slot-hold keys.
const HoldKeyPrefix = "hold:"

// CalendarChannelPrefix is the prefix for per-provider calendar pub/sub channels.
const CalendarChannelPrefix = "calendar:"
