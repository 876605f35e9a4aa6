package mqtt

import "strings"

// TopicPrefix is the root of every topic dbhandler publishes.
const TopicPrefix = "dbhandler"

// Topics provides builders for dbhandler MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.Journal("app.db") // "dbhandler/journal/app.db"
type Topics struct{}

// SystemStatus returns the retained online/offline status topic.
//
// Example: dbhandler/system/status
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// Journal returns the topic that carries one message per executed
// statement against database.
//
// Example: dbhandler/journal/app.db
func (Topics) Journal(database string) string {
	return TopicPrefix + "/journal/" + sanitise(database)
}

// sanitise replaces characters with special meaning in MQTT topic levels.
// An empty name becomes "_".
func sanitise(level string) string {
	if level == "" {
		return "_"
	}
	return strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(level)
}
