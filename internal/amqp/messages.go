package amqp

import (
	"encoding/json"
	"time"
)

// NotificationCheckMessage asks the worker to run the notification rule
// engine for one user. It carries only the user ID; the worker fetches
// everything else from the database.
type NotificationCheckMessage struct {
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNotificationCheckMessage creates a rule-check request for a user
func NewNotificationCheckMessage(userID int64) *NotificationCheckMessage {
	return &NotificationCheckMessage{
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationCheckMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationCheckMessageFromJSON creates a message from JSON bytes
func NotificationCheckMessageFromJSON(data []byte) (*NotificationCheckMessage, error) {
	var msg NotificationCheckMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BackupRequestMessage asks the worker to snapshot user data. A zero
// UserID means every profile, the daily sweep.
type BackupRequestMessage struct {
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBackupRequestMessage creates a backup request
func NewBackupRequestMessage(userID int64) *BackupRequestMessage {
	return &BackupRequestMessage{
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BackupRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BackupRequestMessageFromJSON creates a message from JSON bytes
func BackupRequestMessageFromJSON(data []byte) (*BackupRequestMessage, error) {
	var msg BackupRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
