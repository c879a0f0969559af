package protocol

import "github.com/google/uuid"

// ServiceID is the service advertised by the appliance.
var ServiceID = uuid.MustParse("0000cdd0-0000-1000-8000-00805f9b34fb")

// ReadCharacteristicID carries notifications (appliance -> client).
var ReadCharacteristicID = uuid.MustParse("0003cdd1-0000-1000-8000-00805f9b0131")

// WriteCharacteristicID accepts command frames (client -> appliance).
var WriteCharacteristicID = uuid.MustParse("0003cdd2-0000-1000-8000-00805f9b0131")

const (
	// CommandFrameSize is the fixed length of every command frame
	CommandFrameSize = 19

	// NotificationFrameSize is the fixed length of every notification record
	NotificationFrameSize = 17

	// padByte fills command frames after the content
	padByte = ' '
)
