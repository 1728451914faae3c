package proto

// DoorState is the Door resource's Value type. It is declared here, rather
// than inside the door actor package, because NewInternalUnlock
// needs it to build the internal Door.Set(Unlock) request that the keypad
// and NFC actors send without importing the door package itself.
type DoorState string

const (
	StateLock   DoorState = "Lock"
	StateUnlock DoorState = "Unlock"
)
