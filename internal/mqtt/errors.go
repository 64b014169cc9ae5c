package mqtt

import "errors"

// ErrNotConnected is returned by Publish while there is no broker connection.
var ErrNotConnected = errors.New("mqtt client not connected")
