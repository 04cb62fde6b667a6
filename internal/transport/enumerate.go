package transport

import (
	"sort"

	"go.bug.st/serial"
)

// ListPorts returns the serial device paths present on the system, sorted.
// An empty list is returned when enumeration fails; the caller can still
// open an explicit path.
func ListPorts() []string {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil
	}
	sort.Strings(ports)
	return ports
}
