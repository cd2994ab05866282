// Package quadcast provides HyperX QuadCast 2 LED report building and device constants.
package quadcast

const (
	// VendorID is the HP USB vendor ID used by HyperX devices.
	VendorID uint16 = 0x03F0
	// ProductID is the USB product ID of the QuadCast 2.
	ProductID uint16 = 0x09AF
	// InterfaceNumber is the HID interface that accepts LED reports.
	InterfaceNumber = 0
	// ReportSize is the total size of an LED output report.
	ReportSize = 64
	// MaxBrightness is the highest zone level the firmware accepts.
	MaxBrightness = 242

	// OpBrightness is the per-zone brightness opcode.
	OpBrightness byte = 0x81
	// OpHeartbeat is the keep-alive opcode.
	OpHeartbeat byte = 0x04

	// RequestTypeOut is the bmRequestType for a host-to-device class request
	// targeting an interface.
	RequestTypeOut uint8 = 0x21
	// RequestSetReport is the HID SET_REPORT bRequest.
	RequestSetReport uint8 = 0x09
	// ReportValue is the wValue identifying the LED output report.
	ReportValue uint16 = 0x0300
)

// BuildBrightnessPacket creates the report that sets both LED zones.
// Lower and upper are device-native levels (0-242); each zone is addressed by
// its own opcode/level pair at fixed offsets within the report.
func BuildBrightnessPacket(lower, upper byte) []byte {
	packet := make([]byte, ReportSize)

	packet[0] = OpBrightness // Lower zone opcode
	packet[1] = lower        // Lower zone level
	packet[4] = OpBrightness // Upper zone opcode
	packet[5] = upper        // Upper zone level

	return packet
}

// BuildHeartbeatPacket creates the keep-alive report that follows every
// brightness report. The device firmware reverts to its built-in lighting when
// these stop arriving. The level byte carries the brighter of the two zones so
// the device stays awake even with one zone dark.
func BuildHeartbeatPacket(lower, upper byte) []byte {
	packet := make([]byte, ReportSize)

	level := lower
	if upper > level {
		level = upper
	}

	packet[0] = OpHeartbeat // Keep-alive opcode
	packet[1] = level       // Brightest zone level
	packet[8] = 0x01        // Keep-alive flag

	return packet
}
