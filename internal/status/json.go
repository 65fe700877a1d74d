package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Button1       string       `json:"button1"`
	Button2       string       `json:"button2"`
	LED           string       `json:"led"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Reserved      []uint       `json:"reserved_pins"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	B1Pressed   int `json:"button1_pressed"`
	B1Released  int `json:"button1_released"`
	B2Pressed   int `json:"button2_pressed"`
	B2Released  int `json:"button2_released"`
	ModeChanges int `json:"led_mode_changes"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Backend     string `json:"backend"`
	PinLED      uint   `json:"pin_led"`
	PinButton1  uint   `json:"pin_button1"`
	PinButton2  uint   `json:"pin_button2"`
	PollMs      int64  `json:"poll_ms"`
	BlinkMs     int64  `json:"blink_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func buildInner(snap Snapshot) StatusInner {
	reserved := snap.Reserved
	if reserved == nil {
		reserved = []uint{}
	}

	inner := StatusInner{
		Button1:       orUnknown(string(snap.B1)),
		Button2:       orUnknown(string(snap.B2)),
		LED:           orUnknown(string(snap.Mode)),
		Ready:         snap.Baselined,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			B1Pressed:   snap.Counts.B1Pressed,
			B1Released:  snap.Counts.B1Released,
			B2Pressed:   snap.Counts.B2Pressed,
			B2Released:  snap.Counts.B2Released,
			ModeChanges: snap.Counts.ModeChanges,
		},
		Reserved: reserved,
		Config: ConfigJSON{
			Backend:     snap.Config.Backend,
			PinLED:      snap.Config.PinLED,
			PinButton1:  snap.Config.PinButton1,
			PinButton2:  snap.Config.PinButton2,
			PollMs:      snap.Config.PollMs,
			BlinkMs:     snap.Config.BlinkMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
