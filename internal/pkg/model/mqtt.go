package model

type RegisterDevice struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
}

type RegisterMessage struct {
	Tilda             string         `json:"~"`
	Name              string         `json:"name"`
	ID                string         `json:"unique_id"`
	StateTopic        string         `json:"state_topic"`
	DeviceClass       string         `json:"device_class"`
	UnitOfMeasurement string         `json:"unit_of_measurement"`
	ValueTemplate     string         `json:"value_template"`
	Device            RegisterDevice `json:"device"`
}
