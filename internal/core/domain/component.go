package domain

type Device struct {
	Id           string
	Name         string
	Version      string
	Model        string
	Manufacturer string
	ViaDevice    string
}

type GenericSensor struct {
	Device            Device
	Id                string
	SensorType        string
	Name              string
	UniqueId          string
	UnitOfMeasurement string
	StateClass        string // measurement, duration, total_increasing
	DeviceClass       string // voltage, current, power, energy
	EntityCategory    string // diagnostic, config, nil
	EnabledByDefault  *bool
	Icon              string
}

type GenericSwitch struct {
	Device   Device
	Id       string
	Name     string
	UniqueId string
	Icon     string
}

type GenericLight struct {
	Device     Device
	Id         string
	Name       string
	UniqueId   string
	Icon       string
	Brightness bool
}

type GenericLock struct {
	Device   Device
	Id       string
	Name     string
	UniqueId string
	Icon     string
}

type GenericCover struct {
	Device   Device
	Id       string
	Name     string
	UniqueId string
	Icon     string
}

type GenericFan struct {
	Device   Device
	Id       string
	Name     string
	UniqueId string
	Icon     string
	Speeds   []string
}
