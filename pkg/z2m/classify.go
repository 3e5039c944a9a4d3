package z2m

// Platform buckets a device's exposes map to.
const (
	PlatformLight        = "light"
	PlatformSwitch       = "switch"
	PlatformFan          = "fan"
	PlatformSensor       = "sensor"
	PlatformBinarySensor = "binary_sensor"
)

// ExposedEntity is one platform-mappable feature of a zigbee device.
type ExposedEntity struct {
	Platform string
	Property string
	Name     string
	Unit     string
	Settable bool
}

// MapExposes flattens a device's expose list into platform entities.
// Composite light/fan/switch exposes map to their platform as a whole;
// bare numeric exposes become sensors and bare binary exposes become
// binary sensors (or switches when they are settable). Unsupported expose
// types are skipped, never an error.
func MapExposes(exposes []Expose) []ExposedEntity {
	var entities []ExposedEntity
	for _, e := range exposes {
		switch e.Type {
		case "light":
			entities = append(entities, ExposedEntity{
				Platform: PlatformLight,
				Property: featureProperty(e, "state"),
				Name:     "light",
				Settable: true,
			})
		case "switch":
			entities = append(entities, ExposedEntity{
				Platform: PlatformSwitch,
				Property: featureProperty(e, "state"),
				Name:     "switch",
				Settable: true,
			})
		case "fan":
			entities = append(entities, ExposedEntity{
				Platform: PlatformFan,
				Property: featureProperty(e, "state"),
				Name:     "fan",
				Settable: true,
			})
		case "numeric":
			if e.Property == "" {
				continue
			}
			entities = append(entities, ExposedEntity{
				Platform: PlatformSensor,
				Property: e.Property,
				Name:     e.Property,
				Unit:     e.Unit,
			})
		case "binary":
			if e.Property == "" {
				continue
			}
			platform := PlatformBinarySensor
			settable := e.Access&AccessSet != 0
			if settable {
				platform = PlatformSwitch
			}
			entities = append(entities, ExposedEntity{
				Platform: platform,
				Property: e.Property,
				Name:     e.Property,
				Settable: settable,
			})
		}
	}
	return entities
}

// featureProperty digs the named feature's property out of a composite
// expose, falling back to the feature name.
func featureProperty(e Expose, name string) string {
	for _, f := range e.Features {
		if f.Name == name {
			if f.Property != "" {
				return f.Property
			}
			return f.Name
		}
	}
	return name
}
