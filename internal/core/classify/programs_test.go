package classify

import (
	"testing"

	"hub2mqtt/pkg/isy"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestProgramsValidSwitchEntity(t *testing.T) {
	result := Programs(isy.TestPrograms(), zap.NewNop())

	switches := result[PlatformSwitch]
	if assert.Len(t, switches, 1) {
		assert.Equal(t, "Porch Heater", switches[0].Name)
		assert.Equal(t, "0012", switches[0].Status.ID)
		assert.Equal(t, "0013", switches[0].Actions.ID)
	}
}

func TestProgramsMissingActionsSkipped(t *testing.T) {
	result := Programs(isy.TestPrograms(), zap.NewNop())

	for _, e := range result[PlatformSwitch] {
		assert.NotEqual(t, "Broken Heater", e.Name)
	}
}

func TestProgramsBinarySensorNeedsNoActions(t *testing.T) {
	result := Programs(isy.TestPrograms(), zap.NewNop())

	sensors := result[PlatformBinarySensor]
	if assert.Len(t, sensors, 1) {
		assert.Equal(t, "Mail Arrived", sensors[0].Name)
		assert.Equal(t, "0022", sensors[0].Status.ID)
		assert.Nil(t, sensors[0].Actions)
	}
}

func TestProgramsMissingStatusSkipped(t *testing.T) {
	root := &isy.Program{
		ID: "0001", Name: "My Programs", Protocol: isy.ProtoFolder,
		Children: []*isy.Program{
			{
				ID: "0030", Name: "HA.cover", Protocol: isy.ProtoFolder,
				Children: []*isy.Program{
					{
						ID: "0031", Name: "Blinds", Protocol: isy.ProtoFolder,
						Children: []*isy.Program{
							{ID: "0032", Name: "actions", Protocol: isy.ProtoProgram},
						},
					},
				},
			},
		},
	}
	result := Programs(root, zap.NewNop())

	assert.Empty(t, result[PlatformCover])
}

func TestProgramsStatusMustBeProgram(t *testing.T) {
	root := &isy.Program{
		ID: "0001", Name: "My Programs", Protocol: isy.ProtoFolder,
		Children: []*isy.Program{
			{
				ID: "0040", Name: "HA.lock", Protocol: isy.ProtoFolder,
				Children: []*isy.Program{
					{
						ID: "0041", Name: "Front Lock", Protocol: isy.ProtoFolder,
						Children: []*isy.Program{
							// a folder named "status" does not count
							{ID: "0042", Name: "status", Protocol: isy.ProtoFolder},
							{ID: "0043", Name: "actions", Protocol: isy.ProtoProgram},
						},
					},
				},
			},
		},
	}
	result := Programs(root, zap.NewNop())

	assert.Empty(t, result[PlatformLock])
}

func TestProgramsNilRoot(t *testing.T) {
	result := Programs(nil, zap.NewNop())

	for _, platform := range SupportedProgramPlatforms {
		assert.Empty(t, result[platform])
	}
}

func TestProgramsLoosePrograms(t *testing.T) {
	// Programs sitting directly in the platform folder (not wrapped in an
	// entity folder) are not entities.
	root := &isy.Program{
		ID: "0001", Name: "My Programs", Protocol: isy.ProtoFolder,
		Children: []*isy.Program{
			{
				ID: "0050", Name: "HA.switch", Protocol: isy.ProtoFolder,
				Children: []*isy.Program{
					{ID: "0051", Name: "stray", Protocol: isy.ProtoProgram},
				},
			},
		},
	}
	result := Programs(root, zap.NewNop())

	assert.Empty(t, result[PlatformSwitch])
}
