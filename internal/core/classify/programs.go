package classify

import (
	"hub2mqtt/pkg/isy"

	"go.uber.org/zap"
)

const (
	// Program folders are matched by naming convention: a platform folder
	// is "HA." + platform, each entity is a child folder holding a
	// "status" program and (except binary_sensor) an "actions" program.
	programFolderPrefix = "HA."
	keyStatus           = "status"
	keyActions          = "actions"
)

// ProgramEntity is one program-backed entity. Actions is nil for
// binary_sensor entities, which are read-only.
type ProgramEntity struct {
	Name    string
	Status  *isy.Program
	Actions *isy.Program
}

// Programs walks the controller's program tree and collects the
// program-backed entities per platform. Malformed entries are skipped with
// a warning; the pass never fails.
func Programs(root *isy.Program, logger *zap.Logger) map[string][]ProgramEntity {
	result := make(map[string][]ProgramEntity, len(SupportedProgramPlatforms))
	for _, platform := range SupportedProgramPlatforms {
		result[platform] = []ProgramEntity{}
	}
	if root == nil {
		return result
	}

	for _, platform := range SupportedProgramPlatforms {
		folder := root.GetByName(programFolderPrefix + platform)
		if folder == nil {
			continue
		}

		for _, entityFolder := range folder.Children {
			if entityFolder.Protocol != isy.ProtoFolder {
				continue
			}

			status := entityFolder.GetByName(keyStatus)
			if status == nil || status.Protocol != isy.ProtoProgram {
				logger.Warn("program entity not loaded, invalid/missing status program",
					zap.String("platform", platform),
					zap.String("entity", entityFolder.Name))
				continue
			}

			var actions *isy.Program
			if platform != PlatformBinarySensor {
				actions = entityFolder.GetByName(keyActions)
				if actions == nil || actions.Protocol != isy.ProtoProgram {
					logger.Warn("program entity not loaded, invalid/missing actions program",
						zap.String("platform", platform),
						zap.String("entity", entityFolder.Name))
					continue
				}
			}

			result[platform] = append(result[platform], ProgramEntity{
				Name:    entityFolder.Name,
				Status:  status,
				Actions: actions,
			})
		}
	}

	return result
}
