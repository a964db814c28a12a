// Package catalog registers every concrete payload type and resolves raw
// payloads to them by schema header.
package catalog

import (
	"sync"

	"github.com/roach88/qschema/internal/annealing"
	"github.com/roach88/qschema/internal/device"
	"github.com/roach88/qschema/internal/event"
	"github.com/roach88/qschema/internal/jaqcd"
	"github.com/roach88/qschema/internal/openqasm"
	"github.com/roach88/qschema/internal/pulse"
	"github.com/roach88/qschema/internal/registry"
	"github.com/roach88/qschema/internal/taskresult"
)

func descriptors() []registry.Descriptor {
	return []registry.Descriptor{
		registry.Describe(jaqcd.ProgramHeader, jaqcd.ParseProgram),
		registry.Describe(openqasm.ProgramHeader, openqasm.ParseProgram),
		registry.Describe(openqasm.ProgramSetHeader, openqasm.ParseProgramSet),
		registry.Describe(annealing.ProblemHeader, annealing.ParseProblem),

		registry.Describe(device.ServicePropertiesHeader, device.ParseServiceProperties),
		registry.Describe(device.ExecutionWindowHeader, device.ParseExecutionWindow),
		registry.Describe(device.ActionPropertiesHeader, device.ParseActionProperties),
		registry.Describe(device.JaqcdActionPropertiesHeader, device.ParseJaqcdActionProperties),
		registry.Describe(device.OpenQASMActionPropertiesHeader, device.ParseOpenQASMActionProperties),
		registry.Describe(device.OpenQASMProgramSetActionPropertiesHeader, device.ParseOpenQASMProgramSetActionProperties),
		registry.Describe(device.CapabilitiesHeader, device.ParseCapabilities),
		registry.Describe(pulse.NativeGateCalibrationsHeader, pulse.ParseNativeGateCalibrations),

		registry.Describe(taskresult.TaskMetadataHeader, taskresult.ParseTaskMetadata),
		registry.Describe(taskresult.GateModelTaskResultHeader, taskresult.ParseGateModelTaskResult),
		registry.Describe(taskresult.AnnealingTaskResultHeader, taskresult.ParseAnnealingTaskResult),
		registry.Describe(taskresult.ExecutableResultHeader, taskresult.ParseExecutableResult),
		registry.Describe(taskresult.ExecutableFailureHeader, taskresult.ParseExecutableFailure),
		registry.Describe(taskresult.ProgramResultHeader, taskresult.ParseProgramResult),
		registry.Describe(taskresult.ProgramSetTaskMetadataHeader, taskresult.ParseProgramSetTaskMetadata),
		registry.Describe(taskresult.ProgramSetTaskResultHeader, taskresult.ParseProgramSetTaskResult),

		registry.Describe(event.TaskStateChangeHeader, event.ParseTaskStateChangeDetail),
	}
}

var (
	once sync.Once
	reg  *registry.Registry
)

// Registry returns the process-wide registry, built on first use.
func Registry() *registry.Registry {
	once.Do(func() {
		reg = registry.Must(registry.New(descriptors()...))
	})
	return reg
}

// Descriptors lists the registered types ordered by key.
func Descriptors() []registry.Descriptor { return Registry().Descriptors() }

// ResolveAndParse reads raw's header, picks the registered type for its
// name and major version, and parses raw as that type.
func ResolveAndParse(raw []byte) (registry.Result, error) {
	return Registry().ResolveAndParse(raw)
}
