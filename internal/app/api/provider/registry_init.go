package provider

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"speite/internal/app/errors"
	"speite/internal/config"
)

// EngineCreator is a function that creates an engine from settings
type EngineCreator func(settings *config.Settings, logger *zap.Logger) (Engine, error)

// engineRegistry stores engine creation functions
var (
	engineRegistry = make(map[string]EngineCreator)
	registryMutex  sync.RWMutex
)

// RegisterEngine registers an engine creator function
func RegisterEngine(name string, creator EngineCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	engineRegistry[name] = creator
}

// GetEngineCreator returns the creator function for an engine name
func GetEngineCreator(name string) (EngineCreator, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	creator, ok := engineRegistry[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrEngineNotFound, "engine %s not registered", name)
	}
	return creator, nil
}

// NewEngine creates the engine named by settings.Engine
func NewEngine(settings *config.Settings, logger *zap.Logger) (Engine, error) {
	creator, err := GetEngineCreator(settings.Engine)
	if err != nil {
		return nil, err
	}
	return creator(settings, logger)
}

// ListEngines returns all registered engine names, sorted
func ListEngines() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	var engines []string
	for name := range engineRegistry {
		engines = append(engines, name)
	}
	sort.Strings(engines)
	return engines
}
