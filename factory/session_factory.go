package factory

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/opd-ai/wmbridge/interfaces"
	"github.com/opd-ai/wmbridge/real"
	"github.com/opd-ai/wmbridge/testing"
	"github.com/sirupsen/logrus"
)

// DefaultStoreDialect is the database/sql driver used for session stores.
const DefaultStoreDialect = "sqlite3"

// SessionFactory creates session implementations based on configuration.
// It is safe for concurrent use; all methods are protected by an internal mutex.
type SessionFactory struct {
	mu            sync.RWMutex
	defaultConfig *interfaces.SessionConfig
}

// TestConfigOption is a functional option for customizing test simulation configuration.
type TestConfigOption func(*interfaces.SessionConfig)

// NewSessionFactory creates a new factory with default configuration and
// WMBRIDGE_* environment overrides applied.
func NewSessionFactory() *SessionFactory {
	defaultConfig := createDefaultConfig()
	applyEnvironmentOverrides(defaultConfig)
	logConfigurationInfo(defaultConfig)

	return &SessionFactory{
		defaultConfig: defaultConfig,
	}
}

// NewSessionFactoryWithConfig creates a factory around an explicit template.
// Only the store settings and simulation flag of config are used; storage
// address and device name come from each CreateSession call.
func NewSessionFactoryWithConfig(config *interfaces.SessionConfig) *SessionFactory {
	defaultConfig := createDefaultConfig()
	if config != nil {
		defaultConfig.UseSimulation = config.UseSimulation
		defaultConfig.ForeignKeys = config.ForeignKeys
		if config.StoreDialect != "" {
			defaultConfig.StoreDialect = config.StoreDialect
		}
	}
	logConfigurationInfo(defaultConfig)

	return &SessionFactory{
		defaultConfig: defaultConfig,
	}
}

// createDefaultConfig initializes the default session template.
//
//   - UseSimulation: false - production sessions unless simulation is requested
//   - StoreDialect: sqlite3 - single-file store matching the storage path argument
//   - ForeignKeys: true - the store schema relies on cascading deletes
func createDefaultConfig() *interfaces.SessionConfig {
	return &interfaces.SessionConfig{
		UseSimulation: false,
		StoreDialect:  DefaultStoreDialect,
		ForeignKeys:   true,
	}
}

// applyEnvironmentOverrides updates configuration based on environment variables.
func applyEnvironmentOverrides(config *interfaces.SessionConfig) {
	parseSimulationSetting(config)
	parseDialectSetting(config)
	parseForeignKeysSetting(config)
}

// parseSimulationSetting updates UseSimulation from WMBRIDGE_USE_SIMULATION.
// Unparseable values are logged and ignored.
func parseSimulationSetting(config *interfaces.SessionConfig) {
	if useSimStr := os.Getenv("WMBRIDGE_USE_SIMULATION"); useSimStr != "" {
		useSim, err := strconv.ParseBool(useSimStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseSimulationSetting",
				"env_var":     "WMBRIDGE_USE_SIMULATION",
				"value":       useSimStr,
				"error":       err.Error(),
				"using_value": config.UseSimulation,
			}).Warn("Failed to parse WMBRIDGE_USE_SIMULATION environment variable, using default")
			return
		}
		config.UseSimulation = useSim
	}
}

// parseDialectSetting updates StoreDialect from WMBRIDGE_STORE_DIALECT.
// Only drivers compiled into the bridge are accepted.
func parseDialectSetting(config *interfaces.SessionConfig) {
	if dialect := strings.TrimSpace(os.Getenv("WMBRIDGE_STORE_DIALECT")); dialect != "" {
		if dialect != DefaultStoreDialect {
			logrus.WithFields(logrus.Fields{
				"function":    "parseDialectSetting",
				"env_var":     "WMBRIDGE_STORE_DIALECT",
				"value":       dialect,
				"using_value": config.StoreDialect,
			}).Warn("Unsupported WMBRIDGE_STORE_DIALECT value, using default")
			return
		}
		config.StoreDialect = dialect
	}
}

// parseForeignKeysSetting updates ForeignKeys from WMBRIDGE_FOREIGN_KEYS.
func parseForeignKeysSetting(config *interfaces.SessionConfig) {
	if fkStr := os.Getenv("WMBRIDGE_FOREIGN_KEYS"); fkStr != "" {
		fk, err := strconv.ParseBool(fkStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseForeignKeysSetting",
				"env_var":     "WMBRIDGE_FOREIGN_KEYS",
				"value":       fkStr,
				"error":       err.Error(),
				"using_value": config.ForeignKeys,
			}).Warn("Failed to parse WMBRIDGE_FOREIGN_KEYS environment variable, using default")
			return
		}
		config.ForeignKeys = fk
	}
}

func logConfigurationInfo(config *interfaces.SessionConfig) {
	logrus.WithFields(logrus.Fields{
		"function":       "NewSessionFactory",
		"use_simulation": config.UseSimulation,
		"store_dialect":  config.StoreDialect,
		"foreign_keys":   config.ForeignKeys,
	}).Info("Created session factory with configuration")
}

// CreateSession creates a session for storageAddress using the factory's
// current template.
func (f *SessionFactory) CreateSession(ctx context.Context, storageAddress, deviceName string) (interfaces.ISession, error) {
	config := f.GetCurrentConfig()
	config.StorageAddress = storageAddress
	config.DeviceName = deviceName
	return f.CreateSessionWithConfig(ctx, config)
}

// CreateSessionWithConfig creates a session implementation with custom configuration
func (f *SessionFactory) CreateSessionWithConfig(ctx context.Context, config *interfaces.SessionConfig) (interfaces.ISession, error) {
	if config == nil {
		return nil, fmt.Errorf("session config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":        "CreateSessionWithConfig",
		"use_simulation":  config.UseSimulation,
		"storage_address": config.StorageAddress,
		"store_dialect":   config.StoreDialect,
	}).Info("Creating session implementation")

	if config.UseSimulation {
		logrus.WithFields(logrus.Fields{
			"function": "CreateSessionWithConfig",
			"type":     "simulation",
		}).Info("Creating simulation session implementation")

		return testing.NewSimulatedSession(config), nil
	}

	logrus.WithFields(logrus.Fields{
		"function": "CreateSessionWithConfig",
		"type":     "real",
	}).Info("Creating real session implementation")

	return real.NewSession(ctx, config)
}

// WithStorageAddress sets the storage address for the test configuration.
func WithStorageAddress(address string) TestConfigOption {
	return func(c *interfaces.SessionConfig) {
		c.StorageAddress = address
	}
}

// WithDeviceName sets the device name for the test configuration.
func WithDeviceName(name string) TestConfigOption {
	return func(c *interfaces.SessionConfig) {
		c.DeviceName = name
	}
}

// CreateSimulationForTesting creates a simulated session specifically for testing.
// Default test configuration uses an in-memory store and the device name "test".
func (f *SessionFactory) CreateSimulationForTesting(opts ...TestConfigOption) *testing.SimulatedSession {
	testConfig := &interfaces.SessionConfig{
		UseSimulation:  true,
		StorageAddress: ":memory:",
		DeviceName:     "test",
		StoreDialect:   DefaultStoreDialect,
	}

	for _, opt := range opts {
		opt(testConfig)
	}

	logrus.WithFields(logrus.Fields{
		"function":        "CreateSimulationForTesting",
		"storage_address": testConfig.StorageAddress,
		"device_name":     testConfig.DeviceName,
	}).Info("Creating simulation implementation for testing")

	return testing.NewSimulatedSession(testConfig)
}

// SwitchToSimulation switches the configuration to use simulation
func (f *SessionFactory) SwitchToSimulation() {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SwitchToSimulation",
		"previous": f.defaultConfig.UseSimulation,
	}).Info("Switching factory to simulation mode")

	f.defaultConfig.UseSimulation = true
}

// SwitchToReal switches the configuration to use the whatsmeow implementation
func (f *SessionFactory) SwitchToReal() {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SwitchToReal",
		"previous": f.defaultConfig.UseSimulation,
	}).Info("Switching factory to real mode")

	f.defaultConfig.UseSimulation = false
}

// GetCurrentConfig returns a copy of the current default configuration
func (f *SessionFactory) GetCurrentConfig() *interfaces.SessionConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()

	copied := *f.defaultConfig
	return &copied
}

// IsUsingSimulation returns true if the factory is configured for simulation
func (f *SessionFactory) IsUsingSimulation() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.defaultConfig.UseSimulation
}

// UpdateConfig updates the factory's default configuration
func (f *SessionFactory) UpdateConfig(config *interfaces.SessionConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":       "UpdateConfig",
		"old_simulation": f.defaultConfig.UseSimulation,
		"new_simulation": config.UseSimulation,
		"old_dialect":    f.defaultConfig.StoreDialect,
		"new_dialect":    config.StoreDialect,
	}).Info("Updating factory configuration")

	copied := *config
	f.defaultConfig = &copied
	return nil
}
